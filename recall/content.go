package recall

import (
	"context"
	"sort"

	"github.com/rushteam/shoprec/content"
	"github.com/rushteam/shoprec/core"
)

// Content 是基于内容的召回源（Content-Based）：
// 用用户内容画像对索引里的全部商品做余弦匹配，取 TopK。
// 用户已交互过的商品不再召回（它们是画像本身，不是候选）。
type Content struct {
	Index    *content.Index
	Profiles *content.ProfileCache
	Log      core.InteractionLog

	// TopK 返回 TopK 个候选，<= 0 时默认 20
	TopK int
}

func (r *Content) Name() string { return "recall.content" }

func (r *Content) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Index == nil || r.Profiles == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}

	profile, err := r.Profiles.Profile(ctx, rctx.UserID)
	if err != nil {
		return nil, err
	}
	// 零交互用户画像为空：这一路召回为空，候选走热门兜底
	if len(profile) == 0 {
		return nil, nil
	}

	interacted := make(map[string]struct{})
	if r.Log != nil {
		history, err := r.Log.InteractionsFor(ctx, rctx.UserID)
		if err != nil {
			return nil, err
		}
		for _, ev := range history {
			interacted[ev.ProductID] = struct{}{}
		}
	}

	out := make([]*core.Item, 0, 64)
	for _, productID := range r.Index.IDs() {
		if _, ok := interacted[productID]; ok {
			continue
		}
		score := content.Cosine(profile, r.Index.Vector(productID))
		if score <= 0 {
			continue
		}
		it := core.NewItem(productID)
		it.Score = score
		it.PutSignal(SignalContent, score)
		out = append(out, it)
	}

	topK := r.TopK
	if topK <= 0 {
		topK = 20
	}
	sortItemsByScoreDesc(out)
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

// sortItemsByScoreDesc 按分数降序排序，同分按 ID 升序（确定性）。
func sortItemsByScoreDesc(items []*core.Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ID < items[j].ID
	})
}

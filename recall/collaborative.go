package recall

import (
	"context"

	"github.com/rushteam/shoprec/collab"
	"github.com/rushteam/shoprec/core"
)

// Collaborative 是协同过滤召回源（User-CF，u2i 方向）：
// 找到 K 个最相似用户，收集他们交互过而目标用户未交互的商品。
//
// 这里产出的是召回粗分 Σ(similarity × weight)；
// 精排分由 rank.Hybrid 调用 Model.Predict 重新计算。
type Collaborative struct {
	Model *collab.Model

	// TopKSimilarUsers 召回参考的相似用户数，<= 0 时用 Model 的默认值
	TopKSimilarUsers int

	// TopKItems 最终返回的候选数上限，<= 0 时默认 50
	TopKItems int
}

func (r *Collaborative) Name() string { return "recall.collab" }

func (r *Collaborative) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Model == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}
	// 冷启动用户没有可靠的相似邻居，这一路召回直接空手而归，
	// 候选由内容/热门路补齐
	if !r.Model.Ready(rctx.UserID) {
		return nil, nil
	}

	candidates := r.Model.CandidatesFrom(rctx.UserID, r.TopKSimilarUsers)
	if len(candidates) == 0 {
		return nil, nil
	}

	topK := r.TopKItems
	if topK <= 0 {
		topK = 50
	}

	out := make([]*core.Item, 0, len(candidates))
	for productID, score := range candidates {
		it := core.NewItem(productID)
		it.Score = score
		it.PutSignal(SignalCollab, score)
		out = append(out, it)
	}
	sortItemsByScoreDesc(out)
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

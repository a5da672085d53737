package rerank

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// Diversity 按类目限流的重排节点：每个类目最多保留 MaxPerCategory 个商品，
// 超出的顺延淘汰。类目读取优先级：
//   - label["category"].Value
//   - meta["category"] (string)
//
// 缺类目的商品不参与限流，原样保留。
type Diversity struct {
	// MaxPerCategory 每类目上限，<= 0 时默认 1（严格去重）
	MaxPerCategory int
	LabelKey       string // 默认 "category"
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.LabelKey
	if key == "" {
		key = "category"
	}
	limit := n.MaxPerCategory
	if limit <= 0 {
		limit = 1
	}

	counts := make(map[string]int, 32)
	out := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}

		cate := ""
		if it.Labels != nil {
			if lbl, ok := it.Labels[key]; ok {
				cate = lbl.Value
			}
		}
		if cate == "" && it.Meta != nil {
			if v, ok := it.Meta[key]; ok {
				if s, ok := v.(string); ok {
					cate = s
				}
			}
		}

		if cate == "" {
			out = append(out, it)
			continue
		}
		if counts[cate] >= limit {
			continue
		}
		counts[cate]++
		out = append(out, it)
	}

	return out, nil
}

package feature

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/utils"
)

// EnrichNode 是特征注入节点：为候选商品补齐 Meta（name/category/price/rating 等），
// 供规则过滤的表达式和排序的平局比较使用。放在召回之后、过滤之前。
//
// 注入策略：不覆盖 Item 已有的 Meta 值；category 额外写入 Label，
// 供多样性重排按类目限流。
type EnrichNode struct {
	Provider Provider

	// FailClosed 为 true 时特征源出错会中断流水线；默认（false）只跳过注入，
	// 特征缺失可降级，召回结果不应因此丢弃。
	FailClosed bool
}

func (n *EnrichNode) Name() string {
	return "feature.enrich"
}

func (n *EnrichNode) Kind() pipeline.Kind {
	return pipeline.KindPostProcess
}

func (n *EnrichNode) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Provider == nil || len(items) == 0 {
		return items, nil
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it != nil {
			ids = append(ids, it.ID)
		}
	}

	features, err := n.Provider.BatchProductFeatures(ctx, ids)
	if err != nil {
		if n.FailClosed {
			return nil, err
		}
		return items, nil
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		fs, ok := features[it.ID]
		if !ok {
			continue
		}
		if it.Meta == nil {
			it.Meta = make(map[string]any, len(fs))
		}
		for k, v := range fs {
			if _, exists := it.Meta[k]; !exists {
				it.Meta[k] = v
			}
		}
		if cate, ok := fs["category"].(string); ok && cate != "" {
			it.PutLabel("category", utils.NewLabel(cate, n.Provider.Name()))
		}
	}
	return items, nil
}

var _ pipeline.Node = (*EnrichNode)(nil)

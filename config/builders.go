package config

import (
	"fmt"

	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/conv"
	"github.com/rushteam/shoprec/rerank"
)

func init() {
	Register("filter", buildFilterNode)
	Register("rerank.topn", buildTopNNode)
	Register("rerank.diversity", buildDiversityNode)
}

// buildFilterNode 构建规则过滤 Node。配置格式：
//
//	type: filter
//	config:
//	  rules:
//	    - 'item.stock > 0.0'
//	    - 'item.price < 1000.0'
func buildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	exprs := conv.SliceAnyToString(cfg["rules"])
	filters := make([]filter.Filter, 0, len(exprs))
	for _, expr := range exprs {
		rule, err := filter.NewRule(expr)
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", expr, err)
		}
		filters = append(filters, rule)
	}
	return &filter.Node{Filters: filters}, nil
}

func buildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(cfg, "n", 0)
	return &rerank.TopNNode{N: int(n)}, nil
}

func buildDiversityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	limit := conv.ConfigGetInt64(cfg, "max_per_category", 1)
	labelKey := conv.ConfigGet[string](cfg, "label_key", "category")
	return &rerank.Diversity{
		MaxPerCategory: int(limit),
		LabelKey:       labelKey,
	}, nil
}

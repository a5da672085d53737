package engine

import (
	"time"

	"github.com/rushteam/shoprec/config"
	"github.com/rushteam/shoprec/feature"
	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/model"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/conv"
	"github.com/rushteam/shoprec/rank"
	"github.com/rushteam/shoprec/recall"
	"github.com/rushteam/shoprec/rerank"
)

// WithPipelineConfig 用 YAML/JSON 配置决定流水线形状，替代默认接线。
// Node 类型除 config 包注册的静态类型外，还包括绑定引擎组件的
// recall.fanout / feature.enrich / filter.purchased / rank.hybrid /
// rerank.serendipity。
func WithPipelineConfig(pcfg *pipeline.Config) Option {
	return func(eng *Engine) { eng.pipeConfig = pcfg }
}

// NodeFactory 返回绑定当前引擎组件的 Node 工厂。
// 召回源、协同模型、商品目录来自引擎；数值旋钮可在 Node 配置里覆盖。
func (e *Engine) NodeFactory() *pipeline.NodeFactory {
	f := config.DefaultFactory()

	f.Register("recall.fanout", func(cfg map[string]interface{}) (pipeline.Node, error) {
		timeout := e.cfg.RecallTimeout
		if ms := conv.ConfigGetInt64(cfg, "timeout_ms", 0); ms > 0 {
			timeout = time.Duration(ms) * time.Millisecond
		}
		return &recall.Fanout{
			Sources: []recall.Source{
				&recall.Collaborative{
					Model:            e.collab,
					TopKSimilarUsers: e.cfg.TopKSimilarUsers,
				},
				&recall.Content{
					Index:    e.index,
					Profiles: e.profiles,
					Log:      e.interactions,
					TopK:     int(conv.ConfigGetInt64(cfg, "top_k_content", int64(e.cfg.TopKContent))),
				},
				&recall.Popularity{
					Store:   e.trending,
					Key:     e.trendingKey,
					Stats:   e.interactions,
					Catalog: e.catalog,
					TopK:    int(conv.ConfigGetInt64(cfg, "top_k_popularity", int64(e.cfg.TopKPopularity))),
				},
			},
			Timeout:       timeout,
			MaxConcurrent: int(conv.ConfigGetInt64(cfg, "max_concurrent", 0)),
		}, nil
	})

	f.Register("feature.enrich", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &feature.EnrichNode{
			Provider:   e.features,
			FailClosed: conv.ConfigGet[bool](cfg, "fail_closed", false),
		}, nil
	})

	f.Register("filter.purchased", func(_ map[string]interface{}) (pipeline.Node, error) {
		return &filter.Node{
			Filters: []filter.Filter{&filter.Purchased{Checker: e.interactions}},
		}, nil
	})

	f.Register("rank.hybrid", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &rank.Hybrid{
			Collab:   e.collab,
			Profiles: e.profiles,
			Fusion: &model.Linear{
				Weights: map[string]float64{
					recall.SignalCollab:  conv.ConfigGetFloat64(cfg, "w_collab", e.cfg.WCollab),
					recall.SignalContent: conv.ConfigGetFloat64(cfg, "w_content", e.cfg.WContent),
				},
				Normalized: true,
			},
		}, nil
	})

	f.Register("rerank.serendipity", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &rerank.Serendipity{
			Selector: &rerank.Selector{
				Catalog:    e.catalog,
				Log:        e.interactions,
				MinQuality: conv.ConfigGetFloat64(cfg, "min_quality", e.cfg.SerendipityMinQuality),
			},
			Factor: conv.ConfigGetFloat64(cfg, "factor", e.cfg.SerendipityFactor),
		}, nil
	})

	return f
}

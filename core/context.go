package core

import "github.com/rushteam/shoprec/pkg/utils"

// RecommendContext 承载一次推荐请求的用户/参数信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string

	// N 是请求的结果条数；候选不足时返回所有可用结果，不报错。
	N int

	// ExcludePurchased 为 true 时过滤用户已购买的商品（默认 true）。
	ExcludePurchased bool

	// Seed 是本次请求的随机种子，决定 serendipity 抽样与冷启动兜底的确定性。
	Seed int64

	// Labels 是用户级标签，可驱动整个 Pipeline 行为（如新用户、价格敏感）。
	Labels map[string]utils.Label

	// Params 请求级上下文参数（device_type、scene 等），供规则过滤与特征提取使用。
	Params map[string]any
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

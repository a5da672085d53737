package recall

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// Source 表示一个可复用的召回源（协同/内容/热门/...）。
// 你可以把它理解为“可并发 fan-out 的策略单元”。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// 信号源标识：Item.Signals 与 Recommendation.Sources 统一使用这些 key。
const (
	SignalCollab      = "collab"
	SignalContent     = "content"
	SignalPopularity  = "popularity"
	SignalSerendipity = "serendipity"
)

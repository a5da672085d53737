package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// PurchaseChecker 是已购判定的数据接口（interaction.Store 实现）。
type PurchaseChecker interface {
	// HasPurchased 返回用户是否购买过该商品
	HasPurchased(userID, productID string) bool
}

// Purchased 是已购过滤器：剔除用户已经购买过的商品。
// 请求显式要求 ExcludePurchased=false 时放行（例如回购场景）。
// 只看 PURCHASE 行为——浏览/加购过的商品仍然是合法候选。
type Purchased struct {
	Checker PurchaseChecker
}

func (f *Purchased) Name() string {
	return "filter.purchased"
}

func (f *Purchased) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil || rctx.UserID == "" || f.Checker == nil {
		return false, nil
	}
	if !rctx.ExcludePurchased {
		return false, nil
	}
	return f.Checker.HasPurchased(rctx.UserID, item.ID), nil
}

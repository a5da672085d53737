package core

import "time"

// ActionKind 是交互行为的封闭枚举。每种行为携带固定权重，
// 未识别的行为在摄入边界直接拒绝（ErrInvalidInteraction），不做动态扩展。
type ActionKind string

const (
	ActionView     ActionKind = "view"
	ActionCartAdd  ActionKind = "cart"
	ActionWishlist ActionKind = "wishlist"
	ActionRating   ActionKind = "rating"
	ActionPurchase ActionKind = "purchase"
)

// actionWeights 是固定权重表：隐式反馈的强度。
var actionWeights = map[ActionKind]float64{
	ActionView:     1.0,
	ActionCartAdd:  2.0,
	ActionWishlist: 3.0,
	ActionRating:   4.0,
	ActionPurchase: 5.0,
}

// Valid 判断行为类型是否在封闭枚举内。
func (k ActionKind) Valid() bool {
	_, ok := actionWeights[k]
	return ok
}

// Weight 返回行为的固定权重；未识别的行为返回 0。
func (k ActionKind) Weight() float64 {
	return actionWeights[k]
}

// ParseActionKind 解析行为类型字符串，未识别时返回 false。
func ParseActionKind(s string) (ActionKind, bool) {
	k := ActionKind(s)
	return k, k.Valid()
}

// Interaction 是一次用户-商品交互事件。只追加，不支持删除；
// 同一 (user, product) 的多次交互按权重累加，而非覆盖。
type Interaction struct {
	UserID    string
	ProductID string
	Action    ActionKind
	Rating    float64 // 显式评分（1-5），仅 ActionRating 携带，0 表示未设置
	Timestamp time.Time
}

// Weight 返回该次交互的权重（由行为类型决定）。
func (i Interaction) Weight() float64 {
	return i.Action.Weight()
}

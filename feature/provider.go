// Package feature 提供商品特征的获取与注入能力。
// 召回产出的 Item 只带 ID 和信号分，过滤（规则表达式）和排序（评分平局）
// 都依赖商品元数据，所以特征注入节点要放在召回之后、过滤之前。
package feature

import (
	"context"
	"errors"
)

var (
	// ErrFeatureNotFound 特征未找到
	ErrFeatureNotFound = errors.New("feature: feature not found")
	// ErrProviderUnavailable 特征源不可用
	ErrProviderUnavailable = errors.New("feature: provider unavailable")
)

// Provider 是商品特征源的抽象，采用策略模式。
// 实现可以是本地商品目录（CatalogProvider）或远端 Feature Store（FeastProvider）。
type Provider interface {
	// Name 返回特征源名称（用于日志）
	Name() string

	// ProductFeatures 获取单个商品的特征
	ProductFeatures(ctx context.Context, productID string) (map[string]any, error)

	// BatchProductFeatures 批量获取商品特征，减少网络往返。
	// 返回 map 里缺失的 key 表示该商品没有特征，不算错误。
	BatchProductFeatures(ctx context.Context, productIDs []string) (map[string]map[string]any, error)
}

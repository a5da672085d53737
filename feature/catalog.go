package feature

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// CatalogProvider 用商品目录充当特征源：name/category/price/rating/stock/tags
// 直接取自 core.Product。无外部依赖，是默认的特征实现。
type CatalogProvider struct {
	Catalog core.Catalog
}

func (p *CatalogProvider) Name() string { return "feature.catalog" }

func (p *CatalogProvider) ProductFeatures(ctx context.Context, productID string) (map[string]any, error) {
	if p.Catalog == nil {
		return nil, ErrProviderUnavailable
	}
	product, err := p.Catalog.Product(ctx, productID)
	if err != nil {
		if core.IsUnknownProduct(err) {
			return nil, ErrFeatureNotFound
		}
		return nil, err
	}
	return productFeatures(product), nil
}

func (p *CatalogProvider) BatchProductFeatures(ctx context.Context, productIDs []string) (map[string]map[string]any, error) {
	if p.Catalog == nil {
		return nil, ErrProviderUnavailable
	}
	out := make(map[string]map[string]any, len(productIDs))
	for _, id := range productIDs {
		product, err := p.Catalog.Product(ctx, id)
		if err != nil {
			if core.IsUnknownProduct(err) {
				continue
			}
			return nil, err
		}
		out[id] = productFeatures(product)
	}
	return out, nil
}

func productFeatures(p *core.Product) map[string]any {
	return map[string]any{
		"name":     p.Name,
		"category": p.Category,
		"price":    p.Price,
		"rating":   p.Rating,
		"stock":    float64(p.Stock),
		"tags":     append([]string(nil), p.Tags...),
	}
}

var _ Provider = (*CatalogProvider)(nil)

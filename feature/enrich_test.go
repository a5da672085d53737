package feature

import (
	"context"
	"testing"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/store"
)

func testCatalog() *store.MemoryCatalog {
	c := store.NewMemoryCatalog()
	c.Add(&core.Product{ID: "p1", Name: "Headphones", Category: "audio", Tags: []string{"wireless"}, Price: 129, Rating: 4.5, Stock: 20})
	c.Add(&core.Product{ID: "p2", Name: "Yoga Mat", Category: "fitness", Price: 25, Rating: 4.8, Stock: 100})
	return c
}

func TestCatalogProvider(t *testing.T) {
	p := &CatalogProvider{Catalog: testCatalog()}

	fs, err := p.ProductFeatures(context.Background(), "p1")
	if err != nil {
		t.Fatalf("ProductFeatures 失败: %v", err)
	}
	if fs["category"] != "audio" {
		t.Errorf("category 期望 audio，实际 %v", fs["category"])
	}
	if fs["rating"] != 4.5 {
		t.Errorf("rating 期望 4.5，实际 %v", fs["rating"])
	}

	if _, err := p.ProductFeatures(context.Background(), "ghost"); err != ErrFeatureNotFound {
		t.Errorf("未知商品期望 ErrFeatureNotFound，实际 %v", err)
	}
}

func TestCatalogProvider_BatchSkipsUnknown(t *testing.T) {
	p := &CatalogProvider{Catalog: testCatalog()}

	all, err := p.BatchProductFeatures(context.Background(), []string{"p1", "ghost", "p2"})
	if err != nil {
		t.Fatalf("BatchProductFeatures 失败: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("批量结果期望 2 条（未知商品跳过），实际 %d", len(all))
	}
}

func TestEnrichNode(t *testing.T) {
	node := &EnrichNode{Provider: &CatalogProvider{Catalog: testCatalog()}}

	it := core.NewItem("p1")
	it.Meta["price"] = 999.0 // 已有 Meta 不被覆盖

	out, err := node.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, []*core.Item{it})
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}

	enriched := out[0]
	if enriched.Meta["price"] != 999.0 {
		t.Errorf("已有 Meta 值被覆盖: %v", enriched.Meta["price"])
	}
	if enriched.Meta["rating"] != 4.5 {
		t.Errorf("rating 未注入: %v", enriched.Meta["rating"])
	}
	if lbl, ok := enriched.Labels["category"]; !ok || lbl.Value != "audio" {
		t.Errorf("category 标签未注入: %+v", enriched.Labels)
	}
}

type brokenProvider struct{}

func (brokenProvider) Name() string { return "feature.broken" }

func (brokenProvider) ProductFeatures(context.Context, string) (map[string]any, error) {
	return nil, ErrProviderUnavailable
}

func (brokenProvider) BatchProductFeatures(context.Context, []string) (map[string]map[string]any, error) {
	return nil, ErrProviderUnavailable
}

func TestEnrichNode_FailOpen(t *testing.T) {
	node := &EnrichNode{Provider: brokenProvider{}}
	items := []*core.Item{core.NewItem("p1")}

	out, err := node.Process(context.Background(), &core.RecommendContext{}, items)
	if err != nil {
		t.Fatalf("默认应降级跳过注入，实际报错: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("候选不应丢失，实际 %d", len(out))
	}

	strict := &EnrichNode{Provider: brokenProvider{}, FailClosed: true}
	if _, err := strict.Process(context.Background(), &core.RecommendContext{}, items); err == nil {
		t.Error("FailClosed 模式下特征源错误应上抛")
	}
}

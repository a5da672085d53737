package filter

import (
	"context"
	"testing"

	"github.com/rushteam/shoprec/core"
)

type fakeChecker struct {
	purchased map[string]bool
}

func (c *fakeChecker) HasPurchased(_, productID string) bool {
	return c.purchased[productID]
}

func TestPurchased_Filter(t *testing.T) {
	f := &Purchased{Checker: &fakeChecker{purchased: map[string]bool{"p1": true}}}

	tests := []struct {
		name   string
		rctx   *core.RecommendContext
		itemID string
		want   bool
	}{
		{"已购商品被过滤", &core.RecommendContext{UserID: "u1", ExcludePurchased: true}, "p1", true},
		{"未购商品放行", &core.RecommendContext{UserID: "u1", ExcludePurchased: true}, "p2", false},
		{"ExcludePurchased=false 放行已购", &core.RecommendContext{UserID: "u1", ExcludePurchased: false}, "p1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.ShouldFilter(context.Background(), tt.rctx, core.NewItem(tt.itemID))
			if err != nil {
				t.Fatalf("ShouldFilter 失败: %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter(%s) = %v，期望 %v", tt.itemID, got, tt.want)
			}
		})
	}
}

func TestRule_Filter(t *testing.T) {
	rule, err := NewRule(`item.price <= 100.0`)
	if err != nil {
		t.Fatalf("NewRule 失败: %v", err)
	}

	cheap := core.NewItem("p1")
	cheap.Meta = map[string]any{"price": 59.0}
	pricey := core.NewItem("p2")
	pricey.Meta = map[string]any{"price": 450.0}

	rctx := &core.RecommendContext{UserID: "u1"}

	if got, _ := rule.ShouldFilter(context.Background(), rctx, cheap); got {
		t.Error("便宜商品不应被价格规则过滤")
	}
	if got, _ := rule.ShouldFilter(context.Background(), rctx, pricey); !got {
		t.Error("超价商品应被规则过滤")
	}
}

func TestRule_EvalErrorKeepsItem(t *testing.T) {
	// 字段缺失导致求值失败 → 保留候选，规则过滤只收紧不误杀
	rule, err := NewRule(`item.nonexistent > 1.0`)
	if err != nil {
		t.Fatalf("NewRule 失败: %v", err)
	}

	got, err := rule.ShouldFilter(context.Background(), &core.RecommendContext{}, core.NewItem("p1"))
	if err != nil {
		t.Fatalf("求值失败不应上抛错误: %v", err)
	}
	if got {
		t.Error("求值失败时应保留候选")
	}
}

func TestRule_CompileError(t *testing.T) {
	if _, err := NewRule(`item.price <=`); err == nil {
		t.Error("非法表达式应在构建期报错")
	}
}

func TestNode_DropsFilteredItems(t *testing.T) {
	node := &Node{Filters: []Filter{
		&Purchased{Checker: &fakeChecker{purchased: map[string]bool{"p1": true}}},
	}}

	items := []*core.Item{core.NewItem("p1"), core.NewItem("p2")}
	rctx := &core.RecommendContext{UserID: "u1", ExcludePurchased: true}

	out, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 1 || out[0].ID != "p2" {
		t.Errorf("已购商品应被剔除，实际 %v", out)
	}
}

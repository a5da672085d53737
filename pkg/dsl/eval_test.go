package dsl

import (
	"testing"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/utils"
)

func testItem() *core.Item {
	it := core.NewItem("p1")
	it.Score = 0.8
	it.Meta["price"] = 129.0
	it.Meta["rating"] = 4.5
	it.Meta["category"] = "audio"
	it.PutLabel("recall_source", utils.NewLabel("content", "recall"))
	return it
}

func TestExpr_Eval(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"价格比较", `item.price < 200.0`, true},
		{"评分下限", `item.rating >= 4.0`, true},
		{"类目等值", `item.category == "audio"`, true},
		{"标签取值", `label.recall_source == "content"`, true},
		{"逻辑组合", `item.category == "audio" && item.price > 500.0`, false},
		{"分数字段", `item.score > 0.5`, true},
		{"请求上下文", `rctx.user_id == "u1"`, true},
	}

	rctx := &core.RecommendContext{UserID: "u1", N: 10}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile(%q) 失败: %v", tt.expr, err)
			}
			got, err := expr.Eval(testItem(), rctx)
			if err != nil {
				t.Fatalf("Eval(%q) 失败: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Eval(%q) = %v，期望 %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestCompile_Invalid(t *testing.T) {
	if _, err := Compile(`item.price <=`); err == nil {
		t.Error("非法表达式应在编译期报错")
	}
}

func TestEval_NonBoolean(t *testing.T) {
	expr, err := Compile(`item.price`)
	if err != nil {
		t.Fatalf("Compile 失败: %v", err)
	}
	if _, err := expr.Eval(testItem(), nil); err == nil {
		t.Error("非布尔表达式求值应报错")
	}
}

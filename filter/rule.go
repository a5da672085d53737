package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/dsl"
)

// Rule 是基于 CEL 表达式的业务规则过滤器：表达式对某个 Item 求值为
// false 时过滤该 Item。表达式在构建时编译一次，请求路径上只做求值。
//
// 示例：
//   f, _ := filter.NewRule(`item.price <= 500.0`)           // 限价
//   f, _ := filter.NewRule(`item.rating >= 3.0`)            // 质量下限
//   f, _ := filter.NewRule(`item.category != "clearance"`)  // 排除清仓类目
type Rule struct {
	expr *dsl.Expr
}

// NewRule 编译表达式并构建规则过滤器；表达式非法时在构建期报错。
func NewRule(expr string) (*Rule, error) {
	compiled, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &Rule{expr: compiled}, nil
}

func (f *Rule) Name() string {
	return "filter.rule"
}

func (f *Rule) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || f.expr == nil {
		return false, nil
	}
	keep, err := f.expr.Eval(item, rctx)
	if err != nil {
		// 求值失败（如字段缺失）按保留处理，规则过滤只做收紧不做误杀
		return false, nil
	}
	return !keep, nil
}

package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/shoprec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	if celEnv == nil && err == nil {
		err = fmt.Errorf("cel env not initialized")
	}
	return celEnv, err
}

// Expr 是业务规则表达式，使用 CEL (Common Expression Language) 实现。
// 表达式在构建时编译一次，cel.Program 线程安全，可在多个请求间复用。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：item.price < 200.0 / item.score >= 0.5
//   - 标签：label.recall_source == "content"
//   - 逻辑：item.category == "audio" && item.rating >= 4.0
//   - 包含：label.recall_source.contains("content")
//
// 示例：
//   - `item.price <= 500.0` → 只保留价格不超过 500 的候选
//   - `label.recall_source != "popularity" || item.rating >= 3.0` → 热门兜底要求最低评分
type Expr struct {
	source string
	prg    cel.Program
}

// Compile 编译 DSL 表达式。编译错误在构建期暴露，而不是留到请求路径。
func Compile(expr string) (*Expr, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, err
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %v", err)
	}

	return &Expr{source: expr, prg: prg}, nil
}

// Source 返回原始表达式文本（用于日志/标签）。
func (e *Expr) Source() string { return e.source }

// Eval 对单个 Item 执行表达式，返回布尔结果。
// 访问不存在的 key 时 CEL 会报错，应使用 label.key != null 检查存在性。
func (e *Expr) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := e.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]interface{} {
	labels := make(map[string]interface{})
	labelAccessor := make(map[string]interface{})
	for k, v := range item.Labels {
		labels[k] = map[string]interface{}{
			"value":  v.Value,
			"source": v.Source,
		}
		// label.recall_source 直接取 value，方便常见写法
		labelAccessor[k] = v.Value
	}

	itemInput := map[string]interface{}{
		"id":      item.ID,
		"score":   item.Score,
		"signals": item.Signals,
		"labels":  labels,
	}
	// Meta 中的商品属性（price/rating/category）提升为 item 顶层字段
	for k, v := range item.Meta {
		if _, ok := itemInput[k]; !ok {
			itemInput[k] = v
		}
	}

	rctxInput := map[string]interface{}{}
	if rctx != nil {
		rctxInput["user_id"] = rctx.UserID
		rctxInput["n"] = rctx.N
		rctxInput["exclude_purchased"] = rctx.ExcludePurchased
		rctxInput["params"] = rctx.Params
	}

	return map[string]interface{}{
		"item":  itemInput,
		"label": labelAccessor,
		"rctx":  rctxInput,
	}
}

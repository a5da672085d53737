package config

import (
	"testing"

	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/rerank"
)

func TestDefaultFactory_BuiltinNodes(t *testing.T) {
	f := DefaultFactory()

	node, err := f.Build("rerank.topn", map[string]interface{}{"n": 5})
	if err != nil {
		t.Fatalf("构建 rerank.topn 失败: %v", err)
	}
	topn, ok := node.(*rerank.TopNNode)
	if !ok || topn.N != 5 {
		t.Errorf("rerank.topn 构建结果错误: %+v", node)
	}

	node, err = f.Build("filter", map[string]interface{}{
		"rules": []interface{}{`item.price <= 100.0`},
	})
	if err != nil {
		t.Fatalf("构建 filter 失败: %v", err)
	}
	if node.Kind() != pipeline.KindFilter {
		t.Errorf("filter 节点 Kind 错误: %s", node.Kind())
	}

	if _, err := f.Build("filter", map[string]interface{}{
		"rules": []interface{}{`item.price <=`},
	}); err == nil {
		t.Error("非法规则表达式应在构建期报错")
	}
}

func TestValidatePipelineConfig(t *testing.T) {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{
		{Type: "rerank.topn"},
		{Type: "no.such.node"},
	}

	if err := ValidatePipelineConfig(cfg); err == nil {
		t.Error("未注册的节点类型应校验失败")
	}

	cfg.Pipeline.Nodes = cfg.Pipeline.Nodes[:1]
	if err := ValidatePipelineConfig(cfg); err != nil {
		t.Errorf("全部已注册时校验应通过: %v", err)
	}
}

// Package service 对接外部文案服务，把结构化的解释特征变成一句人话。
// 解释是锦上添花：任何失败都降级为模板文案，绝不影响推荐主链路。
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rushteam/shoprec/core"
)

// Explainer 是推荐解释服务的统一接口。
type Explainer interface {
	// Name 返回服务名称（用于日志）
	Name() string

	// Explain 为一条推荐生成解释文案。
	Explain(ctx context.Context, req *ExplainRequest) (string, error)

	// Close 释放连接资源
	Close() error
}

// ExplainRequest 解释请求：用户 + 该条推荐的结构化特征包。
type ExplainRequest struct {
	UserID string              `json:"user_id"`
	Bundle *core.ExplainBundle `json:"bundle"`
}

// TemplateExplainer 是模板文案实现，也是所有远端实现的降级兜底。
// 文案按信号来源分派：协同/内容/serendipity/热门各一套说法。
type TemplateExplainer struct{}

func (TemplateExplainer) Name() string { return "explainer.template" }

func (TemplateExplainer) Explain(_ context.Context, req *ExplainRequest) (string, error) {
	if req == nil || req.Bundle == nil {
		return "", fmt.Errorf("service: explain request is empty")
	}
	b := req.Bundle

	has := func(source string) bool {
		for _, s := range b.Sources {
			if s == source {
				return true
			}
		}
		return false
	}

	name := b.ProductName
	if name == "" {
		name = b.ProductID
	}

	switch {
	case has("serendipity"):
		return fmt.Sprintf("Something different: %s is highly rated in %s, a category you haven't explored yet.", name, b.Category), nil
	case has("collab") && b.CollabScore > 0:
		return fmt.Sprintf("Shoppers with similar taste to yours loved %s.", name), nil
	case has("content") && len(b.MatchedTags) > 0:
		return fmt.Sprintf("%s matches your interest in %s.", name, strings.Join(b.MatchedTags, ", ")), nil
	case has("content"):
		return fmt.Sprintf("%s is similar to items you've shown interest in.", name), nil
	case has("popularity"):
		return fmt.Sprintf("%s is trending with other shoppers right now.", name), nil
	default:
		return fmt.Sprintf("We think you'll like %s.", name), nil
	}
}

func (TemplateExplainer) Close() error { return nil }

var _ Explainer = TemplateExplainer{}

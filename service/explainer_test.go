package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rushteam/shoprec/core"
)

func testBundle() *core.ExplainBundle {
	return &core.ExplainBundle{
		ProductID:   "p1",
		ProductName: "Wireless Headphones",
		Category:    "audio",
		MatchedTags: []string{"wireless", "music"},
		Sources:     []string{"content"},
	}
}

func TestTemplateExplainer(t *testing.T) {
	tests := []struct {
		name    string
		bundle  *core.ExplainBundle
		keyword string
	}{
		{
			"内容信号带标签",
			&core.ExplainBundle{ProductName: "Headphones", MatchedTags: []string{"wireless"}, Sources: []string{"content"}},
			"wireless",
		},
		{
			"协同信号",
			&core.ExplainBundle{ProductName: "Headphones", CollabScore: 3.5, Sources: []string{"collab"}},
			"similar taste",
		},
		{
			"serendipity 信号",
			&core.ExplainBundle{ProductName: "Yoga Mat", Category: "fitness", Sources: []string{"serendipity"}},
			"haven't explored",
		},
		{
			"热门兜底",
			&core.ExplainBundle{ProductName: "Espresso Machine", Sources: []string{"popularity"}},
			"trending",
		},
		{
			"无名商品回退到 ID",
			&core.ExplainBundle{ProductID: "p9", Sources: []string{"popularity"}},
			"p9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := TemplateExplainer{}.Explain(context.Background(), &ExplainRequest{UserID: "u1", Bundle: tt.bundle})
			if err != nil {
				t.Fatalf("Explain 失败: %v", err)
			}
			if !strings.Contains(text, tt.keyword) {
				t.Errorf("文案 %q 应包含 %q", text, tt.keyword)
			}
		})
	}
}

func TestTemplateExplainer_EmptyRequest(t *testing.T) {
	if _, err := (TemplateExplainer{}).Explain(context.Background(), nil); err == nil {
		t.Error("空请求应报错")
	}
}

func TestHTTPExplainer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("期望 POST，实际 %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization 头错误: %q", got)
		}

		var req ExplainRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("请求体解析失败: %v", err)
		}
		if req.Bundle == nil || req.Bundle.ProductID != "p1" {
			t.Errorf("请求体内容错误: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"explanation": "because you love music"})
	}))
	defer srv.Close()

	c := NewHTTPExplainer(srv.URL, WithExplainerAPIKey("test-key"))
	text, err := c.Explain(context.Background(), &ExplainRequest{UserID: "u1", Bundle: testBundle()})
	if err != nil {
		t.Fatalf("Explain 失败: %v", err)
	}
	if text != "because you love music" {
		t.Errorf("文案期望 %q，实际 %q", "because you love music", text)
	}
}

func TestHTTPExplainer_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPExplainer(srv.URL)
	if _, err := c.Explain(context.Background(), &ExplainRequest{UserID: "u1", Bundle: testBundle()}); err == nil {
		t.Error("5xx 响应应报错，由调用方降级到模板文案")
	}
}

func TestHTTPExplainer_PlainTextResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("plain text explanation\n"))
	}))
	defer srv.Close()

	c := NewHTTPExplainer(srv.URL)
	text, err := c.Explain(context.Background(), &ExplainRequest{UserID: "u1", Bundle: testBundle()})
	if err != nil {
		t.Fatalf("Explain 失败: %v", err)
	}
	if text != "plain text explanation" {
		t.Errorf("纯文本响应应去除首尾空白，实际 %q", text)
	}
}

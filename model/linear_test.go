package model

import (
	"math"
	"testing"
)

func TestLinear_Predict(t *testing.T) {
	m := &Linear{
		Weights: map[string]float64{"collab": 0.6, "content": 0.4},
	}

	got, err := m.Predict(map[string]float64{"collab": 1.0, "content": 0.5})
	if err != nil {
		t.Fatalf("Predict 失败: %v", err)
	}
	want := 0.6*1.0 + 0.4*0.5
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("融合分期望 %v，实际 %v", want, got)
	}
}

func TestLinear_Renormalization(t *testing.T) {
	m := &Linear{
		Weights:    map[string]float64{"collab": 0.6, "content": 0.4},
		Normalized: true,
	}

	tests := []struct {
		name     string
		features map[string]float64
		want     float64
	}{
		{
			"双信号齐全，权重原样",
			map[string]float64{"collab": 1.0, "content": 0.5},
			0.6*1.0 + 0.4*0.5,
		},
		{
			"协同缺席（不传 key），内容独占权重",
			map[string]float64{"content": 0.5},
			0.5, // w_content → 1.0
		},
		{
			"内容缺席（不传 key），协同独占权重",
			map[string]float64{"collab": 0.8},
			0.8,
		},
		{
			"协同在场但为 0，权重不重归一化",
			map[string]float64{"collab": 0, "content": 0.8},
			0.4 * 0.8, // 不是 0.8：零值信号照常占权重
		},
		{
			"双信号全零",
			map[string]float64{"collab": 0, "content": 0},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Predict(tt.features)
			if err != nil {
				t.Fatalf("Predict 失败: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("融合分期望 %v，实际 %v", tt.want, got)
			}
		})
	}
}

func TestLinear_UnknownSignalIgnored(t *testing.T) {
	m := &Linear{Weights: map[string]float64{"collab": 1.0}}

	got, err := m.Predict(map[string]float64{"collab": 0.5, "mystery": 99})
	if err != nil {
		t.Fatalf("Predict 失败: %v", err)
	}
	if got != 0.5 {
		t.Errorf("未配置权重的信号应被忽略，期望 0.5，实际 %v", got)
	}
}

package model

import (
	"encoding/json"
	"os"
)

// Linear 实现线性加权融合：score = Bias + Σ(Weight_i × Feature_i)。
//
// 混合排序的融合公式（w_collab × collab + w_content × content）本质上就是
// 一个权重固定的线性模型，所以这里不做 Sigmoid 变换，直接输出原始融合分，
// 保持各信号分数的量纲可解释。
//
// Normalized 开启时，按特征 map 里实际传入的信号 key 重归一化权重：
// 协同信号因冷启动整体缺席（调用方不传该 key）时，内容分独占权重
// （w_content → 1.0）。信号在场但值为 0（比如没有邻居交互过该商品）
// 不触发重归一化——0 就按 0 融合，否则缺协同分的候选会被系统性放大。
type Linear struct {
	Bias    float64            // 偏置项
	Weights map[string]float64 // 信号权重，如 {"collab": 0.6, "content": 0.4}

	// Normalized 开启缺席信号的权重重归一化（混合排序默认开启）
	Normalized bool
}

// LoadLinear 从 JSON 文件加载权重（离线调参产物）。
func LoadLinear(path string) (*Linear, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Bias    float64            `json:"bias"`
		Weights map[string]float64 `json:"weights"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return &Linear{Bias: raw.Bias, Weights: raw.Weights}, nil
}

func (m *Linear) Name() string { return "linear" }

func (m *Linear) Predict(features map[string]float64) (float64, error) {
	score := m.Bias
	if !m.Normalized {
		for k, v := range features {
			if w, ok := m.Weights[k]; ok {
				score += w * v
			}
		}
		return score, nil
	}

	// 重归一化：按传入的信号 key 统计权重和，值为 0 的在场信号照常计入
	var weightSum float64
	for k := range features {
		if w, ok := m.Weights[k]; ok {
			weightSum += w
		}
	}
	if weightSum == 0 {
		return score, nil
	}
	for k, v := range features {
		if w, ok := m.Weights[k]; ok {
			score += (w / weightSum) * v
		}
	}
	return score, nil
}

package core

import "github.com/rushteam/shoprec/pkg/utils"

// Item 是推荐链路中的统一承载结构：分数、各信号贡献、元信息、标签。
// Signals 记录每个信号源（collab/content/popularity/serendipity）的原始分数，
// 用于 Hybrid 融合与下游解释；Score 是融合后的最终排序分。
type Item struct {
	ID      string
	Score   float64
	Signals map[string]float64
	Meta    map[string]any
	Labels  map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:      id,
		Score:   0,
		Signals: make(map[string]float64),
		Meta:    make(map[string]any),
		Labels:  make(map[string]utils.Label),
	}
}

// PutSignal 写入某个信号源的原始分数；同名信号累加（同一信号源多次命中时叠加贡献）。
func (it *Item) PutSignal(source string, score float64) {
	if it.Signals == nil {
		it.Signals = make(map[string]float64)
	}
	it.Signals[source] += score
}

// SetSignal 覆盖写某个信号源的分数（精排用精确分替换召回粗分）。
func (it *Item) SetSignal(source string, score float64) {
	if it.Signals == nil {
		it.Signals = make(map[string]float64)
	}
	it.Signals[source] = score
}

// Signal 读取某个信号源的分数，不存在返回 0。
func (it *Item) Signal(source string) float64 {
	if it.Signals == nil {
		return 0
	}
	return it.Signals[source]
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// MergeFrom 合并另一个同 ID Item 的信号与标签（多路召回去重时使用，保证每个信号只计一次）。
func (it *Item) MergeFrom(other *Item) {
	if other == nil {
		return
	}
	for src, score := range other.Signals {
		if _, ok := it.Signals[src]; !ok {
			it.PutSignal(src, score)
		}
	}
	for k, v := range other.Labels {
		it.PutLabel(k, v)
	}
	for k, v := range other.Meta {
		if _, ok := it.Meta[k]; !ok {
			it.Meta[k] = v
		}
	}
}

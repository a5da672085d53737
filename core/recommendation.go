package core

// Recommendation 是最终推荐结果的一行：插入顺序即排名顺序。
type Recommendation struct {
	ProductID string             `json:"product_id"`
	Score     float64            `json:"score"`
	Signals   map[string]float64 `json:"signals"`            // 各信号源的原始贡献分
	Sources   []string           `json:"sources"`            // 命中的信号源（collab/content/popularity/serendipity）
	Explain   *ExplainBundle     `json:"explain,omitempty"`  // 结构化解释特征，供外部文案服务消费
}

// ExplainBundle 是发给外部解释服务的结构化特征包。
// 引擎只产出特征，不依赖文案服务的输出保证排序正确性。
type ExplainBundle struct {
	ProductID        string   `json:"product_id"`
	ProductName      string   `json:"product_name"`
	Category         string   `json:"category"`
	MatchedTags      []string `json:"matched_tags,omitempty"`      // 与用户画像重合的标签
	SimilarityScore  float64  `json:"similarity_score"`            // 内容相似度
	CollabScore      float64  `json:"collab_score"`                // 协同预测分
	Sources          []string `json:"sources"`
	ComparablePastID string   `json:"comparable_past_id,omitempty"` // 最相近的历史购买商品（如有）
}

package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 是引擎的全部可调参数。零值字段在 withDefaults 里补齐，
// 所以 Config{} 就是一份可用配置。
type Config struct {
	// WCollab / WContent 混合排序的信号权重。协同信号缺失时
	// 权重会在剩余信号上重归一化，而不是让分数整体缩水。
	WCollab  float64 `yaml:"w_collab" json:"w_collab"`
	WContent float64 `yaml:"w_content" json:"w_content"`

	// MinInteractions 用户参与协同过滤所需的最少交互次数
	MinInteractions int `yaml:"min_interactions_for_collaborative" json:"min_interactions_for_collaborative"`

	// TopKSimilarUsers 协同预测参考的相似用户数
	TopKSimilarUsers int `yaml:"top_k_similar_users" json:"top_k_similar_users"`

	// TopKContent 内容召回的候选数
	TopKContent int `yaml:"top_k_content" json:"top_k_content"`

	// TopKPopularity 热门召回的候选数
	TopKPopularity int `yaml:"top_k_popularity" json:"top_k_popularity"`

	// SerendipityFactor 最终结果里 serendipity 坑位的比例
	SerendipityFactor float64 `yaml:"serendipity_factor" json:"serendipity_factor"`

	// SerendipityMinQuality serendipity 候选的质量下限（Rating）
	SerendipityMinQuality float64 `yaml:"serendipity_min_quality" json:"serendipity_min_quality"`

	// Seed 全局随机种子；每次请求的种子由它与用户 ID 哈希混合得出
	Seed int64 `yaml:"seed" json:"seed"`

	// RecallTimeout 单个召回源的超时时间
	RecallTimeout time.Duration `yaml:"recall_timeout" json:"recall_timeout"`

	// RuleExpr 可选的 CEL 过滤表达式，例如 `item.stock > 0.0`。
	// 表达式为 false 的商品被过滤。
	RuleExpr string `yaml:"rule_expr" json:"rule_expr"`

	// TrendingKey 外部热榜在 KeyValueStore 里的 ZSET key
	TrendingKey string `yaml:"trending_key" json:"trending_key"`
}

// DefaultConfig 返回带默认值的配置。
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.WCollab <= 0 && c.WContent <= 0 {
		c.WCollab, c.WContent = 0.6, 0.4
	}
	if c.MinInteractions <= 0 {
		c.MinInteractions = 3
	}
	if c.TopKSimilarUsers <= 0 {
		c.TopKSimilarUsers = 10
	}
	if c.TopKContent <= 0 {
		c.TopKContent = 20
	}
	if c.TopKPopularity <= 0 {
		c.TopKPopularity = 50
	}
	if c.SerendipityFactor <= 0 {
		c.SerendipityFactor = 0.05
	}
	if c.SerendipityMinQuality <= 0 {
		c.SerendipityMinQuality = 4.0
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.RecallTimeout <= 0 {
		c.RecallTimeout = 2 * time.Second
	}
	if c.TrendingKey == "" {
		c.TrendingKey = "trending:products"
	}
	return c
}

// LoadConfig 从 YAML 文件加载配置，缺省字段用默认值补齐。
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("engine: read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig 从 YAML 字节解析配置。
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}
	return c.withDefaults(), nil
}

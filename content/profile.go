package content

import (
	"context"
	"sync"

	"github.com/rushteam/shoprec/core"
)

// ProfileCache 维护每个用户的内容画像：
// 画像 = 用户交互过的商品向量按交互权重求和后 L2 归一化。
//
// 画像是派生缓存，不是事实来源：任何时刻都可以由交互历史重放重建。
// 新交互到达时只失效该用户的画像（Observe），下次读取惰性重建。
type ProfileCache struct {
	mu       sync.RWMutex
	index    *Index
	log      core.InteractionLog
	profiles map[string]map[string]float64
}

func NewProfileCache(index *Index, log core.InteractionLog) *ProfileCache {
	return &ProfileCache{
		index:    index,
		log:      log,
		profiles: make(map[string]map[string]float64),
	}
}

// Observe 实现 interaction.Listener：只失效该用户的画像，不碰其他用户。
func (c *ProfileCache) Observe(event core.Interaction) {
	c.mu.Lock()
	delete(c.profiles, event.UserID)
	c.mu.Unlock()
}

// Profile 返回用户的内容画像（L2 归一化的稀疏向量）。
// 零交互用户返回空画像（len == 0），调用方据此走热门/serendipity 兜底。
func (c *ProfileCache) Profile(ctx context.Context, userID string) (map[string]float64, error) {
	c.mu.RLock()
	if p, ok := c.profiles[userID]; ok {
		c.mu.RUnlock()
		return p, nil
	}
	c.mu.RUnlock()

	history, err := c.log.InteractionsFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := make(map[string]float64)
	for _, ev := range history {
		vec := c.index.Vector(ev.ProductID)
		if len(vec) == 0 {
			continue
		}
		w := ev.Weight()
		for t, v := range vec {
			profile[t] += w * v
		}
	}
	normalize(profile)

	c.mu.Lock()
	c.profiles[userID] = profile
	c.mu.Unlock()
	return profile, nil
}

// Score 返回用户画像与候选商品向量的余弦相似度。
// 空画像对所有商品得 0 分——排序层负责兜底，不允许无序的全零平局。
func (c *ProfileCache) Score(ctx context.Context, userID, productID string) (float64, error) {
	profile, err := c.Profile(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(profile) == 0 {
		return 0, nil
	}
	return Cosine(profile, c.index.Vector(productID)), nil
}

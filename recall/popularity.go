package recall

import (
	"context"
	"strconv"

	"github.com/rushteam/shoprec/core"
)

// PopularityStats 是热门统计的数据接口（interaction.Store 实现）。
type PopularityStats interface {
	// TopPopular 返回累计交互权重最高的 n 个商品（降序）
	TopPopular(n int) []string

	// PopularityScore 返回商品的热门分（交互次数 × 平均权重）
	PopularityScore(productID string) float64
}

// Popularity 是热门/兜底召回源。数据源优先级：
//  1. KeyValueStore 的 ZSET（如 Redis 上离线维护的 "trending:products" 榜单）
//  2. 交互统计（PopularityStats，进程内实时累计）
//  3. 目录全量（目录很小或没有任何交互时的最后兜底）
//
// 冷启动用户的候选集主要由这一路支撑：协同与内容两路都空手时，
// 排序层按这里写入的 popularity 信号产生确定性的兜底排序。
type Popularity struct {
	Store core.Store // 可选；实现 KeyValueStore 时走 ZRange
	Key   string     // ZSET key，例如 "trending:products"

	Stats   PopularityStats
	Catalog core.Catalog

	// TopK 返回 TopK 个候选，<= 0 时默认 50
	TopK int
}

func (r *Popularity) Name() string { return "recall.popularity" }

func (r *Popularity) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	topK := r.TopK
	if topK <= 0 {
		topK = 50
	}

	// 1. 外部榜单（离线作业维护，分数即榜单序）
	if r.Store != nil && r.Key != "" {
		if kv, ok := r.Store.(core.KeyValueStore); ok {
			members, err := kv.ZRange(ctx, r.Key, 0, int64(topK)-1)
			if err == nil && len(members) > 0 {
				out := make([]*core.Item, 0, len(members))
				for rank, id := range members {
					it := core.NewItem(id)
					score := float64(len(members) - rank)
					it.Score = score
					it.PutSignal(SignalPopularity, score)
					it.Meta["trending_rank"] = strconv.Itoa(rank + 1)
					out = append(out, it)
				}
				return out, nil
			}
		}
	}

	// 2. 进程内实时统计
	if r.Stats != nil {
		ids := r.Stats.TopPopular(topK)
		if len(ids) > 0 {
			out := make([]*core.Item, 0, len(ids))
			for _, id := range ids {
				it := core.NewItem(id)
				score := r.Stats.PopularityScore(id)
				it.Score = score
				it.PutSignal(SignalPopularity, score)
				out = append(out, it)
			}
			return out, nil
		}
	}

	// 3. 目录兜底：按质量信号排一个确定性的序
	if r.Catalog != nil {
		products, err := r.Catalog.AllProducts(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]*core.Item, 0, len(products))
		for _, p := range products {
			it := core.NewItem(p.ID)
			it.Score = p.Rating
			it.PutSignal(SignalPopularity, p.Rating)
			out = append(out, it)
		}
		sortItemsByScoreDesc(out)
		if len(out) > topK {
			out = out[:topK]
		}
		return out, nil
	}

	return nil, nil
}

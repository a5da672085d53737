package rerank

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/utils"
	"github.com/rushteam/shoprec/recall"
)

// Selector 从"非显然"的商品池里抽取 serendipity 候选：
//   - 质量过滤：质量信号（Rating）不低于 MinQuality
//   - 新颖过滤：类目在用户历史类目分布之外
//   - 排除给定集合（主信号已选中的、用户交互过的）
//
// 池内均匀随机抽样，随机源由调用方注入（种子确定则结果确定）。
// 软失败：池子小于 count 时返回全部可用，不报错、不用重复项凑数。
type Selector struct {
	Catalog core.Catalog
	Log     core.InteractionLog

	// MinQuality 质量阈值，<= 0 时默认 4.0
	MinQuality float64
}

// Sample 返回至多 count 个 serendipity 商品 ID。
func (s *Selector) Sample(
	ctx context.Context,
	userID string,
	exclude map[string]struct{},
	count int,
	rng *rand.Rand,
) ([]string, error) {
	if count <= 0 || s.Catalog == nil {
		return nil, nil
	}

	minQuality := s.MinQuality
	if minQuality <= 0 {
		minQuality = 4.0
	}

	// 用户的历史类目分布
	seenCategories := make(map[string]struct{})
	seenProducts := make(map[string]struct{})
	if s.Log != nil && userID != "" {
		history, err := s.Log.InteractionsFor(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, ev := range history {
			seenProducts[ev.ProductID] = struct{}{}
			if p, err := s.Catalog.Product(ctx, ev.ProductID); err == nil {
				seenCategories[p.Category] = struct{}{}
			}
		}
	}

	products, err := s.Catalog.AllProducts(ctx)
	if err != nil {
		return nil, err
	}

	pool := make([]string, 0, len(products))
	for _, p := range products {
		if p.Rating < minQuality {
			continue
		}
		if _, ok := seenCategories[p.Category]; ok {
			continue
		}
		if _, ok := seenProducts[p.ID]; ok {
			continue
		}
		if _, ok := exclude[p.ID]; ok {
			continue
		}
		pool = append(pool, p.ID)
	}
	// AllProducts 已按 ID 升序；保险起见再定序一次，洗牌结果只取决于种子
	sort.Strings(pool)

	if len(pool) <= count {
		return pool, nil
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:count], nil
}

// Serendipity 是重排 Node：在最终 N 个坑位里保留固定比例给 serendipity，
// 坑位数 = round(N × Factor)。插入位置在结果内伪随机选取、偏向尾部，
// 且绝不与主信号已选中的商品重复。
//
// 取整策略：四舍五入（math.Round）。Factor=0.05 时 N=1..9 → 0 个坑位，
// N=10..20 → 1 个坑位（见 serendipity_test.go 的边界用例）。
type Serendipity struct {
	Selector *Selector

	// Factor serendipity 坑位比例，<= 0 时默认 0.05
	Factor float64
}

func (n *Serendipity) Name() string        { return "rerank.serendipity" }
func (n *Serendipity) Kind() pipeline.Kind { return pipeline.KindReRank }

// Slots 返回 n 个坑位里的 serendipity 坑位数。
func (n *Serendipity) Slots(total int) int {
	factor := n.Factor
	if factor <= 0 {
		factor = 0.05
	}
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(total) * factor))
}

func (n *Serendipity) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Selector == nil || rctx == nil || rctx.N <= 0 {
		return items, nil
	}

	total := rctx.N
	slots := n.Slots(total)
	if slots == 0 {
		return items, nil
	}

	// 排除主信号候选全集（不只前 N 个：截断线附近的商品也不该重复出现）
	exclude := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it != nil {
			exclude[it.ID] = struct{}{}
		}
	}

	rng := rand.New(rand.NewSource(rctx.Seed))
	picks, err := n.Selector.Sample(ctx, rctx.UserID, exclude, slots, rng)
	if err != nil || len(picks) == 0 {
		// 软失败：池子为空时保持主信号结果原样
		return items, nil
	}

	// 主信号保留 total - len(picks) 个坑位
	primary := items
	keep := total - len(picks)
	if keep < 0 {
		keep = 0
	}
	if len(primary) > keep {
		primary = primary[:keep]
	}

	resultLen := len(primary) + len(picks)
	positions := tailBiasedPositions(rng, resultLen, len(picks))

	out := make([]*core.Item, resultLen)
	for i, id := range picks {
		it := core.NewItem(id)
		// 中性分：serendipity 不与主信号比大小，位置由坑位决定
		it.Score = 0.5
		it.PutSignal(recall.SignalSerendipity, 1.0)
		it.PutLabel("recall_source", utils.NewLabel("serendipity", "rerank"))
		out[positions[i]] = it
	}
	pi := 0
	for i := range out {
		if out[i] == nil {
			out[i] = primary[pi]
			pi++
		}
	}
	return out, nil
}

// tailBiasedPositions 在 [0, total) 里选 count 个互不相同的位置，
// 平方变换让分布偏向尾部。
func tailBiasedPositions(rng *rand.Rand, total, count int) []int {
	if count > total {
		count = total
	}
	used := make(map[int]struct{}, count)
	out := make([]int, 0, count)
	for len(out) < count {
		u := rng.Float64()
		pos := total - 1 - int(u*u*float64(total))
		if pos < 0 {
			pos = 0
		}
		if pos > total-1 {
			pos = total - 1
		}
		if _, ok := used[pos]; ok {
			// 碰撞时线性探测向前，保证终止
			for {
				pos--
				if pos < 0 {
					pos = total - 1
				}
				if _, ok := used[pos]; !ok {
					break
				}
			}
		}
		used[pos] = struct{}{}
		out = append(out, pos)
	}
	return out
}

package recall

import (
	"context"
	"testing"

	"github.com/rushteam/shoprec/store"
)

func TestPopularity_TrendingZSet(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()

	ctx := context.Background()
	if err := kv.ZAdd(ctx, "trending:products", 7.0, "p2"); err != nil {
		t.Fatalf("ZAdd 失败: %v", err)
	}
	_ = kv.ZAdd(ctx, "trending:products", 3.0, "p1")
	_ = kv.ZAdd(ctx, "trending:products", 5.0, "p3")

	r := &Popularity{Store: kv, Key: "trending:products", TopK: 2}
	items, err := r.Recall(ctx, nil)
	if err != nil {
		t.Fatalf("Recall 失败: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("TopK=2 应返回 2 个候选，实际 %d", len(items))
	}

	want := []string{"p2", "p3"}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("热榜序[%d] = %s，期望 %s", i, items[i].ID, id)
		}
	}
	if items[0].Signal(SignalPopularity) <= items[1].Signal(SignalPopularity) {
		t.Error("热门信号应随榜单序递减")
	}
	if items[0].Meta["trending_rank"] != "1" {
		t.Errorf("榜首 trending_rank 期望 \"1\"，实际 %v", items[0].Meta["trending_rank"])
	}
}

func TestPopularity_ZSetTieBreakDeterministic(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()

	ctx := context.Background()
	for _, id := range []string{"pc", "pa", "pb"} {
		_ = kv.ZAdd(ctx, "trending:products", 4.0, id)
	}

	r := &Popularity{Store: kv, Key: "trending:products", TopK: 3}
	for run := 0; run < 5; run++ {
		items, err := r.Recall(ctx, nil)
		if err != nil {
			t.Fatalf("Recall 失败: %v", err)
		}
		want := []string{"pa", "pb", "pc"}
		for i, id := range want {
			if items[i].ID != id {
				t.Fatalf("同分榜单应按 ID 升序稳定: run=%d [%d]=%s 期望 %s", run, i, items[i].ID, id)
			}
		}
	}
}

func TestPopularity_EmptyZSetFallsBackToStats(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()

	r := &Popularity{Store: kv, Key: "trending:products", Stats: stubStats{}, TopK: 10}
	items, err := r.Recall(context.Background(), nil)
	if err != nil {
		t.Fatalf("Recall 失败: %v", err)
	}
	if len(items) != 2 || items[0].ID != "s1" {
		t.Errorf("空榜单应降级到交互统计，实际 %+v", items)
	}
}

type stubStats struct{}

func (stubStats) TopPopular(n int) []string { return []string{"s1", "s2"} }

func (stubStats) PopularityScore(productID string) float64 {
	if productID == "s1" {
		return 9
	}
	return 1
}

package rerank

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/store"
)

type memLog struct {
	events []core.Interaction
}

func (l *memLog) InteractionsFor(_ context.Context, userID string) ([]core.Interaction, error) {
	var out []core.Interaction
	for _, ev := range l.events {
		if ev.UserID == userID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (l *memLog) AllInteractions(_ context.Context) ([]core.Interaction, error) {
	return l.events, nil
}

func (l *memLog) add(userID, productID string, action core.ActionKind) {
	l.events = append(l.events, core.Interaction{
		UserID: userID, ProductID: productID, Action: action, Timestamp: time.Now(),
	})
}

// serendipityCatalog: audio 是用户的历史类目；kitchen/fitness 是候选池。
func serendipityCatalog() *store.MemoryCatalog {
	c := store.NewMemoryCatalog()
	c.Add(&core.Product{ID: "a1", Name: "Headphones", Category: "audio", Rating: 4.6})
	c.Add(&core.Product{ID: "k1", Name: "Espresso Machine", Category: "kitchen", Rating: 4.5})
	c.Add(&core.Product{ID: "k2", Name: "Chef Knife", Category: "kitchen", Rating: 4.8})
	c.Add(&core.Product{ID: "f1", Name: "Yoga Mat", Category: "fitness", Rating: 4.9})
	c.Add(&core.Product{ID: "f2", Name: "Cheap Dumbbell", Category: "fitness", Rating: 3.0}) // 质量不达标
	return c
}

func TestSlots_Rounding(t *testing.T) {
	n := &Serendipity{Factor: 0.05}

	for total := 1; total <= 20; total++ {
		want := 0
		if total >= 10 {
			want = 1 // round(total × 0.05)，total∈[10,20] 时为 1
		}
		if got := n.Slots(total); got != want {
			t.Errorf("Slots(%d) = %d，期望 %d", total, got, want)
		}
	}

	if got := (&Serendipity{Factor: 0.2}).Slots(10); got != 2 {
		t.Errorf("factor=0.2 时 Slots(10) 期望 2，实际 %d", got)
	}
}

func TestSample_PoolFiltering(t *testing.T) {
	log := &memLog{}
	log.add("u1", "a1", core.ActionPurchase) // 历史类目: audio

	sel := &Selector{Catalog: serendipityCatalog(), Log: log, MinQuality: 4.0}
	rng := rand.New(rand.NewSource(42))

	picks, err := sel.Sample(context.Background(), "u1", nil, 10, rng)
	if err != nil {
		t.Fatalf("Sample 失败: %v", err)
	}

	allowed := map[string]bool{"k1": true, "k2": true, "f1": true}
	for _, id := range picks {
		if !allowed[id] {
			t.Errorf("候选 %s 不应入池（历史类目/低质量/已交互）", id)
		}
	}
	// 池子只有 3 个合格商品，软失败返回全部
	if len(picks) != 3 {
		t.Errorf("池子应有 3 个候选，实际 %d: %v", len(picks), picks)
	}
}

func TestSample_ExcludeSet(t *testing.T) {
	sel := &Selector{Catalog: serendipityCatalog(), Log: &memLog{}, MinQuality: 4.0}
	rng := rand.New(rand.NewSource(42))

	exclude := map[string]struct{}{"k1": {}, "k2": {}}
	picks, err := sel.Sample(context.Background(), "u1", exclude, 10, rng)
	if err != nil {
		t.Fatalf("Sample 失败: %v", err)
	}
	for _, id := range picks {
		if _, ok := exclude[id]; ok {
			t.Errorf("排除集合中的 %s 不应被抽中", id)
		}
	}
}

func TestSerendipity_Injection(t *testing.T) {
	log := &memLog{}
	log.add("u1", "a1", core.ActionPurchase)

	node := &Serendipity{
		Selector: &Selector{Catalog: serendipityCatalog(), Log: log, MinQuality: 4.0},
		Factor:   0.1, // N=10 → 1 个坑位
	}

	primary := make([]*core.Item, 0, 10)
	for i := 0; i < 10; i++ {
		it := core.NewItem(fmt.Sprintf("m%02d", i))
		it.Score = float64(10 - i)
		primary = append(primary, it)
	}
	rctx := &core.RecommendContext{UserID: "u1", N: 10, Seed: 7}

	out, err := node.Process(context.Background(), rctx, primary)
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 10 {
		t.Fatalf("结果长度期望 10，实际 %d", len(out))
	}

	// 不重复，且恰好 1 个 serendipity 商品
	seen := make(map[string]bool)
	injected := 0
	for _, it := range out {
		if seen[it.ID] {
			t.Errorf("结果中出现重复商品 %s", it.ID)
		}
		seen[it.ID] = true
		if lbl, ok := it.Labels["recall_source"]; ok && lbl.Value == "serendipity" {
			injected++
		}
	}
	if injected != 1 {
		t.Errorf("serendipity 注入数期望 1，实际 %d", injected)
	}
}

func TestSerendipity_Deterministic(t *testing.T) {
	log := &memLog{}
	log.add("u1", "a1", core.ActionPurchase)

	run := func() []string {
		node := &Serendipity{
			Selector: &Selector{Catalog: serendipityCatalog(), Log: log, MinQuality: 4.0},
			Factor:   0.1,
		}
		primary := make([]*core.Item, 0, 10)
		for i := 0; i < 10; i++ {
			primary = append(primary, core.NewItem(fmt.Sprintf("m%02d", i)))
		}
		out, err := node.Process(context.Background(), &core.RecommendContext{UserID: "u1", N: 10, Seed: 99}, primary)
		if err != nil {
			t.Fatalf("Process 失败: %v", err)
		}
		ids := make([]string, len(out))
		for i, it := range out {
			ids[i] = it.ID
		}
		return ids
	}

	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("同一种子两次结果不一致: %v vs %v", first, second)
		}
	}
}

func TestSerendipity_EmptyPoolKeepsPrimary(t *testing.T) {
	// 用户交互过所有类目 → 池子为空，主信号结果原样返回
	log := &memLog{}
	log.add("u1", "a1", core.ActionView)
	log.add("u1", "k1", core.ActionView)
	log.add("u1", "f1", core.ActionView)

	node := &Serendipity{
		Selector: &Selector{Catalog: serendipityCatalog(), Log: log, MinQuality: 4.0},
		Factor:   0.1,
	}
	primary := []*core.Item{core.NewItem("m1"), core.NewItem("m2")}

	out, err := node.Process(context.Background(), &core.RecommendContext{UserID: "u1", N: 10, Seed: 1}, primary)
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 2 || out[0].ID != "m1" || out[1].ID != "m2" {
		t.Errorf("空池时应原样返回主信号结果，实际 %v", out)
	}
}

func TestTopN_Truncation(t *testing.T) {
	items := []*core.Item{core.NewItem("a"), core.NewItem("b"), core.NewItem("c")}

	tests := []struct {
		name string
		node *TopNNode
		rctx *core.RecommendContext
		want int
	}{
		{"节点 N 优先", &TopNNode{N: 2}, &core.RecommendContext{N: 1}, 2},
		{"回退 rctx.N", &TopNNode{}, &core.RecommendContext{N: 1}, 1},
		{"都未设置不截断", &TopNNode{}, &core.RecommendContext{}, 3},
		{"N 大于候选数", &TopNNode{N: 10}, &core.RecommendContext{}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.node.Process(context.Background(), tt.rctx, items)
			if err != nil {
				t.Fatalf("Process 失败: %v", err)
			}
			if len(out) != tt.want {
				t.Errorf("结果长度期望 %d，实际 %d", tt.want, len(out))
			}
		})
	}
}

package content

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/shoprec/core"
)

// memLog 是测试用的 core.InteractionLog 实现。
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

func TestProfile_EmptyForNewUser(t *testing.T) {
	idx := NewIndex()
	idx.Build(testProducts())
	cache := NewProfileCache(idx, &memLog{})

	profile, err := cache.Profile(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Profile 失败: %v", err)
	}
	if len(profile) != 0 {
		t.Errorf("零交互用户画像应为空，实际 %d 项", len(profile))
	}

	score, err := cache.Score(context.Background(), "nobody", "p1")
	if err != nil {
		t.Fatalf("Score 失败: %v", err)
	}
	if score != 0 {
		t.Errorf("空画像对任何商品得分应为 0，实际 %v", score)
	}
}

func TestProfile_ReflectsInteractions(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()
	idx.Build(testProducts())

	log := &memLog{}
	log.add("u1", "p1", core.ActionPurchase)
	cache := NewProfileCache(idx, log)

	// 音频用户：音频商品得分高于健身商品
	audioScore, _ := cache.Score(ctx, "u1", "p2")
	fitnessScore, _ := cache.Score(ctx, "u1", "p3")
	if audioScore <= fitnessScore {
		t.Errorf("音频画像对音频商品得分 %v 应高于健身商品 %v", audioScore, fitnessScore)
	}
	if audioScore <= 0 {
		t.Errorf("同类商品得分应为正，实际 %v", audioScore)
	}
}

func TestObserve_InvalidatesSingleUser(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()
	idx.Build(testProducts())

	log := &memLog{}
	log.add("u1", "p1", core.ActionView)
	cache := NewProfileCache(idx, log)

	before, _ := cache.Score(ctx, "u1", "p2")

	// 新交互改变画像；Observe 后下次读取重建
	log.add("u1", "p3", core.ActionPurchase)
	cache.Observe(core.Interaction{UserID: "u1", ProductID: "p3", Action: core.ActionPurchase})

	after, _ := cache.Score(ctx, "u1", "p3")
	if after <= 0 {
		t.Errorf("购买 p3 后画像应覆盖健身词元，得分 %v", after)
	}

	afterAudio, _ := cache.Score(ctx, "u1", "p2")
	if afterAudio == before {
		t.Log("音频得分未变化——权重占比可能恰好抵消，但画像必须已重建")
	}
}

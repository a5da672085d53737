package interaction

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rushteam/shoprec/core"
)

// Listener 在每条交互摄入成功后被同步回调，用于增量更新派生缓存
// （协同矩阵、用户内容画像）。回调发生在 Record 返回之前，
// 保证下一次推荐请求一定能看到这条事件。
type Listener interface {
	Observe(event core.Interaction)
}

// Store 持有加权的用户-商品交互事件，是其余组件的叶子依赖。
//
// 读写纪律（见 DESIGN.md）：
//   - 写（Record）全局互斥：按到达顺序串行摄入，避免同一用户矩阵行的更新丢失；
//     目录规模内竞争很低，不做 per-user 分段锁
//   - 读（History/累计权重/热门统计）共享读
//
// 同一 (user, product) 的多次交互按权重累加（可交换可结合），
// 与摄入顺序无关；事件本身只追加，不支持删除。
type Store struct {
	mu        sync.RWMutex
	users     core.UserDirectory
	catalog   core.Catalog
	events    []core.Interaction
	byUser    map[string][]int // userID -> event 下标（时间序）
	weights   map[string]map[string]float64
	purchased map[string]map[string]struct{}
	popWeight map[string]float64 // productID -> 累计权重（热门兜底用）
	popCount  map[string]int

	listeners []Listener

	// now 可注入，测试用固定时钟
	now func() time.Time
}

func NewStore(users core.UserDirectory, catalog core.Catalog) *Store {
	return &Store{
		users:     users,
		catalog:   catalog,
		byUser:    make(map[string][]int),
		weights:   make(map[string]map[string]float64),
		purchased: make(map[string]map[string]struct{}),
		popWeight: make(map[string]float64),
		popCount:  make(map[string]int),
		now:       time.Now,
	}
}

// Subscribe 注册一个增量更新监听者。注册应在摄入开始前完成，不支持并发注册。
func (s *Store) Subscribe(l Listener) {
	if l == nil {
		return
	}
	s.listeners = append(s.listeners, l)
}

// Record 摄入一条交互事件。
// 未知用户/商品/行为类型、rating 行为缺评分，都在任何状态变更之前
// 拒绝（fail fast），返回 INVALID_INTERACTION 领域错误。
func (s *Store) Record(ctx context.Context, userID, productID string, action core.ActionKind, rating float64) error {
	if !action.Valid() {
		return core.ErrInvalidInteraction
	}
	if action == core.ActionRating && rating <= 0 {
		return core.ErrInvalidInteraction
	}
	if s.users != nil {
		if _, err := s.users.User(ctx, userID); err != nil {
			return core.ErrInvalidInteraction
		}
	}
	if s.catalog != nil {
		if _, err := s.catalog.Product(ctx, productID); err != nil {
			return core.ErrInvalidInteraction
		}
	}

	event := core.Interaction{
		UserID:    userID,
		ProductID: productID,
		Action:    action,
		Rating:    rating,
		Timestamp: s.now(),
	}

	s.mu.Lock()
	idx := len(s.events)
	s.events = append(s.events, event)
	s.byUser[userID] = append(s.byUser[userID], idx)

	if s.weights[userID] == nil {
		s.weights[userID] = make(map[string]float64)
	}
	s.weights[userID][productID] += action.Weight()

	s.popWeight[productID] += action.Weight()
	s.popCount[productID]++

	if action == core.ActionPurchase {
		if s.purchased[userID] == nil {
			s.purchased[userID] = make(map[string]struct{})
		}
		s.purchased[userID][productID] = struct{}{}
	}
	listeners := s.listeners
	s.mu.Unlock()

	// 通知放在存储锁之外：监听者各自持有自己的锁，
	// 但仍在 Record 返回之前完成，增量更新对下一个请求立即可见。
	for _, l := range listeners {
		l.Observe(event)
	}
	return nil
}

// History 返回某个用户的全部交互，按时间戳升序（惰性拷贝，调用方可安全持有）。
func (s *Store) History(_ context.Context, userID string) []core.Interaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idxs := s.byUser[userID]
	out := make([]core.Interaction, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.events[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// InteractionsFor 实现 core.InteractionLog。
func (s *Store) InteractionsFor(ctx context.Context, userID string) ([]core.Interaction, error) {
	return s.History(ctx, userID), nil
}

// AllInteractions 实现 core.InteractionLog。
func (s *Store) AllInteractions(_ context.Context) ([]core.Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Interaction, len(s.events))
	copy(out, s.events)
	return out, nil
}

// AccumulatedWeight 返回 (user, product) 的累计交互权重。
func (s *Store) AccumulatedWeight(userID, productID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights[userID][productID]
}

// InteractionCount 返回用户的交互总条数（冷启动阈值判断用）。
func (s *Store) InteractionCount(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUser[userID])
}

// PurchasedSet 返回用户已购商品集合的拷贝（排序层的排除规则用）。
func (s *Store) PurchasedSet(userID string) map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.purchased[userID]
	out := make(map[string]struct{}, len(src))
	for id := range src {
		out[id] = struct{}{}
	}
	return out
}

// HasPurchased 返回用户是否购买过该商品（排除规则的 O(1) 判定）。
func (s *Store) HasPurchased(userID, productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.purchased[userID][productID]
	return ok
}

// PopularityScore 返回商品的热门分：交互次数 × 平均权重，即累计权重总和。
func (s *Store) PopularityScore(productID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.popWeight[productID]
}

// TopPopular 返回累计权重最高的 n 个商品（降序；同分按 ID 升序，保证确定性）。
func (s *Store) TopPopular(n int) []string {
	s.mu.RLock()
	type scored struct {
		id    string
		score float64
	}
	all := make([]scored, 0, len(s.popWeight))
	for id, w := range s.popWeight {
		all = append(all, scored{id: id, score: w})
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].id < all[j].id
	})
	if n > 0 && len(all) > n {
		all = all[:n]
	}
	out := make([]string, 0, len(all))
	for _, s := range all {
		out = append(out, s.id)
	}
	return out
}

var _ core.InteractionLog = (*Store)(nil)

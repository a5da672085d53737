package collab

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/rushteam/shoprec/core"
)

// Model 维护实时的用户-商品亲和矩阵（User-Item Matrix），
// 并在其上提供用户相似度与协同预测分。
//
// 核心思想（User-CF）："兴趣相似的用户，喜欢相似的物品"
//
// 增量纪律：
//   - 新交互只更新一个矩阵单元（摊还 O(1)），并只失效涉及该用户的相似度缓存
//   - 矩阵永远不会按请求全量重算；相似度只在活跃用户查询时 O(用户数) 重算
//   - 矩阵是派生缓存，可由交互日志重放重建（Bootstrap）
//
// 读写纪律：矩阵用 RWMutex，Observe 独占写，打分路径共享读；
// 相似度缓存在读路径上也会回填，单独用 simMu 互斥，
// 并发 Recommend 同时算相似度时不会出现共享读锁下的 map 写。
type Model struct {
	// MinInteractions 是冷启动阈值：交互条数低于它时 Predict 恒为 0，
	// 排序层对权重做重归一化（内容分独占）。
	MinInteractions int

	// TopKSimilarUsers 是 Predict 参考的最相似用户数。
	TopKSimilarUsers int

	mu     sync.RWMutex
	matrix map[string]map[string]float64 // userID -> productID -> 累计权重
	counts map[string]int                // userID -> 交互事件条数

	// simCache[a][b] 缓存 Similarity(a,b)；a 的向量变更时删除 simCache[a]
	// 以及所有指向 a 的反向条目，其余用户的缓存不受影响。
	// 读路径回填缓存，所以单独加锁，不随 mu 走读写锁。
	simMu    sync.Mutex
	simCache map[string]map[string]float64
}

func NewModel(minInteractions, topKSimilarUsers int) *Model {
	if minInteractions <= 0 {
		minInteractions = 3
	}
	if topKSimilarUsers <= 0 {
		topKSimilarUsers = 10
	}
	return &Model{
		MinInteractions:  minInteractions,
		TopKSimilarUsers: topKSimilarUsers,
		matrix:           make(map[string]map[string]float64),
		counts:           make(map[string]int),
		simCache:         make(map[string]map[string]float64),
	}
}

// Bootstrap 用既有交互日志重放出矩阵（启动时一次）。
func (m *Model) Bootstrap(ctx context.Context, log core.InteractionLog) error {
	events, err := log.AllInteractions(ctx)
	if err != nil {
		return err
	}
	for _, ev := range events {
		m.Observe(ev)
	}
	return nil
}

// Observe 实现 interaction.Listener：单元素增量更新 + 定向缓存失效。
func (m *Model) Observe(event core.Interaction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := m.matrix[event.UserID]
	if row == nil {
		row = make(map[string]float64)
		m.matrix[event.UserID] = row
	}
	row[event.ProductID] += event.Weight()
	m.counts[event.UserID]++

	m.simMu.Lock()
	delete(m.simCache, event.UserID)
	for _, cached := range m.simCache {
		delete(cached, event.UserID)
	}
	m.simMu.Unlock()
}

// Ready 返回该用户的交互数据是否足以产生可靠的协同信号。
func (m *Model) Ready(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[userID] >= m.MinInteractions
}

// Similarity 计算两个用户的余弦相似度，取值 [-1,1]，对称。
// 点积只在双方共同交互过的商品交集上计算；交集为空时相似度为 0。
// 范数取各自完整向量——重度用户和只有两次重合的轻度用户不会被误判为完全相似。
func (m *Model) Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.similarityLocked(a, b)
}

// similarityLocked 要求调用方至少持有 mu 的读锁（保护矩阵）；
// 缓存的读取和回填走独立的 simMu，并发读请求可以安全地同时回填。
func (m *Model) similarityLocked(a, b string) float64 {
	m.simMu.Lock()
	if cached, ok := m.simCache[a]; ok {
		if sim, ok := cached[b]; ok {
			m.simMu.Unlock()
			return sim
		}
	}
	m.simMu.Unlock()

	va := m.matrix[a]
	vb := m.matrix[b]
	sim := cosineOverIntersection(va, vb)

	m.simMu.Lock()
	if m.simCache[a] == nil {
		m.simCache[a] = make(map[string]float64)
	}
	m.simCache[a][b] = sim
	m.simMu.Unlock()
	return sim
}

// cosineOverIntersection: dot 限定在交集，范数用完整向量。
func cosineOverIntersection(va, vb map[string]float64) float64 {
	if len(va) == 0 || len(vb) == 0 {
		return 0
	}
	small, large := va, vb
	if len(vb) < len(va) {
		small, large = vb, va
	}
	var dot float64
	hit := false
	for p, x := range small {
		if y, ok := large[p]; ok {
			dot += x * y
			hit = true
		}
	}
	if !hit {
		return 0
	}
	na := vectorNorm(va)
	nb := vectorNorm(vb)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}

func vectorNorm(v map[string]float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Neighbor 是一个相似用户及其相似度。
type Neighbor struct {
	UserID     string
	Similarity float64
}

// SimilarUsers 返回与目标用户最相似的 k 个其他用户（相似度 > 0），
// 按相似度降序，同分按 UserID 升序（确定性）。
func (m *Model) SimilarUsers(userID string, k int) []Neighbor {
	if k <= 0 {
		k = m.TopKSimilarUsers
	}
	m.mu.RLock()
	neighbors := make([]Neighbor, 0, len(m.matrix))
	for other := range m.matrix {
		if other == userID {
			continue
		}
		sim := m.similarityLocked(userID, other)
		if sim > 0 {
			neighbors = append(neighbors, Neighbor{UserID: other, Similarity: sim})
		}
	}
	m.mu.RUnlock()

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].UserID < neighbors[j].UserID
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}

// Predict 预测用户对商品的协同分：在 K 个最相似且交互过该商品的
// 其他用户上做相似度加权平均 Σ(sim·w)/Σ(sim)。
// 冷启动（交互数 < MinInteractions）或无邻居交互过该商品时返回 0，
// 由排序层重归一化权重，不在这里报错。
func (m *Model) Predict(userID, productID string) float64 {
	if !m.Ready(userID) {
		return 0
	}
	neighbors := m.SimilarUsers(userID, m.TopKSimilarUsers)
	if len(neighbors) == 0 {
		return 0
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var weighted, simSum float64
	for _, nb := range neighbors {
		w, ok := m.matrix[nb.UserID][productID]
		if !ok {
			continue
		}
		weighted += nb.Similarity * w
		simSum += nb.Similarity
	}
	if simSum == 0 {
		return 0
	}
	return weighted / simSum
}

// CandidatesFrom 返回 K 个最相似用户交互过、而目标用户尚未交互的商品，
// 分数为 Σ(相似度 × 邻居权重)——这是召回粗分，精排走 Predict。
func (m *Model) CandidatesFrom(userID string, k int) map[string]float64 {
	neighbors := m.SimilarUsers(userID, k)
	if len(neighbors) == 0 {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	own := m.matrix[userID]
	out := make(map[string]float64)
	for _, nb := range neighbors {
		for productID, w := range m.matrix[nb.UserID] {
			if _, seen := own[productID]; seen {
				continue
			}
			out[productID] += nb.Similarity * w
		}
	}
	return out
}

// ItemsOf 返回某用户的矩阵行拷贝（serendipity 的类目统计等只读用途）。
func (m *Model) ItemsOf(userID string) map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row := m.matrix[userID]
	out := make(map[string]float64, len(row))
	for p, w := range row {
		out[p] = w
	}
	return out
}

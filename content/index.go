package content

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/rushteam/shoprec/core"
)

// Index 在全量商品之上构建 TF-IDF 向量空间：
// 词表 = name/category/tags 的词元；每个商品向量 = 词频 × 逆文档频率，L2 归一化。
//
// 复杂度取舍（刻意的，不隐藏）：
//   - Add 新商品会触发整个快照的全量重建，O(商品数 × 词元数)。
//     目录规模在千级以内时重建耗时可忽略；增量的 idf 惰性修正在这个
//     规模下复杂度收益不抵实现成本，明确选择全量重建。
//   - 重建产出一个全新的 snapshot，通过 atomic.Pointer 一次性切换：
//     读请求看到的要么是旧索引要么是新索引，绝不会是半成品（§并发模型）。
type Index struct {
	mu       sync.Mutex // 串行化重建（写少读多）
	products map[string]*core.Product
	snap     atomic.Pointer[snapshot]
}

// snapshot 是一次构建的不可变产物。
type snapshot struct {
	vectors map[string]map[string]float64 // productID -> L2 归一化 TF-IDF 向量
	idf     map[string]float64
	docs    int
}

func NewIndex() *Index {
	idx := &Index{products: make(map[string]*core.Product)}
	idx.snap.Store(&snapshot{
		vectors: make(map[string]map[string]float64),
		idf:     make(map[string]float64),
	})
	return idx
}

// Build 以一批商品做全量构建（目录加载时调用一次）。
func (idx *Index) Build(products []*core.Product) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, p := range products {
		if p != nil && p.ID != "" {
			idx.products[p.ID] = p
		}
	}
	idx.rebuildLocked()
}

// Add 增量加入一个商品并重建快照。见类型注释中的复杂度取舍。
func (idx *Index) Add(p *core.Product) {
	if p == nil || p.ID == "" {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.products[p.ID] = p
	idx.rebuildLocked()
}

// rebuildLocked 重建 TF-IDF 快照。调用方必须持有 idx.mu。
func (idx *Index) rebuildLocked() {
	docs := len(idx.products)
	tokensByID := make(map[string][]string, docs)
	df := make(map[string]int)

	for id, p := range idx.products {
		tokens := Tokenize(ProductText(p.Name, p.Category, p.Tags))
		tokensByID[id] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	// 平滑 idf：ln((1+N)/(1+df)) + 1，避免零除并压低全量出现的词
	idf := make(map[string]float64, len(df))
	for t, d := range df {
		idf[t] = math.Log(float64(1+docs)/float64(1+d)) + 1
	}

	vectors := make(map[string]map[string]float64, docs)
	for id, tokens := range tokensByID {
		vec := make(map[string]float64, len(tokens))
		for _, t := range tokens {
			vec[t] += idf[t] // tf(按出现次数累加) × idf
		}
		normalize(vec)
		vectors[id] = vec
	}

	idx.snap.Store(&snapshot{vectors: vectors, idf: idf, docs: docs})
}

// Vector 返回商品的稀疏 TF-IDF 向量（L2 归一化）。未知商品返回 nil。
func (idx *Index) Vector(productID string) map[string]float64 {
	return idx.snap.Load().vectors[productID]
}

// Similarity 计算两个商品内容向量的余弦相似度，取值 [0,1]。
func (idx *Index) Similarity(a, b string) float64 {
	snap := idx.snap.Load()
	return Cosine(snap.vectors[a], snap.vectors[b])
}

// IDs 返回已索引的商品 ID（快照视图，无序）。
func (idx *Index) IDs() []string {
	snap := idx.snap.Load()
	out := make([]string, 0, len(snap.vectors))
	for id := range snap.vectors {
		out = append(out, id)
	}
	return out
}

// Cosine 计算两个稀疏向量的余弦相似度。任一侧为零向量时返回 0。
// 两侧都已 L2 归一化时等价于点积，但这里不做归一化假设，方便画像向量直接复用。
func Cosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	// 遍历较小的一侧
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for t, va := range a {
		if vb, ok := b[t]; ok {
			dot += va * vb
		}
	}
	na := norm(a)
	nb := norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}

func norm(v map[string]float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func normalize(v map[string]float64) {
	n := norm(v)
	if n == 0 {
		return
	}
	for t := range v {
		v[t] /= n
	}
}

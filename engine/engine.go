// Package engine 是推荐引擎的组装层：把交互存储、内容索引、协同模型、
// 召回/过滤/排序/重排流水线接成一个可用的门面。
package engine

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/rushteam/shoprec/collab"
	"github.com/rushteam/shoprec/content"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/feature"
	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/interaction"
	"github.com/rushteam/shoprec/model"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/rank"
	"github.com/rushteam/shoprec/recall"
	"github.com/rushteam/shoprec/rerank"
	"github.com/rushteam/shoprec/service"
	"github.com/rushteam/shoprec/store"
)

// Engine 是推荐引擎门面。所有组件在 New 里接线一次，
// 之后 RecordInteraction / Recommend 并发安全。
type Engine struct {
	cfg Config

	catalog      *store.MemoryCatalog
	users        *store.MemoryUserDirectory
	interactions *interaction.Store
	index        *content.Index
	profiles     *content.ProfileCache
	collab       *collab.Model

	pipe      *pipeline.Pipeline
	features  feature.Provider
	explainer service.Explainer

	trending    core.Store
	trendingKey string

	pipeConfig *pipeline.Config
}

// Option 调整引擎的可选组件。
type Option func(*Engine)

// WithExplainer 注入解释服务（默认模板文案）。
func WithExplainer(e service.Explainer) Option {
	return func(eng *Engine) { eng.explainer = e }
}

// WithTrendingStore 注入外部热榜存储（如 RedisStore），
// 默认是进程内的 MemoryStore。引擎会在每次交互后用累计热门分
// 刷新 ZSET，热门召回优先读它。
func WithTrendingStore(s core.Store) Option {
	return func(eng *Engine) { eng.trending = s }
}

// WithFeatureProvider 注入商品特征源（默认读本地目录）。
func WithFeatureProvider(p feature.Provider) Option {
	return func(eng *Engine) { eng.features = p }
}

// New 组装推荐引擎。
func New(cfg Config, opts ...Option) (*Engine, error) {
	cfg = cfg.withDefaults()

	eng := &Engine{
		cfg:         cfg,
		catalog:     store.NewMemoryCatalog(),
		users:       store.NewMemoryUserDirectory(),
		index:       content.NewIndex(),
		trendingKey: cfg.TrendingKey,
	}
	for _, opt := range opts {
		opt(eng)
	}

	eng.interactions = interaction.NewStore(eng.users, eng.catalog)
	eng.profiles = content.NewProfileCache(eng.index, eng.interactions)
	eng.collab = collab.NewModel(cfg.MinInteractions, cfg.TopKSimilarUsers)

	// 交互事件推给增量模型；画像缓存按用户失效，协同模型 O(1) 更新
	eng.interactions.Subscribe(eng.collab)
	eng.interactions.Subscribe(eng.profiles)

	if eng.features == nil {
		eng.features = &feature.CatalogProvider{Catalog: eng.catalog}
	}
	if eng.explainer == nil {
		eng.explainer = service.TemplateExplainer{}
	}
	if eng.trending == nil {
		eng.trending = store.NewMemoryStore()
	}

	if eng.pipeConfig != nil {
		pipe, err := eng.pipeConfig.BuildPipeline(eng.NodeFactory())
		if err != nil {
			return nil, fmt.Errorf("engine: build pipeline from config: %w", err)
		}
		eng.pipe = pipe
		return eng, nil
	}

	pipe, err := eng.buildPipeline()
	if err != nil {
		return nil, err
	}
	eng.pipe = pipe
	return eng, nil
}

func (e *Engine) buildPipeline() (*pipeline.Pipeline, error) {
	cfg := e.cfg

	fanout := &recall.Fanout{
		Sources: []recall.Source{
			&recall.Collaborative{
				Model:            e.collab,
				TopKSimilarUsers: cfg.TopKSimilarUsers,
			},
			&recall.Content{
				Index:    e.index,
				Profiles: e.profiles,
				Log:      e.interactions,
				TopK:     cfg.TopKContent,
			},
			&recall.Popularity{
				Store:   e.trending,
				Key:     e.trendingKey,
				Stats:   e.interactions,
				Catalog: e.catalog,
				TopK:    cfg.TopKPopularity,
			},
		},
		Timeout: cfg.RecallTimeout,
	}

	filters := []filter.Filter{
		&filter.Purchased{Checker: e.interactions},
	}
	if cfg.RuleExpr != "" {
		rule, err := filter.NewRule(cfg.RuleExpr)
		if err != nil {
			return nil, fmt.Errorf("engine: compile rule filter: %w", err)
		}
		filters = append(filters, rule)
	}

	fusion := &model.Linear{
		Weights: map[string]float64{
			recall.SignalCollab:  cfg.WCollab,
			recall.SignalContent: cfg.WContent,
		},
		Normalized: true,
	}

	return &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			fanout,
			&feature.EnrichNode{Provider: e.features},
			&filter.Node{Filters: filters},
			&rank.Hybrid{Collab: e.collab, Profiles: e.profiles, Fusion: fusion},
			&rerank.Serendipity{
				Selector: &rerank.Selector{
					Catalog:    e.catalog,
					Log:        e.interactions,
					MinQuality: cfg.SerendipityMinQuality,
				},
				Factor: cfg.SerendipityFactor,
			},
			&rerank.TopNNode{},
		},
	}, nil
}

// RegisterProduct 录入商品：写目录并增量重建内容索引。
func (e *Engine) RegisterProduct(p *core.Product) {
	if p == nil || p.ID == "" {
		return
	}
	e.catalog.Add(p)
	e.index.Add(p)
}

// RegisterUser 录入用户。
func (e *Engine) RegisterUser(u *core.User) {
	if u == nil || u.ID == "" {
		return
	}
	e.users.Add(u)
}

// RecordInteraction 记录一次用户行为。
// 校验失败（未知用户/商品、非法行为、rating 行为缺评分）返回类型化错误，
// 且不产生任何副作用。
func (e *Engine) RecordInteraction(ctx context.Context, userID, productID string, action core.ActionKind, rating float64) error {
	if err := e.interactions.Record(ctx, userID, productID, action, rating); err != nil {
		return err
	}
	e.refreshTrending(ctx, productID)
	return nil
}

// refreshTrending 把最新热门分写进外部热榜。热榜是加速层，
// 写失败不影响交互记录本身。
func (e *Engine) refreshTrending(ctx context.Context, productID string) {
	kv, ok := e.trending.(core.KeyValueStore)
	if !ok {
		return
	}
	score := e.interactions.PopularityScore(productID)
	_ = kv.ZAdd(ctx, e.trendingKey, score, productID)
}

// RecommendOption 调整单次推荐请求。
type RecommendOption func(*core.RecommendContext)

// WithExcludePurchased 控制是否过滤已购商品（默认过滤）。
func WithExcludePurchased(exclude bool) RecommendOption {
	return func(rctx *core.RecommendContext) { rctx.ExcludePurchased = exclude }
}

// WithSeed 覆盖本次请求的随机种子。
func WithSeed(seed int64) RecommendOption {
	return func(rctx *core.RecommendContext) { rctx.Seed = seed }
}

// WithParam 附加请求级上下文参数（device_type、scene 等），供规则过滤使用。
func WithParam(key string, value any) RecommendOption {
	return func(rctx *core.RecommendContext) {
		if rctx.Params == nil {
			rctx.Params = make(map[string]any)
		}
		rctx.Params[key] = value
	}
}

// Recommend 为用户生成至多 n 条推荐，插入顺序即排名。
// 候选不足 n 条时返回所有可用结果；未知用户返回 ErrUnknownUser。
func (e *Engine) Recommend(ctx context.Context, userID string, n int, opts ...RecommendOption) ([]core.Recommendation, error) {
	if n <= 0 {
		return nil, nil
	}
	if _, err := e.users.User(ctx, userID); err != nil {
		return nil, err
	}

	rctx := &core.RecommendContext{
		UserID:           userID,
		N:                n,
		ExcludePurchased: true,
		Seed:             e.requestSeed(userID),
	}
	for _, opt := range opts {
		opt(rctx)
	}

	items, err := e.pipe.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	out := make([]core.Recommendation, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, e.buildRecommendation(ctx, userID, it))
	}
	return out, nil
}

// requestSeed 把全局种子和用户 ID 哈希混合，同一用户的冷启动/serendipity
// 排序可复现，不同用户互不相同。
func (e *Engine) requestSeed(userID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(userID))
	return e.cfg.Seed ^ int64(h.Sum64())
}

// 信号源的展示顺序固定，保证 Sources 字段确定性。
var signalOrder = []string{
	recall.SignalCollab,
	recall.SignalContent,
	recall.SignalPopularity,
	recall.SignalSerendipity,
}

func (e *Engine) buildRecommendation(ctx context.Context, userID string, it *core.Item) core.Recommendation {
	signals := make(map[string]float64, len(it.Signals))
	for k, v := range it.Signals {
		signals[k] = v
	}

	sources := make([]string, 0, len(signals))
	for _, s := range signalOrder {
		if _, ok := signals[s]; ok {
			sources = append(sources, s)
		}
	}

	rec := core.Recommendation{
		ProductID: it.ID,
		Score:     it.Score,
		Signals:   signals,
		Sources:   sources,
	}
	rec.Explain = e.buildExplainBundle(ctx, userID, it, sources)
	return rec
}

func (e *Engine) buildExplainBundle(ctx context.Context, userID string, it *core.Item, sources []string) *core.ExplainBundle {
	bundle := &core.ExplainBundle{
		ProductID:       it.ID,
		Sources:         sources,
		SimilarityScore: it.Signal(recall.SignalContent),
		CollabScore:     it.Signal(recall.SignalCollab),
	}

	product, err := e.catalog.Product(ctx, it.ID)
	if err != nil {
		return bundle
	}
	bundle.ProductName = product.Name
	bundle.Category = product.Category
	bundle.MatchedTags = e.matchedTags(ctx, userID, product)
	bundle.ComparablePastID = e.comparablePast(ctx, userID, it.ID)
	return bundle
}

// matchedTags 返回商品标签里与用户内容画像重合的部分。
func (e *Engine) matchedTags(ctx context.Context, userID string, product *core.Product) []string {
	profile, err := e.profiles.Profile(ctx, userID)
	if err != nil || len(profile) == 0 {
		return nil
	}
	var matched []string
	for _, tag := range product.Tags {
		for _, term := range content.Tokenize(tag) {
			if _, ok := profile[term]; ok {
				matched = append(matched, tag)
				break
			}
		}
	}
	return matched
}

// comparablePast 在用户的历史交互里找与该商品内容最相近的一件。
func (e *Engine) comparablePast(ctx context.Context, userID, productID string) string {
	history, err := e.interactions.InteractionsFor(ctx, userID)
	if err != nil || len(history) == 0 {
		return ""
	}

	seen := make(map[string]struct{}, len(history))
	past := make([]string, 0, len(history))
	for _, ev := range history {
		if ev.ProductID == productID {
			continue
		}
		if _, ok := seen[ev.ProductID]; ok {
			continue
		}
		seen[ev.ProductID] = struct{}{}
		past = append(past, ev.ProductID)
	}
	sort.Strings(past)

	bestID, bestSim := "", 0.0
	for _, id := range past {
		if sim := e.index.Similarity(productID, id); sim > bestSim {
			bestID, bestSim = id, sim
		}
	}
	return bestID
}

// ExplainRecommendation 为一条推荐生成解释文案。
// 远端解释服务失败时降级到模板文案，保证总有输出。
func (e *Engine) ExplainRecommendation(ctx context.Context, userID string, rec *core.Recommendation) (string, error) {
	if rec == nil || rec.Explain == nil {
		return "", fmt.Errorf("engine: recommendation has no explain bundle")
	}
	req := &service.ExplainRequest{UserID: userID, Bundle: rec.Explain}
	text, err := e.explainer.Explain(ctx, req)
	if err != nil {
		return service.TemplateExplainer{}.Explain(ctx, req)
	}
	return text, nil
}

// History 返回用户按时间排序的交互记录；未知用户返回 ErrUnknownUser。
func (e *Engine) History(ctx context.Context, userID string) ([]core.Interaction, error) {
	if _, err := e.users.User(ctx, userID); err != nil {
		return nil, err
	}
	return e.interactions.History(ctx, userID), nil
}

// TrendingProducts 返回当前热门商品快照（降序）。
func (e *Engine) TrendingProducts(ctx context.Context, n int) ([]*core.Product, error) {
	if n <= 0 {
		return nil, nil
	}

	ids := e.trendingIDs(ctx, n)
	out := make([]*core.Product, 0, len(ids))
	for _, id := range ids {
		if p, err := e.catalog.Product(ctx, id); err == nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (e *Engine) trendingIDs(ctx context.Context, n int) []string {
	if kv, ok := e.trending.(core.KeyValueStore); ok {
		if ids, err := kv.ZRange(ctx, e.trendingKey, 0, int64(n-1)); err == nil && len(ids) > 0 {
			return ids
		}
	}
	return e.interactions.TopPopular(n)
}

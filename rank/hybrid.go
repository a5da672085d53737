package rank

import (
	"context"
	"sort"

	"github.com/rushteam/shoprec/collab"
	"github.com/rushteam/shoprec/content"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/model"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/conv"
	"github.com/rushteam/shoprec/pkg/utils"
	"github.com/rushteam/shoprec/recall"
)

// Hybrid 是混合排序 Node：对每个候选计算协同预测分与内容相似分，
// 用线性模型融合成最终分。
//
//	final_score = w_collab × collab_score + w_content × content_score
//
// 降级阶梯（全部本地恢复，不向调用方暴露失败）：
//  1. 正常：两路信号线性融合（默认 0.6 / 0.4）
//  2. 协同冷启动（交互数不足）：权重重归一化，内容分独占排序
//  3. 零交互用户（画像也为空）：按热门信号确定性兜底排序
//
// 同一商品经多路召回只在这里打分一次（fanout 已去重），不重复计分。
// 排序：最终分降序；同分先比质量信号（Rating 高者优先），再比商品 ID
// 升序，保证结果确定性。
type Hybrid struct {
	Collab   *collab.Model
	Profiles *content.ProfileCache

	// Fusion 为空时用默认线性融合 {collab: 0.6, content: 0.4}，开启重归一化
	Fusion model.RankModel
}

// DefaultFusion 返回默认的融合模型。
func DefaultFusion() *model.Linear {
	return &model.Linear{
		Weights:    map[string]float64{recall.SignalCollab: 0.6, recall.SignalContent: 0.4},
		Normalized: true,
	}
}

func (n *Hybrid) Name() string        { return "rank.hybrid" }
func (n *Hybrid) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *Hybrid) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 || rctx == nil {
		return items, nil
	}

	fusion := n.fusion()

	profile, err := n.Profiles.Profile(ctx, rctx.UserID)
	if err != nil {
		return nil, err
	}
	collabReady := n.Collab != nil && n.Collab.Ready(rctx.UserID)
	contentReady := len(profile) > 0

	// 零交互兜底：两路信号都不可用时按热门信号排序，
	// 绝不输出全零分数的未定义平局
	if !collabReady && !contentReady {
		for _, it := range items {
			it.Score = it.Signal(recall.SignalPopularity)
			it.PutLabel("rank_model", utils.NewLabel("popularity_fallback", "rank"))
		}
		n.sortItems(items)
		return items, nil
	}

	for _, it := range items {
		if it == nil {
			continue
		}

		var collabScore float64
		if collabReady {
			collabScore = n.Collab.Predict(rctx.UserID, it.ID)
		}
		contentScore, err := n.Profiles.Score(ctx, rctx.UserID, it.ID)
		if err != nil {
			return nil, err
		}

		// 精排分覆盖召回粗分，Signals 里永远是最终参与融合的值
		it.SetSignal(recall.SignalCollab, collabScore)
		it.SetSignal(recall.SignalContent, contentScore)

		// 重归一化看用户状态，不看单个候选：协同只在冷启动时整体缺席。
		// 热用户下 Predict 为 0（没有邻居交互过该候选）仍按 0 参与融合，
		// 保持 w_collab×0 + w_content×content，不让缺协同分的候选吃满权重。
		features := map[string]float64{recall.SignalContent: contentScore}
		if collabReady {
			features[recall.SignalCollab] = collabScore
		}
		score, err := fusion.Predict(features)
		if err != nil {
			return nil, err
		}
		it.Score = score
		it.PutLabel("rank_model", utils.NewLabel(fusion.Name(), "rank"))
	}

	n.sortItems(items)
	return items, nil
}

func (n *Hybrid) fusion() model.RankModel {
	if n.Fusion != nil {
		return n.Fusion
	}
	return DefaultFusion()
}

// sortItems：分数降序 → 质量信号（rating）降序 → 商品 ID 升序。
func (n *Hybrid) sortItems(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		ri := conv.ConfigGetFloat64(items[i].Meta, "rating", 0)
		rj := conv.ConfigGetFloat64(items[j].Meta, "rating", 0)
		if ri != rj {
			return ri > rj
		}
		return items[i].ID < items[j].ID
	})
}

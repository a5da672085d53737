package model

// RankModel 是排序阶段的最小抽象：输入特征，输出一个可比较的分数。
// 具体实现可以是本地的线性融合模型，也可以替换为任意可学习的打分器。
type RankModel interface {
	Name() string
	Predict(features map[string]float64) (float64, error)
}

package core

import "context"

// Catalog 是商品目录的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由协作方实现（存储技术不在本引擎范围内）
//   - 引擎只读：商品在种子导入后不可变
//
// 实现：
//   - store.MemoryCatalog 实现此接口（测试/开发/原型）
//   - 其他存储后端（MySQL、ES 等）也可以实现此接口
type Catalog interface {
	// Product 获取单个商品，不存在时返回 ErrUnknownProduct
	Product(ctx context.Context, productID string) (*Product, error)

	// AllProducts 获取全部商品（候选兜底 / 内容索引构建）
	AllProducts(ctx context.Context) ([]*Product, error)
}

// UserDirectory 是用户目录的领域接口，摄入与推荐边界用它校验用户存在性。
type UserDirectory interface {
	// User 获取单个用户，不存在时返回 ErrUnknownUser
	User(ctx context.Context, userID string) (*User, error)
}

// InteractionLog 是交互历史的领域接口（只追加）。
//
// 实现：
//   - interaction.Store 实现此接口（内存，带增量通知）
type InteractionLog interface {
	// InteractionsFor 获取某个用户的全部交互，按时间戳升序
	InteractionsFor(ctx context.Context, userID string) ([]Interaction, error)

	// AllInteractions 获取全部交互（热门统计 / 协同矩阵重放）
	AllInteractions(ctx context.Context) ([]Interaction, error)
}

package core

// Product 是商品实体。种子导入后不可变：内容向量由 Name/Category/Tags
// 确定性推导，生命周期内不支持在线文本变更。
type Product struct {
	ID       string
	Name     string
	Category string
	Tags     []string
	Price    float64
	Rating   float64 // 质量信号（0-5），用于 tie-break 与 serendipity 质量过滤
	Stock    int
}

// User 是用户实体。隐式画像（内容偏好向量）不随 User 存储，
// 始终可以由交互历史重放推导（见 content.ProfileCache）。
type User struct {
	ID    string
	Email string
	Name  string
}

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rushteam/shoprec/core"
)

// MemoryCatalog 是内存实现的商品目录，用于测试/开发/原型。
// 商品在种子导入后只读，读路径无锁竞争压力（RWMutex 共享读）。
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[string]*core.Product
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{products: make(map[string]*core.Product)}
}

// Add 导入一个商品（种子阶段调用）。同 ID 覆盖。
func (c *MemoryCatalog) Add(p *core.Product) {
	if p == nil || p.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
}

func (c *MemoryCatalog) Product(_ context.Context, productID string) (*core.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[productID]
	if !ok {
		return nil, core.ErrUnknownProduct
	}
	return p, nil
}

// AllProducts 返回全部商品，按 ID 升序（确定性遍历，保证排序 tie-break 可复现）。
func (c *MemoryCatalog) AllProducts(_ context.Context) ([]*core.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*core.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Len 返回商品数量。
func (c *MemoryCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

var _ core.Catalog = (*MemoryCatalog)(nil)

// MemoryUserDirectory 是内存实现的用户目录。
type MemoryUserDirectory struct {
	mu    sync.RWMutex
	users map[string]*core.User
}

func NewMemoryUserDirectory() *MemoryUserDirectory {
	return &MemoryUserDirectory{users: make(map[string]*core.User)}
}

// Add 注册一个用户。同 ID 覆盖。
func (d *MemoryUserDirectory) Add(u *core.User) {
	if u == nil || u.ID == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

func (d *MemoryUserDirectory) User(_ context.Context, userID string) (*core.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[userID]
	if !ok {
		return nil, core.ErrUnknownUser
	}
	return u, nil
}

var _ core.UserDirectory = (*MemoryUserDirectory)(nil)

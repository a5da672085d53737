package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误分层：
//   - 硬错误：INVALID_INTERACTION / UNKNOWN_USER / UNKNOWN_PRODUCT，
//     在边界处 fail fast，拒绝后不执行任何打分
//   - 软场景：候选不足、协同数据不足——不是错误，由排序层本地降级
//     （权重重归一化 / 热门兜底），永远不会作为失败暴露给调用方
type DomainError struct {
	Code    string // 错误代码（如 "UNKNOWN_USER"）
	Message string // 错误消息
	Module  string // 模块名称（如 "interaction", "engine", "store"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound           = "NOT_FOUND"            // 资源不存在
	ErrorCodeNotSupported       = "NOT_SUPPORTED"        // 操作不支持
	ErrorCodeUnavailable        = "UNAVAILABLE"          // 服务不可用
	ErrorCodeInvalidInteraction = "INVALID_INTERACTION"  // 未知用户/商品/行为类型
	ErrorCodeUnknownUser        = "UNKNOWN_USER"         // 推荐请求的用户不存在
	ErrorCodeUnknownProduct     = "UNKNOWN_PRODUCT"      // 商品不存在
)

// 模块名称常量
const (
	ModuleStore       = "store"
	ModuleInteraction = "interaction"
	ModuleEngine      = "engine"
	ModuleService     = "service"
)

// 边界错误（识别失败在任何打分之前拒绝）
var (
	ErrInvalidInteraction = NewDomainError(ModuleInteraction, ErrorCodeInvalidInteraction, "interaction: unknown user/product/action")
	ErrUnknownUser        = NewDomainError(ModuleEngine, ErrorCodeUnknownUser, "engine: unknown user")
	ErrUnknownProduct     = NewDomainError(ModuleEngine, ErrorCodeUnknownProduct, "engine: unknown product")
)

func isCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsInvalidInteraction 检查错误是否为无效交互（未知用户/商品/行为）。
func IsInvalidInteraction(err error) bool { return isCode(err, ErrorCodeInvalidInteraction) }

// IsUnknownUser 检查错误是否为用户不存在。
func IsUnknownUser(err error) bool { return isCode(err, ErrorCodeUnknownUser) }

// IsUnknownProduct 检查错误是否为商品不存在。
func IsUnknownProduct(err error) bool { return isCode(err, ErrorCodeUnknownProduct) }

// IsNotFound 检查错误是否为 NOT_FOUND。
func IsNotFound(err error) bool { return isCode(err, ErrorCodeNotFound) }

// IsNotSupported 检查错误是否为 NOT_SUPPORTED。
func IsNotSupported(err error) bool { return isCode(err, ErrorCodeNotSupported) }

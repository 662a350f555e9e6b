package types

// CreatePostRequest 创建帖子请求 (multipart form). 附件通过 file 字段单独上传.
type CreatePostRequest struct {
	Name  string   `form:"name"  json:"name"            rule:"required,max=512"`
	Date  string   `form:"date"  json:"date"            rule:"required"` // RFC3339 或 2006-01-02
	Notes string   `form:"notes" json:"notes,omitempty"`
	Type  string   `form:"type"  json:"type,omitempty"  rule:"max=128"`
	Tags  []string `form:"tags"  json:"tags,omitempty"`
}

// UpdatePostRequest 更新帖子请求 (multipart form). 指针字段区分"未提供"与"提供"；
// 未提供或为空的字段保持原值.
type UpdatePostRequest struct {
	Name  *string   `form:"name"  json:"name,omitempty"`
	Date  *string   `form:"date"  json:"date,omitempty"` // RFC3339 或 2006-01-02
	Notes *string   `form:"notes" json:"notes,omitempty"`
	Type  *string   `form:"type"  json:"type,omitempty"`
	Tags  *[]string `form:"tags"  json:"tags,omitempty"`
}

// PostResponse 单个帖子的响应表示.
type PostResponse struct {
	ID        uint     `json:"id"`
	Owner     string   `json:"owner"`
	Name      string   `json:"name"`
	Date      string   `json:"date"`
	Notes     string   `json:"notes,omitempty"`
	Type      string   `json:"type,omitempty"`
	File      string   `json:"file,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// ListPostsResponse 帖子列表响应.
type ListPostsResponse struct {
	Posts []PostResponse `json:"posts"`
	Total int            `json:"total"`
}

// PostEnvelope 单个帖子响应信封.
type PostEnvelope struct {
	Post PostResponse `json:"post"`
}

// Package model 定义数据库模型.
package model

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"
)

// Post 帖子模型. 附件以对象存储为真源，这里只保存对象键与访问 URL.
type Post struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// 所有者标识，来自认证令牌的 subject
	Owner string    `gorm:"size:255;index" json:"owner"`
	Name  string    `gorm:"size:512;index" json:"name"`
	Date  time.Time `gorm:"index"          json:"date"`
	Notes string    `gorm:"type:text"      json:"notes"`
	Type  string    `gorm:"size:128;index" json:"type"`
	// 附件在对象存储中的键与外部访问 URL
	ObjectKey string `gorm:"size:1024;index" json:"object_key"`
	FileURL   string `gorm:"size:2048"       json:"file_url"`
	// Tags 以 JSON 字符串形式存储，便于模糊搜索；未来可替换为 JSONB
	TagsJSON string `gorm:"type:text" json:"-"`
	// 软删除与审计
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index"     json:"-"`
}

// Tags 反序列化标签列表. 空字符串返回 nil.
func (p *Post) Tags() ([]string, error) {
	if p.TagsJSON == "" {
		return nil, nil
	}

	var tags []string
	if err := sonic.Unmarshal([]byte(p.TagsJSON), &tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}

	return tags, nil
}

// SetTags 序列化标签列表写入 TagsJSON.
func (p *Post) SetTags(tags []string) error {
	if len(tags) == 0 {
		p.TagsJSON = ""
		return nil
	}

	b, err := sonic.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	p.TagsJSON = string(b)

	return nil
}

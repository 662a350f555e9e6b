package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yeisme/postvault/pkg/internal/model"
)

// 业务错误哨兵. handle 层据此映射 HTTP 状态码.
var (
	// ErrNotFound 帖子不存在（含软删除）.
	ErrNotFound = errors.New("post not found")
	// ErrForbidden 操作者不是帖子所有者.
	ErrForbidden = errors.New("not the owner of this post")
	// ErrStorageUnavailable 对象存储不可用.
	ErrStorageUnavailable = errors.New("object storage unavailable")
)

// ValidationError 字段级校验失败.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, rule := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, rule))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// newValidationError 构造单字段校验错误.
func newValidationError(field, rule string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: rule}}
}

// ensureFound 将 gorm 的记录缺失错误翻译为 ErrNotFound.
func ensureFound(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	return err
}

// ensureOwned 校验操作者是否为帖子所有者.
func ensureOwned(actingUser string, post *model.Post) error {
	if post.Owner != actingUser {
		return fmt.Errorf("%w: post %d", ErrForbidden, post.ID)
	}

	return nil
}

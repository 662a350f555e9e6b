// Package handle 提供请求处理器的实现，是 HTTP 层与 service 层的边界.
package handle

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/postvault/pkg/context"
	"github.com/yeisme/postvault/pkg/internal/service"
	"github.com/yeisme/postvault/pkg/internal/types"
	"github.com/yeisme/postvault/pkg/log"
	"github.com/yeisme/postvault/pkg/middleware"
)

// actingUser 提取认证中间件注入的操作者身份.
func actingUser(c *gin.Context) (string, error) {
	user := strings.TrimSpace(c.GetString(middleware.ActingUserKey))
	if user == "" {
		return "", errors.New("no authenticated user")
	}

	return user, nil
}

// writeError 将 service 层的业务错误翻译为 HTTP 状态码与统一错误体.
func writeError(c *gin.Context, err error) {
	l := ctxPkg.WithTraceContext(c.Request.Context(), *log.Logger())

	var vErr *service.ValidationError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusUnprocessableEntity, types.ErrorResponse{
			Error:  "validation failed",
			Fields: vErr.Fields,
		})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "post not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, types.ErrorResponse{Error: "not the owner of this post"})
	case errors.Is(err, service.ErrStorageUnavailable):
		l.Error().Err(err).Msg("object storage unavailable")
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "object storage unavailable"})
	default:
		l.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
	}
}

// Package api 负责将 HTTP 路由组挂载到 gin 引擎.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/postvault/pkg/internal/router"
)

// RegisterGroup 注册帖子资源与健康检查路由到传入的 gin 引擎.
func RegisterGroup(e *gin.Engine) *gin.Engine {
	router.RegisterPostsRoutes(e.Group("/posts"))
	router.RegisterHealthCheckRoute(e.Group(""))

	return e
}

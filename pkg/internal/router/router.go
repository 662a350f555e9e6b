// Package router 管理路由配置，负责将路径和处理器绑定到 gin 引擎.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/postvault/pkg/internal/handle"
)

// RegisterPostsRoutes 注册帖子资源路由.
// 绑定的路径（上层传入 posts := r.Group("/posts")）：
//
//	GET    /        -> ListPosts
//	POST   /        -> CreatePost
//	GET    /:id     -> GetPost
//	PATCH  /:id     -> UpdatePost
//	DELETE /:id     -> DeletePost
func RegisterPostsRoutes(group *gin.RouterGroup) {
	group.GET("", handle.ListPosts)
	group.POST("", handle.CreatePost)
	group.GET("/:id", handle.GetPost)
	group.PATCH("/:id", handle.UpdatePost)
	group.DELETE("/:id", handle.DeletePost)
}

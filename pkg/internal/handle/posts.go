package handle

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/postvault/pkg/internal/service"
	"github.com/yeisme/postvault/pkg/internal/types"
	"github.com/yeisme/postvault/pkg/rule"
)

// ListPosts 列出全部帖子.
func ListPosts(c *gin.Context) {
	svc := service.NewPostService(c.Request.Context())

	resp, err := svc.ListPosts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetPost 获取单个帖子.
func GetPost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	svc := service.NewPostService(c.Request.Context())

	env, err := svc.GetPost(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, env)
}

// CreatePost 创建帖子，multipart form 携带元数据与附件.
func CreatePost(c *gin.Context) {
	user, err := actingUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req types.CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		writeBindError(c, err)
		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		writeBindError(c, err)
		return
	}

	file, closeFile, err := formFile(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if closeFile != nil {
		defer closeFile()
	}

	svc := service.NewPostService(c.Request.Context())

	env, err := svc.CreatePost(c.Request.Context(), user, &req, file)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, env)
}

// UpdatePost 更新帖子，只合并请求中提供的字段，可选替换附件.
func UpdatePost(c *gin.Context) {
	user, err := actingUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "unauthorized"})
		return
	}

	id, ok := postID(c)
	if !ok {
		return
	}

	var req types.UpdatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		writeBindError(c, err)
		return
	}

	file, closeFile, err := formFile(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if closeFile != nil {
		defer closeFile()
	}

	svc := service.NewPostService(c.Request.Context())

	if err := svc.UpdatePost(c.Request.Context(), user, id, &req, file); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeletePost 删除帖子及其附件.
func DeletePost(c *gin.Context) {
	user, err := actingUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "unauthorized"})
		return
	}

	id, ok := postID(c)
	if !ok {
		return
	}

	svc := service.NewPostService(c.Request.Context())

	if err := svc.DeletePost(c.Request.Context(), user, id); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// postID 解析路径参数. 非法 id 视作不存在的帖子.
func postID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "post not found"})
		return 0, false
	}

	return uint(id), true
}

// formFile 提取可选的 multipart 附件. 未提供时返回 nil.
func formFile(c *gin.Context) (*service.FileUpload, func(), error) {
	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}

		return nil, nil, err
	}

	f, err := header.Open()
	if err != nil {
		return nil, nil, err
	}

	return &service.FileUpload{
		Name:        header.Filename,
		Reader:      f,
		Size:        header.Size,
		ContentType: contentType(header),
	}, func() { _ = f.Close() }, nil
}

func contentType(header *multipart.FileHeader) string {
	ct := header.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}

	return ct
}

// writeBindError 将表单绑定/校验错误映射为 422.
func writeBindError(c *gin.Context, err error) {
	fields := rule.Errors(err)
	if len(fields) == 0 {
		fields = nil
	}

	c.JSON(http.StatusUnprocessableEntity, types.ErrorResponse{
		Error:  "validation failed",
		Fields: fields,
	})
}

package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/postvault/pkg/internal/model"
	"github.com/yeisme/postvault/pkg/internal/types"
	plog "github.com/yeisme/postvault/pkg/log"
	"github.com/yeisme/postvault/pkg/queue"
)

const producerName = "postvault"

// buildObjectKey 构建对象存储路径. 放在 service 层便于未来统一策略（如目录分桶）.
// uuid 前缀保证同名文件不冲突.
func buildObjectKey(owner, fileName string) string {
	datePath := time.Now().UTC().Format("2006/01") // 只到月，避免目录过深

	return fmt.Sprintf("%s/%s/%s_%s", owner, datePath, uuid.NewString(), sanitizeFileName(fileName)) // owner/2025/09/uuid_filename
}

// sanitizeFileName 去掉路径成分和不安全字符，保留扩展名.
func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)

	if name == "" || name == "." {
		name = "file"
	}

	return name
}

// stripBlanks 将提供但为空的字符串字段视为未提供.
// 表单里 `notes=` 这类空值不应清掉已存储的内容.
func stripBlanks(req *types.UpdatePostRequest) {
	if req.Name != nil && *req.Name == "" {
		req.Name = nil
	}

	if req.Date != nil && *req.Date == "" {
		req.Date = nil
	}

	if req.Notes != nil && *req.Notes == "" {
		req.Notes = nil
	}

	if req.Type != nil && *req.Type == "" {
		req.Type = nil
	}
}

// postRef 构建事件中的帖子引用.
func postRef(post *model.Post) queue.PostRef {
	return queue.PostRef{
		ID:        post.ID,
		Owner:     post.Owner,
		Name:      post.Name,
		ObjectKey: post.ObjectKey,
		FileURL:   post.FileURL,
	}
}

// headerOpts 从 ctx 提取追踪信息生成事件头选项.
func headerOpts(ctx context.Context) []func(*queue.EventHeader) {
	opts := []func(*queue.EventHeader){queue.WithProducer(producerName)}

	if span := trace.SpanFromContext(ctx); span.SpanContext().HasTraceID() {
		opts = append(opts, queue.WithTraceID(span.SpanContext().TraceID().String()))
	}

	return opts
}

// 事件发布失败只记录日志，不影响请求结果.

func (s *PostService) publishCreated(ctx context.Context, post *model.Post) {
	if s.pub == nil || !s.events.Enabled || !s.events.Post.Created {
		return
	}

	msg, err := queue.NewWatermillMessage(queue.TopicPostCreated,
		queue.PostCreatedPayload{Post: postRef(post)}, headerOpts(ctx)...)
	if err == nil {
		err = s.pub.Publish(ctx, queue.TopicPostCreated, msg)
	}

	if err != nil {
		plog.Logger().Warn().Err(err).Uint("post_id", post.ID).Msg("publish post created event failed")
	}
}

func (s *PostService) publishUpdated(ctx context.Context, post *model.Post, prevKey string) {
	if s.pub == nil || !s.events.Enabled || !s.events.Post.Updated {
		return
	}

	msg, err := queue.NewWatermillMessage(queue.TopicPostUpdated,
		queue.PostUpdatedPayload{Post: postRef(post), PrevObjectKey: prevKey}, headerOpts(ctx)...)
	if err == nil {
		err = s.pub.Publish(ctx, queue.TopicPostUpdated, msg)
	}

	if err != nil {
		plog.Logger().Warn().Err(err).Uint("post_id", post.ID).Msg("publish post updated event failed")
	}
}

func (s *PostService) publishDeleted(ctx context.Context, post *model.Post, blobRemoved bool) {
	if s.pub == nil || !s.events.Enabled || !s.events.Post.Deleted {
		return
	}

	msg, err := queue.NewWatermillMessage(queue.TopicPostDeleted,
		queue.PostDeletedPayload{Post: postRef(post), BlobRemoved: blobRemoved}, headerOpts(ctx)...)
	if err == nil {
		err = s.pub.Publish(ctx, queue.TopicPostDeleted, msg)
	}

	if err != nil {
		plog.Logger().Warn().Err(err).Uint("post_id", post.ID).Msg("publish post deleted event failed")
	}
}

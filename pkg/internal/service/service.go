// Package service 实现帖子资源的业务逻辑.
package service

import (
	"context"
	"io"

	"github.com/ThreeDotsLabs/watermill/message"
	"gorm.io/gorm"

	"github.com/yeisme/postvault/pkg/configs"
	ctxPkg "github.com/yeisme/postvault/pkg/context"
	"github.com/yeisme/postvault/pkg/internal/storage/s3"
)

// ObjectStore 是 service 层对对象存储的最小依赖.
// *s3.Client 实现该接口；测试中可用内存实现替代.
type ObjectStore interface {
	// Upload 将数据流写入存储，返回对象信息.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*s3.UploadResult, error)
	// Remove 删除对象，对象不存在不视为错误.
	Remove(ctx context.Context, key string) error
	// PublicURL 构造对象的外部访问 URL.
	PublicURL(key string) string
}

// EventPublisher 是 service 层对消息队列的最小依赖.
// *mq.Client 实现该接口.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

// FileUpload 描述一个待上传的附件.
type FileUpload struct {
	Name        string
	Reader      io.Reader
	Size        int64
	ContentType string
}

// PostService 聚合帖子操作所需的存储依赖.
type PostService struct {
	db     *gorm.DB
	store  ObjectStore
	pub    EventPublisher
	events configs.EventsConfig
}

// NewPostService 从 context 中提取存储客户端构造服务.
func NewPostService(c context.Context) *PostService {
	svc := &PostService{events: configs.GetConfig().Events}

	if mgr := ctxPkg.GetManager(c); mgr != nil {
		if mgr.DB != nil {
			svc.db = mgr.DB.GetDB()
		}

		if mgr.S3 != nil {
			svc.store = mgr.S3
		}

		if mgr.MQ != nil {
			svc.pub = mgr.MQ
		}
	}

	return svc
}

// newPostService 直接注入依赖，供测试使用.
func newPostService(db *gorm.DB, store ObjectStore, pub EventPublisher, events configs.EventsConfig) *PostService {
	return &PostService{db: db, store: store, pub: pub, events: events}
}

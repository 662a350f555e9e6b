package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、OccurredAt、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// PostRef 标识一条帖子及其附件在对象存储中的位置.
type PostRef struct {
	ID        uint   `json:"id"`
	Owner     string `json:"owner"`
	Name      string `json:"name,omitempty"`
	ObjectKey string `json:"object_key,omitempty"`
	FileURL   string `json:"file_url,omitempty"`
}

// PostCreatedPayload 帖子创建完成.
type PostCreatedPayload struct {
	Post PostRef `json:"post"`
}

// PostUpdatedPayload 帖子更新完成. 附件被替换时携带被删除的旧对象键.
type PostUpdatedPayload struct {
	Post          PostRef `json:"post"`
	PrevObjectKey string  `json:"prev_object_key,omitempty"`
}

// PostDeletedPayload 帖子删除完成.
type PostDeletedPayload struct {
	Post PostRef `json:"post"`
	// BlobRemoved 指示附件对象是否已成功从对象存储删除
	BlobRemoved bool `json:"blob_removed"`
}

package queue

import "github.com/ThreeDotsLabs/watermill/message"

// -------------------------- 基于业务封装 events --------------------------

// PublishPostCreated 发布 pv.post.created 事件。
// 在附件写入对象存储且元数据落库后调用，通知下游（通知、索引等）。
// 可通过可选项 opts 注入 TraceID、Producer 等头部信息。
func PublishPostCreated(pub message.Publisher, payload PostCreatedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicPostCreated, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicPostCreated, msg)
}

// PublishPostUpdated 发布 pv.post.updated 事件。
func PublishPostUpdated(pub message.Publisher, payload PostUpdatedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicPostUpdated, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicPostUpdated, msg)
}

// PublishPostDeleted 发布 pv.post.deleted 事件。
func PublishPostDeleted(pub message.Publisher, payload PostDeletedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicPostDeleted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicPostDeleted, msg)
}

// ParsePostCreated 将 Watermill 消息解析为强类型 Envelope（PostCreatedPayload）。
func ParsePostCreated(msg *message.Message) (Message[PostCreatedPayload], error) {
	return ParseWatermillMessage[PostCreatedPayload](msg)
}

// ParsePostUpdated 将 Watermill 消息解析为强类型 Envelope（PostUpdatedPayload）。
func ParsePostUpdated(msg *message.Message) (Message[PostUpdatedPayload], error) {
	return ParseWatermillMessage[PostUpdatedPayload](msg)
}

// ParsePostDeleted 将 Watermill 消息解析为强类型 Envelope（PostDeletedPayload）。
func ParsePostDeleted(msg *message.Message) (Message[PostDeletedPayload], error) {
	return ParseWatermillMessage[PostDeletedPayload](msg)
}

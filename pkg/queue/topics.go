package queue

// 主题命名规范：pv.<域>.<动作>，尽量稳定且向后兼容.

const (
	// 帖子领域.
	TopicPostCreated = "pv.post.created" // 帖子创建完成（附件已写入对象存储，元数据已落库）
	TopicPostUpdated = "pv.post.updated" // 帖子更新完成（可能伴随附件替换）
	TopicPostDeleted = "pv.post.deleted" // 帖子删除完成（附件已尽力清理）
)

// 主题分组，用于批量订阅或权限控制.
var (
	// 帖子相关主题集合.
	PostTopics = []string{
		TopicPostCreated, TopicPostUpdated, TopicPostDeleted,
	}
)

package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/postvault/pkg/configs"
	"github.com/yeisme/postvault/pkg/internal/model"
	"github.com/yeisme/postvault/pkg/internal/storage/s3"
	"github.com/yeisme/postvault/pkg/internal/types"
)

// fakeStore 内存对象存储实现，记录上传与删除操作.
type fakeStore struct {
	uploads    map[string]string
	removed    []string
	failUpload bool
	failRemove bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploads: map[string]string{}}
}

func (f *fakeStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*s3.UploadResult, error) {
	if f.failUpload {
		return nil, errors.New("connection refused")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	f.uploads[key] = string(data)

	return &s3.UploadResult{Key: key, Size: int64(len(data)), URL: f.PublicURL(key)}, nil
}

func (f *fakeStore) Remove(ctx context.Context, key string) error {
	if f.failRemove {
		return errors.New("connection refused")
	}

	f.removed = append(f.removed, key)
	delete(f.uploads, key)

	return nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "http://s3.local/postvault/" + key
}

// fakePublisher 记录发布的事件主题.
type fakePublisher struct {
	topics []string
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	f.topics = append(f.topics, topic)
	return nil
}

func newTestService(t *testing.T) (*PostService, *fakeStore, *fakePublisher) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(&model.Post{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := newFakeStore()
	pub := &fakePublisher{}
	events := configs.EventsConfig{
		Enabled: true,
		Post:    configs.PostEventsConfig{Created: true, Updated: true, Deleted: true},
	}

	return newPostService(db, store, pub, events), store, pub
}

func strptr(s string) *string { return &s }

func createTestPost(t *testing.T, svc *PostService, owner, name string) types.PostResponse {
	t.Helper()

	req := &types.CreatePostRequest{
		Name: name,
		Date: "2025-06-01",
		Tags: []string{"alpha", "beta"},
	}
	file := &FileUpload{
		Name:        name + ".txt",
		Reader:      strings.NewReader("hello"),
		Size:        5,
		ContentType: "text/plain",
	}

	env, err := svc.CreatePost(context.Background(), owner, req, file)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	return env.Post
}

func TestCreatePost(t *testing.T) {
	svc, store, pub := newTestService(t)

	post := createTestPost(t, svc, "alice", "first")

	if post.Owner != "alice" {
		t.Errorf("owner = %q, want alice", post.Owner)
	}

	if post.Name != "first" {
		t.Errorf("name = %q, want first", post.Name)
	}

	if len(post.Tags) != 2 || post.Tags[0] != "alpha" {
		t.Errorf("tags = %v, want [alpha beta]", post.Tags)
	}

	if !strings.HasPrefix(post.File, "http://s3.local/postvault/alice/") {
		t.Errorf("file url = %q, want alice-prefixed key", post.File)
	}

	if !strings.HasSuffix(post.File, "_first.txt") {
		t.Errorf("file url = %q, want original name suffix", post.File)
	}

	if len(store.uploads) != 1 {
		t.Errorf("uploads = %d, want 1", len(store.uploads))
	}

	if len(pub.topics) != 1 || pub.topics[0] != "pv.post.created" {
		t.Errorf("published topics = %v, want [pv.post.created]", pub.topics)
	}
}

func TestCreatePostValidation(t *testing.T) {
	svc, store, _ := newTestService(t)

	var vErr *ValidationError

	// 缺少附件
	_, err := svc.CreatePost(context.Background(), "alice",
		&types.CreatePostRequest{Name: "x", Date: "2025-06-01"}, nil)
	if !errors.As(err, &vErr) {
		t.Fatalf("create without file: err = %v, want ValidationError", err)
	}

	if _, ok := vErr.Fields["file"]; !ok {
		t.Errorf("fields = %v, want file entry", vErr.Fields)
	}

	// 非法日期
	_, err = svc.CreatePost(context.Background(), "alice",
		&types.CreatePostRequest{Name: "x", Date: "not-a-date"},
		&FileUpload{Name: "a.txt", Reader: strings.NewReader("x"), Size: 1})
	if !errors.As(err, &vErr) {
		t.Fatalf("create with bad date: err = %v, want ValidationError", err)
	}

	if len(store.uploads) != 0 {
		t.Errorf("uploads = %d, want 0 after validation failures", len(store.uploads))
	}
}

func TestCreatePostStorageUnavailable(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.failUpload = true

	_, err := svc.CreatePost(context.Background(), "alice",
		&types.CreatePostRequest{Name: "x", Date: "2025-06-01"},
		&FileUpload{Name: "a.txt", Reader: strings.NewReader("x"), Size: 1})
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("err = %v, want ErrStorageUnavailable", err)
	}

	// 上传失败时不应落库
	var count int64

	svc.db.Model(&model.Post{}).Count(&count)

	if count != 0 {
		t.Errorf("post count = %d, want 0", count)
	}
}

func TestPostServiceWithoutObjectStore(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.store = nil

	req := &types.CreatePostRequest{Name: "first", Date: "2025-06-01"}
	file := &FileUpload{Name: "a.txt", Reader: strings.NewReader("x"), Size: 1, ContentType: "text/plain"}

	_, err := svc.CreatePost(context.Background(), "alice", req, file)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("create without store: err = %v, want ErrStorageUnavailable", err)
	}

	// 无附件替换的更新和删除不依赖对象存储
	withStore, _, _ := newTestService(t)
	created := createTestPost(t, withStore, "alice", "first")

	svc.db = withStore.db

	err = svc.UpdatePost(context.Background(), "alice", created.ID,
		&types.UpdatePostRequest{Notes: strptr("still works")}, nil)
	if err != nil {
		t.Errorf("metadata update without store: %v", err)
	}

	err = svc.UpdatePost(context.Background(), "alice", created.ID, &types.UpdatePostRequest{},
		&FileUpload{Name: "b.txt", Reader: strings.NewReader("y"), Size: 1, ContentType: "text/plain"})
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("file replace without store: err = %v, want ErrStorageUnavailable", err)
	}

	if err := svc.DeletePost(context.Background(), "alice", created.ID); err != nil {
		t.Errorf("delete without store: %v", err)
	}
}

func TestGetPost(t *testing.T) {
	svc, _, _ := newTestService(t)

	created := createTestPost(t, svc, "alice", "first")

	env, err := svc.GetPost(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}

	if env.Post.ID != created.ID || env.Post.Name != "first" {
		t.Errorf("got %+v, want id=%d name=first", env.Post, created.ID)
	}

	if _, err := svc.GetPost(context.Background(), 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("get missing: err = %v, want ErrNotFound", err)
	}
}

func TestListPosts(t *testing.T) {
	svc, _, _ := newTestService(t)

	createTestPost(t, svc, "alice", "first")
	createTestPost(t, svc, "bob", "second")

	resp, err := svc.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}

	if resp.Total != 2 || len(resp.Posts) != 2 {
		t.Fatalf("total = %d, posts = %d, want 2", resp.Total, len(resp.Posts))
	}

	// 列表包含所有者身份
	owners := map[string]bool{}
	for _, p := range resp.Posts {
		owners[p.Owner] = true
	}

	if !owners["alice"] || !owners["bob"] {
		t.Errorf("owners = %v, want alice and bob", owners)
	}
}

func TestUpdatePostMergesSuppliedFields(t *testing.T) {
	svc, _, pub := newTestService(t)

	created := createTestPost(t, svc, "alice", "first")

	err := svc.UpdatePost(context.Background(), "alice", created.ID,
		&types.UpdatePostRequest{Notes: strptr("updated notes")}, nil)
	if err != nil {
		t.Fatalf("update post: %v", err)
	}

	env, err := svc.GetPost(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}

	if env.Post.Notes != "updated notes" {
		t.Errorf("notes = %q, want updated", env.Post.Notes)
	}

	// 未提供的字段保持原值
	if env.Post.Name != "first" {
		t.Errorf("name = %q, want unchanged", env.Post.Name)
	}

	if env.Post.Owner != "alice" {
		t.Errorf("owner = %q, want unchanged", env.Post.Owner)
	}

	if pub.topics[len(pub.topics)-1] != "pv.post.updated" {
		t.Errorf("last topic = %q, want pv.post.updated", pub.topics[len(pub.topics)-1])
	}
}

func TestUpdatePostIgnoresBlankFields(t *testing.T) {
	svc, _, _ := newTestService(t)

	created := createTestPost(t, svc, "alice", "first")

	err := svc.UpdatePost(context.Background(), "alice", created.ID,
		&types.UpdatePostRequest{Notes: strptr("keep me")}, nil)
	if err != nil {
		t.Fatalf("update post: %v", err)
	}

	// 表单里出现但为空的字段不清空已存储的值
	err = svc.UpdatePost(context.Background(), "alice", created.ID,
		&types.UpdatePostRequest{
			Name:  strptr(""),
			Date:  strptr(""),
			Notes: strptr(""),
			Type:  strptr(""),
		}, nil)
	if err != nil {
		t.Fatalf("update with blank fields: %v", err)
	}

	env, err := svc.GetPost(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}

	if env.Post.Name != "first" {
		t.Errorf("name = %q, want unchanged after blank update", env.Post.Name)
	}

	if env.Post.Notes != "keep me" {
		t.Errorf("notes = %q, want unchanged after blank update", env.Post.Notes)
	}

	if !strings.HasPrefix(env.Post.Date, "2025-06-01") {
		t.Errorf("date = %q, want unchanged after blank update", env.Post.Date)
	}
}

func TestUpdatePostReplacesFile(t *testing.T) {
	svc, store, _ := newTestService(t)

	created := createTestPost(t, svc, "alice", "first")

	err := svc.UpdatePost(context.Background(), "alice", created.ID, &types.UpdatePostRequest{},
		&FileUpload{Name: "new.txt", Reader: strings.NewReader("new content"), Size: 11, ContentType: "text/plain"})
	if err != nil {
		t.Fatalf("update with file: %v", err)
	}

	// 旧附件被清理，且只清理一次
	if len(store.removed) != 1 {
		t.Fatalf("removed = %v, want exactly one key", store.removed)
	}

	if !strings.Contains(store.removed[0], "_first.txt") {
		t.Errorf("removed key = %q, want the original attachment", store.removed[0])
	}

	env, _ := svc.GetPost(context.Background(), created.ID)
	if !strings.HasSuffix(env.Post.File, "_new.txt") {
		t.Errorf("file url = %q, want replaced attachment", env.Post.File)
	}
}

func TestUpdatePostGuards(t *testing.T) {
	svc, _, _ := newTestService(t)

	created := createTestPost(t, svc, "alice", "first")

	// 缺失的 id 返回 NotFound，而不是 Forbidden
	err := svc.UpdatePost(context.Background(), "bob", 9999, &types.UpdatePostRequest{}, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing: err = %v, want ErrNotFound", err)
	}

	// 非所有者更新被拒绝且不产生变更
	err = svc.UpdatePost(context.Background(), "bob", created.ID,
		&types.UpdatePostRequest{Name: strptr("hijacked")}, nil)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("update as non-owner: err = %v, want ErrForbidden", err)
	}

	env, _ := svc.GetPost(context.Background(), created.ID)
	if env.Post.Name != "first" {
		t.Errorf("name = %q, want unchanged after forbidden update", env.Post.Name)
	}
}

func TestDeletePost(t *testing.T) {
	svc, store, pub := newTestService(t)

	created := createTestPost(t, svc, "alice", "first")

	if err := svc.DeletePost(context.Background(), "alice", created.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}

	if _, err := svc.GetPost(context.Background(), created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get deleted: err = %v, want ErrNotFound", err)
	}

	if len(store.removed) != 1 {
		t.Errorf("removed = %v, want the attachment cleaned up", store.removed)
	}

	if pub.topics[len(pub.topics)-1] != "pv.post.deleted" {
		t.Errorf("last topic = %q, want pv.post.deleted", pub.topics[len(pub.topics)-1])
	}
}

func TestDeletePostGuards(t *testing.T) {
	svc, _, _ := newTestService(t)

	created := createTestPost(t, svc, "alice", "first")

	if err := svc.DeletePost(context.Background(), "bob", 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete missing: err = %v, want ErrNotFound", err)
	}

	if err := svc.DeletePost(context.Background(), "bob", created.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("delete as non-owner: err = %v, want ErrForbidden", err)
	}

	// 所有者视角帖子仍然存在
	if _, err := svc.GetPost(context.Background(), created.ID); err != nil {
		t.Errorf("get after forbidden delete: %v", err)
	}
}

func TestDeletePostBlobFailureIsNotFatal(t *testing.T) {
	svc, store, _ := newTestService(t)

	created := createTestPost(t, svc, "alice", "first")
	store.failRemove = true

	if err := svc.DeletePost(context.Background(), "alice", created.ID); err != nil {
		t.Fatalf("delete with blob failure: %v", err)
	}

	if _, err := svc.GetPost(context.Background(), created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("record should be gone even when blob cleanup fails: %v", err)
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"2025-06-01", false},
		{"2025-06-01T10:30:00Z", false},
		{"01/06/2025", true},
		{"", true},
	}

	for _, tc := range cases {
		_, err := parseDate(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("parseDate(%q) err = %v, wantErr = %v", tc.in, err, tc.wantErr)
		}
	}
}

func TestBuildObjectKey(t *testing.T) {
	key := buildObjectKey("alice", "my report.pdf")

	if !strings.HasPrefix(key, "alice/"+time.Now().UTC().Format("2006/01")+"/") {
		t.Errorf("key = %q, want owner/yyyy/mm prefix", key)
	}

	if !strings.HasSuffix(key, "_my_report.pdf") {
		t.Errorf("key = %q, want sanitized file name suffix", key)
	}

	// 同名文件不冲突
	if other := buildObjectKey("alice", "my report.pdf"); other == key {
		t.Errorf("keys collide: %q", key)
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{"a b/c.txt", "c.txt"},
		{"", "file"},
	}

	for _, tc := range cases {
		if got := sanitizeFileName(tc.in); got != tc.want {
			t.Errorf("sanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

package handle_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/postvault/pkg/api"
	"github.com/yeisme/postvault/pkg/internal/model"
	"github.com/yeisme/postvault/pkg/internal/storage"
	dbc "github.com/yeisme/postvault/pkg/internal/storage/db"
	"github.com/yeisme/postvault/pkg/middleware"
)

// newTestEngine 构建带内存数据库的测试引擎. user 非空时模拟已认证请求.
func newTestEngine(t *testing.T, user string) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := gdb.AutoMigrate(&model.Post{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mgr := &storage.Manager{DB: &dbc.Client{DB: gdb}}

	e := gin.New()
	e.Use(middleware.StorageMiddleware(mgr))

	if user != "" {
		e.Use(func(c *gin.Context) {
			c.Set(middleware.ActingUserKey, user)
			c.Next()
		})
	}

	api.RegisterGroup(e)

	return e, gdb
}

func seedPost(t *testing.T, gdb *gorm.DB, owner, name string) *model.Post {
	t.Helper()

	post := &model.Post{
		Owner: owner,
		Name:  name,
		Date:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Notes: "seeded",
	}
	if err := post.SetTags([]string{"seed"}); err != nil {
		t.Fatalf("set tags: %v", err)
	}

	if err := gdb.Create(post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}

	return post
}

func doRequest(e *gin.Engine, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	e.ServeHTTP(w, req)

	return w
}

func TestListPostsHandler(t *testing.T) {
	e, gdb := newTestEngine(t, "alice")

	seedPost(t, gdb, "alice", "first")
	seedPost(t, gdb, "bob", "second")

	w := doRequest(e, http.MethodGet, "/posts", nil, "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, `"total":2`) {
		t.Errorf("body = %s, want total 2", body)
	}

	if !strings.Contains(body, `"posts":[`) {
		t.Errorf("body = %s, want posts envelope", body)
	}
}

func TestGetPostHandler(t *testing.T) {
	e, gdb := newTestEngine(t, "alice")

	seedPost(t, gdb, "alice", "first")

	w := doRequest(e, http.MethodGet, "/posts/1", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	if !strings.Contains(w.Body.String(), `"post":{`) {
		t.Errorf("body = %s, want post envelope", w.Body.String())
	}

	// 缺失和非法 id 都是 404
	for _, path := range []string{"/posts/9999", "/posts/abc"} {
		w := doRequest(e, http.MethodGet, path, nil, "")
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s: status = %d, want 404", path, w.Code)
		}
	}
}

func TestCreatePostHandlerValidation(t *testing.T) {
	e, _ := newTestEngine(t, "alice")

	// 带元数据但缺少附件 -> 422
	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", "my post")
	_ = mw.WriteField("date", "2025-06-01")
	_ = mw.Close()

	w := doRequest(e, http.MethodPost, "/posts", &buf, mw.FormDataContentType())
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("create without file: status = %d, want 422", w.Code)
	}

	// 缺少必填字段 -> 422
	var buf2 bytes.Buffer

	mw2 := multipart.NewWriter(&buf2)
	_ = mw2.WriteField("notes", "only notes")
	_ = mw2.Close()

	w = doRequest(e, http.MethodPost, "/posts", &buf2, mw2.FormDataContentType())
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("create without required fields: status = %d, want 422", w.Code)
	}
}

func TestCreatePostHandlerUnauthenticated(t *testing.T) {
	e, _ := newTestEngine(t, "")

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", "my post")
	_ = mw.WriteField("date", "2025-06-01")
	_ = mw.Close()

	w := doRequest(e, http.MethodPost, "/posts", &buf, mw.FormDataContentType())
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestUpdatePostHandler(t *testing.T) {
	e, gdb := newTestEngine(t, "alice")

	post := seedPost(t, gdb, "alice", "first")

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("notes", "changed")
	_ = mw.Close()

	w := doRequest(e, http.MethodPatch, "/posts/1", &buf, mw.FormDataContentType())
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204, body = %s", w.Code, w.Body.String())
	}

	var reloaded model.Post
	if err := gdb.First(&reloaded, post.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}

	if reloaded.Notes != "changed" {
		t.Errorf("notes = %q, want changed", reloaded.Notes)
	}

	// 未提供的字段保持原值
	if reloaded.Name != "first" {
		t.Errorf("name = %q, want unchanged", reloaded.Name)
	}
}

func TestUpdatePostHandlerBlankFields(t *testing.T) {
	e, gdb := newTestEngine(t, "alice")

	post := seedPost(t, gdb, "alice", "first")

	// 表单里出现但为空的字段不清空已存储的值
	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", "")
	_ = mw.WriteField("notes", "")
	_ = mw.Close()

	w := doRequest(e, http.MethodPatch, "/posts/1", &buf, mw.FormDataContentType())
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204, body = %s", w.Code, w.Body.String())
	}

	var reloaded model.Post
	if err := gdb.First(&reloaded, post.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}

	if reloaded.Name != "first" {
		t.Errorf("name = %q, want unchanged after blank field", reloaded.Name)
	}

	if reloaded.Notes != "seeded" {
		t.Errorf("notes = %q, want unchanged after blank field", reloaded.Notes)
	}
}

func TestUpdatePostHandlerIgnoresOwnerField(t *testing.T) {
	e, gdb := newTestEngine(t, "alice")

	post := seedPost(t, gdb, "alice", "first")

	// 客户端传入的 owner 字段被丢弃
	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("owner", "mallory")
	_ = mw.WriteField("notes", "changed")
	_ = mw.Close()

	w := doRequest(e, http.MethodPatch, "/posts/1", &buf, mw.FormDataContentType())
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204, body = %s", w.Code, w.Body.String())
	}

	var reloaded model.Post
	if err := gdb.First(&reloaded, post.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}

	if reloaded.Owner != "alice" {
		t.Errorf("owner = %q, want alice regardless of payload", reloaded.Owner)
	}

	if reloaded.Notes != "changed" {
		t.Errorf("notes = %q, want changed", reloaded.Notes)
	}
}

func TestUpdatePostHandlerForbidden(t *testing.T) {
	e, gdb := newTestEngine(t, "mallory")

	seedPost(t, gdb, "alice", "first")

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("notes", "hijack")
	_ = mw.Close()

	w := doRequest(e, http.MethodPatch, "/posts/1", &buf, mw.FormDataContentType())
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}

	var reloaded model.Post

	_ = gdb.First(&reloaded, 1).Error
	if reloaded.Notes != "seeded" {
		t.Errorf("notes = %q, want unchanged after forbidden update", reloaded.Notes)
	}
}

func TestDeletePostHandler(t *testing.T) {
	e, gdb := newTestEngine(t, "alice")

	seedPost(t, gdb, "alice", "first")

	w := doRequest(e, http.MethodDelete, "/posts/1", nil, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	w = doRequest(e, http.MethodGet, "/posts/1", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", w.Code)
	}
}

func TestDeletePostHandlerForbidden(t *testing.T) {
	e, gdb := newTestEngine(t, "mallory")

	seedPost(t, gdb, "alice", "first")

	w := doRequest(e, http.MethodDelete, "/posts/1", nil, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestHealthHandlers(t *testing.T) {
	e, _ := newTestEngine(t, "")

	// 数据库可用
	w := doRequest(e, http.MethodGet, "/health/db", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("health db: status = %d, want 200", w.Code)
	}

	// S3 和 MQ 未初始化
	for _, path := range []string{"/health/s3", "/health/mq"} {
		w := doRequest(e, http.MethodGet, path, nil, "")
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s: status = %d, want 503", path, w.Code)
		}
	}
}

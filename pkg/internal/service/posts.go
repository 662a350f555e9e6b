package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yeisme/postvault/pkg/internal/model"
	"github.com/yeisme/postvault/pkg/internal/types"
	plog "github.com/yeisme/postvault/pkg/log"
	"github.com/yeisme/postvault/pkg/metrics"
)

// ListPosts 列出全部帖子，按存储返回的顺序.
func (s *PostService) ListPosts(ctx context.Context) (*types.ListPostsResponse, error) {
	var posts []model.Post
	if err := s.db.WithContext(ctx).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	results := make([]types.PostResponse, 0, len(posts))

	for i := range posts {
		resp, err := toPostResponse(&posts[i])
		if err != nil {
			return nil, err
		}

		results = append(results, resp)
	}

	return &types.ListPostsResponse{Posts: results, Total: len(results)}, nil
}

// GetPost 获取单个帖子.
func (s *PostService) GetPost(ctx context.Context, id uint) (*types.PostEnvelope, error) {
	var post model.Post
	if err := ensureFound(s.db.WithContext(ctx).First(&post, id).Error); err != nil {
		return nil, err
	}

	resp, err := toPostResponse(&post)
	if err != nil {
		return nil, err
	}

	return &types.PostEnvelope{Post: resp}, nil
}

// CreatePost 创建帖子：先上传附件，成功后落库. 所有者固定为操作者.
func (s *PostService) CreatePost(ctx context.Context, actingUser string,
	req *types.CreatePostRequest, file *FileUpload,
) (*types.PostEnvelope, error) {
	if file == nil || file.Reader == nil {
		return nil, newValidationError("file", "required")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, newValidationError("date", "datetime")
	}

	if s.store == nil {
		return nil, fmt.Errorf("%w: object store not configured", ErrStorageUnavailable)
	}

	key := buildObjectKey(actingUser, file.Name)

	result, err := s.store.Upload(ctx, key, file.Reader, file.Size, file.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	metrics.UploadBytes.Add(float64(result.Size))

	post := model.Post{
		Owner:     actingUser,
		Name:      req.Name,
		Date:      date,
		Notes:     req.Notes,
		Type:      req.Type,
		ObjectKey: result.Key,
		FileURL:   result.URL,
	}
	if err := post.SetTags(req.Tags); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.publishCreated(ctx, &post)

	resp, err := toPostResponse(&post)
	if err != nil {
		return nil, err
	}

	return &types.PostEnvelope{Post: resp}, nil
}

// UpdatePost 更新帖子：仅合并请求中实际提供的非空字段，所有者不可变更.
// 附件替换时先上传新对象，落库后尽力删除旧对象.
func (s *PostService) UpdatePost(ctx context.Context, actingUser string, id uint,
	req *types.UpdatePostRequest, file *FileUpload,
) error {
	var post model.Post
	if err := ensureFound(s.db.WithContext(ctx).First(&post, id).Error); err != nil {
		return err
	}

	if err := ensureOwned(actingUser, &post); err != nil {
		return err
	}

	stripBlanks(req)

	if req.Name != nil {
		post.Name = *req.Name
	}

	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return newValidationError("date", "datetime")
		}

		post.Date = date
	}

	if req.Notes != nil {
		post.Notes = *req.Notes
	}

	if req.Type != nil {
		post.Type = *req.Type
	}

	if req.Tags != nil {
		if err := post.SetTags(*req.Tags); err != nil {
			return err
		}
	}

	var prevKey string

	if file != nil && file.Reader != nil {
		if s.store == nil {
			return fmt.Errorf("%w: object store not configured", ErrStorageUnavailable)
		}

		key := buildObjectKey(actingUser, file.Name)

		result, err := s.store.Upload(ctx, key, file.Reader, file.Size, file.ContentType)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}

		metrics.UploadBytes.Add(float64(result.Size))

		prevKey = post.ObjectKey
		post.ObjectKey = result.Key
		post.FileURL = result.URL
	}

	if err := s.db.WithContext(ctx).Save(&post).Error; err != nil {
		return fmt.Errorf("update post %d: %w", id, err)
	}

	// 旧附件删除失败只记录，不影响更新结果
	if prevKey != "" && prevKey != post.ObjectKey {
		if err := s.store.Remove(ctx, prevKey); err != nil {
			plog.Logger().Warn().Err(err).Str("object_key", prevKey).Msg("remove replaced blob failed")
		}
	}

	s.publishUpdated(ctx, &post, prevKey)

	return nil
}

// DeletePost 删除帖子记录，随后尽力删除附件对象.
func (s *PostService) DeletePost(ctx context.Context, actingUser string, id uint) error {
	var post model.Post
	if err := ensureFound(s.db.WithContext(ctx).First(&post, id).Error); err != nil {
		return err
	}

	if err := ensureOwned(actingUser, &post); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&post).Error; err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}

	blobRemoved := false

	if post.ObjectKey != "" && s.store != nil {
		if err := s.store.Remove(ctx, post.ObjectKey); err != nil {
			plog.Logger().Warn().Err(err).Str("object_key", post.ObjectKey).Msg("remove blob failed")
		} else {
			blobRemoved = true
		}
	}

	s.publishDeleted(ctx, &post, blobRemoved)

	return nil
}

// parseDate 解析日期字段，接受 RFC3339 或 2006-01-02.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	return time.Parse("2006-01-02", value)
}

// toPostResponse 将模型转换为响应表示.
func toPostResponse(post *model.Post) (types.PostResponse, error) {
	tags, err := post.Tags()
	if err != nil {
		return types.PostResponse{}, err
	}

	return types.PostResponse{
		ID:        post.ID,
		Owner:     post.Owner,
		Name:      post.Name,
		Date:      post.Date.UTC().Format(time.RFC3339),
		Notes:     post.Notes,
		Type:      post.Type,
		File:      post.FileURL,
		Tags:      tags,
		CreatedAt: post.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: post.UpdatedAt.UTC().Format(time.RFC3339),
	}, nil
}

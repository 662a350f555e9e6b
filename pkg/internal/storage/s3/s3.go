// Package s3 处理S3对象存储操作.
package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/postvault/pkg/configs"
	plog "github.com/yeisme/postvault/pkg/log"
)

// Client 包装 MinIO 客户端及桶配置.
type Client struct {
	*minio.Client

	bucket     string
	publicBase string
}

// UploadResult 上传完成后返回的对象信息.
type UploadResult struct {
	Key  string
	Size int64
	URL  string
}

// New 初始化 MinIO 客户端，若 bucket 不存在则创建并设置匿名只读策略，
// 使上传后的对象可以直接通过 URL 访问.
func New(ctx context.Context, cfg *configs.S3Config) (*Client, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			useSSL = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	cli.SetAppInfo("postvault", configs.AppVersion)

	bucket := cfg.BucketName
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}

		policy, err := publicReadPolicy(bucket)
		if err != nil {
			return nil, fmt.Errorf("build bucket policy: %w", err)
		}

		if err := cli.SetBucketPolicy(ctx, bucket, policy); err != nil {
			return nil, fmt.Errorf("set bucket policy %s: %w", bucket, err)
		}

		plog.Logger().Info().Str("bucket", bucket).Msg("bucket created")
	}

	plog.Logger().Info().Str("endpoint", cfg.Endpoint).Str("bucket", bucket).Msg("s3 connected")

	return &Client{
		Client:     cli,
		bucket:     bucket,
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload 将数据流写入指定 key，返回对象信息.
func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*UploadResult, error) {
	info, err := c.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}

	return &UploadResult{
		Key:  key,
		Size: info.Size,
		URL:  c.PublicURL(key),
	}, nil
}

// Remove 删除指定 key 的对象. 对象不存在不视为错误.
func (c *Client) Remove(ctx context.Context, key string) error {
	err := c.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil
		}

		return fmt.Errorf("remove object %s: %w", key, err)
	}

	return nil
}

// PublicURL 构造对象的外部访问 URL. 配置了 PublicBaseURL（CDN 等场景）时优先使用，
// 否则基于 endpoint 和 bucket 拼接.
func (c *Client) PublicURL(key string) string {
	if c.publicBase != "" {
		return c.publicBase + "/" + key
	}

	return strings.TrimRight(c.EndpointURL().String(), "/") + "/" + c.bucket + "/" + key
}

// Bucket 返回当前使用的 bucket 名称.
func (c *Client) Bucket() string {
	return c.bucket
}

// HealthCheck 简单的健康检查，通过列出桶来验证连接.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.ListBuckets(ctx)
	return err
}

// Close 关闭 S3 客户端连接（无实际操作，接口兼容）.
func (c *Client) Close() error {
	return nil
}

// publicReadPolicy 生成允许匿名 GetObject 的 bucket 策略 JSON.
func publicReadPolicy(bucket string) (string, error) {
	policy := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}

	b, err := sonic.Marshal(policy)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Package storage 处理存储操作，聚合数据库、S3 对象存储和消息队列客户端.
//
// Example:
//
// 初始化
//
//	 ctx := context.Background()
//	 mgr, err := storage.Init(ctx)
//
//		if err != nil {
//		    // 处理错误
//		}
//
// 获取存储客户端
//
//	s3Client := mgr.GetS3Client()
//	dbClient := mgr.GetDBClient()
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/yeisme/postvault/pkg/configs"
	"github.com/yeisme/postvault/pkg/internal/model"
	dbc "github.com/yeisme/postvault/pkg/internal/storage/db"
	mqc "github.com/yeisme/postvault/pkg/internal/storage/mq"
	s3c "github.com/yeisme/postvault/pkg/internal/storage/s3"
	plog "github.com/yeisme/postvault/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	S3 *s3c.Client
	DB *dbc.Client
	MQ *mqc.Client
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置. 重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		cfg := configs.GetConfig()
		m := &Manager{}

		// DB
		dbi, e := dbc.New(ctx, &cfg.DB)
		if e != nil {
			err = fmt.Errorf("init db: %w", e)
			return
		}
		m.DB = dbi

		// 迁移数据库模型
		if e := dbi.GetDB().AutoMigrate(&model.Post{}); e != nil {
			err = fmt.Errorf("migrate db: %w", e)
			return
		}

		// S3
		s3i, e := s3c.New(ctx, &cfg.S3)
		if e != nil {
			err = fmt.Errorf("init s3: %w", e)
			return
		}
		m.S3 = s3i

		// MQ
		mqi, e := mqc.New(ctx, &cfg.MQ)
		if e != nil {
			err = fmt.Errorf("init mq: %w", e)
			return
		}
		m.MQ = mqi

		mgr = m

		plog.Logger().Info().Msg("storage manager initialized")
	})

	return mgr, err
}

// GetS3Client 获取 S3 客户端.
func (m *Manager) GetS3Client() *s3c.Client {
	return m.S3
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// Close 释放所有存储资源.
func (m *Manager) Close() error {
	var err error

	if m.MQ != nil {
		if e := m.MQ.Close(); e != nil {
			err = e
		}
	}

	if m.S3 != nil {
		if e := m.S3.Close(); e != nil {
			err = e
		}
	}

	if m.DB != nil {
		if e := m.DB.Close(); e != nil {
			err = e
		}
	}

	return err
}

// Package dao 数据访问层，封装数据库连接、迁移与串行写入
package dao

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/haierkeys/fast-roadmap-service/internal/model"
	"github.com/haierkeys/fast-roadmap-service/pkg/fileurl"
	"github.com/haierkeys/fast-roadmap-service/pkg/util"
	"github.com/haierkeys/fast-roadmap-service/pkg/writequeue"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// DatabaseConfig 数据库连接配置
type DatabaseConfig struct {
	Type            string
	Path            string
	UserName        string
	Password        string
	Host            string
	Port            int
	Name            string
	SSLMode         string
	TablePrefix     string
	AutoMigrate     bool
	Charset         string
	ParseTime       bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime string
	ConnMaxIdleTime string
	RunMode         string
}

// Dao 数据访问对象
type Dao struct {
	db         *gorm.DB
	ctx        context.Context
	config     *DatabaseConfig
	logger     *zap.Logger
	writeQueue *writequeue.Manager

	migrated sync.Map
}

// Option Dao 配置项
type Option func(*Dao)

func WithConfig(c *DatabaseConfig) Option {
	return func(d *Dao) {
		d.config = c
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(d *Dao) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithWriteQueueManager 设置写队列，未设置时写操作直接执行
func WithWriteQueueManager(m *writequeue.Manager) Option {
	return func(d *Dao) {
		d.writeQueue = m
	}
}

// New 创建 Dao
func New(db *gorm.DB, ctx context.Context, opts ...Option) *Dao {
	d := &Dao{
		db:     db,
		ctx:    ctx,
		config: &DatabaseConfig{AutoMigrate: true},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DB 返回绑定 context 的数据库连接
func (d *Dao) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		ctx = d.ctx
	}
	return d.db.WithContext(ctx)
}

func (d *Dao) Logger() *zap.Logger {
	return d.logger
}

// Migrate runs model.AutoMigrate for key once per Dao
// Migrate 按模型名只执行一次自动迁移
func (d *Dao) Migrate(key string) error {
	if !d.config.AutoMigrate {
		return nil
	}
	once, _ := d.migrated.LoadOrStore(key, &onceErr{})
	return once.(*onceErr).do(func() error {
		if err := model.AutoMigrate(d.db, key); err != nil {
			d.logger.Error("auto migrate failed", zap.String("key", key), zap.Error(err))
			return errors.Wrapf(err, "auto migrate %s", key)
		}
		return nil
	})
}

type onceErr struct {
	once sync.Once
	err  error
}

func (o *onceErr) do(fn func() error) error {
	o.once.Do(func() { o.err = fn() })
	return o.err
}

// ExecuteWrite serializes fn with every other write sharing key.
// fn must not call ExecuteWrite with the same key.
// ExecuteWrite 通过写队列串行执行同一 key 的写操作，fn 内不得再次以相同 key 调用
func (d *Dao) ExecuteWrite(ctx context.Context, key string, fn func(db *gorm.DB) error) error {
	if d.writeQueue == nil {
		return fn(d.DB(ctx))
	}
	return d.writeQueue.Execute(ctx, key, func() error {
		return fn(d.DB(ctx))
	})
}

// NewDBEngineWithConfig 根据配置创建数据库连接
func NewDBEngineWithConfig(c DatabaseConfig, lg *zap.Logger) (*gorm.DB, error) {
	dialector, err := newDialector(c)
	if err != nil {
		return nil, err
	}
	if lg == nil {
		lg = zap.NewNop()
	}

	level := gormLogWarn
	if c.RunMode == "debug" {
		level = gormLogInfo
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(lg, level),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	if d, err := util.ParseDuration(c.ConnMaxLifetime); err == nil && d > 0 {
		sqlDB.SetConnMaxLifetime(d)
	} else {
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	if d, err := util.ParseDuration(c.ConnMaxIdleTime); err == nil && d > 0 {
		sqlDB.SetConnMaxIdleTime(d)
	}

	return db, nil
}

func newDialector(c DatabaseConfig) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		charset := c.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
			charset,
			c.ParseTime,
		)), nil
	case "postgres":
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		port := c.Port
		if port == 0 {
			port = 5432
		}
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=Local",
			c.Host,
			c.UserName,
			c.Password,
			c.Name,
			port,
			sslMode,
		)), nil
	case "sqlite", "":
		if c.Path == "" {
			return nil, errors.New("sqlite path is empty")
		}
		if c.Path != ":memory:" && !fileurl.IsExist(c.Path) {
			if err := fileurl.CreatePath(c.Path, os.ModePerm); err != nil {
				return nil, errors.Wrap(err, "create sqlite directory")
			}
		}
		return sqlite.Open(c.Path), nil
	}
	return nil, errors.Errorf("unsupported database type %q", c.Type)
}

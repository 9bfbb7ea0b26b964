// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/fast-roadmap-service/internal/dao"
	"github.com/haierkeys/fast-roadmap-service/internal/service"
	"github.com/haierkeys/fast-roadmap-service/pkg/logger"
	"github.com/haierkeys/fast-roadmap-service/pkg/util"
	"github.com/haierkeys/fast-roadmap-service/pkg/workerpool"
	"github.com/haierkeys/fast-roadmap-service/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File      string          `yaml:"-"` // 配置文件路径，不序列化
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	App       AppSettings     `yaml:"app"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Tracer    TracerConfig    `yaml:"tracer"`
	RateLimit RateLimitConfig `yaml:"rate-limit"`
	Client    ClientConfig    `yaml:"client"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"warn"`
	// File 日志文件路径，为空时只输出到 stderr
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址，为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9001"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型 sqlite / mysql / postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path string `yaml:"path" default:"storage/database/roadmap.sqlite3"`
	// UserName 用户名
	UserName string `yaml:"username"`
	// Password 密码
	Password string `yaml:"password"`
	// Host 主机
	Host string `yaml:"host"`
	// Port 端口，postgres 默认 5432
	Port int `yaml:"port"`
	// Name 数据库名
	Name string `yaml:"name"`
	// SSLMode postgres sslmode
	SSLMode string `yaml:"ssl-mode"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	// Charset 字符集
	Charset string `yaml:"charset"`
	// ParseTime 是否解析时间
	ParseTime bool `yaml:"parse-time"`
	// MaxIdleConns 最大闲置连接数，默认 10
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数，默认 100
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m（分钟）、1h（小时），默认 30m
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期，默认 10m
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`

	// Worker Pool 配置
	WorkerPoolMaxWorkers int `yaml:"worker-pool-max-workers" default:"16"`
	WorkerPoolQueueSize  int `yaml:"worker-pool-queue-size" default:"256"`

	// Write Queue 配置
	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"100"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"30s"`
	WriteQueueIdleTime string `yaml:"write-queue-idle-time" default:"10m"`
}

// SnapshotConfig 快照配置
type SnapshotConfig struct {
	// Enabled 是否启用快照
	Enabled bool `yaml:"enabled"`
	// Cron 5 段 cron 表达式，为空不定时
	Cron string `yaml:"cron" default:"0 * * * *"`
	// SavePath 快照保存目录
	SavePath string `yaml:"save-path" default:"storage/snapshots"`
	// Keep 保留快照数量，0 表示全部保留
	Keep int `yaml:"keep" default:"24"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪
	Enabled bool `yaml:"enabled"`
	// Header 追踪 ID 请求头名称，默认 X-Trace-ID
	Header string `yaml:"header" default:"X-Trace-ID"`
}

// RateLimitConfig 令牌桶限流配置
type RateLimitConfig struct {
	// Enabled 是否启用限流
	Enabled bool `yaml:"enabled"`
	// FillInterval 令牌填充间隔，默认 100ms
	FillInterval string `yaml:"fill-interval" default:"100ms"`
	// Capacity 桶容量
	Capacity int64 `yaml:"capacity" default:"100"`
}

// ClientConfig 交互式客户端配置
type ClientConfig struct {
	// ServerURL 持久化服务地址
	ServerURL string `yaml:"server-url" default:"http://127.0.0.1:9000"`
	// Timeout 单次请求超时
	Timeout string `yaml:"timeout" default:"10s"`
	// AccentColor 新根节点颜色
	AccentColor string `yaml:"accent-color" default:"#3498db"`
	// KeepSubtree 删除节点时保留子树（仅删除节点本身）
	KeepSubtree bool `yaml:"keep-subtree"`
	// AsyncDispatch 异步发送非阻塞更新
	AsyncDispatch bool `yaml:"async-dispatch"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	c, err := ParseConfig(file)
	if err != nil {
		return nil, realpath, err
	}
	c.File = realpath
	return c, realpath, nil
}

// ParseConfig 解析 YAML 配置。默认值在解析前填充，YAML 中显式写出的 false 不会被默认值覆盖
func ParseConfig(data []byte) (*AppConfig, error) {
	c := new(AppConfig)
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "set default config failed")
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "parse config file failed")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate 校验配置取值
func (c *AppConfig) Validate() error {
	switch c.Database.Type {
	case "sqlite", "mysql", "postgres":
	default:
		return errors.Errorf("database.type %q is not one of sqlite, mysql, postgres", c.Database.Type)
	}
	if c.Snapshot.Enabled {
		if c.Snapshot.SavePath == "" {
			return errors.New("snapshot.save-path is required when snapshots are enabled")
		}
		if c.Snapshot.Cron != "" {
			if _, err := cron.ParseStandard(c.Snapshot.Cron); err != nil {
				return errors.Wrapf(err, "snapshot.cron %q", c.Snapshot.Cron)
			}
		}
	}
	if c.Snapshot.Keep < 0 {
		return errors.New("snapshot.keep must not be negative")
	}
	if _, err := util.ParseDuration(c.Client.Timeout); err != nil {
		return errors.Wrapf(err, "client.timeout %q", c.Client.Timeout)
	}
	if c.RateLimit.Enabled {
		if _, err := util.ParseDuration(c.RateLimit.FillInterval); err != nil {
			return errors.Wrapf(err, "rate-limit.fill-interval %q", c.RateLimit.FillInterval)
		}
		if c.RateLimit.Capacity <= 0 {
			return errors.New("rate-limit.capacity must be positive")
		}
	}
	return nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// GetWorkerPoolConfig 获取 Worker Pool 配置
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()

	if c.App.WorkerPoolMaxWorkers > 0 {
		cfg.MaxWorkers = c.App.WorkerPoolMaxWorkers
	}
	if c.App.WorkerPoolQueueSize > 0 {
		cfg.QueueSize = c.App.WorkerPoolQueueSize
	}

	return cfg
}

// GetWriteQueueConfig 获取 Write Queue 配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()

	if c.App.WriteQueueCapacity > 0 {
		cfg.QueueCapacity = c.App.WriteQueueCapacity
	}
	if c.App.WriteQueueTimeout != "" {
		if timeout, err := util.ParseDuration(c.App.WriteQueueTimeout); err == nil {
			cfg.WriteTimeout = timeout
		}
	}
	if c.App.WriteQueueIdleTime != "" {
		if idleTime, err := util.ParseDuration(c.App.WriteQueueIdleTime); err == nil {
			cfg.IdleTimeout = idleTime
		}
	}

	return cfg
}

// GetDatabaseConfig 转换为 dao 层数据库配置
func (c *AppConfig) GetDatabaseConfig() dao.DatabaseConfig {
	var cfg dao.DatabaseConfig
	_ = copier.Copy(&cfg, &c.Database)
	cfg.RunMode = c.Server.RunMode
	return cfg
}

// GetLoggerConfig 转换为日志配置
func (c *AppConfig) GetLoggerConfig() logger.Config {
	return logger.Config{Level: c.Log.Level, File: c.Log.File, Production: c.Log.Production}
}

// GetSnapshotConfig 转换为快照服务配置
func (c *AppConfig) GetSnapshotConfig() service.SnapshotConfig {
	return service.SnapshotConfig{
		Enabled:  c.Snapshot.Enabled,
		Cron:     c.Snapshot.Cron,
		SavePath: c.Snapshot.SavePath,
		Keep:     c.Snapshot.Keep,
	}
}

// GetClientTimeout 获取客户端请求超时
func (c *AppConfig) GetClientTimeout() time.Duration {
	if d, err := util.ParseDuration(c.Client.Timeout); err == nil && d > 0 {
		return d
	}
	return 10 * time.Second
}

// GetContextTimeout 获取请求上下文超时
func (c *AppConfig) GetContextTimeout() time.Duration {
	return time.Duration(c.App.DefaultContextTimeout) * time.Second
}

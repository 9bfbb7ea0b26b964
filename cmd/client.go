package cmd

import (
	"context"
	"fmt"

	internalApp "github.com/haierkeys/fast-roadmap-service/internal/app"
	"github.com/haierkeys/fast-roadmap-service/internal/gateway"
	"github.com/haierkeys/fast-roadmap-service/internal/roadmap"
	"github.com/haierkeys/fast-roadmap-service/pkg/logger"
	"github.com/haierkeys/fast-roadmap-service/pkg/workerpool"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// clientFlags 客户端子命令共用参数
type clientFlags struct {
	config string // 配置文件路径，为空时自动查找
	server string // 覆盖 client.server-url
	debug  bool   // 输出调试日志
}

// clientRuntime 客户端运行所需的依赖
type clientRuntime struct {
	config *internalApp.AppConfig
	logger *zap.Logger
	engine *roadmap.Engine
	pool   *workerpool.Pool
}

// loadClientConfig 读取客户端配置，找不到配置文件时使用内置默认配置
func loadClientConfig(path string) (*internalApp.AppConfig, error) {
	if path == "" {
		found, err := resolveConfigFile(false)
		if err != nil {
			return nil, err
		}
		path = found
	}
	if path == "" {
		return internalApp.ParseConfig([]byte(configDefault))
	}
	cfg, _, err := internalApp.LoadConfig(path)
	return cfg, err
}

// newClientRuntime 创建连接持久化服务的编辑引擎
func newClientRuntime(f *clientFlags) (*clientRuntime, error) {
	cfg, err := loadClientConfig(f.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := "warn"
	if f.debug {
		level = "debug"
	}
	lg, err := logger.NewLogger(logger.Config{Level: level})
	if err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}

	serverURL := cfg.Client.ServerURL
	if f.server != "" {
		serverURL = f.server
	}
	client, err := gateway.New(serverURL,
		gateway.WithTimeout(cfg.GetClientTimeout()),
		gateway.WithLogger(lg),
	)
	if err != nil {
		return nil, err
	}

	rt := &clientRuntime{config: cfg, logger: lg}
	opts := []roadmap.Option{
		roadmap.WithLogger(lg),
		roadmap.WithAccentColor(cfg.Client.AccentColor),
		roadmap.WithCascadeDelete(!cfg.Client.KeepSubtree),
	}
	if cfg.Client.AsyncDispatch {
		wp := cfg.GetWorkerPoolConfig()
		rt.pool = workerpool.New(&wp, lg)
		opts = append(opts, roadmap.WithDispatcher(roadmap.NewPoolDispatcher(rt.pool, lg)))
	}
	rt.engine = roadmap.NewEngine(client, opts...)

	lg.Debug("client ready", zap.String("server", client.BaseURL()), zap.Bool("async", cfg.Client.AsyncDispatch))
	return rt, nil
}

// Close 等待异步更新发送完成
func (rt *clientRuntime) Close() {
	if rt.pool != nil {
		ctx, cancel := context.WithTimeout(context.Background(), rt.config.GetClientTimeout())
		defer cancel()
		if err := rt.pool.Shutdown(ctx); err != nil {
			rt.logger.Warn("pending updates not sent", zap.Error(err))
		}
	}
	_ = rt.logger.Sync()
}

func (f *clientFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.config, "config", "c", "", "config file")
	fs.StringVarP(&f.server, "server", "s", "", "persistence service url, overrides client.server-url")
	fs.BoolVar(&f.debug, "debug", false, "print debug logs")
}

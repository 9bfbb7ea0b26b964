package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	internalApp "github.com/haierkeys/fast-roadmap-service/internal/app"
	"github.com/haierkeys/fast-roadmap-service/pkg/fileurl"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runFlags struct {
	dir     string // Project root directory // 项目根目录
	port    string // Startup port // 启动端口
	runMode string // Startup mode // 启动模式
	config  string // Specified configuration file path // 指定要使用的配置文件路径
}

func init() {
	runEnv := new(runFlags)

	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port]",
		Short: "Run service",
		Run: func(cmd *cobra.Command, args []string) {
			if len(runEnv.dir) > 0 {
				err := os.Chdir(runEnv.dir)
				if err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
			}

			if len(runEnv.config) <= 0 {
				path, err := resolveConfigFile(true)
				if err != nil {
					bootstrapLogger.Error("config file auto create error", zap.Error(err))
					return
				}
				runEnv.config = path
			}

			s, err := NewServer(runEnv)
			if err != nil {
				bootstrapLogger.Error("api service start err", zap.Error(err))
				return
			}

			w := watchConfig(s, runEnv.config)
			defer w.Close()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case <-quit:
				s.logger.Info("Received shutdown signal, initiating graceful shutdown...")
				s.sc.SendCloseSignal(nil)
			case <-s.sc.Done():
			}

			// Wait for all shutdown handlers to complete (including App Container graceful shutdown)
			// 等待所有关闭处理器完成（包括 App Container 的优雅关闭）
			if err := s.sc.WaitClosed(); err != nil {
				s.logger.Error("Shutdown completed with error", zap.Error(err))
			} else {
				s.logger.Info("Service has been shut down gracefully.")
			}
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")
}

// resolveConfigFile 按顺序查找配置文件，create 为 true 时在找不到时写出内置默认配置
func resolveConfigFile(create bool) (string, error) {
	for _, p := range []string{"config/config-dev.yaml", "config.yaml", "config/config.yaml"} {
		if fileurl.IsExist(p) {
			return p, nil
		}
	}
	if !create {
		return "", nil
	}

	bootstrapLogger.Warn("config file not found, creating default config")
	path := "config/config.yaml"
	if err := fileurl.WriteFileAtomic(path, []byte(configDefault), 0644); err != nil {
		return "", err
	}
	bootstrapLogger.Info("config file auto create successfully", zap.String("path", path))
	return path, nil
}

// watchConfig 监听配置文件写入，热更新日志级别与快照设置
// 端口、数据库等其余配置需要重启后生效
func watchConfig(s *Server, path string) *watcher.Watcher {
	w := watcher.New()

	// 将 SetMaxEvents 设置为 1，以便在每个监听周期中至多接收 1 个事件
	w.SetMaxEvents(1)

	// 只通知写入事件。
	w.FilterOps(watcher.Write)

	go func() {
		for {
			select {
			case event := <-w.Event:
				s.logger.Info("config watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))

				cfg, _, err := internalApp.LoadConfig(path)
				if err != nil {
					s.logger.Error("config reload failed, keeping current config", zap.Error(err))
					continue
				}
				s.app.Reload(cfg)
				s.config = cfg

			case err := <-w.Error:
				s.logger.Error("config watcher error", zap.Error(err))
			case <-w.Closed:
				s.logger.Debug("config watcher closed")
				return
			}
		}
	}()

	// 监听 config.yaml 文件
	if err := w.Add(path); err != nil {
		s.logger.Error("config watcher file error", zap.Error(err))
		return w
	}

	go func() {
		if err := w.Start(time.Second * 5); err != nil {
			s.logger.Error("config watcher start error", zap.Error(err))
		}
	}()
	return w
}

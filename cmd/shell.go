package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/haierkeys/fast-roadmap-service/internal/roadmap"
	"github.com/haierkeys/fast-roadmap-service/internal/shell"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	flags := new(clientFlags)
	var history string

	var shellCommand = &cobra.Command{
		Use:   "shell [-c config_file] [-s server_url]",
		Short: "Edit the roadmap interactively // 交互式编辑路线图",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newClientRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
			defer stop()

			// 启动时拉取一次，失败时以空路线图开始
			if err := rt.engine.Pull(ctx); err != nil {
				if !errors.Is(err, roadmap.ErrSyncFailed) {
					return err
				}
				rt.logger.Debug("initial pull refused", zap.Error(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d nodes loaded\n", rt.engine.Tree().Len())

			sh := shell.New(rt.engine, shell.WithOutput(cmd.OutOrStdout()), shell.WithLogger(rt.logger))
			return sh.Run(ctx, history)
		},
	}

	rootCmd.AddCommand(shellCommand)
	fs := shellCommand.Flags()
	flags.register(shellCommand)
	fs.StringVar(&history, "history", defaultHistoryFile(), "readline history file")
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".fast-roadmap_history")
}

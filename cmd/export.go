package cmd

import (
	"context"
	"fmt"

	"github.com/haierkeys/fast-roadmap-service/internal/roadmap"

	"github.com/spf13/cobra"
)

func init() {
	flags := new(clientFlags)
	var output string

	var exportCommand = &cobra.Command{
		Use:   "export [-s server_url] [-o file]",
		Short: "Download the roadmap as JSON // 导出路线图",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newClientRuntime(flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := context.Background()
			if err := rt.engine.Pull(ctx); err != nil {
				return err
			}
			if err := rt.engine.ExportFile(output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d nodes exported to %s\n", rt.engine.Tree().Len(), output)
			return nil
		},
	}

	rootCmd.AddCommand(exportCommand)
	fs := exportCommand.Flags()
	flags.register(exportCommand)
	fs.StringVarP(&output, "output", "o", roadmap.ExportFileName, "output file")
}

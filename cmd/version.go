package cmd

import (
	"fmt"

	"github.com/haierkeys/fast-roadmap-service/internal/app"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print out version info and exit. // 打印版本信息并退出。",
	Run: func(cmd *cobra.Command, args []string) {
		v := app.CurrentVersion()
		fmt.Printf("%s v%s ( Git:%s ) BuildTime:%s\n", v.Name, v.Version, v.GitTag, v.BuildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/haierkeys/fast-roadmap-service/internal/roadmap"
	"github.com/haierkeys/fast-roadmap-service/pkg/fileurl"

	"github.com/spf13/cobra"
)

func init() {
	var input, output string

	var renderCommand = &cobra.Command{
		Use:   "render -i roadmap.json [-o roadmap.svg]",
		Short: "Render an exported roadmap to SVG // 将导出的路线图渲染为 SVG",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(input)
			if err != nil {
				return err
			}
			defer f.Close()

			t, err := roadmap.ReadJSON(f)
			if err != nil {
				return err
			}

			if output == "" {
				output = strings.TrimSuffix(input, ".json") + ".svg"
			}
			var buf bytes.Buffer
			if err := roadmap.RenderSVG(&buf, roadmap.BuildView(t, "", "")); err != nil {
				return err
			}
			if err := fileurl.WriteFileAtomic(output, buf.Bytes(), 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d nodes rendered to %s\n", t.Len(), output)
			return nil
		},
	}

	rootCmd.AddCommand(renderCommand)
	fs := renderCommand.Flags()
	fs.StringVarP(&input, "input", "i", roadmap.ExportFileName, "exported roadmap file")
	fs.StringVarP(&output, "output", "o", "", "svg file, defaults to the input name with .svg")
}

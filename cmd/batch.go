package cmd

import (
	"fmt"
	"os"

	"github.com/instytutkryptografii/lektor/internal/output"
	"github.com/instytutkryptografii/lektor/internal/scheduler"
	"github.com/instytutkryptografii/lektor/internal/utils"
	"github.com/spf13/cobra"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [YAML_FILE]",
		Short: "Download every entry of a YAML list file",
		Long: `Download every entry of a YAML list file. Each entry takes a link,
an optional output path and an optional type override:

  - link: https://example.com/lecture-01.mp4
    op: lectures/lecture-01.mp4
  - link: https://example.com/lecture-02.mp3
    type: audio`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			entries, err := utils.ReadDownloadList(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading list file: %v\n", err)
				os.Exit(1)
			}
			if len(entries) == 0 {
				fmt.Fprintln(os.Stderr, "No entries found in the list file")
				os.Exit(1)
			}
			if err := scheduler.Run(cmd.Context(), entries, batchOptions(cfg.Workers)); err != nil {
				fmt.Println()
				output.PrintError("Encountered failed operation(s)")
				os.Exit(1)
			}
		},
	}
	return cmd
}

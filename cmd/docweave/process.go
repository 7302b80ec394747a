package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmhart/docweave"
)

var (
	processForce   bool
	processChunked bool
	processJSON    bool
	processOut     string
)

var processCmd = &cobra.Command{
	Use:   "process <file.pdf>",
	Short: "Extract a PDF through the service and print the result",
	Long: `Process runs a PDF through the full pipeline: chunk planning, extraction
(per chunk for oversized documents), merging, and Markdown rendering.
Unchanged documents are served from the local registry.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		p, err := docweave.New(cfg)
		if err != nil {
			return err
		}
		defer p.Close()

		var opts []docweave.ProcessOption
		if processForce {
			opts = append(opts, docweave.WithForceReprocess())
		}
		if processChunked {
			opts = append(opts, docweave.WithForceChunked())
		}

		res, err := p.Process(cmd.Context(), args[0], opts...)
		if err != nil {
			return err
		}

		var out []byte
		if processJSON {
			out, err = json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			out = append(out, '\n')
		} else {
			out = []byte(res.Markdown)
		}

		if processOut != "" {
			return os.WriteFile(processOut, out, 0o644)
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	processCmd.Flags().BoolVar(&processForce, "force", false, "Reprocess even if the stored result is current")
	processCmd.Flags().BoolVar(&processChunked, "chunked", false, "Force the chunk pipeline")
	processCmd.Flags().BoolVar(&processJSON, "json", false, "Print the full structured result as JSON")
	processCmd.Flags().StringVarP(&processOut, "output", "o", "", "Write output to file instead of stdout")
	rootCmd.AddCommand(processCmd)
}

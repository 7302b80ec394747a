package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmhart/docweave/layout"
	"github.com/jmhart/docweave/markdown"
)

var (
	convertOut        string
	convertTitle      string
	convertLabels     bool
	convertDebugSpans bool
	convertNoHeadings bool
	convertSeparators bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [layout.json]",
	Short: "Convert a layout document (JSON) to Markdown",
	Long: `Convert reads the JSON layout output of the document-understanding
service, from a file or stdin, and writes the reconstructed Markdown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) == 1 && args[0] != "-" {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("reading layout document: %w", err)
		}

		doc, err := layout.Decode(data)
		if err != nil {
			return fmt.Errorf("decoding layout document: %w", err)
		}

		opts := markdown.DefaultOptions()
		opts.Title = convertTitle
		opts.LabelTables = convertLabels
		opts.DebugSpans = convertDebugSpans
		opts.HeadingHeuristics = !convertNoHeadings
		opts.PageSeparator = convertSeparators

		md := markdown.Convert(doc, opts)
		if convertOut != "" {
			return os.WriteFile(convertOut, []byte(md), 0o644)
		}
		fmt.Print(md)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertOut, "output", "o", "", "Write Markdown to file instead of stdout")
	convertCmd.Flags().StringVar(&convertTitle, "title", "", "Override the document title")
	convertCmd.Flags().BoolVar(&convertLabels, "label-tables", false, "Emit a heading label before each table")
	convertCmd.Flags().BoolVar(&convertDebugSpans, "debug-spans", false, "Annotate blocks with consumed text spans")
	convertCmd.Flags().BoolVar(&convertNoHeadings, "no-headings", false, "Disable heading promotion heuristics")
	convertCmd.Flags().BoolVar(&convertSeparators, "page-separators", false, "Insert a horizontal rule between pages")
	rootCmd.AddCommand(convertCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmhart/docweave/pdfsplit"
)

var pagesChunkSize int

var pagesCmd = &cobra.Command{
	Use:   "pages <file.pdf>",
	Short: "Show the page count and chunk plan for a PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		splitter := &pdfsplit.Splitter{}
		total, err := splitter.PageCount(args[0])
		if err != nil {
			return fmt.Errorf("counting pages: %w", err)
		}

		fmt.Printf("%s: %d pages\n", args[0], total)
		if total <= pagesChunkSize {
			fmt.Println("fits in a single request, no chunking needed")
			return nil
		}

		id := 1
		for start := 1; start <= total; start += pagesChunkSize {
			end := start + pagesChunkSize - 1
			if end > total {
				end = total
			}
			fmt.Printf("  chunk %d: pages %d-%d\n", id, start, end)
			id++
		}
		return nil
	},
}

func init() {
	pagesCmd.Flags().IntVar(&pagesChunkSize, "chunk-size", 15, "Page capacity per chunk")
	rootCmd.AddCommand(pagesCmd)
}

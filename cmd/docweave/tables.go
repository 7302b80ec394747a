package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmhart/docweave"
	"github.com/jmhart/docweave/export"
)

var tablesOut string

var tablesCmd = &cobra.Command{
	Use:   "tables <file.pdf>",
	Short: "Extract tables from a PDF into an XLSX workbook",
	Args:  cobra.ExactArgs(1),
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

		res, err := p.Process(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := tablesOut
		if out == "" {
			out = strings.TrimSuffix(args[0], ".pdf") + "_tables.xlsx"
		}
		if err := export.WriteXLSX(res.Result.Tables, out); err != nil {
			return err
		}

		fmt.Printf("wrote %d tables to %s\n", len(res.Result.Tables), out)
		return nil
	},
}

func init() {
	tablesCmd.Flags().StringVarP(&tablesOut, "output", "o", "", "Output workbook path (default <file>_tables.xlsx)")
	rootCmd.AddCommand(tablesCmd)
}

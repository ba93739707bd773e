package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bcnelson/maintenance-window-manager/internal/autotag"
	"github.com/bcnelson/maintenance-window-manager/internal/domain"
	"github.com/bcnelson/maintenance-window-manager/internal/selector"
	"github.com/bcnelson/maintenance-window-manager/internal/validation"
)

var filterFile string

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired maintenance auto-tags once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		report := autotag.New(newIndex(cfg)).CleanupExpired(cmd.Context())
		if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
		if report.ScanFailed {
			return fmt.Errorf("listing auto-tags failed")
		}
		if len(report.Failed) > 0 {
			return fmt.Errorf("%d expired auto-tags could not be deleted", len(report.Failed))
		}
		return nil
	},
}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Print the entity selectors for a filter",
	Long:  `Reads one entity filter as JSON from --file (or stdin) and prints the selectors it compiles to.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if filterFile != "" && filterFile != "-" {
			f, err := os.Open(filterFile)
			if err != nil {
				return fmt.Errorf("opening filter file: %w", err)
			}
			defer f.Close()
			in = f
		}

		var filter domain.EntityFilter
		if err := json.NewDecoder(in).Decode(&filter); err != nil {
			return fmt.Errorf("decoding filter: %w", err)
		}
		if !filter.IsNonEmpty() {
			return domain.ErrEmptyFilter
		}
		if errs := validation.ValidateFilter(0, filter); errs.HasErrors() {
			return errs
		}

		for _, s := range selector.Compile(filter) {
			fmt.Fprintln(cmd.OutOrStdout(), s.Selector)
		}
		return nil
	},
}

func init() {
	compileCmd.Flags().StringVarP(&filterFile, "file", "f", "", "filter JSON file (default stdin)")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Package validate implements the validate command, which normalizes the
// stored filter settings and reports what changed.
package validate

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tphakala/go-audiofilters/internal/app"
	"github.com/tphakala/go-audiofilters/internal/conf"
)

// Command creates the validate command.
func Command(settings *app.Settings) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Normalize the stored filter settings",
		Long: "Fill in missing settings, replace out-of-range equalizer values with their defaults " +
			"and disable an equalizer whose bands are all neutral. With --dry-run nothing is written.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.Bootstrap(settings)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			report := rt.Bundle.ValidationReport()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			PrintReport(cmd.OutOrStdout(), rt.Store.Path(), report, settings.DryRun)
			return nil
		},
	}

	cmd.Flags().BoolVar(&settings.DryRun, "dry-run", false, "Report without writing the settings file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

// PrintReport writes a human-readable report.
func PrintReport(w io.Writer, path string, r *conf.ValidationReport, dryRun bool) {
	fmt.Fprintf(w, "Settings: %s\n", path)
	if !r.Changed() {
		fmt.Fprintln(w, "No changes needed.")
		return
	}

	for _, key := range r.Initialized {
		fmt.Fprintf(w, "  initialized %s\n", key)
	}
	for _, e := range r.Reset {
		fmt.Fprintf(w, "  reset %s: %d -> %d\n", e.Key, e.Was, e.Default)
	}
	if r.BandsCreated > 0 {
		fmt.Fprintf(w, "  created %d neutral equalizer bands\n", r.BandsCreated)
	}
	if r.EqualizerDisabled {
		fmt.Fprintln(w, "  disabled the equalizer: every band is neutral")
	}

	verb := "wrote"
	if dryRun {
		verb = "would write"
	}
	fmt.Fprintf(w, "%s %d values\n", verb, r.Writes)
}

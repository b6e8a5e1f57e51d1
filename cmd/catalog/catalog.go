// Package catalog implements the catalog command.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tphakala/go-audiofilters/internal/audiofilters"
)

// Command creates the catalog command.
func Command() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the filters and extensions in the bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Print(cmd.OutOrStdout(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the catalog as JSON")
	return cmd
}

// Print writes the catalog in enumeration order.
func Print(w io.Writer, asJSON bool) error {
	modules := audiofilters.Catalog()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(modules)
	}
	for i, m := range modules {
		if _, err := fmt.Fprintf(w, "%d  %-16s %s\n", i, m.Name, m.Kind); err != nil {
			return err
		}
	}
	return nil
}

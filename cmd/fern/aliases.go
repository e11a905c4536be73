package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/fern/pkg/canonical"
	"github.com/Ramsey-B/fern/pkg/models"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newAliasesCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aliases",
		Short: "Inspect the manufacturer alias registry",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print alias table load statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.load()
			if err != nil {
				return err
			}
			defer a.close()
			return writeJSON(cmd.OutOrStdout(), a.registry(cmd.Context()).Stats())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "lookup <manufacturer>",
		Short: "Resolve a manufacturer name to its canonical manufacturer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.load()
			if err != nil {
				return err
			}
			defer a.close()

			reg := a.registry(cmd.Context())
			name := args[0]
			result := struct {
				Name       string                        `json:"name"`
				Normalized string                        `json:"normalized"`
				Found      bool                          `json:"found"`
				Match      *models.CanonicalManufacturer `json:"match,omitempty"`
			}{Name: name, Normalized: canonical.NormalizeManufacturer(name)}

			if key, ok := reg.CanonicalFor(name); ok {
				display, _ := reg.DisplayName(name)
				result.Found = true
				result.Match = &models.CanonicalManufacturer{
					CanonicalKey: key,
					DisplayName:  display,
					Aliases:      reg.AliasesFor(key),
				}
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	})

	var limit int
	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search canonical manufacturers and their aliases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.load()
			if err != nil {
				return err
			}
			defer a.close()

			results := a.registry(cmd.Context()).Search(args[0], limit)
			if results == nil {
				results = []models.CanonicalManufacturer{}
			}
			return writeJSON(cmd.OutOrStdout(), results)
		},
	}
	search.Flags().IntVar(&limit, "limit", 20, "maximum results")
	cmd.AddCommand(search)

	return cmd
}

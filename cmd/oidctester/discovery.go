package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/spf13/cobra"
)

func newDiscoveryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "discovery",
		Short: "Print the issuer's discovery document",
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := oidc.NewProvider(cmd.Context(), opts.issuer)
			if err != nil {
				return fmt.Errorf("discovery: %w", err)
			}

			var doc map[string]any
			if err := provider.Claims(&doc); err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	}
}

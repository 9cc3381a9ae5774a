package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/oidcbridge/pkg/slogx"
)

type options struct {
	issuer       string
	clientID     string
	clientSecret string
	redirectURI  string
	scopes       []string
	fragment     bool
	noBrowser    bool
	timeout      time.Duration
	verbose      bool
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "oidctester",
		Short:         "Exercise an OIDC bridge from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			// Flags win over the environment, the environment over defaults.
			flags := cmd.Flags()
			if !flags.Changed("issuer") {
				opts.issuer = envOr("OIDC_ISSUER", opts.issuer)
			}
			if !flags.Changed("client-id") {
				opts.clientID = envOr("OIDC_CLIENT_ID", opts.clientID)
			}
			if !flags.Changed("client-secret") {
				opts.clientSecret = envOr("OIDC_CLIENT_SECRET", opts.clientSecret)
			}
			if !flags.Changed("redirect-uri") {
				opts.redirectURI = envOr("OIDC_REDIRECT_URI", opts.redirectURI)
			}
			if opts.issuer == "" {
				return errors.New("issuer is required (--issuer or OIDC_ISSUER)")
			}

			level := "info"
			if opts.verbose {
				level = "debug"
			}
			slogx.New(slogx.Config{
				Service: "oidctester",
				Env:     "cli",
				Level:   level,
				Format:  "text",
				Output:  os.Stderr,
			})
			slog.Debug("configuration", "issuer", opts.issuer, "client_id", opts.clientID, "redirect_uri", opts.redirectURI)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.issuer, "issuer", "", "issuer URL (env OIDC_ISSUER)")
	pf.StringVar(&opts.clientID, "client-id", "oidc_ui_tester", "client id (env OIDC_CLIENT_ID)")
	pf.StringVar(&opts.clientSecret, "client-secret", "", "client secret for confidential clients (env OIDC_CLIENT_SECRET)")
	pf.StringVar(&opts.redirectURI, "redirect-uri", "http://localhost:3000/callback", "registered redirect URI, served locally (env OIDC_REDIRECT_URI)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newLoginCmd(opts), newDiscoveryCmd(opts))
	return root
}

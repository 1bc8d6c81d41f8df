package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"painel/internal/cli"
	gsheet "painel/internal/sheets/google"
)

// authCmd obtains a read-only user token for spreadsheets that cannot be
// shared with a service account.
func authCmd() *cobra.Command {
	var (
		clientFile string
		tokenFile  string
		addr       string
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize read access to Google Sheets and save the token",
		Args:  cobra.NoArgs,
		// The flow needs no backend.
		PersistentPreRunE: func(*cobra.Command, []string) error {
			cli.LoadEnvFile()
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if clientFile == "" {
				clientFile = os.Getenv("GOOGLE_OAUTH_CLIENT_FILE")
			}
			if tokenFile == "" {
				tokenFile = os.Getenv("GOOGLE_OAUTH_TOKEN_FILE")
			}
			if tokenFile == "" {
				tokenFile = "token.json"
			}
			if clientFile == "" {
				return fmt.Errorf("--client-file or GOOGLE_OAUTH_CLIENT_FILE is required")
			}

			b, err := os.ReadFile(clientFile)
			if err != nil {
				return fmt.Errorf("read client file: %w", err)
			}
			cfg, err := gsheet.OAuthConfig(b)
			if err != nil {
				return err
			}
			tok, err := gsheet.Authorize(cmd.Context(), cfg, gsheet.AuthorizeOptions{
				Addr:    addr,
				Timeout: timeout,
				Out:     cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			if err := gsheet.SaveToken(tokenFile, tok); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved token to %s\n", tokenFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&clientFile, "client-file", "", "OAuth client JSON (default $GOOGLE_OAUTH_CLIENT_FILE)")
	cmd.Flags().StringVar(&tokenFile, "token-file", "", "Where to save the token (default $GOOGLE_OAUTH_TOKEN_FILE or token.json)")
	cmd.Flags().StringVar(&addr, "addr", "localhost:8085", "Loopback address for the OAuth redirect")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "How long to wait for consent")
	return cmd
}

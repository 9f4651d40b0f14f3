package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"graphkit/pkg/graph"
	"graphkit/pkg/tokenstore"
	"graphkit/pkg/ui"
)

const defaultTokenName = "default"

func newTokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Obtain, renew and manage stored access tokens",
	}

	cmd.AddCommand(
		newTokenExchangeCmd(a),
		newTokenExtendCmd(a),
		newTokenRefreshCmd(a),
		newTokenAppCmd(a),
		newTokenListCmd(a),
		newTokenShowCmd(a),
		newTokenForgetCmd(a),
	)
	return cmd
}

func newTokenExchangeCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "exchange <code>",
		Short: "Exchange an authorization code for a user access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := a.appSecret()
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}

			tok, err := client.ObtainUserAccessToken(commandContext(cmd), a.cfg.Graph.AppID, secret, a.cfg.Graph.RedirectURI, strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			return a.saveToken(name, tok)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", defaultTokenName, "name to store the token under")
	return cmd
}

func newTokenExtendCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "extend",
		Short: "Exchange a short-lived token for a long-lived one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := a.appSecret()
			if err != nil {
				return err
			}
			client, err := a.clientFor(name)
			if err != nil {
				return err
			}

			var tok *graph.AccessToken
			if client.UsesInstagramAPI() {
				tok, err = client.ObtainExtendedAccessToken(commandContext(cmd), secret)
			} else {
				tok, err = client.ObtainExtendedAccessTokenForApp(commandContext(cmd), a.cfg.Graph.AppID, secret)
			}
			if err != nil {
				return err
			}
			return a.saveToken(name, tok)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", defaultTokenName, "stored token to extend")
	return cmd
}

func newTokenRefreshCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh a long-lived Instagram token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.clientFor(name)
			if err != nil {
				return err
			}

			tok, err := client.ObtainRefreshedExtendedAccessToken(commandContext(cmd))
			if err != nil {
				return err
			}
			return a.saveToken(name, tok)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", defaultTokenName, "stored token to refresh")
	return cmd
}

func newTokenAppCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "app",
		Short: "Obtain an app access token with the client credentials grant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := a.appSecret()
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}

			tok, err := client.ObtainAppAccessToken(commandContext(cmd), a.cfg.Graph.AppID, secret)
			if err != nil {
				return err
			}
			return a.saveToken(name, tok)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "app", "name to store the token under")
	return cmd
}

func newTokenListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager()
			if err != nil {
				return err
			}
			tokens, err := m.List()
			if err != nil {
				return err
			}
			if len(tokens) == 0 {
				ui.PrintWarning("No stored tokens")
				fmt.Fprintln(ui.Output, ui.Dim("Run 'graphctl login-url' to start the login flow"))
				return nil
			}

			now := time.Now()
			rows := make([][]string, 0, len(tokens))
			for _, t := range tokens {
				rows = append(rows, []string{
					t.Name,
					t.Variant,
					t.AppID,
					expiryLabel(t, now),
					tokenstore.Sanitize(t).AccessToken,
				})
			}
			fmt.Fprintln(ui.Output, ui.Table([]string{"NAME", "VARIANT", "APP", "EXPIRES", "TOKEN"}, rows))
			return nil
		},
	}
}

func newTokenShowCmd(a *app) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a stored token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager()
			if err != nil {
				return err
			}
			t, err := m.Load(args[0])
			if err != nil {
				return err
			}
			if !reveal {
				t = tokenstore.Sanitize(t)
			}

			ui.PrintInfo("Name", t.Name)
			ui.PrintInfo("Variant", t.Variant)
			if t.AppID != "" {
				ui.PrintInfo("App ID", t.AppID)
			}
			ui.PrintInfo("Access Token", t.AccessToken)
			ui.PrintInfo("Expires", expiryLabel(t, time.Now()))
			if !t.LastModified.IsZero() {
				ui.PrintInfo("Saved", t.LastModified.Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "print the access token unmasked")
	return cmd
}

func newTokenForgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "forget <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a stored token",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager()
			if err != nil {
				return err
			}
			if err := m.Delete(args[0]); err != nil {
				return err
			}
			ui.PrintSuccess(fmt.Sprintf("Removed token '%s'", args[0]))
			return nil
		},
	}
}

// clientFor returns a client holding the configured access token, or the
// stored token called name when none is configured.
func (a *app) clientFor(name string) (graph.TokenClient, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}
	if a.cfg.Graph.AccessToken != "" {
		return client, nil
	}

	m, err := a.manager()
	if err != nil {
		return nil, err
	}
	stored, err := m.Load(name)
	if errors.Is(err, tokenstore.ErrTokenNotFound) {
		return nil, fmt.Errorf("no token named '%s'; run 'graphctl token exchange' first", name)
	}
	if err != nil {
		return nil, err
	}
	return client.CreateClientWithAccessToken(stored.AccessToken), nil
}

func (a *app) saveToken(name string, tok *graph.AccessToken) error {
	m, err := a.manager()
	if err != nil {
		return err
	}
	stored := tokenstore.FromAccessToken(name, a.cfg.Graph.Variant, a.cfg.Graph.AppID, tok)
	if err := m.Save(stored); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	ui.PrintSuccess(fmt.Sprintf("Saved token '%s'", name))
	ui.PrintInfo("Expires", expiryLabel(stored, time.Now()))
	return nil
}

// appSecret returns the configured app secret, prompting for it on a terminal.
func (a *app) appSecret() (string, error) {
	if a.cfg.Graph.AppSecret != "" {
		return a.cfg.Graph.AppSecret, nil
	}
	fmt.Fprint(ui.Output, "App secret: ")
	secret, err := readPassword()
	if err != nil {
		return "", fmt.Errorf("failed to read app secret: %w", err)
	}
	if secret == "" {
		return "", errors.New("app secret is required (set GRAPHKIT_APP_SECRET or app_secret in the config file)")
	}
	return secret, nil
}

func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		b, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(ui.Output)
		if err == nil {
			return strings.TrimSpace(string(b)), nil
		}
	}

	input, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func expiryLabel(t *tokenstore.StoredToken, now time.Time) string {
	switch {
	case t.Expires.IsZero():
		return "never"
	case t.Expired(now):
		return "expired " + t.Expires.Format(time.RFC3339)
	default:
		return t.Expires.Format(time.RFC3339)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

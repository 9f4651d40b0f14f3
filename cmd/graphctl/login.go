package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"graphkit/pkg/graph/scope"
	"graphkit/pkg/ui"
)

func newLoginURLCmd(a *app) *cobra.Command {
	var (
		state  string
		scopes string
	)

	cmd := &cobra.Command{
		Use:   "login-url",
		Short: "Print the OAuth login dialog URL for the configured app",
		Long: `Print the URL a user opens to authorize your app.

After consenting, the user is sent to the redirect URI with a 'code'
query parameter. Pass that code to 'graphctl token exchange'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}

			perms := scope.New()
			for _, p := range a.cfg.Graph.Scope {
				perms.AddPermission(scope.Permission(p))
			}
			if scopes != "" {
				perms = scope.Parse(scopes)
			}
			if state == "" {
				state = uuid.NewString()
			}

			u, err := client.LoginDialogURL(a.cfg.Graph.AppID, a.cfg.Graph.RedirectURI, perms, state)
			if err != nil {
				return err
			}

			ui.PrintHighlight("Open this URL in a browser:")
			ui.PrintBox(u)
			ui.PrintInfo("State", state)
			a.log.WithField("state", state).Debug("Built login dialog URL")
			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "opaque state echoed back on redirect (default: random UUID)")
	cmd.Flags().StringVar(&scopes, "scope", "", "comma-separated permissions, overrides the configured scope")
	return cmd
}

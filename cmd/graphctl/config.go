package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"graphkit/pkg/logger"
	"graphkit/pkg/ui"
)

const exampleConfig = `# graphkit configuration
#
# Every option can also be set with a GRAPHKIT_ environment variable,
# for example GRAPHKIT_APP_ID or GRAPHKIT_APP_SECRET.

graph:
  # facebook or instagram
  variant: "facebook"

  # From the app dashboard at https://developers.facebook.com/apps
  app_id: "YOUR_APP_ID"
  # Prefer GRAPHKIT_APP_SECRET over storing the secret here
  app_secret: ""

  # Must match a redirect URI registered for the app
  redirect_uri: "https://localhost/callback"

  api_version: "v20.0"

  # Permissions requested by login-url
  scope:
    - public_profile
    - email

  # Per-request timeout
  timeout: 30s

  # Wrap requests in OpenTelemetry spans
  tracing: false

retry:
  enabled: true
  max_attempts: 3
  base_delay: 1s
  max_delay: 30s

rate_limit:
  # smooth, fixed (per-minute quota) or sliding (moving one-minute window)
  strategy: "smooth"
  requests_per_minute: 200
  burst_size: 20

token_store:
  # auto, keyring, file, sqlite or env
  backend: "auto"
  # File or database path for the file and sqlite backends
  path: ""

logging:
  # debug, info, warn, error or disabled
  level: "info"
  # Log file path, empty for stderr
  file: ""
`

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
		Long: `Manage graphctl configuration.

Configuration is merged from, highest priority first:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values`,
	}

	cmd.AddCommand(newConfigInitCmd(a), newConfigShowCmd(a), newConfigValidateCmd(a))
	return cmd
}

func newConfigInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "init",
		Short:       "Create an example configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configFile
			if path == "" {
				path = "graphkit.yaml"
			}

			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("configuration file already exists: %s", path)
			}
			if err := os.WriteFile(path, []byte(exampleConfig), 0600); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			ui.PrintSuccess("Created " + path)
			fmt.Fprintln(ui.Output, ui.Dim("Edit app_id and redirect_uri, then run 'graphctl login-url'"))
			return nil
		},
	}
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.cfg
			cfg.Graph.AppSecret = logger.MaskSecret(cfg.Graph.AppSecret)
			cfg.Graph.AccessToken = logger.MaskSecret(cfg.Graph.AccessToken)

			out, err := yaml.Marshal(&cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprint(ui.Output, string(out))
			return nil
		},
	}
}

func newConfigValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load already validated; only report what a login needs.
			if a.cfg.Graph.AppID == "" {
				ui.PrintWarning("app_id is not set; login-url and token commands will fail")
			}
			if a.cfg.Graph.RedirectURI == "" {
				ui.PrintWarning("redirect_uri is not set; login-url and token exchange will fail")
			}
			ui.PrintSuccess("Configuration is valid")
			return nil
		},
	}
}

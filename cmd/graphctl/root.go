package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"graphkit/pkg/config"
	"graphkit/pkg/graph"
	"graphkit/pkg/logger"
	"graphkit/pkg/tokenstore"
	"graphkit/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// Commands annotated with skipConfigAnnotation run without loading configuration.
const skipConfigAnnotation = "graphctl/skip-config"

// app holds the global flags and the state PersistentPreRunE resolves from them.
type app struct {
	configFile  string
	logLevel    string
	variant     string
	appID       string
	redirectURI string
	apiVersion  string
	tokenStore  string

	cfg *config.Config
	log logger.Logger

	// overridable in tests
	newClient  func(cfg *config.Config, log logger.Logger) (graph.TokenClient, error)
	newManager func(cfg *config.Config, log logger.Logger) (*tokenstore.Manager, error)
}

func newApp() *app {
	return &app{
		newClient: graph.NewClientFromConfig,
		newManager: func(cfg *config.Config, log logger.Logger) (*tokenstore.Manager, error) {
			return tokenstore.NewManager(cfg.TokenStore.Backend, cfg.TokenStore.Path, log)
		},
	}
}

func (a *app) flags() map[string]interface{} {
	return map[string]interface{}{
		"variant":      a.variant,
		"app-id":       a.appID,
		"redirect-uri": a.redirectURI,
		"api-version":  a.apiVersion,
		"log-level":    a.logLevel,
		"token-store":  a.tokenStore,
	}
}

func (a *app) load() error {
	cfg, err := config.Load(a.configFile, a.flags())
	if err != nil {
		return err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.log = logger.GetLogger().WithField("variant", cfg.Graph.Variant)
	return nil
}

func (a *app) client() (graph.TokenClient, error) {
	return a.newClient(a.cfg, a.log)
}

func (a *app) manager() (*tokenstore.Manager, error) {
	return a.newManager(a.cfg, a.log)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "graphctl",
		Short: "Obtain and manage Facebook and Instagram Graph API access tokens",
		Long: `graphctl drives the Graph API OAuth flow from the command line.

It can:
  - Print the login dialog URL for your app
  - Exchange an authorization code for a user access token
  - Extend short-lived tokens and refresh long-lived Instagram tokens
  - Obtain app access tokens
  - Keep tokens in the system keychain, an encrypted file or SQLite

Run 'graphctl guide' for app setup instructions.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfigAnnotation] == "true" || cmd.Name() == "help" {
				return nil
			}
			return a.load()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "config file (default is $HOME/.graphkit.yaml)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&a.variant, "variant", "", "API variant (facebook, instagram)")
	pf.StringVar(&a.appID, "app-id", "", "app id")
	pf.StringVar(&a.redirectURI, "redirect-uri", "", "OAuth redirect URI")
	pf.StringVar(&a.apiVersion, "api-version", "", "Graph API version, e.g. v20.0")
	pf.StringVar(&a.tokenStore, "token-store", "", "token store backend (auto, keyring, file, sqlite, env)")

	root.SetVersionTemplate(`graphctl {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newLoginURLCmd(a),
		newTokenCmd(a),
		newRatingsCmd(a),
		newConfigCmd(a),
		newGuideCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

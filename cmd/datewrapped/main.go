// Command datewrapped is the terminal client: it keeps the signed-in
// session, edits entries and drives the wrapped flow against the API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/imadgeboyega/datewrapped/internal/client"
	"github.com/imadgeboyega/datewrapped/internal/client/view"
)

const defaultServer = "http://localhost:8080"

var (
	// Global flags
	verbose    bool
	configPath string
	serverURL  string

	app *cliApp
)

// cliApp is what every command works against. It is built once per run in
// PersistentPreRunE.
type cliApp struct {
	logger  *zap.Logger
	store   *client.FileTokenStore
	api     *client.API
	session *client.SessionHolder
	styles  view.Styles
}

// authorized returns the API client that signs requests with the current
// access token.
func (a *cliApp) authorized() (*client.API, error) {
	if a.session.UserID() == 0 {
		return nil, fmt.Errorf("not signed in, run `datewrapped login` first")
	}
	return a.api.WithTokens(a.session), nil
}

var rootCmd = &cobra.Command{
	Use:           "datewrapped",
	Short:         "Track your dating history and generate a year-in-review",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		app, err = newApp(cmd.Context())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app == nil {
			return
		}
		app.session.Stop()
		_ = app.logger.Sync()
	},
}

func newApp(ctx context.Context) (*cliApp, error) {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	path := configPath
	if path == "" {
		if path, err = client.DefaultConfigPath(); err != nil {
			return nil, err
		}
	}
	store := client.NewFileTokenStore(path)

	cfg, err := store.ReadConfig()
	if err != nil {
		return nil, err
	}
	server := serverURL
	if server == "" {
		server = cfg.Server
	}
	if server == "" {
		server = defaultServer
	}
	if serverURL != "" && serverURL != cfg.Server {
		if err := store.UpdateConfig(func(c *client.FileConfig) { c.Server = serverURL }); err != nil {
			return nil, err
		}
	}

	api := client.NewAPI(server, &http.Client{})
	session := client.NewSessionHolder(api, store, logger)
	if err := session.Start(ctx); err != nil {
		return nil, err
	}
	session.Subscribe(func(ev client.Event) {
		logger.Debug("session event", zap.Stringer("event", ev))
	})

	return &cliApp{
		logger:  logger,
		store:   store,
		api:     api,
		session: session,
		styles:  view.DefaultStyles(),
	}, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the user config dir)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "API base URL, remembered once set")

	rootCmd.AddCommand(signupCmd, loginCmd, loginGoogleCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(entriesCmd, statsCmd, wrappedCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, view.DefaultStyles().Error.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

// Command tigerpop is a terminal client for the campus marketplace.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erazemk/tigerpop/internal/client"
	"github.com/erazemk/tigerpop/internal/config"
	"github.com/erazemk/tigerpop/internal/db"
	"github.com/erazemk/tigerpop/internal/hearts"
	"github.com/erazemk/tigerpop/internal/logging"
	"github.com/erazemk/tigerpop/internal/session"
	"github.com/erazemk/tigerpop/internal/store"
	"github.com/erazemk/tigerpop/internal/view"
)

// app is the wiring shared by every command.
type app struct {
	cfg     *config.Config
	out     io.Writer
	format  string
	logger  *zap.Logger
	db      *sql.DB
	session *session.Store
	client  *client.Client
	hearts  *hearts.Reconciler

	closeLog func()
}

// viewOpts passes the logger to controllers.
func (a *app) viewOpts() []view.Option {
	return []view.Option{view.WithLogger(a.logger)}
}

func main() {
	root, a := newRootCmd(os.Stdout)
	if err := execute(root, a); err != nil {
		os.Exit(1)
	}
}

// execute runs the command tree and releases what the command opened.
// cobra skips the post-run hooks when a command fails, so this is done here.
func execute(root *cobra.Command, a *app) error {
	defer a.close()
	return root.Execute()
}

func newRootCmd(out io.Writer) (*cobra.Command, *app) {
	a := &app{out: out}

	var logPath string
	var verbose bool
	var apiURL, sessionDB string
	var timeout time.Duration

	root := &cobra.Command{
		Use:           "tigerpop",
		Short:         "Browse, sell and buy on the campus marketplace",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("api") {
				cfg.APIURL = apiURL
			}
			if cmd.Flags().Changed("session-db") {
				cfg.SessionDB = sessionDB
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Timeout = timeout
			}
			if a.format != formatText && a.format != formatYAML {
				return fmt.Errorf("unknown output format %q (want text or yaml)", a.format)
			}
			a.cfg = cfg
			return a.open(cmd.Context(), logPath, verbose)
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&apiURL, "api", config.DefaultAPIURL, "backend base URL (env TIGERPOP_API_URL)")
	pf.StringVar(&sessionDB, "session-db", config.DefaultSessionDB, "session database path (env TIGERPOP_SESSION_DB)")
	pf.DurationVar(&timeout, "timeout", config.DefaultTimeout, "per-request timeout (env TIGERPOP_TIMEOUT)")
	pf.StringVarP(&a.format, "output", "o", formatText, "output format: text or yaml")
	pf.StringVarP(&logPath, "log", "l", "", "log file path")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newLoginCmd(a), newSignupCmd(a), newCASURLCmd(a), newCASCmd(a), newLogoutCmd(a), newWhoamiCmd(a),
		newListCmd(a), newShowCmd(a), newHeartCmd(a), newBuyCmd(a), newCategoriesCmd(a),
		newCreateCmd(a), newEditCmd(a), newDeleteCmd(a), newStatusCmd(a, "sold"), newStatusCmd(a, "relist"),
		newMineCmd(a), newPurchasesCmd(a),
	)
	return root, a
}

// open builds the logger, the persisted session, the HTTP client and the
// heart set.
func (a *app) open(ctx context.Context, logPath string, verbose bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, closeLog, err := logging.Setup(logPath, verbose)
	if err != nil {
		return err
	}
	a.logger, a.closeLog = logger, closeLog

	database, err := db.Open(a.cfg.SessionDB)
	if err != nil {
		return err
	}
	a.db = database
	if err := db.EnsureSchema(database, db.SessionSchema); err != nil {
		return err
	}

	a.session = session.New(&store.SessionStore{DB: database},
		session.WithLogger(logger.Named("session")),
		session.WithLogoutHook(func() {
			if a.hearts != nil {
				a.hearts.Clear()
			}
		}),
	)
	if err := a.session.Restore(ctx); err != nil {
		logger.Warn("could not restore session", zap.Error(err))
	}

	a.client, err = client.New(a.cfg.APIURL,
		client.WithHTTPClient(&http.Client{Timeout: a.cfg.Timeout}),
		client.WithTokenSource(a.session),
		client.WithLogger(logger.Named("client")),
	)
	if err != nil {
		return err
	}
	a.hearts = hearts.New(a.client, logger.Named("hearts"))
	return nil
}

// close releases the session, its database and the log file. It is safe
// to call more than once.
func (a *app) close() {
	if a.session != nil {
		a.session.Close()
		a.session = nil
	}
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
	if a.closeLog != nil {
		a.closeLog()
		a.closeLog = nil
	}
}

// fail turns a client error into the user-facing message.
func fail(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(view.Message(err))
}

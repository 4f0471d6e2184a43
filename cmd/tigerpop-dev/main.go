// Command tigerpop-dev serves the marketplace backend API on a local sqlite
// database for development.
package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/tigerpop/internal/config"
	"github.com/erazemk/tigerpop/internal/db"
	"github.com/erazemk/tigerpop/internal/devserver"
	"github.com/erazemk/tigerpop/internal/logging"
	"github.com/erazemk/tigerpop/internal/store"
)

const demoUser = "demo"

type flags struct {
	dbPath   string
	addr     string
	imageURL string
	logPath  string
	verbose  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var f flags
	cmd := &cobra.Command{
		Use:   "tigerpop-dev",
		Short: "Serve the marketplace API on a local sqlite database",
		Long: `Serves the /api/listing and /api/auth endpoints for local development.
The database is created on first run together with a demo account.
CAS tickets starting with ST- are accepted without a CAS server.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(f)
		},
	}
	cmd.Flags().StringVarP(&f.dbPath, "db", "d", cfg.DevDB, "SQLite database path")
	cmd.Flags().StringVarP(&f.addr, "addr", "a", cfg.DevAddr, "listen address")
	cmd.Flags().StringVar(&f.imageURL, "image-url", cfg.APIURL, "prefix of uploaded image URLs")
	cmd.Flags().StringVarP(&f.logPath, "log", "l", "", "log file path (default: stdout/stderr only)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func serve(f flags) error {
	// INFO/WARN go to stdout, ERROR to stderr, optionally everything to a file.
	logger, closeLog, err := logging.Setup(f.logPath, f.verbose)
	if err != nil {
		return err
	}
	defer closeLog()
	zap.ReplaceGlobals(logger)

	// Create the database and demo account on first run.
	if _, err := os.Stat(f.dbPath); errors.Is(err, os.ErrNotExist) {
		database, password, err := initDatabase(f.dbPath)
		if err != nil {
			logger.Error("failed to initialize database", zap.Error(err))
			return err
		}
		database.Close()
		printInitResult(f.dbPath, password)
	}

	database, err := db.Open(f.dbPath)
	if err != nil {
		logger.Error("failed to open database", zap.Error(err))
		return err
	}
	defer database.Close()

	if err := db.EnsureSchema(database, db.BackendSchema); err != nil {
		logger.Error("failed to ensure database schema", zap.Error(err))
		return err
	}
	logger.Info("database ready", zap.String("path", f.dbPath))

	// The signing key lives in the database so tokens survive restarts.
	jwtSecret, err := store.GetJWTSecret(context.Background(), database)
	if err != nil {
		logger.Error("failed to get JWT secret", zap.Error(err))
		return err
	}

	server := &http.Server{
		Addr: f.addr,
		Handler: devserver.NewRouter(database, jwtSecret,
			devserver.WithLogger(logger),
			devserver.WithImageBaseURL(f.imageURL),
		),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("addr", f.addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", zap.Error(err))
		return err
	}

	logger.Info("server stopped, closing database")
	return nil
}

// initDatabase creates a new database with the backend schema and a demo
// account, returning the account's generated password.
func initDatabase(path string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	fail := func(err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", err
	}

	if err := db.EnsureSchema(database, db.BackendSchema); err != nil {
		return fail(fmt.Errorf("ensuring schema: %w", err))
	}

	password, err := generatePassword(16)
	if err != nil {
		return fail(fmt.Errorf("generating password: %w", err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fail(fmt.Errorf("hashing password: %w", err))
	}

	_, err = store.CreateUser(context.Background(), database, demoUser, demoUser+"@princeton.edu", string(hash))
	if err != nil {
		return fail(fmt.Errorf("creating demo user: %w", err))
	}

	return database, password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Demo account created:")
	fmt.Printf("  Username: %s\n", demoUser)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

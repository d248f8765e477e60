package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"sidebar-toolkit/internal/config"
	"sidebar-toolkit/internal/noticeclient"
	"sidebar-toolkit/internal/settings"
	"sidebar-toolkit/internal/storage"
)

var (
	serverURL string
	dbPath    string
	verbose   bool
)

// session is what every subcommand needs: the admin API and the token cache.
type session struct {
	admin *noticeclient.Admin
	store *settings.Store
	db    *sql.DB
}

func (s *session) Close() {
	_ = s.db.Close()
}

var rootCmd = &cobra.Command{
	Use:   "noticectl",
	Short: "Manage sidebar announcements",
	Long: `noticectl talks to a notice server to publish the announcements shown
in the sidebar bell. Log in once with the admin password; the token is
cached in the local settings database until it expires.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "notice server base URL (default from NOTICE_API_BASE or API_PORT)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "settings database path (default from DB_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// openSession resolves the server and database from flags, falling back to
// the same configuration the API server reads.
func openSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	base := serverURL
	if base == "" {
		base = cfg.NoticeBase()
	}
	path := dbPath
	if path == "" {
		path = cfg.DBPath
	}

	db, err := storage.New(path)
	if err != nil {
		return nil, fmt.Errorf("open settings database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate settings database: %w", err)
	}
	slog.Debug("session opened", "server", base, "db", path)

	return &session{
		admin: noticeclient.NewAdmin(base),
		store: settings.New(storage.NewBlobRepo(db)),
		db:    db,
	}, nil
}

// token returns the cached admin token or an error asking to log in.
func (s *session) token(ctx context.Context) (string, error) {
	token := s.store.AdminToken(ctx)
	if token == "" {
		return "", fmt.Errorf("not logged in: run `noticectl login` first")
	}
	return token, nil
}

// checkAuth drops the cached token when the server refused it.
func (s *session) checkAuth(ctx context.Context, err error) error {
	if noticeclient.IsUnauthorized(err) {
		s.store.SetAdminToken(ctx, "")
		return fmt.Errorf("session expired: run `noticectl login` again")
	}
	return err
}

func fprintf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

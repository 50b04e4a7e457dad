package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/corequote/corequote/internal/config"
	"github.com/corequote/corequote/internal/db"
	"github.com/corequote/corequote/internal/forms"
	"github.com/corequote/corequote/internal/models"
	"github.com/corequote/corequote/internal/services"
	"github.com/corequote/corequote/internal/storage"
	"github.com/corequote/corequote/view"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "corequote",
	Short: "CoreQuote - quotes and inventory for small businesses",
	Long: `CoreQuote serves the quote and inventory web application.

Without a subcommand it starts the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load environment variables from .env file
		_ = godotenv.Load()
		cfg = config.Load()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := db.Open(cfg.Database)
		if err != nil {
			return err
		}
		if err := db.Migrate(conn, cfg.Database, cfg.App.Migrations); err != nil {
			return err
		}
		log.Println("Migrations completed successfully")
		return nil
	},
}

var seedEmail string

var seedCmd = &cobra.Command{
	Use:     "seed",
	Short:   "Add sample clients and items to a user's account",
	Example: `  corequote seed --email owner@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := db.Open(cfg.Database)
		if err != nil {
			return err
		}
		var user models.User
		if err := conn.Where("email = ?", strings.ToLower(seedEmail)).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("no user with email %q", seedEmail)
			}
			return err
		}
		if err := db.SeedSamples(conn, user.ID); err != nil {
			return err
		}
		log.Printf("Sample data ready for %s", user.Email)
		return nil
	},
}

var (
	newUserEmail    string
	newUserPassword string
	newUserName     string
)

var createUserCmd = &cobra.Command{
	Use:     "createuser",
	Short:   "Create a user account",
	Example: `  corequote createuser --email owner@example.com --password secret123 --name "Ana López"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := db.Open(cfg.Database)
		if err != nil {
			return err
		}
		accounts := services.NewAccountService(conn, nil)
		in := forms.SignupInput{
			Name:     newUserName,
			Email:    strings.ToLower(strings.TrimSpace(newUserEmail)),
			Password: newUserPassword,
			Confirm:  newUserPassword,
		}
		user, err := accounts.Register(cmd.Context(), in)
		if v, ok := services.AsValidation(err); ok {
			return fmt.Errorf("invalid user: %v", v)
		}
		if err != nil {
			return err
		}
		log.Printf("Created user %d (%s)", user.ID, user.Email)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedEmail, "email", "", "Email of the account to seed")
	_ = seedCmd.MarkFlagRequired("email")

	createUserCmd.Flags().StringVar(&newUserEmail, "email", "", "Login email")
	createUserCmd.Flags().StringVar(&newUserPassword, "password", "", "Initial password (min 8 characters)")
	createUserCmd.Flags().StringVar(&newUserName, "name", "", "Display name")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, createUserCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runServe starts the server and blocks until ctx is cancelled by a signal.
func runServe(ctx context.Context) error {
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(conn, cfg.Database, cfg.App.Migrations); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	view.SetLocation(cfg.App.Location())
	if err := view.Load(); err != nil {
		return fmt.Errorf("templates: %w", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(cfg, conn, store),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s (dev=%v, storage=%s)", cfg.Server.Port, cfg.App.Dev, cfg.Storage.Type)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Println("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("Server stopped gracefully")
	return nil
}

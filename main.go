package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	v1 "github.com/qatrack/api/v1"
	"github.com/qatrack/config"
	"github.com/qatrack/database"
	"github.com/qatrack/dto"
	"github.com/qatrack/lib/notifier"
	"github.com/qatrack/logger"
	"github.com/qatrack/repositories"
	"github.com/qatrack/routes"
	"github.com/qatrack/services"
	"github.com/qatrack/status"
	"github.com/qatrack/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

var rootCmd = &cobra.Command{
	Use:   "qatrack",
	Short: "QA tracking service for projects, pages and test assignments",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnv()
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		return logger.Init(cfg.LogLevel, cfg.LogDevelopment)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	SilenceUsage: true,
}

var cfg config.Config

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.L()
		if cfg.JWTSecret == "" {
			return errors.New("JWT_SECRET is required")
		}
		if err := database.Initialize(cfg); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		n, err := newNotifier(ctx)
		if err != nil {
			return err
		}
		defer n.Close()

		auth := services.NewAuthService(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)

		switch cfg.GinMode {
		case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
			gin.SetMode(cfg.GinMode)
		}
		router := routes.SetupRouter(cfg, v1.Dependencies{
			Auth: auth,
			Policy: status.Policy{
				RequireATTester: cfg.StatusPolicy.RequireATTester,
				RequireFTTester: cfg.StatusPolicy.RequireFTTester,
				RequireQA:       cfg.StatusPolicy.RequireQA,
			},
			Notifier: n,
		})

		srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
		errCh := make(chan error, 1)
		go func() {
			log.Info("🚀 QATrack API starting", zap.String("port", cfg.Port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("failed to start server: %w", err)
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func newNotifier(ctx context.Context) (*notifier.Notifier, error) {
	opts := []notifier.Option{
		notifier.WithTemplates(cfg.Templates),
		notifier.WithLogger(logger.L()),
	}
	if cfg.RedisURL != "" {
		pub, err := notifier.NewRedisPublisher(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		opts = append(opts, notifier.WithPublisher(pub, cfg.NotifyChannel))
	}
	return notifier.New(repositories.NewNotificationRepository(), opts...)
}

var migrateFrom string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the schema, optionally copying all rows from another database",
	Long: `Migrates the configured database schema. With --from, every table of the
source database is copied into the configured one, skipping rows that already exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL, gormlogger.Warn)
		if err != nil {
			return fmt.Errorf("failed to connect to target database: %w", err)
		}
		if err := database.Migrate(target); err != nil {
			return err
		}
		if migrateFrom == "" {
			logger.L().Info("schema migrated")
			return nil
		}

		source, err := database.Open(migrateDriver, migrateFrom, gormlogger.Warn)
		if err != nil {
			return fmt.Errorf("failed to connect to source database: %w", err)
		}
		if err := database.CopyData(source, target); err != nil {
			return fmt.Errorf("data migration failed: %w", err)
		}
		logger.L().Info("database migration completed")
		return nil
	},
}

var migrateDriver string

var (
	importProject string
	importFile    string
	importAs      string
)

var importPagesCmd = &cobra.Command{
	Use:   "import-pages",
	Short: "Import pages from a CSV file into a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Initialize(cfg); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		user, err := repositories.NewUserRepository().FindByEmail(strings.ToLower(strings.TrimSpace(importAs)))
		if err != nil {
			return fmt.Errorf("user %s: %w", importAs, err)
		}
		if !user.IsActive {
			return fmt.Errorf("user %s is inactive", importAs)
		}

		f, err := os.Open(importFile)
		if err != nil {
			return err
		}
		defer f.Close()

		result, err := services.NewPageImportService().ImportCSV(dto.NewActor(user.ID, user.Role), importProject, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %d pages\n", result.Created)
		for _, s := range result.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "skipped line %d: %s\n", s.Line, s.Reason)
		}
		return nil
	},
}

var (
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account or promote an existing one",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Initialize(cfg); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		password := adminPassword
		if password == "" {
			generated, err := utils.GenerateSecurePassword(16)
			if err != nil {
				return err
			}
			password = generated
		}
		auth := services.NewAuthService(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
		user, err := auth.EnsureAdmin(adminEmail, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s (%s) ready\n", user.Email, user.ID)
		if adminPassword == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "generated password: %s\n", password)
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "", "source database URL to copy rows from")
	migrateCmd.Flags().StringVar(&migrateDriver, "from-driver", "postgres", "source database driver (postgres or sqlite)")

	importPagesCmd.Flags().StringVar(&importProject, "project", "", "target project ID")
	importPagesCmd.Flags().StringVar(&importFile, "file", "", "CSV file to import")
	importPagesCmd.Flags().StringVar(&importAs, "as", "", "email of the user performing the import")
	for _, f := range []string{"project", "file", "as"} {
		_ = importPagesCmd.MarkFlagRequired(f)
	}

	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password, generated when empty")
	_ = createAdminCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(serveCmd, migrateCmd, importPagesCmd, createAdminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nexcodes/softec-25-sub000/internal/config"
	"github.com/nexcodes/softec-25-sub000/internal/database"
	"github.com/nexcodes/softec-25-sub000/internal/handlers"
	"github.com/nexcodes/softec-25-sub000/internal/repository"
	"github.com/nexcodes/softec-25-sub000/internal/services"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const appName = "crimewatch"

// Version is set at build time with -ldflags
var Version = "dev"

// Execute runs the command line
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Crime reporting backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path (YAML)")

	cmd.AddCommand(
		serveCmd(&configPath),
		migrateCmd(&configPath),
		promoteAdminCmd(&configPath),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

func serveCmd(configPath *string) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(*configPath, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply schema migrations before serving")
	return cmd
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(db.Gorm); err != nil {
				return err
			}
			log.Info().Str("dbname", cfg.Database.DBName).Msg("Migrations applied")
			return nil
		},
	}
}

func promoteAdminCmd(configPath *string) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "promote-admin",
		Short: "Grant the ADMIN role to an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" {
				return fmt.Errorf("--email is required")
			}
			cfg, db, err := bootstrap(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer db.Close()

			userService := services.NewUserService(repository.NewUserRepository(db.Gorm), cfg.JWT.Secret, cfg.JWT.TTL)
			user, err := userService.PromoteAdmin(cmd.Context(), email)
			if err != nil {
				return err
			}
			log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User promoted to admin")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email of the account to promote")
	return cmd
}

// bootstrap loads configuration, sets up logging and connects to the database
func bootstrap(ctx context.Context, configPath string) (*config.Config, *database.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogger(cfg.Log)

	if ctx == nil {
		ctx = context.Background()
	}
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info().Msg("Database connection established")

	return cfg, db, nil
}

// Run starts the API server and blocks until SIGINT or SIGTERM
func Run(configPath string, migrate bool) error {
	ctx := context.Background()

	cfg, db, err := bootstrap(ctx, configPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrate {
		if err := database.Migrate(db.Gorm); err != nil {
			return err
		}
		log.Info().Msg("Migrations applied")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.Gorm)
	crimeRepo := repository.NewCrimeRepository(db.Gorm)
	voteRepo := repository.NewVoteRepository(db.Gorm)
	commentRepo := repository.NewCommentRepository(db.Gorm)
	mediaRepo := repository.NewMediaRepository(db.Gorm)
	lawyerRepo := repository.NewLawyerRepository(db.Gorm)
	statsRepo := repository.NewStatsRepository(db.Gorm)

	// Optional infrastructure
	presigner, err := services.NewS3Presigner(ctx, cfg.AWS)
	if err != nil {
		return err
	}

	var cache services.Cache
	redisClient, err := services.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, stats cache disabled")
	} else if redisClient != nil {
		cache = redisClient
		defer redisClient.Close()
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Stats cache connected")
	}

	pushService, err := services.NewPushService(cfg.APNs, crimeRepo, userRepo)
	if err != nil {
		return err
	}
	if !pushService.Enabled() {
		log.Info().Msg("Push notifications disabled")
	}

	// Initialize services
	userService := services.NewUserService(userRepo, cfg.JWT.Secret, cfg.JWT.TTL)
	hub := services.NewFeedHub()
	deps := handlers.Deps{
		Users:    userService,
		Crimes:   services.NewCrimeService(crimeRepo, userRepo),
		Votes:    services.NewVoteService(voteRepo, crimeRepo, userRepo),
		Comments: services.NewCommentService(commentRepo, crimeRepo, userRepo),
		Media:    services.NewMediaService(mediaRepo, crimeRepo, userRepo, presigner, cfg.AWS),
		Lawyers:  services.NewLawyerService(db.Gorm, lawyerRepo, userRepo),
		Stats:    services.NewStatsService(statsRepo, cache, cfg.Stats.CacheTTL),
		Push:     pushService,
		Hub:      hub,
		Ping:     db.Ping,
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handlers.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Hijacked feed connections are not closed by Shutdown
	hub.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}

// setupLogger configures zerolog logger
func setupLogger(cfg config.LogConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	switch cfg.Level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

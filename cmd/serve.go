package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"

	httpctx "github.com/dtroode/authkeeper/internal/api/http/context"
	"github.com/dtroode/authkeeper/internal/api/http/router"
	httpServer "github.com/dtroode/authkeeper/internal/api/http/server"
	"github.com/dtroode/authkeeper/internal/config"
	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/mailer"
	"github.com/dtroode/authkeeper/internal/metrics"
	"github.com/dtroode/authkeeper/internal/model"
	"github.com/dtroode/authkeeper/internal/password"
	"github.com/dtroode/authkeeper/internal/repository/postgres"
	"github.com/dtroode/authkeeper/internal/securetoken"
	"github.com/dtroode/authkeeper/internal/server"
	"github.com/dtroode/authkeeper/internal/service"
	storage "github.com/dtroode/authkeeper/internal/storage/minio"
	"github.com/dtroode/authkeeper/internal/token"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  `Migrate the database and serve the authentication API until interrupted.`,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	logger := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	deliverer, err := newDeliverer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize mail delivery", "error", err)
	}

	userRepo := postgres.NewUserRepository(db)
	tokenManager := token.NewJWT(cfg.SigningSecret())
	tokenService := service.NewTokenService(tokenManager, userRepo, cfg.Auth.EnforceRevocation, logger)

	mail := mailer.New(deliverer, mailer.Options{
		From:             cfg.Mail.From,
		ConfirmationURL:  cfg.Mail.ConfirmationURL,
		ResetPasswordURL: cfg.Mail.ResetPasswordURL,
	})

	authService := service.NewAuth(
		userRepo,
		tokenService,
		password.NewBcrypt(cfg.Auth.BcryptCost),
		mail,
		securetoken.NewGenerator(cfg.SigningSecret()),
		service.AuthOptions{
			ConfirmWithin:       cfg.Auth.ConfirmWithin,
			ResetPasswordWithin: cfg.Auth.ResetPasswordWithin,
		},
		logger,
	)

	r := router.New(authService, tokenService, httpctx.NewManager(), metrics.New(), db, logger)
	srv := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))
	sl := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)

	if !cfg.Auth.EnforceRevocation {
		logger.Warn("token revocation is disabled, logout will not invalidate issued tokens")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	logAppVersion(cmd)

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
	return nil
}

func newDeliverer(ctx context.Context, cfg *config.Config, logger *logger.Logger) (mailer.Deliverer, error) {
	if cfg.Mail.Driver != config.MailDriverMinio {
		return mailer.NewLog(logger), nil
	}

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage client: %w", err)
	}

	return mailer.NewOutbox(storageClient, logger), nil
}

func logAppVersion(cmd *cobra.Command) {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	cmd.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

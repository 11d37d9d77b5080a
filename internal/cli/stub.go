package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"appointment-booking-client/internal/config"
	"appointment-booking-client/internal/handlers"
	"appointment-booking-client/internal/models"
	"appointment-booking-client/internal/routes"
)

func newStubServerCommand(cfg *config.Config, log *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:         "stub-server",
		Short:       "Run a seeded development backend",
		Annotations: map[string]string{skipApp: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStubServer(cmd.Context(), cfg, log.Named("stub"))
		},
	}
}

func runStubServer(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := models.InitDB(models.DatabaseConfig{Driver: cfg.Stub.DBDriver, DSN: cfg.Stub.DBDSN})
	if err != nil {
		return fmt.Errorf("connect stub database: %w", err)
	}
	if err := handlers.Seed(db, time.Now(), cfg.Stub.SlotDaysAhead); err != nil {
		return fmt.Errorf("seed stub database: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Stub.Port,
		Handler:           routes.NewRouter(db, &cfg.Stub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("stub backend listening", zap.String("addr", srv.Addr), zap.String("driver", cfg.Stub.DBDriver))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down stub backend")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

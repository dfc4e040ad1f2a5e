package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Krish-Depani/mold-tracker/config"
	"github.com/Krish-Depani/mold-tracker/controllers"
	"github.com/Krish-Depani/mold-tracker/database"
	"github.com/Krish-Depani/mold-tracker/repository"
	"github.com/Krish-Depani/mold-tracker/routes"
	"github.com/Krish-Depani/mold-tracker/services"
	"github.com/Krish-Depani/mold-tracker/utils"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	if !env.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(ctx, env)
	if err != nil {
		return errors.Wrap(err, "connect database")
	}
	singleActive := env.ScanActivePolicy == config.ActivePolicyReject
	if err := database.Migrate(db, singleActive); err != nil {
		return errors.Wrap(err, "migrate")
	}

	redisClient, err := database.GetRedisClient(env.RedisAddr, env.RedisPass, env.RedisDB)
	if err != nil {
		return errors.Wrap(err, "connect redis")
	}
	defer redisClient.Close()

	molds := repository.NewMoldRepository(db)
	manager := services.NewScanSessionManager(molds, repository.NewScanSessionRepository(db), services.ScanConfig{
		AccuracyThreshold: env.GPSAccuracyThreshold,
		SessionTTL:        env.ScanSessionTTL,
		SingleActive:      singleActive,
	})
	recorder := services.NewInspectionRecorder(molds, repository.NewInspectionRepository(db), nil)

	router := routes.SetupRoutes(routes.Controllers{
		Auth:        controllers.NewAuthController(db, redisClient, utils.NewGeoLocator(env.GeoIPURL), env.JWTSecret, env.JWTTTL, env.JWTRefreshTTL),
		User:        controllers.NewUserController(db),
		ScanSession: controllers.NewScanSessionController(manager),
		Inspection:  controllers.NewInspectionController(recorder),
	}, routes.Options{
		CORSOrigin: env.CORSOrigin,
		Debug:      env.IsDevelopment(),
		DB:         db,
	})

	srv := &http.Server{
		Addr:              ":" + env.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":          srv.Addr,
			"active_policy": env.ScanActivePolicy,
		}).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

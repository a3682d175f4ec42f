package main

import (
	"context"
	"net/http"
	"os"

	"github.com/davidfales/soccertraining-backend/api/routes"
	"github.com/davidfales/soccertraining-backend/internal/adminauth"
	"github.com/davidfales/soccertraining-backend/internal/blog"
	"github.com/davidfales/soccertraining-backend/internal/checkout"
	"github.com/davidfales/soccertraining-backend/internal/contact"
	"github.com/davidfales/soccertraining-backend/internal/crm"
	"github.com/davidfales/soccertraining-backend/internal/gallery"
	"github.com/davidfales/soccertraining-backend/internal/portal"
	"github.com/davidfales/soccertraining-backend/internal/sessions"
	stripewebhook "github.com/davidfales/soccertraining-backend/internal/webhooks/stripe"
	"github.com/davidfales/soccertraining-backend/pkg/config"
	"github.com/davidfales/soccertraining-backend/pkg/db"
	"github.com/davidfales/soccertraining-backend/pkg/email"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
	"github.com/davidfales/soccertraining-backend/pkg/metrics"
	"github.com/davidfales/soccertraining-backend/pkg/migrate"
	"github.com/davidfales/soccertraining-backend/pkg/redis"
	"github.com/davidfales/soccertraining-backend/pkg/storage/gcs"
	stripeclient "github.com/davidfales/soccertraining-backend/pkg/stripe"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeAPI, err := stripeclient.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}
	checkoutClient := stripeclient.NewCheckoutClient(stripeAPI)

	var gcsClient *gcs.Client
	if cfg.GCS.BucketName != "" {
		gcsClient, err = gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "gcs bucket not configured, photo uploads disabled")
	}

	emailClient := email.NewClient(cfg.Email)
	if !emailClient.Enabled() {
		logg.Warn(context.Background(), "resend not configured, outbound email disabled")
	}

	adminAuthService, err := adminauth.NewService(adminauth.Params{Config: cfg.Admin})
	if err != nil {
		logg.Error(context.Background(), "failed to create admin auth service", err)
		os.Exit(1)
	}

	blogService, err := blog.NewService(blog.Params{
		Repo: blog.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create blog service", err)
		os.Exit(1)
	}

	var uploader gcs.Uploader
	if gcsClient != nil {
		uploader = gcsClient
	}
	galleryService, err := gallery.NewService(gallery.Params{
		Repo:     gallery.NewRepository(dbClient.DB()),
		Uploader: uploader,
		Config:   cfg.GCS,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create gallery service", err)
		os.Exit(1)
	}

	sessionsService, err := sessions.NewService(sessions.Params{
		Repo: sessions.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sessions service", err)
		os.Exit(1)
	}

	crmService, err := crm.NewService(crm.Params{
		Tx:          dbClient,
		Repo:        crm.NewRepository(dbClient.DB()),
		PasswordCfg: cfg.Password,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create crm service", err)
		os.Exit(1)
	}

	checkoutRepo := checkout.NewRepository(dbClient.DB())
	checkoutService, err := checkout.NewService(checkout.Params{
		Repo:        checkoutRepo,
		Sessions:    sessionsService,
		Provisioner: crmService,
		Stripe:      checkoutClient,
		Site:        cfg.Site,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	eventGuard, err := stripewebhook.NewEventGuard(redisClient, cfg.Stripe.EventTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook event guard", err)
		os.Exit(1)
	}
	webhookService, err := stripewebhook.NewService(stripewebhook.Params{
		Repo:     checkoutRepo,
		Sessions: sessionsService,
		Stripe:   checkoutClient,
		Sender:   emailClient,
		Guard:    eventGuard,
		Site:     cfg.Site,
		Email:    cfg.Email,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	portalService, err := portal.NewService(portal.Params{
		Repo:   portal.NewRepository(dbClient.DB()),
		JWT:    cfg.JWT,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create portal service", err)
		os.Exit(1)
	}

	contactService, err := contact.NewService(contact.Params{
		Sender: emailClient,
		Config: cfg.Email,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create contact service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	var gcsPinger gcs.Pinger
	if gcsClient != nil {
		gcsPinger = gcsClient
	}
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			GCS:         gcsPinger,
			AdminAuth:   adminAuthService,
			Blog:        blogService,
			Gallery:     galleryService,
			Sessions:    sessionsService,
			Checkout:    checkoutService,
			Webhooks:    webhookService,
			Portal:      portalService,
			Contact:     contactService,
			Registry:    registry,
			HTTPMetrics: httpMetrics,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

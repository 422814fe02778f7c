// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/mbaskhairoun/MMEngagement/internal/db"
	"github.com/mbaskhairoun/MMEngagement/internal/db/jsondb"
	"github.com/mbaskhairoun/MMEngagement/internal/db/kvdb"
	"github.com/mbaskhairoun/MMEngagement/internal/notify"
	"github.com/mbaskhairoun/MMEngagement/internal/ops"
	"github.com/mbaskhairoun/MMEngagement/internal/server"
)

func main() {
	// A missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	var (
		serviceName = flag.String("service-name", "engagement-rsvp", "otel service name")
		addr        = flag.String("addr", "0.0.0.0:8080", "public server address")
		opsAddr     = flag.String("ops-addr", "0.0.0.0:9090", "ops server address (health, metrics)")
		dbStr       = flag.String("db", "kvdb://testdata/rsvp.db", "database connection string, kvdb:// or jsondb://")
		otlpAddr    = flag.String("otlp-grpc", "", "otlp/gRPC address, disabled by default. Example value: localhost:4317")
		logLevelArg = flag.String("log-level", "INFO", "log level")
	)
	flag.Parse()

	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(*logLevelArg))
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(jsonHandler)
	if err != nil {
		logger.Error("unable to parse log level", "level-input", *logLevelArg, "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger)
	logger.Info("start and listen", "address", *addr, "ops-address", *opsAddr)
	logger.Info("otlp/gRPC", "address", *otlpAddr, "service", *serviceName)

	if *otlpAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		grpcOptions := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithBlock()}
		conn, err := grpc.DialContext(ctx, *otlpAddr, grpcOptions...)
		if err != nil {
			logger.Error("failed to create gRPC connection to collector", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		otelExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
		if err != nil {
			logger.Error("failed to create trace exporter", "error", err)
			os.Exit(1)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(otelExporter))
		otel.SetTracerProvider(tp)
	}

	var (
		householdStore db.HouseholdStore
		responseStore  db.ResponseStore
		configStore    db.ConfigStore
	)

	u, err := url.Parse(*dbStr)
	if err != nil {
		logger.Error("unable to parse db connection string", "error", err)
		os.Exit(1)
	}

	switch u.Scheme {
	case "kvdb":
		path := u.Host + u.Path
		database, err := bolt.Open(path, 0600, nil)
		if err != nil {
			logger.Error("could not open database", "error", err)
			os.Exit(1)
		}
		defer database.Close()

		householdStore, err = kvdb.NewHouseholdStore(database)
		if err != nil {
			logger.Error("could not initialize household bucket", "error", err)
			os.Exit(1)
		}
		responseStore, err = kvdb.NewResponseStore(database)
		if err != nil {
			logger.Error("could not initialize response bucket", "error", err)
			os.Exit(1)
		}
		configStore, err = kvdb.NewConfigStore(database)
		if err != nil {
			logger.Error("could not initialize settings bucket", "error", err)
			os.Exit(1)
		}
	case "jsondb":
		dir := u.Host + u.Path
		if err := os.MkdirAll(dir, 0750); err != nil {
			logger.Error("could not create data directory", "error", err)
			os.Exit(1)
		}
		householdStore, err = jsondb.NewHouseholdStore(dir + "/households.json")
		if err != nil {
			logger.Error("could not initialize household store", "error", err)
			os.Exit(1)
		}
		responseStore, err = jsondb.NewResponseStore(dir + "/responses.json")
		if err != nil {
			logger.Error("could not initialize response store", "error", err)
			os.Exit(1)
		}
		configStore, err = jsondb.NewConfigStore(dir + "/config.json")
		if err != nil {
			logger.Error("could not initialize config store", "error", err)
			os.Exit(1)
		}
	default:
		logger.Error("unknown storage backend", "type", u.Scheme)
		os.Exit(1)
	}

	event := notify.EventDetails{
		Title:       envOr("EVENT_TITLE", "Engagement Celebration"),
		HostNames:   envOr("EVENT_HOSTS", "Marly & Michael"),
		Date:        envOr("EVENT_DATE", "May 24, 2026"),
		Time:        envOr("EVENT_TIME", "5:00 PM"),
		Venue:       os.Getenv("EVENT_VENUE"),
		DressCode:   os.Getenv("EVENT_DRESS_CODE"),
		LocationURL: os.Getenv("EVENT_LOCATION_URL"),
		FromName:    envOr("MAIL_FROM_NAME", "Marly & Michael"),
		FromEmail:   os.Getenv("MAIL_FROM_EMAIL"),
	}

	var sender notify.Sender = notify.NopSender{}
	if token := os.Getenv("MAILERSEND_API_TOKEN"); token != "" {
		sender, err = notify.NewMailerSender(token)
		if err != nil {
			logger.Error("could not initialize mail sender", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("MAILERSEND_API_TOKEN not set, confirmation emails disabled")
	}
	var mailer server.Mailer = notify.NewDispatcher(sender, event)

	opsSrv := &http.Server{
		Addr:    *opsAddr,
		Handler: ops.NewHandler(logger.WithGroup("ops")),
	}
	go func() {
		if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ops server stopped", "error", err)
		}
	}()

	srv := &http.Server{
		Addr: *addr,
		Handler: server.NewServer(
			*serviceName,
			householdStore,
			responseStore,
			configStore,
			mailer,
			event,
		),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
		_ = opsSrv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("error during listen and serve", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown")
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

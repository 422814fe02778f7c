// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package server

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"github.com/mbaskhairoun/MMEngagement/internal/db"
	"github.com/mbaskhairoun/MMEngagement/internal/guestlist"
	"github.com/mbaskhairoun/MMEngagement/internal/notify"
	"github.com/mbaskhairoun/MMEngagement/internal/rsvp"
	"github.com/mbaskhairoun/MMEngagement/internal/server/templates"
)

func NewServer(
	serviceName string,
	hStore db.HouseholdStore,
	rStore db.ResponseStore,
	cStore db.ConfigStore,
	mailer Mailer,
	event notify.EventDetails,
) *Server {
	directory := guestlist.NewDirectory(hStore)
	manager := rsvp.NewManager(rStore, hStore)
	s := &Server{
		logger:      slog.Default().WithGroup("http"),
		serviceName: serviceName,
		hStore:      hStore,
		rStore:      rStore,
		cStore:      cStore,
		directory:   directory,
		resolver:    guestlist.NewResolver(directory),
		manager:     manager,
		mailer:      mailer,
		event:       event,
	}
	s.mux = s.routes()
	return s
}

type Server struct {
	serviceName string
	logger      *slog.Logger
	hStore      db.HouseholdStore
	rStore      db.ResponseStore
	cStore      db.ConfigStore
	directory   *guestlist.Directory
	resolver    *guestlist.Resolver
	manager     *rsvp.Manager
	mailer      Mailer
	event       notify.EventDetails

	mux *gin.Engine
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() *gin.Engine {
	mux := gin.New()
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	mux.Use(
		sloggin.NewWithConfig(s.logger,
			sloggin.Config{
				DefaultLevel:     slog.LevelInfo,
				ClientErrorLevel: slog.LevelWarn,
				ServerErrorLevel: slog.LevelError,
			},
		),
		gin.Recovery(), otelgin.Middleware(s.serviceName), slogAddTraceAttributes,
	)

	username := "admin"
	if v, ok := os.LookupEnv("RSVP_ADMIN"); ok {
		username = v
	}

	password := "admin"
	if v, ok := os.LookupEnv("RSVP_PASSWORD"); ok {
		password = v
	}

	pages := templates.NewPageHandler(s.cStore, s.manager, s.directory, templates.EventPage{
		Title:       s.event.Title,
		HostNames:   s.event.HostNames,
		Date:        s.event.Date,
		Time:        s.event.Time,
		Venue:       s.event.Venue,
		DressCode:   s.event.DressCode,
		LocationURL: s.event.LocationURL,
	})
	guests := NewGuestHandler(s.resolver, s.manager, s.mailer, s.event)
	admin := NewAdminHandler(s.hStore, s.rStore, s.cStore, s.manager, s.directory)

	mux.GET("/", pages.RenderForm)
	mux.POST("/api/lookup", guests.Lookup)
	mux.POST("/api/rsvp", guests.Submit)

	adminArea := mux.Group("/admin", gin.BasicAuth(gin.Accounts{
		username: password,
	}))

	adminArea.GET("/", pages.RenderAdminOverview)

	adminArea.GET("/households", admin.ListHouseholds)
	adminArea.POST("/households", admin.CreateHousehold)
	adminArea.PUT("/households/:uuid", admin.UpdateHousehold)
	adminArea.DELETE("/households/:uuid", admin.DeleteHousehold)
	adminArea.GET("/households/template", admin.DownloadTemplate)
	adminArea.POST("/households/import", admin.ImportHouseholds)

	adminArea.GET("/rsvps", admin.ListResponses)
	adminArea.GET("/rsvps/export", admin.ExportResponses)
	adminArea.GET("/rsvps/:uuid", admin.ResponseDetail)
	adminArea.DELETE("/rsvps/:uuid", admin.DeleteResponse)

	adminArea.GET("/config", admin.GetFormConfig)
	adminArea.PUT("/config", admin.UpdateFormConfig)
	adminArea.GET("/stats", admin.Stats)

	mux.NoRoute(notFound)

	return mux
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"code": "PAGE_NOT_FOUND", "message": "Page not found"})
}

func slogAddTraceAttributes(c *gin.Context) {
	sloggin.AddCustomAttributes(c,
		slog.String("trace-id", trace.SpanFromContext(c.Request.Context()).SpanContext().TraceID().String()),
	)
	sloggin.AddCustomAttributes(c,
		slog.String("span-id", trace.SpanFromContext(c.Request.Context()).SpanContext().SpanID().String()),
	)
	c.Next()
}

// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package templates

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/mbaskhairoun/MMEngagement/internal/db"
	"github.com/mbaskhairoun/MMEngagement/internal/guestlist"
	"github.com/mbaskhairoun/MMEngagement/internal/model"
	"github.com/mbaskhairoun/MMEngagement/internal/rsvp"
)

//go:embed *.html
var pages embed.FS

// EventPage is the public face of the celebration, rendered into the
// form and admin pages.
type EventPage struct {
	Title       string
	HostNames   string
	Date        string
	Time        string
	Venue       string
	DressCode   string
	LocationURL string
}

func NewPageHandler(
	cStore db.ConfigStore,
	manager *rsvp.Manager,
	directory *guestlist.Directory,
	event EventPage,
) *PageHandler {
	return &PageHandler{
		tmplForm:  template.Must(template.ParseFS(pages, "form.html")),
		tmplAdmin: template.Must(template.ParseFS(pages, "admin.html")),
		cStore:    cStore,
		manager:   manager,
		directory: directory,
		event:     event,
		logger:    slog.Default().WithGroup("http"),
	}
}

type PageHandler struct {
	tmplForm  *template.Template
	tmplAdmin *template.Template
	cStore    db.ConfigStore
	manager   *rsvp.Manager
	directory *guestlist.Directory
	event     EventPage
	logger    *slog.Logger
}

// RenderForm serves the public RSVP page. Field visibility comes from
// the stored form configuration.
func (p *PageHandler) RenderForm(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "PageHandler.RenderForm")
	defer span.End()

	config, err := p.cStore.GetFormConfig(ctx)
	if err != nil {
		span.RecordError(err)
		p.logger.ErrorContext(ctx, "could not load form configuration", "error", err)
		c.String(http.StatusInternalServerError, "could not load form configuration")
		return
	}

	fields := make(map[string]bool)
	for name := range model.DefaultFormConfig().Fields {
		fields[name] = config.Shown(name)
	}

	if err := p.tmplForm.Execute(c.Writer, gin.H{
		"event":  p.event,
		"fields": fields,
	}); err != nil {
		span.RecordError(err)
		p.logger.ErrorContext(ctx, "unable to execute form template", "error", err)
	}
}

// RenderAdminOverview serves the admin dashboard with live totals and
// the guest list.
func (p *PageHandler) RenderAdminOverview(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "PageHandler.RenderAdminOverview")
	defer span.End()

	summary, err := p.manager.Summarize(ctx)
	if err != nil {
		span.RecordError(err)
		p.logger.ErrorContext(ctx, "could not build summary", "error", err)
		c.String(http.StatusInternalServerError, "could not build summary")
		return
	}

	households, err := p.directory.All(ctx)
	if err != nil {
		span.RecordError(err)
		p.logger.ErrorContext(ctx, "could not list households", "error", err)
		c.String(http.StatusInternalServerError, "could not list households")
		return
	}

	if err := p.tmplAdmin.Execute(c.Writer, gin.H{
		"event":      p.event,
		"summary":    summary,
		"households": households,
	}); err != nil {
		span.RecordError(err)
		p.logger.ErrorContext(ctx, "unable to execute admin template", "error", err)
	}
}

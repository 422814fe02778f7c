// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jeremywohl/flatten/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mbaskhairoun/MMEngagement/internal/db"
	"github.com/mbaskhairoun/MMEngagement/internal/guestlist"
	"github.com/mbaskhairoun/MMEngagement/internal/metrics"
	"github.com/mbaskhairoun/MMEngagement/internal/model"
	"github.com/mbaskhairoun/MMEngagement/internal/rsvp"
	"github.com/mbaskhairoun/MMEngagement/internal/spreadsheet"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxImportBytes  = 10 << 20
)

func NewAdminHandler(
	hStore db.HouseholdStore,
	rStore db.ResponseStore,
	cStore db.ConfigStore,
	manager *rsvp.Manager,
	directory *guestlist.Directory,
) *AdminHandler {
	return &AdminHandler{
		hStore:    hStore,
		rStore:    rStore,
		cStore:    cStore,
		manager:   manager,
		directory: directory,
		logger:    slog.Default().WithGroup("admin"),
	}
}

type AdminHandler struct {
	hStore    db.HouseholdStore
	rStore    db.ResponseStore
	cStore    db.ConfigStore
	manager   *rsvp.Manager
	directory *guestlist.Directory
	logger    *slog.Logger
}

// ListHouseholds returns the guest list, optionally narrowed by a
// case-insensitive search over invitation and member names.
func (a *AdminHandler) ListHouseholds(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.ListHouseholds")
	defer span.End()

	households, err := a.directory.All(ctx)
	if err != nil {
		span.RecordError(err)
		a.logger.ErrorContext(ctx, "could not list households", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not list households"})
		return
	}

	if q := model.Fold(c.Query("q")); q != "" {
		filtered := households[:0]
		for _, h := range households {
			if householdMatches(h, q) {
				filtered = append(filtered, h)
			}
		}
		households = filtered
	}

	c.JSON(http.StatusOK, households)
}

func householdMatches(h *model.Household, folded string) bool {
	if strings.Contains(h.InvitationNameLower, folded) {
		return true
	}
	for _, m := range h.MembersLower {
		if strings.Contains(m, folded) {
			return true
		}
	}
	return false
}

func (a *AdminHandler) CreateHousehold(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.CreateHousehold")
	defer span.End()

	var household model.Household
	if err := c.ShouldBindJSON(&household); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "could not parse household"})
		return
	}
	if err := household.Normalize(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	existing, err := a.directory.FindByExactName(ctx, household.InvitationName)
	if err != nil && !errors.Is(err, guestlist.ErrNoMatch) {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not check guest list"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"message": "a household with this invitation name already exists"})
		return
	}

	id, err := a.hStore.CreateHousehold(ctx, &household)
	if err != nil {
		span.RecordError(err)
		a.logger.ErrorContext(ctx, "could not create household", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not create household"})
		return
	}
	household.ID = id
	c.JSON(http.StatusCreated, &household)
}

func (a *AdminHandler) UpdateHousehold(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.UpdateHousehold")
	defer span.End()

	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid household ID"})
		return
	}

	stored, err := a.hStore.GetHouseholdByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "household not found"})
			return
		}
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not load household"})
		return
	}

	var household model.Household
	if err := c.ShouldBindJSON(&household); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "could not parse household"})
		return
	}
	household.ID = id
	// The responded flag and creation time are owned by the RSVP flow,
	// an edit only replaces the editable fields.
	household.HasResponded = stored.HasResponded
	household.CreatedAt = stored.CreatedAt
	if err := household.Normalize(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := a.hStore.UpdateHousehold(ctx, &household); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "household not found"})
			return
		}
		span.RecordError(err)
		a.logger.ErrorContext(ctx, "could not update household", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not update household"})
		return
	}
	c.JSON(http.StatusOK, &household)
}

// DeleteHousehold removes a household and its response, if one was
// submitted.
func (a *AdminHandler) DeleteHousehold(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.DeleteHousehold")
	defer span.End()

	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid household ID"})
		return
	}

	response, err := a.rStore.FindResponseByHousehold(ctx, id)
	if err == nil {
		if err := a.rStore.DeleteResponse(ctx, response.ID); err != nil {
			span.RecordError(err)
			a.logger.WarnContext(ctx, "could not delete orphaned response", "error", err)
		}
	} else if !errors.Is(err, db.ErrNotFound) {
		span.RecordError(err)
		a.logger.WarnContext(ctx, "could not look up household response", "error", err)
	}

	if err := a.hStore.DeleteHousehold(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "household not found"})
			return
		}
		span.RecordError(err)
		a.logger.ErrorContext(ctx, "could not delete household", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not delete household"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *AdminHandler) DownloadTemplate(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	_, span = tracer.Start(ctx, "AdminHandler.DownloadTemplate")
	defer span.End()

	f, err := spreadsheet.Template()
	if err != nil {
		span.RecordError(err)
		a.logger.ErrorContext(ctx, "could not build template workbook", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not build template workbook"})
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", `attachment; filename="guest-list-template.xlsx"`)
	c.Header("Content-Type", contentTypeXLSX)
	if err := f.Write(c.Writer); err != nil {
		span.RecordError(err)
		a.logger.ErrorContext(ctx, "could not write template workbook", "error", err)
	}
}

// ImportHouseholds ingests an uploaded workbook. Mode "append" (the
// default) skips invitation names already on the list, "replace"
// clears the list first. The batch is all-or-nothing.
func (a *AdminHandler) ImportHouseholds(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.ImportHouseholds")
	defer span.End()

	mode := db.ImportMode(c.DefaultQuery("mode", string(db.ImportAppend)))
	if mode != db.ImportAppend && mode != db.ImportReplace {
		c.JSON(http.StatusBadRequest, gin.H{"message": `mode must be "append" or "replace"`})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing workbook upload"})
		return
	}
	defer file.Close()
	if header.Size > maxImportBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "workbook too large"})
		return
	}

	households, err := spreadsheet.ParseWorkbook(file)
	if err != nil {
		span.RecordError(err)
		a.logger.WarnContext(ctx, "could not parse workbook", "error", err, "filename", header.Filename)
		c.JSON(http.StatusBadRequest, gin.H{"message": "could not parse workbook"})
		return
	}
	span.AddEvent("parsed workbook", trace.WithAttributes(attribute.Int("households", len(households))))

	result, err := a.hStore.ImportHouseholds(ctx, households, mode)
	if err != nil {
		span.RecordError(err)
		a.logger.ErrorContext(ctx, "import failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "import failed, no changes were made"})
		return
	}

	metrics.ImportedHouseholds.Add(float64(result.Added))
	a.logger.InfoContext(ctx, "guest list imported",
		"mode", string(mode), "added", result.Added, "skipped", result.Skipped)
	c.JSON(http.StatusOK, result)
}

func (a *AdminHandler) ListResponses(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.ListResponses")
	defer span.End()

	responses, err := a.rStore.ListResponses(ctx)
	if err != nil {
		span.RecordError(err)
		a.logger.ErrorContext(ctx, "could not list responses", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not list responses"})
		return
	}
	c.JSON(http.StatusOK, responses)
}

// ResponseDetail returns one response as a flat dot-keyed document,
// ready for a key/value detail table.
func (a *AdminHandler) ResponseDetail(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.ResponseDetail")
	defer span.End()

	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid response ID"})
		return
	}

	response, err := a.rStore.GetResponseByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "response not found"})
			return
		}
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not load response"})
		return
	}

	out, err := json.Marshal(response)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not render response"})
		return
	}
	flattened, err := flatten.FlattenString(string(out), "", flatten.DotStyle)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not render response"})
		return
	}
	fields := make(map[string]any)
	if err := json.Unmarshal([]byte(flattened), &fields); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not render response"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": response.ID, "fields": fields})
}

func (a *AdminHandler) DeleteResponse(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.DeleteResponse")
	defer span.End()

	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid response ID"})
		return
	}

	if err := a.manager.Delete(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "response not found"})
			return
		}
		span.RecordError(err)
		a.logger.ErrorContext(ctx, "could not delete response", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not delete response"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *AdminHandler) ExportResponses(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.ExportResponses")
	defer span.End()

	households, err := a.hStore.ListHouseholds(ctx)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not list households"})
		return
	}
	responses, err := a.rStore.ListResponses(ctx)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not list responses"})
		return
	}

	f, err := spreadsheet.ExportResponses(households, responses)
	if err != nil {
		span.RecordError(err)
		a.logger.ErrorContext(ctx, "could not build export workbook", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not build export workbook"})
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", `attachment; filename="rsvp-responses.xlsx"`)
	c.Header("Content-Type", contentTypeXLSX)
	if err := f.Write(c.Writer); err != nil {
		span.RecordError(err)
		a.logger.ErrorContext(ctx, "could not write export workbook", "error", err)
	}
}

func (a *AdminHandler) GetFormConfig(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.GetFormConfig")
	defer span.End()

	config, err := a.cStore.GetFormConfig(ctx)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not load form configuration"})
		return
	}
	c.JSON(http.StatusOK, config)
}

// UpdateFormConfig replaces the visibility document wholesale. Unknown
// field names are rejected, omitted fields fall back to their default.
func (a *AdminHandler) UpdateFormConfig(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.UpdateFormConfig")
	defer span.End()

	var incoming model.FormConfig
	if err := c.ShouldBindJSON(&incoming); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "could not parse configuration"})
		return
	}

	config := model.DefaultFormConfig()
	for field, shown := range incoming.Fields {
		if _, ok := config.Fields[field]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"message": "unknown form field: " + field})
			return
		}
		config.Fields[field] = shown
	}

	if err := a.cStore.PutFormConfig(ctx, config); err != nil {
		span.RecordError(err)
		a.logger.ErrorContext(ctx, "could not store form configuration", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not store form configuration"})
		return
	}
	c.JSON(http.StatusOK, config)
}

func (a *AdminHandler) Stats(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AdminHandler.Stats")
	defer span.End()

	summary, err := a.manager.Summarize(ctx)
	if err != nil {
		span.RecordError(err)
		a.logger.ErrorContext(ctx, "could not build summary", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not build summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

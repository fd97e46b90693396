package api

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/buger/jsonparser"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/BerylCAtieno/avatar-analyzer/internal/export"
	"github.com/BerylCAtieno/avatar-analyzer/internal/models"
	"github.com/BerylCAtieno/avatar-analyzer/internal/record"
	"github.com/BerylCAtieno/avatar-analyzer/internal/report"
	"github.com/BerylCAtieno/avatar-analyzer/internal/service"
)

const (
	htmlContentType = "text/html; charset=utf-8"
	jsonContentType = "application/json; charset=utf-8"
	healthTimeout   = 2 * time.Second
)

type Handler struct {
	svc *service.Service
	log logrus.FieldLogger
}

func NewHandler(svc *service.Service, log logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Analyze handles POST /api/analyze. The reply is the analysis record,
// with analysis_id added when the request was persisted.
func (h *Handler) Analyze(c *gin.Context) {
	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	res, err := h.svc.Analyze(c.Request.Context(), req)
	if err != nil {
		failErr(c, err)
		return
	}

	body := res.Record.Bytes()
	if res.ID != 0 {
		body, err = jsonparser.Set(body, []byte(strconv.FormatInt(res.ID, 10)), "analysis_id")
		if err != nil {
			failErr(c, err)
			return
		}
	}
	c.Data(http.StatusOK, jsonContentType, body)
}

func (h *Handler) ListAnalyses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.svc.List(c.Request.Context(), limit, c.Query("nicho"))
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetAnalysis(c *gin.Context) {
	a, ok := h.loadAnalysis(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, a)
}

// Report handles GET /api/analyses/:id/report?tab=.
func (h *Handler) Report(c *gin.Context) {
	a, ok := h.loadAnalysis(c, true)
	if !ok {
		return
	}
	h.writeHTML(c, a.Record, service.LinksFor(a.ID))
}

func (h *Handler) View(c *gin.Context) {
	a, ok := h.loadAnalysis(c, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.svc.View(a.Record, service.LinksFor(a.ID), c.Query("tab")))
}

func (h *Handler) Export(c *gin.Context) {
	a, ok := h.loadAnalysis(c, true)
	if !ok {
		return
	}
	h.writeExport(c, a.Record)
}

// Render handles POST /api/render: the body is an analysis record.
func (h *Handler) Render(c *gin.Context) {
	rec, ok := bindRecord(c)
	if !ok {
		return
	}
	h.writeHTML(c, rec, report.Links{Share: service.ShareLink})
}

func (h *Handler) ExportRecord(c *gin.Context) {
	rec, ok := bindRecord(c)
	if !ok {
		return
	}
	h.writeExport(c, rec)
}

// SearchNichos handles POST /api/nichos.
func (h *Handler) SearchNichos(c *gin.Context) {
	var req models.NichoSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, MsgInvalidBody)
		return
	}
	nichos, err := h.svc.SearchNichos(c.Request.Context(), req.Search)
	if err != nil {
		failErr(c, err)
		return
	}
	if nichos == nil {
		nichos = []string{}
	}
	c.JSON(http.StatusOK, models.NichoSearchResponse{Nichos: nichos})
}

func (h *Handler) ListNichos(c *gin.Context) {
	counts, err := h.svc.Nichos(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nichos": counts})
}

func (h *Handler) Template(c *gin.Context) {
	t, err := h.svc.Template(c.Request.Context(), c.Param("nicho"))
	if err != nil {
		if service.IsNotFound(err) {
			fail(c, http.StatusNotFound, MsgTemplateNotFound)
			return
		}
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) Health(c *gin.Context) {
	resp := models.HealthResponse{
		Status:         "healthy",
		Message:        "Aplicação funcionando corretamente",
		GeminiStatus:   "not_configured",
		DatabaseStatus: "not_configured",
	}
	if h.svc.AnalyzerConfigured() {
		resp.GeminiStatus = "configured"
	}
	if h.svc.StorageConfigured() {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := h.svc.Ping(ctx); err != nil {
			h.log.WithError(err).Warn("Database ping failed")
			resp.Status = "degraded"
			resp.DatabaseStatus = "error"
		} else {
			resp.DatabaseStatus = "connected"
		}
	}
	c.JSON(http.StatusOK, resp)
}

func NotFound(c *gin.Context) {
	fail(c, http.StatusNotFound, MsgNotFound)
}

// loadAnalysis resolves :id. With completed set, rows that are still
// processing or failed are rejected with 409.
func (h *Handler) loadAnalysis(c *gin.Context, completed bool) (models.StoredAnalysis, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, MsgInvalidID)
		return models.StoredAnalysis{}, false
	}
	a, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return models.StoredAnalysis{}, false
	}
	if completed && a.Status != models.StatusCompleted {
		fail(c, http.StatusConflict, MsgAnalysisIncomplete)
		return models.StoredAnalysis{}, false
	}
	return a, true
}

func bindRecord(c *gin.Context) (record.AnalysisRecord, bool) {
	body, err := c.GetRawData()
	if err != nil {
		fail(c, http.StatusBadRequest, MsgInvalidBody)
		return record.AnalysisRecord{}, false
	}
	rec, err := record.Parse(body)
	if err != nil {
		fail(c, http.StatusBadRequest, MsgInvalidBody)
		return record.AnalysisRecord{}, false
	}
	return rec, true
}

func (h *Handler) writeHTML(c *gin.Context, rec record.AnalysisRecord, links report.Links) {
	var buf bytes.Buffer
	if err := h.svc.RenderHTML(&buf, rec, links, c.Query("tab")); err != nil {
		failErr(c, err)
		return
	}
	c.Data(http.StatusOK, htmlContentType, buf.Bytes())
}

func (h *Handler) writeExport(c *gin.Context, rec record.AnalysisRecord) {
	var buf bytes.Buffer
	name, err := h.svc.Export(&buf, rec, "download")
	if err != nil {
		failErr(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

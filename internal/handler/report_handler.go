package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mcastellanos/cursoadmin-api/internal/models"
	"github.com/mcastellanos/cursoadmin-api/internal/service"
	appErrors "github.com/mcastellanos/cursoadmin-api/pkg/errors"
	"github.com/mcastellanos/cursoadmin-api/pkg/response"
)

// ReportHandler exposes the asynchronous course report endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type reportRequest struct {
	Format string `json:"format"`
}

// Enqueue godoc
// @Summary Request course progress report
// @Description Queues a background job rendering the course report
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body reportRequest false "Report options"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/course [post]
func (h *ReportHandler) Enqueue(c *gin.Context) {
	var req reportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
			return
		}
	}

	requestedBy := ""
	if claims := claimsFromContext(c); claims != nil {
		requestedBy = claims.Email
	}

	job, err := h.reports.Enqueue(c.Request.Context(), models.ReportFormat(strings.ToLower(req.Format)), requestedBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// Status godoc
// @Summary Report job status
// @Tags Reports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/course/{id} [get]
func (h *ReportHandler) Status(c *gin.Context) {
	job, err := h.reports.Status(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job)
}

// Download godoc
// @Summary Download rendered report
// @Description Streams the report file referenced by a signed token
// @Tags Reports
// @Produce application/octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/course/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}

	handle, err := h.reports.Download(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer handle.Close() //nolint:errcheck

	info, err := handle.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat report file"))
		return
	}

	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(handle.Name, ".pdf"):
		contentType = "application/pdf"
	case strings.HasSuffix(handle.Name, ".csv"):
		contentType = "text/csv"
	}

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", handle.Name),
	}
	c.DataFromReader(http.StatusOK, info.Size(), contentType, handle.File, extraHeaders)
}

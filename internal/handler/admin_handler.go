package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/greencampus/waste-portal-api/internal/service"
	appErrors "github.com/greencampus/waste-portal-api/pkg/errors"
	"github.com/greencampus/waste-portal-api/pkg/response"
)

// AdminHandler exposes storage administration and system status endpoints.
type AdminHandler struct {
	attachments *service.AttachmentService
	metrics     *service.MetricsService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(attachments *service.AttachmentService, metrics *service.MetricsService) *AdminHandler {
	return &AdminHandler{attachments: attachments, metrics: metrics}
}

// StorageReport godoc
// @Summary Attachment storage usage
// @Description Report attachment counts and sizes from the registry and the object store
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/storage [get]
func (h *AdminHandler) StorageReport(c *gin.Context) {
	report, err := h.attachments.StorageReport(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

type purgeRequest struct {
	OlderThanDays int `json:"older_than_days" binding:"required,min=1"`
}

// Purge godoc
// @Summary Purge old attachments
// @Description Remove stored attachments older than the given number of days
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body purgeRequest true "Purge settings"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/storage/purge [post]
func (h *AdminHandler) Purge(c *gin.Context) {
	var req purgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid purge payload"))
		return
	}

	claims := claimsFromContext(c)
	result, err := h.attachments.Purge(c.Request.Context(), time.Duration(req.OlderThanDays)*24*time.Hour, claims.Username)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SystemMetrics godoc
// @Summary System metrics snapshot
// @Description Aggregated runtime counters for the admin status view
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/metrics [get]
func (h *AdminHandler) SystemMetrics(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}

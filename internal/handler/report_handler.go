package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/greencampus/waste-portal-api/internal/models"
	"github.com/greencampus/waste-portal-api/internal/service"
	appErrors "github.com/greencampus/waste-portal-api/pkg/errors"
	"github.com/greencampus/waste-portal-api/pkg/response"
)

// ReportHandler exposes verified aggregate data and exports.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// MasterData godoc
// @Summary Master waste data
// @Description List verified per-day per-hostel aggregate rows
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param hostel query string false "Hostel filter"
// @Param period query string false "Rolling window (week, month, year, all_time)"
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /reports/master [get]
func (h *ReportHandler) MasterData(c *gin.Context) {
	filter, err := masterFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.service.MasterData(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// KPIs godoc
// @Summary Dashboard KPI summary
// @Description Headline totals and per-capita figures over the filtered window
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param hostel query string false "Hostel filter"
// @Param period query string false "Rolling window (week, month, year, all_time)"
// @Success 200 {object} response.Envelope
// @Router /reports/kpis [get]
func (h *ReportHandler) KPIs(c *gin.Context) {
	filter, err := masterFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.service.KPIs(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Hostels godoc
// @Summary Known hostels
// @Description List hostels present in the master data
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /reports/hostels [get]
func (h *ReportHandler) Hostels(c *gin.Context) {
	hostels, err := h.service.Hostels(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hostels, nil)
}

// ExportCSV godoc
// @Summary Export master data as CSV
// @Tags Reports
// @Produce text/csv
// @Security BearerAuth
// @Param hostel query string false "Hostel filter"
// @Param period query string false "Rolling window (week, month, year, all_time)"
// @Success 200 {file} file
// @Router /reports/export/csv [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	filter, err := masterFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.service.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("waste_report_%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", payload)
}

// ExportPDF godoc
// @Summary Export master data as PDF
// @Tags Reports
// @Produce application/pdf
// @Security BearerAuth
// @Param hostel query string false "Hostel filter"
// @Param period query string false "Rolling window (week, month, year, all_time)"
// @Success 200 {file} file
// @Router /reports/export/pdf [get]
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	filter, err := masterFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.service.ExportPDF(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("waste_report_%s.pdf", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}

func masterFilterFromQuery(c *gin.Context) (models.MasterDataFilter, error) {
	filter := models.MasterDataFilter{Hostel: c.Query("hostel")}

	if period := c.Query("period"); period != "" {
		p := models.ReportPeriod(period)
		if !p.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "unknown period")
		}
		filter.Period = p
	}
	if from := c.Query("date_from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "date_from must use YYYY-MM-DD")
		}
		filter.DateFrom = &t
	}
	if to := c.Query("date_to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "date_to must use YYYY-MM-DD")
		}
		filter.DateTo = &t
	}
	return filter, nil
}

package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/greencampus/waste-portal-api/internal/models"
	"github.com/greencampus/waste-portal-api/internal/service"
	appErrors "github.com/greencampus/waste-portal-api/pkg/errors"
	"github.com/greencampus/waste-portal-api/pkg/response"
)

// SubmissionHandler exposes waste data intake endpoints.
type SubmissionHandler struct {
	service     *service.SubmissionService
	attachments *service.AttachmentService
}

// NewSubmissionHandler creates a new handler.
func NewSubmissionHandler(svc *service.SubmissionService, attachments *service.AttachmentService) *SubmissionHandler {
	return &SubmissionHandler{service: svc, attachments: attachments}
}

// SubmitMess godoc
// @Summary Submit mess waste data
// @Description Store a pending mess waste submission. Accepts JSON, or multipart with a "data" JSON part plus "attachments" files.
// @Tags Submissions
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param payload body models.MessSubmissionRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /submissions/mess [post]
func (h *SubmissionHandler) SubmitMess(c *gin.Context) {
	var req models.MessSubmissionRequest
	if err := bindSubmissionPayload(c, &req, func(uploads []models.AttachmentUpload) {
		req.Attachments = uploads
	}); err != nil {
		response.Error(c, err)
		return
	}

	claims := claimsFromContext(c)
	result, err := h.service.SubmitMess(c.Request.Context(), req, claims.Username)
	if err != nil {
		if result != nil && appErrors.FromError(err).Code == appErrors.ErrPartialUpload.Code {
			response.ErrorWithData(c, err, result)
			return
		}
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// SubmitHostel godoc
// @Summary Submit hostel waste data
// @Description Store a pending hostel waste submission. Accepts JSON, or multipart with a "data" JSON part plus "attachments" files.
// @Tags Submissions
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param payload body models.HostelSubmissionRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /submissions/hostel [post]
func (h *SubmissionHandler) SubmitHostel(c *gin.Context) {
	var req models.HostelSubmissionRequest
	if err := bindSubmissionPayload(c, &req, func(uploads []models.AttachmentUpload) {
		req.Attachments = uploads
	}); err != nil {
		response.Error(c, err)
		return
	}

	claims := claimsFromContext(c)
	result, err := h.service.SubmitHostel(c.Request.Context(), req, claims.Username)
	if err != nil {
		if result != nil && appErrors.FromError(err).Code == appErrors.ErrPartialUpload.Code {
			response.ErrorWithData(c, err, result)
			return
		}
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListMess godoc
// @Summary List mess submissions
// @Description List mess submissions. Submitters only see their own.
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param hostel query string false "Hostel filter"
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /submissions/mess [get]
func (h *SubmissionHandler) ListMess(c *gin.Context) {
	filter, err := submissionFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.service.ListMess(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ListHostel godoc
// @Summary List hostel submissions
// @Description List hostel submissions. Submitters only see their own.
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param hostel query string false "Hostel filter"
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /submissions/hostel [get]
func (h *SubmissionHandler) ListHostel(c *gin.Context) {
	filter, err := submissionFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.service.ListHostel(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// MessAttachments godoc
// @Summary List mess submission attachments
// @Description List stored attachment references for one mess submission
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission id"
// @Success 200 {object} response.Envelope
// @Router /submissions/mess/{id}/attachments [get]
func (h *SubmissionHandler) MessAttachments(c *gin.Context) {
	h.listAttachments(c, models.TypeMessWaste)
}

// HostelAttachments godoc
// @Summary List hostel submission attachments
// @Description List stored attachment references for one hostel submission
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission id"
// @Success 200 {object} response.Envelope
// @Router /submissions/hostel/{id}/attachments [get]
func (h *SubmissionHandler) HostelAttachments(c *gin.Context) {
	h.listAttachments(c, models.TypeHostelWaste)
}

func (h *SubmissionHandler) listAttachments(c *gin.Context, submissionType models.SubmissionType) {
	rows, err := h.service.Attachments(c.Request.Context(), c.Param("id"), submissionType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// DownloadLink godoc
// @Summary Signed download link for an attachment
// @Description Issue a short-lived token that grants access to one stored attachment
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Param attachmentID path string true "Attachment id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /submissions/attachments/{attachmentID}/link [get]
func (h *SubmissionHandler) DownloadLink(c *gin.Context) {
	link, err := h.attachments.DownloadLink(c.Request.Context(), c.Param("attachmentID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Download godoc
// @Summary Download an attachment
// @Description Stream a stored attachment; the signed token is the only credential
// @Tags Submissions
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Router /attachments/download [get]
func (h *SubmissionHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token query parameter required"))
		return
	}

	reader, att, err := h.attachments.OpenDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer reader.Close() //nolint:errcheck

	c.Header("Content-Disposition", `attachment; filename="`+att.Filename+`"`)
	c.DataFromReader(http.StatusOK, att.FileSize, "application/octet-stream", reader, nil)
}

// bindSubmissionPayload decodes either a JSON body or a multipart form with a
// "data" JSON part and "attachments" file parts.
func bindSubmissionPayload(c *gin.Context, dest interface{}, setUploads func([]models.AttachmentUpload)) error {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBindJSON(dest); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload")
		}
		return nil
	}

	payload := c.PostForm("data")
	if payload == "" {
		return appErrors.Clone(appErrors.ErrValidation, "multipart submissions require a data part")
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart form")
	}
	uploads := make([]models.AttachmentUpload, 0, len(form.File["attachments"]))
	for _, fileHeader := range form.File["attachments"] {
		file, err := fileHeader.Open()
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable attachment "+fileHeader.Filename)
		}
		data, err := io.ReadAll(file)
		file.Close() //nolint:errcheck
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable attachment "+fileHeader.Filename)
		}
		uploads = append(uploads, models.AttachmentUpload{
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	setUploads(uploads)
	return nil
}

func submissionFilterFromQuery(c *gin.Context) (models.SubmissionFilter, error) {
	filter := models.SubmissionFilter{Hostel: c.Query("hostel")}

	if status := c.Query("status"); status != "" {
		s := models.SubmissionStatus(status)
		if s != models.StatusPending && s != models.StatusVerified && s != models.StatusRejected {
			return filter, appErrors.Clone(appErrors.ErrValidation, "unknown status")
		}
		filter.Status = &s
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

	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleSubmitter {
		filter.SubmittedBy = claims.Username
	}
	return filter, nil
}

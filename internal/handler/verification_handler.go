package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greencampus/waste-portal-api/internal/models"
	"github.com/greencampus/waste-portal-api/internal/service"
	appErrors "github.com/greencampus/waste-portal-api/pkg/errors"
	"github.com/greencampus/waste-portal-api/pkg/response"
)

// VerificationHandler exposes the verifier decision endpoints.
type VerificationHandler struct {
	service *service.VerificationService
}

// NewVerificationHandler creates a new handler.
func NewVerificationHandler(svc *service.VerificationService) *VerificationHandler {
	return &VerificationHandler{service: svc}
}

// PendingGroups godoc
// @Summary Pending verification queue
// @Description List pending submissions grouped per hostel and date
// @Tags Verification
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /verification/pending [get]
func (h *VerificationHandler) PendingGroups(c *gin.Context) {
	groups, err := h.service.PendingGroups(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// Approve godoc
// @Summary Approve a submission
// @Description Verify a pending submission as submitted and fold it into the master data
// @Tags Verification
// @Produce json
// @Security BearerAuth
// @Param type path string true "Submission type (mess_waste or hostel_waste)"
// @Param id path string true "Submission id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /verification/decisions/{type}/{id}/approve [post]
func (h *VerificationHandler) Approve(c *gin.Context) {
	claims := claimsFromContext(c)
	submissionType := models.SubmissionType(c.Param("type"))
	if err := h.service.Approve(c.Request.Context(), submissionType, c.Param("id"), claims.Username); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"submission_id": c.Param("id"), "status": models.StatusVerified}, nil)
}

// Reject godoc
// @Summary Reject a submission
// @Description Reject a pending submission; rejected data never reaches the master data
// @Tags Verification
// @Produce json
// @Security BearerAuth
// @Param type path string true "Submission type (mess_waste or hostel_waste)"
// @Param id path string true "Submission id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /verification/decisions/{type}/{id}/reject [post]
func (h *VerificationHandler) Reject(c *gin.Context) {
	claims := claimsFromContext(c)
	submissionType := models.SubmissionType(c.Param("type"))
	if err := h.service.Reject(c.Request.Context(), submissionType, c.Param("id"), claims.Username); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"submission_id": c.Param("id"), "status": models.StatusRejected}, nil)
}

// EditMess godoc
// @Summary Edit and approve a mess submission
// @Description Approve a pending mess submission with corrected fields, recording the change
// @Tags Verification
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission id"
// @Param payload body models.MessEditRequest true "Corrected fields and reason"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /verification/decisions/mess_waste/{id}/edit [post]
func (h *VerificationHandler) EditMess(c *gin.Context) {
	var req models.MessEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid edit payload"))
		return
	}

	claims := claimsFromContext(c)
	if err := h.service.EditMessAndApprove(c.Request.Context(), c.Param("id"), req, claims.Username); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"submission_id": c.Param("id"), "status": models.StatusVerified, "edited": true}, nil)
}

// EditHostel godoc
// @Summary Edit and approve a hostel submission
// @Description Approve a pending hostel submission with corrected fields, recording the change
// @Tags Verification
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission id"
// @Param payload body models.HostelEditRequest true "Corrected fields and reason"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /verification/decisions/hostel_waste/{id}/edit [post]
func (h *VerificationHandler) EditHostel(c *gin.Context) {
	var req models.HostelEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid edit payload"))
		return
	}

	claims := claimsFromContext(c)
	if err := h.service.EditHostelAndApprove(c.Request.Context(), c.Param("id"), req, claims.Username); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"submission_id": c.Param("id"), "status": models.StatusVerified, "edited": true}, nil)
}

// Edit dispatches an edit-and-approve request by submission type.
func (h *VerificationHandler) Edit(c *gin.Context) {
	switch models.SubmissionType(c.Param("type")) {
	case models.TypeMessWaste:
		h.EditMess(c)
	case models.TypeHostelWaste:
		h.EditHostel(c)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown submission type"))
	}
}

type approveAllRequest struct {
	SubmissionIDs []string `json:"submission_ids" binding:"required,min=1"`
}

// ApproveAll godoc
// @Summary Approve a batch of submissions
// @Description Approve submissions one by one, reporting each outcome
// @Tags Verification
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type path string true "Submission type (mess_waste or hostel_waste)"
// @Param payload body approveAllRequest true "Submission ids"
// @Success 200 {object} response.Envelope
// @Router /verification/batch/{type}/approve-all [post]
func (h *VerificationHandler) ApproveAll(c *gin.Context) {
	var req approveAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch payload"))
		return
	}

	claims := claimsFromContext(c)
	outcomes := h.service.ApproveAll(c.Request.Context(), models.SubmissionType(c.Param("type")), req.SubmissionIDs, claims.Username)
	response.JSON(c, http.StatusOK, outcomes, nil)
}

// EditHistory godoc
// @Summary Verifier edit history
// @Description List every verifier edit with its submission context, newest first
// @Tags Verification
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /verification/edits [get]
func (h *VerificationHandler) EditHistory(c *gin.Context) {
	rows, err := h.service.EditHistory(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// SubmissionEdits godoc
// @Summary Edit trail for one submission
// @Description List the edit records for one submission, oldest first
// @Tags Verification
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission id"
// @Success 200 {object} response.Envelope
// @Router /verification/edits/{id} [get]
func (h *VerificationHandler) SubmissionEdits(c *gin.Context) {
	rows, err := h.service.SubmissionEdits(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

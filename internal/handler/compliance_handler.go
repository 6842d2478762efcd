package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/meatsafe-api/internal/dto"
	"github.com/noah-isme/meatsafe-api/internal/models"
	appErrors "github.com/noah-isme/meatsafe-api/pkg/errors"
	"github.com/noah-isme/meatsafe-api/pkg/response"
)

type complianceService interface {
	Upload(ctx context.Context, actor *models.Account, req dto.UploadRequest, meta models.SessionMeta) (*models.ComplianceUpload, error)
	List(ctx context.Context, actor *models.Account) ([]models.ComplianceUpload, error)
	Open(ctx context.Context, actor *models.Account, id string) (*models.ComplianceUpload, io.ReadCloser, error)
}

// ComplianceHandler manages evidence upload endpoints.
type ComplianceHandler struct {
	service complianceService
}

// NewComplianceHandler constructs the handler.
func NewComplianceHandler(svc complianceService) *ComplianceHandler {
	return &ComplianceHandler{service: svc}
}

// Upload godoc
// @Summary Upload compliance evidence
// @Description Accepts one image (jpg, jpeg, png, gif) or video (mp4, mov, avi, wmv)
// @Tags Compliance
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Evidence file"
// @Param description formData string false "Description"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /compliance/upload [post]
func (h *ComplianceHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	req := dto.UploadRequest{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Description: c.PostForm("description"),
		Body:        src,
	}
	upload, err := h.service.Upload(c.Request.Context(), currentAccount(c), req, sessionMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, upload)
}

// List godoc
// @Summary List own uploads
// @Tags Compliance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /compliance/uploads [get]
func (h *ComplianceHandler) List(c *gin.Context) {
	uploads, err := h.service.List(c.Request.Context(), currentAccount(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, uploads, response.Count(len(uploads)))
}

// File godoc
// @Summary Stream an uploaded file
// @Tags Compliance
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Upload ID"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /compliance/file/{id} [get]
func (h *ComplianceHandler) File(c *gin.Context) {
	upload, body, err := h.service.Open(c.Request.Context(), currentAccount(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer body.Close()

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	name := strings.NewReplacer(`"`, "", "\r", "", "\n", "").Replace(upload.Filename)
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, upload.SizeBytes, contentType, body, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=\"%s\"", name),
	})
}

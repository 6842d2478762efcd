package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/meatsafe-api/internal/dto"
	"github.com/noah-isme/meatsafe-api/internal/models"
	"github.com/noah-isme/meatsafe-api/internal/service"
	appErrors "github.com/noah-isme/meatsafe-api/pkg/errors"
	"github.com/noah-isme/meatsafe-api/pkg/response"
)

type accountService interface {
	UpdateProfile(ctx context.Context, actor *models.Account, req dto.UpdateProfileRequest, meta models.SessionMeta) (*models.Account, error)
	ListAccounts(ctx context.Context, actor *models.Account) ([]models.Account, error)
	TransitionStatus(ctx context.Context, actor *models.Account, id string, req dto.UpdateStatusRequest, meta models.SessionMeta) (*models.Account, error)
	ExportAccounts(ctx context.Context, actor *models.Account, format string) (*service.ExportFile, error)
}

// AccountHandler serves self-service profile and administrative account endpoints.
type AccountHandler struct {
	service accountService
}

// NewAccountHandler constructs the handler.
func NewAccountHandler(svc accountService) *AccountHandler {
	return &AccountHandler{service: svc}
}

// Me godoc
// @Summary Current account
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /users/me [get]
func (h *AccountHandler) Me(c *gin.Context) {
	account := currentAccount(c)
	if account == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.OK(c, account)
}

// UpdateMe godoc
// @Summary Update own profile
// @Description Only name and restaurant_name may be changed; any other key is rejected
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdateProfileRequest true "Profile patch"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/me [put]
func (h *AccountHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := decodeStrict(c, &req, "invalid profile payload"); err != nil {
		response.Error(c, err)
		return
	}
	account, err := h.service.UpdateProfile(c.Request.Context(), currentAccount(c), req, sessionMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, account)
}

// List godoc
// @Summary List all accounts
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/users [get]
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.service.ListAccounts(c.Request.Context(), currentAccount(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, accounts, response.Count(len(accounts)))
}

// UpdateStatus godoc
// @Summary Approve or reject an account
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Param payload body dto.UpdateStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/users/{id} [put]
func (h *AccountHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "status must be approved or rejected"))
		return
	}
	account, err := h.service.TransitionStatus(c.Request.Context(), currentAccount(c), c.Param("id"), req, sessionMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, account)
}

// Export godoc
// @Summary Export account roster
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/users/export [get]
func (h *AccountHandler) Export(c *gin.Context) {
	file, err := h.service.ExportAccounts(c.Request.Context(), currentAccount(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/meatsafe-api/internal/dto"
	"github.com/noah-isme/meatsafe-api/internal/models"
	"github.com/noah-isme/meatsafe-api/internal/service"
	appErrors "github.com/noah-isme/meatsafe-api/pkg/errors"
)

type fakeAccountService struct {
	profileReq *dto.UpdateProfileRequest
	statusID   string
	statusReq  dto.UpdateStatusRequest
	statusErr  error
	format     string
}

func (f *fakeAccountService) UpdateProfile(ctx context.Context, actor *models.Account, req dto.UpdateProfileRequest, meta models.SessionMeta) (*models.Account, error) {
	f.profileReq = &req
	updated := *actor
	if req.Name != nil {
		updated.Name = *req.Name
	}
	return &updated, nil
}

func (f *fakeAccountService) ListAccounts(ctx context.Context, actor *models.Account) ([]models.Account, error) {
	return []models.Account{*operator(), *operator()}, nil
}

func (f *fakeAccountService) TransitionStatus(ctx context.Context, actor *models.Account, id string, req dto.UpdateStatusRequest, meta models.SessionMeta) (*models.Account, error) {
	f.statusID = id
	f.statusReq = req
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &models.Account{ID: id, Status: req.Status}, nil
}

func (f *fakeAccountService) ExportAccounts(ctx context.Context, actor *models.Account, format string) (*service.ExportFile, error) {
	f.format = format
	return &service.ExportFile{Filename: "accounts-20240101.csv", ContentType: "text/csv", Data: []byte("id\nop-1\n")}, nil
}

func TestAccountHandlerMe(t *testing.T) {
	h := NewAccountHandler(&fakeAccountService{})

	c, rec := newTestContext(http.MethodGet, "/users/me", nil, operator())
	h.Me(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"id":"op-1"`)

	c, rec = newTestContext(http.MethodGet, "/users/me", nil, nil)
	h.Me(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAccountHandlerUpdateMe(t *testing.T) {
	svc := &fakeAccountService{}
	h := NewAccountHandler(svc)

	c, rec := newTestContext(http.MethodPut, "/users/me", strings.NewReader(`{"name":"Chef","restaurant_name":"Bistro"}`), operator())
	h.UpdateMe(c)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.profileReq)
	assert.Equal(t, "Chef", *svc.profileReq.Name)
	assert.Equal(t, "Bistro", *svc.profileReq.RestaurantName)
}

func TestAccountHandlerUpdateMeRejectsPrivilegedFields(t *testing.T) {
	for _, body := range []string{
		`{"status":"approved"}`,
		`{"name":"x","role":"ADMIN"}`,
		`{"approved_by":"me"}`,
		`{"name":`,
		``,
	} {
		svc := &fakeAccountService{}
		h := NewAccountHandler(svc)
		c, rec := newTestContext(http.MethodPut, "/users/me", strings.NewReader(body), operator())
		h.UpdateMe(c)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Nil(t, svc.profileReq, body)
	}
}

func TestAccountHandlerList(t *testing.T) {
	h := NewAccountHandler(&fakeAccountService{})
	c, rec := newTestContext(http.MethodGet, "/admin/users", nil, operator())

	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeEnvelope(t, rec).Meta["count"])
}

func TestAccountHandlerUpdateStatus(t *testing.T) {
	svc := &fakeAccountService{}
	h := NewAccountHandler(svc)
	c, rec := newTestContext(http.MethodPut, "/admin/users/op-9", strings.NewReader(`{"status":"approved"}`), operator())
	c.Params = gin.Params{{Key: "id", Value: "op-9"}}

	h.UpdateStatus(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "op-9", svc.statusID)
	assert.Equal(t, models.StatusApproved, svc.statusReq.Status)

	svc.statusErr = appErrors.Clone(appErrors.ErrNotFound, "user not found")
	c, rec = newTestContext(http.MethodPut, "/admin/users/nobody", strings.NewReader(`{"status":"rejected"}`), operator())
	c.Params = gin.Params{{Key: "id", Value: "nobody"}}
	h.UpdateStatus(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newTestContext(http.MethodPut, "/admin/users/op-9", strings.NewReader(`not json`), operator())
	h.UpdateStatus(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountHandlerExport(t *testing.T) {
	svc := &fakeAccountService{}
	h := NewAccountHandler(svc)
	c, rec := newTestContext(http.MethodGet, "/admin/users/export?format=csv", nil, operator())

	h.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", svc.format)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="accounts-20240101.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "id\nop-1\n", rec.Body.String())
}

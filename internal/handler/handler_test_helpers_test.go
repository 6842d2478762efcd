package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/meatsafe-api/internal/middleware"
	"github.com/noah-isme/meatsafe-api/internal/models"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *errorBody             `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newTestContext(method, target string, body io.Reader, account *models.Account) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, body)
	if account != nil {
		c.Set(middleware.ContextUserKey, account)
	}
	return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func operator() *models.Account {
	return &models.Account{ID: "op-1", Email: "op@example.com", Role: models.RoleOperator, Status: models.StatusApproved, Version: 1}
}

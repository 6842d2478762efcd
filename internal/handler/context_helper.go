package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/meatsafe-api/internal/middleware"
	"github.com/noah-isme/meatsafe-api/internal/models"
	appErrors "github.com/noah-isme/meatsafe-api/pkg/errors"
)

func sessionMeta(c *gin.Context) models.SessionMeta {
	return models.SessionMeta{IPAddress: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}

func currentAccount(c *gin.Context) *models.Account {
	return middleware.CurrentAccount(c)
}

// decodeStrict binds a JSON body, rejecting unknown fields and trailing data.
func decodeStrict(c *gin.Context, dest interface{}, message string) error {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		var syntax *json.SyntaxError
		if errors.As(err, &syntax) || errors.Is(err, io.EOF) {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("%s: %v", message, err))
	}
	if decoder.More() {
		return appErrors.Clone(appErrors.ErrValidation, message)
	}
	return nil
}

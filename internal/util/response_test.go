package util

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SeakMengs/AutoSign/internal/apperror"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"Domain error", apperror.ErrSessionAlreadySigned, http.StatusConflict, "SESSION_ALREADY_SIGNED", apperror.ErrSessionAlreadySigned.Message},
		{"Wrapped domain error", apperror.Wrap(errors.New("db"), apperror.ErrLayoutLocked, ""), http.StatusConflict, "LAYOUT_LOCKED", apperror.ErrLayoutLocked.Message},
		{"Unknown error is hidden", errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR", apperror.ErrInternal.Message},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)

			ResponseError(ctx, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var body struct {
				Success bool              `json:"success"`
				Message string            `json:"message"`
				Data    map[string]string `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.Equal(t, tt.wantCode, body.Data["code"])
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestResponseErrorDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	ResponseError(ctx, apperror.WithDetails(apperror.ErrRequiredFieldsIncomplete, "", []string{"f1", "f2"}))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"errors":["f1","f2"]`)
}

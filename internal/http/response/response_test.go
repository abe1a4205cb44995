package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var body JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, Success(rec, http.StatusCreated, map[string]string{"id": "PUR-1"}, nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, map[string]interface{}{"id": "PUR-1"}, body.Data)
}

func TestFromError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("purchase X: %w", models.ErrPurchaseNotFound), http.StatusNotFound, "PURCHASE_NOT_FOUND"},
		{models.ErrSoldOut, http.StatusConflict, "SOLD_OUT"},
		{models.ErrInvalidStateTransition, http.StatusConflict, "INVALID_STATE_TRANSITION"},
		{models.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{fmt.Errorf("%w: card refused", models.ErrPaymentDeclined), http.StatusPaymentRequired, "PAYMENT_DECLINED"},
		{models.ErrAgeRestricted, http.StatusUnprocessableEntity, "AGE_RESTRICTED"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromError(rec, tt.err, nil)

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestFromError_ValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, models.NewValidationError("gate_id: is required", map[string][]string{
		"gate_id": {"is required"},
	}), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "gate_id: is required", body.Error)
	assert.Equal(t, []string{"is required"}, body.Fields["gate_id"])
}

func TestFromError_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, errors.New("dial tcp 10.0.0.5:3306: connection refused"), nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode(t, rec).Error)
}

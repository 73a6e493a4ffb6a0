package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_AppError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, ErrMissingFields.WithDetail("name is required"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "MISSING_FIELDS", body["code"])
	assert.Equal(t, "name is required", body["detail"])
	// el predefinido no se muta
	assert.Empty(t, ErrMissingFields.Detail)
}

func TestWriteError_GenericIsInternal(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, stderrors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "disk on fire")
}

func TestFromError_Unwraps(t *testing.T) {
	cause := stderrors.New("redis down")
	wrapped := ErrServiceUnavailable.WithCause(cause)

	got := FromError(wrapped)
	assert.Equal(t, http.StatusServiceUnavailable, got.HTTPStatus)
	assert.ErrorIs(t, got, cause)
}

package apierrors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CoreCodesRegistered(t *testing.T) {
	mustExist := []string{
		CodeUnauthorized,
		CodeForbidden,
		CodeValidationFailed,
		CodeIncidentNotFound,
		CodeStoreError,
		CodeInternalError,
	}

	for _, code := range mustExist {
		if _, ok := Registry.Get(code); !ok {
			t.Errorf("code %q not registered", code)
		}
	}
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	r := &registry{codes: make(map[string]ErrorCode)}
	r.Register(ErrorCode{Code: "test:gone", Message: "Gone", HTTPStatus: http.StatusGone})
	r.Register(ErrorCode{Code: "test:gone", Message: "Moved", HTTPStatus: http.StatusMovedPermanently})

	assert.Equal(t, http.StatusMovedPermanently, r.HTTPStatus("test:gone"))
	assert.Equal(t, "Moved", r.Message("test:gone"))
}

func TestRegistry_HTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeIncidentNotFound, http.StatusNotFound},
		{CodeValidationFailed, http.StatusBadRequest},
		{CodeStoreError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, Registry.HTTPStatus(tt.code))
		})
	}
}

func TestRegistry_UnknownCode(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, Registry.HTTPStatus("unknown:code"))
	assert.Equal(t, "unknown:code", Registry.Message("unknown:code"))
}

func TestAbort_WritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Abort(c, CodeForbidden, "")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.True(t, c.IsAborted())
	assert.JSONEq(t, `{
		"mssg": "Not authorized to access this data",
		"details": "Not authorized to access this data",
		"version": "1.0"
	}`, w.Body.String())
}

func TestAbort_CustomDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Abort(c, CodeStoreError, "pq: relation \"incidents\" does not exist")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Database error", body.Mssg)
	assert.Equal(t, "pq: relation \"incidents\" does not exist", body.Details)
}

func TestAbortValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	AbortValidation(c, []FieldError{{
		Location: []string{"body", "user_id"},
		Message:  "Field required",
		Type:     "missing",
	}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{
		"message": "Validation Error",
		"details": [{"location": ["body", "user_id"], "message": "Field required", "type": "missing"}],
		"version": "1.0"
	}`, w.Body.String())
}

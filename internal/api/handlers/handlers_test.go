package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilber023/poust-microservicio/internal/core/errs"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		err      error
		name     string
		wantType string
		wantCode int
	}{
		{name: "validation", err: errs.Validation("bad input"), wantCode: http.StatusBadRequest, wantType: "ValidationFailure"},
		{name: "invariant", err: errs.Invariant("cannot like own"), wantCode: http.StatusBadRequest, wantType: "InvariantViolation"},
		{name: "forbidden", err: errs.Forbidden("not yours"), wantCode: http.StatusForbidden, wantType: "Forbidden"},
		{name: "not found", err: errs.NotFound("gone"), wantCode: http.StatusNotFound, wantType: "NotFound"},
		{name: "conflict", err: errs.Detail(errs.Conflict("taken"), "alice"), wantCode: http.StatusConflict, wantType: "Conflict"},
		{name: "unimplemented", err: errs.Unimplemented("media upload"), wantCode: http.StatusNotImplemented, wantType: "UnimplementedCapability"},
		{name: "persistence", err: errs.Persistence("save", errors.New("conn reset")), wantCode: http.StatusInternalServerError, wantType: "InternalServerError"},
		{name: "unknown", err: errors.New("boom"), wantCode: http.StatusInternalServerError, wantType: "InternalServerError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteServiceError(w, tt.err, "test")

			assert.Equal(t, tt.wantCode, w.Code)
			var body errorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.wantType, body.Error)
			if tt.wantCode == http.StatusInternalServerError {
				assert.NotContains(t, body.Message, "conn reset", "internal details stay in the log")
			}
		})
	}
}

var testSchema = MustCompileSchema(`{
	"type": "object",
	"properties": {"text": {"type": "string", "maxLength": 5}},
	"required": ["text"],
	"additionalProperties": false
}`)

func TestDecodeJSON(t *testing.T) {
	decode := func(body string) (map[string]string, error) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var dst map[string]string
		err := DecodeJSON(httptest.NewRecorder(), req, testSchema, &dst)
		return dst, err
	}

	got, err := decode(`{"text":"hi"}`)
	require.NoError(t, err)
	assert.Equal(t, "hi", got["text"])

	_, err = decode(`{"text":"too long"}`)
	assert.Error(t, err)
	_, err = decode(`{}`)
	assert.Error(t, err)
	_, err = decode(`{"text":"hi","extra":1}`)
	assert.Error(t, err)
	_, err = decode(`{"text":`)
	assert.Error(t, err)
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	big := bytes.Repeat([]byte("a"), MaxJSONBody+1)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(big))
	var dst map[string]any
	err := DecodeJSON(httptest.NewRecorder(), req, nil, &dst)
	assert.ErrorIs(t, err, ErrBodyTooLarge)

	w := httptest.NewRecorder()
	WriteDecodeError(w, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestParsePage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=2&limit=20", nil)
	page, err := ParsePage(req)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 20, page.Limit)

	req = httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	_, err = ParsePage(req)
	assert.Error(t, err)
}

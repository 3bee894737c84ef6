package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/wilber023/poust-microservicio/internal/core/paging"
)

// MaxJSONBody bounds JSON request bodies
const MaxJSONBody = 1 << 20

// ErrBodyTooLarge is returned by DecodeJSON when the body exceeds MaxJSONBody
var ErrBodyTooLarge = errors.New("request body too large")

// Schema is a compiled JSON Schema for a request body
type Schema struct {
	schema *gojsonschema.Schema
}

// MustCompileSchema compiles a schema literal. It panics on an invalid
// schema, so call it at package init.
func MustCompileSchema(src string) *Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("invalid request schema: %v", err))
	}
	return &Schema{schema: s}
}

// Validate checks a raw JSON document. The error lists every violation.
func (s *Schema) Validate(body []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return errors.New(strings.Join(msgs, "; "))
}

// DecodeJSON reads a bounded body, validates it against schema when one is
// given, and decodes it into dst
func DecodeJSON(w http.ResponseWriter, r *http.Request, schema *Schema, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxJSONBody))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return ErrBodyTooLarge
		}
		return fmt.Errorf("failed to read body: %w", err)
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if schema != nil {
		if err := schema.Validate(body); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// WriteDecodeError writes the response for a DecodeJSON failure
func WriteDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBodyTooLarge) {
		WriteError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge", "Request body too large (max 1MB)")
		return
	}
	WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
}

// ParsePage reads the page and limit query parameters
func ParsePage(r *http.Request) (paging.Request, error) {
	q := r.URL.Query()
	return paging.Parse(q.Get("page"), q.Get("limit"))
}

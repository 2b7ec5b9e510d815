// Package formutil reads request input for the JSON API: bodies, path ids
// and multipart uploads.
package formutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/dalemusser/stackit/internal/app/system/limits"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrBadJSON is returned for bodies that are not a single JSON value.
var ErrBadJSON = apperr.Invalid("Invalid request body")

// DecodeJSON reads a JSON body of at most limits.MaxJSONBody into v.
// An empty body leaves v untouched.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return apperr.Invalid("Request body too large")
		}
		return fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	if dec.More() {
		return ErrBadJSON
	}
	return nil
}

// ObjectIDParam parses the chi URL parameter name as an ObjectID. A
// malformed id is reported as not found for subject, so callers cannot
// tell a bad id from a missing record.
func ObjectIDParam(r *http.Request, name, subject string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(chi.URLParam(r, name)))
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(subject)
	}
	return id, nil
}

// FormFile parses a multipart request and returns the header of field.
func FormFile(r *http.Request, field string) (*multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(limits.MaxMultipartMemory); err != nil {
		return nil, apperr.Invalid("No file uploaded")
	}
	f, fh, err := r.FormFile(field)
	if err != nil {
		return nil, apperr.Invalid("No file uploaded")
	}
	f.Close()
	return fh, nil
}

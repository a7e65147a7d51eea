// Package formutil reads request inputs that arrive outside a JSON body:
// chi path ids and multipart form fields.
package formutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrBadID is returned when a path id is not a valid ObjectID.
	ErrBadID = errors.New("invalid id")
	// ErrBadSocials is returned when the socials field is not a JSON object of strings.
	ErrBadSocials = errors.New("socials must be a JSON object of strings")
)

// multipartMemory is the part of a multipart body kept in memory; larger
// files spill to temporary files.
const multipartMemory = 8 << 20

// IDParam parses the chi URL parameter name as an ObjectID.
func IDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(chi.URLParam(r, name)))
	if err != nil {
		return primitive.NilObjectID, ErrBadID
	}
	return oid, nil
}

// ParseMultipart parses a multipart body, capping it at maxBytes plus a
// small allowance for the text fields.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	}
	return r.ParseMultipartForm(multipartMemory)
}

// Value returns the trimmed form value for key.
func Value(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

// HasFile reports whether the multipart form carries a file under field.
func HasFile(r *http.Request, field string) bool {
	if r.MultipartForm == nil {
		return false
	}
	return len(r.MultipartForm.File[field]) > 0
}

// ParseSocials decodes the socials side field. An empty value yields nil.
// Keys and values are trimmed and empty entries dropped.
func ParseSocials(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var in map[string]string
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, ErrBadSocials
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out, nil
}

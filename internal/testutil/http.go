package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/blend/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminUser returns a token user with the admin role.
func AdminUser() *auth.TokenUser {
	return &auth.TokenUser{ID: primitive.NewObjectID().Hex(), Role: "admin"}
}

// PlainUser returns a token user with the user role.
func PlainUser() *auth.TokenUser {
	return &auth.TokenUser{ID: primitive.NewObjectID().Hex(), Role: "user"}
}

// JSONRequest builds a request with a JSON body. A string body is sent as is.
func JSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		r = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, target, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// AsUser attaches a token user to the request.
func AsUser(r *http.Request, u *auth.TokenUser) *http.Request {
	return auth.WithTestUser(r, u)
}

// FormFile is one file part in a multipart request.
type FormFile struct {
	Field    string
	Filename string
	Content  []byte
}

// MultipartRequest builds a multipart/form-data request from fields and files.
func MultipartRequest(t *testing.T, method, target string, fields map[string]string, files ...FormFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			t.Fatalf("create form file %s: %v", f.Field, err)
		}
		if _, err := fw.Write(f.Content); err != nil {
			t.Fatalf("write form file %s: %v", f.Field, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// Envelope mirrors the JSON envelope written by system/respond.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// DecodeEnvelope decodes the recorder body. When data is non-nil the
// envelope's data member is decoded into it.
func DecodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) Envelope {
	t.Helper()

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode envelope data: %v (data %s)", err, env.Data)
		}
	}
	return env
}

// AssertStatus fails the test when the recorder's status differs.
func AssertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status code: got %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

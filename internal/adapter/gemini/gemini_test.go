package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDescribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gemini-test:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "k" {
			t.Errorf("missing api key header")
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		parts := req.Contents[0].Parts
		if len(parts) != 2 || parts[0].Text != "what is this" {
			t.Fatalf("unexpected parts %+v", parts)
		}
		img, _ := base64.StdEncoding.DecodeString(parts[1].InlineData.Data)
		if string(img) != "jpegbytes" || parts[1].InlineData.MimeType != "image/jpeg" {
			t.Errorf("unexpected inline data %+v", parts[1].InlineData)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"item\":"},{"text":"\"Poke\"}"}]}}]}`))
	}))
	defer srv.Close()

	c := New("k", "gemini-test", 5*time.Second).WithBaseURL(srv.URL)
	text, err := c.Describe(context.Background(), "what is this", []byte("jpegbytes"), "")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if text != `{"item":"Poke"}` {
		t.Errorf("unexpected text %q", text)
	}
}

func TestDescribe_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusServiceUnavailable, "overloaded", "status 503"},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, "no candidates"},
		{"bad json", http.StatusOK, `not json`, "decode"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := New("k", "", time.Second).WithBaseURL(srv.URL)
			_, err := c.Describe(context.Background(), "p", []byte("x"), "image/png")
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestDescribe_NoKey(t *testing.T) {
	if _, err := New("", "", time.Second).Describe(context.Background(), "p", nil, ""); err == nil {
		t.Fatal("expected error without api key")
	}
}

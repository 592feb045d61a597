package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDescribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Content []struct {
					Type     string `json:"type"`
					Text     string `json:"text"`
					ImageURL struct {
						URL string `json:"url"`
					} `json:"image_url"`
				} `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Model != DefaultModel {
			t.Errorf("expected default model, got %s", body.Model)
		}
		parts := body.Messages[0].Content
		if len(parts) != 2 || parts[0].Text != "estimate" {
			t.Fatalf("unexpected content %+v", parts)
		}
		if !strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,") {
			t.Errorf("unexpected image url %s", parts[1].ImageURL.URL)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"item\":\"Salad\"}"}}]}`))
	}))
	defer srv.Close()

	c := New("sk-test", "", 5*time.Second).WithBaseURL(srv.URL + "/")
	text, err := c.Describe(context.Background(), "estimate", []byte("png"), "image/png")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if text != `{"item":"Salad"}` {
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
		{"rate limited", http.StatusTooManyRequests, "slow down", "status 429"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New("sk", "", time.Second).WithBaseURL(srv.URL).Describe(context.Background(), "p", []byte("x"), "")
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestDescribe_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := New("sk", "", time.Minute).WithBaseURL(srv.URL).Describe(ctx, "p", []byte("x"), ""); err == nil {
		t.Fatal("expected timeout error")
	}
}

package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	logAdapter "github.com/bft-labs/walletscope/internal/adapters/log"
	"github.com/bft-labs/walletscope/internal/domain"
)

func TestPoster_Post(t *testing.T) {
	var gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/log-sdk" {
			t.Errorf("Path = %s, want /log-sdk", r.URL.Path)
		}
		if got := r.Header.Get(HeaderAPIKey); got != "key-1" {
			t.Errorf("%s = %q, want key-1", HeaderAPIKey, got)
		}
		if got := r.Header.Get(HeaderSDKVersion); got != "1.2.3" {
			t.Errorf("%s = %q, want 1.2.3", HeaderSDKVersion, got)
		}
		if got := r.Header.Get(HeaderLibraryUsage); got != "go-module" {
			t.Errorf("%s = %q, want go-module", HeaderLibraryUsage, got)
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`"ok"`))
	}))
	defer ts.Close()

	p := NewPoster(ts.Client(), logAdapter.NewNoopLogger(), "1.2.3", "go-module")
	out, err := p.Post(context.Background(), ts.URL, "key-1", "/log-sdk", map[string]any{"logLevel": "error"})
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if out != "ok" {
		t.Errorf("Post() = %q, want ok", out)
	}
	if gotBody != `{"logLevel":"error"}` {
		t.Errorf("body = %s, want {\"logLevel\":\"error\"}", gotBody)
	}
}

func TestPoster_NilPayloadSendsEmptyBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if len(b) != 0 {
			t.Errorf("body = %q, want empty", string(b))
		}
		_, _ = w.Write([]byte(`"identity-1"`))
	}))
	defer ts.Close()

	p := NewPoster(ts.Client(), logAdapter.NewNoopLogger(), "1.0.0", "")
	out, err := p.Post(context.Background(), ts.URL, "key", "/identify", nil)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if out != "identity-1" {
		t.Errorf("Post() = %q, want identity-1", out)
	}
}

func TestPoster_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"non-success status", http.StatusInternalServerError, `"nope"`, domain.ErrRequest},
		{"unauthorized", http.StatusUnauthorized, `{}`, domain.ErrRequest},
		{"object body", http.StatusOK, `{"id":"x"}`, domain.ErrParse},
		{"number body", http.StatusOK, `42`, domain.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			p := NewPoster(ts.Client(), logAdapter.NewNoopLogger(), "1.0.0", "")
			_, err := p.Post(context.Background(), ts.URL, "key", "/identify", nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Post() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPoster_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	p := NewPoster(http.DefaultClient, logAdapter.NewNoopLogger(), "1.0.0", "")
	_, err := p.Post(context.Background(), url, "key", "/identify", nil)
	if !errors.Is(err, domain.ErrNetwork) {
		t.Errorf("Post() error = %v, want ErrNetwork", err)
	}
}

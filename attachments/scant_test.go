package attachments

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/povertyhq/poverty_backend/utils"
)

func TestScanReturnsPDFBody(t *testing.T) {
	body := []byte("%PDF-1.4 scanned page")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/scans" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write(body)
	}))
	defer server.Close()

	media, contentType, err := NewScantClient(server.URL).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(media, body) {
		t.Fatalf("unexpected media: %q", media)
	}
	if contentType != "application/pdf" {
		t.Fatalf("unexpected content type: %s", contentType)
	}
}

func TestScanNon200IsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, _, err := NewScantClient(server.URL).Scan(context.Background())
	if !errors.Is(err, utils.ErrorUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestScanConnectionFailureIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, _, err := NewScantClient(server.URL).Scan(context.Background())
	if !errors.Is(err, utils.ErrorUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

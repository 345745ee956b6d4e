package nfce

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetcherSendsBrowserHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("User-Agent"), "Mozilla") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		if !strings.HasPrefix(r.Header.Get("Accept-Language"), "pt-BR") {
			t.Errorf("Accept-Language = %q", r.Header.Get("Accept-Language"))
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	f := NewFetcher(5 * time.Second)
	html, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if html != "<html>ok</html>" {
		t.Errorf("html = %q", html)
	}
}

func TestFetcherNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	f := NewFetcher(5 * time.Second)
	if _, err := f.Fetch(context.Background(), server.URL); err == nil {
		t.Error("expected error on 503")
	}
}

func TestFetcherContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(2 * time.Second)
		_, _ = w.Write([]byte("late"))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := NewFetcher(5 * time.Second)
	if _, err := f.Fetch(ctx, server.URL); err == nil {
		t.Error("expected context deadline error")
	}
}

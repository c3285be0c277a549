package events

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWebhookSignature(t *testing.T) {
	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-BO-Signature")
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	s := NewWebhookSink(WebhookConfig{Enabled: true, Endpoint: srv.URL, Secret: "s3cret"})
	e := Event{Name: PageCreated, Time: time.Unix(0, 0).UTC(), ID: "ev1"}
	if err := s.Emit(context.Background(), e); err != nil {
		t.Fatalf("emit: %v", err)
	}

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(gotBody)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if gotSig != want {
		t.Errorf("signature = %q, want %q", gotSig, want)
	}
}

func TestWebhookErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewWebhookSink(WebhookConfig{Enabled: true, Endpoint: srv.URL})
	if err := s.Emit(context.Background(), Event{Name: PageUpdated}); err == nil {
		t.Error("5xx must surface as an error")
	}
}

func TestWebhookDisabled(t *testing.T) {
	if s := NewWebhookSink(WebhookConfig{Enabled: false, Endpoint: "http://x"}); s != nil {
		t.Error("disabled config must yield a nil sink")
	}
	var s *WebhookSink
	if err := s.Emit(context.Background(), Event{}); err != nil {
		t.Errorf("nil sink emit: %v", err)
	}
}

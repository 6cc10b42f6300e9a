package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTelegramNotify(t *testing.T) {
	var gotPath string
	var gotReq sendMessageRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegram(srv.URL, "token123", "42")
	if err := tg.Notify(context.Background(), "Цель достигнута"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if gotPath != "/bottoken123/sendMessage" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotReq.ChatID != "42" || gotReq.Text != "Цель достигнута" {
		t.Fatalf("request = %+v", gotReq)
	}
}

func TestTelegramNotifyErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusForbidden)
	}))
	defer srv.Close()

	tg := NewTelegram(srv.URL, "token", "42")
	if err := tg.Notify(context.Background(), "hi"); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}

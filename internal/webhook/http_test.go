package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestHTTPService_NotifyFeedback(t *testing.T) {
	var got EventPayload
	var gotEvent, gotConvHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEvent = r.Header.Get("X-Jan-Event")
		gotConvHeader = r.Header.Get("X-Jan-Conversation-ID")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewHTTPService(server.URL, zerolog.Nop())
	err := svc.NotifyFeedback(context.Background(), "conv_1", "msg_1", -1, "wrong dates")
	if err != nil {
		t.Fatalf("NotifyFeedback returned error: %v", err)
	}

	if gotEvent != EventFeedbackRecorded {
		t.Errorf("expected event header %q, got %q", EventFeedbackRecorded, gotEvent)
	}
	if gotConvHeader != "conv_1" {
		t.Errorf("expected conversation header conv_1, got %q", gotConvHeader)
	}
	if got.Event != EventFeedbackRecorded || got.ConversationID != "conv_1" || got.MessageID != "msg_1" {
		t.Errorf("unexpected payload: %+v", got)
	}
	if got.Vote == nil || *got.Vote != -1 {
		t.Errorf("expected vote -1, got %v", got.Vote)
	}
	if got.Comment != "wrong dates" {
		t.Errorf("expected comment carried through, got %q", got.Comment)
	}
	if got.OccurredAt == "" {
		t.Error("expected occurred_at timestamp")
	}
}

func TestHTTPService_NotifyAbandoned(t *testing.T) {
	var got EventPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	svc := NewHTTPService(server.URL, zerolog.Nop())
	err := svc.NotifyAbandoned(context.Background(), "conv_1", "msg_1", "mirror_feedback", errors.New("schema drift"))
	if err != nil {
		t.Fatalf("NotifyAbandoned returned error: %v", err)
	}

	if got.Event != EventMirrorAbandoned || got.Kind != "mirror_feedback" {
		t.Errorf("unexpected payload: %+v", got)
	}
	if got.Error == nil || got.Error.Message != "schema drift" {
		t.Errorf("expected error details, got %+v", got.Error)
	}
	if got.Vote != nil {
		t.Errorf("expected no vote on abandonment event, got %v", got.Vote)
	}
}

func TestHTTPService_EmptyURLSkipsDelivery(t *testing.T) {
	svc := NewHTTPService("", zerolog.Nop())
	if err := svc.NotifyFeedback(context.Background(), "conv_1", "msg_1", 1, ""); err != nil {
		t.Errorf("expected no-op without url, got %v", err)
	}
}

func TestHTTPService_RetriesUntilAccepted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewHTTPService(server.URL, zerolog.Nop())
	svc.retryDelay = 10 * time.Millisecond

	if err := svc.NotifyFeedback(context.Background(), "conv_1", "msg_1", 1, ""); err != nil {
		t.Fatalf("expected delivery to succeed on retry, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestHTTPService_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewHTTPService(server.URL, zerolog.Nop())
	svc.retryDelay = 10 * time.Millisecond

	err := svc.NotifyAbandoned(context.Background(), "conv_1", "", "delete_conversation", errors.New("boom"))
	if err == nil {
		t.Fatal("expected delivery failure")
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("expected exhausted-attempts error, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

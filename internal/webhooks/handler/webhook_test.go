package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"stayhub/internal/webhooks"
	"stayhub/pkg/logger"
	"stayhub/pkg/webhook"
)

const testSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

type mockSync struct {
	handled []*webhooks.ClerkEvent
	err     error
}

func (m *mockSync) HandleEvent(_ context.Context, event *webhooks.ClerkEvent) error {
	m.handled = append(m.handled, event)
	return m.err
}

func signPayload(t *testing.T, msgID, timestamp string, body []byte) string {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(testSecret[len("whsec_"):])
	if err != nil {
		t.Fatalf("decode secret: %v", err)
	}
	mac := hmac.New(sha256.New, raw)
	fmt.Fprintf(mac, "%s.%s.", msgID, timestamp)
	mac.Write(body)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func newTestHandler(t *testing.T, sync *mockSync) *WebhookHandler {
	t.Helper()
	verifier, err := webhook.NewVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	return NewWebhookHandler(sync, verifier, logger.New(logger.Config{Level: logger.ERROR}))
}

func postWebhook(t *testing.T, h *WebhookHandler, body []byte, sign bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/clerk", bytes.NewReader(body))
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set(webhook.HeaderID, "msg_1")
	req.Header.Set(webhook.HeaderTimestamp, ts)
	if sign {
		req.Header.Set(webhook.HeaderSignature, signPayload(t, "msg_1", ts, body))
	} else {
		req.Header.Set(webhook.HeaderSignature, "v1,Zm9yZ2VkZm9yZ2VkZm9yZ2Vk")
	}

	rec := httptest.NewRecorder()
	h.HandleClerk(rec, req, nil)
	return rec
}

func TestHandleClerkValidSignature(t *testing.T) {
	sync := &mockSync{}
	h := newTestHandler(t, sync)

	body := []byte(`{"type":"user.deleted","data":{"id":"user_1"}}`)
	rec := postWebhook(t, h, body, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if len(sync.handled) != 1 || sync.handled[0].Type != "user.deleted" {
		t.Errorf("expected one user.deleted event, got %v", sync.handled)
	}
}

func TestHandleClerkBadSignature(t *testing.T) {
	sync := &mockSync{}
	h := newTestHandler(t, sync)

	body := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	rec := postWebhook(t, h, body, false)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(sync.handled) != 0 {
		t.Error("an unverified request must never reach the sync service")
	}

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Error("success must be false")
	}
	if resp.Error != "SIGNATURE_INVALID" {
		t.Errorf("error code = %q, want SIGNATURE_INVALID", resp.Error)
	}
}

func TestHandleClerkMissingHeaders(t *testing.T) {
	sync := &mockSync{}
	h := newTestHandler(t, sync)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/clerk", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	h.HandleClerk(rec, req, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(sync.handled) != 0 {
		t.Error("a request without signature headers must be rejected")
	}
}

func TestHandleClerkMalformedPayload(t *testing.T) {
	sync := &mockSync{}
	h := newTestHandler(t, sync)

	body := []byte(`{not json`)
	rec := postWebhook(t, h, body, true)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(sync.handled) != 0 {
		t.Error("a malformed payload must not reach the sync service")
	}
}

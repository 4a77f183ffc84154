package alert

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wirefeedr/wirefeedr/pkg/trends"
)

func TestWebhookSend(t *testing.T) {
	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Signature-256")
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	n := &Notification{
		Title: "Credibility anomalies",
		Body:  "1 article scored far below its publisher average",
		Anomalies: []trends.Anomaly{
			{Domain: "apnews.com", Title: "Odd Story", Link: "https://apnews.com/x", Score: 40, Average: 85},
		},
	}

	wh := NewWebhook(srv.URL, "sekrit")
	if err := wh.Send(context.Background(), n); err != nil {
		t.Fatalf("send: %v", err)
	}

	mac := hmac.New(sha256.New, []byte("sekrit"))
	mac.Write(gotBody)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if gotSig != want {
		t.Errorf("signature = %q, want %q", gotSig, want)
	}

	var decoded Notification
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(decoded.Anomalies) != 1 || decoded.Anomalies[0].Domain != "apnews.com" {
		t.Errorf("payload anomalies = %+v", decoded.Anomalies)
	}
}

func TestWebhookStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := NewWebhook(srv.URL, "").Send(context.Background(), &Notification{}); err == nil {
		t.Error("expected error for non-2xx status")
	}
}

type fakeNotifier struct {
	name string
	sent int
	err  error
}

func (f *fakeNotifier) Name() string { return f.name }
func (f *fakeNotifier) Send(ctx context.Context, n *Notification) error {
	f.sent++
	return f.err
}

func TestManagerBroadcast(t *testing.T) {
	ok := &fakeNotifier{name: "ok"}
	bad := &fakeNotifier{name: "bad", err: io.ErrUnexpectedEOF}
	m := NewManager([]Notifier{ok, bad})

	if !m.HasNotifiers() {
		t.Fatal("HasNotifiers = false")
	}
	err := m.Broadcast(context.Background(), &Notification{Title: "x"})
	if err == nil {
		t.Error("expected joined error from failing notifier")
	}
	if ok.sent != 1 || bad.sent != 1 {
		t.Errorf("sends = %d/%d, want both attempted", ok.sent, bad.sent)
	}

	if NewManager(nil).HasNotifiers() {
		t.Error("empty manager should report no notifiers")
	}
}

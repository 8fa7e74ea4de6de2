package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"licitamonitor/app/database"
)

type fakeSubscriberRepo struct {
	subscribers []database.Subscriber
}

func (f *fakeSubscriberRepo) GetByChatID(chatID string) (*database.Subscriber, error) {
	for i := range f.subscribers {
		if f.subscribers[i].ChatID == chatID {
			return &f.subscribers[i], nil
		}
	}
	return nil, nil
}

func (f *fakeSubscriberRepo) ListEnabled() ([]database.Subscriber, error) {
	var enabled []database.Subscriber
	for _, s := range f.subscribers {
		if s.NotificationsEnabled {
			enabled = append(enabled, s)
		}
	}
	return enabled, nil
}

func (f *fakeSubscriberRepo) GetCount() (int, error) { return len(f.subscribers), nil }

func (f *fakeSubscriberRepo) Insert(chatID string) error {
	f.subscribers = append(f.subscribers, database.Subscriber{ChatID: chatID, NotificationsEnabled: true})
	return nil
}

func (f *fakeSubscriberRepo) SetEnabled(chatID string, enabled bool) error {
	for i := range f.subscribers {
		if f.subscribers[i].ChatID == chatID {
			f.subscribers[i].NotificationsEnabled = enabled
		}
	}
	return nil
}

func TestSend_PostsSendMessage(t *testing.T) {
	var gotPath string
	var gotBody sendMessageRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	notifier := NewNotifier(server.URL, "test-token", &fakeSubscriberRepo{})

	if err := notifier.Send("123456789", "hello"); err != nil {
		t.Fatal(err)
	}

	if gotPath != "/bottest-token/sendMessage" {
		t.Errorf("Expected sendMessage path with token, got '%s'", gotPath)
	}
	if gotBody.ChatID != "123456789" {
		t.Errorf("Expected chat_id '123456789', got '%s'", gotBody.ChatID)
	}
	if gotBody.Text != "hello" {
		t.Errorf("Expected text 'hello', got '%s'", gotBody.Text)
	}
	if gotBody.ParseMode != "Markdown" {
		t.Errorf("Expected parse_mode 'Markdown', got '%s'", gotBody.ParseMode)
	}
}

func TestSend_APIErrorIsReported(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusForbidden)
	}))
	defer server.Close()

	notifier := NewNotifier(server.URL, "test-token", &fakeSubscriberRepo{})

	if err := notifier.Send("123456789", "hello"); err == nil {
		t.Error("Expected error for non-success API response")
	}
}

func TestSend_NoTokenIsNoOp(t *testing.T) {
	notifier := NewNotifier("http://127.0.0.1:0", "", &fakeSubscriberRepo{})

	if err := notifier.Send("123456789", "hello"); err != nil {
		t.Errorf("Expected no-op without token, got error: %v", err)
	}
}

func TestBroadcast_ContinuesPastFailures(t *testing.T) {
	var delivered []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body sendMessageRequest
		json.NewDecoder(r.Body).Decode(&body)
		// Second subscriber always fails
		if body.ChatID == "222" {
			http.Error(w, `{"ok":false}`, http.StatusBadRequest)
			return
		}
		delivered = append(delivered, body.ChatID)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	repo := &fakeSubscriberRepo{subscribers: []database.Subscriber{
		{ChatID: "111", NotificationsEnabled: true},
		{ChatID: "222", NotificationsEnabled: true},
		{ChatID: "333", NotificationsEnabled: true},
		{ChatID: "444", NotificationsEnabled: false},
	}}

	notifier := NewNotifier(server.URL, "test-token", repo)
	notifier.Broadcast("status update")

	if len(delivered) != 2 {
		t.Fatalf("Expected delivery to 2 subscribers, got %d (%v)", len(delivered), delivered)
	}
	for _, chatID := range delivered {
		if chatID == "222" || chatID == "444" {
			t.Errorf("Unexpected delivery to %s", chatID)
		}
	}
}

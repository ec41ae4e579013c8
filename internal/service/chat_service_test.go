package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mentorspractice/internal/assessment"
	"mentorspractice/internal/models"
)

func newChatBackend(t *testing.T, reply string, status int) (*httptest.Server, *map[string]string) {
	t.Helper()

	last := map[string]string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&last)
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"response": reply})
	}))
	return server, &last
}

func TestChatStartsWithGreeting(t *testing.T) {
	svc := NewChatService(assessment.New("http://unused"), time.Hour)

	messages, started, category := svc.Transcript("visitor-1")
	if started {
		t.Error("conversation should not be started before category selection")
	}
	if category != "" {
		t.Errorf("category = %q, want empty", category)
	}
	if len(messages) != 1 || messages[0].Sender != models.ChatSenderAssistant {
		t.Fatalf("messages = %+v, want single assistant greeting", messages)
	}
	if messages[0].Text != chatGreeting {
		t.Errorf("greeting = %q", messages[0].Text)
	}
}

func TestChatRequiresCategoryBeforeMessages(t *testing.T) {
	svc := NewChatService(assessment.New("http://unused"), time.Hour)

	_, err := svc.SendMessage(context.Background(), "visitor-1", "hello")
	if !errors.Is(err, ErrCategoryRequired) {
		t.Errorf("error = %v, want ErrCategoryRequired", err)
	}
}

func TestChatSelectCategory(t *testing.T) {
	svc := NewChatService(assessment.New("http://unused"), time.Hour)

	if err := svc.SelectCategory("visitor-1", "Bogus Category"); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("error = %v, want ErrUnknownCategory", err)
	}

	if err := svc.SelectCategory("visitor-1", "Course & Mock Info"); err != nil {
		t.Fatalf("SelectCategory() error: %v", err)
	}

	messages, started, category := svc.Transcript("visitor-1")
	if !started {
		t.Error("conversation should be started after category selection")
	}
	if category != "Course & Mock Info" {
		t.Errorf("category = %q", category)
	}
	if last := messages[len(messages)-1]; last.Text != chatCategoryAck {
		t.Errorf("last message = %q, want acknowledgment", last.Text)
	}
}

func TestChatRelaysMessageWithCategory(t *testing.T) {
	server, last := newChatBackend(t, "Our next mock test is on Friday.", 0)
	defer server.Close()

	svc := NewChatService(assessment.New(server.URL), time.Hour)
	if err := svc.SelectCategory("visitor-1", "Course & Mock Info"); err != nil {
		t.Fatalf("SelectCategory() error: %v", err)
	}

	messages, err := svc.SendMessage(context.Background(), "visitor-1", "When is the next mock test?")
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}

	if (*last)["message"] != "When is the next mock test?" {
		t.Errorf("relayed message = %q", (*last)["message"])
	}
	if (*last)["category"] != "Course & Mock Info" {
		t.Errorf("relayed category = %q", (*last)["category"])
	}

	reply := messages[len(messages)-1]
	if reply.Sender != models.ChatSenderAssistant || reply.Text != "Our next mock test is on Friday." {
		t.Errorf("reply = %+v", reply)
	}
	user := messages[len(messages)-2]
	if user.Sender != models.ChatSenderUser {
		t.Errorf("user message = %+v", user)
	}
}

func TestChatBackendFailureAppendsFallback(t *testing.T) {
	server, _ := newChatBackend(t, "", http.StatusInternalServerError)
	defer server.Close()

	svc := NewChatService(assessment.New(server.URL), time.Hour)
	if err := svc.SelectCategory("visitor-1", "Study Abroad Info"); err != nil {
		t.Fatalf("SelectCategory() error: %v", err)
	}

	messages, err := svc.SendMessage(context.Background(), "visitor-1", "Tell me about UK visas")
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if last := messages[len(messages)-1]; last.Text != chatFallback {
		t.Errorf("last message = %q, want fallback apology", last.Text)
	}
}

func TestChatBackResets(t *testing.T) {
	server, _ := newChatBackend(t, "ok", 0)
	defer server.Close()

	svc := NewChatService(assessment.New(server.URL), time.Hour)
	if err := svc.SelectCategory("visitor-1", "Course & Mock Info"); err != nil {
		t.Fatalf("SelectCategory() error: %v", err)
	}
	if _, err := svc.SendMessage(context.Background(), "visitor-1", "hi"); err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}

	svc.Back("visitor-1")

	messages, started, category := svc.Transcript("visitor-1")
	if started || category != "" {
		t.Errorf("after Back: started=%v category=%q", started, category)
	}
	if len(messages) != 1 || messages[0].Text != chatGreeting {
		t.Errorf("after Back: messages = %+v", messages)
	}
}

func TestChatSessionsIsolatedPerVisitor(t *testing.T) {
	svc := NewChatService(assessment.New("http://unused"), time.Hour)

	if err := svc.SelectCategory("visitor-1", "Course & Mock Info"); err != nil {
		t.Fatalf("SelectCategory() error: %v", err)
	}

	_, started, _ := svc.Transcript("visitor-2")
	if started {
		t.Error("visitor-2 conversation should not be started")
	}
}

func TestChatCleanupStale(t *testing.T) {
	svc := NewChatService(assessment.New("http://unused"), time.Millisecond)

	svc.Transcript("visitor-1")
	time.Sleep(5 * time.Millisecond)

	if removed := svc.CleanupStale(); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}

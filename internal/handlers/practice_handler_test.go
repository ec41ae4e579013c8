package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mentorspractice/internal/assessment"
	"mentorspractice/internal/limit"
	"mentorspractice/internal/models"
	"mentorspractice/internal/security"
	"mentorspractice/internal/service"
	"mentorspractice/internal/storage"
)

var testTemplates = template.Must(template.New("t").Parse(`
{{define "writing.tmpl"}}writing page: {{.Title}} remaining={{.Remaining}}{{if .PromptError}} prompt-error{{end}}{{if not .HasIdentity}} modal{{end}}{{end}}
{{define "speaking.tmpl"}}speaking page: {{.Title}}{{end}}
{{define "home.tmpl"}}home: {{.Title}}{{end}}
{{define "feedback.tmpl"}}score={{.OverallScore}} band={{.OverallBand}}{{end}}
{{define "chat.tmpl"}}chat started={{.Started}}{{end}}
`))

func newTestHandler(t *testing.T, backendURL string) *PracticeHandler {
	t.Helper()

	store := storage.NewMemStore()
	limiter := limit.NewDailyLimiter(store, 2)
	identity := service.NewIdentityService(store, nil)
	practice := service.NewPracticeService(assessment.New(backendURL), limiter, identity)
	csrf := security.NewCSRFGenerator("test-secret")

	if fieldErrs, err := identity.Save(context.Background(), "visitor-1", models.Identity{
		Name:  "Hira",
		Phone: "01712345678",
	}); err != nil || len(fieldErrs) > 0 {
		t.Fatalf("failed to save test identity: %v %v", fieldErrs, err)
	}

	return NewPracticeHandler(practice, identity, csrf, testTemplates)
}

func withVisitor(r *http.Request, visitorID string) *http.Request {
	ctx := context.WithValue(r.Context(), VisitorContextKey, visitorID)
	return r.WithContext(ctx)
}

func assessmentBackend(t *testing.T, submitStatus int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/writing/question", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"question": map[string]string{"id": "q1", "title": "Describe your hometown"},
		})
	})
	mux.HandleFunc("/api/writing/progress", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"averageScore": 6.0, "level": "Intermediate", "totalSubmissions": 4,
		})
	})
	mux.HandleFunc("/api/writing", func(w http.ResponseWriter, r *http.Request) {
		if submitStatus != 0 {
			w.WriteHeader(submitStatus)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"submission": map[string]interface{}{
				"score": map[string]float64{"overallBandScore": 6.5},
			},
		})
	})
	return httptest.NewServer(mux)
}

func submitBody(wordCount int) *bytes.Buffer {
	answer := strings.TrimSpace(strings.Repeat("word ", wordCount))
	body, _ := json.Marshal(map[string]string{"answer": answer})
	return bytes.NewBuffer(body)
}

func TestSubmitWritingRendersFeedback(t *testing.T) {
	server := assessmentBackend(t, 0)
	defer server.Close()
	h := newTestHandler(t, server.URL)

	// Page load fetches the prompt into the flow.
	page := httptest.NewRecorder()
	h.ShowWriting(page, withVisitor(httptest.NewRequest("GET", "/writing", nil), "visitor-1"))
	if page.Code != http.StatusOK {
		t.Fatalf("page status = %d", page.Code)
	}

	recorder := httptest.NewRecorder()
	req := withVisitor(httptest.NewRequest("POST", "/writing/submit", submitBody(120)), "visitor-1")
	h.SubmitWriting(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("submit status = %d, body %s", recorder.Code, recorder.Body.String())
	}
	body := recorder.Body.String()
	if !strings.Contains(body, "score=6.5") || !strings.Contains(body, "band=moderate") {
		t.Errorf("feedback body = %q", body)
	}
}

func TestSubmitWritingShortAnswer(t *testing.T) {
	server := assessmentBackend(t, 0)
	defer server.Close()
	h := newTestHandler(t, server.URL)

	page := httptest.NewRecorder()
	h.ShowWriting(page, withVisitor(httptest.NewRequest("GET", "/writing", nil), "visitor-1"))

	recorder := httptest.NewRecorder()
	req := withVisitor(httptest.NewRequest("POST", "/writing/submit", submitBody(99)), "visitor-1")
	h.SubmitWriting(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
	var resp map[string]string
	json.Unmarshal(recorder.Body.Bytes(), &resp)
	if !strings.Contains(resp["error"], "100 words") {
		t.Errorf("error = %q", resp["error"])
	}
}

func TestSubmitWritingBackend429(t *testing.T) {
	server := assessmentBackend(t, http.StatusTooManyRequests)
	defer server.Close()
	h := newTestHandler(t, server.URL)

	page := httptest.NewRecorder()
	h.ShowWriting(page, withVisitor(httptest.NewRequest("GET", "/writing", nil), "visitor-1"))

	recorder := httptest.NewRecorder()
	req := withVisitor(httptest.NewRequest("POST", "/writing/submit", submitBody(120)), "visitor-1")
	h.SubmitWriting(recorder, req)

	if recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", recorder.Code)
	}
	var resp map[string]string
	json.Unmarshal(recorder.Body.Bytes(), &resp)
	if resp["error"] != MsgDailyLimitReached {
		t.Errorf("error = %q", resp["error"])
	}
}

func TestShowWritingWithoutIdentityShowsModal(t *testing.T) {
	server := assessmentBackend(t, 0)
	defer server.Close()
	h := newTestHandler(t, server.URL)

	recorder := httptest.NewRecorder()
	h.ShowWriting(recorder, withVisitor(httptest.NewRequest("GET", "/writing", nil), "stranger"))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "modal") {
		t.Errorf("page without identity should render the modal, got %q", recorder.Body.String())
	}
}

func TestSaveIdentityRejectsBadCSRF(t *testing.T) {
	server := assessmentBackend(t, 0)
	defer server.Close()
	h := newTestHandler(t, server.URL)

	form := strings.NewReader("name=Hira&phone=01712345678&csrf_token=wrong&from=writing")
	req := httptest.NewRequest("POST", "/identity", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	recorder := httptest.NewRecorder()
	h.SaveIdentity(recorder, withVisitor(req, "visitor-1"))

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", recorder.Code)
	}
}

func TestSaveIdentityRedirectsOnSuccess(t *testing.T) {
	server := assessmentBackend(t, 0)
	defer server.Close()
	h := newTestHandler(t, server.URL)

	csrf := security.NewCSRFGenerator("test-secret")
	token, err := csrf.GenerateToken("visitor-2")
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}

	form := strings.NewReader("name=Hira&phone=01712345678&csrf_token=" + token + "&from=writing")
	req := httptest.NewRequest("POST", "/identity", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	recorder := httptest.NewRecorder()
	h.SaveIdentity(recorder, withVisitor(req, "visitor-2"))

	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303, body %s", recorder.Code, recorder.Body.String())
	}
	if loc := recorder.Header().Get("Location"); loc != "/writing" {
		t.Errorf("redirect location = %q", loc)
	}
}

func TestWithVisitorIssuesCookie(t *testing.T) {
	tokens := security.NewVisitorTokens("test-secret", time.Hour)
	m := NewMiddleware(tokens, security.NewRateLimiter(10, time.Minute), time.Hour)

	var captured string
	handler := m.WithVisitor(func(w http.ResponseWriter, r *http.Request) {
		captured = GetVisitorFromContext(r.Context())
	})

	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest("GET", "/", nil))

	if captured == "" {
		t.Fatal("expected a visitor ID in context")
	}

	cookies := recorder.Result().Cookies()
	var token string
	for _, c := range cookies {
		if c.Name == security.VisitorCookieName {
			token = c.Value
		}
	}
	if token == "" {
		t.Fatal("expected a visitor token cookie")
	}

	// The same token round-trips to the same visitor ID.
	id, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if id != captured {
		t.Errorf("cookie visitor = %q, context visitor = %q", id, captured)
	}
}

func TestWithVisitorReusesValidCookie(t *testing.T) {
	tokens := security.NewVisitorTokens("test-secret", time.Hour)
	m := NewMiddleware(tokens, security.NewRateLimiter(10, time.Minute), time.Hour)

	wantID, token, err := tokens.Issue()
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	var captured string
	handler := m.WithVisitor(func(w http.ResponseWriter, r *http.Request) {
		captured = GetVisitorFromContext(r.Context())
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: security.VisitorCookieName, Value: token})

	recorder := httptest.NewRecorder()
	handler(recorder, req)

	if captured != wantID {
		t.Errorf("visitor = %q, want %q", captured, wantID)
	}
	if len(recorder.Result().Cookies()) != 0 {
		t.Error("valid cookie should not be reissued")
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"mentorspractice/internal/assessment"
	"mentorspractice/internal/models"
	"mentorspractice/internal/security"
	"mentorspractice/internal/service"
)

// speakingNotes are the fixed instruction bullets on the speaking page.
var speakingNotes = []string{
	"আপনি প্রতিদিন মাত্র ২টি সাবমিশন করতে পারবেন। তাই ভালোভাবে প্রস্তুতি নিয়ে সময় নিয়ে সাবমিট করুন।",
	"চ্যাটজিপিটি, ক্লড ইত্যাদি কোন AI টুল ব্যবহার করে উত্তর লিখবেন না।",
	"Always speak loudly and clearly. Use noise free environment.",
	"সাবমিট করার পর দয়া করে আপনার উত্তর ভালোভাবে পর্যালোচনা করুন। আপনি কোথায় ভুল করেছেন তা বোঝার চেষ্টা করুন।",
	"সাবমিট করার পর অনুগ্রহ করে পৃষ্ঠাটি রিফ্রেশ করবেন না। প্রথমে ফলাফল ভালোভাবে দেখুন, তারপর পৃষ্ঠা থেকে বের হোন।",
}

// PracticeHandler serves the practice pages and the submission endpoints
type PracticeHandler struct {
	practiceService *service.PracticeService
	identityService *service.IdentityService
	csrf            *security.CSRFGenerator
	templates       *template.Template
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(practiceService *service.PracticeService, identityService *service.IdentityService, csrf *security.CSRFGenerator, templates *template.Template) *PracticeHandler {
	return &PracticeHandler{
		practiceService: practiceService,
		identityService: identityService,
		csrf:            csrf,
		templates:       templates,
	}
}

// Home renders the landing page
func (h *PracticeHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := HomeViewData{Title: "Mentors' IELTS Practice"}
	if err := h.templates.ExecuteTemplate(w, "home.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering home template", err)
	}
}

// ShowWriting renders the writing practice page
func (h *PracticeHandler) ShowWriting(w http.ResponseWriter, r *http.Request) {
	h.showPractice(w, r, models.PracticeWriting)
}

// ShowSpeaking renders the speaking practice page
func (h *PracticeHandler) ShowSpeaking(w http.ResponseWriter, r *http.Request) {
	h.showPractice(w, r, models.PracticeSpeaking)
}

// showPractice builds the common page data for both flows. Loading a page
// resets the flow: a reload after submitting starts the session over.
func (h *PracticeHandler) showPractice(w http.ResponseWriter, r *http.Request, practiceType models.PracticeType) {
	visitorID := GetVisitorFromContext(r.Context())

	h.practiceService.Reset(visitorID, practiceType)

	data, err := h.practiceViewData(r, visitorID, practiceType)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading practice page", err)
		return
	}

	if err := h.templates.ExecuteTemplate(w, string(practiceType)+".tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering practice template", err)
	}
}

func (h *PracticeHandler) practiceViewData(r *http.Request, visitorID string, practiceType models.PracticeType) (*PracticeViewData, error) {
	csrfToken, err := h.csrf.GenerateToken(visitorID)
	if err != nil {
		return nil, err
	}

	title := "Mentors' Writing Practice"
	var notes []string
	if practiceType == models.PracticeSpeaking {
		title = "Mentors' Speaking Practice"
		notes = speakingNotes
	}

	remaining := h.practiceService.Remaining(visitorID, practiceType)
	data := &PracticeViewData{
		Title:        title,
		PracticeType: practiceType,
		IdentityForm: IdentityFormData{CSRFToken: csrfToken},
		Remaining:    remaining,
		MaxPerDay:    h.practiceService.MaxPerDay(),
		LimitReached: remaining <= 0,
		Notes:        notes,
		CSRFToken:    csrfToken,
	}

	identity, err := h.identityService.Current(visitorID)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return data, nil
	}
	data.HasIdentity = true

	// Prompt fetch failure leaves the question in its loading state; the
	// page renders without auto-retry.
	prompt, err := h.practiceService.Question(r.Context(), visitorID, practiceType)
	if err != nil {
		log.Printf("Error fetching question: %v", err)
		data.PromptError = MsgQuestionLoading
	} else {
		data.Prompt = prompt
	}

	if progress, err := h.practiceService.Progress(r.Context(), visitorID, practiceType); err != nil {
		log.Printf("Error fetching progress: %v", err)
	} else {
		data.Progress = &ProgressViewData{
			Level:            progress.Level,
			AverageDisplay:   ProgressPercent(progress.AverageScore),
			TotalSubmissions: progress.TotalSubmissions,
		}
	}

	return data, nil
}

// SaveIdentity handles the identity capture form posted from the modal.
// Field errors re-render the practice page with the modal open.
func (h *PracticeHandler) SaveIdentity(w http.ResponseWriter, r *http.Request) {
	visitorID := GetVisitorFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}
	if !h.csrf.ValidateToken(visitorID, r.FormValue("csrf_token")) {
		respondWithError(w, http.StatusForbidden, "Invalid CSRF token", "", nil)
		return
	}

	practiceType := models.PracticeType(r.FormValue("from"))
	if !practiceType.Valid() {
		practiceType = models.PracticeWriting
	}

	identity := models.Identity{
		Name:  r.FormValue("name"),
		Email: r.FormValue("email"),
		Phone: r.FormValue("phone"),
	}

	fieldErrors, err := h.identityService.Save(r.Context(), visitorID, identity)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error saving identity", err)
		return
	}

	if len(fieldErrors) == 0 {
		http.Redirect(w, r, "/"+string(practiceType), http.StatusSeeOther)
		return
	}

	data, err := h.practiceViewData(r, visitorID, practiceType)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading practice page", err)
		return
	}
	data.IdentityForm.Name = identity.Name
	data.IdentityForm.Email = identity.Email
	data.IdentityForm.Phone = identity.Phone
	for _, fe := range fieldErrors {
		switch fe.Field {
		case "name":
			data.IdentityForm.NameError = fe.Message
		case "email":
			data.IdentityForm.EmailError = fe.Message
		case "phone":
			data.IdentityForm.PhoneError = fe.Message
		}
	}

	w.WriteHeader(http.StatusUnprocessableEntity)
	if err := h.templates.ExecuteTemplate(w, string(practiceType)+".tmpl", data); err != nil {
		log.Printf("Error rendering practice template: %v", err)
	}
}

// SubmitWriting handles a writing submission
func (h *PracticeHandler) SubmitWriting(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, models.PracticeWriting)
}

// SubmitSpeaking handles a speaking submission
func (h *PracticeHandler) SubmitSpeaking(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, models.PracticeSpeaking)
}

type submitRequest struct {
	Answer string `json:"answer"`
}

// submit runs the submission workflow and, on success, returns the rendered
// feedback partial. Failures come back as JSON error bodies the page scripts
// surface inline.
func (h *PracticeHandler) submit(w http.ResponseWriter, r *http.Request, practiceType models.PracticeType) {
	visitorID := GetVisitorFromContext(r.Context())

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSONError(w, http.StatusBadRequest, ErrInvalidRequestBody, err)
		return
	}

	result, err := h.practiceService.Submit(r.Context(), visitorID, practiceType, req.Answer)
	if err != nil {
		h.respondSubmitError(w, err)
		return
	}

	view := NewFeedbackView(result)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "feedback.tmpl", view); err != nil {
		log.Printf("Error rendering feedback template: %v", err)
	}
}

func (h *PracticeHandler) respondSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrIdentityRequired):
		respondWithJSONError(w, http.StatusBadRequest, "Please enter your information first.", nil)
	case errors.Is(err, service.ErrAnswerTooShort):
		respondWithJSONError(w, http.StatusBadRequest, fmt.Sprintf("Please write at least %d words before submitting.", service.MinWritingWords), nil)
	case errors.Is(err, assessment.ErrDailyLimitReached):
		respondWithJSONError(w, http.StatusTooManyRequests, MsgDailyLimitReached, nil)
	case errors.Is(err, service.ErrSubmissionInFlight):
		respondWithJSONError(w, http.StatusConflict, "Your answer is already being evaluated.", nil)
	case errors.Is(err, service.ErrAlreadySubmitted):
		respondWithJSONError(w, http.StatusConflict, "You have already submitted. Reload the page to practice again.", nil)
	case errors.Is(err, service.ErrPromptUnavailable):
		respondWithJSONError(w, http.StatusConflict, MsgQuestionLoading, nil)
	default:
		respondWithJSONError(w, http.StatusBadGateway, MsgSubmitFailed, err)
	}
}

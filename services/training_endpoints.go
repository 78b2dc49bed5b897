package services

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
	"github.com/TheGringo-ai/LineSmart-sub000/repository"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxUploadBytes caps one document upload request
const maxUploadBytes = 32 << 20

type TrainingEndpoints struct {
	store    repository.Store
	training *TrainingService
	rag      *RAGService
}

type CreateDraftRequest struct {
	Title             string            `json:"title"`
	Department        string            `json:"department"`
	TrainingType      string            `json:"training_type"`
	Description       string            `json:"description"`
	Objectives        string            `json:"objectives"`
	Language          string            `json:"language"`
	Scope             string            `json:"scope"`
	AssignedEmployees []string          `json:"assigned_employees"`
	DueDate           string            `json:"due_date"`
	QuizConfig        models.QuizConfig `json:"quiz_config"`
}

type SelectAnswerRequest struct {
	Question int `json:"question"`
	Answer   int `json:"answer"`
}

func NewTrainingEndpoints(store repository.Store, training *TrainingService, rag *RAGService) *TrainingEndpoints {
	return &TrainingEndpoints{
		store:    store,
		training: training,
		rag:      rag,
	}
}

func (e *TrainingEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/drafts", func(r chi.Router) {
		r.Post("/", e.CreateDraftHandler)
		r.Get("/{id}", e.GetDraftHandler)
		r.Put("/{id}", e.UpdateDraftHandler)
		r.Post("/{id}/documents", e.UploadDocumentsHandler)
		r.Get("/{id}/analysis", e.AnalyzeDraftHandler)
		r.Post("/{id}/generate", e.GenerateHandler)
	})

	r.Route("/trainings", func(r chi.Router) {
		r.Get("/", e.ListTrainingsHandler)
		r.Get("/{id}", e.GetTrainingHandler)
		r.Delete("/{id}", e.DeleteTrainingHandler)

		r.Route("/{id}/quiz", func(r chi.Router) {
			r.Post("/start", e.StartQuizHandler)
			r.Get("/", e.GetQuizSessionHandler)
			r.Post("/answer", e.SelectAnswerHandler)
			r.Post("/next", e.NextQuestionHandler)
			r.Post("/previous", e.PreviousQuestionHandler)
			r.Post("/submit", e.SubmitQuizHandler)
			r.Post("/retake", e.RetakeQuizHandler)
		})
	})
}

func (e *TrainingEndpoints) CreateDraftHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !RoleCan(user.Role, CapCreateTraining) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req CreateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "Training title is required", http.StatusBadRequest)
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}
	if req.Scope == "" {
		req.Scope = models.ScopeIndividual
	}
	if req.QuizConfig.QuestionCount == 0 {
		req.QuizConfig = models.QuizConfig{QuestionCount: 5, PassingScore: 80, Style: "mixed"}
	}

	draft := models.TrainingDraft{
		ID:                uuid.New().String(),
		CompanyID:         user.CompanyID,
		Title:             req.Title,
		Department:        req.Department,
		TrainingType:      req.TrainingType,
		Description:       req.Description,
		Objectives:        req.Objectives,
		Language:          req.Language,
		Scope:             req.Scope,
		AssignedEmployees: req.AssignedEmployees,
		DueDate:           req.DueDate,
		QuizConfig:        req.QuizConfig,
		CreatedBy:         user.ID,
	}

	if err := e.store.SaveTrainingDraft(r.Context(), &draft); err != nil {
		slog.Error("Failed to create draft", "error", err, "company_id", user.CompanyID)
		http.Error(w, "Failed to create draft", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(draft)

	slog.Info("Training draft created", "draft_id", draft.ID, "company_id", user.CompanyID, "title", draft.Title)
}

func (e *TrainingEndpoints) GetDraftHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	draft, err := e.store.GetTrainingDraft(r.Context(), user.CompanyID, chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Failed to get draft", http.StatusInternalServerError)
		return
	}
	if draft == nil {
		http.Error(w, "Draft not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(draft)
}

func (e *TrainingEndpoints) UpdateDraftHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !RoleCan(user.Role, CapCreateTraining) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	draftID := chi.URLParam(r, "id")
	existing, err := e.store.GetTrainingDraft(r.Context(), user.CompanyID, draftID)
	if err != nil {
		http.Error(w, "Failed to get draft", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		http.Error(w, "Draft not found", http.StatusNotFound)
		return
	}

	var req CreateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	existing.Title = req.Title
	existing.Department = req.Department
	existing.TrainingType = req.TrainingType
	existing.Description = req.Description
	existing.Objectives = req.Objectives
	existing.Language = req.Language
	existing.Scope = req.Scope
	existing.AssignedEmployees = req.AssignedEmployees
	existing.DueDate = req.DueDate
	existing.QuizConfig = req.QuizConfig

	if err := e.store.SaveTrainingDraft(r.Context(), existing); err != nil {
		slog.Error("Failed to update draft", "error", err, "draft_id", draftID)
		http.Error(w, "Failed to update draft", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(existing)
}

// UploadDocumentsHandler accepts multipart uploads, extracts their text
// and attaches them to the draft. A file that fails extraction is still
// attached, with no text.
func (e *TrainingEndpoints) UploadDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !RoleCan(user.Role, CapCreateTraining) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart request", http.StatusBadRequest)
		return
	}

	var files []UploadedFile
	for _, header := range r.MultipartForm.File["documents"] {
		file, err := header.Open()
		if err != nil {
			slog.Warn("Failed to open uploaded file", "file", header.Filename, "error", err)
			continue
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			slog.Warn("Failed to read uploaded file", "file", header.Filename, "error", err)
			continue
		}
		files = append(files, UploadedFile{
			Name:     header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Data:     data,
		})
	}
	if len(files) == 0 {
		http.Error(w, "No documents in request", http.StatusBadRequest)
		return
	}

	draft, err := e.training.AttachDocuments(r.Context(), user.CompanyID, chi.URLParam(r, "id"), files)
	if err != nil {
		if errors.Is(err, ErrDraftNotFound) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to attach documents", "error", err, "draft_id", chi.URLParam(r, "id"))
		http.Error(w, "Failed to attach documents", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(draft)

	slog.Info("Documents attached", "draft_id", draft.ID, "file_count", len(files))
}

func (e *TrainingEndpoints) AnalyzeDraftHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	draft, err := e.store.GetTrainingDraft(r.Context(), user.CompanyID, chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Failed to get draft", http.StatusInternalServerError)
		return
	}
	if draft == nil {
		http.Error(w, "Draft not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(e.rag.Analyze(draft))
}

func (e *TrainingEndpoints) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !RoleCan(user.Role, CapCreateTraining) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	training, err := e.training.Generate(r.Context(), user.CompanyID, chi.URLParam(r, "id"), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, ErrDraftNotFound):
			http.Error(w, "Draft not found", http.StatusNotFound)
		case errors.Is(err, ErrSetupIncomplete):
			http.Error(w, "Company setup is not complete", http.StatusConflict)
		default:
			slog.Error("Training generation failed", "error", err, "draft_id", chi.URLParam(r, "id"))
			http.Error(w, "Training generation failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(training)

	slog.Info("Training generated", "training_id", training.ID, "provider", training.Provider, "company_id", user.CompanyID)
}

func (e *TrainingEndpoints) ListTrainingsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	trainings, err := e.store.ListTrainings(r.Context(), user.CompanyID)
	if err != nil {
		http.Error(w, "Failed to list trainings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"trainings": trainings,
		"count":     len(trainings),
	})
}

func (e *TrainingEndpoints) GetTrainingHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	training, err := e.store.GetTraining(r.Context(), user.CompanyID, chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Failed to get training", http.StatusInternalServerError)
		return
	}
	if training == nil {
		http.Error(w, "Training not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(training)
}

func (e *TrainingEndpoints) DeleteTrainingHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !RoleCan(user.Role, CapDeleteTraining) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	trainingID := chi.URLParam(r, "id")
	if err := e.store.DeleteTraining(r.Context(), user.CompanyID, trainingID); err != nil {
		slog.Error("Failed to delete training", "error", err, "training_id", trainingID)
		http.Error(w, "Failed to delete training", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Training deleted"})
}

// quizEmployeeID resolves which roster entry takes the quiz. Accounts
// linked to a roster entry use it; others take quizzes under their user
// id.
func quizEmployeeID(user *models.User) string {
	if user.EmployeeID != nil {
		return *user.EmployeeID
	}
	return user.ID
}

func (e *TrainingEndpoints) StartQuizHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	session, err := e.training.StartQuiz(r.Context(), user.CompanyID, quizEmployeeID(user), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrTrainingNotFound) {
			http.Error(w, "Training not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to start quiz", "error", err, "training_id", chi.URLParam(r, "id"))
		http.Error(w, "Failed to start quiz", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

func (e *TrainingEndpoints) quizSession(w http.ResponseWriter, r *http.Request) (*QuizSession, *models.User, bool) {
	user, ok := requireUser(w, r)
	if !ok {
		return nil, nil, false
	}

	session, err := e.training.QuizSession(user.CompanyID, quizEmployeeID(user), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "No quiz session, start the quiz first", http.StatusNotFound)
		return nil, nil, false
	}
	return session, user, true
}

func (e *TrainingEndpoints) GetQuizSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, _, ok := e.quizSession(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

func (e *TrainingEndpoints) SelectAnswerHandler(w http.ResponseWriter, r *http.Request) {
	session, _, ok := e.quizSession(w, r)
	if !ok {
		return
	}

	var req SelectAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := session.SelectAnswer(req.Question, req.Answer); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

func (e *TrainingEndpoints) NextQuestionHandler(w http.ResponseWriter, r *http.Request) {
	session, _, ok := e.quizSession(w, r)
	if !ok {
		return
	}
	session.Next()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

func (e *TrainingEndpoints) PreviousQuestionHandler(w http.ResponseWriter, r *http.Request) {
	session, _, ok := e.quizSession(w, r)
	if !ok {
		return
	}
	session.Previous()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

func (e *TrainingEndpoints) SubmitQuizHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	result, err := e.training.SubmitQuiz(r.Context(), user.CompanyID, quizEmployeeID(user), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrQuizSessionNotFound):
			http.Error(w, "No quiz session, start the quiz first", http.StatusNotFound)
		case errors.Is(err, ErrQuizIncomplete):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrQuizAlreadyScored):
			http.Error(w, "Quiz already submitted", http.StatusConflict)
		default:
			slog.Error("Quiz submission failed", "error", err, "training_id", chi.URLParam(r, "id"))
			http.Error(w, "Quiz submission failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)

	slog.Info("Quiz submitted", "training_id", result.TrainingID, "employee_id", result.EmployeeID, "score", fmtQuizSummary(result), "passed", result.Passed)
}

func (e *TrainingEndpoints) RetakeQuizHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	session, err := e.training.RetakeQuiz(user.CompanyID, quizEmployeeID(user), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "No quiz session, start the quiz first", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
	"github.com/TheGringo-ai/LineSmart-sub000/repository"
)

func newTestTrainingService(t *testing.T, fallbackEndpoint string) (*TrainingService, repository.Store) {
	t.Helper()
	parser, err := NewParserService()
	if err != nil {
		t.Fatalf("NewParserService failed: %v", err)
	}

	store := repository.NewMemoryStore()
	service := NewTrainingService(
		store,
		NewExtractorService(),
		NewPromptBuilder(),
		NewRAGService(),
		chainService(fallbackEndpoint),
		parser,
		NewFallbackService(),
		NewMemoryGenerationCache(),
		NewQuizSessionStore(),
	)
	return service, store
}

func seedCompany(t *testing.T, store repository.Store, completed bool) string {
	t.Helper()
	companyID := "company-1"
	err := store.SaveSetupConfig(context.Background(), &models.SetupConfig{
		CompanyID: companyID,
		Company:   models.CompanyProfile{Name: "Acme", Industry: "Manufacturing"},
		AIModels:  models.AIModelsConfig{Configs: map[string]models.ProviderConfig{}},
		Completed: completed,
	})
	if err != nil {
		t.Fatalf("SaveSetupConfig failed: %v", err)
	}
	return companyID
}

func seedDraft(t *testing.T, store repository.Store, companyID string) *models.TrainingDraft {
	t.Helper()
	draft := &models.TrainingDraft{
		CompanyID:    companyID,
		Title:        "Forklift Safety",
		Department:   "Warehouse",
		TrainingType: "Safety Procedures",
		Language:     "en",
		Scope:        models.ScopeIndividual,
		QuizConfig:   models.QuizConfig{QuestionCount: 2, PassingScore: 80},
	}
	if err := store.SaveTrainingDraft(context.Background(), draft); err != nil {
		t.Fatalf("SaveTrainingDraft failed: %v", err)
	}
	return draft
}

func TestGenerateFromProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(openAIReply(validReply)))
	}))
	defer server.Close()

	service, store := newTestTrainingService(t, server.URL)
	companyID := seedCompany(t, store, true)
	draft := seedDraft(t, store, companyID)

	training, err := service.Generate(context.Background(), companyID, draft.ID, "user-1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if training.Provider != ProviderFallback {
		t.Errorf("Provider = %s, expected %s (keyless chain ends at the hosted fallback)", training.Provider, ProviderFallback)
	}
	if training.PassingScore != 80 {
		t.Errorf("PassingScore = %d, expected 80", training.PassingScore)
	}
	if len(training.Content.Quiz) != 2 {
		t.Errorf("quiz length = %d, expected the draft's question count", len(training.Content.Quiz))
	}

	stored, err := store.GetTraining(context.Background(), companyID, training.ID)
	if err != nil || stored == nil {
		t.Fatalf("generated training not persisted: %v", err)
	}
}

func TestGenerateSecondCallHitsCache(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(openAIReply(validReply)))
	}))
	defer server.Close()

	service, store := newTestTrainingService(t, server.URL)
	companyID := seedCompany(t, store, true)
	draft := seedDraft(t, store, companyID)

	if _, err := service.Generate(context.Background(), companyID, draft.ID, "user-1"); err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}
	second, err := service.Generate(context.Background(), companyID, draft.ID, "user-1")
	if err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("provider saw %d calls, expected 1 (second served from cache)", calls)
	}
	if second.Provider != "cache" {
		t.Errorf("Provider = %s, expected cache", second.Provider)
	}
}

func TestGenerateSubstitutesFallbackContent(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "Provider chain exhausted",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "Reply fails validation",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(openAIReply("I am unable to produce JSON today.")))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			service, store := newTestTrainingService(t, server.URL)
			companyID := seedCompany(t, store, true)
			draft := seedDraft(t, store, companyID)

			training, err := service.Generate(context.Background(), companyID, draft.ID, "user-1")
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if training.Provider != "fallback" {
				t.Errorf("Provider = %s, expected fallback", training.Provider)
			}
			if len(training.Content.Quiz) != 2 {
				t.Errorf("fallback quiz length = %d, expected the draft's question count", len(training.Content.Quiz))
			}
		})
	}
}

func TestGenerateRequiresCompletedSetup(t *testing.T) {
	service, store := newTestTrainingService(t, "http://unused.invalid")
	companyID := seedCompany(t, store, false)
	draft := seedDraft(t, store, companyID)

	if _, err := service.Generate(context.Background(), companyID, draft.ID, "user-1"); !errors.Is(err, ErrSetupIncomplete) {
		t.Errorf("Generate returned %v, expected ErrSetupIncomplete", err)
	}
}

func TestGenerateUnknownDraft(t *testing.T) {
	service, store := newTestTrainingService(t, "http://unused.invalid")
	companyID := seedCompany(t, store, true)

	if _, err := service.Generate(context.Background(), companyID, "no-such-draft", "user-1"); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("Generate returned %v, expected ErrDraftNotFound", err)
	}
}

func TestSubmitQuizUpdatesEmployeeOnPass(t *testing.T) {
	service, store := newTestTrainingService(t, "http://unused.invalid")
	ctx := context.Background()
	companyID := seedCompany(t, store, true)

	employee := &models.Employee{
		CompanyID:          companyID,
		Name:               "John Smith",
		Department:         "Maintenance",
		Role:               models.RoleEmployee,
		CompletedTrainings: 3,
		TotalTrainings:     3,
		TrainingHistory: []models.TrainingRecord{
			{Title: "Old Training", Date: "2024-01-01", Score: 90, Status: "completed", Language: "en"},
		},
	}
	if err := store.SaveEmployee(ctx, employee); err != nil {
		t.Fatalf("SaveEmployee failed: %v", err)
	}

	training := quizTraining(5)
	training.ID = ""
	training.CompanyID = companyID
	training.Title = "Lockout/Tagout"
	training.Language = "en"
	if err := store.SaveTraining(ctx, training); err != nil {
		t.Fatalf("SaveTraining failed: %v", err)
	}

	session, err := service.StartQuiz(ctx, companyID, employee.ID, training.ID)
	if err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}
	for i, question := range session.Questions {
		if err := session.SelectAnswer(i, question.Correct); err != nil {
			t.Fatalf("SelectAnswer failed: %v", err)
		}
	}

	result, err := service.SubmitQuiz(ctx, companyID, employee.ID, training.ID)
	if err != nil {
		t.Fatalf("SubmitQuiz failed: %v", err)
	}
	if !result.Passed || result.Percentage != 100 {
		t.Fatalf("result = %+v, expected a 100%% pass", result)
	}

	updated, err := store.GetEmployee(ctx, companyID, employee.ID)
	if err != nil || updated == nil {
		t.Fatalf("GetEmployee failed: %v", err)
	}
	if updated.CompletedTrainings != 4 {
		t.Errorf("CompletedTrainings = %d, expected 4", updated.CompletedTrainings)
	}
	if updated.TotalTrainings != 4 {
		t.Errorf("TotalTrainings = %d, expected a catch-up to 4 so completed never exceeds total", updated.TotalTrainings)
	}
	if len(updated.TrainingHistory) != 2 {
		t.Fatalf("TrainingHistory length = %d, expected 2", len(updated.TrainingHistory))
	}
	if updated.TrainingHistory[0].Title != "Lockout/Tagout" {
		t.Errorf("newest history entry = %q, expected the passed training first", updated.TrainingHistory[0].Title)
	}
	if updated.TrainingHistory[0].Score != 100 {
		t.Errorf("history score = %d, expected the percentage", updated.TrainingHistory[0].Score)
	}
	if updated.LastTraining == nil {
		t.Error("LastTraining must be set after a pass")
	}

	results, err := store.ListQuizResults(ctx, companyID, employee.ID)
	if err != nil || len(results) != 1 {
		t.Fatalf("ListQuizResults = %d results, err %v, expected 1", len(results), err)
	}
}

func TestSubmitQuizFailedAttemptLeavesCounters(t *testing.T) {
	service, store := newTestTrainingService(t, "http://unused.invalid")
	ctx := context.Background()
	companyID := seedCompany(t, store, true)

	employee := &models.Employee{CompanyID: companyID, Name: "Sarah", Role: models.RoleEmployee}
	if err := store.SaveEmployee(ctx, employee); err != nil {
		t.Fatalf("SaveEmployee failed: %v", err)
	}

	training := quizTraining(5)
	training.ID = ""
	training.CompanyID = companyID
	if err := store.SaveTraining(ctx, training); err != nil {
		t.Fatalf("SaveTraining failed: %v", err)
	}

	session, err := service.StartQuiz(ctx, companyID, employee.ID, training.ID)
	if err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}
	for i, question := range session.Questions {
		// Answer everything wrong
		session.SelectAnswer(i, (question.Correct+1)%len(question.Options))
	}

	result, err := service.SubmitQuiz(ctx, companyID, employee.ID, training.ID)
	if err != nil {
		t.Fatalf("SubmitQuiz failed: %v", err)
	}
	if result.Passed {
		t.Fatal("all-wrong submission must not pass")
	}

	updated, _ := store.GetEmployee(ctx, companyID, employee.ID)
	if updated.CompletedTrainings != 0 {
		t.Errorf("CompletedTrainings = %d, expected 0 after a fail", updated.CompletedTrainings)
	}
	if len(updated.TrainingHistory) != 0 {
		t.Errorf("TrainingHistory length = %d, expected 0 after a fail", len(updated.TrainingHistory))
	}

	// The failed result is still recorded
	results, _ := store.ListQuizResults(ctx, companyID, employee.ID)
	if len(results) != 1 {
		t.Errorf("ListQuizResults = %d results, expected the failed attempt persisted", len(results))
	}

	// Retake resets the session for another attempt
	retaken, err := service.RetakeQuiz(companyID, employee.ID, training.ID)
	if err != nil {
		t.Fatalf("RetakeQuiz failed: %v", err)
	}
	if retaken.Submitted || len(retaken.Answers) != 0 {
		t.Error("RetakeQuiz must return a cleared session")
	}
}

func TestStartQuizResumesExistingSession(t *testing.T) {
	service, store := newTestTrainingService(t, "http://unused.invalid")
	ctx := context.Background()
	companyID := seedCompany(t, store, true)

	training := quizTraining(3)
	training.ID = ""
	training.CompanyID = companyID
	if err := store.SaveTraining(ctx, training); err != nil {
		t.Fatalf("SaveTraining failed: %v", err)
	}

	first, err := service.StartQuiz(ctx, companyID, "emp-1", training.ID)
	if err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}
	first.SelectAnswer(0, 1)
	first.Next()

	second, err := service.StartQuiz(ctx, companyID, "emp-1", training.ID)
	if err != nil {
		t.Fatalf("second StartQuiz failed: %v", err)
	}
	if second != first {
		t.Error("StartQuiz must resume the in-flight session")
	}
	if second.CurrentIndex != 1 || second.Answers[0] != 1 {
		t.Error("resumed session must keep its progress")
	}
}

func TestQuizSessionNotFound(t *testing.T) {
	service, _ := newTestTrainingService(t, "http://unused.invalid")

	if _, err := service.QuizSession("c1", "e1", "t1"); !errors.Is(err, ErrQuizSessionNotFound) {
		t.Errorf("QuizSession returned %v, expected ErrQuizSessionNotFound", err)
	}
	if _, err := service.SubmitQuiz(context.Background(), "c1", "e1", "t1"); !errors.Is(err, ErrQuizSessionNotFound) {
		t.Errorf("SubmitQuiz returned %v, expected ErrQuizSessionNotFound", err)
	}
}

func TestAttachDocuments(t *testing.T) {
	service, store := newTestTrainingService(t, "http://unused.invalid")
	ctx := context.Background()
	companyID := seedCompany(t, store, true)
	draft := seedDraft(t, store, companyID)

	files := []UploadedFile{
		{Name: "procedures.txt", MimeType: "text/plain", Data: []byte("step one")},
		{Name: "broken.pdf", MimeType: "application/pdf", Data: []byte("garbage")},
	}

	updated, err := service.AttachDocuments(ctx, companyID, draft.ID, files)
	if err != nil {
		t.Fatalf("AttachDocuments failed: %v", err)
	}
	if len(updated.Documents) != 2 {
		t.Fatalf("draft has %d documents, expected 2", len(updated.Documents))
	}
	if updated.Documents[0].ExtractedText == nil {
		t.Error("text document must carry extracted text")
	}
	if updated.Documents[1].ExtractedText != nil {
		t.Error("failed document must be kept with no text")
	}

	persisted, _ := store.GetTrainingDraft(ctx, companyID, draft.ID)
	if len(persisted.Documents) != 2 {
		t.Error("attached documents must be persisted on the draft")
	}
}

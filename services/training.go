package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
	"github.com/TheGringo-ai/LineSmart-sub000/repository"
)

var (
	ErrDraftNotFound    = errors.New("training draft not found")
	ErrTrainingNotFound = errors.New("training not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrSetupIncomplete  = errors.New("company setup is not complete")
)

// TrainingService owns the generation pipeline and the quiz lifecycle
type TrainingService struct {
	store     repository.Store
	extractor *ExtractorService
	prompts   *PromptBuilder
	rag       *RAGService
	providers *ProviderChainService
	parser    *ParserService
	fallback  *FallbackService
	cache     GenerationCache
	sessions  *QuizSessionStore
}

func NewTrainingService(
	store repository.Store,
	extractor *ExtractorService,
	prompts *PromptBuilder,
	rag *RAGService,
	providers *ProviderChainService,
	parser *ParserService,
	fallback *FallbackService,
	cache GenerationCache,
	sessions *QuizSessionStore,
) *TrainingService {
	return &TrainingService{
		store:     store,
		extractor: extractor,
		prompts:   prompts,
		rag:       rag,
		providers: providers,
		parser:    parser,
		fallback:  fallback,
		cache:     cache,
		sessions:  sessions,
	}
}

// AttachDocuments extracts text from uploaded files and appends them to a
// draft. Files that fail extraction are kept with no text.
func (s *TrainingService) AttachDocuments(ctx context.Context, companyID, draftID string, files []UploadedFile) (*models.TrainingDraft, error) {
	draft, err := s.store.GetTrainingDraft(ctx, companyID, draftID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}

	draft.Documents = append(draft.Documents, s.extractor.ExtractAll(files)...)
	if err := s.store.SaveTrainingDraft(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Generate runs the full pipeline for a draft: relevance analysis, prompt
// construction, the provider chain, parsing and persistence. Provider or
// parse failure substitutes deterministic fallback content rather than
// failing the request.
func (s *TrainingService) Generate(ctx context.Context, companyID, draftID, userID string) (*models.Training, error) {
	draft, err := s.store.GetTrainingDraft(ctx, companyID, draftID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}

	setup, err := s.store.GetSetupConfig(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if setup == nil || !setup.Completed {
		return nil, ErrSetupIncomplete
	}

	analysis := s.rag.Analyze(draft)
	prompt := s.prompts.Build(draft, &setup.Company, s.assignedNames(ctx, companyID, draft), analysis)
	slog.Info("Built generation prompt", "draft_id", draft.ID, "prompt_length", len(prompt), "relevant_documents", len(analysis.RelevantDocuments))

	content, provider := s.generateContent(ctx, setup, draft, prompt)

	training := &models.Training{
		CompanyID:    companyID,
		DraftID:      draft.ID,
		Title:        draft.Title,
		Department:   draft.Department,
		Language:     draft.Language,
		Scope:        draft.Scope,
		Content:      *content,
		PassingScore: passingScore(draft),
		Provider:     provider,
		CreatedBy:    userID,
	}
	if err := s.store.SaveTraining(ctx, training); err != nil {
		return nil, err
	}
	return training, nil
}

// generateContent tries the cache, then the provider chain, then the
// deterministic fallback. It always returns usable content.
func (s *TrainingService) generateContent(ctx context.Context, setup *models.SetupConfig, draft *models.TrainingDraft, prompt string) (*models.GeneratedTraining, string) {
	key := CacheKey(prompt)
	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached, "cache"
	}

	raw, provider, err := s.providers.Generate(ctx, &setup.AIModels, prompt)
	if err != nil {
		slog.Warn("Generation failed, substituting fallback content", "draft_id", draft.ID, "error", err)
		return s.fallback.Build(draft, &setup.Company), "fallback"
	}

	content, err := s.parser.Parse(raw, draft.QuizConfig.QuestionCount)
	if err != nil {
		slog.Warn("Provider reply unusable, substituting fallback content", "draft_id", draft.ID, "provider", provider, "error", err)
		return s.fallback.Build(draft, &setup.Company), "fallback"
	}

	s.cache.Set(ctx, key, content)
	return content, provider
}

func (s *TrainingService) assignedNames(ctx context.Context, companyID string, draft *models.TrainingDraft) []string {
	if draft.Scope != models.ScopeIndividual {
		return nil
	}
	var names []string
	for _, id := range draft.AssignedEmployees {
		employee, err := s.store.GetEmployee(ctx, companyID, id)
		if err != nil || employee == nil {
			continue
		}
		names = append(names, employee.Name)
	}
	return names
}

func passingScore(draft *models.TrainingDraft) int {
	if draft.QuizConfig.PassingScore > 0 {
		return draft.QuizConfig.PassingScore
	}
	return DefaultPassingScore
}

// StartQuiz opens (or resumes) a quiz session for an employee
func (s *TrainingService) StartQuiz(ctx context.Context, companyID, employeeID, trainingID string) (*QuizSession, error) {
	if session, ok := s.sessions.Load(companyID, employeeID, trainingID); ok {
		return session, nil
	}

	training, err := s.store.GetTraining(ctx, companyID, trainingID)
	if err != nil {
		return nil, err
	}
	if training == nil {
		return nil, ErrTrainingNotFound
	}

	session := NewQuizSession(training, employeeID)
	s.sessions.Save(companyID, session)
	return session, nil
}

// QuizSession returns the in-flight session for navigation and answering
func (s *TrainingService) QuizSession(companyID, employeeID, trainingID string) (*QuizSession, error) {
	session, ok := s.sessions.Load(companyID, employeeID, trainingID)
	if !ok {
		return nil, ErrQuizSessionNotFound
	}
	return session, nil
}

// SubmitQuiz scores the session, persists the result and, on a pass,
// updates the employee's training counters and history
func (s *TrainingService) SubmitQuiz(ctx context.Context, companyID, employeeID, trainingID string) (*models.QuizResult, error) {
	session, err := s.QuizSession(companyID, employeeID, trainingID)
	if err != nil {
		return nil, err
	}

	result, err := session.Submit()
	if err != nil {
		return nil, err
	}
	result.CompanyID = companyID

	if err := s.store.SaveQuizResult(ctx, result); err != nil {
		return nil, err
	}

	if result.Passed {
		if err := s.recordCompletion(ctx, companyID, employeeID, trainingID, result); err != nil {
			slog.Error("Failed to update employee after passed quiz", "employee_id", employeeID, "training_id", trainingID, "error", err)
			return nil, err
		}
	}
	return result, nil
}

// recordCompletion applies the pass to the employee roster entry: the
// completed counter goes up by one and the history gains one entry at the
// front.
func (s *TrainingService) recordCompletion(ctx context.Context, companyID, employeeID, trainingID string, result *models.QuizResult) error {
	employee, err := s.store.GetEmployee(ctx, companyID, employeeID)
	if err != nil {
		return err
	}
	if employee == nil {
		return ErrEmployeeNotFound
	}

	training, err := s.store.GetTraining(ctx, companyID, trainingID)
	if err != nil {
		return err
	}
	if training == nil {
		return ErrTrainingNotFound
	}

	now := time.Now()
	record := models.TrainingRecord{
		Title:      training.Title,
		Date:       now.Format("2006-01-02"),
		Score:      result.Percentage,
		Status:     "completed",
		Language:   training.Language,
		SourceDocs: s.trainingSourceDocs(ctx, companyID, training),
	}

	employee.CompletedTrainings++
	// Completed never exceeds total, even when the pass was for a training
	// that was never counted as assigned
	if employee.TotalTrainings < employee.CompletedTrainings {
		employee.TotalTrainings = employee.CompletedTrainings
	}
	employee.TrainingHistory = append([]models.TrainingRecord{record}, employee.TrainingHistory...)
	employee.LastTraining = &now

	return s.store.SaveEmployee(ctx, employee)
}

func (s *TrainingService) trainingSourceDocs(ctx context.Context, companyID string, training *models.Training) []string {
	draft, err := s.store.GetTrainingDraft(ctx, companyID, training.DraftID)
	if err != nil || draft == nil {
		return nil
	}
	var names []string
	for _, doc := range draft.Documents {
		names = append(names, doc.Name)
	}
	return names
}

// RetakeQuiz resets the session for another attempt. The persisted result
// from the previous attempt is kept.
func (s *TrainingService) RetakeQuiz(companyID, employeeID, trainingID string) (*QuizSession, error) {
	session, err := s.QuizSession(companyID, employeeID, trainingID)
	if err != nil {
		return nil, err
	}
	session.Retake()
	return session, nil
}

// quiz result trimming helper used by the endpoints layer
func fmtQuizSummary(result *models.QuizResult) string {
	return fmt.Sprintf("%d/%d (%d%%)", result.Score, result.Total, result.Percentage)
}

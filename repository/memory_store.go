package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and by deployments that
// run without a database. All methods are safe for concurrent use.
type MemoryStore struct {
	changeNotifier
	mu sync.RWMutex

	setups      map[string]models.SetupConfig
	employees   map[string]models.Employee
	drafts      map[string]models.TrainingDraft
	trainings   map[string]models.Training
	quizResults map[string]models.QuizResult
	users       map[string]models.User
	tokens      map[string]models.RefreshToken
	invitations map[string]models.Invitation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		setups:      make(map[string]models.SetupConfig),
		employees:   make(map[string]models.Employee),
		drafts:      make(map[string]models.TrainingDraft),
		trainings:   make(map[string]models.Training),
		quizResults: make(map[string]models.QuizResult),
		users:       make(map[string]models.User),
		tokens:      make(map[string]models.RefreshToken),
		invitations: make(map[string]models.Invitation),
	}
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}

func (r *MemoryStore) GetSetupConfig(ctx context.Context, companyID string) (*models.SetupConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	config, ok := r.setups[companyID]
	if !ok {
		return nil, nil
	}
	return &config, nil
}

func (r *MemoryStore) SaveSetupConfig(ctx context.Context, config *models.SetupConfig) error {
	r.mu.Lock()
	config.UpdatedAt = time.Now()
	r.setups[config.CompanyID] = *config
	r.mu.Unlock()

	r.publish(ChangeEvent{
		CompanyID: config.CompanyID,
		Kind:      ChangeSetup,
		Path:      changePath(config.CompanyID, "setup", config.CompanyID),
		ID:        config.CompanyID,
	})
	return nil
}

func (r *MemoryStore) GetEmployee(ctx context.Context, companyID, employeeID string) (*models.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	employee, ok := r.employees[employeeID]
	if !ok || employee.CompanyID != companyID {
		return nil, nil
	}
	return &employee, nil
}

func (r *MemoryStore) ListEmployees(ctx context.Context, companyID string) ([]models.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var employees []models.Employee
	for _, e := range r.employees {
		if e.CompanyID == companyID {
			employees = append(employees, e)
		}
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].Name < employees[j].Name })
	return employees, nil
}

func (r *MemoryStore) SaveEmployee(ctx context.Context, employee *models.Employee) error {
	r.mu.Lock()
	ensureID(&employee.ID)
	employee.UpdatedAt = time.Now()
	r.employees[employee.ID] = *employee
	r.mu.Unlock()

	r.publish(ChangeEvent{
		CompanyID: employee.CompanyID,
		Kind:      ChangeEmployee,
		Path:      changePath(employee.CompanyID, "employees", employee.ID),
		ID:        employee.ID,
	})
	return nil
}

func (r *MemoryStore) DeleteEmployee(ctx context.Context, companyID, employeeID string) error {
	r.mu.Lock()
	if e, ok := r.employees[employeeID]; ok && e.CompanyID == companyID {
		delete(r.employees, employeeID)
	}
	r.mu.Unlock()

	r.publish(ChangeEvent{
		CompanyID: companyID,
		Kind:      ChangeEmployee,
		Path:      changePath(companyID, "employees", employeeID),
		ID:        employeeID,
	})
	return nil
}

func (r *MemoryStore) GetTrainingDraft(ctx context.Context, companyID, draftID string) (*models.TrainingDraft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	draft, ok := r.drafts[draftID]
	if !ok || draft.CompanyID != companyID {
		return nil, nil
	}
	return &draft, nil
}

func (r *MemoryStore) SaveTrainingDraft(ctx context.Context, draft *models.TrainingDraft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ensureID(&draft.ID)
	draft.UpdatedAt = time.Now()
	r.drafts[draft.ID] = *draft
	return nil
}

func (r *MemoryStore) GetTraining(ctx context.Context, companyID, trainingID string) (*models.Training, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	training, ok := r.trainings[trainingID]
	if !ok || training.CompanyID != companyID {
		return nil, nil
	}
	return &training, nil
}

func (r *MemoryStore) ListTrainings(ctx context.Context, companyID string) ([]models.Training, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var trainings []models.Training
	for _, t := range r.trainings {
		if t.CompanyID == companyID {
			trainings = append(trainings, t)
		}
	}
	sort.Slice(trainings, func(i, j int) bool { return trainings[i].CreatedAt.After(trainings[j].CreatedAt) })
	return trainings, nil
}

func (r *MemoryStore) SaveTraining(ctx context.Context, training *models.Training) error {
	r.mu.Lock()
	ensureID(&training.ID)
	if training.CreatedAt.IsZero() {
		training.CreatedAt = time.Now()
	}
	training.UpdatedAt = time.Now()
	r.trainings[training.ID] = *training
	r.mu.Unlock()

	r.publish(ChangeEvent{
		CompanyID: training.CompanyID,
		Kind:      ChangeTraining,
		Path:      changePath(training.CompanyID, "trainings", training.ID),
		ID:        training.ID,
	})
	return nil
}

func (r *MemoryStore) DeleteTraining(ctx context.Context, companyID, trainingID string) error {
	r.mu.Lock()
	if t, ok := r.trainings[trainingID]; ok && t.CompanyID == companyID {
		delete(r.trainings, trainingID)
	}
	r.mu.Unlock()

	r.publish(ChangeEvent{
		CompanyID: companyID,
		Kind:      ChangeTraining,
		Path:      changePath(companyID, "trainings", trainingID),
		ID:        trainingID,
	})
	return nil
}

func (r *MemoryStore) SaveQuizResult(ctx context.Context, result *models.QuizResult) error {
	r.mu.Lock()
	ensureID(&result.ID)
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}
	r.quizResults[result.ID] = *result
	r.mu.Unlock()

	r.publish(ChangeEvent{
		CompanyID: result.CompanyID,
		Kind:      ChangeQuizResult,
		Path:      changePath(result.CompanyID, "quiz_results", result.ID),
		ID:        result.ID,
	})
	return nil
}

func (r *MemoryStore) ListQuizResults(ctx context.Context, companyID, employeeID string) ([]models.QuizResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var results []models.QuizResult
	for _, q := range r.quizResults {
		if q.CompanyID != companyID {
			continue
		}
		if employeeID != "" && q.EmployeeID != employeeID {
			continue
		}
		results = append(results, q)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].CreatedAt.After(results[j].CreatedAt) })
	return results, nil
}

func (r *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ensureID(&user.ID)
	user.CreatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (r *MemoryStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *MemoryStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ensureID(&token.ID)
	r.tokens[token.Token] = *token
	return nil
}

func (r *MemoryStore) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	refreshToken, ok := r.tokens[token]
	if !ok || refreshToken.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	return &refreshToken, nil
}

func (r *MemoryStore) DeleteAllUserTokens(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, token := range r.tokens {
		if token.UserID == userID {
			delete(r.tokens, key)
		}
	}
	return nil
}

func (r *MemoryStore) CreateInvitation(ctx context.Context, invitation *models.Invitation) error {
	r.mu.Lock()
	ensureID(&invitation.ID)
	invitation.CreatedAt = time.Now()
	r.invitations[invitation.Token] = *invitation
	r.mu.Unlock()

	r.publish(ChangeEvent{
		CompanyID: invitation.CompanyID,
		Kind:      ChangeInvitation,
		Path:      changePath(invitation.CompanyID, "invitations", invitation.ID),
		ID:        invitation.ID,
	})
	return nil
}

func (r *MemoryStore) GetInvitationByToken(ctx context.Context, token string) (*models.Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	invitation, ok := r.invitations[token]
	if !ok || invitation.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	return &invitation, nil
}

func (r *MemoryStore) SaveInvitation(ctx context.Context, invitation *models.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	invitation.UpdatedAt = time.Now()
	r.invitations[invitation.Token] = *invitation
	return nil
}

package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
)

// Change kinds published on every write
const (
	ChangeSetup      = "setup"
	ChangeEmployee   = "employee"
	ChangeTraining   = "training"
	ChangeQuizResult = "quiz_result"
	ChangeInvitation = "invitation"
)

// ChangeEvent describes one write to the store. Path follows the
// company-scoped hierarchy, e.g. companies/{id}/employees/{employeeId}.
type ChangeEvent struct {
	CompanyID string `json:"company_id"`
	Kind      string `json:"kind"`
	Path      string `json:"path"`
	ID        string `json:"id"`
}

// Store is the only surface through which the core touches persistence.
// Lookups return (nil, nil) when the entity does not exist.
type Store interface {
	// Setup config (one per company)
	GetSetupConfig(ctx context.Context, companyID string) (*models.SetupConfig, error)
	SaveSetupConfig(ctx context.Context, config *models.SetupConfig) error

	// Employees
	GetEmployee(ctx context.Context, companyID, employeeID string) (*models.Employee, error)
	ListEmployees(ctx context.Context, companyID string) ([]models.Employee, error)
	SaveEmployee(ctx context.Context, employee *models.Employee) error
	DeleteEmployee(ctx context.Context, companyID, employeeID string) error

	// Training drafts
	GetTrainingDraft(ctx context.Context, companyID, draftID string) (*models.TrainingDraft, error)
	SaveTrainingDraft(ctx context.Context, draft *models.TrainingDraft) error

	// Generated trainings
	GetTraining(ctx context.Context, companyID, trainingID string) (*models.Training, error)
	ListTrainings(ctx context.Context, companyID string) ([]models.Training, error)
	SaveTraining(ctx context.Context, training *models.Training) error
	DeleteTraining(ctx context.Context, companyID, trainingID string) error

	// Quiz results
	SaveQuizResult(ctx context.Context, result *models.QuizResult) error
	ListQuizResults(ctx context.Context, companyID, employeeID string) ([]models.QuizResult, error)

	// Accounts and sessions
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteAllUserTokens(ctx context.Context, userID string) error

	// Invitations
	CreateInvitation(ctx context.Context, invitation *models.Invitation) error
	GetInvitationByToken(ctx context.Context, token string) (*models.Invitation, error)
	SaveInvitation(ctx context.Context, invitation *models.Invitation) error

	// Subscribe registers a change listener for one company and returns an
	// unsubscribe function. Listeners are invoked synchronously after each
	// successful write.
	Subscribe(companyID string, fn func(ChangeEvent)) func()
}

// changeNotifier fans out ChangeEvents to per-company subscribers.
// Embedded by both store implementations.
type changeNotifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]func(ChangeEvent)
}

func (n *changeNotifier) Subscribe(companyID string, fn func(ChangeEvent)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subs == nil {
		n.subs = make(map[string]map[int]func(ChangeEvent))
	}
	if n.subs[companyID] == nil {
		n.subs[companyID] = make(map[int]func(ChangeEvent))
	}

	id := n.nextID
	n.nextID++
	n.subs[companyID][id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs[companyID], id)
	}
}

func (n *changeNotifier) publish(event ChangeEvent) {
	n.mu.RLock()
	listeners := make([]func(ChangeEvent), 0, len(n.subs[event.CompanyID]))
	for _, fn := range n.subs[event.CompanyID] {
		listeners = append(listeners, fn)
	}
	n.mu.RUnlock()

	for _, fn := range listeners {
		fn(event)
	}
}

func changePath(companyID, collection, id string) string {
	return fmt.Sprintf("companies/%s/%s/%s", companyID, collection, id)
}

package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
	"gorm.io/gorm"
)

type GORMStore struct {
	changeNotifier
	db *gorm.DB
}

func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

// AutoMigrate runs database migrations
func (r *GORMStore) AutoMigrate() error {
	return r.db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Invitation{},
		&models.SetupConfig{},
		&models.Employee{},
		&models.TrainingDraft{},
		&models.Training{},
		&models.QuizResult{},
	)
}

// Setup config operations
func (r *GORMStore) GetSetupConfig(ctx context.Context, companyID string) (*models.SetupConfig, error) {
	var config models.SetupConfig
	if err := r.db.WithContext(ctx).Where("company_id = ?", companyID).First(&config).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get setup config", "error", err, "company_id", companyID)
		return nil, err
	}
	return &config, nil
}

func (r *GORMStore) SaveSetupConfig(ctx context.Context, config *models.SetupConfig) error {
	if err := r.db.WithContext(ctx).Save(config).Error; err != nil {
		slog.Error("Failed to save setup config", "error", err, "company_id", config.CompanyID)
		return err
	}
	r.publish(ChangeEvent{
		CompanyID: config.CompanyID,
		Kind:      ChangeSetup,
		Path:      changePath(config.CompanyID, "setup", config.CompanyID),
		ID:        config.CompanyID,
	})
	return nil
}

// Employee operations
func (r *GORMStore) GetEmployee(ctx context.Context, companyID, employeeID string) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).Where("id = ? AND company_id = ?", employeeID, companyID).First(&employee).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get employee", "error", err, "employee_id", employeeID, "company_id", companyID)
		return nil, err
	}
	return &employee, nil
}

func (r *GORMStore) ListEmployees(ctx context.Context, companyID string) ([]models.Employee, error) {
	var employees []models.Employee
	if err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("name").Find(&employees).Error; err != nil {
		slog.Error("Failed to list employees", "error", err, "company_id", companyID)
		return nil, err
	}
	return employees, nil
}

func (r *GORMStore) SaveEmployee(ctx context.Context, employee *models.Employee) error {
	if err := r.db.WithContext(ctx).Save(employee).Error; err != nil {
		slog.Error("Failed to save employee", "error", err, "employee_id", employee.ID)
		return err
	}
	r.publish(ChangeEvent{
		CompanyID: employee.CompanyID,
		Kind:      ChangeEmployee,
		Path:      changePath(employee.CompanyID, "employees", employee.ID),
		ID:        employee.ID,
	})
	return nil
}

func (r *GORMStore) DeleteEmployee(ctx context.Context, companyID, employeeID string) error {
	if err := r.db.WithContext(ctx).Where("id = ? AND company_id = ?", employeeID, companyID).Delete(&models.Employee{}).Error; err != nil {
		slog.Error("Failed to delete employee", "error", err, "employee_id", employeeID)
		return err
	}
	slog.Info("Employee deleted", "employee_id", employeeID, "company_id", companyID)
	r.publish(ChangeEvent{
		CompanyID: companyID,
		Kind:      ChangeEmployee,
		Path:      changePath(companyID, "employees", employeeID),
		ID:        employeeID,
	})
	return nil
}

// Training draft operations
func (r *GORMStore) GetTrainingDraft(ctx context.Context, companyID, draftID string) (*models.TrainingDraft, error) {
	var draft models.TrainingDraft
	if err := r.db.WithContext(ctx).Where("id = ? AND company_id = ?", draftID, companyID).First(&draft).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get training draft", "error", err, "draft_id", draftID)
		return nil, err
	}
	return &draft, nil
}

func (r *GORMStore) SaveTrainingDraft(ctx context.Context, draft *models.TrainingDraft) error {
	if err := r.db.WithContext(ctx).Save(draft).Error; err != nil {
		slog.Error("Failed to save training draft", "error", err, "draft_id", draft.ID)
		return err
	}
	return nil
}

// Generated training operations
func (r *GORMStore) GetTraining(ctx context.Context, companyID, trainingID string) (*models.Training, error) {
	var training models.Training
	if err := r.db.WithContext(ctx).Where("id = ? AND company_id = ?", trainingID, companyID).First(&training).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get training", "error", err, "training_id", trainingID)
		return nil, err
	}
	return &training, nil
}

func (r *GORMStore) ListTrainings(ctx context.Context, companyID string) ([]models.Training, error) {
	var trainings []models.Training
	if err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("created_at DESC").Find(&trainings).Error; err != nil {
		slog.Error("Failed to list trainings", "error", err, "company_id", companyID)
		return nil, err
	}
	return trainings, nil
}

func (r *GORMStore) SaveTraining(ctx context.Context, training *models.Training) error {
	if err := r.db.WithContext(ctx).Save(training).Error; err != nil {
		slog.Error("Failed to save training", "error", err, "training_id", training.ID)
		return err
	}
	slog.Info("Training saved", "training_id", training.ID, "company_id", training.CompanyID, "provider", training.Provider)
	r.publish(ChangeEvent{
		CompanyID: training.CompanyID,
		Kind:      ChangeTraining,
		Path:      changePath(training.CompanyID, "trainings", training.ID),
		ID:        training.ID,
	})
	return nil
}

func (r *GORMStore) DeleteTraining(ctx context.Context, companyID, trainingID string) error {
	if err := r.db.WithContext(ctx).Where("id = ? AND company_id = ?", trainingID, companyID).Delete(&models.Training{}).Error; err != nil {
		slog.Error("Failed to delete training", "error", err, "training_id", trainingID)
		return err
	}
	slog.Info("Training deleted", "training_id", trainingID, "company_id", companyID)
	r.publish(ChangeEvent{
		CompanyID: companyID,
		Kind:      ChangeTraining,
		Path:      changePath(companyID, "trainings", trainingID),
		ID:        trainingID,
	})
	return nil
}

// Quiz result operations
func (r *GORMStore) SaveQuizResult(ctx context.Context, result *models.QuizResult) error {
	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		slog.Error("Failed to save quiz result", "error", err, "training_id", result.TrainingID, "employee_id", result.EmployeeID)
		return err
	}
	slog.Info("Quiz result saved", "result_id", result.ID, "employee_id", result.EmployeeID, "percentage", result.Percentage, "passed", result.Passed)
	r.publish(ChangeEvent{
		CompanyID: result.CompanyID,
		Kind:      ChangeQuizResult,
		Path:      changePath(result.CompanyID, "quiz_results", result.ID),
		ID:        result.ID,
	})
	return nil
}

func (r *GORMStore) ListQuizResults(ctx context.Context, companyID, employeeID string) ([]models.QuizResult, error) {
	var results []models.QuizResult
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if employeeID != "" {
		query = query.Where("employee_id = ?", employeeID)
	}
	if err := query.Order("created_at DESC").Find(&results).Error; err != nil {
		slog.Error("Failed to list quiz results", "error", err, "company_id", companyID, "employee_id", employeeID)
		return nil, err
	}
	return results, nil
}

// User operations
func (r *GORMStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		slog.Error("Failed to create user", "error", err)
		return err
	}
	slog.Info("User created", "user_id", user.ID, "email", user.Email)
	return nil
}

func (r *GORMStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by email", "error", err, "email", email)
		return nil, err
	}
	return &user, nil
}

func (r *GORMStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by ID", "error", err, "user_id", id)
		return nil, err
	}
	return &user, nil
}

// Token operations
func (r *GORMStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		slog.Error("Failed to create refresh token", "error", err)
		return err
	}
	return nil
}

func (r *GORMStore) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ? AND expires_at > ?", token, time.Now()).First(&refreshToken).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get refresh token", "error", err)
		return nil, err
	}
	return &refreshToken, nil
}

func (r *GORMStore) DeleteAllUserTokens(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		slog.Error("Failed to delete user refresh tokens", "error", err, "user_id", userID)
		return err
	}
	return nil
}

// Invitation operations
func (r *GORMStore) CreateInvitation(ctx context.Context, invitation *models.Invitation) error {
	if err := r.db.WithContext(ctx).Create(invitation).Error; err != nil {
		slog.Error("Failed to create invitation", "error", err)
		return err
	}
	slog.Info("Invitation created", "invitation_id", invitation.ID, "email", invitation.Email, "role", invitation.Role)
	r.publish(ChangeEvent{
		CompanyID: invitation.CompanyID,
		Kind:      ChangeInvitation,
		Path:      changePath(invitation.CompanyID, "invitations", invitation.ID),
		ID:        invitation.ID,
	})
	return nil
}

func (r *GORMStore) GetInvitationByToken(ctx context.Context, token string) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.WithContext(ctx).Where("token = ? AND expires_at > ?", token, time.Now()).First(&invitation).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get invitation by token", "error", err)
		return nil, err
	}
	return &invitation, nil
}

func (r *GORMStore) SaveInvitation(ctx context.Context, invitation *models.Invitation) error {
	if err := r.db.WithContext(ctx).Save(invitation).Error; err != nil {
		slog.Error("Failed to save invitation", "error", err, "invitation_id", invitation.ID)
		return err
	}
	return nil
}

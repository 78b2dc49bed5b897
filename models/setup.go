package models

import (
	"time"

	"gorm.io/gorm"
)

// CompanyProfile is the company step of the setup wizard
type CompanyProfile struct {
	Name               string   `json:"name"`
	Industry           string   `json:"industry"`
	Size               string   `json:"size"`
	Departments        []string `json:"departments"`
	SafetyRequirements []string `json:"safety_requirements"`
	DefaultLanguage    string   `json:"default_language"`
	SupportedLanguages []string `json:"supported_languages"`
}

// ProviderConfig holds one AI provider's tenant-supplied credentials.
// An empty APIKey means the provider is not configured.
type ProviderConfig struct {
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
	Endpoint string `json:"endpoint"`
}

// AIModelsConfig is the ai-models step: the primary provider id plus
// per-provider credentials
type AIModelsConfig struct {
	Primary string                    `json:"primary"`
	Configs map[string]ProviderConfig `json:"configs"`
}

// DataSourceConfig is the data-source step
type DataSourceConfig struct {
	Type     string            `json:"type"` // google_drive, s3, azure, sharepoint, local
	Settings map[string]string `json:"settings"`
}

// OnboardingConfig is the onboarding step
type OnboardingConfig struct {
	DefaultTrainings []string `json:"default_trainings"`
	ProbationDays    int      `json:"probation_days"`
	MentorAssignment bool     `json:"mentor_assignment"`
}

// SetupConfig is the per-company configuration written by the setup wizard.
// It drives prompt construction and provider selection for all generations.
type SetupConfig struct {
	CompanyID  string           `gorm:"type:uuid;primaryKey" json:"company_id"`
	Company    CompanyProfile   `gorm:"serializer:json" json:"company"`
	AIModels   AIModelsConfig   `gorm:"serializer:json" json:"ai_models"`
	DataSource DataSourceConfig `gorm:"serializer:json" json:"data_source"`
	Onboarding OnboardingConfig `gorm:"serializer:json" json:"onboarding"`
	Completed  bool             `gorm:"not null;default:false" json:"completed"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	DeletedAt  gorm.DeletedAt   `gorm:"index" json:"-"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Employee roles, from widest to narrowest visibility
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleSupervisor = "supervisor"
	RoleLead       = "lead"
	RoleTechnician = "technician"
	RoleOperator   = "operator"
	RoleEmployee   = "employee"
)

// Employee is a company roster entry with its training counters and history.
// Invariant maintained by quiz submission: CompletedTrainings increments by
// exactly one per passed submission, and TrainingHistory gains exactly one
// entry at the front with the computed percentage.
type Employee struct {
	ID                string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CompanyID         string         `gorm:"type:uuid;not null;index" json:"company_id"`
	Name              string         `gorm:"not null" json:"name"`
	Email             string         `gorm:"index" json:"email,omitempty"`
	Department        string         `gorm:"size:100" json:"department"`
	Position          string         `gorm:"size:100" json:"position"`
	Role              string         `gorm:"not null;default:'employee';check:role IN ('admin', 'manager', 'supervisor', 'lead', 'technician', 'operator', 'employee')" json:"role"`
	Supervisor        string         `gorm:"size:255" json:"supervisor,omitempty"`
	SupervisedIDs     []string       `gorm:"serializer:json" json:"supervised_ids,omitempty"`
	HireDate          string         `gorm:"size:10" json:"hire_date,omitempty"`
	PreferredLanguage string         `gorm:"size:10;default:'en'" json:"preferred_language"`

	CompletedTrainings int        `gorm:"not null;default:0" json:"completed_trainings"`
	TotalTrainings     int        `gorm:"not null;default:0" json:"total_trainings"`
	LastTraining       *time.Time `json:"last_training,omitempty"`
	Performance        *int       `json:"performance,omitempty"` // 0-100, absent until first review

	Certifications       []string              `gorm:"serializer:json" json:"certifications,omitempty"`
	TrainingHistory      []TrainingRecord      `gorm:"serializer:json" json:"training_history,omitempty"`
	RecommendedTrainings []RecommendedTraining `gorm:"serializer:json" json:"recommended_trainings,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TrainingRecord is one completed training in an employee's history,
// ordered most recent first
type TrainingRecord struct {
	Title      string   `json:"title"`
	Date       string   `json:"date"` // YYYY-MM-DD
	Score      int      `json:"score"`
	Status     string   `json:"status"`
	Language   string   `json:"language"`
	SourceDocs []string `json:"source_docs,omitempty"`
}

// RecommendedTraining is a suggested next training for an employee
type RecommendedTraining struct {
	Title    string `json:"title"`
	Reason   string `json:"reason"`
	Priority string `json:"priority"` // low, medium, high
}

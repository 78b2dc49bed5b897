package models

import (
	"time"

	"gorm.io/gorm"
)

// Training scopes
const (
	ScopeIndividual = "individual"
	ScopeDepartment = "department"
	ScopeCompany    = "company"
)

// Document is one uploaded file attached to a draft. ExtractedText is nil
// when extraction failed; the document still counts toward the draft so the
// author can see what was skipped.
type Document struct {
	Name          string  `json:"name"`
	Size          int64   `json:"size"`
	MimeType      string  `json:"mime_type"`
	ExtractedText *string `json:"extracted_text,omitempty"`
}

// QuizConfig controls quiz generation and scoring for a draft
type QuizConfig struct {
	QuestionCount int    `json:"question_count"` // 3, 5, 7 or 10
	PassingScore  int    `json:"passing_score"`  // 70, 80, 90 or 100
	Style         string `json:"style"`
}

// TrainingDraft is the in-progress authoring state, mutated field-by-field
// and consumed once by the generation pipeline
type TrainingDraft struct {
	ID                string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CompanyID         string         `gorm:"type:uuid;not null;index" json:"company_id"`
	Title             string         `gorm:"not null" json:"title"`
	Department        string         `gorm:"size:100" json:"department"`
	TrainingType      string         `gorm:"size:100" json:"training_type"`
	Description       string         `gorm:"type:text" json:"description"`
	Objectives        string         `gorm:"type:text" json:"objectives"`
	Language          string         `gorm:"size:10;default:'en'" json:"language"`
	Scope             string         `gorm:"not null;default:'individual';check:scope IN ('individual', 'department', 'company')" json:"scope"`
	AssignedEmployees []string       `gorm:"serializer:json" json:"assigned_employees,omitempty"`
	DueDate           string         `gorm:"size:10" json:"due_date,omitempty"`
	Documents         []Document     `gorm:"serializer:json" json:"documents,omitempty"`
	QuizConfig        QuizConfig     `gorm:"serializer:json" json:"quiz_config"`
	CreatedBy         string         `gorm:"type:uuid" json:"created_by"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// TrainingSection is one ordered section of generated training content
type TrainingSection struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	KeyPoints  []string `json:"keyPoints"`
	SourceDocs []string `json:"sourceDocs,omitempty"`
}

// TrainingContent is the prose half of a generated module
type TrainingContent struct {
	Introduction   string            `json:"introduction"`
	Sections       []TrainingSection `json:"sections"`
	SafetyNotes    []string          `json:"safetyNotes"`
	BestPractices  []string          `json:"bestPractices"`
	CommonMistakes []string          `json:"commonMistakes"`
}

// QuizQuestion is one multiple-choice question. Correct is a zero-based
// index into Options, always in [0,3].
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
	Type        string   `json:"type"`
	Source      string   `json:"source,omitempty"`
}

// GeneratedTraining is the JSON contract between the model reply and the
// rest of the platform
type GeneratedTraining struct {
	Training TrainingContent `json:"training"`
	Quiz     []QuizQuestion  `json:"quiz"`
}

// Training is a persisted generated module ready for delivery
type Training struct {
	ID           string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CompanyID    string            `gorm:"type:uuid;not null;index" json:"company_id"`
	DraftID      string            `gorm:"type:uuid;index" json:"draft_id"`
	Title        string            `gorm:"not null" json:"title"`
	Department   string            `gorm:"size:100" json:"department"`
	Language     string            `gorm:"size:10" json:"language"`
	Scope        string            `gorm:"size:20" json:"scope"`
	Content      GeneratedTraining `gorm:"serializer:json" json:"content"`
	PassingScore int               `gorm:"not null;default:80" json:"passing_score"`
	Provider     string            `gorm:"size:50" json:"provider"` // provider id that produced the content, "fallback" when substituted
	CreatedBy    string            `gorm:"type:uuid" json:"created_by"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	DeletedAt    gorm.DeletedAt    `gorm:"index" json:"-"`
}

// QuizResult is one scored quiz submission
type QuizResult struct {
	ID         string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CompanyID  string         `gorm:"type:uuid;not null;index" json:"company_id"`
	TrainingID string         `gorm:"type:uuid;not null;index" json:"training_id"`
	EmployeeID string         `gorm:"type:uuid;not null;index" json:"employee_id"`
	Answers    map[int]int    `gorm:"serializer:json" json:"answers"`
	Score      int            `gorm:"not null" json:"score"`
	Total      int            `gorm:"not null" json:"total"`
	Percentage int            `gorm:"not null" json:"percentage"`
	Passed     bool           `gorm:"not null" json:"passed"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

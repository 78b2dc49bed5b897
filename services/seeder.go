package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
	"github.com/TheGringo-ai/LineSmart-sub000/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const seedCompanyEmail = "admin@linesmart.demo"

// DatabaseSeeder handles database seeding operations
type DatabaseSeeder struct {
	store repository.Store
}

// NewDatabaseSeeder creates a new database seeder
func NewDatabaseSeeder(store repository.Store) *DatabaseSeeder {
	return &DatabaseSeeder{store: store}
}

// SeedDatabase seeds the database with a demo company (idempotent)
func (s *DatabaseSeeder) SeedDatabase() error {
	ctx := context.Background()

	// The demo admin account doubles as the seeding marker
	existing, err := s.store.GetUserByEmail(ctx, seedCompanyEmail)
	if err != nil {
		return fmt.Errorf("error checking seed user: %w", err)
	}
	if existing != nil {
		slog.Info("Database seeding already completed, skipping")
		return nil
	}

	companyID := uuid.New().String()

	// Hash default password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.User{
		CompanyID: companyID,
		Email:     seedCompanyEmail,
		Password:  string(hashedPassword),
		FullName:  "Demo Admin",
		Role:      models.RoleAdmin,
	}
	if err := s.store.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("failed to create demo admin: %w", err)
	}
	slog.Info("Created user", "email", admin.Email)

	config := &models.SetupConfig{
		CompanyID: companyID,
		Company: models.CompanyProfile{
			Name:               "Demo Manufacturing Co",
			Industry:           "Manufacturing",
			Size:               "51-200 employees",
			Departments:        []string{"Production", "Maintenance", "Safety"},
			SafetyRequirements: []string{"OSHA Compliance", "ISO 45001", "Environmental Health"},
			DefaultLanguage:    "en",
			SupportedLanguages: []string{"en", "es", "fr", "pt", "de"},
		},
		Onboarding: models.OnboardingConfig{
			ProbationDays:    90,
			MentorAssignment: true,
		},
		Completed: true,
	}
	if err := s.store.SaveSetupConfig(ctx, config); err != nil {
		return fmt.Errorf("failed to create demo setup config: %w", err)
	}
	slog.Info("Created demo company config", "company_id", companyID)

	employees := sampleEmployees(companyID)

	// Supervision links are resolved by generated ID after the fact
	byName := make(map[string]*models.Employee, len(employees))
	for _, employee := range employees {
		if err := s.store.SaveEmployee(ctx, employee); err != nil {
			slog.Error("Failed to seed employee", "name", employee.Name, "error", err)
			continue
		}
		byName[employee.Name] = employee
		slog.Info("Created employee", "name", employee.Name, "department", employee.Department)
	}

	if mike, ok := byName["Mike Rodriguez"]; ok {
		if john, ok := byName["John Smith"]; ok {
			mike.SupervisedIDs = []string{john.ID}
			if err := s.store.SaveEmployee(ctx, mike); err != nil {
				slog.Error("Failed to link supervised employees", "name", mike.Name, "error", err)
			}
		}
	}
	if lisa, ok := byName["Lisa Chen"]; ok {
		var ids []string
		for _, name := range []string{"Sarah Johnson", "María García"} {
			if e, ok := byName[name]; ok {
				ids = append(ids, e.ID)
			}
		}
		lisa.SupervisedIDs = ids
		if err := s.store.SaveEmployee(ctx, lisa); err != nil {
			slog.Error("Failed to link supervised employees", "name", lisa.Name, "error", err)
		}
	}

	slog.Info("Database seeding completed successfully", "company_id", companyID)
	return nil
}

func sampleEmployees(companyID string) []*models.Employee {
	lastJohn := time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC)
	lastSarah := time.Date(2024, 7, 18, 0, 0, 0, 0, time.UTC)
	lastMike := time.Date(2024, 7, 22, 0, 0, 0, 0, time.UTC)
	lastMaria := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)
	lastLisa := time.Date(2024, 7, 25, 0, 0, 0, 0, time.UTC)
	perf := func(v int) *int { return &v }

	return []*models.Employee{
		{
			CompanyID:          companyID,
			Name:               "John Smith",
			Department:         "Maintenance",
			Position:           "Senior Technician",
			Role:               models.RoleEmployee,
			Supervisor:         "Mike Rodriguez",
			HireDate:           "2023-01-15",
			PreferredLanguage:  "en",
			CompletedTrainings: 8,
			TotalTrainings:     12,
			LastTraining:       &lastJohn,
			Performance:        perf(92),
			Certifications:     []string{"OSHA 30", "Electrical Safety"},
			TrainingHistory: []models.TrainingRecord{
				{Title: "Lockout/Tagout Procedures", Date: "2024-07-20", Score: 95, Status: "completed", Language: "en", SourceDocs: []string{"Manual_LOTO_v2.pdf", "Safety_Protocol_2024.docx"}},
				{Title: "Equipment Maintenance", Date: "2024-07-15", Score: 88, Status: "completed", Language: "en", SourceDocs: []string{"Maintenance_Guide.pdf"}},
				{Title: "Safety Protocols", Date: "2024-07-10", Score: 92, Status: "completed", Language: "en", SourceDocs: []string{"Company_Safety_Manual.pdf", "OSHA_Guidelines.pdf"}},
			},
			RecommendedTrainings: []models.RecommendedTraining{
				{Title: "Advanced Hydraulic Systems", Reason: "Based on recent equipment updates and internal documentation analysis", Priority: "high"},
				{Title: "Emergency Response", Reason: "Due for annual recertification per company policy", Priority: "medium"},
			},
		},
		{
			CompanyID:          companyID,
			Name:               "Sarah Johnson",
			Department:         "Production",
			Position:           "Line Operator",
			Role:               models.RoleEmployee,
			Supervisor:         "Lisa Chen",
			HireDate:           "2023-06-01",
			PreferredLanguage:  "en",
			CompletedTrainings: 6,
			TotalTrainings:     10,
			LastTraining:       &lastSarah,
			Performance:        perf(85),
			Certifications:     []string{"Food Safety"},
			TrainingHistory: []models.TrainingRecord{
				{Title: "SQF Compliance", Date: "2024-07-18", Score: 82, Status: "completed", Language: "en", SourceDocs: []string{"SQF_Manual.pdf"}},
				{Title: "Quality Control", Date: "2024-07-12", Score: 88, Status: "completed", Language: "en", SourceDocs: []string{"Quality_Guidelines.pdf"}},
			},
			RecommendedTrainings: []models.RecommendedTraining{
				{Title: "Advanced Quality Control", Reason: "Based on recent quality metrics", Priority: "high"},
				{Title: "Team Leadership", Reason: "Career development opportunity", Priority: "low"},
			},
		},
		{
			CompanyID:          companyID,
			Name:               "Mike Rodriguez",
			Department:         "Safety",
			Position:           "Safety Coordinator",
			Role:               models.RoleSupervisor,
			Supervisor:         "Director of Operations",
			HireDate:           "2022-11-10",
			PreferredLanguage:  "en",
			CompletedTrainings: 15,
			TotalTrainings:     18,
			LastTraining:       &lastMike,
			Performance:        perf(96),
			Certifications:     []string{"OSHA 30", "First Aid", "Environmental Safety"},
			TrainingHistory: []models.TrainingRecord{
				{Title: "Hazard Communication", Date: "2024-07-22", Score: 98, Status: "completed", Language: "en", SourceDocs: []string{"OSHA_Standards.pdf"}},
				{Title: "Incident Investigation", Date: "2024-07-17", Score: 94, Status: "completed", Language: "en", SourceDocs: []string{"Investigation_Manual.pdf"}},
			},
			RecommendedTrainings: []models.RecommendedTraining{
				{Title: "Industrial Hygiene", Reason: "Skill enhancement opportunity", Priority: "medium"},
			},
		},
		{
			CompanyID:          companyID,
			Name:               "María García",
			Department:         "Production",
			Position:           "Line Operator",
			Role:               models.RoleEmployee,
			Supervisor:         "Lisa Chen",
			HireDate:           "2024-02-15",
			PreferredLanguage:  "es",
			CompletedTrainings: 3,
			TotalTrainings:     8,
			LastTraining:       &lastMaria,
			Performance:        perf(78),
			Certifications:     []string{"Basic Safety"},
			TrainingHistory: []models.TrainingRecord{
				{Title: "Orientación de Seguridad", Date: "2024-07-10", Score: 85, Status: "completed", Language: "es", SourceDocs: []string{"Manual_Seguridad_ES.pdf"}},
				{Title: "Procedimientos de Calidad", Date: "2024-06-20", Score: 82, Status: "completed", Language: "es", SourceDocs: []string{"Calidad_Manual_ES.pdf"}},
			},
			RecommendedTrainings: []models.RecommendedTraining{
				{Title: "Seguridad Alimentaria Avanzada", Reason: "Necesario para certificación departamental", Priority: "high"},
				{Title: "Comunicación en el Lugar de Trabajo", Reason: "Mejora de habilidades de comunicación", Priority: "medium"},
			},
		},
		{
			CompanyID:          companyID,
			Name:               "Lisa Chen",
			Department:         "Production",
			Position:           "Production Supervisor",
			Role:               models.RoleSupervisor,
			Supervisor:         "Director of Operations",
			HireDate:           "2021-08-10",
			PreferredLanguage:  "en",
			CompletedTrainings: 20,
			TotalTrainings:     22,
			LastTraining:       &lastLisa,
			Performance:        perf(94),
			Certifications:     []string{"Production Management", "Lean Manufacturing", "Food Safety"},
			TrainingHistory: []models.TrainingRecord{
				{Title: "Leadership Development", Date: "2024-07-25", Score: 96, Status: "completed", Language: "en", SourceDocs: []string{"Leadership_Guide.pdf"}},
			},
			RecommendedTrainings: []models.RecommendedTraining{
				{Title: "Advanced Lean Manufacturing", Reason: "Process improvement initiative", Priority: "medium"},
			},
		},
	}
}

package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
	"github.com/TheGringo-ai/LineSmart-sub000/repository"
	"github.com/go-chi/chi/v5"
)

// SetupEndpoints exposes the setup wizard. The persisted config is the
// source of truth; the current step is transient UI state kept per
// company.
type SetupEndpoints struct {
	store repository.Store

	mutex sync.Mutex
	steps map[string]string
}

type WizardStateResponse struct {
	Step      string             `json:"step"`
	StepIndex int                `json:"step_index"`
	StepCount int                `json:"step_count"`
	Config    models.SetupConfig `json:"config"`
}

func NewSetupEndpoints(store repository.Store) *SetupEndpoints {
	return &SetupEndpoints{
		store: store,
		steps: make(map[string]string),
	}
}

func (e *SetupEndpoints) RegisterRoutes(r chi.Router) {
	r.Get("/catalog", e.CatalogHandler)
	r.Route("/setup", func(r chi.Router) {
		r.Get("/", e.GetWizardHandler)
		r.Post("/next", e.NextHandler)
		r.Post("/previous", e.PreviousHandler)
		r.Put("/company", e.UpdateCompanyHandler)
		r.Post("/company/industry-defaults", e.IndustryDefaultsHandler)
		r.Put("/ai-models", e.UpdateAIModelsHandler)
		r.Put("/data-source", e.UpdateDataSourceHandler)
		r.Put("/onboarding", e.UpdateOnboardingHandler)
	})
}

// CatalogHandler serves the fixed pick-lists the setup and authoring UIs
// are built from
func (e *SetupEndpoints) CatalogHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"industries":          Industries,
		"company_sizes":       CompanySizes,
		"departments":         StandardDepartments,
		"safety_requirements": SafetyRequirements,
		"training_types":      TrainingTypes,
		"languages":           Languages,
	})
}

// wizard loads the caller's wizard, applying any transient step override
func (e *SetupEndpoints) wizard(r *http.Request, user *models.User) (*SetupWizard, error) {
	config, err := e.store.GetSetupConfig(r.Context(), user.CompanyID)
	if err != nil {
		return nil, err
	}

	var wizard *SetupWizard
	if config == nil {
		wizard = NewSetupWizard(user.CompanyID)
	} else {
		wizard = ResumeSetupWizard(config)
	}

	e.mutex.Lock()
	if step, ok := e.steps[user.CompanyID]; ok {
		wizard.Step = step
	}
	e.mutex.Unlock()
	return wizard, nil
}

func (e *SetupEndpoints) persist(w http.ResponseWriter, r *http.Request, user *models.User, wizard *SetupWizard) bool {
	e.mutex.Lock()
	e.steps[user.CompanyID] = wizard.Step
	e.mutex.Unlock()

	if err := e.store.SaveSetupConfig(r.Context(), &wizard.Config); err != nil {
		slog.Error("Failed to save setup config", "error", err, "company_id", user.CompanyID)
		http.Error(w, "Failed to save setup config", http.StatusInternalServerError)
		return false
	}
	return true
}

func (e *SetupEndpoints) respond(w http.ResponseWriter, wizard *SetupWizard) {
	index, count := wizard.Progress()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(WizardStateResponse{
		Step:      wizard.Step,
		StepIndex: index,
		StepCount: count,
		Config:    wizard.Config,
	})
}

func requireUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return nil, false
	}
	return user, true
}

func (e *SetupEndpoints) GetWizardHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	wizard, err := e.wizard(r, user)
	if err != nil {
		slog.Error("Failed to load setup config", "error", err, "company_id", user.CompanyID)
		http.Error(w, "Failed to load setup config", http.StatusInternalServerError)
		return
	}
	e.respond(w, wizard)
}

func (e *SetupEndpoints) NextHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !RoleCan(user.Role, CapManageSettings) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	wizard, err := e.wizard(r, user)
	if err != nil {
		http.Error(w, "Failed to load setup config", http.StatusInternalServerError)
		return
	}

	if err := wizard.Next(); err != nil {
		if errors.Is(err, ErrCompanyProfileIncomplete) || errors.Is(err, ErrNoPrimaryProvider) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("Wizard step advance failed", "error", err, "company_id", user.CompanyID)
		http.Error(w, "Failed to advance setup", http.StatusInternalServerError)
		return
	}

	if !e.persist(w, r, user, wizard) {
		return
	}
	e.respond(w, wizard)

	slog.Info("Setup wizard advanced", "company_id", user.CompanyID, "step", wizard.Step, "completed", wizard.Config.Completed)
}

func (e *SetupEndpoints) PreviousHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !RoleCan(user.Role, CapManageSettings) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	wizard, err := e.wizard(r, user)
	if err != nil {
		http.Error(w, "Failed to load setup config", http.StatusInternalServerError)
		return
	}

	wizard.Previous()
	if !e.persist(w, r, user, wizard) {
		return
	}
	e.respond(w, wizard)
}

func (e *SetupEndpoints) UpdateCompanyHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !RoleCan(user.Role, CapManageSettings) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var profile models.CompanyProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	wizard, err := e.wizard(r, user)
	if err != nil {
		http.Error(w, "Failed to load setup config", http.StatusInternalServerError)
		return
	}

	wizard.UpdateCompany(profile)
	if !e.persist(w, r, user, wizard) {
		return
	}
	e.respond(w, wizard)
}

func (e *SetupEndpoints) IndustryDefaultsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !RoleCan(user.Role, CapManageSettings) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	wizard, err := e.wizard(r, user)
	if err != nil {
		http.Error(w, "Failed to load setup config", http.StatusInternalServerError)
		return
	}

	wizard.ApplyIndustryDefaults()
	if !e.persist(w, r, user, wizard) {
		return
	}
	e.respond(w, wizard)

	slog.Info("Applied industry defaults", "company_id", user.CompanyID, "industry", wizard.Config.Company.Industry)
}

func (e *SetupEndpoints) UpdateAIModelsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !RoleCan(user.Role, CapManageSettings) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var aiModels models.AIModelsConfig
	if err := json.NewDecoder(r.Body).Decode(&aiModels); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	wizard, err := e.wizard(r, user)
	if err != nil {
		http.Error(w, "Failed to load setup config", http.StatusInternalServerError)
		return
	}

	wizard.SetPrimaryProvider(aiModels.Primary)
	for id, config := range aiModels.Configs {
		wizard.SetProviderConfig(id, config)
	}
	if !e.persist(w, r, user, wizard) {
		return
	}
	e.respond(w, wizard)
}

func (e *SetupEndpoints) UpdateDataSourceHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !RoleCan(user.Role, CapManageSettings) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var dataSource models.DataSourceConfig
	if err := json.NewDecoder(r.Body).Decode(&dataSource); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	wizard, err := e.wizard(r, user)
	if err != nil {
		http.Error(w, "Failed to load setup config", http.StatusInternalServerError)
		return
	}

	wizard.UpdateDataSource(dataSource)
	if !e.persist(w, r, user, wizard) {
		return
	}
	e.respond(w, wizard)
}

func (e *SetupEndpoints) UpdateOnboardingHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !RoleCan(user.Role, CapManageSettings) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var onboarding models.OnboardingConfig
	if err := json.NewDecoder(r.Body).Decode(&onboarding); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	wizard, err := e.wizard(r, user)
	if err != nil {
		http.Error(w, "Failed to load setup config", http.StatusInternalServerError)
		return
	}

	wizard.UpdateOnboarding(onboarding)
	if !e.persist(w, r, user, wizard) {
		return
	}
	e.respond(w, wizard)
}

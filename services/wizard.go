package services

import (
	"errors"
	"fmt"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
)

// Setup wizard steps, in order
const (
	StepWelcome    = "welcome"
	StepCompany    = "company"
	StepAIModels   = "ai-models"
	StepDataSource = "data-source"
	StepOnboarding = "onboarding"
	StepComplete   = "complete"
)

var setupSteps = []string{StepWelcome, StepCompany, StepAIModels, StepDataSource, StepOnboarding, StepComplete}

var (
	ErrCompanyProfileIncomplete = errors.New("company name and industry are required")
	ErrNoPrimaryProvider        = errors.New("a primary AI provider must be selected")
	ErrUnknownStep              = errors.New("unknown setup step")
)

// SetupWizard walks a company through initial configuration. Each step's
// data lands in the embedded setup config; Completed latches once the
// final step is reached and survives later edits.
type SetupWizard struct {
	Step   string             `json:"step"`
	Config models.SetupConfig `json:"config"`
}

// NewSetupWizard starts a wizard at the welcome step with platform
// defaults filled in
func NewSetupWizard(companyID string) *SetupWizard {
	return &SetupWizard{
		Step: StepWelcome,
		Config: models.SetupConfig{
			CompanyID: companyID,
			Company: models.CompanyProfile{
				DefaultLanguage:    "en",
				SupportedLanguages: []string{"en", "es", "fr", "pt", "de"},
			},
			AIModels: models.AIModelsConfig{
				Primary: "",
				Configs: map[string]models.ProviderConfig{},
			},
			Onboarding: models.OnboardingConfig{
				ProbationDays:    90,
				MentorAssignment: true,
			},
		},
	}
}

// ResumeSetupWizard rebuilds a wizard around an existing config. Completed
// configs resume at the final step, everything else at the first step
// whose data is still missing.
func ResumeSetupWizard(config *models.SetupConfig) *SetupWizard {
	wizard := &SetupWizard{Step: StepWelcome, Config: *config}
	if config.Completed {
		wizard.Step = StepComplete
		return wizard
	}
	if config.Company.Name != "" && config.Company.Industry != "" {
		wizard.Step = StepAIModels
	}
	if wizard.Step == StepAIModels && config.AIModels.Primary != "" {
		wizard.Step = StepDataSource
	}
	return wizard
}

func stepIndex(step string) int {
	for i, s := range setupSteps {
		if s == step {
			return i
		}
	}
	return -1
}

// Progress reports the current position as (step number, total steps),
// one-based
func (w *SetupWizard) Progress() (int, int) {
	return stepIndex(w.Step) + 1, len(setupSteps)
}

// CanAdvance checks the current step's completion requirement
func (w *SetupWizard) CanAdvance() error {
	switch w.Step {
	case StepCompany:
		if w.Config.Company.Name == "" || w.Config.Company.Industry == "" {
			return ErrCompanyProfileIncomplete
		}
	case StepAIModels:
		if w.Config.AIModels.Primary == "" {
			return ErrNoPrimaryProvider
		}
	}
	return nil
}

// Next moves to the following step if the current step's requirement is
// met. Reaching the final step latches Completed.
func (w *SetupWizard) Next() error {
	index := stepIndex(w.Step)
	if index == -1 {
		return fmt.Errorf("%w: %s", ErrUnknownStep, w.Step)
	}
	if index == len(setupSteps)-1 {
		return nil
	}
	if err := w.CanAdvance(); err != nil {
		return err
	}

	w.Step = setupSteps[index+1]
	if w.Step == StepComplete {
		w.Config.Completed = true
	}
	return nil
}

// Previous moves back one step. Completed stays latched even when the
// company revisits earlier steps.
func (w *SetupWizard) Previous() {
	index := stepIndex(w.Step)
	if index > 0 {
		w.Step = setupSteps[index-1]
	}
}

// UpdateCompany replaces the company profile section
func (w *SetupWizard) UpdateCompany(profile models.CompanyProfile) {
	w.Config.Company = profile
}

// ApplyIndustryDefaults fills departments, safety requirements and default
// onboarding trainings from the industry preset. Explicit selections made
// afterwards overwrite these.
func (w *SetupWizard) ApplyIndustryDefaults() {
	suggestions := GetIndustrySuggestions(w.Config.Company.Industry)
	w.Config.Company.Departments = suggestions.Departments
	w.Config.Company.SafetyRequirements = suggestions.SafetyRequirements
	w.Config.Onboarding.DefaultTrainings = suggestions.DefaultTrainings
}

// ToggleDepartment adds or removes one department selection
func (w *SetupWizard) ToggleDepartment(department string, selected bool) {
	w.Config.Company.Departments = toggleEntry(w.Config.Company.Departments, department, selected)
}

// ToggleSafetyRequirement adds or removes one safety requirement
func (w *SetupWizard) ToggleSafetyRequirement(requirement string, selected bool) {
	w.Config.Company.SafetyRequirements = toggleEntry(w.Config.Company.SafetyRequirements, requirement, selected)
}

// SetPrimaryProvider selects the provider tried first during generation
func (w *SetupWizard) SetPrimaryProvider(id string) {
	w.Config.AIModels.Primary = id
}

// SetProviderConfig stores one provider's credentials
func (w *SetupWizard) SetProviderConfig(id string, config models.ProviderConfig) {
	if w.Config.AIModels.Configs == nil {
		w.Config.AIModels.Configs = map[string]models.ProviderConfig{}
	}
	w.Config.AIModels.Configs[id] = config
}

// UpdateDataSource replaces the data source section
func (w *SetupWizard) UpdateDataSource(dataSource models.DataSourceConfig) {
	w.Config.DataSource = dataSource
}

// UpdateOnboarding replaces the onboarding section
func (w *SetupWizard) UpdateOnboarding(onboarding models.OnboardingConfig) {
	w.Config.Onboarding = onboarding
}

func toggleEntry(entries []string, entry string, selected bool) []string {
	filtered := entries[:0]
	for _, e := range entries {
		if e != entry {
			filtered = append(filtered, e)
		}
	}
	if selected {
		filtered = append(filtered, entry)
	}
	return filtered
}

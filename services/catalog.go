package services

// Platform catalog data: the fixed pick-lists that drive the setup wizard
// and training authoring. These are platform constants, not tenant data.

var Industries = []string{
	"Manufacturing", "Food & Beverage", "Pharmaceutical", "Automotive",
	"Aerospace", "Chemical", "Construction", "Energy", "Healthcare", "Technology",
}

var CompanySizes = []string{
	"1-50 employees", "51-200 employees", "201-1000 employees",
	"1001-5000 employees", "5000+ employees",
}

var StandardDepartments = []string{
	"Production", "Maintenance", "Quality Assurance", "Safety", "Warehouse",
	"Sanitation", "Management", "HR", "Engineering", "R&D", "Logistics",
}

var SafetyRequirements = []string{
	"OSHA Compliance", "ISO 45001", "SQF Food Safety", "HACCP", "GMP",
	"FDA Regulations", "Environmental Health", "Fire Safety", "Chemical Safety",
}

var TrainingTypes = []string{
	"Safety Procedures", "Equipment Quality", "SQF Compliance", "Disciplinary Guidelines",
	"Technical Operations", "Emergency Procedures", "Quality Control", "Maintenance Protocols",
	"Food Safety", "Environmental Health", "Onboarding Orientation", "Leadership Development",
}

// Language is one supported training language
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var Languages = []Language{
	{Code: "en", Name: "English"},
	{Code: "es", Name: "Español"},
	{Code: "fr", Name: "Français"},
	{Code: "pt", Name: "Português"},
	{Code: "de", Name: "Deutsch"},
	{Code: "it", Name: "Italiano"},
	{Code: "zh", Name: "中文"},
	{Code: "ja", Name: "日本語"},
	{Code: "ko", Name: "한국어"},
	{Code: "ar", Name: "العربية"},
}

// LanguageName returns the display name for a language code, falling back
// to the code itself for unknown languages
func LanguageName(code string) string {
	for _, lang := range Languages {
		if lang.Code == code {
			return lang.Name
		}
	}
	return code
}

// IndustrySuggestions are the defaults applied when a company picks its
// industry during setup
type IndustrySuggestions struct {
	Departments        []string `json:"departments"`
	SafetyRequirements []string `json:"safety_requirements"`
	DefaultTrainings   []string `json:"default_trainings"`
}

var industrySuggestions = map[string]IndustrySuggestions{
	"Manufacturing": {
		Departments:        []string{"Production", "Maintenance", "Quality Assurance", "Safety", "Engineering"},
		SafetyRequirements: []string{"OSHA Compliance", "ISO 45001", "Environmental Health"},
		DefaultTrainings:   []string{"Safety Orientation", "Equipment Training", "Quality Procedures"},
	},
	"Food & Beverage": {
		Departments:        []string{"Production", "Quality Assurance", "Sanitation", "Warehouse", "Maintenance"},
		SafetyRequirements: []string{"SQF Food Safety", "HACCP", "FDA Regulations", "GMP"},
		DefaultTrainings:   []string{"Food Safety Fundamentals", "HACCP Principles", "Sanitation Procedures"},
	},
	"Healthcare": {
		Departments:        []string{"Clinical", "Nursing", "Administration", "Maintenance", "Safety"},
		SafetyRequirements: []string{"OSHA Compliance", "HIPAA", "Infection Control"},
		DefaultTrainings:   []string{"HIPAA Training", "Infection Control", "Patient Safety"},
	},
}

// GetIndustrySuggestions returns industry defaults, with Manufacturing as
// the catch-all for industries without a curated preset
func GetIndustrySuggestions(industry string) IndustrySuggestions {
	if suggestions, ok := industrySuggestions[industry]; ok {
		return suggestions
	}
	return industrySuggestions["Manufacturing"]
}

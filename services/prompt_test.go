package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
)

func promptDraft() *models.TrainingDraft {
	text := "Always lock out the machine before maintenance."
	return &models.TrainingDraft{
		ID:           "draft-1",
		CompanyID:    "company-1",
		Title:        "Lockout/Tagout Procedures",
		Department:   "Maintenance",
		TrainingType: "Safety Procedures",
		Description:  "Annual LOTO refresher",
		Objectives:   "Identify energy sources and apply locks",
		Language:     "en",
		Scope:        models.ScopeIndividual,
		Documents: []models.Document{
			{Name: "LOTO_Manual.pdf", MimeType: "application/pdf", ExtractedText: &text},
		},
		QuizConfig: models.QuizConfig{QuestionCount: 5, PassingScore: 80},
	}
}

func promptCompany() *models.CompanyProfile {
	return &models.CompanyProfile{
		Name:               "Acme Manufacturing",
		Industry:           "Manufacturing",
		SafetyRequirements: []string{"OSHA Compliance", "ISO 45001"},
	}
}

func TestPromptBuildDeterministic(t *testing.T) {
	builder := NewPromptBuilder()
	draft := promptDraft()
	company := promptCompany()
	names := []string{"John Smith", "Sarah Johnson"}

	first := builder.Build(draft, company, names, nil)
	second := builder.Build(draft, company, names, nil)
	if first != second {
		t.Fatal("identical inputs must produce byte-identical prompts")
	}

	for _, want := range []string{
		"Training Title: Lockout/Tagout Procedures",
		"Company: Acme Manufacturing",
		"Industry: Manufacturing",
		"Language: English",
		"John Smith, Sarah Johnson",
		"OSHA Compliance, ISO 45001",
		"--- LOTO_Manual.pdf ---",
		"Generate exactly 5 multiple-choice quiz questions with 4 options each.",
		`"correct": 1`,
	} {
		if !strings.Contains(first, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestPromptTargetLineByScope(t *testing.T) {
	builder := NewPromptBuilder()
	company := promptCompany()

	tests := []struct {
		name  string
		scope string
		names []string
		want  string
	}{
		{name: "Department scope", scope: models.ScopeDepartment, want: "All Maintenance department employees"},
		{name: "Company scope", scope: models.ScopeCompany, want: "All company employees"},
		{name: "Individual scope with names", scope: models.ScopeIndividual, names: []string{"María García"}, want: "Target: María García"},
		{name: "Individual scope without names", scope: models.ScopeIndividual, want: "Assigned employees"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := promptDraft()
			draft.Scope = tt.scope
			prompt := builder.Build(draft, company, tt.names, nil)
			if !strings.Contains(prompt, tt.want) {
				t.Errorf("prompt missing %q", tt.want)
			}
		})
	}
}

func TestPromptDocumentBudget(t *testing.T) {
	builder := NewPromptBuilder()
	draft := promptDraft()
	big := strings.Repeat("safety procedure text ", 2000) // well past the budget
	draft.Documents = []models.Document{
		{Name: "Huge_Manual.pdf", ExtractedText: &big},
		{Name: "Never_Reached.pdf", ExtractedText: &big},
	}

	prompt := builder.Build(draft, promptCompany(), nil, nil)

	if !strings.Contains(prompt, "[content truncated]") {
		t.Error("oversized documents must be marked truncated")
	}
	if strings.Contains(prompt, "Never_Reached.pdf") {
		t.Error("documents past the budget must be dropped entirely")
	}

	excerpt := builder.documentExcerpt(draft.Documents)
	if len(excerpt) > MaxDocumentChars+len("\n\n[content truncated]") {
		t.Errorf("excerpt length %d exceeds the budget", len(excerpt))
	}
}

func TestPromptDocumentBudgetBoundary(t *testing.T) {
	builder := NewPromptBuilder()

	// Size the first document so only a few characters of budget remain
	// when the second document's long header would be written.
	firstHeader := len("\n--- First.pdf ---\n")
	first := strings.Repeat("a", MaxDocumentChars-firstHeader-3)
	second := strings.Repeat("b", 100)
	documents := []models.Document{
		{Name: "First.pdf", ExtractedText: &first},
		{Name: "Second_Document_With_A_Very_Long_Name.pdf", ExtractedText: &second},
	}

	excerpt := builder.documentExcerpt(documents)
	limit := MaxDocumentChars + len("\n\n[content truncated]")
	if len(excerpt) > limit {
		t.Errorf("excerpt length %d exceeds budget plus marker %d", len(excerpt), limit)
	}
	if !strings.Contains(excerpt, "[content truncated]") {
		t.Error("dropping a document at the budget edge must be marked truncated")
	}
	if strings.Contains(excerpt, "Second_Document") {
		t.Error("a header that does not fit must not be written")
	}
}

func TestPromptTruncatesOnRuneBoundary(t *testing.T) {
	builder := NewPromptBuilder()
	header := len("\n--- Multibyte.pdf ---\n")
	text := strings.Repeat("ü", MaxDocumentChars) // two bytes per rune
	documents := []models.Document{
		{Name: "Multibyte.pdf", ExtractedText: &text},
	}

	excerpt := builder.documentExcerpt(documents)
	if !utf8.ValidString(excerpt) {
		t.Fatal("truncation must not split a multibyte character")
	}
	want := MaxDocumentChars - header - 1 + len("\n\n[content truncated]") + header
	if len(excerpt) != want {
		t.Errorf("excerpt length = %d, want %d after backing off the split rune", len(excerpt), want)
	}
}

func TestPromptIncludesRelevanceAnalysis(t *testing.T) {
	builder := NewPromptBuilder()
	draft := promptDraft()
	analysis := &RAGAnalysis{
		RelevantDocuments: []DocumentRelevance{
			{Name: "LOTO_Manual.pdf", Relevance: 0.75, Chunks: 2},
		},
	}

	prompt := builder.Build(draft, promptCompany(), nil, analysis)
	if !strings.Contains(prompt, "Document relevance analysis") {
		t.Error("prompt missing the relevance analysis block")
	}
	if !strings.Contains(prompt, "LOTO_Manual.pdf: relevance 0.75 across 2 chunks") {
		t.Error("prompt missing the ranked document line")
	}

	without := builder.Build(draft, promptCompany(), nil, &RAGAnalysis{})
	if strings.Contains(without, "Document relevance analysis") {
		t.Error("empty analysis must not emit the block")
	}
}

func TestPromptSkipsFailedExtractions(t *testing.T) {
	builder := NewPromptBuilder()
	draft := promptDraft()
	ok := "readable text"
	draft.Documents = []models.Document{
		{Name: "corrupt.pdf", ExtractedText: nil},
		{Name: "good.pdf", ExtractedText: &ok},
	}

	prompt := builder.Build(draft, promptCompany(), nil, nil)
	if strings.Contains(prompt, "corrupt.pdf") {
		t.Error("documents with failed extraction must not appear in the excerpt")
	}
	if !strings.Contains(prompt, "good.pdf") {
		t.Error("readable documents must appear in the excerpt")
	}
}

func TestPromptDefaultQuestionCount(t *testing.T) {
	builder := NewPromptBuilder()
	draft := promptDraft()
	draft.QuizConfig.QuestionCount = 0

	prompt := builder.Build(draft, promptCompany(), nil, nil)
	if !strings.Contains(prompt, "Generate exactly 5 multiple-choice quiz questions") {
		t.Error("missing question count must fall back to 5")
	}
}

package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
)

// MaxDocumentChars caps the document excerpt portion of a prompt so the
// request stays within provider context limits
const MaxDocumentChars = 20000

const truncationMarker = "\n\n[content truncated]"

// responseSchema is the fixed instruction block appended to every prompt.
// The parser and fallback content depend on this exact shape.
const responseSchema = `Return a JSON object with this exact structure:
{
  "training": {
    "introduction": "Welcome message and overview",
    "sections": [
      {
        "title": "Section title",
        "content": "Section content",
        "keyPoints": ["Point 1", "Point 2", "Point 3"],
        "sourceDocs": ["doc1.pdf", "doc2.pdf"]
      }
    ],
    "safetyNotes": ["Safety point 1", "Safety point 2"],
    "bestPractices": ["Practice 1", "Practice 2"],
    "commonMistakes": ["Mistake 1", "Mistake 2"]
  },
  "quiz": [
    {
      "question": "Question text?",
      "options": ["A) Option 1", "B) Option 2", "C) Option 3", "D) Option 4"],
      "correct": 1,
      "explanation": "Explanation of correct answer",
      "type": "Question type",
      "source": "source_document.pdf"
    }
  ]
}`

// PromptBuilder assembles generation prompts. Building is deterministic:
// the same draft, company and documents always produce byte-identical
// output, which is what makes the generation cache safe to key on it.
type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// Build produces the full prompt for one training draft. The relevance
// analysis block appears only when an analysis with ranked documents is
// supplied.
func (b *PromptBuilder) Build(draft *models.TrainingDraft, company *models.CompanyProfile, employeeNames []string, analysis *RAGAnalysis) string {
	var sb strings.Builder

	language := LanguageName(draft.Language)

	sb.WriteString(fmt.Sprintf("Create a comprehensive training module in %s for:\n", language))
	sb.WriteString(fmt.Sprintf("- Training Title: %s\n", draft.Title))
	sb.WriteString(fmt.Sprintf("- Company: %s\n", company.Name))
	sb.WriteString(fmt.Sprintf("- Industry: %s\n", company.Industry))
	sb.WriteString(fmt.Sprintf("- Department: %s\n", draft.Department))
	sb.WriteString(fmt.Sprintf("- Training Type: %s\n", draft.TrainingType))
	sb.WriteString(fmt.Sprintf("- Target: %s\n", b.targetLine(draft, employeeNames)))
	sb.WriteString(fmt.Sprintf("- Language: %s\n", language))

	if draft.Description != "" {
		sb.WriteString(fmt.Sprintf("\nDescription: %s\n", draft.Description))
	}
	if draft.Objectives != "" {
		sb.WriteString(fmt.Sprintf("\nLearning objectives: %s\n", draft.Objectives))
	}
	if len(company.SafetyRequirements) > 0 {
		sb.WriteString(fmt.Sprintf("\nApplicable safety requirements: %s\n", strings.Join(company.SafetyRequirements, ", ")))
	}

	if analysis != nil && len(analysis.RelevantDocuments) > 0 {
		sb.WriteString("\nDocument relevance analysis (most relevant first):\n")
		for _, doc := range analysis.RelevantDocuments {
			sb.WriteString(fmt.Sprintf("- %s: relevance %.2f across %d chunks\n", doc.Name, doc.Relevance, doc.Chunks))
		}
	}

	if excerpt := b.documentExcerpt(draft.Documents); excerpt != "" {
		sb.WriteString("\nUse the following company documents as the primary source material:\n")
		sb.WriteString(excerpt)
		sb.WriteString("\n")
	}

	count := draft.QuizConfig.QuestionCount
	if count <= 0 {
		count = 5
	}
	sb.WriteString(fmt.Sprintf("\nGenerate exactly %d multiple-choice quiz questions with 4 options each.\n\n", count))
	sb.WriteString(responseSchema)

	return sb.String()
}

func (b *PromptBuilder) targetLine(draft *models.TrainingDraft, employeeNames []string) string {
	switch draft.Scope {
	case models.ScopeDepartment:
		return fmt.Sprintf("All %s department employees", draft.Department)
	case models.ScopeCompany:
		return "All company employees"
	default:
		if len(employeeNames) == 0 {
			return "Assigned employees"
		}
		return strings.Join(employeeNames, ", ")
	}
}

// documentExcerpt concatenates extracted document text under per-file
// headers, truncating at the shared character budget. Documents with no
// extracted text are skipped.
func (b *PromptBuilder) documentExcerpt(documents []models.Document) string {
	var sb strings.Builder
	remaining := MaxDocumentChars

	for _, doc := range documents {
		if doc.ExtractedText == nil || *doc.ExtractedText == "" {
			continue
		}

		header := fmt.Sprintf("\n--- %s ---\n", doc.Name)
		if remaining < len(header) {
			sb.WriteString(truncationMarker)
			break
		}
		sb.WriteString(header)
		remaining -= len(header)

		text := *doc.ExtractedText
		if len(text) > remaining {
			sb.WriteString(truncateAtRune(text, remaining))
			sb.WriteString(truncationMarker)
			break
		}
		sb.WriteString(text)
		remaining -= len(text)
	}

	return sb.String()
}

// truncateAtRune cuts s to at most n bytes without splitting a multibyte
// character
func truncateAtRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

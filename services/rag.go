package services

import (
	"sort"
	"strings"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
)

// DocumentRelevance is one document's relevance to a training request
type DocumentRelevance struct {
	Name      string  `json:"name"`
	Relevance float64 `json:"relevance"`
	Chunks    int     `json:"chunks"`
}

// RAGAnalysis summarizes which uploaded documents matter for a draft
type RAGAnalysis struct {
	RelevantDocuments []DocumentRelevance `json:"relevant_documents"`
}

// RAGService ranks uploaded documents against a draft's topic using
// keyword overlap. A real vector index can replace scoreDocument without
// touching callers.
type RAGService struct{}

func NewRAGService() *RAGService {
	return &RAGService{}
}

const ragChunkSize = 1000

// Analyze scores every document with extracted text against the draft's
// title, type and objectives. Results are sorted by descending relevance.
func (s *RAGService) Analyze(draft *models.TrainingDraft) *RAGAnalysis {
	terms := queryTerms(draft)

	analysis := &RAGAnalysis{}
	for _, doc := range draft.Documents {
		if doc.ExtractedText == nil || *doc.ExtractedText == "" {
			continue
		}
		text := *doc.ExtractedText
		analysis.RelevantDocuments = append(analysis.RelevantDocuments, DocumentRelevance{
			Name:      doc.Name,
			Relevance: scoreDocument(text, terms),
			Chunks:    (len(text) + ragChunkSize - 1) / ragChunkSize,
		})
	}

	sort.SliceStable(analysis.RelevantDocuments, func(i, j int) bool {
		return analysis.RelevantDocuments[i].Relevance > analysis.RelevantDocuments[j].Relevance
	})
	return analysis
}

func queryTerms(draft *models.TrainingDraft) []string {
	raw := strings.Fields(strings.ToLower(draft.Title + " " + draft.TrainingType + " " + draft.Objectives))
	var terms []string
	for _, term := range raw {
		term = strings.Trim(term, ".,;:!?()")
		if len(term) > 3 {
			terms = append(terms, term)
		}
	}
	return terms
}

func scoreDocument(text string, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	matched := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

package services

import (
	"strings"
	"testing"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
)

func TestRAGAnalyzeRanksByRelevance(t *testing.T) {
	rag := NewRAGService()

	relevant := "Forklift operation requires daily safety inspection of brakes and forks."
	unrelated := "Quarterly revenue grew while marketing spend held flat."
	draft := &models.TrainingDraft{
		Title:        "Forklift Safety",
		TrainingType: "Safety Procedures",
		Objectives:   "Inspect the forklift before operation",
		Documents: []models.Document{
			{Name: "finance.txt", ExtractedText: &unrelated},
			{Name: "forklift.txt", ExtractedText: &relevant},
			{Name: "failed.pdf", ExtractedText: nil},
		},
	}

	analysis := rag.Analyze(draft)
	if len(analysis.RelevantDocuments) != 2 {
		t.Fatalf("scored %d documents, expected 2 (failed extraction skipped)", len(analysis.RelevantDocuments))
	}
	if analysis.RelevantDocuments[0].Name != "forklift.txt" {
		t.Errorf("top document = %s, expected forklift.txt", analysis.RelevantDocuments[0].Name)
	}
	if analysis.RelevantDocuments[0].Relevance <= analysis.RelevantDocuments[1].Relevance {
		t.Error("results must be sorted by descending relevance")
	}
}

func TestRAGChunkCount(t *testing.T) {
	rag := NewRAGService()
	text := strings.Repeat("a", 2500)
	draft := &models.TrainingDraft{
		Title:     "Anything",
		Documents: []models.Document{{Name: "big.txt", ExtractedText: &text}},
	}

	analysis := rag.Analyze(draft)
	if len(analysis.RelevantDocuments) != 1 {
		t.Fatalf("scored %d documents, expected 1", len(analysis.RelevantDocuments))
	}
	if analysis.RelevantDocuments[0].Chunks != 3 {
		t.Errorf("Chunks = %d, expected 3 for 2500 characters", analysis.RelevantDocuments[0].Chunks)
	}
}

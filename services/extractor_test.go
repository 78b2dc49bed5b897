package services

import (
	"errors"
	"testing"
)

func TestExtractPlaintextPassthrough(t *testing.T) {
	extractor := NewExtractorService()

	tests := []struct {
		name string
		file UploadedFile
	}{
		{name: "text/plain", file: UploadedFile{Name: "notes.txt", MimeType: "text/plain", Data: []byte("safety notes")}},
		{name: "text/markdown", file: UploadedFile{Name: "guide.md", MimeType: "text/markdown", Data: []byte("# Guide")}},
		{name: "application/json", file: UploadedFile{Name: "data.json", MimeType: "application/json", Data: []byte(`{"a":1}`)}},
		{name: "unknown mime but valid utf-8", file: UploadedFile{Name: "log.dat", MimeType: "application/octet-stream", Data: []byte("plain words")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := extractor.Extract(tt.file)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if text != string(tt.file.Data) {
				t.Errorf("text = %q, expected raw content", text)
			}
		})
	}
}

func TestExtractCSVPrefix(t *testing.T) {
	extractor := NewExtractorService()

	tests := []struct {
		name string
		file UploadedFile
	}{
		{name: "text/csv mime", file: UploadedFile{Name: "roster.csv", MimeType: "text/csv", Data: []byte("name,dept\nJohn,Production")}},
		{name: "csv extension with generic mime", file: UploadedFile{Name: "Roster.CSV", MimeType: "application/octet-stream", Data: []byte("name,dept\nJohn,Production")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := extractor.Extract(tt.file)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			want := "CSV Data:\n" + string(tt.file.Data)
			if text != want {
				t.Errorf("text = %q, expected the prefixed csv content", text)
			}
		})
	}
}

func TestExtractRejectsBinaryGarbage(t *testing.T) {
	extractor := NewExtractorService()
	file := UploadedFile{Name: "image.bin", MimeType: "application/octet-stream", Data: []byte{0xff, 0xfe, 0x00, 0x81}}

	if _, err := extractor.Extract(file); !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("Extract returned %v, expected ErrExtractionFailed", err)
	}
}

func TestExtractCorruptPDF(t *testing.T) {
	extractor := NewExtractorService()
	file := UploadedFile{Name: "broken.pdf", MimeType: "application/pdf", Data: []byte("not a pdf at all")}

	if _, err := extractor.Extract(file); !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("Extract returned %v, expected ErrExtractionFailed", err)
	}
}

func TestExtractPDFByExtension(t *testing.T) {
	extractor := NewExtractorService()
	// MIME sniffing often reports pdf uploads as octet-stream; the extension
	// must still route them to the pdf path
	file := UploadedFile{Name: "Manual.PDF", MimeType: "application/octet-stream", Data: []byte("junk")}

	if _, err := extractor.Extract(file); !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("Extract returned %v, expected ErrExtractionFailed from the pdf path", err)
	}
}

func TestExtractAllIsolatesFailures(t *testing.T) {
	extractor := NewExtractorService()
	files := []UploadedFile{
		{Name: "first.txt", MimeType: "text/plain", Data: []byte("first")},
		{Name: "broken.pdf", MimeType: "application/pdf", Data: []byte("garbage")},
		{Name: "third.txt", MimeType: "text/plain", Data: []byte("third")},
	}

	documents := extractor.ExtractAll(files)
	if len(documents) != 3 {
		t.Fatalf("got %d documents, expected one per input", len(documents))
	}

	// Order preserved
	for i, file := range files {
		if documents[i].Name != file.Name {
			t.Errorf("documents[%d].Name = %s, expected %s", i, documents[i].Name, file.Name)
		}
	}

	if documents[0].ExtractedText == nil || *documents[0].ExtractedText != "first" {
		t.Error("first document must carry its text")
	}
	if documents[1].ExtractedText != nil {
		t.Error("failed document must carry no text")
	}
	if documents[2].ExtractedText == nil || *documents[2].ExtractedText != "third" {
		t.Error("a failure must not affect later files")
	}
	if documents[1].Size != int64(len("garbage")) {
		t.Errorf("Size = %d, expected the raw byte count", documents[1].Size)
	}
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"isec-extract/internal/llm"
)

type mockReducer struct {
	reduceCalls int
	pages       int
	copyFile    bool
	err         error
}

func (m *mockReducer) Reduce(inPath, outDir string) (string, int, error) {
	m.reduceCalls++
	if m.err != nil {
		return "", 0, m.err
	}
	if !m.copyFile {
		return inPath, m.pages, nil
	}
	content, err := os.ReadFile(inPath)
	if err != nil {
		return "", 0, err
	}
	outPath := filepath.Join(outDir, "reduced_"+filepath.Base(inPath))
	if err := os.WriteFile(outPath, content[:len(content)/2], 0o644); err != nil {
		return "", 0, err
	}
	return outPath, m.pages, nil
}

func writeTempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "note.pdf")
	if err := os.WriteFile(path, []byte(strings.Repeat("%PDF-fake ", 100)), 0o644); err != nil {
		t.Fatalf("write temp pdf: %v", err)
	}
	return path
}

func validNoteJSON(t *testing.T) string {
	t.Helper()
	raw, err := json.Marshal(validNoteData(t))
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return string(raw)
}

func defaultOptions() ExtractionOptions {
	return ExtractionOptions{
		Model:            "gpt-5.1",
		FallbackModel:    "gpt-4o",
		MaxTokens:        16384,
		Temperature:      0.1,
		MaxPromptTokens:  8000,
		ReductionEnabled: true,
		MaxFileSizeMB:    50,
	}
}

func TestExtractFromPDFHappyPath(t *testing.T) {
	pdfPath := writeTempPDF(t)
	client := &llm.MockClient{
		FileID:    "file-xyz",
		Responses: []string{"```json\n" + validNoteJSON(t) + "\n```"},
	}
	reducer := &mockReducer{}

	svc := NewExtractionService(client, reducer, zap.NewNop(), defaultOptions())
	result := svc.ExtractFromPDF(context.Background(), pdfPath, "")

	if !result.Success {
		t.Fatalf("expected success, got errors %v", result.Errors)
	}
	if reducer.reduceCalls != 0 {
		t.Fatalf("small file must not be reduced")
	}
	if result.Metadata.FileID != "file-xyz" {
		t.Fatalf("unexpected file id %q", result.Metadata.FileID)
	}
	if result.Metadata.ModelUsed != "gpt-5.1" {
		t.Fatalf("unexpected model %q", result.Metadata.ModelUsed)
	}
	if result.Metadata.TotalTransactions != 1 {
		t.Fatalf("expected 1 transaction, got %d", result.Metadata.TotalTransactions)
	}
	if !result.Metadata.UsedFence {
		t.Fatalf("expected used_fence in metadata")
	}
	if len(client.Requests) != 1 {
		t.Fatalf("expected one completion call, got %d", len(client.Requests))
	}
	req := client.Requests[0]
	if req.Model != "gpt-5.1" || req.MaxTokens != 16384 {
		t.Fatalf("unexpected completion request %+v", req)
	}
	if !strings.Contains(req.UserPrompt, "Extract ISEC contract note data") {
		t.Fatalf("unexpected user prompt %q", req.UserPrompt)
	}
	if client.UploadedFilenames[0] != "note.pdf" {
		t.Fatalf("unexpected upload filename %q", client.UploadedFilenames[0])
	}
}

func TestExtractFromPDFModelOverride(t *testing.T) {
	pdfPath := writeTempPDF(t)
	client := &llm.MockClient{Responses: []string{validNoteJSON(t)}}

	svc := NewExtractionService(client, nil, zap.NewNop(), defaultOptions())
	result := svc.ExtractFromPDF(context.Background(), pdfPath, "gpt-4o")

	if !result.Success {
		t.Fatalf("expected success, got errors %v", result.Errors)
	}
	if result.Metadata.ModelUsed != "gpt-4o" {
		t.Fatalf("expected override model, got %q", result.Metadata.ModelUsed)
	}
	if client.Requests[0].Model != "gpt-4o" {
		t.Fatalf("override not forwarded, got %q", client.Requests[0].Model)
	}
}

func TestExtractFromPDFMissingFile(t *testing.T) {
	svc := NewExtractionService(&llm.MockClient{}, nil, zap.NewNop(), defaultOptions())
	result := svc.ExtractFromPDF(context.Background(), "does-not-exist.pdf", "")

	if result.Success {
		t.Fatalf("expected failure for missing file")
	}
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Extraction failed:") {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
}

func TestExtractFromPDFUploadFailure(t *testing.T) {
	pdfPath := writeTempPDF(t)
	client := &llm.MockClient{UploadErr: errors.New("boom")}

	svc := NewExtractionService(client, nil, zap.NewNop(), defaultOptions())
	result := svc.ExtractFromPDF(context.Background(), pdfPath, "")

	if result.Success {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(result.Errors[0], "Failed to upload PDF to LLM provider") {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
}

func TestExtractFromPDFEmptyResponseFallback(t *testing.T) {
	pdfPath := writeTempPDF(t)
	client := &llm.MockClient{
		Errs:      []error{llm.ErrEmptyResponse, nil},
		Responses: []string{"", validNoteJSON(t)},
	}

	svc := NewExtractionService(client, nil, zap.NewNop(), defaultOptions())
	result := svc.ExtractFromPDF(context.Background(), pdfPath, "")

	if !result.Success {
		t.Fatalf("expected fallback success, got errors %v", result.Errors)
	}
	if len(client.Requests) != 2 {
		t.Fatalf("expected 2 completion calls, got %d", len(client.Requests))
	}
	if client.Requests[1].Model != "gpt-4o" {
		t.Fatalf("expected fallback model on retry, got %q", client.Requests[1].Model)
	}
	if result.Metadata.ModelUsed != "gpt-4o" {
		t.Fatalf("metadata should record fallback model, got %q", result.Metadata.ModelUsed)
	}
}

func TestExtractFromPDFNoFallbackForLegacyModel(t *testing.T) {
	pdfPath := writeTempPDF(t)
	client := &llm.MockClient{Errs: []error{llm.ErrEmptyResponse}}

	svc := NewExtractionService(client, nil, zap.NewNop(), defaultOptions())
	result := svc.ExtractFromPDF(context.Background(), pdfPath, "gpt-4o")

	if result.Success {
		t.Fatalf("expected failure")
	}
	if len(client.Requests) != 1 {
		t.Fatalf("legacy model must not retry, got %d calls", len(client.Requests))
	}
	if !strings.Contains(result.Errors[0], "LLM extraction failed") {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
}

func TestExtractFromPDFRecoveryFailure(t *testing.T) {
	pdfPath := writeTempPDF(t)
	client := &llm.MockClient{Responses: []string{"sorry, I could not read the document"}}

	svc := NewExtractionService(client, nil, zap.NewNop(), defaultOptions())
	result := svc.ExtractFromPDF(context.Background(), pdfPath, "")

	if result.Success {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(result.Errors[0], "No structured data extracted") {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
	if len(result.Data) != 0 {
		t.Fatalf("failure must not carry partial data, got %v", result.Data)
	}
}

func TestExtractFromPDFNonObjectJSON(t *testing.T) {
	pdfPath := writeTempPDF(t)
	client := &llm.MockClient{Responses: []string{"[1, 2, 3]"}}

	svc := NewExtractionService(client, nil, zap.NewNop(), defaultOptions())
	result := svc.ExtractFromPDF(context.Background(), pdfPath, "")

	if result.Success {
		t.Fatalf("expected failure")
	}
	if result.Errors[0] != "Extracted JSON is not an object" {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
}

func TestExtractFromPDFReduction(t *testing.T) {
	t.Run("large file reduced and temp cleaned up", func(t *testing.T) {
		pdfPath := writeTempPDF(t)
		client := &llm.MockClient{Responses: []string{validNoteJSON(t)}}
		reducer := &mockReducer{copyFile: true, pages: 12}

		opts := defaultOptions()
		opts.MaxFileSizeMB = 0 // cualquier archivo no vacio supera el umbral
		svc := NewExtractionService(client, reducer, zap.NewNop(), opts)
		result := svc.ExtractFromPDF(context.Background(), pdfPath, "")

		if !result.Success {
			t.Fatalf("expected success, got errors %v", result.Errors)
		}
		if reducer.reduceCalls != 1 {
			t.Fatalf("expected one reduce call, got %d", reducer.reduceCalls)
		}
		if !result.Metadata.FileReduced {
			t.Fatalf("expected file_reduced metadata")
		}
		if len(result.Warnings) != 1 || !strings.HasPrefix(result.Warnings[0], "PDF was reduced from") {
			t.Fatalf("unexpected warnings %v", result.Warnings)
		}
		if client.UploadedFilenames[0] != "reduced_note.pdf" {
			t.Fatalf("expected reduced file to be uploaded, got %q", client.UploadedFilenames[0])
		}
		reducedPath := filepath.Join(filepath.Dir(pdfPath), "reduced_note.pdf")
		if _, err := os.Stat(reducedPath); !os.IsNotExist(err) {
			t.Fatalf("expected reduced temp file to be removed")
		}
	})

	t.Run("reducer error fails the extraction", func(t *testing.T) {
		pdfPath := writeTempPDF(t)
		client := &llm.MockClient{Responses: []string{validNoteJSON(t)}}
		reducer := &mockReducer{err: errors.New("corrupt xref")}

		opts := defaultOptions()
		opts.MaxFileSizeMB = 0
		svc := NewExtractionService(client, reducer, zap.NewNop(), opts)
		result := svc.ExtractFromPDF(context.Background(), pdfPath, "")

		if result.Success {
			t.Fatalf("expected failure")
		}
		if !strings.Contains(result.Errors[0], "PDF size reduction failed") {
			t.Fatalf("unexpected errors %v", result.Errors)
		}
		if len(client.UploadedFilenames) != 0 {
			t.Fatalf("must not upload after reduction failure")
		}
	})

	t.Run("reduction disabled", func(t *testing.T) {
		pdfPath := writeTempPDF(t)
		client := &llm.MockClient{Responses: []string{validNoteJSON(t)}}
		reducer := &mockReducer{copyFile: true, pages: 12}

		opts := defaultOptions()
		opts.MaxFileSizeMB = 0
		opts.ReductionEnabled = false
		svc := NewExtractionService(client, reducer, zap.NewNop(), opts)
		result := svc.ExtractFromPDF(context.Background(), pdfPath, "")

		if !result.Success {
			t.Fatalf("expected success, got errors %v", result.Errors)
		}
		if reducer.reduceCalls != 0 {
			t.Fatalf("reduction disabled but reducer was called")
		}
	})
}

func TestExtractFromPDFValidationErrors(t *testing.T) {
	pdfPath := writeTempPDF(t)
	client := &llm.MockClient{Responses: []string{`{"header": {}, "transactions": [], "obligations": {}}`}}

	svc := NewExtractionService(client, nil, zap.NewNop(), defaultOptions())
	result := svc.ExtractFromPDF(context.Background(), pdfPath, "")

	if result.Success {
		t.Fatalf("expected validation failure")
	}
	if result.Metadata.ValidationErrors != len(result.Errors) {
		t.Fatalf("metadata validation_errors mismatch: %d vs %d", result.Metadata.ValidationErrors, len(result.Errors))
	}
	if len(result.Data) == 0 {
		t.Fatalf("validation failure keeps the extracted data for inspection")
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"isec-extract/internal/domain"
	"isec-extract/internal/llm"
)

// PageReducer recorta un PDF a un subconjunto de paginas. Devuelve la ruta
// del archivo resultante (la original si no hizo falta recortar) y el total
// de paginas del original.
type PageReducer interface {
	Reduce(inPath, outDir string) (outPath string, pageCount int, err error)
}

// ExtractionOptions agrupa la configuracion que el caller pasa explicitamente.
type ExtractionOptions struct {
	Model            string
	FallbackModel    string
	MaxTokens        int
	Temperature      float64
	MaxPromptTokens  int
	ReductionEnabled bool
	MaxFileSizeMB    float64
}

// ExtractionService orquesta el pipeline: reduccion de paginas, subida del
// PDF, completion con archivo adjunto, recuperacion del JSON y validacion.
type ExtractionService struct {
	llmClient llm.LLMClient
	reducer   PageReducer
	logger    *zap.Logger
	opts      ExtractionOptions
}

func NewExtractionService(llmClient llm.LLMClient, reducer PageReducer, logger *zap.Logger, opts ExtractionOptions) *ExtractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtractionService{
		llmClient: llmClient,
		reducer:   reducer,
		logger:    logger,
		opts:      opts,
	}
}

// ExtractFromPDF procesa una nota de contrato. Nunca devuelve error de Go:
// todo fallo queda reportado dentro del ExtractionResult para que el caller
// siempre tenga metadata y warnings acumulados. model vacio usa el de opts.
func (s *ExtractionService) ExtractFromPDF(ctx context.Context, pdfPath, model string) domain.ExtractionResult {
	if model == "" {
		model = s.opts.Model
	}

	errs := []string{}
	warnings := []string{}
	meta := domain.ExtractionMetadata{
		ExtractionTimestamp: time.Now().UTC(),
		PDFPath:             pdfPath,
		ModelUsed:           model,
	}

	info, err := os.Stat(pdfPath)
	if err != nil {
		errs = append(errs, fmt.Sprintf("Extraction failed: %v", err))
		return failureResult(errs, warnings, meta)
	}
	fileSizeMB := float64(info.Size()) / (1024 * 1024)
	meta.OriginalFileSizeMB = fileSizeMB
	s.logger.Info("pdf file size", zap.String("path", pdfPath), zap.Float64("size_mb", fileSizeMB))

	uploadPath := pdfPath
	if s.opts.ReductionEnabled && s.reducer != nil && fileSizeMB > s.opts.MaxFileSizeMB {
		s.logger.Info("pdf exceeds size threshold, reducing",
			zap.Float64("size_mb", fileSizeMB),
			zap.Float64("threshold_mb", s.opts.MaxFileSizeMB),
		)
		reducedPath, pages, err := s.reducer.Reduce(pdfPath, filepath.Dir(pdfPath))
		if err != nil {
			errs = append(errs, fmt.Sprintf("PDF size reduction failed: %v", err))
			return failureResult(errs, warnings, meta)
		}
		if reducedPath != pdfPath {
			defer func() {
				if err := os.Remove(reducedPath); err != nil {
					s.logger.Warn("temp file cleanup failed", zap.Error(err), zap.String("path", reducedPath))
				}
			}()
			reducedInfo, err := os.Stat(reducedPath)
			if err != nil {
				errs = append(errs, fmt.Sprintf("PDF size reduction failed: %v", err))
				return failureResult(errs, warnings, meta)
			}
			reducedSizeMB := float64(reducedInfo.Size()) / (1024 * 1024)
			warnings = append(warnings, fmt.Sprintf("PDF was reduced from %.2fMB to %.2fMB", fileSizeMB, reducedSizeMB))
			meta.FileReduced = true
			meta.ReducedFileSizeMB = reducedSizeMB
			uploadPath = reducedPath
			s.logger.Info("pdf reduced", zap.Int("original_pages", pages), zap.Float64("reduced_size_mb", reducedSizeMB))
		}
	}

	file, err := os.Open(uploadPath)
	if err != nil {
		errs = append(errs, fmt.Sprintf("Failed to upload PDF to LLM provider: %v", err))
		return failureResult(errs, warnings, meta)
	}
	fileID, err := s.llmClient.UploadFile(ctx, filepath.Base(uploadPath), file)
	file.Close()
	if err != nil {
		s.logger.Error("pdf upload failed", zap.Error(err))
		errs = append(errs, fmt.Sprintf("Failed to upload PDF to LLM provider: %v", err))
		return failureResult(errs, warnings, meta)
	}
	meta.FileID = fileID

	systemPrompt, userPrompt := buildExtractionPrompts(s.opts.MaxPromptTokens)
	req := llm.CompletionRequest{
		Model:        model,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    s.opts.MaxTokens,
		Temperature:  s.opts.Temperature,
	}

	responseText, err := s.llmClient.CompleteWithFile(ctx, fileID, req)
	if errors.Is(err, llm.ErrEmptyResponse) && s.fallbackEligible(model) {
		s.logger.Warn("empty response from primary model, retrying with fallback",
			zap.String("model", model),
			zap.String("fallback_model", s.opts.FallbackModel),
		)
		req.Model = s.opts.FallbackModel
		responseText, err = s.llmClient.CompleteWithFile(ctx, fileID, req)
		if err == nil {
			meta.ModelUsed = s.opts.FallbackModel
		}
	}
	if err != nil {
		s.logger.Error("llm extraction failed", zap.Error(err))
		errs = append(errs, fmt.Sprintf("LLM extraction failed: %v", err))
		return failureResult(errs, warnings, meta)
	}
	s.logger.Info("llm response received", zap.Int("chars", len(responseText)))

	payload := RecoverJSONPayload(responseText)
	meta.UsedFence = payload.UsedFence
	meta.UsedTruncationRepair = payload.UsedTruncationRepair
	if !payload.OK {
		s.logger.Error("json recovery failed",
			zap.String("reason", payload.Reason),
			zap.String("cleaned_candidate", payload.CleanedCandidate),
		)
		errs = append(errs, "No structured data extracted: "+payload.Reason)
		return failureResult(errs, warnings, meta)
	}
	s.logger.Info("json recovered",
		zap.Bool("used_fence", payload.UsedFence),
		zap.Bool("used_truncation_repair", payload.UsedTruncationRepair),
	)

	data, ok := payload.Object()
	if !ok {
		errs = append(errs, "Extracted JSON is not an object")
		return failureResult(errs, warnings, meta)
	}

	errs = append(errs, ValidateContractNote(data)...)

	if txs, ok := data["transactions"].([]any); ok {
		meta.TotalTransactions = len(txs)
	}
	meta.ValidationErrors = len(errs)

	return domain.ExtractionResult{
		Success:  len(errs) == 0,
		Data:     data,
		Errors:   errs,
		Warnings: warnings,
		Metadata: meta,
	}
}

// fallbackEligible replica la regla del extractor: solo los modelos gpt-5
// disparan el reintento con el modelo de fallback ante respuesta vacia.
func (s *ExtractionService) fallbackEligible(model string) bool {
	return s.opts.FallbackModel != "" &&
		s.opts.FallbackModel != model &&
		strings.HasPrefix(model, "gpt-5")
}

func failureResult(errs, warnings []string, meta domain.ExtractionMetadata) domain.ExtractionResult {
	meta.ValidationErrors = len(errs)
	return domain.ExtractionResult{
		Success:  false,
		Data:     map[string]any{},
		Errors:   errs,
		Warnings: warnings,
		Metadata: meta,
	}
}

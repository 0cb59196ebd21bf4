package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"isec-extract/internal/config"
	"isec-extract/internal/domain"
	"isec-extract/internal/llm"
	"isec-extract/internal/pdf"
	"isec-extract/internal/service"
)

func main() {
	output := flag.String("o", "extracted_data_openai.json", "output JSON file path")
	model := flag.String("m", "", "model override (default: LLM_MODEL)")
	apiKey := flag.String("k", "", "API key (overrides LLM_API_KEY)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <pdf_path>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	pdfPath := flag.Arg(0)

	_ = godotenv.Load()

	if *apiKey != "" {
		os.Setenv("LLM_API_KEY", *apiKey)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v (set LLM_API_KEY in the environment or pass -k)", err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, logger)
	reducer := pdf.NewReducer(cfg.PDFKeepFirstPages, cfg.PDFKeepLastPages, logger)
	svc := service.NewExtractionService(llmClient, reducer, logger, service.ExtractionOptions{
		Model:            cfg.LLMModel,
		FallbackModel:    cfg.LLMFallbackModel,
		MaxTokens:        cfg.LLMMaxTokens,
		Temperature:      cfg.LLMTemperature,
		MaxPromptTokens:  cfg.MaxPromptTokens,
		ReductionEnabled: cfg.PDFReductionEnabled,
		MaxFileSizeMB:    cfg.PDFMaxFileSizeMB,
	})

	result := svc.ExtractFromPDF(context.Background(), pdfPath, *model)

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("encode result: %v", err)
	}
	if err := os.WriteFile(*output, encoded, 0o644); err != nil {
		log.Fatalf("write %s: %v", *output, err)
	}
	logger.Info("results saved", zap.String("path", *output))

	for _, warning := range result.Warnings {
		fmt.Println("Warning:", warning)
	}

	if !result.Success {
		for _, e := range result.Errors {
			fmt.Println("Error:", e)
		}
		os.Exit(1)
	}

	fmt.Printf("Extraction completed: %d transactions\n", result.Metadata.TotalTransactions)
	if note, err := domain.DecodeContractNote(result.Data); err == nil {
		fmt.Printf("Contract note: %s\n", note.Header.ContractNoteNo)
		fmt.Printf("Client: %s (%s)\n", note.Header.ClientName, note.Header.ClientID)
	}
}

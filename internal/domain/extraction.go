package domain

import "time"

// ExtractionResult es el resultado completo de una extraccion, con exito o sin el.
// Data queda como mapa generico: la conformidad de esquema es responsabilidad
// de la validacion aguas abajo, no del parseo.
type ExtractionResult struct {
	Success  bool               `json:"success"`
	Data     map[string]any     `json:"data"`
	Errors   []string           `json:"errors"`
	Warnings []string           `json:"warnings"`
	Metadata ExtractionMetadata `json:"metadata"`
}

// ExtractionMetadata acompania al resultado para trazabilidad del operador.
type ExtractionMetadata struct {
	ExtractionTimestamp  time.Time `json:"extraction_timestamp"`
	PDFPath              string    `json:"pdf_path"`
	ModelUsed            string    `json:"model_used"`
	FileID               string    `json:"file_id,omitempty"`
	TotalTransactions    int       `json:"total_transactions"`
	ValidationErrors     int       `json:"validation_errors"`
	OriginalFileSizeMB   float64   `json:"original_file_size_mb"`
	FileReduced          bool      `json:"file_reduced"`
	ReducedFileSizeMB    float64   `json:"reduced_file_size_mb,omitempty"`
	UsedFence            bool      `json:"used_fence"`
	UsedTruncationRepair bool      `json:"used_truncation_repair"`
}

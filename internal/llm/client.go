package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrEmptyResponse indica que el proveedor respondio 200 pero sin contenido.
// Los modelos gpt-5 hacen esto a veces; el caller puede reintentar con el
// modelo de fallback.
var ErrEmptyResponse = errors.New("llm empty response")

// CompletionRequest agrupa los parametros de una completion sobre un archivo subido.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// LLMClient define la interfaz para subir archivos y pedir completions al LLM.
type LLMClient interface {
	UploadFile(ctx context.Context, filename string, r io.Reader) (string, error)
	CompleteWithFile(ctx context.Context, fileID string, req CompletionRequest) (string, error)
}

// HTTPClient implementa LLMClient usando una API OpenAI-compatible.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient construye un cliente HTTP apuntando a las APIs de files y chat completions.
func NewHTTPClient(baseURL, apiKey string, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

// UploadFile sube el archivo con purpose=user_data y devuelve el file_id.
func (c *HTTPClient) UploadFile(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("purpose", "user_data"); err != nil {
		return "", fmt.Errorf("write purpose field: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("copy file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Error("llm file upload error", zap.Int("status", resp.StatusCode), zap.ByteString("body", respBody))
		return "", fmt.Errorf("llm upload http error: status=%d", resp.StatusCode)
	}

	var fr fileResponse
	if err := json.Unmarshal(respBody, &fr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if fr.Error != nil {
		return "", fmt.Errorf("llm api error: %s", fr.Error.Message)
	}
	if fr.ID == "" {
		return "", fmt.Errorf("llm upload returned no file id")
	}

	c.logger.Info("pdf uploaded", zap.String("file_id", fr.ID), zap.String("filename", filename))
	return fr.ID, nil
}

// CompleteWithFile manda system prompt + mensaje de usuario con el archivo
// adjunto y el texto de instrucciones. Los modelos gpt-5 usan
// max_completion_tokens y no aceptan temperature; el resto usa max_tokens y
// temperature.
func (c *HTTPClient) CompleteWithFile(ctx context.Context, fileID string, cr CompletionRequest) (string, error) {
	reqBody := chatRequest{
		Model: cr.Model,
		Messages: []chatMessage{
			{Role: "system", Content: cr.SystemPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "file", File: &filePart{FileID: fileID}},
				{Type: "text", Text: cr.UserPrompt},
			}},
		},
	}
	if strings.HasPrefix(cr.Model, "gpt-5") {
		reqBody.MaxCompletionTokens = cr.MaxTokens
	} else {
		reqBody.MaxTokens = cr.MaxTokens
		temperature := cr.Temperature
		reqBody.Temperature = &temperature
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Error("llm completion error", zap.Int("status", resp.StatusCode), zap.ByteString("body", respBody))
		return "", fmt.Errorf("llm http error: status=%d", resp.StatusCode)
	}

	var cres chatResponse
	if err := json.Unmarshal(respBody, &cres); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if cres.Error != nil {
		return "", fmt.Errorf("llm api error: %s", cres.Error.Message)
	}

	if len(cres.Choices) == 0 || cres.Choices[0].Message.Content == "" {
		c.logger.Warn("llm returned empty content", zap.String("model", cr.Model), zap.Int("choices", len(cres.Choices)))
		return "", ErrEmptyResponse
	}

	return cres.Choices[0].Message.Content, nil
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxTokens           int           `json:"max_tokens,omitempty"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
	Temperature         *float64      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type string    `json:"type"`
	File *filePart `json:"file,omitempty"`
	Text string    `json:"text,omitempty"`
}

type filePart struct {
	FileID string `json:"file_id"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type fileResponse struct {
	ID    string    `json:"id"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
}

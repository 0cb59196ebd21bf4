package llm

import (
	"context"
	"io"
)

// MockClient permite tests sin llamar a un LLM real. Las respuestas y errores
// se consumen en orden de llamada; la ultima respuesta se repite.
type MockClient struct {
	FileID    string
	UploadErr error
	Responses []string
	Errs      []error

	UploadedFilenames []string
	UploadedSizes     []int64
	FileIDs           []string
	Requests          []CompletionRequest
}

func (m *MockClient) UploadFile(_ context.Context, filename string, r io.Reader) (string, error) {
	n, _ := io.Copy(io.Discard, r)
	m.UploadedFilenames = append(m.UploadedFilenames, filename)
	m.UploadedSizes = append(m.UploadedSizes, n)
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	if m.FileID == "" {
		return "file-mock", nil
	}
	return m.FileID, nil
}

func (m *MockClient) CompleteWithFile(_ context.Context, fileID string, req CompletionRequest) (string, error) {
	call := len(m.Requests)
	m.Requests = append(m.Requests, req)
	m.FileIDs = append(m.FileIDs, fileID)

	var err error
	if call < len(m.Errs) {
		err = m.Errs[call]
	}

	var resp string
	switch {
	case call < len(m.Responses):
		resp = m.Responses[call]
	case len(m.Responses) > 0:
		resp = m.Responses[len(m.Responses)-1]
	}

	if err != nil {
		return "", err
	}
	return resp, nil
}

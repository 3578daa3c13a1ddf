package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/vovakirdan/dmchat-server/internal/upload"
)

func multipartBody(t *testing.T, fieldName, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestUploadEndpointStoresImage(t *testing.T) {
	ts := startTestServer(t)

	png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 32)...)
	body, contentType := multipartBody(t, "file", "cat.png", png)

	resp, err := ts.Client().Post(ts.URL+"/api/upload", contentType, body)
	if err != nil {
		t.Fatalf("upload request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	var result struct {
		Success bool         `json:"success"`
		File    *upload.File `json:"file"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !result.Success || result.File == nil {
		t.Fatalf("unexpected response: %+v", result)
	}
	if result.File.Kind != "image" || result.File.Name != "cat.png" {
		t.Fatalf("unexpected file metadata: %+v", result.File)
	}
}

func TestUploadEndpointRejectsMissingFile(t *testing.T) {
	ts := startTestServer(t)

	body, contentType := multipartBody(t, "wrong_field", "cat.png", []byte("x"))

	resp, err := ts.Client().Post(ts.URL+"/api/upload", contentType, body)
	if err != nil {
		t.Fatalf("upload request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUploadEndpointRejectsDisallowedType(t *testing.T) {
	ts := startTestServer(t)

	body, contentType := multipartBody(t, "file", "page.html", []byte("<!DOCTYPE html><html></html>"))

	resp, err := ts.Client().Post(ts.URL+"/api/upload", contentType, body)
	if err != nil {
		t.Fatalf("upload request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

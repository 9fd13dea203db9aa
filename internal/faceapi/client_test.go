package faceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDetectFaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect/face" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("failed to parse multipart form: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file part: %v", err)
		}
		defer file.Close()
		if header.Filename != "image.jpg" {
			t.Errorf("unexpected filename: %s", header.Filename)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(DetectResponse{
			FacesCount: 1,
			Faces: []Face{
				{FaceIndex: 0, Dim: 3, Embedding: []float32{0.1, 0.2, 0.3}, BBox: []float64{10, 10, 50, 50}, DetScore: 0.99},
			},
			Model: "test-model",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.DetectFaces(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0x01, 0x02, 0x03, 0x04, 0x05})
	if err != nil {
		t.Fatalf("DetectFaces failed: %v", err)
	}

	if resp.FacesCount != 1 || len(resp.Faces) != 1 {
		t.Fatalf("expected 1 face, got count=%d len=%d", resp.FacesCount, len(resp.Faces))
	}
	if resp.Faces[0].Embedding[1] != 0.2 {
		t.Errorf("unexpected embedding: %v", resp.Faces[0].Embedding)
	}
	if resp.Model != "test-model" {
		t.Errorf("unexpected model: %s", resp.Model)
	}
}

func TestDetectFaces_ZeroFaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(DetectResponse{FacesCount: 0, Model: "test-model"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.DetectFaces(context.Background(), []byte("not really an image"))
	if err != nil {
		t.Fatalf("DetectFaces failed: %v", err)
	}
	if resp.FacesCount != 0 || len(resp.Faces) != 0 {
		t.Errorf("expected zero faces, got %+v", resp)
	}
}

func TestDetectFaces_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"faces_count": 1, "faces": [], "model": "test-model"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.DetectFaces(context.Background(), []byte("img"))
	if err == nil {
		t.Fatalf("expected error for mismatched response, got %+v", resp)
	}
	if !strings.Contains(err.Error(), "faces_count") {
		t.Errorf("error does not name the mismatch: %v", err)
	}
}

func TestDetectFaces_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.DetectFaces(context.Background(), []byte("img")); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}, "image/jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"gif", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0, 0}, "image/gif"},
		{"short", []byte{0x01}, "application/octet-stream"},
		{"unknown", []byte{0, 1, 2, 3, 4, 5, 6, 7}, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectMIMEType(tt.data); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestResizeImage(t *testing.T) {
	// Create a 100x50 test image.
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}

	resized, err := ResizeImage(buf.Bytes(), 40)
	if err != nil {
		t.Fatalf("ResizeImage failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(resized))
	if err != nil {
		t.Fatalf("failed to decode resized image: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
		t.Errorf("expected 40x20, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestResizeImage_NoResizeNeeded(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 10))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}

	out, err := ResizeImage(buf.Bytes(), 100)
	if err != nil {
		t.Fatalf("ResizeImage failed: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 10 {
		t.Errorf("expected 20x10, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestResizeImage_InvalidData(t *testing.T) {
	if _, err := ResizeImage([]byte("not an image"), 100); err == nil {
		t.Error("expected error for invalid image data")
	}
}

package controllers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/rayz-store/tienda-backend/internal/images"
	"github.com/rayz-store/tienda-backend/pkg/logger"
)

type stubImageService struct {
	upload *images.UploadInput
}

func (s *stubImageService) List(context.Context, uuid.UUID, uuid.UUID) ([]images.ImageDTO, error) {
	return []images.ImageDTO{}, nil
}

func (s *stubImageService) Upload(_ context.Context, _, productID uuid.UUID, input images.UploadInput) (*images.ImageDTO, error) {
	s.upload = &input
	return &images.ImageDTO{ID: uuid.New(), ProductoID: productID, Orden: 1, EsPrincipal: true}, nil
}

func (s *stubImageService) SetPrincipal(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) ([]images.ImageDTO, error) {
	return nil, nil
}

func (s *stubImageService) Delete(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) ([]images.ImageDTO, error) {
	return nil, nil
}

func (s *stubImageService) PrincipalURLs(context.Context, uuid.UUID, []uuid.UUID) map[uuid.UUID]string {
	return nil
}

func (s *stubImageService) ObjectKeys(context.Context, uuid.UUID, uuid.UUID) ([]string, error) {
	return nil, errors.New("not used")
}

func (s *stubImageService) DeleteObjects(context.Context, []string) error { return nil }

func multipartUpload(t *testing.T, ctx context.Context, field, name string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.WriteField("descripcion", "  frente  "); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/panel/productos/x/imagenes", &buf).WithContext(ctx)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestPanelUploadImage(t *testing.T) {
	productID := uuid.New()
	ctx := panelContext(uuid.New(), map[string]string{"productoId": productID.String()})
	png := []byte("\x89PNG\r\n\x1a\n0000")

	t.Run("stores the file part", func(t *testing.T) {
		stub := &stubImageService{}
		rec := httptest.NewRecorder()
		PanelUploadImage(stub, 1024, logger.Nop()).ServeHTTP(rec, multipartUpload(t, ctx, "file", "frente.PNG", png))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.upload == nil || stub.upload.FileName != "frente.PNG" || !bytes.Equal(stub.upload.Data, png) {
			t.Fatalf("unexpected upload input %+v", stub.upload)
		}
		if stub.upload.Descripcion == nil || *stub.upload.Descripcion != "frente" {
			t.Fatalf("expected trimmed descripcion")
		}
	})

	t.Run("missing file part", func(t *testing.T) {
		rec := httptest.NewRecorder()
		PanelUploadImage(&stubImageService{}, 1024, logger.Nop()).ServeHTTP(rec, multipartUpload(t, ctx, "imagen", "frente.png", png))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("body over the limit", func(t *testing.T) {
		stub := &stubImageService{}
		rec := httptest.NewRecorder()
		PanelUploadImage(stub, 16, logger.Nop()).ServeHTTP(rec, multipartUpload(t, ctx, "file", "big.png", bytes.Repeat([]byte{1}, multipartOverhead+1024)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
		if stub.upload != nil {
			t.Fatalf("oversized upload must not reach the service")
		}
	})
}

package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/pkg/db"
	"github.com/rayz-store/tienda-backend/pkg/db/models"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
	"github.com/rayz-store/tienda-backend/pkg/logger"
	"github.com/rayz-store/tienda-backend/pkg/metrics"
	"github.com/rayz-store/tienda-backend/pkg/storage"
)

const (
	uploadOutcomeStored      = "stored"
	uploadOutcomeRejected    = "rejected"
	uploadOutcomeCompensated = "compensated"
	uploadOutcomeFailed      = "failed"
)

// Service manages the gallery of a product.
type Service interface {
	List(ctx context.Context, tenantID, productID uuid.UUID) ([]ImageDTO, error)
	Upload(ctx context.Context, tenantID, productID uuid.UUID, input UploadInput) (*ImageDTO, error)
	SetPrincipal(ctx context.Context, tenantID, productID, imageID uuid.UUID) ([]ImageDTO, error)
	Delete(ctx context.Context, tenantID, productID, imageID uuid.UUID) ([]ImageDTO, error)
	PrincipalURLs(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID) map[uuid.UUID]string
	ObjectKeys(ctx context.Context, tenantID, productID uuid.UUID) ([]string, error)
	DeleteObjects(ctx context.Context, keys []string) error
}

// UploadInput is a fully read multipart file.
type UploadInput struct {
	FileName    string
	Data        []byte
	Descripcion *string
}

// Options tunes signing and upload limits.
type Options struct {
	SignedURLExpiry time.Duration
	MaxUploadBytes  int64
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	store    storage.ObjectStore
	opts     Options
	logg     *logger.Logger
	metrics  *metrics.PanelMetrics
}

func NewService(repo *Repository, dbClient *db.Client, store storage.ObjectStore, opts Options, logg *logger.Logger, panelMetrics *metrics.PanelMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("image repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if opts.SignedURLExpiry <= 0 {
		return nil, fmt.Errorf("signed url expiry must be positive")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		store:    store,
		opts:     opts,
		logg:     logg,
		metrics:  panelMetrics,
	}, nil
}

func (s *service) List(ctx context.Context, tenantID, productID uuid.UUID) ([]ImageDTO, error) {
	if err := s.ensureProduct(ctx, tenantID, productID); err != nil {
		return nil, err
	}
	return s.list(ctx, tenantID, productID)
}

// Upload stores the object first and then inserts the row. When the insert
// fails the object is removed again.
func (s *service) Upload(ctx context.Context, tenantID, productID uuid.UUID, input UploadInput) (*ImageDTO, error) {
	if s.opts.MaxUploadBytes > 0 && int64(len(input.Data)) > s.opts.MaxUploadBytes {
		s.metrics.IncImageUpload(uploadOutcomeRejected)
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "file exceeds the %d byte limit", s.opts.MaxUploadBytes)
	}
	contentType, err := detectImageType(input.Data)
	if err != nil {
		s.metrics.IncImageUpload(uploadOutcomeRejected)
		return nil, err
	}
	if err := s.ensureProduct(ctx, tenantID, productID); err != nil {
		return nil, err
	}

	imageID := uuid.New()
	key := ObjectPath(tenantID, productID, imageID, Extension(input.FileName, contentType))
	if err := s.store.Upload(ctx, key, contentType, bytes.NewReader(input.Data)); err != nil {
		s.metrics.IncImageUpload(uploadOutcomeFailed)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store image")
	}

	row := &models.ImagenProducto{
		ID:          imageID,
		EmpresaID:   tenantID,
		ProductoID:  productID,
		Path:        &key,
		URLImagen:   &key,
		Descripcion: trimmedOrNil(input.Descripcion),
	}
	insertErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		orden, first, err := repo.NextSlot(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		row.Orden = orden
		row.EsPrincipal = first
		return repo.Create(ctx, row)
	})
	if insertErr != nil {
		combined := multierr.Append(insertErr, s.store.Delete(ctx, key))
		s.metrics.IncImageUpload(uploadOutcomeCompensated)
		ctx = s.logg.WithFields(ctx, map[string]any{"producto_id": productID.String(), "path": key})
		s.logg.Error(ctx, "images.upload.insert_failed", combined)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "insert image")
	}

	s.metrics.IncImageUpload(uploadOutcomeStored)
	dto := newImageDTO(*row, s.sign(ctx, key))
	return &dto, nil
}

func (s *service) SetPrincipal(ctx context.Context, tenantID, productID, imageID uuid.UUID) ([]ImageDTO, error) {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Find(ctx, tenantID, productID, imageID); err != nil {
			return err
		}
		if err := repo.ClearPrincipal(ctx, tenantID, productID); err != nil {
			return err
		}
		return repo.MarkPrincipal(ctx, tenantID, productID, imageID)
	})
	if err != nil {
		return nil, mapRepoError(err, "set principal image")
	}
	return s.list(ctx, tenantID, productID)
}

// Delete removes the object and then the row. The row delete decides the
// outcome; a principal image hands the flag to the first remaining one.
func (s *service) Delete(ctx context.Context, tenantID, productID, imageID uuid.UUID) ([]ImageDTO, error) {
	row, err := s.repo.Find(ctx, tenantID, productID, imageID)
	if err != nil {
		return nil, mapRepoError(err, "load image")
	}

	if key := row.ObjectKey(); key != "" {
		if err := s.store.Delete(ctx, key); err != nil {
			ctx := s.logg.WithFields(ctx, map[string]any{"imagen_id": imageID.String(), "path": key})
			s.logg.WarnErr(ctx, "images.delete.storage_failed", err)
		}
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Delete(ctx, tenantID, productID, imageID); err != nil {
			return err
		}
		if !row.EsPrincipal {
			return nil
		}
		remaining, err := repo.List(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			return nil
		}
		return repo.MarkPrincipal(ctx, tenantID, productID, remaining[0].ID)
	})
	if err != nil {
		return nil, mapRepoError(err, "delete image")
	}
	return s.list(ctx, tenantID, productID)
}

// PrincipalURLs signs the principal image of each product. Failures leave the
// product out of the map.
func (s *service) PrincipalURLs(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID) map[uuid.UUID]string {
	out := make(map[uuid.UUID]string, len(productIDs))
	rows, err := s.repo.ListPrincipals(ctx, tenantID, productIDs)
	if err != nil {
		s.logg.WarnErr(ctx, "images.principal.read_failed", err)
		return out
	}
	for _, row := range rows {
		if url := s.sign(ctx, row.ObjectKey()); url != "" {
			out[row.ProductoID] = url
		}
	}
	return out
}

func (s *service) ObjectKeys(ctx context.Context, tenantID, productID uuid.UUID) ([]string, error) {
	rows, err := s.repo.List(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		if key := row.ObjectKey(); key != "" {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *service) DeleteObjects(ctx context.Context, keys []string) error {
	var errs error
	for _, key := range keys {
		errs = multierr.Append(errs, s.store.Delete(ctx, key))
	}
	return errs
}

func (s *service) list(ctx context.Context, tenantID, productID uuid.UUID) ([]ImageDTO, error) {
	rows, err := s.repo.List(ctx, tenantID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list images")
	}
	out := make([]ImageDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, newImageDTO(row, s.sign(ctx, row.ObjectKey())))
	}
	return out, nil
}

func (s *service) sign(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	url, err := s.store.SignedURL(ctx, key, s.opts.SignedURLExpiry)
	if err != nil {
		s.logg.WarnErr(s.logg.WithField(ctx, "path", key), "images.sign.failed", err)
		return ""
	}
	return url
}

func (s *service) ensureProduct(ctx context.Context, tenantID, productID uuid.UUID) error {
	ok, err := s.repo.ProductExists(ctx, tenantID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func mapRepoError(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/pkg/db"
	"github.com/rayz-store/tienda-backend/pkg/db/models"
	"github.com/rayz-store/tienda-backend/pkg/enums"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
	"github.com/rayz-store/tienda-backend/pkg/logger"
	"github.com/rayz-store/tienda-backend/pkg/metrics"
	"github.com/rayz-store/tienda-backend/pkg/redis"
)

// TransitionInput carries the two confirmations of the "pasar a variantes" flow.
type TransitionInput struct {
	Confirm      bool
	MigrateStock bool
}

// TransitionResult is returned after the transition (or the no-op).
type TransitionResult struct {
	Resolution     Resolution             `json:"resumen"`
	Variantes      []VariantDTO           `json:"variantes"`
	Estado         enums.VariantMigration `json:"migracion_variantes"`
	VarianteCreada bool                   `json:"variante_creada"`
	YaEnVariantes  bool                   `json:"ya_en_variantes"`
}

type locker interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (*redis.Lock, error)
	ReleaseLock(ctx context.Context, lock *redis.Lock) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Transitioner runs the one-way move from the legacy counter to variant stock.
type Transitioner struct {
	repo     *Repository
	tx       txRunner
	resolver *Resolver
	locks    locker
	lockTTL  time.Duration
	logg     *logger.Logger
	metrics  *metrics.PanelMetrics
}

func NewTransitioner(repo *Repository, dbClient *db.Client, resolver *Resolver, locks locker, lockTTL time.Duration, logg *logger.Logger, panelMetrics *metrics.PanelMetrics) (*Transitioner, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("stock resolver required")
	}
	if locks == nil {
		return nil, fmt.Errorf("locker required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &Transitioner{
		repo:     repo,
		tx:       dbClient,
		resolver: resolver,
		locks:    locks,
		lockTTL:  lockTTL,
		logg:     logg,
		metrics:  panelMetrics,
	}, nil
}

// Transition moves the product to variant-tracked stock. The state column
// makes a retry after a partial failure resume instead of duplicating the
// migration variant.
func (t *Transitioner) Transition(ctx context.Context, tenantID, productID uuid.UUID, input TransitionInput) (*TransitionResult, error) {
	ctx = t.logg.WithFields(ctx, map[string]any{
		"empresa_id":  tenantID.String(),
		"producto_id": productID.String(),
	})

	lock, err := t.locks.AcquireLock(ctx, "producto:"+productID.String()+":variantes", t.lockTTL)
	if err != nil {
		if errors.Is(err, redis.ErrLockHeld) {
			t.metrics.IncTransition(metrics.TransitionConflict)
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a variant transition for this product is already running")
		}
		t.metrics.IncTransition(metrics.TransitionFailed)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire transition lock")
	}
	defer func() {
		if releaseErr := t.locks.ReleaseLock(context.WithoutCancel(ctx), lock); releaseErr != nil {
			t.logg.WarnErr(ctx, "stock.transition.lock_release_failed", releaseErr)
		}
	}()

	product, err := t.repo.FindProduct(ctx, tenantID, productID)
	if err != nil {
		t.metrics.IncTransition(metrics.TransitionFailed)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if product.UsaVariantes {
		if product.MigracionVariantes != enums.VariantMigrationVariantMode {
			if err := t.repo.SetMigrationState(ctx, tenantID, productID, enums.VariantMigrationVariantMode, true); err != nil {
				t.logg.WarnErr(ctx, "stock.transition.state_heal_failed", err)
			} else {
				t.logState(ctx, product.MigracionVariantes, enums.VariantMigrationVariantMode)
			}
		}
		t.metrics.IncTransition(metrics.TransitionNoop)
		return t.result(ctx, tenantID, productID, false, true)
	}

	if !input.Confirm {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "confirm must be true to switch the product to variants")
	}

	state := product.MigracionVariantes
	if state == "" {
		state = enums.VariantMigrationLegacy
	}
	resumed := state == enums.VariantMigrationVariantCreated
	created := false

	if !resumed && product.LegacyStock() > 0 && input.MigrateStock {
		err := t.tx.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := t.repo.WithTx(tx)
			exists, err := txRepo.HasGenericVariant(ctx, tenantID, productID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check generic variant")
			}
			if !exists {
				variant := &models.ProductoVariante{
					EmpresaID:  tenantID,
					ProductoID: productID,
					Talle:      MigrationVariantLabel,
					Stock:      product.LegacyStock(),
					Activo:     true,
				}
				if err := txRepo.CreateVariant(ctx, variant); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create migration variant")
				}
				created = true
			}
			if err := txRepo.SetMigrationState(ctx, tenantID, productID, enums.VariantMigrationVariantCreated, false); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record migration state")
			}
			return nil
		})
		if err != nil {
			t.metrics.IncTransition(metrics.TransitionFailed)
			return nil, err
		}
		t.logState(ctx, state, enums.VariantMigrationVariantCreated)
		state = enums.VariantMigrationVariantCreated
	}

	if !state.CanAdvanceTo(enums.VariantMigrationVariantMode) {
		t.metrics.IncTransition(metrics.TransitionFailed)
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move from %s to variant_mode", state)
	}

	if err := t.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return t.repo.WithTx(tx).SetMigrationState(ctx, tenantID, productID, enums.VariantMigrationVariantMode, true)
	}); err != nil {
		t.metrics.IncTransition(metrics.TransitionFailed)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "enable variants")
	}
	t.logState(ctx, state, enums.VariantMigrationVariantMode)

	if resumed {
		t.metrics.IncTransition(metrics.TransitionResumed)
	} else {
		t.metrics.IncTransition(metrics.TransitionCompleted)
	}
	return t.result(ctx, tenantID, productID, created, false)
}

func (t *Transitioner) result(ctx context.Context, tenantID, productID uuid.UUID, created, noop bool) (*TransitionResult, error) {
	resolution, err := t.resolver.Resolve(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	variants, err := t.repo.ListVariants(ctx, tenantID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list variants")
	}
	return &TransitionResult{
		Resolution:     resolution,
		Variantes:      NewVariantDTOs(variants),
		Estado:         enums.VariantMigrationVariantMode,
		VarianteCreada: created,
		YaEnVariantes:  noop,
	}, nil
}

func (t *Transitioner) logState(ctx context.Context, from, to enums.VariantMigration) {
	ctx = t.logg.WithFields(ctx, map[string]any{"from": string(from), "to": string(to)})
	t.logg.Info(ctx, "stock.transition.state")
}

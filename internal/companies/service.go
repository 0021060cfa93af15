package companies

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/internal/users"
	"github.com/rayz-store/tienda-backend/pkg/db"
	"github.com/rayz-store/tienda-backend/pkg/db/models"
	"github.com/rayz-store/tienda-backend/pkg/enums"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
	"github.com/rayz-store/tienda-backend/pkg/logger"
)

// Service exposes company onboarding.
type Service interface {
	Register(ctx context.Context, profile *models.Usuario, input RegisterInput) (*RegisterResult, error)
	Get(ctx context.Context, id uuid.UUID) (*users.CompanyDTO, error)
}

// RegisterInput is the onboarding form.
type RegisterInput struct {
	Nombre      string
	Descripcion *string
}

// RegisterResult returns the new tenant and the promoted profile.
type RegisterResult struct {
	Empresa users.CompanyDTO `json:"empresa"`
	Usuario users.ProfileDTO `json:"usuario"`
}

type service struct {
	repo     *Repository
	users    *users.Repository
	dbClient *db.Client
	logg     *logger.Logger
}

func NewService(repo *Repository, usersRepo *users.Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("companies repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, users: usersRepo, dbClient: dbClient, logg: logg}, nil
}

// Register creates the tenant, attaches it to the caller and promotes the
// caller to admin in one transaction.
func (s *service) Register(ctx context.Context, profile *models.Usuario, input RegisterInput) (*RegisterResult, error) {
	if profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile required")
	}
	if profile.EmpresaID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already belongs to a company")
	}
	if profile.Rol == enums.UserRoleGuest {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "guests cannot register a company")
	}
	nombre := strings.TrimSpace(input.Nombre)
	if nombre == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nombre is required")
	}

	empresa := &models.Empresa{Nombre: nombre}
	if input.Descripcion != nil {
		if desc := strings.TrimSpace(*input.Descripcion); desc != "" {
			empresa.Descripcion = &desc
		}
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, empresa); err != nil {
			return err
		}
		return s.users.WithTx(tx).AssignCompany(ctx, profile.ID, empresa.ID, enums.UserRoleAdmin)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register company")
	}

	updated := *profile
	updated.EmpresaID = &empresa.ID
	updated.Rol = enums.UserRoleAdmin

	ctx = s.logg.WithTenantID(s.logg.WithUserID(ctx, profile.ID.String()), empresa.ID.String())
	s.logg.Info(ctx, "companies.registered")

	return &RegisterResult{
		Empresa: users.CompanyFromModel(*empresa),
		Usuario: users.FromModel(updated),
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*users.CompanyDTO, error) {
	empresa, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
	}
	dto := users.CompanyFromModel(*empresa)
	return &dto, nil
}

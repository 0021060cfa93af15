package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/rayz-store/tienda-backend/pkg/db"
	"github.com/rayz-store/tienda-backend/pkg/db/models"
	"github.com/rayz-store/tienda-backend/pkg/enums"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
	"github.com/rayz-store/tienda-backend/pkg/logger"
)

// Service resolves application profiles for verified identities.
type Service interface {
	EnsureProfile(ctx context.Context, identity Identity) (*models.Usuario, error)
	ProfileBySubject(ctx context.Context, subject string) (*models.Usuario, error)
	Session(ctx context.Context, identity Identity) (*SessionDTO, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// EnsureProfile loads the profile of the subject, linking a profile that was
// created by email, or creating one with role user and no tenant.
func (s *service) EnsureProfile(ctx context.Context, identity Identity) (*models.Usuario, error) {
	subject := strings.TrimSpace(identity.Subject)
	if subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "token subject missing")
	}

	user, err := s.lookup(ctx, subject, identity.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token email missing")
	}
	user = &models.Usuario{
		AuthUID: &subject,
		Correo:  email,
		Rol:     enums.UserRoleUser,
	}
	if name := strings.TrimSpace(identity.Name); name != "" {
		user.Nombre = &name
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			// another request created it first
			if existing, lookupErr := s.lookup(ctx, subject, email); lookupErr == nil {
				return existing, nil
			}
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already linked to another account")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
	}

	ctx = s.logg.WithUserID(ctx, user.ID.String())
	s.logg.Info(ctx, "users.profile.created")
	return user, nil
}

func (s *service) lookup(ctx context.Context, subject, email string) (*models.Usuario, error) {
	user, err := s.repo.FindByAuthUID(ctx, subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if strings.TrimSpace(email) == "" {
		return nil, gorm.ErrRecordNotFound
	}
	user, err = s.repo.FindUnlinkedByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if err := s.repo.LinkAuthUID(ctx, user.ID, subject); err != nil {
		return nil, err
	}
	user.AuthUID = &subject
	return user, nil
}

// ProfileBySubject returns the linked profile or nil when none exists.
func (s *service) ProfileBySubject(ctx context.Context, subject string) (*models.Usuario, error) {
	user, err := s.repo.FindByAuthUID(ctx, subject)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) Session(ctx context.Context, identity Identity) (*SessionDTO, error) {
	user, err := s.EnsureProfile(ctx, identity)
	if err != nil {
		return nil, err
	}
	out := &SessionDTO{Usuario: FromModel(*user)}
	if user.EmpresaID == nil {
		return out, nil
	}
	empresa, err := s.repo.FindCompany(ctx, *user.EmpresaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return out, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
	}
	company := CompanyFromModel(*empresa)
	out.Empresa = &company
	return out, nil
}

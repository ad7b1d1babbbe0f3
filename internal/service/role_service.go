package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mcastellanos/cursoadmin-api/internal/models"
	"github.com/mcastellanos/cursoadmin-api/internal/screen"
	appErrors "github.com/mcastellanos/cursoadmin-api/pkg/errors"
)

type roleGateway interface {
	List(ctx context.Context) ([]models.Role, error)
	Insert(ctx context.Context, role *models.Role) error
	Update(ctx context.Context, role models.Role) error
	Delete(ctx context.Context, id int64) error
}

// RoleForm is the raw submission from the role screen's form.
type RoleForm struct {
	Name string `json:"name" validate:"required"`
}

// RoleService runs the role manager screen. Roles reference nothing, so the
// view record is the role itself.
type RoleService struct {
	roles     roleGateway
	validator *validator.Validate
	logger    *zap.Logger

	mu      sync.Mutex
	loaded  bool
	mirror  *screen.Mirror[models.Role]
	session screen.Session
}

// NewRoleService constructs a RoleService.
func NewRoleService(roles roleGateway, validate *validator.Validate, logger *zap.Logger) *RoleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleService{
		roles:     roles,
		validator: validate,
		logger:    logger,
		mirror:    screen.NewMirror(func(r models.Role) int64 { return r.ID }),
	}
}

func (s *RoleService) load(ctx context.Context) error {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return gatewayFailure(s.logger, "load roles", err)
	}
	if err := liveness(ctx); err != nil {
		return err
	}
	s.mirror.Reset(roles)
	s.loaded = true
	return nil
}

func (s *RoleService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.load(ctx)
}

// Records returns the screen's records, loading on first access.
func (s *RoleService) Records(ctx context.Context) ([]models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.mirror.Records(), nil
}

// Refresh discards the mirror and reloads.
func (s *RoleService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Submit creates or updates depending on the edit session.
func (s *RoleService) Submit(ctx context.Context, form RoleForm) (*models.Role, error) {
	form.Name = strings.TrimSpace(form.Name)
	if err := s.validator.Struct(form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role form")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	if target, editing := s.session.Editing(); editing {
		role := models.Role{ID: target, Name: form.Name}
		if err := s.roles.Update(ctx, role); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "role not found")
			}
			return nil, gatewayFailure(s.logger, "update role", err)
		}
		if err := liveness(ctx); err != nil {
			return nil, err
		}
		s.mirror.Replace(role)
		s.session.Finish()
		return &role, nil
	}

	role := models.Role{Name: form.Name}
	if err := s.roles.Insert(ctx, &role); err != nil {
		return nil, gatewayFailure(s.logger, "create role", err)
	}
	if err := liveness(ctx); err != nil {
		return nil, err
	}
	if err := s.mirror.Append(role); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "duplicate role id")
	}
	return &role, nil
}

// StartEdit pre-populates the form from a stored record.
func (s *RoleService) StartEdit(ctx context.Context, id int64) (*RoleForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	record, ok := s.mirror.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "role not found")
	}
	s.session.StartEdit(id)
	return &RoleForm{Name: record.Name}, nil
}

// Cancel abandons any edit in progress.
func (s *RoleService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Cancel()
}

// Delete removes the record remotely, then from the mirror.
func (s *RoleService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if err := s.roles.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "role not found")
		}
		return gatewayFailure(s.logger, "delete role", err)
	}
	if err := liveness(ctx); err != nil {
		return err
	}
	s.mirror.Remove(id)
	if target, editing := s.session.Editing(); editing && target == id {
		s.session.Cancel()
	}
	return nil
}

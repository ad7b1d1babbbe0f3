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

type teacherGateway interface {
	List(ctx context.Context) ([]models.Teacher, error)
	Insert(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher models.Teacher) error
	Delete(ctx context.Context, id int64) error
}

type roleLister interface {
	List(ctx context.Context) ([]models.Role, error)
}

// TeacherForm is the raw submission from the teacher screen's form.
type TeacherForm struct {
	Name   string `json:"name" validate:"required"`
	RoleID int64  `json:"role_id" validate:"required,gt=0"`
}

// TeacherService runs the teacher manager screen against the role reference
// collection.
type TeacherService struct {
	teachers  teacherGateway
	roles     roleLister
	validator *validator.Validate
	logger    *zap.Logger

	mu      sync.Mutex
	loaded  bool
	roleIdx map[int64]models.Role
	mirror  *screen.Mirror[models.TeacherView]
	session screen.Session
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(teachers teacherGateway, roles roleLister, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{
		teachers:  teachers,
		roles:     roles,
		validator: validate,
		logger:    logger,
		mirror:    screen.NewMirror(func(v models.TeacherView) int64 { return v.ID }),
	}
}

func joinTeacher(t models.Teacher, ref models.Role, ok bool) models.TeacherView {
	return models.TeacherView{Teacher: t, RoleName: screen.DisplayOr(ref.Name, ok)}
}

func (s *TeacherService) load(ctx context.Context) error {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return gatewayFailure(s.logger, "load roles", err)
	}
	teachers, err := s.teachers.List(ctx)
	if err != nil {
		return gatewayFailure(s.logger, "load teachers", err)
	}
	if err := liveness(ctx); err != nil {
		return err
	}
	s.roleIdx = screen.Index(roles, func(r models.Role) int64 { return r.ID })
	s.mirror.Reset(screen.Resolve(teachers, s.roleIdx, func(t models.Teacher) int64 { return t.RoleID }, joinTeacher))
	s.loaded = true
	return nil
}

func (s *TeacherService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.load(ctx)
}

func (s *TeacherService) resolveOne(t models.Teacher) models.TeacherView {
	ref, ok := s.roleIdx[t.RoleID]
	return joinTeacher(t, ref, ok)
}

// Records returns the screen's view records, loading on first access.
func (s *TeacherService) Records(ctx context.Context) ([]models.TeacherView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.mirror.Records(), nil
}

// Refresh discards the mirror and re-runs the two-phase load.
func (s *TeacherService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Submit creates or updates depending on the edit session.
func (s *TeacherService) Submit(ctx context.Context, form TeacherForm) (*models.TeacherView, error) {
	form.Name = strings.TrimSpace(form.Name)
	if err := s.validator.Struct(form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher form")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	if target, editing := s.session.Editing(); editing {
		teacher := models.Teacher{ID: target, Name: form.Name, RoleID: form.RoleID}
		if err := s.teachers.Update(ctx, teacher); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
			}
			return nil, gatewayFailure(s.logger, "update teacher", err)
		}
		if err := liveness(ctx); err != nil {
			return nil, err
		}
		view := s.resolveOne(teacher)
		s.mirror.Replace(view)
		s.session.Finish()
		return &view, nil
	}

	teacher := models.Teacher{Name: form.Name, RoleID: form.RoleID}
	if err := s.teachers.Insert(ctx, &teacher); err != nil {
		return nil, gatewayFailure(s.logger, "create teacher", err)
	}
	if err := liveness(ctx); err != nil {
		return nil, err
	}
	view := s.resolveOne(teacher)
	if err := s.mirror.Append(view); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "duplicate teacher id")
	}
	return &view, nil
}

// StartEdit pre-populates the form from a stored record.
func (s *TeacherService) StartEdit(ctx context.Context, id int64) (*TeacherForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	record, ok := s.mirror.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	s.session.StartEdit(id)
	return &TeacherForm{Name: record.Name, RoleID: record.RoleID}, nil
}

// Cancel abandons any edit in progress.
func (s *TeacherService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Cancel()
}

// Delete removes the record remotely, then from the mirror.
func (s *TeacherService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if err := s.teachers.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return gatewayFailure(s.logger, "delete teacher", err)
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

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

type studentGateway interface {
	List(ctx context.Context) ([]models.Student, error)
	Insert(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student models.Student) error
	Delete(ctx context.Context, id int64) error
}

// StudentForm is the raw submission from the student screen's form.
type StudentForm struct {
	Name   string `json:"name" validate:"required"`
	RoleID int64  `json:"role_id" validate:"required,gt=0"`
}

// StudentService runs the student manager screen; the shape matches the
// teacher screen with students as the primary collection.
type StudentService struct {
	students  studentGateway
	roles     roleLister
	validator *validator.Validate
	logger    *zap.Logger

	mu      sync.Mutex
	loaded  bool
	roleIdx map[int64]models.Role
	mirror  *screen.Mirror[models.StudentView]
	session screen.Session
}

// NewStudentService constructs a StudentService.
func NewStudentService(students studentGateway, roles roleLister, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		students:  students,
		roles:     roles,
		validator: validate,
		logger:    logger,
		mirror:    screen.NewMirror(func(v models.StudentView) int64 { return v.ID }),
	}
}

func joinStudent(st models.Student, ref models.Role, ok bool) models.StudentView {
	return models.StudentView{Student: st, RoleName: screen.DisplayOr(ref.Name, ok)}
}

func (s *StudentService) load(ctx context.Context) error {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return gatewayFailure(s.logger, "load roles", err)
	}
	students, err := s.students.List(ctx)
	if err != nil {
		return gatewayFailure(s.logger, "load students", err)
	}
	if err := liveness(ctx); err != nil {
		return err
	}
	s.roleIdx = screen.Index(roles, func(r models.Role) int64 { return r.ID })
	s.mirror.Reset(screen.Resolve(students, s.roleIdx, func(st models.Student) int64 { return st.RoleID }, joinStudent))
	s.loaded = true
	return nil
}

func (s *StudentService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.load(ctx)
}

func (s *StudentService) resolveOne(st models.Student) models.StudentView {
	ref, ok := s.roleIdx[st.RoleID]
	return joinStudent(st, ref, ok)
}

// Records returns the screen's view records, loading on first access.
func (s *StudentService) Records(ctx context.Context) ([]models.StudentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.mirror.Records(), nil
}

// Refresh discards the mirror and re-runs the two-phase load.
func (s *StudentService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Submit creates or updates depending on the edit session.
func (s *StudentService) Submit(ctx context.Context, form StudentForm) (*models.StudentView, error) {
	form.Name = strings.TrimSpace(form.Name)
	if err := s.validator.Struct(form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student form")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	if target, editing := s.session.Editing(); editing {
		student := models.Student{ID: target, Name: form.Name, RoleID: form.RoleID}
		if err := s.students.Update(ctx, student); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
			}
			return nil, gatewayFailure(s.logger, "update student", err)
		}
		if err := liveness(ctx); err != nil {
			return nil, err
		}
		view := s.resolveOne(student)
		s.mirror.Replace(view)
		s.session.Finish()
		return &view, nil
	}

	student := models.Student{Name: form.Name, RoleID: form.RoleID}
	if err := s.students.Insert(ctx, &student); err != nil {
		return nil, gatewayFailure(s.logger, "create student", err)
	}
	if err := liveness(ctx); err != nil {
		return nil, err
	}
	view := s.resolveOne(student)
	if err := s.mirror.Append(view); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "duplicate student id")
	}
	return &view, nil
}

// StartEdit pre-populates the form from a stored record.
func (s *StudentService) StartEdit(ctx context.Context, id int64) (*StudentForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	record, ok := s.mirror.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	s.session.StartEdit(id)
	return &StudentForm{Name: record.Name, RoleID: record.RoleID}, nil
}

// Cancel abandons any edit in progress.
func (s *StudentService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Cancel()
}

// Delete removes the record remotely, then from the mirror.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if err := s.students.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return gatewayFailure(s.logger, "delete student", err)
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

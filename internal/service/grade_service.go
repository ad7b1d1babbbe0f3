package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mcastellanos/cursoadmin-api/internal/models"
	"github.com/mcastellanos/cursoadmin-api/internal/screen"
	appErrors "github.com/mcastellanos/cursoadmin-api/pkg/errors"
)

type gradeGateway interface {
	List(ctx context.Context) ([]models.Grade, error)
	Insert(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade models.Grade) error
	Delete(ctx context.Context, id int64) error
}

type studentLister interface {
	List(ctx context.Context) ([]models.Student, error)
}

type activityLister interface {
	List(ctx context.Context) ([]models.Activity, error)
}

// GradeForm is the raw submission from the grade screen's form. The score
// arrives as the form's text, not as a number.
type GradeForm struct {
	StudentID  int64  `json:"student_id" validate:"required,gt=0"`
	ActivityID int64  `json:"activity_id" validate:"required,gt=0"`
	Score      string `json:"score" validate:"required"`
}

// GradeService runs the grade manager screen. Grades carry two references,
// so the load indexes students and activities before resolving.
type GradeService struct {
	grades     gradeGateway
	students   studentLister
	activities activityLister
	validator  *validator.Validate
	logger     *zap.Logger

	mu          sync.Mutex
	loaded      bool
	studentIdx  map[int64]models.Student
	activityIdx map[int64]models.Activity
	mirror      *screen.Mirror[models.GradeView]
	session     screen.Session
}

// NewGradeService constructs a GradeService.
func NewGradeService(grades gradeGateway, students studentLister, activities activityLister, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		grades:     grades,
		students:   students,
		activities: activities,
		validator:  validate,
		logger:     logger,
		mirror:     screen.NewMirror(func(v models.GradeView) int64 { return v.ID }),
	}
}

func (s *GradeService) load(ctx context.Context) error {
	students, err := s.students.List(ctx)
	if err != nil {
		return gatewayFailure(s.logger, "load students", err)
	}
	activities, err := s.activities.List(ctx)
	if err != nil {
		return gatewayFailure(s.logger, "load activities", err)
	}
	grades, err := s.grades.List(ctx)
	if err != nil {
		return gatewayFailure(s.logger, "load grades", err)
	}
	if err := liveness(ctx); err != nil {
		return err
	}
	s.studentIdx = screen.Index(students, func(st models.Student) int64 { return st.ID })
	s.activityIdx = screen.Index(activities, func(a models.Activity) int64 { return a.ID })
	views := make([]models.GradeView, 0, len(grades))
	for _, g := range grades {
		views = append(views, s.resolveOne(g))
	}
	s.mirror.Reset(views)
	s.loaded = true
	return nil
}

func (s *GradeService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.load(ctx)
}

// resolveOne joins both references; either side missing shows the sentinel.
func (s *GradeService) resolveOne(g models.Grade) models.GradeView {
	student, sok := s.studentIdx[g.StudentID]
	activity, aok := s.activityIdx[g.ActivityID]
	return models.GradeView{
		Grade:               g,
		StudentName:         screen.DisplayOr(student.Name, sok),
		ActivityDescription: screen.DisplayOr(activity.Description, aok),
	}
}

// Records returns the screen's view records, loading on first access.
func (s *GradeService) Records(ctx context.Context) ([]models.GradeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.mirror.Records(), nil
}

// Refresh discards the mirror and re-runs the two-phase load.
func (s *GradeService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func parseScore(raw string) (float64, error) {
	score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "score must be a number")
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, appErrors.Clone(appErrors.ErrValidation, "score must be finite")
	}
	return score, nil
}

// Submit creates or updates depending on the edit session.
func (s *GradeService) Submit(ctx context.Context, form GradeForm) (*models.GradeView, error) {
	form.Score = strings.TrimSpace(form.Score)
	if err := s.validator.Struct(form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade form")
	}
	score, err := parseScore(form.Score)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	if target, editing := s.session.Editing(); editing {
		grade := models.Grade{ID: target, StudentID: form.StudentID, ActivityID: form.ActivityID, Score: score}
		if err := s.grades.Update(ctx, grade); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
			}
			return nil, gatewayFailure(s.logger, "update grade", err)
		}
		if err := liveness(ctx); err != nil {
			return nil, err
		}
		view := s.resolveOne(grade)
		s.mirror.Replace(view)
		s.session.Finish()
		return &view, nil
	}

	grade := models.Grade{StudentID: form.StudentID, ActivityID: form.ActivityID, Score: score}
	if err := s.grades.Insert(ctx, &grade); err != nil {
		return nil, gatewayFailure(s.logger, "create grade", err)
	}
	if err := liveness(ctx); err != nil {
		return nil, err
	}
	view := s.resolveOne(grade)
	if err := s.mirror.Append(view); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "duplicate grade id")
	}
	return &view, nil
}

// StartEdit pre-populates the form from a stored record.
func (s *GradeService) StartEdit(ctx context.Context, id int64) (*GradeForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	record, ok := s.mirror.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
	}
	s.session.StartEdit(id)
	return &GradeForm{
		StudentID:  record.StudentID,
		ActivityID: record.ActivityID,
		Score:      strconv.FormatFloat(record.Score, 'f', -1, 64),
	}, nil
}

// Cancel abandons any edit in progress.
func (s *GradeService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Cancel()
}

// Delete removes the record remotely, then from the mirror.
func (s *GradeService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if err := s.grades.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return gatewayFailure(s.logger, "delete grade", err)
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

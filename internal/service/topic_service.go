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

type topicGateway interface {
	List(ctx context.Context) ([]models.Topic, error)
	Insert(ctx context.Context, topic *models.Topic) error
	Update(ctx context.Context, topic models.Topic) error
	Delete(ctx context.Context, id int64) error
}

type teacherLister interface {
	List(ctx context.Context) ([]models.Teacher, error)
}

// TopicForm is the raw submission from the topic screen's form. A submission
// that fails validation never reaches the gateway and never touches the
// mirror.
type TopicForm struct {
	Title     string `json:"title" validate:"required"`
	TeacherID int64  `json:"teacher_id" validate:"required,gt=0"`
}

// TopicService runs the topic manager screen: teachers are the reference
// collection, topics the primary one.
type TopicService struct {
	topics    topicGateway
	teachers  teacherLister
	validator *validator.Validate
	logger    *zap.Logger

	mu       sync.Mutex
	loaded   bool
	teachIdx map[int64]models.Teacher
	mirror   *screen.Mirror[models.TopicView]
	session  screen.Session
}

// NewTopicService constructs a TopicService.
func NewTopicService(topics topicGateway, teachers teacherLister, validate *validator.Validate, logger *zap.Logger) *TopicService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TopicService{
		topics:    topics,
		teachers:  teachers,
		validator: validate,
		logger:    logger,
		mirror:    screen.NewMirror(func(v models.TopicView) int64 { return v.ID }),
	}
}

// load is the two-phase fetch: the reference collection completes before the
// primary is resolved against it, so a partial join can never happen. Caller
// holds the lock.
func (s *TopicService) load(ctx context.Context) error {
	teachers, err := s.teachers.List(ctx)
	if err != nil {
		return gatewayFailure(s.logger, "load teachers", err)
	}
	topics, err := s.topics.List(ctx)
	if err != nil {
		return gatewayFailure(s.logger, "load topics", err)
	}
	if err := liveness(ctx); err != nil {
		return err
	}
	s.teachIdx = screen.Index(teachers, func(t models.Teacher) int64 { return t.ID })
	s.mirror.Reset(screen.Resolve(topics, s.teachIdx, func(t models.Topic) int64 { return t.TeacherID }, joinTopic))
	s.loaded = true
	return nil
}

func joinTopic(t models.Topic, ref models.Teacher, ok bool) models.TopicView {
	return models.TopicView{Topic: t, TeacherName: screen.DisplayOr(ref.Name, ok)}
}

func (s *TopicService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.load(ctx)
}

func (s *TopicService) resolveOne(t models.Topic) models.TopicView {
	ref, ok := s.teachIdx[t.TeacherID]
	return joinTopic(t, ref, ok)
}

// Records returns the screen's view records, loading on first access.
func (s *TopicService) Records(ctx context.Context) ([]models.TopicView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.mirror.Records(), nil
}

// Refresh discards the mirror and re-runs the two-phase load.
func (s *TopicService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Submit creates a topic, or updates the edit session's target when one is
// active. On success the mirror is patched in place; no re-fetch happens.
func (s *TopicService) Submit(ctx context.Context, form TopicForm) (*models.TopicView, error) {
	form.Title = strings.TrimSpace(form.Title)
	if err := s.validator.Struct(form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid topic form")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	if target, editing := s.session.Editing(); editing {
		topic := models.Topic{ID: target, Title: form.Title, TeacherID: form.TeacherID}
		if err := s.topics.Update(ctx, topic); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "topic not found")
			}
			return nil, gatewayFailure(s.logger, "update topic", err)
		}
		if err := liveness(ctx); err != nil {
			return nil, err
		}
		view := s.resolveOne(topic)
		s.mirror.Replace(view)
		s.session.Finish()
		return &view, nil
	}

	topic := models.Topic{Title: form.Title, TeacherID: form.TeacherID}
	if err := s.topics.Insert(ctx, &topic); err != nil {
		return nil, gatewayFailure(s.logger, "create topic", err)
	}
	if err := liveness(ctx); err != nil {
		return nil, err
	}
	view := s.resolveOne(topic)
	if err := s.mirror.Append(view); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "duplicate topic id")
	}
	return &view, nil
}

// StartEdit switches the form into edit mode and returns it pre-populated
// from the stored record, reference selection included.
func (s *TopicService) StartEdit(ctx context.Context, id int64) (*TopicForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	record, ok := s.mirror.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "topic not found")
	}
	s.session.StartEdit(id)
	return &TopicForm{Title: record.Title, TeacherID: record.TeacherID}, nil
}

// Cancel abandons any edit in progress; the next submission creates.
func (s *TopicService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Cancel()
}

// Delete removes the record remotely, then from the mirror.
func (s *TopicService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if err := s.topics.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "topic not found")
		}
		return gatewayFailure(s.logger, "delete topic", err)
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

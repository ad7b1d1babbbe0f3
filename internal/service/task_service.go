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

type taskGateway interface {
	List(ctx context.Context) ([]models.Task, error)
	Insert(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task models.Task) error
	Delete(ctx context.Context, id int64) error
}

// TaskForm is the raw submission from the task screen's form. The two flags
// come from checkboxes, so absence means false.
type TaskForm struct {
	Notes           string `json:"notes" validate:"required"`
	ClassTaught     bool   `json:"class_taught"`
	ActivityPending bool   `json:"activity_pending"`
	TopicID         int64  `json:"topic_id" validate:"required,gt=0"`
}

// TaskService runs the task tracking screen against the topic reference
// collection.
type TaskService struct {
	tasks     taskGateway
	topics    topicLister
	validator *validator.Validate
	logger    *zap.Logger

	mu       sync.Mutex
	loaded   bool
	topicIdx map[int64]models.Topic
	mirror   *screen.Mirror[models.TaskView]
	session  screen.Session
}

// NewTaskService constructs a TaskService.
func NewTaskService(tasks taskGateway, topics topicLister, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		tasks:     tasks,
		topics:    topics,
		validator: validate,
		logger:    logger,
		mirror:    screen.NewMirror(func(v models.TaskView) int64 { return v.ID }),
	}
}

func joinTask(t models.Task, ref models.Topic, ok bool) models.TaskView {
	return models.TaskView{Task: t, TopicTitle: screen.DisplayOr(ref.Title, ok)}
}

func (s *TaskService) load(ctx context.Context) error {
	topics, err := s.topics.List(ctx)
	if err != nil {
		return gatewayFailure(s.logger, "load topics", err)
	}
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return gatewayFailure(s.logger, "load tasks", err)
	}
	if err := liveness(ctx); err != nil {
		return err
	}
	s.topicIdx = screen.Index(topics, func(t models.Topic) int64 { return t.ID })
	s.mirror.Reset(screen.Resolve(tasks, s.topicIdx, func(t models.Task) int64 { return t.TopicID }, joinTask))
	s.loaded = true
	return nil
}

func (s *TaskService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.load(ctx)
}

func (s *TaskService) resolveOne(t models.Task) models.TaskView {
	ref, ok := s.topicIdx[t.TopicID]
	return joinTask(t, ref, ok)
}

// Records returns the screen's view records, loading on first access.
func (s *TaskService) Records(ctx context.Context) ([]models.TaskView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.mirror.Records(), nil
}

// Refresh discards the mirror and re-runs the two-phase load.
func (s *TaskService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Submit creates or updates depending on the edit session.
func (s *TaskService) Submit(ctx context.Context, form TaskForm) (*models.TaskView, error) {
	form.Notes = strings.TrimSpace(form.Notes)
	if err := s.validator.Struct(form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task form")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	if target, editing := s.session.Editing(); editing {
		task := models.Task{ID: target, Notes: form.Notes, ClassTaught: form.ClassTaught, ActivityPending: form.ActivityPending, TopicID: form.TopicID}
		if err := s.tasks.Update(ctx, task); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
			}
			return nil, gatewayFailure(s.logger, "update task", err)
		}
		if err := liveness(ctx); err != nil {
			return nil, err
		}
		view := s.resolveOne(task)
		s.mirror.Replace(view)
		s.session.Finish()
		return &view, nil
	}

	task := models.Task{Notes: form.Notes, ClassTaught: form.ClassTaught, ActivityPending: form.ActivityPending, TopicID: form.TopicID}
	if err := s.tasks.Insert(ctx, &task); err != nil {
		return nil, gatewayFailure(s.logger, "create task", err)
	}
	if err := liveness(ctx); err != nil {
		return nil, err
	}
	view := s.resolveOne(task)
	if err := s.mirror.Append(view); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "duplicate task id")
	}
	return &view, nil
}

// StartEdit pre-populates the form from a stored record.
func (s *TaskService) StartEdit(ctx context.Context, id int64) (*TaskForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	record, ok := s.mirror.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
	}
	s.session.StartEdit(id)
	return &TaskForm{Notes: record.Notes, ClassTaught: record.ClassTaught, ActivityPending: record.ActivityPending, TopicID: record.TopicID}, nil
}

// Cancel abandons any edit in progress.
func (s *TaskService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Cancel()
}

// Delete removes the record remotely, then from the mirror.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return gatewayFailure(s.logger, "delete task", err)
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

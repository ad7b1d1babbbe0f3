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

type activityGateway interface {
	List(ctx context.Context) ([]models.Activity, error)
	Insert(ctx context.Context, activity *models.Activity) error
	Update(ctx context.Context, activity models.Activity) error
	Delete(ctx context.Context, id int64) error
}

type topicLister interface {
	List(ctx context.Context) ([]models.Topic, error)
}

// ActivityForm is the raw submission from the activity screen's form. An
// empty state defaults to Pending, matching the form's preselected option.
type ActivityForm struct {
	Description string `json:"description" validate:"required"`
	State       string `json:"state" validate:"omitempty,oneof=Pending Done"`
	TopicID     int64  `json:"topic_id" validate:"required,gt=0"`
}

// ActivityService runs the activity manager screen against the topic
// reference collection.
type ActivityService struct {
	activities activityGateway
	topics     topicLister
	validator  *validator.Validate
	logger     *zap.Logger

	mu       sync.Mutex
	loaded   bool
	topicIdx map[int64]models.Topic
	mirror   *screen.Mirror[models.ActivityView]
	session  screen.Session
}

// NewActivityService constructs an ActivityService.
func NewActivityService(activities activityGateway, topics topicLister, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		activities: activities,
		topics:     topics,
		validator:  validate,
		logger:     logger,
		mirror:     screen.NewMirror(func(v models.ActivityView) int64 { return v.ID }),
	}
}

func joinActivity(a models.Activity, ref models.Topic, ok bool) models.ActivityView {
	return models.ActivityView{Activity: a, TopicTitle: screen.DisplayOr(ref.Title, ok)}
}

func (s *ActivityService) load(ctx context.Context) error {
	topics, err := s.topics.List(ctx)
	if err != nil {
		return gatewayFailure(s.logger, "load topics", err)
	}
	activities, err := s.activities.List(ctx)
	if err != nil {
		return gatewayFailure(s.logger, "load activities", err)
	}
	if err := liveness(ctx); err != nil {
		return err
	}
	s.topicIdx = screen.Index(topics, func(t models.Topic) int64 { return t.ID })
	s.mirror.Reset(screen.Resolve(activities, s.topicIdx, func(a models.Activity) int64 { return a.TopicID }, joinActivity))
	s.loaded = true
	return nil
}

func (s *ActivityService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.load(ctx)
}

func (s *ActivityService) resolveOne(a models.Activity) models.ActivityView {
	ref, ok := s.topicIdx[a.TopicID]
	return joinActivity(a, ref, ok)
}

// Records returns the screen's view records, loading on first access.
func (s *ActivityService) Records(ctx context.Context) ([]models.ActivityView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.mirror.Records(), nil
}

// Refresh discards the mirror and re-runs the two-phase load.
func (s *ActivityService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Submit creates or updates depending on the edit session.
func (s *ActivityService) Submit(ctx context.Context, form ActivityForm) (*models.ActivityView, error) {
	form.Description = strings.TrimSpace(form.Description)
	if form.State == "" {
		form.State = string(models.ActivityPending)
	}
	if err := s.validator.Struct(form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity form")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	if target, editing := s.session.Editing(); editing {
		activity := models.Activity{ID: target, Description: form.Description, State: models.ActivityState(form.State), TopicID: form.TopicID}
		if err := s.activities.Update(ctx, activity); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
			}
			return nil, gatewayFailure(s.logger, "update activity", err)
		}
		if err := liveness(ctx); err != nil {
			return nil, err
		}
		view := s.resolveOne(activity)
		s.mirror.Replace(view)
		s.session.Finish()
		return &view, nil
	}

	activity := models.Activity{Description: form.Description, State: models.ActivityState(form.State), TopicID: form.TopicID}
	if err := s.activities.Insert(ctx, &activity); err != nil {
		return nil, gatewayFailure(s.logger, "create activity", err)
	}
	if err := liveness(ctx); err != nil {
		return nil, err
	}
	view := s.resolveOne(activity)
	if err := s.mirror.Append(view); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "duplicate activity id")
	}
	return &view, nil
}

// StartEdit pre-populates the form from a stored record.
func (s *ActivityService) StartEdit(ctx context.Context, id int64) (*ActivityForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	record, ok := s.mirror.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
	}
	s.session.StartEdit(id)
	return &ActivityForm{Description: record.Description, State: string(record.State), TopicID: record.TopicID}, nil
}

// Cancel abandons any edit in progress.
func (s *ActivityService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Cancel()
}

// Delete removes the record remotely, then from the mirror.
func (s *ActivityService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if err := s.activities.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return gatewayFailure(s.logger, "delete activity", err)
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

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcastellanos/cursoadmin-api/internal/models"
	"github.com/mcastellanos/cursoadmin-api/internal/screen"
)

type taskGatewayStub struct {
	tasks   []models.Task
	nextID  int64
	inserts int
	updates int
}

func (s *taskGatewayStub) List(ctx context.Context) ([]models.Task, error) {
	return s.tasks, nil
}

func (s *taskGatewayStub) Insert(ctx context.Context, task *models.Task) error {
	s.inserts++
	s.nextID++
	task.ID = s.nextID
	return nil
}

func (s *taskGatewayStub) Update(ctx context.Context, task models.Task) error {
	s.updates++
	return nil
}

func (s *taskGatewayStub) Delete(ctx context.Context, id int64) error {
	return nil
}

type topicListerStub struct {
	topics []models.Topic
}

func (s *topicListerStub) List(ctx context.Context) ([]models.Topic, error) {
	return s.topics, nil
}

func newTaskServiceForTest() (*TaskService, *taskGatewayStub) {
	gateway := &taskGatewayStub{
		tasks: []models.Task{
			{ID: 1, Notes: "Revisar examenes", ClassTaught: true, ActivityPending: false, TopicID: 5},
			{ID: 2, Notes: "Preparar laboratorio", ClassTaught: false, ActivityPending: true, TopicID: 77},
		},
		nextID: 2,
	}
	topics := &topicListerStub{topics: []models.Topic{{ID: 5, Title: "Algebra", TeacherID: 1}}}
	return NewTaskService(gateway, topics, nil, nil), gateway
}

func TestTaskServiceRecordsResolvesTopic(t *testing.T) {
	svc, _ := newTaskServiceForTest()

	records, err := svc.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Algebra", records[0].TopicTitle)
	require.Equal(t, screen.Missing, records[1].TopicTitle)
}

func TestTaskServiceSubmitKeepsFlags(t *testing.T) {
	svc, gateway := newTaskServiceForTest()

	view, err := svc.Submit(context.Background(), TaskForm{Notes: "Calificar tareas", ClassTaught: true, ActivityPending: true, TopicID: 5})
	require.NoError(t, err)
	require.True(t, view.ClassTaught)
	require.True(t, view.ActivityPending)
	require.Equal(t, 1, gateway.inserts)
}

func TestTaskServiceEditRoundTripsFlags(t *testing.T) {
	svc, gateway := newTaskServiceForTest()

	form, err := svc.StartEdit(context.Background(), 2)
	require.NoError(t, err)
	require.False(t, form.ClassTaught)
	require.True(t, form.ActivityPending)

	form.ClassTaught = true
	form.ActivityPending = false
	view, err := svc.Submit(context.Background(), *form)
	require.NoError(t, err)
	require.Equal(t, int64(2), view.ID)
	require.True(t, view.ClassTaught)
	require.False(t, view.ActivityPending)
	require.Equal(t, 1, gateway.updates)

	records, err := svc.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
}

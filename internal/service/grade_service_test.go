package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcastellanos/cursoadmin-api/internal/models"
	"github.com/mcastellanos/cursoadmin-api/internal/screen"
	appErrors "github.com/mcastellanos/cursoadmin-api/pkg/errors"
)

type gradeGatewayStub struct {
	grades  []models.Grade
	nextID  int64
	inserts int
	updates int
}

func (s *gradeGatewayStub) List(ctx context.Context) ([]models.Grade, error) {
	return s.grades, nil
}

func (s *gradeGatewayStub) Insert(ctx context.Context, grade *models.Grade) error {
	s.inserts++
	s.nextID++
	grade.ID = s.nextID
	return nil
}

func (s *gradeGatewayStub) Update(ctx context.Context, grade models.Grade) error {
	s.updates++
	return nil
}

func (s *gradeGatewayStub) Delete(ctx context.Context, id int64) error {
	return nil
}

type studentListerStub struct {
	students []models.Student
}

func (s *studentListerStub) List(ctx context.Context) ([]models.Student, error) {
	return s.students, nil
}

type activityListerStub struct {
	activities []models.Activity
}

func (s *activityListerStub) List(ctx context.Context) ([]models.Activity, error) {
	return s.activities, nil
}

func newGradeServiceForTest() (*GradeService, *gradeGatewayStub) {
	gateway := &gradeGatewayStub{
		grades: []models.Grade{
			{ID: 1, StudentID: 20, ActivityID: 30, Score: 8.5},
			{ID: 2, StudentID: 99, ActivityID: 98, Score: 6},
		},
		nextID: 2,
	}
	students := &studentListerStub{students: []models.Student{{ID: 20, Name: "Luis", RoleID: 2}}}
	activities := &activityListerStub{activities: []models.Activity{{ID: 30, Description: "Ensayo", State: models.ActivityDone, TopicID: 1}}}
	return NewGradeService(gateway, students, activities, nil, nil), gateway
}

func TestGradeServiceRecordsResolvesBothReferences(t *testing.T) {
	svc, _ := newGradeServiceForTest()

	records, err := svc.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Luis", records[0].StudentName)
	require.Equal(t, "Ensayo", records[0].ActivityDescription)
	require.Equal(t, screen.Missing, records[1].StudentName)
	require.Equal(t, screen.Missing, records[1].ActivityDescription)
}

func TestGradeServiceSubmitParsesScore(t *testing.T) {
	svc, gateway := newGradeServiceForTest()

	view, err := svc.Submit(context.Background(), GradeForm{StudentID: 20, ActivityID: 30, Score: " 9.25 "})
	require.NoError(t, err)
	require.Equal(t, 9.25, view.Score)
	require.Equal(t, 1, gateway.inserts)
}

func TestGradeServiceSubmitRejectsNonNumericScore(t *testing.T) {
	svc, gateway := newGradeServiceForTest()

	for _, raw := range []string{"diez", "", "NaN", "+Inf"} {
		_, err := svc.Submit(context.Background(), GradeForm{StudentID: 20, ActivityID: 30, Score: raw})
		require.Error(t, err, "score %q", raw)
		appErr := appErrors.FromError(err)
		require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	}
	require.Zero(t, gateway.inserts)
	require.Zero(t, gateway.updates)
}

func TestGradeServiceStartEditFormatsScore(t *testing.T) {
	svc, gateway := newGradeServiceForTest()

	form, err := svc.StartEdit(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "8.5", form.Score)
	require.Equal(t, int64(20), form.StudentID)
	require.Equal(t, int64(30), form.ActivityID)

	view, err := svc.Submit(context.Background(), GradeForm{StudentID: 20, ActivityID: 30, Score: "7"})
	require.NoError(t, err)
	require.Equal(t, int64(1), view.ID)
	require.Equal(t, float64(7), view.Score)
	require.Equal(t, 1, gateway.updates)
}

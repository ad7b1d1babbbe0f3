package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mcastellanos/cursoadmin-api/internal/models"
	"github.com/mcastellanos/cursoadmin-api/pkg/storage"
)

type topicRecordsStub struct{}

func (topicRecordsStub) Records(ctx context.Context) ([]models.TopicView, error) {
	return []models.TopicView{{Topic: models.Topic{ID: 1, Title: "Algebra", TeacherID: 1}, TeacherName: "Ana"}}, nil
}

type activityRecordsStub struct{}

func (activityRecordsStub) Records(ctx context.Context) ([]models.ActivityView, error) {
	return []models.ActivityView{{Activity: models.Activity{ID: 1, Description: "Ensayo", State: models.ActivityDone, TopicID: 1}, TopicTitle: "Algebra"}}, nil
}

type gradeRecordsStub struct{}

func (gradeRecordsStub) Records(ctx context.Context) ([]models.GradeView, error) {
	return []models.GradeView{{Grade: models.Grade{ID: 1, StudentID: 1, ActivityID: 1, Score: 9}, StudentName: "Luis", ActivityDescription: "Ensayo"}}, nil
}

type taskRecordsStub struct{}

func (taskRecordsStub) Records(ctx context.Context) ([]models.TaskView, error) {
	return []models.TaskView{{Task: models.Task{ID: 1, Notes: "Revisar", ClassTaught: true, TopicID: 1}, TopicTitle: "Algebra"}}, nil
}

type failingTopicRecords struct{}

func (failingTopicRecords) Records(ctx context.Context) ([]models.TopicView, error) {
	return nil, errors.New("temas unavailable")
}

func newReportServiceForTest(t *testing.T) (*ReportService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	svc := NewReportService(topicRecordsStub{}, activityRecordsStub{}, gradeRecordsStub{}, taskRecordsStub{}, store, signer, nil, nil, ReportConfig{WorkerConcurrency: 1, WorkerRetries: 1, DatasetCacheTTL: time.Minute}, zap.NewNop())
	return svc, store
}

func waitForTerminal(t *testing.T, svc *ReportService, id string) *models.ReportJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := svc.Status(id)
		require.NoError(t, err)
		if job.Status == models.ReportStatusFinished || job.Status == models.ReportStatusFailed {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("report job %s did not finish in time", id)
	return nil
}

func TestReportServicePDFJobLifecycle(t *testing.T) {
	svc, _ := newReportServiceForTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	job, err := svc.Enqueue(ctx, models.ReportFormatPDF, "admin@curso.test")
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusQueued, job.Status)
	require.NotEmpty(t, job.ID)

	done := waitForTerminal(t, svc, job.ID)
	require.Equal(t, models.ReportStatusFinished, done.Status)
	require.NotNil(t, done.ResultURL)
	require.Contains(t, *done.ResultURL, "/reports/course/download?token=")
	require.NotNil(t, done.FinishedAt)
}

func TestReportServiceCSVDownload(t *testing.T) {
	svc, store := newReportServiceForTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	job, err := svc.Enqueue(ctx, models.ReportFormatCSV, "")
	require.NoError(t, err)
	done := waitForTerminal(t, svc, job.ID)
	require.Equal(t, models.ReportStatusFinished, done.Status)

	filename := "course-report-" + job.ID + ".csv"
	info, err := os.Stat(store.Path(filename))
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))

	token, _, err := storage.NewSignedURLSigner("test-secret", time.Hour).Generate(job.ID, filename)
	require.NoError(t, err)
	handle, err := svc.Download(token)
	require.NoError(t, err)
	defer handle.Close() //nolint:errcheck
	require.Equal(t, filename, handle.Name)
}

func TestReportServiceRejectsUnknownFormat(t *testing.T) {
	svc, _ := newReportServiceForTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	_, err := svc.Enqueue(ctx, models.ReportFormat("xlsx"), "")
	require.Error(t, err)
}

func TestReportServiceStatusUnknownJob(t *testing.T) {
	svc, _ := newReportServiceForTest(t)

	_, err := svc.Status("missing")
	require.Error(t, err)
}

func TestReportServiceDownloadRejectsTamperedToken(t *testing.T) {
	svc, _ := newReportServiceForTest(t)

	_, err := svc.Download("bad.token.value.sig")
	require.Error(t, err)
}

func TestReportServiceFailedJobCountsOnce(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	metrics := NewMetricsService()
	svc := NewReportService(failingTopicRecords{}, activityRecordsStub{}, gradeRecordsStub{}, taskRecordsStub{}, store, signer, nil, metrics, ReportConfig{WorkerConcurrency: 1, WorkerRetries: 1, DatasetCacheTTL: time.Minute}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	job, err := svc.Enqueue(ctx, models.ReportFormatPDF, "")
	require.NoError(t, err)

	failed := metrics.reportJobs.WithLabelValues(string(models.ReportStatusFailed))
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) && testutil.ToFloat64(failed) < 1 {
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, float64(1), testutil.ToFloat64(failed))

	// Longer than the queue's retry delay: no further attempt may bump
	// the counter again.
	time.Sleep(1500 * time.Millisecond)
	require.Equal(t, float64(1), testutil.ToFloat64(failed))

	done, err := svc.Status(job.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusFailed, done.Status)
	require.NotNil(t, done.ErrorMessage)
}

func TestReportServiceSweepRemovesExpiredResults(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Millisecond)
	svc := NewReportService(topicRecordsStub{}, activityRecordsStub{}, gradeRecordsStub{}, taskRecordsStub{}, store, signer, nil, nil, ReportConfig{WorkerConcurrency: 1, WorkerRetries: 1, DatasetCacheTTL: time.Minute}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	job, err := svc.Enqueue(ctx, models.ReportFormatPDF, "")
	require.NoError(t, err)
	done := waitForTerminal(t, svc, job.ID)
	require.Equal(t, models.ReportStatusFinished, done.Status)

	filename := "course-report-" + job.ID + ".pdf"
	_, err = os.Stat(store.Path(filename))
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	svc.sweep()

	_, err = svc.Status(job.ID)
	require.Error(t, err)
	_, err = os.Stat(store.Path(filename))
	require.True(t, os.IsNotExist(err))
}

func TestReportServiceSweepKeepsLiveResults(t *testing.T) {
	svc, store := newReportServiceForTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	job, err := svc.Enqueue(ctx, models.ReportFormatPDF, "")
	require.NoError(t, err)
	done := waitForTerminal(t, svc, job.ID)
	require.Equal(t, models.ReportStatusFinished, done.Status)

	svc.sweep()

	kept, err := svc.Status(job.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusFinished, kept.Status)
	_, err = os.Stat(store.Path("course-report-" + job.ID + ".pdf"))
	require.NoError(t, err)
}

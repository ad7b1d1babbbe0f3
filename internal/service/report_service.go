package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mcastellanos/cursoadmin-api/internal/models"
	appErrors "github.com/mcastellanos/cursoadmin-api/pkg/errors"
	"github.com/mcastellanos/cursoadmin-api/pkg/export"
	"github.com/mcastellanos/cursoadmin-api/pkg/jobs"
	"github.com/mcastellanos/cursoadmin-api/pkg/storage"
)

const (
	reportJobType     = "course_report"
	reportDatasetKey  = "reports:course:dataset"
	reportTitle       = "Reporte del Curso"
	reportDownloadFmt = "/api/v1/reports/course/download?token=%s"
)

type topicRecords interface {
	Records(ctx context.Context) ([]models.TopicView, error)
}

type activityRecords interface {
	Records(ctx context.Context) ([]models.ActivityView, error)
}

type gradeRecords interface {
	Records(ctx context.Context) ([]models.GradeView, error)
}

type taskRecords interface {
	Records(ctx context.Context) ([]models.TaskView, error)
}

// ReportConfig tunes the background report pipeline.
type ReportConfig struct {
	WorkerConcurrency int
	WorkerRetries     int
	DatasetCacheTTL   time.Duration
	CleanupInterval   time.Duration
	FileRetention     time.Duration
}

// ReportService generates the course progress report in the background. A
// request enqueues a job and returns immediately; the caller polls the job
// status until a signed download link appears.
type ReportService struct {
	topics     topicRecords
	activities activityRecords
	grades     gradeRecords
	tasks      taskRecords

	store    *storage.LocalStorage
	signer   *storage.SignedURLSigner
	renderer *export.ReportRenderer
	cache    *redis.Client
	cacheTTL time.Duration
	metrics  *MetricsService
	logger   *zap.Logger

	queue        *jobs.Queue
	maxRetries   int
	cleanupEvery time.Duration
	retention    time.Duration

	mu   sync.RWMutex
	jobs map[string]*models.ReportJob
}

// NewReportService wires the report pipeline. The redis client may be nil;
// dataset caching is then skipped.
func NewReportService(topics topicRecords, activities activityRecords, grades gradeRecords, tasks taskRecords, store *storage.LocalStorage, signer *storage.SignedURLSigner, cache *redis.Client, metrics *MetricsService, cfg ReportConfig, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	// Mirror the queue's retry default so terminal failures are detected
	// on the right attempt.
	retries := cfg.WorkerRetries
	if retries <= 0 {
		retries = 3
	}
	retention := cfg.FileRetention
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	s := &ReportService{
		topics:       topics,
		activities:   activities,
		grades:       grades,
		tasks:        tasks,
		store:        store,
		signer:       signer,
		renderer:     export.NewReportRenderer(),
		cache:        cache,
		cacheTTL:     cfg.DatasetCacheTTL,
		metrics:      metrics,
		logger:       logger,
		maxRetries:   retries,
		cleanupEvery: cfg.CleanupInterval,
		retention:    retention,
		jobs:         make(map[string]*models.ReportJob),
	}
	s.queue = jobs.NewQueue("reports", s.process, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the report workers and, when an interval is configured,
// the periodic cleanup of expired report files.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	if s.cleanupEvery > 0 {
		go s.cleanupLoop(ctx)
	}
}

// Stop drains the report workers.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// Enqueue registers a report job and schedules it for processing.
func (s *ReportService) Enqueue(ctx context.Context, format models.ReportFormat, requestedBy string) (*models.ReportJob, error) {
	switch format {
	case models.ReportFormatPDF, models.ReportFormatCSV:
	case "":
		format = models.ReportFormatPDF
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}

	job := &models.ReportJob{
		ID:          uuid.NewString(),
		Format:      format,
		Status:      models.ReportStatusQueued,
		RequestedBy: requestedBy,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: reportJobType, Payload: format}); err != nil {
		s.failJob(job.ID, err, true)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}

	s.logger.Info("report job enqueued", zap.String("job_id", job.ID), zap.String("format", string(format)))
	return s.snapshot(job.ID), nil
}

// Status returns a copy of the job's current state.
func (s *ReportService) Status(id string) (*models.ReportJob, error) {
	job := s.snapshot(id)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
	}
	return job, nil
}

// Download validates a signed token and opens the rendered file. The
// returned name is the suggested client-side filename.
func (s *ReportService) Download(token string) (*storage.FileHandle, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}

	s.mu.RLock()
	job, ok := s.jobs[jobID]
	finished := ok && job.Status == models.ReportStatusFinished
	s.mu.RUnlock()
	if !finished {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report is not available")
	}

	handle, err := s.store.OpenHandle(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "report file missing")
	}
	return handle, nil
}

// process renders one report job. Failures are recorded on the job and
// returned so the queue can retry; the last allowed attempt counts as the
// terminal failure.
func (s *ReportService) process(ctx context.Context, job jobs.Job) error {
	s.setStatus(job.ID, models.ReportStatusProcessing)
	terminal := job.Attempt >= s.maxRetries

	format, _ := job.Payload.(models.ReportFormat)
	if format == "" {
		format = models.ReportFormatPDF
	}

	sections, err := s.dataset(ctx)
	if err != nil {
		s.failJob(job.ID, err, terminal)
		return err
	}

	var rendered []byte
	var ext string
	switch format {
	case models.ReportFormatCSV:
		rendered, err = s.renderer.RenderCSV(sections)
		ext = "csv"
	default:
		rendered, err = s.renderer.RenderPDF(reportTitle, sections)
		ext = "pdf"
	}
	if err != nil {
		s.failJob(job.ID, err, terminal)
		return err
	}

	filename := fmt.Sprintf("course-report-%s.%s", job.ID, ext)
	relPath, err := s.store.Save(filename, rendered)
	if err != nil {
		s.failJob(job.ID, err, terminal)
		return err
	}

	token, _, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.failJob(job.ID, err, terminal)
		return err
	}

	url := fmt.Sprintf(reportDownloadFmt, token)
	now := time.Now().UTC()

	s.mu.Lock()
	if stored, ok := s.jobs[job.ID]; ok {
		stored.Status = models.ReportStatusFinished
		stored.ResultURL = &url
		stored.FinishedAt = &now
		stored.ErrorMessage = nil
	}
	s.mu.Unlock()

	s.metrics.RecordReportJob(string(models.ReportStatusFinished))
	s.logger.Info("report job finished", zap.String("job_id", job.ID), zap.String("file", relPath))
	return nil
}

// dataset gathers the four resolved collections, going through the redis
// cache when one is configured.
func (s *ReportService) dataset(ctx context.Context) ([]export.ReportSection, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, reportDatasetKey).Bytes()
		if err == nil {
			var cached []export.ReportSection
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				s.metrics.RecordDatasetCache(true)
				return cached, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("report dataset cache read failed", zap.Error(err))
		}
		s.metrics.RecordDatasetCache(false)
	}

	sections, err := s.buildSections(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(sections); err == nil {
			if err := s.cache.Set(ctx, reportDatasetKey, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("report dataset cache write failed", zap.Error(err))
			}
		}
	}
	return sections, nil
}

func (s *ReportService) buildSections(ctx context.Context) ([]export.ReportSection, error) {
	start := time.Now()
	topics, err := s.topics.Records(ctx)
	s.metrics.ObserveGatewayQuery("temas", time.Since(start))
	if err != nil {
		return nil, err
	}
	start = time.Now()
	activities, err := s.activities.Records(ctx)
	s.metrics.ObserveGatewayQuery("actividades", time.Since(start))
	if err != nil {
		return nil, err
	}
	start = time.Now()
	grades, err := s.grades.Records(ctx)
	s.metrics.ObserveGatewayQuery("calificaciones", time.Since(start))
	if err != nil {
		return nil, err
	}
	start = time.Now()
	tasks, err := s.tasks.Records(ctx)
	s.metrics.ObserveGatewayQuery("tareas", time.Since(start))
	if err != nil {
		return nil, err
	}

	topicRows := make([]map[string]string, 0, len(topics))
	for _, t := range topics {
		topicRows = append(topicRows, map[string]string{"Tema": t.Title, "Docente": t.TeacherName})
	}
	activityRows := make([]map[string]string, 0, len(activities))
	for _, a := range activities {
		activityRows = append(activityRows, map[string]string{"Actividad": a.Description, "Estado": string(a.State), "Tema": a.TopicTitle})
	}
	gradeRows := make([]map[string]string, 0, len(grades))
	for _, g := range grades {
		gradeRows = append(gradeRows, map[string]string{
			"Estudiante": g.StudentName,
			"Actividad":  g.ActivityDescription,
			"Puntuación": strconv.FormatFloat(g.Score, 'f', -1, 64),
		})
	}
	taskRows := make([]map[string]string, 0, len(tasks))
	for _, t := range tasks {
		taskRows = append(taskRows, map[string]string{
			"Observaciones":       t.Notes,
			"Clase Impartida":     yesNo(t.ClassTaught),
			"Actividad Pendiente": yesNo(t.ActivityPending),
			"Tema":                t.TopicTitle,
		})
	}

	return []export.ReportSection{
		{Title: "Temas Impartidos", Data: export.Dataset{Headers: []string{"Tema", "Docente"}, Rows: topicRows}},
		{Title: "Actividades Realizadas", Data: export.Dataset{Headers: []string{"Actividad", "Estado", "Tema"}, Rows: activityRows}},
		{Title: "Calificaciones Asignadas", Data: export.Dataset{Headers: []string{"Estudiante", "Actividad", "Puntuación"}, Rows: gradeRows}},
		{Title: "Estado de las Tareas", Data: export.Dataset{Headers: []string{"Observaciones", "Clase Impartida", "Actividad Pendiente", "Tema"}, Rows: taskRows}},
	}, nil
}

func yesNo(v bool) string {
	if v {
		return "Sí"
	}
	return "No"
}

func (s *ReportService) snapshot(id string) *models.ReportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}

func (s *ReportService) setStatus(id string, status models.ReportStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = status
	}
}

// failJob marks the job failed. Only a terminal failure reaches the
// metrics, so a job retried N times still counts once.
func (s *ReportService) failJob(id string, cause error, terminal bool) {
	if terminal {
		s.metrics.RecordReportJob(string(models.ReportStatusFailed))
	}
	now := time.Now().UTC()
	msg := cause.Error()
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = models.ReportStatusFailed
		job.FinishedAt = &now
		job.ErrorMessage = &msg
	}
}

func (s *ReportService) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cleanupEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep drops finished jobs whose download link has expired, removes their
// files, prunes stale failed jobs, and clears orphaned files under the
// storage dir.
func (s *ReportService) sweep() {
	now := time.Now()

	type expiredJob struct {
		id   string
		path string
	}
	var expired []expiredJob

	s.mu.Lock()
	for id, job := range s.jobs {
		switch job.Status {
		case models.ReportStatusFinished:
			if job.ResultURL == nil {
				continue
			}
			relPath, expiresAt, ok := s.resolveResult(*job.ResultURL)
			if !ok || now.Before(expiresAt) {
				continue
			}
			expired = append(expired, expiredJob{id: id, path: relPath})
			delete(s.jobs, id)
		case models.ReportStatusFailed:
			if job.FinishedAt != nil && now.Sub(*job.FinishedAt) > s.retention {
				delete(s.jobs, id)
			}
		}
	}
	s.mu.Unlock()

	for _, e := range expired {
		if err := s.store.Delete(e.path); err != nil {
			s.logger.Warn("report cleanup delete failed", zap.String("job_id", e.id), zap.Error(err))
		}
	}

	orphans, err := s.store.CleanupOlderThan(s.retention)
	if err != nil {
		s.logger.Warn("report cleanup failed", zap.Error(err))
		return
	}
	if len(expired) > 0 || len(orphans) > 0 {
		s.logger.Info("report cleanup finished",
			zap.Int("expired_jobs", len(expired)),
			zap.Int("orphan_files", len(orphans)))
	}
}

// resolveResult recovers the stored file path and expiry from a finished
// job's download URL. Expired tokens still parse so the file can be
// removed.
func (s *ReportService) resolveResult(resultURL string) (string, time.Time, bool) {
	parsed, err := url.Parse(resultURL)
	if err != nil {
		return "", time.Time{}, false
	}
	token := parsed.Query().Get("token")
	if token == "" {
		return "", time.Time{}, false
	}
	_, relPath, expiresAt, err := s.signer.Parse(token, true)
	if err != nil {
		return "", time.Time{}, false
	}
	return relPath, expiresAt, true
}

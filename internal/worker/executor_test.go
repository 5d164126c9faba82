package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cuongbtq/socialtrend-automation/internal/callback"
	"github.com/cuongbtq/socialtrend-automation/internal/caption"
	"github.com/cuongbtq/socialtrend-automation/internal/metrics"
	"github.com/cuongbtq/socialtrend-automation/internal/platform"
	"github.com/cuongbtq/socialtrend-automation/internal/service"
	"github.com/cuongbtq/socialtrend-automation/internal/tasks"
	"github.com/cuongbtq/socialtrend-automation/internal/worker/domain"
	"github.com/cuongbtq/socialtrend-automation/shared/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scheduledRetry struct {
	job   *tasks.Job
	delay time.Duration
}

type fakeScheduler struct {
	mu      sync.Mutex
	retries []scheduledRetry
	err     error
}

func (s *fakeScheduler) ScheduleRetry(_ context.Context, job *tasks.Job, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.retries = append(s.retries, scheduledRetry{job: job, delay: delay})
	return nil
}

type observation struct {
	task   string
	status string
}

type fakeTaskMetrics struct {
	mu           sync.Mutex
	observations []observation
}

func (m *fakeTaskMetrics) ObserveTask(taskName, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observations = append(m.observations, observation{task: taskName, status: status})
}

type fakeUploader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (u *fakeUploader) Upload(_ context.Context, req service.UploadRequest) (*service.UploadResult, error) {
	u.mu.Lock()
	u.calls++
	u.mu.Unlock()

	if u.err != nil {
		return nil, u.err
	}
	return &service.UploadResult{
		Status:          service.UploadStatusPosted,
		PostURL:         "https://instagram.com/p/1",
		Platform:        req.Platform,
		ScheduledPostID: req.ScheduledPostID,
	}, nil
}

type failureCall struct {
	url    string
	postID int64
	cause  string
}

type fakeNotifier struct {
	mu       sync.Mutex
	results  []callback.ResultPayload
	failures []failureCall
}

func (n *fakeNotifier) NotifyResult(_ context.Context, _ string, payload callback.ResultPayload) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.results = append(n.results, payload)
}

func (n *fakeNotifier) NotifyFailure(_ context.Context, url string, postID int64, cause string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, failureCall{url: url, postID: postID, cause: cause})
}

var uploadPolicy = Policy{MaxAttempts: 3, BaseDelay: 60 * time.Second}

func newUploadJob(t *testing.T, platformName, callbackURL string) *tasks.Job {
	t.Helper()

	job, err := tasks.NewJob(tasks.AutoUpload, tasks.AutoUploadArgs{
		ScheduledPostID: 99,
		Platform:        platformName,
		Content:         "new post",
		MediaURLs:       []string{},
		CallbackURL:     callbackURL,
	}, 0)
	require.NoError(t, err)
	return job
}

func TestPolicy_Delay(t *testing.T) {
	assert.Equal(t, 60*time.Second, uploadPolicy.Delay(1))
	assert.Equal(t, 120*time.Second, uploadPolicy.Delay(2))
	assert.Equal(t, 180*time.Second, uploadPolicy.Delay(3))
}

func TestExecute_AlwaysFailingUploadIsAttemptedThreeTimes(t *testing.T) {
	uploader := &fakeUploader{err: &platform.AdapterError{Platform: "instagram", Op: "publish", Err: errors.New("connection reset")}}
	notifier := &fakeNotifier{}
	scheduler := &fakeScheduler{}
	taskMetrics := &fakeTaskMetrics{}

	e := NewExecutor(scheduler, taskMetrics, logger.NewNop(), UploadTask(uploader, notifier, uploadPolicy, logger.NewNop()))

	job := newUploadJob(t, "instagram", "https://example.com/cb")

	var states []domain.State
	for i := 0; i < 10; i++ {
		outcome, err := e.Execute(context.Background(), job)
		require.NoError(t, err)
		states = append(states, outcome.State)

		if outcome.State != domain.StateRetryWait {
			break
		}
		job = scheduler.retries[len(scheduler.retries)-1].job
	}

	assert.Equal(t, []domain.State{domain.StateRetryWait, domain.StateRetryWait, domain.StateFailed}, states)
	assert.Equal(t, 3, uploader.calls)

	require.Len(t, scheduler.retries, 2)
	assert.Equal(t, 60*time.Second, scheduler.retries[0].delay)
	assert.Equal(t, 120*time.Second, scheduler.retries[1].delay)
	assert.Equal(t, 1, scheduler.retries[0].job.Attempt)
	assert.Equal(t, 2, scheduler.retries[1].job.Attempt)

	require.Len(t, notifier.failures, 1)
	assert.Equal(t, "https://example.com/cb", notifier.failures[0].url)
	assert.Equal(t, int64(99), notifier.failures[0].postID)
	assert.Contains(t, notifier.failures[0].cause, "connection reset")
	assert.Empty(t, notifier.results)

	require.Len(t, taskMetrics.observations, 3)
	for _, obs := range taskMetrics.observations {
		assert.Equal(t, observation{task: tasks.AutoUpload, status: metrics.StatusFailed}, obs)
	}
}

func TestExecute_SuccessSendsResultCallback(t *testing.T) {
	uploader := &fakeUploader{}
	notifier := &fakeNotifier{}
	scheduler := &fakeScheduler{}
	taskMetrics := &fakeTaskMetrics{}

	e := NewExecutor(scheduler, taskMetrics, logger.NewNop(), UploadTask(uploader, notifier, uploadPolicy, logger.NewNop()))

	outcome, err := e.Execute(context.Background(), newUploadJob(t, "Instagram", "https://example.com/cb"))
	require.NoError(t, err)

	assert.Equal(t, domain.StateSucceeded, outcome.State)
	assert.Equal(t, 1, outcome.Attempt)
	result, ok := outcome.Result.(*service.UploadResult)
	require.True(t, ok)
	assert.Equal(t, service.UploadStatusPosted, result.Status)

	require.Len(t, notifier.results, 1)
	postID := int64(99)
	assert.Equal(t, callback.ResultPayload{
		ScheduledPostID: &postID,
		Status:          service.UploadStatusPosted,
		PostURL:         "https://instagram.com/p/1",
	}, notifier.results[0])
	assert.Empty(t, notifier.failures)
	assert.Empty(t, scheduler.retries)
	assert.Equal(t, []observation{{task: tasks.AutoUpload, status: metrics.StatusSuccess}}, taskMetrics.observations)
}

func TestExecute_RecoversOnSecondAttempt(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("timeout")}
	notifier := &fakeNotifier{}
	scheduler := &fakeScheduler{}

	e := NewExecutor(scheduler, &fakeTaskMetrics{}, logger.NewNop(), UploadTask(uploader, notifier, uploadPolicy, logger.NewNop()))

	outcome, err := e.Execute(context.Background(), newUploadJob(t, "linkedin", ""))
	require.NoError(t, err)
	require.Equal(t, domain.StateRetryWait, outcome.State)
	assert.Equal(t, 60*time.Second, outcome.Delay)

	uploader.err = nil
	outcome, err = e.Execute(context.Background(), scheduler.retries[0].job)
	require.NoError(t, err)

	assert.Equal(t, domain.StateSucceeded, outcome.State)
	assert.Equal(t, 2, outcome.Attempt)
	assert.Empty(t, notifier.results)
	assert.Empty(t, notifier.failures)
}

func TestExecute_UnsupportedPlatformFailsWithoutRetry(t *testing.T) {
	uploads := service.NewUploadService(logger.NewNop(), platform.DefaultPublishers()...)
	notifier := &fakeNotifier{}
	scheduler := &fakeScheduler{}

	e := NewExecutor(scheduler, &fakeTaskMetrics{}, logger.NewNop(), UploadTask(uploads, notifier, uploadPolicy, logger.NewNop()))

	outcome, err := e.Execute(context.Background(), newUploadJob(t, "myspace", "https://example.com/cb"))
	require.NoError(t, err)

	assert.Equal(t, domain.StateFailed, outcome.State)
	assert.True(t, service.IsValidation(outcome.Err))
	assert.Empty(t, scheduler.retries)
	require.Len(t, notifier.failures, 1)
	assert.Equal(t, "Unsupported platform: myspace", notifier.failures[0].cause)
}

func TestExecute_InvalidArgsFailWithoutRetry(t *testing.T) {
	scheduler := &fakeScheduler{}
	e := NewExecutor(scheduler, &fakeTaskMetrics{}, logger.NewNop(), UploadTask(&fakeUploader{}, &fakeNotifier{}, uploadPolicy, logger.NewNop()))

	job := newUploadJob(t, "instagram", "")
	job.Args = []byte(`"not an object"`)

	outcome, err := e.Execute(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, domain.StateFailed, outcome.State)
	assert.ErrorIs(t, outcome.Err, tasks.ErrInvalidJob)
	assert.Empty(t, scheduler.retries)
}

func TestExecute_UnknownTask(t *testing.T) {
	e := NewExecutor(&fakeScheduler{}, &fakeTaskMetrics{}, logger.NewNop())

	job, err := tasks.NewJob("tasks.unknown", map[string]string{}, 0)
	require.NoError(t, err)

	_, err = e.Execute(context.Background(), job)
	assert.ErrorIs(t, err, domain.ErrUnknownTask)
}

func TestExecute_NoAttemptsLeft(t *testing.T) {
	uploader := &fakeUploader{}
	e := NewExecutor(&fakeScheduler{}, &fakeTaskMetrics{}, logger.NewNop(), UploadTask(uploader, &fakeNotifier{}, uploadPolicy, logger.NewNop()))

	job := newUploadJob(t, "instagram", "")
	job.Attempt = 3

	_, err := e.Execute(context.Background(), job)
	assert.ErrorIs(t, err, domain.ErrMaxRetriesExceeded)
	assert.Equal(t, 0, uploader.calls)
}

func TestExecute_JobMaxAttemptsOverridesPolicy(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("down")}
	notifier := &fakeNotifier{}
	scheduler := &fakeScheduler{}
	e := NewExecutor(scheduler, &fakeTaskMetrics{}, logger.NewNop(), UploadTask(uploader, notifier, uploadPolicy, logger.NewNop()))

	job := newUploadJob(t, "instagram", "https://example.com/cb")
	job.MaxAttempts = 1

	outcome, err := e.Execute(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, domain.StateFailed, outcome.State)
	assert.Empty(t, scheduler.retries)
	assert.Len(t, notifier.failures, 1)
}

func TestExecute_ScheduleFailureFailsJob(t *testing.T) {
	scheduler := &fakeScheduler{err: errors.New("channel closed")}
	notifier := &fakeNotifier{}
	uploader := &fakeUploader{err: errors.New("down")}
	e := NewExecutor(scheduler, &fakeTaskMetrics{}, logger.NewNop(), UploadTask(uploader, notifier, uploadPolicy, logger.NewNop()))

	outcome, err := e.Execute(context.Background(), newUploadJob(t, "instagram", "https://example.com/cb"))
	require.NoError(t, err)

	assert.Equal(t, domain.StateFailed, outcome.State)
	assert.Equal(t, 1, outcome.Attempt)
	assert.ErrorContains(t, outcome.Err, "channel closed")
	assert.Equal(t, 1, uploader.calls)
	require.Len(t, notifier.failures, 1)
	assert.Equal(t, int64(99), notifier.failures[0].postID)
	assert.Contains(t, notifier.failures[0].cause, "down")
}

func TestExecute_RetryCopyWalksLifecycle(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := NewExecutor(&fakeScheduler{}, &fakeTaskMetrics{}, log, UploadTask(&fakeUploader{}, &fakeNotifier{}, uploadPolicy, logger.NewNop()))

	job := newUploadJob(t, "instagram", "")
	job.Attempt = 1

	outcome, err := e.Execute(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, domain.StateSucceeded, outcome.State)
	assert.Equal(t, 2, outcome.Attempt)

	var moves []string
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(line, &rec))
		if rec["msg"] == "Job state changed" {
			moves = append(moves, fmt.Sprintf("%v->%v", rec["from"], rec["to"]))
		}
	}
	assert.Equal(t, []string{"retry_wait->pending", "pending->in_flight", "in_flight->succeeded"}, moves)
}

func TestLifecycle_RejectsInvalidTransition(t *testing.T) {
	e := NewExecutor(&fakeScheduler{}, &fakeTaskMetrics{}, logger.NewNop())
	lc := e.track(newUploadJob(t, "instagram", ""))

	require.Equal(t, domain.StatePending, lc.state)
	assert.ErrorIs(t, lc.moveTo(domain.StateSucceeded), domain.ErrInvalidTransition)
	assert.Equal(t, domain.StatePending, lc.state)

	require.NoError(t, lc.moveTo(domain.StateInFlight))
	require.NoError(t, lc.moveTo(domain.StateFailed))
	assert.ErrorIs(t, lc.moveTo(domain.StatePending), domain.ErrInvalidTransition)
}

type fakeCaptionGenerator struct {
	requests []caption.Request
	err      error
}

func (g *fakeCaptionGenerator) Generate(_ context.Context, req caption.Request) (*caption.Result, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return caption.Fallback(req), nil
}

func TestExecute_AIProcess(t *testing.T) {
	generator := &fakeCaptionGenerator{}
	taskMetrics := &fakeTaskMetrics{}
	e := NewExecutor(&fakeScheduler{}, taskMetrics, logger.NewNop(), AIProcessTask(generator, logger.NewNop()))

	job, err := tasks.NewJob(tasks.AIProcess, tasks.AIProcessArgs{ContentData: tasks.ContentData{
		Content: "AI",
		Trend:   []string{"llm"},
		Style:   "casual",
	}}, 0)
	require.NoError(t, err)

	outcome, err := e.Execute(context.Background(), job)
	require.NoError(t, err)
	require.Equal(t, domain.StateSucceeded, outcome.State)

	res, ok := outcome.Result.(*AIProcessResult)
	require.True(t, ok)
	assert.Equal(t, "success", res.Status)
	assert.True(t, res.Processed)
	assert.Contains(t, res.Result.Caption, "Exciting news about AI!")

	require.Len(t, generator.requests, 1)
	assert.Equal(t, caption.Request{Topic: "AI", Trend: []string{"llm"}, Style: "casual"}, generator.requests[0])
	assert.Equal(t, []observation{{task: tasks.AIProcess, status: metrics.StatusSuccess}}, taskMetrics.observations)
}

func TestExecute_AIProcessIsNotRetried(t *testing.T) {
	scheduler := &fakeScheduler{}
	e := NewExecutor(scheduler, &fakeTaskMetrics{}, logger.NewNop(), AIProcessTask(&fakeCaptionGenerator{err: errors.New("quota")}, logger.NewNop()))

	job, err := tasks.NewJob(tasks.AIProcess, tasks.AIProcessArgs{ContentData: tasks.ContentData{Topic: "AI"}}, 0)
	require.NoError(t, err)

	outcome, err := e.Execute(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, domain.StateFailed, outcome.State)
	assert.Empty(t, scheduler.retries)
}

func TestExecute_AIProcessNeedsTopic(t *testing.T) {
	generator := &fakeCaptionGenerator{}
	e := NewExecutor(&fakeScheduler{}, &fakeTaskMetrics{}, logger.NewNop(), AIProcessTask(generator, logger.NewNop()))

	job, err := tasks.NewJob(tasks.AIProcess, tasks.AIProcessArgs{}, 0)
	require.NoError(t, err)

	outcome, err := e.Execute(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, domain.StateFailed, outcome.State)
	assert.ErrorIs(t, outcome.Err, domain.ErrInvalidPayload)
	assert.Empty(t, generator.requests)
}

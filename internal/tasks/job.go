// Package tasks defines the queued job envelope shared by the API service,
// which enqueues jobs, and the worker service, which executes them.
package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Task names carried in Job.Task
const (
	AutoUpload = "tasks.auto_upload"
	AIProcess  = "tasks.ai_process"
)

// ContentType of encoded jobs on the wire
const ContentType = "application/json"

// ErrInvalidJob is returned when a message body is not a usable job
var ErrInvalidJob = errors.New("invalid job")

// Job is the queued unit of work. Attempt counts the attempts already made
// and only ever increases.
type Job struct {
	ID          uuid.UUID       `json:"id"`
	Task        string          `json:"task"`
	Args        json.RawMessage `json:"args"`
	Attempt     int             `json:"attempt"`
	MaxAttempts int             `json:"max_attempts,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AutoUploadArgs are the arguments of tasks.auto_upload
type AutoUploadArgs struct {
	ScheduledPostID int64    `json:"scheduled_post_id"`
	Platform        string   `json:"platform"`
	Content         string   `json:"content"`
	MediaURLs       []string `json:"media_urls"`
	CallbackURL     string   `json:"callback_url,omitempty"`
}

// ContentData is the input of tasks.ai_process. Topic wins over Content when
// both are set.
type ContentData struct {
	Topic   string   `json:"topic,omitempty"`
	Content string   `json:"content,omitempty"`
	Trend   []string `json:"trend,omitempty"`
	Style   string   `json:"style,omitempty"`
}

// AIProcessArgs are the arguments of tasks.ai_process
type AIProcessArgs struct {
	ContentData ContentData `json:"content_data"`
}

// NewJob builds a fresh job for task. maxAttempts of 0 leaves the limit to
// the worker's policy for that task.
func NewJob(task string, args any, maxAttempts int) (*Job, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s args: %w", task, err)
	}

	return &Job{
		ID:          uuid.New(),
		Task:        task,
		Args:        raw,
		MaxAttempts: maxAttempts,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Encode serializes the job for publishing
func (j *Job) Encode() ([]byte, error) {
	body, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job %s: %w", j.ID, err)
	}
	return body, nil
}

// DecodeArgs unmarshals the job arguments into v
func (j *Job) DecodeArgs(v any) error {
	if len(j.Args) == 0 {
		return fmt.Errorf("%w: %s has no args", ErrInvalidJob, j.Task)
	}
	if err := json.Unmarshal(j.Args, v); err != nil {
		return fmt.Errorf("%w: %s args: %v", ErrInvalidJob, j.Task, err)
	}
	return nil
}

// NextAttempt returns a copy of the job with one more attempt recorded
func (j *Job) NextAttempt() *Job {
	next := *j
	next.Attempt = j.Attempt + 1
	return &next
}

// Decode parses a message body. Bodies without a valid id or task name are
// rejected with ErrInvalidJob.
func Decode(body []byte) (*Job, error) {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}

	if job.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidJob)
	}

	if job.Task == "" {
		return nil, fmt.Errorf("%w: missing task name", ErrInvalidJob)
	}

	if job.Attempt < 0 {
		return nil, fmt.Errorf("%w: negative attempt %d", ErrInvalidJob, job.Attempt)
	}

	return &job, nil
}

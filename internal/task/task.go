// Package task manages background job queuing and processing. Speech
// synthesis for listening activities runs here so text generation calls
// return without waiting on audio vendors.
package task

import (
	"context"

	"github.com/google/uuid"
)

// Status represents the current state of a task.
type Status string

// Possible task status values.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// TypeAudioSynthesis identifies audio synthesis tasks.
const TypeAudioSynthesis = "audio_synthesis"

// Task represents a unit of background work to be processed.
type Task interface {
	// ID returns the task's unique identifier.
	ID() uuid.UUID

	// Type returns the task type identifier.
	Type() string

	// Status returns the current task status.
	Status() Status

	// Execute runs the task logic.
	Execute(ctx context.Context) error
}

// QueueReader provides read-only access to the task channel, allowing
// workers to consume tasks without the ability to enqueue.
type QueueReader interface {
	// Chan returns a read-only channel for consuming tasks.
	Chan() <-chan Task
}

// QueueWriter provides write access to the task queue.
type QueueWriter interface {
	// Enqueue adds a task to the queue for processing. Returns an error if
	// the queue is full or closed.
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission.
	Close()
}

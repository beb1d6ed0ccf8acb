package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/owlingo/owlingo-api/internal/domain"
	"github.com/owlingo/owlingo-api/internal/provider"
)

// AudioStore persists synthesized audio and the per-item synthesis outcome.
// The generation response is served before synthesis runs, always with
// pending items; callers learn about status flips from this store, never
// from the served activity.
type AudioStore interface {
	SaveAudio(ctx context.Context, activityID, itemID uuid.UUID, audio []byte, mimeType string) (string, error)
	MarkAudioReady(ctx context.Context, activityID, itemID uuid.UUID, url string) error
	MarkAudioFailed(ctx context.Context, activityID, itemID uuid.UUID) error
}

// Synthesizer is the speech synthesis dependency of audio tasks. Satisfied by
// *provider.TTSManager.
type Synthesizer interface {
	Synthesize(ctx context.Context, meta provider.CallMeta, text, voice string, opts provider.SynthesisOptions) (*provider.AudioResult, error)
}

// audioItem is the task's private snapshot of one pending listening item.
type audioItem struct {
	itemID uuid.UUID
	text   string
}

// AudioSynthesisTask synthesizes speech for the pending items of one
// listening activity. Items succeed or fail independently: a vendor failure
// on one item marks only that item failed.
//
// The task snapshots item IDs and texts at construction time and never
// touches the activity afterwards, so the activity can be marshaled into the
// HTTP response while workers run.
type AudioSynthesisTask struct {
	id         uuid.UUID
	teacherID  uuid.UUID
	activityID uuid.UUID
	items      []audioItem
	synth      Synthesizer
	store      AudioStore
	voice      string
	opts       provider.SynthesisOptions
	logger     *slog.Logger

	mu     sync.Mutex
	status Status
}

// NewAudioSynthesisTask builds a synthesis task over a snapshot of the
// activity's pending items. Call it before the activity is shared with other
// goroutines.
func NewAudioSynthesisTask(teacherID uuid.UUID, activity *domain.ListeningQuizActivity, synth Synthesizer, store AudioStore, voice string, opts provider.SynthesisOptions, logger *slog.Logger) (*AudioSynthesisTask, error) {
	if activity == nil {
		return nil, errors.New("activity is required")
	}
	if synth == nil {
		return nil, errors.New("synthesizer is required")
	}
	if store == nil {
		return nil, errors.New("audio store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	items := make([]audioItem, 0, len(activity.Items))
	for _, it := range activity.Items {
		if it.AudioStatus != domain.AudioStatusPending || it.AudioText == "" {
			continue
		}
		items = append(items, audioItem{itemID: it.ItemID, text: it.AudioText})
	}

	return &AudioSynthesisTask{
		id:         uuid.New(),
		teacherID:  teacherID,
		activityID: activity.ActivityID,
		items:      items,
		synth:      synth,
		store:      store,
		voice:      voice,
		opts:       opts,
		logger:     logger,
		status:     StatusPending,
	}, nil
}

// ID returns the task's unique identifier.
func (t *AudioSynthesisTask) ID() uuid.UUID { return t.id }

// Type returns the task type identifier.
func (t *AudioSynthesisTask) Type() string { return TypeAudioSynthesis }

// Status returns the current task status.
func (t *AudioSynthesisTask) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *AudioSynthesisTask) setStatus(s Status) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Execute synthesizes audio for every snapshotted item, reporting each
// outcome to the store. The task fails if any item fails, but items after a
// failed one are still attempted.
func (t *AudioSynthesisTask) Execute(ctx context.Context) error {
	t.setStatus(StatusProcessing)

	var errs []error
	for _, item := range t.items {
		if err := t.synthesizeItem(ctx, item); err != nil {
			errs = append(errs, fmt.Errorf("item %s: %w", item.itemID, err))
			if merr := t.store.MarkAudioFailed(ctx, t.activityID, item.itemID); merr != nil {
				errs = append(errs, fmt.Errorf("marking item %s failed: %w", item.itemID, merr))
			}
		}
	}

	if len(errs) > 0 {
		t.setStatus(StatusFailed)
		return errors.Join(errs...)
	}
	t.setStatus(StatusCompleted)
	return nil
}

func (t *AudioSynthesisTask) synthesizeItem(ctx context.Context, item audioItem) error {
	meta := provider.CallMeta{TeacherID: t.teacherID, Operation: TypeAudioSynthesis}
	res, err := t.synth.Synthesize(ctx, meta, item.text, t.voice, t.opts)
	if err != nil {
		return err
	}

	url, err := t.store.SaveAudio(ctx, t.activityID, item.itemID, res.Audio, res.MIMEType)
	if err != nil {
		return fmt.Errorf("storing audio: %w", err)
	}
	if err := t.store.MarkAudioReady(ctx, t.activityID, item.itemID, url); err != nil {
		return fmt.Errorf("marking audio ready: %w", err)
	}
	return nil
}

// AudioEnqueuer adapts the queue into the shape generation expects: one
// synthesis task per listening activity. The item snapshot is taken here,
// synchronously, before the caller's activity escapes to the response path.
type AudioEnqueuer struct {
	queue  QueueWriter
	synth  Synthesizer
	store  AudioStore
	voice  string
	opts   provider.SynthesisOptions
	logger *slog.Logger
}

// NewAudioEnqueuer wires an enqueuer over the queue and synthesis
// dependencies.
func NewAudioEnqueuer(queue QueueWriter, synth Synthesizer, store AudioStore, voice string, opts provider.SynthesisOptions, logger *slog.Logger) (*AudioEnqueuer, error) {
	if queue == nil {
		return nil, errors.New("task queue is required")
	}
	if synth == nil {
		return nil, errors.New("synthesizer is required")
	}
	if store == nil {
		return nil, errors.New("audio store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AudioEnqueuer{queue: queue, synth: synth, store: store, voice: voice, opts: opts, logger: logger}, nil
}

// EnqueueListeningActivity schedules synthesis for the activity's items.
func (e *AudioEnqueuer) EnqueueListeningActivity(_ context.Context, teacherID uuid.UUID, activity *domain.ListeningQuizActivity) error {
	t, err := NewAudioSynthesisTask(teacherID, activity, e.synth, e.store, e.voice, e.opts, e.logger)
	if err != nil {
		return err
	}
	return e.queue.Enqueue(t)
}

// MemoryAudioStore keeps synthesized audio and item statuses in memory. Used
// in tests and when no external audio storage is configured.
type MemoryAudioStore struct {
	mu       sync.Mutex
	audios   map[uuid.UUID][]byte
	statuses map[uuid.UUID]domain.AudioStatus
	urls     map[uuid.UUID]string
}

// NewMemoryAudioStore creates an empty in-memory audio store.
func NewMemoryAudioStore() *MemoryAudioStore {
	return &MemoryAudioStore{
		audios:   make(map[uuid.UUID][]byte),
		statuses: make(map[uuid.UUID]domain.AudioStatus),
		urls:     make(map[uuid.UUID]string),
	}
}

// SaveAudio stores the bytes and returns a synthetic URL for the item.
func (s *MemoryAudioStore) SaveAudio(_ context.Context, activityID, itemID uuid.UUID, audio []byte, _ string) (string, error) {
	s.mu.Lock()
	s.audios[itemID] = audio
	s.mu.Unlock()
	return fmt.Sprintf("memory://audio/%s/%s", activityID, itemID), nil
}

// MarkAudioReady records a successful synthesis outcome for the item.
func (s *MemoryAudioStore) MarkAudioReady(_ context.Context, _, itemID uuid.UUID, url string) error {
	s.mu.Lock()
	s.statuses[itemID] = domain.AudioStatusReady
	s.urls[itemID] = url
	s.mu.Unlock()
	return nil
}

// MarkAudioFailed records a failed synthesis outcome for the item.
func (s *MemoryAudioStore) MarkAudioFailed(_ context.Context, _, itemID uuid.UUID) error {
	s.mu.Lock()
	s.statuses[itemID] = domain.AudioStatusFailed
	s.mu.Unlock()
	return nil
}

// Audio returns the stored bytes for an item, if any.
func (s *MemoryAudioStore) Audio(itemID uuid.UUID) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.audios[itemID]
	return a, ok
}

// AudioStatus returns the recorded outcome and URL for an item, if any.
func (s *MemoryAudioStore) AudioStatus(itemID uuid.UUID) (domain.AudioStatus, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[itemID]
	return st, s.urls[itemID], ok
}

// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	recorderBufferSize = 1024
	insertTimeout      = 5 * time.Second
)

// Recorder is the buffered, asynchronous Sink implementation.
//
// Record enqueues; a single background goroutine drains the queue into the
// store. Close stops intake and flushes whatever is still buffered.
type Recorder struct {
	store  Store
	logger *slog.Logger

	queue chan Event

	closeOnce sync.Once
	done      chan struct{}
}

// NewRecorder constructs a [Recorder]. Call Run to start draining.
func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger,
		queue:  make(chan Event, recorderBufferSize),
		done:   make(chan struct{}),
	}
}

// Record enqueues an event without blocking. When the buffer is full the
// event is dropped and counted in the log; audit loss is preferable to
// stalling the request path.
func (recorder *Recorder) Record(event Event) {
	select {
	case recorder.queue <- event:
	default:
		recorder.logger.Warn("audit_event_dropped",
			slog.String("action", event.Action),
			slog.String("tenant_id", event.TenantID),
		)
	}
}

// Run drains the queue until the context is cancelled or Close is called.
// Blocks; run it on its own goroutine.
func (recorder *Recorder) Run(ctx context.Context) {
	for {
		select {
		case event := <-recorder.queue:
			recorder.persist(event)

		case <-recorder.done:
			recorder.drain()
			return

		case <-ctx.Done():
			recorder.drain()
			return
		}
	}
}

// Close stops intake and lets Run flush the remaining buffer. Safe to call
// more than once.
func (recorder *Recorder) Close() {
	recorder.closeOnce.Do(func() {
		close(recorder.done)
	})
}

// drain flushes everything still buffered at shutdown.
func (recorder *Recorder) drain() {
	for {
		select {
		case event := <-recorder.queue:
			recorder.persist(event)
		default:
			return
		}
	}
}

func (recorder *Recorder) persist(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
	defer cancel()

	if err := recorder.store.Insert(ctx, event); err != nil {
		recorder.logger.Error("audit_event_persist_failed",
			slog.String("action", event.Action),
			slog.Any("error", err),
		)
	}
}

// Newshound - Multi-Source News Aggregation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newshound

package services

import (
	"context"
	"fmt"
)

// IngestScheduler matches the ingestion manager's lifecycle methods.
//
// Satisfied by *ingest.Manager. The interface keeps this package free of
// a dependency on internal/ingest.
type IngestScheduler interface {
	// Start launches the scheduling loop. It returns once the loop is
	// running; the loop itself runs in a background goroutine.
	Start(ctx context.Context) error

	// Stop halts the loop and waits for an in-flight run to finish.
	Stop() error
}

// IngestService wraps the ingestion manager as a supervised service.
//
// The supervisor restarts the service if Start fails; on context
// cancellation the manager is stopped and any in-flight run drained.
type IngestService struct {
	scheduler IngestScheduler
	name      string
}

// NewIngestService creates a new ingestion service wrapper.
func NewIngestService(scheduler IngestScheduler) *IngestService {
	return &IngestService{
		scheduler: scheduler,
		name:      "ingest-manager",
	}
}

// Serve implements suture.Service. It starts the scheduler, blocks until
// the context is canceled, then stops the scheduler before returning.
func (s *IngestService) Serve(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("starting ingestion manager: %w", err)
	}

	<-ctx.Done()

	if err := s.scheduler.Stop(); err != nil {
		return fmt.Errorf("stopping ingestion manager: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for logging.
func (s *IngestService) String() string {
	return s.name
}

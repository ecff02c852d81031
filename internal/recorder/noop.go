package recorder

import "github.com/alexmartinsgomes/equity-analysis/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAnalysis(_ *model.Analysis) (string, error) { return "", nil }
func (n *NoopRecorder) RecordFailure(_ *Failure) error                   { return nil }
func (n *NoopRecorder) RecentRuns(_ string, _ int) ([]Run, error)        { return nil, nil }
func (n *NoopRecorder) Close() error                                     { return nil }

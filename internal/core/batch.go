package core

import (
	"context"

	"go.uber.org/zap"
)

// SeenStore tracks the file-name identity keys already emitted in this run.
type SeenStore interface {
	Has(key string) bool
	Add(key string)
	Size() int
}

// BatchProcessor drives a full list of raw queries through the dispatcher in
// input order and deduplicates the aggregate result by file name.
type BatchProcessor struct {
	dispatcher *Dispatcher
	seen       SeenStore
	logger     *zap.Logger
	metrics    Metrics
}

func NewBatchProcessor(dispatcher *Dispatcher, seen SeenStore, logger *zap.Logger, metrics Metrics) *BatchProcessor {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &BatchProcessor{
		dispatcher: dispatcher,
		seen:       seen,
		logger:     logger,
		metrics:    metrics,
	}
}

// Process classifies and dispatches every query in order and returns the
// deduplicated song list. The first occurrence of a file name wins and the
// relative encounter order is preserved. Queries are processed sequentially
// because each dedup decision depends on the seen-set built by the earlier
// ones; failing queries are logged by the dispatcher and contribute nothing.
func (b *BatchProcessor) Process(ctx context.Context, queries []string) []*Song {
	var songs []*Song

	for _, raw := range queries {
		c := Classify(raw)
		if c.Kind == KindSkip {
			b.logger.Debug("Skipping tracking file artifact", zap.String("query", raw))
			continue
		}

		result := b.dispatcher.Dispatch(ctx, c)

		for _, song := range result.Songs {
			key := song.FileName()
			if b.seen.Has(key) {
				b.logger.Debug("Dropping duplicate song", zap.String("file", key))
				b.metrics.RecordDuplicate()
				continue
			}
			b.seen.Add(key)
			songs = append(songs, song)
		}
	}

	b.logger.Info("Batch complete",
		zap.Int("queries", len(queries)),
		zap.Int("songs", len(songs)))

	return songs
}

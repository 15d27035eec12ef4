package precompress

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Run compresses every regular file below cfg.Root with every requested codec
// and returns the report of the run.
//
// Configuration problems are returned as an error before any file is touched.
// Item failures never abort the run; they are recorded in the report. When
// ctx is cancelled or cfg.Timeout expires, enumeration stops, items already
// handed to a worker finish, and the partial report is returned with
// Cancelled set and a nil error.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfiguration)
	}
	c := cfg.clone()

	skip, err := c.validate()
	if err != nil {
		return nil, err
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	log := c.Logger.With(zap.String("root", c.Root))
	rep := newReport(c)

	// Written by the walking goroutine only, read after it has returned.
	var events []WalkEvent
	walker := NewWalker(c.Fs, WalkOptions{
		Skip:              skip,
		MinSize:           c.MinSize,
		IncludeCompressed: c.IncludeCompressed,
		OnEvent: func(ev WalkEvent) {
			events = append(events, ev)
			logEvent(log, ev)
		},
	})
	files, err := walker.Walk(ctx, c.Root)
	if err != nil {
		return nil, err
	}

	worker := NewWorker(c.Fs, WorkerOptions{
		Levels:      c.Levels,
		MaxFileSize: c.MaxFileSize,
		Verify:      c.Verify,
		Logger:      c.Logger,
	})
	pool := NewPool(c.Concurrency, worker.Process)

	log.Info("run started",
		zap.Stringers("codecs", c.Codecs),
		zap.Int("concurrency", c.Concurrency))

	paths := make(chan string, c.Concurrency)
	items := make(chan WorkItem)

	var (
		enumerated int
		pending    int
	)

	// The walking goroutine returns the context error when it stops early,
	// which also cancels gctx for the expander and the pool.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(paths)
		for path := range files {
			select {
			case paths <- path:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return ctx.Err()
	})
	g.Go(func() error {
		defer close(items)
		for path := range paths {
			enumerated++
			for _, codec := range c.Codecs {
				if gctx.Err() != nil {
					pending++
					continue
				}
				select {
				case items <- WorkItem{Path: path, Codec: codec}:
				case <-gctx.Done():
					pending++
				}
			}
		}
		return nil
	})

	for res := range pool.Run(gctx, items) {
		rep.add(res)
		if res.Err != nil {
			log.Warn("item failed",
				zap.String("path", res.Item.Path),
				zap.Stringer("codec", res.Item.Codec),
				zap.String("kind", string(res.Err.Kind)),
				zap.Error(res.Err.Err))
		}
		if c.OnResult != nil {
			c.OnResult(res)
		}
	}
	interrupted := g.Wait() != nil

	for _, ev := range events {
		rep.addEvent(ev)
	}
	rep.Files = enumerated
	rep.Total = enumerated * len(c.Codecs)
	rep.Pending = pending
	rep.Cancelled = interrupted || pending > 0
	rep.FinishedAt = time.Now()
	rep.Finalize()

	log.Info("run finished",
		zap.String("status", string(rep.Status())),
		zap.Int("files", rep.Files),
		zap.Int("succeeded", rep.Succeeded),
		zap.Int("failed", rep.Failed),
		zap.Int("pending", rep.Pending),
		zap.Duration("elapsed", rep.Duration()))
	return rep, nil
}

func logEvent(log *zap.Logger, ev WalkEvent) {
	fields := []zap.Field{zap.String("path", ev.Path)}
	if ev.Target != "" {
		fields = append(fields, zap.String("target", ev.Target))
	}
	switch ev.Kind {
	case EventCycleSkipped:
		log.Info("symlink cycle skipped", fields...)
	case EventOutsideRoot:
		log.Info("symlink outside root skipped", fields...)
	case EventAliasSkipped:
		log.Debug("symlink alias skipped", fields...)
	case EventEntryError:
		log.Warn("entry skipped", append(fields, zap.String("error", ev.Message))...)
	case EventFiltered:
		log.Debug("file filtered", append(fields, zap.String("reason", ev.Message))...)
	}
}

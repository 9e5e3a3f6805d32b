// Package pipeline runs a linear sequence of record stages over a stream.
//
// A record travels the whole chain of stages before the next one is read,
// so a stage never sees a record ahead of its predecessor. Nothing fans out
// and nothing buffers the whole stream.
package pipeline

import (
	"context"

	"github.com/custodia-labs/lakesync/internal/core/domain"
)

// Verdict is a stage's decision for one record.
type Verdict int

const (
	// Pass forwards the record to the next stage.
	Pass Verdict = iota

	// Drop discards the record and continues with the next one.
	Drop
)

// Stage inspects one record. Returning an error aborts the pipeline.
type Stage func(ctx context.Context, doc domain.Document) (Verdict, error)

// Source produces records in order by calling emit for each one.
// emit returns an error once the pipeline has been aborted.
type Source func(ctx context.Context, emit func(domain.Document) error) error

// Filter adapts a predicate into a stage that never fails.
func Filter(keep func(domain.Document) bool) Stage {
	return func(_ context.Context, doc domain.Document) (Verdict, error) {
		if keep(doc) {
			return Pass, nil
		}
		return Drop, nil
	}
}

// Run streams every record from src through stages in order.
// Each record passes through every stage before the source is asked for
// the next one, so when a stage fails every earlier record has already
// been fully handled. Records passing the final stage are discarded, so
// the final stage is normally a sink with side effects. The first error
// from the source or any stage stops the run and is returned.
func Run(ctx context.Context, src Source, stages ...Stage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return src(ctx, func(doc domain.Document) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return runStages(ctx, stages, doc)
	})
}

func runStages(ctx context.Context, stages []Stage, doc domain.Document) error {
	for _, stage := range stages {
		verdict, err := stage(ctx, doc)
		if err != nil {
			return err
		}
		if verdict == Drop {
			return nil
		}
	}
	return nil
}

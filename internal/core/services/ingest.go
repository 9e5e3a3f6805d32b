package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/drafts"
	"github.com/custodia-labs/lakesync/internal/core/overlay"
	"github.com/custodia-labs/lakesync/internal/core/pipeline"
	"github.com/custodia-labs/lakesync/internal/logger"
	"github.com/custodia-labs/lakesync/internal/metrics"
)

// SystemPrefix marks platform-internal documents. They are never materialized.
const SystemPrefix = "_."

// IngestResult summarises a bulk load.
type IngestResult struct {
	// Materialized is the number of published documents written to the store.
	Materialized int

	// DraftsOverlaid is the number of drafts written by the overlay pass.
	DraftsOverlaid int

	// Skipped is the number of documents with undeclared types.
	Skipped int

	// Dropped is the number of malformed, system or filtered draft records.
	Dropped int

	// Removed is the number of nodes left by an earlier load that were
	// not in this export.
	Removed int
}

// ingestCounters are shared by the pipeline stages of one load.
type ingestCounters struct {
	materialized atomic.Int64
	skipped      atomic.Int64
	dropped      atomic.Int64

	// written holds the node ids this load wrote.
	written map[string]struct{}
}

func (c *ingestCounters) drop(reason string) {
	c.dropped.Add(1)
	metrics.RecordsDropped.WithLabelValues(reason).Inc()
}

// Ingester runs the bulk load pipeline over an export stream.
type Ingester struct {
	materializer *Materializer
}

// NewIngester creates an ingester that writes through materializer.
func NewIngester(materializer *Materializer) *Ingester {
	return &Ingester{materializer: materializer}
}

// Ingest reads newline-delimited documents from r and materializes them.
//
// Each record is validated, system documents are dropped, drafts are either
// removed or collected into session, and published documents are upserted
// in stream order. Only once the stream has been read to the end without
// error are the collected drafts applied, so drafts never show up part way
// through a load. Nodes the store still holds from an earlier load that
// were not written this time are then removed. An error record in the
// stream or a read failure aborts the load; documents already written stay
// in the store and nothing is removed.
func (i *Ingester) Ingest(ctx context.Context, r io.Reader, session *overlay.Session) (*IngestResult, error) {
	counters := &ingestCounters{written: make(map[string]struct{})}
	result := &IngestResult{}
	collect := func() {
		result.Materialized = int(counters.materialized.Load())
		result.Skipped = int(counters.skipped.Load())
		result.Dropped = int(counters.dropped.Load())
	}

	route := countDrops(drafts.RemoveDrafts(), counters, metrics.ReasonDraft)
	if session.OverlayDrafts() {
		route = drafts.ExtractDrafts(session)
	}

	err := pipeline.Run(ctx,
		decodeLines(r, counters),
		validateRecord(counters),
		removeSystemDocuments(counters),
		route,
		i.materialize(counters),
	)
	collect()
	if err != nil {
		return result, fmt.Errorf("ingest export stream: %w", err)
	}

	pending := session.Drafts()
	if len(pending) > 0 {
		logger.Info("Overlaying %d drafts", len(pending))
	}
	for _, draft := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := i.materializer.Upsert(ctx, draft); err != nil {
			if errors.Is(err, domain.ErrUnsupportedType) {
				result.Skipped++
				metrics.RecordsDropped.WithLabelValues(metrics.ReasonType).Inc()
				continue
			}
			return result, fmt.Errorf("overlay draft %s: %w", draft.ID(), err)
		}
		counters.written[i.materializer.NodeID(draft.ID())] = struct{}{}
		result.DraftsOverlaid++
		metrics.DocumentsMaterialized.WithLabelValues(metrics.PhaseOverlay).Inc()
	}

	removed, err := i.materializer.Sweep(ctx, counters.written)
	result.Removed = removed
	if err != nil {
		return result, fmt.Errorf("remove stale nodes: %w", err)
	}
	if removed > 0 {
		logger.Info("Removed %d nodes no longer in the export", removed)
	}
	return result, nil
}

func (i *Ingester) materialize(counters *ingestCounters) pipeline.Stage {
	return func(ctx context.Context, doc domain.Document) (pipeline.Verdict, error) {
		if err := i.materializer.Upsert(ctx, doc); err != nil {
			if errors.Is(err, domain.ErrUnsupportedType) {
				counters.skipped.Add(1)
				metrics.RecordsDropped.WithLabelValues(metrics.ReasonType).Inc()
				return pipeline.Drop, nil
			}
			return pipeline.Drop, err
		}
		counters.materialized.Add(1)
		counters.written[i.materializer.NodeID(doc.ID())] = struct{}{}
		metrics.DocumentsMaterialized.WithLabelValues(metrics.PhaseBulk).Inc()
		return pipeline.Pass, nil
	}
}

// decodeLines emits one document per non-empty line of r. Lines that are
// not JSON objects are dropped.
func decodeLines(r io.Reader, counters *ingestCounters) pipeline.Source {
	return func(_ context.Context, emit func(domain.Document) error) error {
		br := bufio.NewReader(r)
		for {
			line, readErr := br.ReadBytes('\n')
			if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
				var doc domain.Document
				if err := json.Unmarshal(trimmed, &doc); err != nil || doc == nil {
					logger.Debug("Dropping malformed export line: %v", err)
					counters.drop(metrics.ReasonMalformed)
				} else if err := emit(doc); err != nil {
					return err
				}
			}

			if errors.Is(readErr, io.EOF) {
				return nil
			}
			if readErr != nil {
				return fmt.Errorf("read export stream: %w", readErr)
			}
		}
	}
}

// validateRecord passes documents carrying both an id and a type, fails on
// an error record and drops anything else.
func validateRecord(counters *ingestCounters) pipeline.Stage {
	return func(_ context.Context, doc domain.Document) (pipeline.Verdict, error) {
		if doc.ID() != "" && doc.Type() != "" {
			return pipeline.Pass, nil
		}
		if upstream, ok := upstreamError(doc); ok {
			return pipeline.Drop, upstream
		}
		counters.drop(metrics.ReasonMalformed)
		return pipeline.Drop, nil
	}
}

// upstreamError recognises an error record: a numeric status code and a
// message in place of id and type.
func upstreamError(doc domain.Document) (*domain.UpstreamError, bool) {
	code, ok := doc["statusCode"].(float64)
	if !ok || code == 0 {
		return nil, false
	}
	msg, _ := doc["error"].(string)
	if msg == "" {
		msg, _ = doc["message"].(string)
	}
	if msg == "" {
		return nil, false
	}
	return &domain.UpstreamError{StatusCode: int(code), Message: msg}, true
}

func removeSystemDocuments(counters *ingestCounters) pipeline.Stage {
	return func(_ context.Context, doc domain.Document) (pipeline.Verdict, error) {
		if strings.HasPrefix(doc.ID(), SystemPrefix) {
			counters.drop(metrics.ReasonSystem)
			return pipeline.Drop, nil
		}
		return pipeline.Pass, nil
	}
}

func countDrops(stage pipeline.Stage, counters *ingestCounters, reason string) pipeline.Stage {
	return func(ctx context.Context, doc domain.Document) (pipeline.Verdict, error) {
		verdict, err := stage(ctx, doc)
		if err == nil && verdict == pipeline.Drop {
			counters.drop(reason)
		}
		return verdict, err
	}
}

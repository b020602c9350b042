package lakesrv

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/meridian-hr/funnel/internal/pdf"
	"github.com/meridian-hr/funnel/pkg/errx"
	"github.com/meridian-hr/funnel/pkg/fsx"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/pkg/logx"
	"github.com/meridian-hr/funnel/recruitment/lake"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWriteAttempts     = 3
	defaultProjectionTimeout = 60 * time.Second
	maxParallelWrites        = 4
	writeBackoffBase         = 200 * time.Millisecond
)

// Projector transforms one committed application into star-schema JSON
// documents plus extracted PDF blobs and writes them to the object lake. It
// never writes to the authoritative database; a failed projection leaves a
// reconciliation record and is replayed against the same deterministic keys.
type Projector struct {
	bundles   lake.BundleReader
	store     fsx.FileSystem
	recons    lake.ReconciliationRepository
	inspector pdf.Inspector

	writeAttempts int
	timeout       time.Duration
}

// NewProjector creates a projector. writeAttempts <= 0 falls back to the
// default of 3; inspector may be nil, in which case page counts are omitted.
func NewProjector(
	bundles lake.BundleReader,
	store fsx.FileSystem,
	recons lake.ReconciliationRepository,
	inspector pdf.Inspector,
	writeAttempts int,
) *Projector {
	if writeAttempts <= 0 {
		writeAttempts = defaultWriteAttempts
	}
	return &Projector{
		bundles:       bundles,
		store:         store,
		recons:        recons,
		inspector:     inspector,
		writeAttempts: writeAttempts,
		timeout:       defaultProjectionTimeout,
	}
}

// Project loads the application bundle and writes every lake object. It
// runs under its own deadline, independent of the caller's. Partial blobs
// from a cancelled run are acceptable: keys are deterministic and the next
// replay overwrites them.
func (p *Projector) Project(ctx context.Context, applicationID kernel.ApplicationID) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	logx.Infof("Projecting application to lake: application=%s", applicationID)

	bundle, err := p.bundles.Load(ctx, applicationID)
	if err != nil {
		// A missing application can never be replayed successfully, so it
		// leaves no reconciliation record.
		if errx.IsCode(err, lake.CodeBundleNotFound) {
			return err
		}
		p.recordFailure(applicationID, err)
		return err
	}

	if err := p.writeBundle(ctx, bundle); err != nil {
		logx.Errorf("Lake projection failed: application=%s error=%v", applicationID, err)
		p.recordFailure(applicationID, err)
		return lake.ErrRegistry.NewWithCause(lake.CodeWriteFailed, err).
			WithDetail("application_id", applicationID)
	}

	logx.Infof("Lake projection complete: application=%s documents=%d",
		applicationID, len(bundle.Application.Documents))
	return nil
}

// Replay re-projects a batch of ids, resolving their reconciliation records
// on success. Failures are reported per id; one bad id does not stop the
// batch.
func (p *Projector) Replay(ctx context.Context, req lake.ReplayRequest) []lake.ReplayOutcome {
	outcomes := make([]lake.ReplayOutcome, 0, len(req.ApplicationIDs))

	for _, id := range req.ApplicationIDs {
		if err := p.Project(ctx, id); err != nil {
			outcomes = append(outcomes, lake.ReplayOutcome{
				ApplicationID: id,
				Status:        lake.ReplayStatusFailed,
				Error:         err.Error(),
			})
			continue
		}

		if err := p.recons.MarkReplayed(ctx, id); err != nil {
			// The blobs are in place; a stale pending record only means the
			// operator sees it again on the next listing.
			logx.Errorf("Failed to resolve reconciliation record: application=%s error=%v", id, err)
		}

		outcomes = append(outcomes, lake.ReplayOutcome{
			ApplicationID: id,
			Status:        lake.ReplayStatusReplayed,
		})
	}

	return outcomes
}

// ListReconciliation returns the replay log for operators.
func (p *Projector) ListReconciliation(ctx context.Context, req lake.ListReconciliationRequest) (*kernel.Paginated[lake.ReconciliationRecord], error) {
	req.Pagination = req.Pagination.Normalized()
	return p.recons.List(ctx, req)
}

type lakeBlob struct {
	key  string
	data []byte
	meta fsx.Metadata
}

// writeBundle builds all objects for one application and writes them in
// parallel, bounded, each with its own retry budget. Any single failure
// fails the projection.
func (p *Projector) writeBundle(ctx context.Context, bundle *lake.Bundle) error {
	blobs, err := p.buildBlobs(bundle)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelWrites)

	for i := range blobs {
		blob := blobs[i]
		g.Go(func() error {
			return p.writeWithRetry(gctx, blob)
		})
	}

	return g.Wait()
}

func (p *Projector) buildBlobs(bundle *lake.Bundle) ([]lakeBlob, error) {
	app := bundle.Application

	candidateDoc, err := json.Marshal(lake.BuildCandidateDimension(bundle))
	if err != nil {
		return nil, fmt.Errorf("marshal candidate dimension: %w", err)
	}
	offerDoc, err := json.Marshal(lake.BuildOfferDimension(bundle))
	if err != nil {
		return nil, fmt.Errorf("marshal offer dimension: %w", err)
	}
	factDoc, err := json.Marshal(lake.BuildApplicationFact(bundle))
	if err != nil {
		return nil, fmt.Errorf("marshal application fact: %w", err)
	}

	blobs := make([]lakeBlob, 0, 3+len(app.Documents))
	blobs = append(blobs,
		lakeBlob{key: lake.CandidateDimensionKey(app.SubmittedAt, app.CandidateID), data: candidateDoc},
		lakeBlob{key: lake.OfferDimensionKey(app.SubmittedAt, app.OfferID), data: offerDoc},
		lakeBlob{key: lake.ApplicationFactKey(app.SubmittedAt, app.ID), data: factDoc},
	)

	for i := range app.Documents {
		doc := &app.Documents[i]
		meta := fsx.Metadata{
			"application_id": app.ID.String(),
			"candidate_id":   app.CandidateID.String(),
			"document_type":  string(doc.Type),
			"ready_for_ocr":  "true",
		}
		if p.inspector != nil {
			if pages, err := p.inspector.PageCount(doc.Content); err != nil {
				logx.Warnf("PDF inspection failed, omitting page count: document=%s error=%v", doc.ID, err)
			} else {
				meta["page_count"] = strconv.Itoa(pages)
			}
		}
		blobs = append(blobs, lakeBlob{
			key:  lake.DocumentKey(app.SubmittedAt, app.ID, doc.Type, doc.FileName),
			data: doc.Content,
			meta: meta,
		})
	}

	return blobs, nil
}

func (p *Projector) writeWithRetry(ctx context.Context, blob lakeBlob) error {
	var lastErr error
	for attempt := 0; attempt < p.writeAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * writeBackoffBase
			backoff += time.Duration(rand.Int63n(int64(writeBackoffBase)))
			select {
			case <-ctx.Done():
				return fmt.Errorf("write %s cancelled: %w", blob.key, ctx.Err())
			case <-time.After(backoff):
			}
		}

		if lastErr = p.store.WriteFile(ctx, blob.key, blob.data, blob.meta); lastErr == nil {
			return nil
		}
		logx.Warnf("Lake write failed: key=%s attempt=%d/%d error=%v",
			blob.key, attempt+1, p.writeAttempts, lastErr)
	}

	return fmt.Errorf("write %s: %w", blob.key, lastErr)
}

func (p *Projector) recordFailure(applicationID kernel.ApplicationID, cause error) {
	// Fresh context: the projection deadline may already have expired.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	rec := &lake.ReconciliationRecord{
		ID:            kernel.NewReconciliationID(uuid.NewString()),
		ApplicationID: applicationID,
		Reason:        lake.ReasonProjectionFailed,
		Attempts:      p.writeAttempts,
		LastError:     cause.Error(),
		Status:        lake.ReconciliationPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := p.recons.Upsert(ctx, rec); err != nil {
		logx.Errorf("Failed to persist reconciliation record: application=%s error=%v", applicationID, err)
	}
}

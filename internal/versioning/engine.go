package versioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/acrd/internal/acr"
)

const instrumentationName = "github.com/fyrsmithlabs/acrd/internal/versioning"

// maxAllocateRetries bounds how often CreateVersion re-reads the latest
// version after losing an allocation race.
const maxAllocateRetries = 5

// Engine records immutable document versions and answers history queries.
// Version numbers per document are allocated optimistically: read the
// latest, try latest+1, and retry on conflict. The store's insert-if-absent
// guarantee is what keeps concurrent writers from sharing a number.
type Engine struct {
	store  Store
	logger *zap.Logger

	clock func() time.Time
	newID func() string

	// Telemetry
	tracer         trace.Tracer
	meter          metric.Meter
	versionCounter metric.Int64Counter
}

// NewEngine creates a version engine on a store.
func NewEngine(store Store, logger *zap.Logger) (*Engine, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		store:  store,
		logger: logger,
		clock:  time.Now,
		newID:  uuid.NewString,
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}

	e.initMetrics()

	return e, nil
}

// initMetrics initializes OpenTelemetry metrics.
func (e *Engine) initMetrics() {
	var err error

	e.versionCounter, err = e.meter.Int64Counter(
		"acrd.versioning.versions_created_total",
		metric.WithDescription("Total number of document versions created"),
		metric.WithUnit("{version}"),
	)
	if err != nil {
		e.logger.Warn("failed to create version counter", zap.Error(err))
	}
}

// WithClock overrides the time source, for deterministic tests.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// WithIDFunc overrides record id generation, for deterministic tests.
func (e *Engine) WithIDFunc(newID func() string) *Engine {
	e.newID = newID
	return e
}

// CreateVersion stores a new version of the document and returns the
// record. The first version for a document gets a single creation
// changelog entry; later versions carry the field diff against the
// previous snapshot. The snapshot's Version field is overwritten with the
// allocated number so snapshot and record never disagree.
func (e *Engine) CreateVersion(ctx context.Context, doc *acr.Document, createdBy, reason string) (*Version, error) {
	ctx, span := e.tracer.Start(ctx, "versioning.CreateVersion",
		trace.WithAttributes(
			attribute.String("acr.id", doc.ID),
			attribute.String("created.by", createdBy),
		))
	defer span.End()

	if doc.ID == "" {
		err := errors.New("document id is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= maxAllocateRetries; attempt++ {
		latest, err := e.store.Latest(ctx, doc.ID)
		if err != nil && !errors.Is(err, ErrVersionNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to read latest version: %w", err)
		}

		next := 1
		var prevSnapshot *acr.Document
		if latest != nil {
			next = latest.Version + 1
			prevSnapshot = &latest.Snapshot
		}

		changes := diffDocuments(prevSnapshot, doc)
		if reason != "" {
			for i := range changes {
				changes[i].Reason = reason
			}
		}

		snapshot := *doc
		snapshot.Version = next

		rec := &Version{
			ID:        e.newID(),
			AcrID:     doc.ID,
			Version:   next,
			CreatedAt: e.clock().UTC(),
			CreatedBy: createdBy,
			ChangeLog: changes,
			Snapshot:  snapshot,
		}

		if err := e.store.Insert(ctx, rec); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				lastErr = err
				e.logger.Debug("version allocation conflict, retrying",
					zap.String("acr_id", doc.ID),
					zap.Int("version", next),
					zap.Int("attempt", attempt+1),
				)
				continue
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to store version: %w", err)
		}

		if e.versionCounter != nil {
			e.versionCounter.Add(ctx, 1, metric.WithAttributes(
				attribute.String("acr.id", doc.ID),
			))
		}
		span.SetAttributes(attribute.Int("acr.version", next))

		e.logger.Info("created version",
			zap.String("acr_id", doc.ID),
			zap.Int("version", next),
			zap.String("created_by", createdBy),
			zap.Int("changes", len(changes)),
		)
		return rec, nil
	}

	err := fmt.Errorf("failed to allocate version after %d attempts: %w", maxAllocateRetries+1, lastErr)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return nil, err
}

// GetVersion returns one stored version of a document.
func (e *Engine) GetVersion(ctx context.Context, acrID string, version int) (*Version, error) {
	ctx, span := e.tracer.Start(ctx, "versioning.GetVersion",
		trace.WithAttributes(
			attribute.String("acr.id", acrID),
			attribute.Int("acr.version", version),
		))
	defer span.End()

	v, err := e.store.Get(ctx, acrID, version)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return v, nil
}

// GetVersions returns a document's full history, oldest first.
func (e *Engine) GetVersions(ctx context.Context, acrID string) ([]*Version, error) {
	ctx, span := e.tracer.Start(ctx, "versioning.GetVersions",
		trace.WithAttributes(attribute.String("acr.id", acrID)))
	defer span.End()

	versions, err := e.store.List(ctx, acrID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("acr.version_count", len(versions)))
	return versions, nil
}

// GetLatestVersion returns the newest stored version of a document.
func (e *Engine) GetLatestVersion(ctx context.Context, acrID string) (*Version, error) {
	ctx, span := e.tracer.Start(ctx, "versioning.GetLatestVersion",
		trace.WithAttributes(attribute.String("acr.id", acrID)))
	defer span.End()

	v, err := e.store.Latest(ctx, acrID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return v, nil
}

// CompareVersions diffs two stored versions of the same document. The pair
// need not be adjacent, and comparing a version against itself yields an
// empty change list.
func (e *Engine) CompareVersions(ctx context.Context, acrID string, versionA, versionB int) (*Comparison, error) {
	ctx, span := e.tracer.Start(ctx, "versioning.CompareVersions",
		trace.WithAttributes(
			attribute.String("acr.id", acrID),
			attribute.Int("acr.version_a", versionA),
			attribute.Int("acr.version_b", versionB),
		))
	defer span.End()

	a, err := e.store.Get(ctx, acrID, versionA)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("version %d: %w", versionA, err)
	}
	b, err := e.store.Get(ctx, acrID, versionB)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("version %d: %w", versionB, err)
	}

	changes := diffDocuments(&a.Snapshot, &b.Snapshot)
	return &Comparison{
		AcrID:    acrID,
		VersionA: versionA,
		VersionB: versionB,
		Changes:  changes,
		Summary:  summarize(changes),
	}, nil
}

// DeleteVersions removes a document's entire history and returns how many
// records were purged.
func (e *Engine) DeleteVersions(ctx context.Context, acrID string) (int, error) {
	ctx, span := e.tracer.Start(ctx, "versioning.DeleteVersions",
		trace.WithAttributes(attribute.String("acr.id", acrID)))
	defer span.End()

	n, err := e.store.Purge(ctx, acrID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Int("acr.purged", n))
	e.logger.Info("deleted version history",
		zap.String("acr_id", acrID),
		zap.Int("purged", n),
	)
	return n, nil
}

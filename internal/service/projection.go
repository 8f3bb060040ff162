// internal/service/projection.go
package service

import (
	"context"
	"log/slog"

	"ledgerflow-wallet/internal/domain"
	"ledgerflow-wallet/internal/repository"
)

// Projector applies committed events to one read model. Projectors are
// eventually-consistent followers: they run after the financial commit and
// their failures never roll it back.
type Projector interface {
	Name() string
	Handle(ctx context.Context, q repository.DBExecutor, event domain.StoredEvent) error
}

// ProjectionDispatcher hands newly committed events to the registered
// projectors, fire-and-forget from the ledger's perspective.
type ProjectionDispatcher interface {
	Deliver(ctx context.Context, events []domain.StoredEvent)
}

type projectionDispatcher struct {
	dbExecutor repository.DBExecutor
	projectors []Projector
	logger     *slog.Logger
}

// NewProjectionDispatcher creates a dispatcher over the given projectors.
func NewProjectionDispatcher(dbExecutor repository.DBExecutor, logger *slog.Logger, projectors ...Projector) ProjectionDispatcher {
	return &projectionDispatcher{
		dbExecutor: dbExecutor,
		projectors: projectors,
		logger:     logger,
	}
}

// Deliver applies each committed event to every projector in commit order.
// A projector error is logged with full context and skipped: the event log is
// already consistent, and a lagging read model heals on a later rebuild.
func (d *projectionDispatcher) Deliver(ctx context.Context, events []domain.StoredEvent) {
	for _, event := range events {
		for _, p := range d.projectors {
			if err := p.Handle(ctx, d.dbExecutor, event); err != nil {
				d.logger.Error("Projection failed",
					"projector", p.Name(),
					"event_kind", event.Kind,
					"stream_id", event.StreamID,
					"version", event.Version,
					"error", err)
			}
		}
	}
}

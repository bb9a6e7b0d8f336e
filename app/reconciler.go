package app

import (
	"context"
	"errors"
	"log/slog"

	"ainews/domain"
	"ainews/internal/logging"
)

// Reconciler decides, per candidate, whether to create a record, backfill its
// metadata, or leave it alone. Once a record has an image it is never touched
// again.
type Reconciler struct {
	repo   domain.NewsRepository
	logger *slog.Logger
}

func NewReconciler(repo domain.NewsRepository, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Reconciler{repo: repo, logger: logger}
}

// Reconcile never returns an error; store failures are logged and reported as
// Skipped so the rest of the batch keeps going. enricher runs only when the
// record is missing or still lacks an image, and may be nil.
func (r *Reconciler) Reconcile(ctx context.Context, enricher domain.Enricher, item domain.Candidate) domain.Action {
	log := r.logger.With("url", item.URL, "source", item.Source)

	existing, err := r.repo.FindByURL(ctx, item.URL)
	if err != nil {
		log.Warn("lookup failed", logging.Err(err))
		return domain.Skipped
	}
	if existing != nil && existing.HasImage() {
		return domain.Skipped
	}

	if enricher != nil {
		enricher.Enrich(ctx, &item)
	}

	if existing == nil {
		if _, err := r.repo.Create(ctx, item.NewsItem()); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				log.Debug("item created concurrently")
			} else {
				log.Warn("create failed", logging.Err(err))
			}
			return domain.Skipped
		}
		log.Debug("item created", "title", item.Title)
		return domain.Created
	}

	patch := domain.MetadataPatch{ImageURL: item.ImageURL, Summary: item.Summary}
	if patch.Empty() {
		return domain.Skipped
	}
	if _, err := r.repo.UpdateMetadata(ctx, item.URL, patch); err != nil {
		if errors.Is(err, domain.ErrNotUpdated) {
			log.Debug("item imaged concurrently")
		} else {
			log.Warn("metadata update failed", logging.Err(err))
		}
		return domain.Skipped
	}
	log.Info("updated metadata", "title", item.Title)
	return domain.MetadataUpdated
}

package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/project"
)

// Repository returns the announcement with the given ID.
func (e *Engine) Repository(ctx context.Context, id string) (project.RepositoryRecord, error) {
	evs, err := e.fetch(ctx, "repository", event.Filter{
		IDs:   []string{id},
		Kinds: []event.Kind{event.KindRepository},
	})
	if err != nil {
		return project.RepositoryRecord{}, err
	}

	repos, excluded := project.Repositories(evs)
	e.excluded(ctx, "repository", excluded)
	for _, r := range repos {
		if r.ID == id {
			e.metrics.IncrementProjection("repository")
			e.enrich(ctx, []string{r.Owner})
			return r, nil
		}
	}
	return project.RepositoryRecord{}, fmt.Errorf("repository %s: %w", id, ErrNotFound)
}

// Repositories lists announcements, optionally only those by authors.
// Announcements are never merged, so one owner may appear with the same
// name more than once.
func (e *Engine) Repositories(ctx context.Context, authors []string) ([]project.RepositoryRecord, error) {
	evs, err := e.fetch(ctx, "repositories", event.Filter{
		Authors: authors,
		Kinds:   []event.Kind{event.KindRepository},
	})
	if err != nil {
		return nil, err
	}

	repos, excluded := project.Repositories(evs)
	e.excluded(ctx, "repositories", excluded)
	if len(authors) > 0 {
		repos = slices.DeleteFunc(repos, func(r project.RepositoryRecord) bool {
			return !slices.Contains(authors, r.Owner)
		})
	}

	owners := make([]string, len(repos))
	for i, r := range repos {
		owners[i] = r.Owner
	}
	e.enrich(ctx, owners)

	e.metrics.IncrementProjection("repositories")
	e.logger.InfoContext(ctx, "repositories projected",
		"count", len(repos),
		"excluded", len(excluded),
	)
	return repos, nil
}

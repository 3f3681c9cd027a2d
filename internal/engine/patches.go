package engine

import (
	"context"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/project"
)

// Patches lists the patches submitted to repoID. An empty result means the
// reachable sources hold no patches for it.
func (e *Engine) Patches(ctx context.Context, repoID string) ([]project.PatchRecord, error) {
	evs, err := e.fetch(ctx, "patches", event.Filter{
		Kinds: []event.Kind{event.KindPatch},
		Refs:  []string{repoID},
	})
	if err != nil {
		return nil, err
	}
	patches, excluded := project.Patches(repoID, evs)
	e.excluded(ctx, "patches", excluded)

	authors := make([]string, len(patches))
	for i, p := range patches {
		authors[i] = p.Author
	}
	e.enrich(ctx, authors)

	e.metrics.IncrementProjection("patches")
	e.logger.InfoContext(ctx, "patches projected",
		"repository", repoID,
		"count", len(patches),
		"excluded", len(excluded),
	)
	return patches, nil
}

package names

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/keys"
	"github.com/roach88/gitnostr/internal/project"
	"github.com/roach88/gitnostr/internal/source"
)

// maxNameRunes bounds how much of a self-asserted name is kept.
const maxNameRunes = 64

// Resolver fills the cache from profile events and renders keys for display.
// It never returns an error: names are a convenience.
type Resolver struct {
	src       source.Source
	cache     Cache
	validator *event.Validator
	logger    *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithValidator sets the validator applied to fetched profiles.
func WithValidator(v *event.Validator) Option {
	return func(r *Resolver) {
		if v != nil {
			r.validator = v
		}
	}
}

// NewResolver creates a Resolver. A nil cache makes every lookup fall back.
func NewResolver(src source.Source, cache Cache, opts ...Option) *Resolver {
	r := &Resolver{
		src:       src,
		cache:     cache,
		validator: event.NewValidator(nil),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enrich looks up the profiles of every key not already cached and stores
// the names it finds. It returns how many names were stored.
func (r *Resolver) Enrich(ctx context.Context, pubkeys []string) int {
	if r.cache == nil || r.src == nil {
		return 0
	}
	missing := r.missing(ctx, pubkeys)
	if len(missing) == 0 {
		return 0
	}

	evs, err := r.src.Fetch(ctx, event.Filter{
		Kinds:   []event.Kind{event.KindProfile},
		Authors: missing,
	})
	if err != nil {
		r.logger.WarnContext(ctx, "profile lookup failed", "authors", len(missing), "error", err)
		return 0
	}

	profiles := project.LatestProfiles(r.validator.Collect(evs).Events)
	stored := 0
	for _, pk := range missing {
		p, ok := profiles[pk]
		if !ok {
			continue
		}
		name := Clean(p.Name)
		if name == "" {
			name = Clean(p.DisplayName)
		}
		if name == "" {
			continue
		}
		if err := r.cache.Put(ctx, pk, name); err != nil {
			r.logger.WarnContext(ctx, "name cache write failed", "pubkey", pk, "error", err)
			continue
		}
		stored++
	}
	r.logger.DebugContext(ctx, "names enriched", "missing", len(missing), "stored", stored)
	return stored
}

func (r *Resolver) missing(ctx context.Context, pubkeys []string) []string {
	uniq := slices.Clone(pubkeys)
	slices.Sort(uniq)
	uniq = slices.Compact(uniq)

	out := make([]string, 0, len(uniq))
	for _, pk := range uniq {
		if pk == "" {
			continue
		}
		_, ok, err := r.cache.Get(ctx, pk)
		if err != nil {
			r.logger.WarnContext(ctx, "name cache read failed", "pubkey", pk, "error", err)
			continue
		}
		if !ok {
			out = append(out, pk)
		}
	}
	return out
}

// Lookup returns the cached name of pubkey, if any.
func (r *Resolver) Lookup(ctx context.Context, pubkey string) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	name, ok, err := r.cache.Get(ctx, pubkey)
	if err != nil {
		r.logger.WarnContext(ctx, "name cache read failed", "pubkey", pubkey, "error", err)
		return "", false
	}
	return name, ok && name != ""
}

// Display returns the cached name of pubkey or its Fallback.
func (r *Resolver) Display(ctx context.Context, pubkey string) string {
	if name, ok := r.Lookup(ctx, pubkey); ok {
		return name
	}
	return Fallback(pubkey)
}

// Fallback renders pubkey as a shortened npub: the first ten characters,
// "..." and the last six. Keys that cannot be encoded are returned as is.
func Fallback(pubkey string) string {
	npub, err := keys.NPub(pubkey)
	if err != nil || len(npub) < 57 {
		return pubkey
	}
	return npub[:10] + "..." + npub[57:]
}

// Clean normalizes a self-asserted name: NFC, control characters removed,
// surrounding space trimmed and length capped.
func Clean(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, norm.NFC.String(name))
	name = strings.TrimSpace(name)
	if rs := []rune(name); len(rs) > maxNameRunes {
		name = strings.TrimSpace(string(rs[:maxNameRunes]))
	}
	return name
}

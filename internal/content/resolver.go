package content

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/owlingo/owlingo-api/internal/cache"
	"github.com/owlingo/owlingo-api/internal/domain"
)

const (
	// DefaultContextTTL is how long a resolved context stays cached.
	DefaultContextTTL = 15 * time.Minute

	// defaultSubFetchTimeout bounds each per-module vocabulary or grammar
	// fetch so one slow module cannot hold the whole resolution.
	defaultSubFetchTimeout = 8 * time.Second
)

// Resolver assembles the MetadataContext for a (book, modules, language)
// triple from the content store and caches the result. Resolution is
// all-or-nothing: any failed sub-fetch fails the whole resolution and leaves
// the cache untouched.
type Resolver struct {
	store      Store
	cache      *cache.Cache[*domain.MetadataContext]
	subTimeout time.Duration
	logger     *slog.Logger
}

// ResolverOption customizes resolver construction.
type ResolverOption func(*Resolver)

// WithSubFetchTimeout overrides the per-module sub-fetch timeout.
func WithSubFetchTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.subTimeout = d }
}

// WithContextCache substitutes the resolver's cache, letting tests inject a
// clock-controlled instance.
func WithContextCache(c *cache.Cache[*domain.MetadataContext]) ResolverOption {
	return func(r *Resolver) { r.cache = c }
}

// NewResolver creates a resolver backed by store. A nil logger falls back to
// slog.Default.
func NewResolver(store Store, logger *slog.Logger, opts ...ResolverOption) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		store:      store,
		cache:      cache.New[*domain.MetadataContext](DefaultContextTTL),
		subTimeout: defaultSubFetchTimeout,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the teaching context for the given book and modules.
// languageOverride, when non-empty, replaces the content store's language in
// the result (and participates in the cache key so overridden and natural
// contexts never collide). Module order in moduleIDs does not affect the
// result or the cache key.
func (r *Resolver) Resolve(ctx context.Context, bookID int64, moduleIDs []int64, languageOverride string) (*domain.MetadataContext, error) {
	modules := slices.Clone(moduleIDs)
	slices.Sort(modules)
	modules = slices.Compact(modules)

	key := contextKey(bookID, modules, languageOverride)
	return r.cache.GetOrFetch(ctx, key, func(ctx context.Context) (*domain.MetadataContext, error) {
		started := time.Now()
		mc, err := r.fetch(ctx, bookID, modules, languageOverride)
		if err != nil {
			return nil, err
		}
		r.logger.DebugContext(ctx, "resolved metadata context",
			"book_id", bookID,
			"module_count", len(mc.ModuleIDs),
			"duration_ms", time.Since(started).Milliseconds())
		return mc, nil
	})
}

// Invalidate drops the cached context for the given triple, forcing the next
// Resolve to refetch.
func (r *Resolver) Invalidate(bookID int64, moduleIDs []int64, languageOverride string) {
	modules := slices.Clone(moduleIDs)
	slices.Sort(modules)
	modules = slices.Compact(modules)
	r.cache.Invalidate(contextKey(bookID, modules, languageOverride))
}

func (r *Resolver) fetch(ctx context.Context, bookID int64, modules []int64, languageOverride string) (*domain.MetadataContext, error) {
	meta, err := r.store.GetBookMetadata(ctx, bookID, modules)
	if err != nil {
		return nil, fmt.Errorf("fetching book %d metadata: %w", bookID, err)
	}
	if len(meta.Modules) == 0 {
		return nil, fmt.Errorf("book %d has no modules matching the request: %w", bookID, ErrNotFound)
	}

	mc := &domain.MetadataContext{
		BookID:          meta.BookID,
		BookTitle:       meta.Title,
		DifficultyLevel: meta.DifficultyLevel,
		Language:        meta.Language,
	}
	if languageOverride != "" {
		mc.Language = languageOverride
	}

	// Module-ordered fields follow the store's module order, which is the
	// book's canonical ordering.
	for _, m := range meta.Modules {
		mc.ModuleIDs = append(mc.ModuleIDs, m.ModuleID)
		mc.ModuleTitles = append(mc.ModuleTitles, m.Title)
		mc.Summaries = append(mc.Summaries, m.Summary)
	}

	vocab := make([][]string, len(meta.Modules))
	grammar := make([][]string, len(meta.Modules))

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range meta.Modules {
		g.Go(func() error {
			subCtx, cancel := context.WithTimeout(gctx, r.subTimeout)
			defer cancel()
			words, err := r.store.GetModuleVocabulary(subCtx, bookID, m.ModuleID)
			if err != nil {
				return fmt.Errorf("fetching module %d vocabulary: %w", m.ModuleID, err)
			}
			vocab[i] = words
			return nil
		})
		g.Go(func() error {
			subCtx, cancel := context.WithTimeout(gctx, r.subTimeout)
			defer cancel()
			points, err := r.store.GetModuleGrammar(subCtx, bookID, m.ModuleID)
			if err != nil {
				return fmt.Errorf("fetching module %d grammar: %w", m.ModuleID, err)
			}
			grammar[i] = points
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var topics []string
	for _, m := range meta.Modules {
		topics = append(topics, m.Topics...)
	}
	mc.Topics = dedupeSorted(topics)
	mc.Vocabulary = dedupeSorted(flatten(vocab))
	mc.GrammarPoints = dedupeSorted(flatten(grammar))

	return mc, nil
}

func contextKey(bookID int64, sortedModules []int64, language string) string {
	var b strings.Builder
	b.WriteString("book:")
	b.WriteString(strconv.FormatInt(bookID, 10))
	b.WriteString(":mods:")
	for i, id := range sortedModules {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	b.WriteString(":lang:")
	b.WriteString(language)
	return b.String()
}

func flatten(groups [][]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// dedupeSorted returns the unique non-empty items in sorted order so callers
// get results independent of sub-fetch completion order.
func dedupeSorted(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

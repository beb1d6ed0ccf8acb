package domain

// MetadataContext is the assembled teaching context for a (book, module-set)
// pair. It is built wholesale by the context resolver, cached with a TTL, and
// never partially updated: a miss or expiry triggers a full rebuild.
type MetadataContext struct {
	BookID    int64
	ModuleIDs []int64

	// BookTitle and ModuleTitles come from the content store's book metadata.
	BookTitle    string
	ModuleTitles []string

	// Summaries are the per-module summaries, in module order.
	Summaries []string

	// Topics, Vocabulary and GrammarPoints are merged across modules,
	// deduplicated and sorted so the result is independent of sub-fetch
	// completion order.
	Topics        []string
	Vocabulary    []string
	GrammarPoints []string

	// DifficultyLevel is the CEFR-like level reported by the content store,
	// e.g. "A2".
	DifficultyLevel string

	// Language is the content language (BCP-47-ish code, e.g. "en").
	Language string
}

package domain

// IndexEntry pairs a corpus unit with its retrieval keys. Entries are
// one-to-one with TextUnits, created by the indexer, and never mutated;
// they are discarded only when the whole index is rebuilt.
type IndexEntry struct {
	ID     string
	Unit   TextUnit
	Tokens []string
	// Embedding is nil when the embedding provider was unavailable at
	// indexing time; the entry still serves lexical retrieval.
	Embedding           []float32
	SemanticUnavailable bool
}

package domain

import "time"

// Corpus is the merged, ordered, deduplicated sequence of TextUnits for one
// video. It is built once per ingestion and rebuilt wholesale on re-ingest;
// downstream components treat it as read-only, so it may be shared across
// concurrent queries without locking.
type Corpus struct {
	VideoID    string
	Units      []TextUnit
	IngestedAt time.Time
}

// Len returns the number of units in the corpus.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Units)
}

// CountBySource returns the number of units from the given stream.
func (c *Corpus) CountBySource(source Source) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, u := range c.Units {
		if u.Source == source {
			n++
		}
	}
	return n
}

// ValidateCorpus checks the corpus ordering invariant: units must be
// non-decreasing by start time.
func ValidateCorpus(c *Corpus) error {
	if c == nil {
		return ErrCorpusNotOrdered
	}
	if c.VideoID == "" {
		return ErrEmptyVideoID
	}
	for i := 1; i < len(c.Units); i++ {
		if c.Units[i].Start < c.Units[i-1].Start {
			return ErrCorpusNotOrdered
		}
	}
	return nil
}

// Package store holds the two durable collections: the dedupe ledger and
// the result store. Both persist as JSON blobs and are loaded fresh by each
// scan cycle.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/assareh/fragrance-scout/internal/blob"
)

// Keep only the most recent entries so the ledger cannot grow forever.
// Eviction is a capacity policy, not a correctness requirement: a post that
// ages out and reappears in the feed window may be classified again.
const maxLedgerEntries = 1000

// Ledger is the durable set of processed post IDs. MarkProcessed must be
// followed by Persist before moving to the next post, so a crash between
// posts loses at most the in-flight one.
type Ledger struct {
	blob    blob.Store
	key     string
	entries map[string]time.Time
}

func NewLedger(store blob.Store, key string) *Ledger {
	return &Ledger{
		blob:    store,
		key:     key,
		entries: map[string]time.Time{},
	}
}

// Load reads the persisted ledger. A missing blob is an empty ledger.
func (l *Ledger) Load(ctx context.Context) error {
	data, err := l.blob.Get(ctx, l.key)
	if errors.Is(err, blob.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse ledger: %w", err)
	}
	for id, ts := range raw {
		t, parseErr := time.Parse(time.RFC3339, ts)
		if parseErr != nil {
			// Legacy entries without a parseable timestamp still dedupe;
			// they just evict first.
			t = time.Time{}
		}
		l.entries[id] = t
	}
	return nil
}

// Seen reports whether the post ID was already processed.
func (l *Ledger) Seen(id string) bool {
	_, ok := l.entries[id]
	return ok
}

// MarkProcessed records the post ID with its processing timestamp.
func (l *Ledger) MarkProcessed(id string, ts time.Time) {
	l.entries[id] = ts
}

// Len returns the current entry count.
func (l *Ledger) Len() int { return len(l.entries) }

// Persist writes the ledger back to durable storage, evicting the oldest
// entries when over capacity.
func (l *Ledger) Persist(ctx context.Context) error {
	l.evict()

	raw := make(map[string]string, len(l.entries))
	for id, t := range l.entries {
		raw[id] = t.Format(time.RFC3339)
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	if err := l.blob.Put(ctx, l.key, data); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

func (l *Ledger) evict() {
	if len(l.entries) <= maxLedgerEntries {
		return
	}

	type entry struct {
		id string
		ts time.Time
	}
	all := make([]entry, 0, len(l.entries))
	for id, t := range l.entries {
		all = append(all, entry{id: id, ts: t})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ts.After(all[j].ts) })

	for _, e := range all[maxLedgerEntries:] {
		delete(l.entries, e.id)
	}
}

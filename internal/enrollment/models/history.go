package models

import (
	"encoding/json"
	"time"

	id "registrar/pkg/domain"
)

const (
	MaxChangedByLength = 100
	MaxReasonLength    = 1000

	InitialEnrollmentReason = "Initial enrollment"
)

// HistoryEntry is one immutable transition record.
type HistoryEntry struct {
	ID           id.HistoryID
	EnrollmentID id.EnrollmentID
	Status       Status
	ChangedAt    time.Time
	ChangedBy    string
	Reason       string
	Metadata     json.RawMessage
}

// History is the append-only ledger of one enrollment. Only Enrollment
// transitions append to it; callers get copies.
//
// Invariants:
//   - entries are ordered by ChangedAt ascending (non-decreasing)
//   - entries are never edited or removed
type History struct {
	entries   []HistoryEntry
	persisted int
}

// append stamps the entry and adds it to the ledger. ChangedAt is clamped to
// the previous entry so the ledger never goes backwards when clocks skew.
func (h *History) append(e HistoryEntry) HistoryEntry {
	if n := len(h.entries); n > 0 && e.ChangedAt.Before(h.entries[n-1].ChangedAt) {
		e.ChangedAt = h.entries[n-1].ChangedAt
	}
	if e.ID.IsNil() {
		e.ID = id.NewHistoryID()
	}
	h.entries = append(h.entries, e)
	return e
}

// Entries returns a copy of the ledger in order.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	for i, e := range h.entries {
		out[i] = e
		if e.Metadata != nil {
			out[i].Metadata = append(json.RawMessage(nil), e.Metadata...)
		}
	}
	return out
}

func (h *History) Len() int { return len(h.entries) }

// Last returns the newest entry.
func (h *History) Last() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

func (h *History) pending() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries)-h.persisted)
	copy(out, h.entries[h.persisted:])
	return out
}

func (h *History) markPersisted() { h.persisted = len(h.entries) }

package domain

import (
	"sort"
	"time"
)

// Operation is one ledger transaction made of one or more entries.
type Operation struct {
	ID                string
	TypeID            string
	Type              *OperationType
	Description       *string
	ConversionGroupID *string
	ApplicationID     *int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	UserID            string
	UpdatedByID       string
	Deleted           bool
	Entries           []*OperationEntry
}

// ActiveEntries returns the entries that count towards wallet balances.
func (o *Operation) ActiveEntries() []*OperationEntry {
	if o.Deleted {
		return nil
	}

	active := make([]*OperationEntry, 0, len(o.Entries))
	for _, e := range o.Entries {
		if !e.Deleted {
			active = append(active, e)
		}
	}

	return active
}

// WalletIDs returns the sorted distinct wallet ids of the active entries.
func (o *Operation) WalletIDs() []string {
	ids := make([]string, 0, len(o.Entries))
	for _, e := range o.ActiveEntries() {
		ids = append(ids, e.WalletID)
	}

	return UniqueSorted(ids)
}

// EntryByID finds an entry of this operation.
func (o *Operation) EntryByID(id string) (*OperationEntry, bool) {
	for _, e := range o.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// UniqueSorted deduplicates ids and sorts them. Lock acquisition relies on the order.
func UniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	sort.Strings(out)

	return out
}

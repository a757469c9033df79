// Package overlay implements the optimistic read model shown to the UI: a
// base snapshot of a table composed with the not-yet-confirmed mutations
// buffered in the offline queue. Composition is a pure function, so the
// overlay can be reasoned about and tested without any UI framework.
package overlay

import (
	"sync"

	"github.com/sekolahku/offline-sync/models"
)

// KeyFunc extracts the natural key of a row. Rows with equal keys refer to
// the same logical entity.
type KeyFunc func(models.Record) string

// Mutation is one not-yet-confirmed local write overlaid on the base
// snapshot. ID matches the queue item carrying the durable copy.
type Mutation struct {
	ID      string
	Op      models.Operation
	Records []models.Record
}

// Compose applies pending mutations, in order, on top of base and returns
// the resulting rows. base is not modified; the result is freshly
// allocated. Row order is base order with created rows appended in mutation
// order.
//
// Per-operation semantics:
//   - create/upsert: replace the row with the same key, or append.
//   - update: shallow-merge columns into the existing row; a row that does
//     not exist in the composed state is ignored.
//   - delete: remove rows whose keys match the payload rows.
func Compose(base []models.Record, keyOf KeyFunc, pending []Mutation) []models.Record {
	index := make(map[string]int, len(base))
	result := make([]models.Record, 0, len(base))
	for _, row := range base {
		index[keyOf(row)] = len(result)
		result = append(result, cloneRecord(row))
	}

	for _, m := range pending {
		for _, row := range m.Records {
			key := keyOf(row)
			pos, exists := index[key]

			switch m.Op {
			case models.OperationCreate, models.OperationUpsert:
				if exists {
					result[pos] = cloneRecord(row)
				} else {
					index[key] = len(result)
					result = append(result, cloneRecord(row))
				}

			case models.OperationUpdate:
				if !exists {
					continue
				}
				for col, val := range row {
					result[pos][col] = val
				}

			case models.OperationDelete:
				if !exists {
					continue
				}
				result[pos] = nil
				delete(index, key)
			}
		}
	}

	compact := make([]models.Record, 0, len(result))
	for _, row := range result {
		if row != nil {
			compact = append(compact, row)
		}
	}
	return compact
}

// View is the per-table overlay state: a base snapshot plus the ordered
// list of pending mutations. Reads compose the two on demand.
type View struct {
	mu      sync.RWMutex
	keyOf   KeyFunc
	base    []models.Record
	pending []Mutation
}

// NewView creates a View over the given base snapshot.
func NewView(keyOf KeyFunc, base []models.Record) *View {
	return &View{
		keyOf: keyOf,
		base:  cloneRecords(base),
	}
}

// Read returns the composed rows: base plus every pending mutation.
func (v *View) Read() []models.Record {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Compose(v.base, v.keyOf, v.pending)
}

// SetBase replaces the base snapshot, e.g. after a fresh server fetch.
// Pending mutations stay overlaid on the new base.
func (v *View) SetBase(base []models.Record) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.base = cloneRecords(base)
}

// Add appends a pending mutation. Each mutation is tracked individually so
// concurrent in-flight mutations roll back independently.
func (v *View) Add(m Mutation) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending = append(v.pending, m)
}

// Confirm folds the identified mutation into the base snapshot and drops it
// from the pending list. Unknown ids are ignored (the mutation may have
// been rolled back already).
func (v *View) Confirm(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i, m := range v.pending {
		if m.ID != id {
			continue
		}
		v.base = Compose(v.base, v.keyOf, []Mutation{m})
		v.pending = append(v.pending[:i], v.pending[i+1:]...)
		return
	}
}

// Rollback drops the identified mutation without folding it into the base:
// the view returns to what it would have shown had the mutation never been
// applied. Later pending mutations are unaffected. Unknown ids are ignored.
func (v *View) Rollback(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i, m := range v.pending {
		if m.ID != id {
			continue
		}
		v.pending = append(v.pending[:i], v.pending[i+1:]...)
		return
	}
}

// PendingCount returns the number of not-yet-confirmed mutations.
func (v *View) PendingCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.pending)
}

func cloneRecord(row models.Record) models.Record {
	cloned := make(models.Record, len(row))
	for col, val := range row {
		cloned[col] = val
	}
	return cloned
}

func cloneRecords(rows []models.Record) []models.Record {
	cloned := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		cloned = append(cloned, cloneRecord(row))
	}
	return cloned
}

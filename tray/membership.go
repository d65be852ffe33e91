package tray

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"launchtray/model"
	"launchtray/store"
)

// HotbarKey is the store key of the remembered hotbar membership.
const HotbarKey = "HotApps"

// Membership is the persisted, ordered set of entry ids the user keeps in
// the hotbar. Every change is written through to the store.
type Membership struct {
	store store.Store

	mu  sync.Mutex
	ids []string
}

// LoadMembership reads the remembered set from st. An absent key is an
// empty set.
func LoadMembership(ctx context.Context, st store.Store) (*Membership, error) {
	m := &Membership{store: st}
	blob, ok, err := st.Get(ctx, HotbarKey)
	if err != nil {
		return nil, fmt.Errorf("read hotbar membership: %w", err)
	}
	if !ok || len(blob) == 0 {
		return m, nil
	}
	var records []model.HotbarRecord
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, fmt.Errorf("decode hotbar membership: %w", err)
	}
	for _, r := range records {
		if r.Name != "" && !slices.Contains(m.ids, r.Name) {
			m.ids = append(m.ids, r.Name)
		}
	}
	return m, nil
}

// IDs returns the remembered ids in insertion order.
func (m *Membership) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.ids)
}

// Len returns the number of remembered ids.
func (m *Membership) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ids)
}

// Contains reports whether id is remembered.
func (m *Membership) Contains(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(m.ids, id)
}

// Add remembers id. Adding a known id is a no-op.
func (m *Membership) Add(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.Contains(m.ids, id) {
		return nil
	}
	return m.commit(ctx, append(slices.Clone(m.ids), id))
}

// Remove forgets id. Removing an unknown id is a no-op.
func (m *Membership) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.Index(m.ids, id)
	if i < 0 {
		return nil
	}
	return m.commit(ctx, slices.Delete(slices.Clone(m.ids), i, i+1))
}

// Clear forgets every id.
func (m *Membership) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commit(ctx, nil)
}

// commit persists next and adopts it only when the write succeeded.
func (m *Membership) commit(ctx context.Context, next []string) error {
	records := make([]model.HotbarRecord, 0, len(next))
	for _, id := range next {
		records = append(records, model.HotbarRecord{Name: id})
	}
	blob, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode hotbar membership: %w", err)
	}
	if err := m.store.Set(ctx, HotbarKey, blob); err != nil {
		return fmt.Errorf("write hotbar membership: %w", err)
	}
	m.ids = next
	return nil
}

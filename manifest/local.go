package manifest

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// LocalManifest keeps the generation ledger in-process (default).
type LocalManifest struct {
	mu   sync.RWMutex
	gens map[string]map[string]struct{}
}

var _ Manifest = (*LocalManifest)(nil)

func NewLocalManifest() *LocalManifest {
	return &LocalManifest{gens: make(map[string]map[string]struct{})}
}

func (m *LocalManifest) Add(_ context.Context, generation, key string) error {
	m.mu.Lock()
	members, ok := m.gens[generation]
	if !ok {
		members = make(map[string]struct{})
		m.gens[generation] = members
	}
	members[key] = struct{}{}
	m.mu.Unlock()
	return nil
}

func (m *LocalManifest) Keys(_ context.Context, generation string) ([]string, error) {
	m.mu.RLock()
	members := m.gens[generation]
	out := make([]string, 0, len(members))
	for k := range members {
		out = append(out, k)
	}
	m.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}

func (m *LocalManifest) Generations(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	out := make([]string, 0, len(m.gens))
	for g := range m.gens {
		if strings.HasPrefix(g, prefix) {
			out = append(out, g)
		}
	}
	m.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}

func (m *LocalManifest) Drop(_ context.Context, generation string) error {
	m.mu.Lock()
	delete(m.gens, generation)
	m.mu.Unlock()
	return nil
}

func (m *LocalManifest) Close(_ context.Context) error { return nil }

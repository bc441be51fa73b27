package campus

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// MemoryDirectory holds campuses in process.
type MemoryDirectory struct {
	mu   sync.RWMutex
	byID map[string]Campus
}

// NewMemoryDirectory returns a directory holding cs.
func NewMemoryDirectory(cs ...Campus) *MemoryDirectory {
	d := &MemoryDirectory{byID: make(map[string]Campus, len(cs))}
	_ = d.Upsert(context.Background(), cs...)
	return d
}

func (d *MemoryDirectory) List(_ context.Context) ([]Campus, error) {
	d.mu.RLock()
	out := make([]Campus, 0, len(d.byID))
	for _, c := range d.byID {
		out = append(out, copyCampus(c))
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (d *MemoryDirectory) Get(_ context.Context, id string) (Campus, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c, ok := d.byID[id]
	if !ok {
		return Campus{}, ErrNotFound
	}
	return copyCampus(c), nil
}

func (d *MemoryDirectory) Upsert(_ context.Context, cs ...Campus) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, c := range cs {
		c = clean(c)
		if c.ID == "" || c.Name == "" {
			return errors.New("campus: id and name are required")
		}
		d.byID[c.ID] = copyCampus(c)
	}
	return nil
}

func copyCampus(c Campus) Campus {
	c.ServiceTimes = append([]string(nil), c.ServiceTimes...)
	return c
}

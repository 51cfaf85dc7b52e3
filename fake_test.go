package drivels

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/drivels/drivels/cache"
)

// fakeDirectory is an in-memory Directory. It records call counts so tests
// can assert that cached operations make zero remote calls.
type fakeDirectory struct {
	mu        sync.Mutex
	children  map[string][]Object // parent ID -> children in listing order
	meta      map[string]Object
	listErr   map[string]error // parent ID -> error returned on every call
	listCalls int
	metaCalls int
}

var _ Directory = (*fakeDirectory)(nil)

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		children: map[string][]Object{},
		meta:     map[string]Object{},
		listErr:  map[string]error{},
	}
}

func (f *fakeDirectory) add(parentID string, objects ...Object) {
	f.children[parentID] = append(f.children[parentID], objects...)
	for _, o := range objects {
		f.meta[o.ID] = o
	}
}

func (f *fakeDirectory) failListing(parentID string, err error) {
	f.listErr[parentID] = err
}

func (f *fakeDirectory) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeDirectory) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = 0
	f.metaCalls = 0
}

func (f *fakeDirectory) ListChildren(ctx context.Context, parentID string, filter Filter) ([]Object, error) {
	f.mu.Lock()
	f.listCalls++
	err := f.listErr[parentID]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var out []Object
	for _, o := range f.children[parentID] {
		if filter.Name != "" && o.Name != filter.Name {
			continue
		}
		if filter.FoldersOnly && !o.IsFolder() {
			continue
		}
		if !filter.IncludeTrashed && o.Trashed {
			continue
		}
		if filter.OwnedOnly && !o.OwnedByMe {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeDirectory) Metadata(ctx context.Context, id string) (Object, error) {
	f.mu.Lock()
	f.metaCalls++
	f.mu.Unlock()
	o, ok := f.meta[id]
	if !ok {
		return Object{}, fmt.Errorf("file not found: %s: %w", id, ErrNotFound)
	}
	return o, nil
}

func folderObj(id, name string) Object {
	return Object{ID: id, Name: name, Mime: mimeTypeGoogleAppFolder, OwnedByMe: true}
}

func fileObj(id, name string, size int64) Object {
	return Object{ID: id, Name: name, Mime: "text/plain", Size: size, OwnedByMe: true}
}

func memCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

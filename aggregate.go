package drivels

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/drivels/drivels/cache"
)

const defaultWorkers = 4

// AggregateOptions control which objects count toward a folder total.
type AggregateOptions struct {
	// OwnedOnly counts only files owned by the caller.
	OwnedOnly bool
	// IncludeTrashed counts trashed objects, which are excluded by default.
	IncludeTrashed bool
	// Workers bounds the number of concurrent remote calls; zero means the
	// default of 4.
	Workers int
}

// SizeResult is a folder total tagged with whether every subtree was
// reachable. An incomplete total is a lower bound, never an estimate.
type SizeResult struct {
	Bytes    int64
	Complete bool
}

// Aggregator computes total folder sizes by traversing the descendant graph.
// The remote graph is not a tree: an object may have several parents and may
// be an ancestor of itself, so each call keeps a visited set and skips any ID
// it has already summed. Complete subtotals are memoized in the cache under
// the current generation.
type Aggregator struct {
	dir    Directory
	cache  *cache.Cache
	flight singleflight.Group
	log    *zap.Logger
}

func NewAggregator(dir Directory, c *cache.Cache, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{dir: dir, cache: c, log: log}
}

// Aggregate returns the total size in bytes of all files under folderID.
// A subtree whose listing keeps failing transiently contributes zero and
// marks the result incomplete; objects the caller cannot see contribute zero
// without affecting completeness. Cancelling ctx returns the best partial
// total computed so far, marked incomplete.
func (a *Aggregator) Aggregate(ctx context.Context, folderID string, opts AggregateOptions) (SizeResult, error) {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	// Concurrent aggregations of the same folder under the same filters
	// collapse into a single traversal. The same folder is reachable through
	// several paths when it has multiple parents.
	v, err, _ := a.flight.Do(sizeKey(folderID, opts), func() (any, error) {
		t := &traversal{
			agg:     a,
			opts:    opts,
			visited: map[string]bool{},
			sem:     make(chan struct{}, opts.Workers),
		}
		bytes, complete, err := t.folderSize(ctx, folderID)
		if err != nil {
			return nil, err
		}
		return SizeResult{Bytes: bytes, Complete: complete}, nil
	})
	if err != nil {
		return SizeResult{}, err
	}
	return v.(SizeResult), nil
}

// sizeKey qualifies the cache key with the filter flags so a total computed
// under one filter combination is never served for another.
func sizeKey(folderID string, opts AggregateOptions) string {
	return fmt.Sprintf("%s|owned=%t|trashed=%t", folderID, opts.OwnedOnly, opts.IncludeTrashed)
}

// traversal is the state of one Aggregate call.
type traversal struct {
	agg  *Aggregator
	opts AggregateOptions

	mu      sync.Mutex
	visited map[string]bool

	sem chan struct{} // bounds concurrent remote calls
}

// visit marks id as visited, reporting false if it already was.
func (t *traversal) visit(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.visited[id] {
		return false
	}
	t.visited[id] = true
	return true
}

func (t *traversal) folderSize(ctx context.Context, folderID string) (bytes int64, complete bool, err error) {
	if !t.visit(folderID) {
		// Already summed via another parent within this call.
		return 0, true, nil
	}
	if ctx.Err() != nil {
		return 0, false, nil
	}

	key := sizeKey(folderID, t.opts)
	if cached, ok, err := t.agg.cache.LookupSize(key); err != nil {
		return 0, false, newCacheError(fmt.Sprintf("size lookup of '%s' failed", folderID), err)
	} else if ok {
		return cached, true, nil
	}

	children, err := t.listChildren(ctx, folderID)
	if err != nil {
		switch {
		case errors.Is(err, ErrPermission), errors.Is(err, ErrNotFound):
			// Objects the caller cannot see contribute nothing.
			return 0, true, nil
		case errors.Is(err, ErrTransient),
			errors.Is(err, context.Canceled),
			errors.Is(err, context.DeadlineExceeded):
			t.agg.log.Warn("subtree unreachable, total will be incomplete",
				zap.String("folder", folderID), zap.Error(err))
			return 0, false, nil
		default:
			return 0, false, err
		}
	}

	var total int64
	complete = true
	var resMu sync.Mutex
	g := new(errgroup.Group)
	for _, child := range children {
		if child.IsFolder() {
			g.Go(func() error {
				sub, subComplete, err := t.folderSize(ctx, child.ID)
				if err != nil {
					return err
				}
				resMu.Lock()
				total += sub
				if !subComplete {
					complete = false
				}
				resMu.Unlock()
				return nil
			})
			continue
		}
		if t.opts.OwnedOnly && !child.OwnedByMe {
			continue
		}
		// Native Google documents carry no size and count as zero.
		resMu.Lock()
		total += child.Size
		resMu.Unlock()
	}
	if err := g.Wait(); err != nil {
		return 0, false, err
	}

	if complete && ctx.Err() == nil {
		if err := t.agg.cache.StoreSize(key, total); err != nil {
			t.agg.log.Warn("failed to memoize folder size",
				zap.String("folder", folderID), zap.Error(err))
		}
	}
	return total, complete, nil
}

func (t *traversal) listChildren(ctx context.Context, folderID string) ([]Object, error) {
	select {
	case t.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-t.sem }()
	return t.agg.dir.ListChildren(ctx, folderID, Filter{IncludeTrashed: t.opts.IncludeTrashed})
}

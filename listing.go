package drivels

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// SortKey selects the attribute a listing is ordered by.
type SortKey string

const (
	SortByName SortKey = "name"
	SortBySize SortKey = "size"
	SortByDate SortKey = "date"
	SortByType SortKey = "type"
)

// ParseSortKey validates a sort key string from the CLI surface.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case SortByName, SortBySize, SortByDate, SortByType:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("invalid sort key '%s': must be one of name, size, date, type", s)
}

// ListOptions configure one listing operation.
type ListOptions struct {
	SortBy  SortKey
	Reverse bool
	// Recursive repeats the listing for each child folder, one depth level
	// per directory, guarded against cycles.
	Recursive bool
	// ComputeSizes aggregates each child folder's total size. This is the
	// expensive path and is opt-in; without it folder sizes report as zero.
	ComputeSizes   bool
	OwnedOnly      bool
	IncludeTrashed bool
	Workers        int
}

// Entry is one row of a listing.
type Entry struct {
	Object
	Path  Path
	Depth int
	// Bytes is the display size: the file size, or the aggregate size for
	// folders when ComputeSizes was requested.
	Bytes int64
	// SizeComplete is false when Bytes is a lower bound because part of the
	// folder's subtree was unreachable.
	SizeComplete bool
}

// Lister composes the resolver, the remote directory and the aggregator into
// ordered listings.
type Lister struct {
	dir      Directory
	resolver *Resolver
	agg      *Aggregator
	log      *zap.Logger
}

func NewLister(dir Directory, resolver *Resolver, agg *Aggregator, log *zap.Logger) *Lister {
	if log == nil {
		log = zap.NewNop()
	}
	return &Lister{dir: dir, resolver: resolver, agg: agg, log: log}
}

// List resolves path and returns its entries ordered by opts. In recursive
// mode entries of nested directories follow their parent directory's entries,
// with Depth recording the nesting level.
func (l *Lister) List(ctx context.Context, path Path, opts ListOptions) ([]Entry, error) {
	parts, err := splitPath(string(path))
	if err != nil {
		return nil, err
	}
	norm := normalizePath(parts)

	id, err := l.resolver.Resolve(ctx, norm)
	if err != nil {
		return nil, err
	}

	visited := map[string]bool{id: true}
	var entries []Entry
	if err := l.listInto(ctx, norm, id, 0, opts, visited, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (l *Lister) listInto(ctx context.Context, dir Path, folderID string, depth int, opts ListOptions, visited map[string]bool, out *[]Entry) error {
	children, err := l.dir.ListChildren(ctx, folderID, Filter{
		IncludeTrashed: opts.IncludeTrashed,
		OwnedOnly:      opts.OwnedOnly,
	})
	if err != nil {
		return fmt.Errorf("failed to list '%s': %w", dir, err)
	}

	entries := make([]Entry, 0, len(children))
	for _, child := range children {
		e := Entry{
			Object:       child,
			Path:         joinPath(dir, child.Name),
			Depth:        depth,
			Bytes:        child.Size,
			SizeComplete: true,
		}
		if child.IsFolder() {
			e.Bytes = 0
			switch {
			case !opts.ComputeSizes:
			case opts.OwnedOnly && !child.OwnedByMe:
				// Shared folders don't count against the caller's quota.
			default:
				res, err := l.agg.Aggregate(ctx, child.ID, AggregateOptions{
					OwnedOnly:      opts.OwnedOnly,
					IncludeTrashed: opts.IncludeTrashed,
					Workers:        opts.Workers,
				})
				if err != nil {
					return fmt.Errorf("failed to size '%s': %w", e.Path, err)
				}
				e.Bytes, e.SizeComplete = res.Bytes, res.Complete
			}
		}
		entries = append(entries, e)
	}

	sortEntries(entries, opts.SortBy, opts.Reverse)
	*out = append(*out, entries...)

	if !opts.Recursive {
		return nil
	}
	for _, e := range entries {
		if !e.IsFolder() {
			continue
		}
		if visited[e.ID] {
			// A folder reachable twice through shared placement is listed
			// once; recursing again would never terminate on cycles.
			continue
		}
		visited[e.ID] = true
		if err := l.listInto(ctx, e.Path, e.ID, depth+1, opts, visited, out); err != nil {
			return err
		}
	}
	return nil
}

// sortEntries orders entries by key with the lowercased name as the stable
// secondary key for every sort type. Size and date order largest and newest
// first; Reverse flips the final order.
func sortEntries(entries []Entry, key SortKey, reverse bool) {
	byName := func(a, b Entry) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}

	var compare func(a, b Entry) int
	switch key {
	case SortBySize:
		compare = func(a, b Entry) int {
			if c := cmp.Compare(b.Bytes, a.Bytes); c != 0 {
				return c
			}
			return byName(a, b)
		}
	case SortByDate:
		compare = func(a, b Entry) int {
			if c := b.ModTime.Compare(a.ModTime); c != 0 {
				return c
			}
			return byName(a, b)
		}
	case SortByType:
		compare = func(a, b Entry) int {
			if c := cmp.Compare(a.Mime, b.Mime); c != 0 {
				return c
			}
			return byName(a, b)
		}
	default:
		compare = byName
	}

	slices.SortStableFunc(entries, compare)
	if reverse {
		slices.Reverse(entries)
	}
}

package drivels

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/drivels/drivels/cache"
)

// Resolver maps slash-separated paths to object IDs by walking the remote
// hierarchy one component at a time. Every resolved prefix is cached, so a
// repeated resolution of the same path makes zero remote calls.
//
// Duplicate names among siblings are broken by taking the first match in the
// Remote Directory Client's default listing order. Once cached, that choice
// is stable until the cache is cleared. With strict enabled, duplicates fail
// with AmbiguousNameError instead.
type Resolver struct {
	dir    Directory
	cache  *cache.Cache
	rootID string
	strict bool
	log    *zap.Logger
}

func NewResolver(dir Directory, c *cache.Cache, rootID string, strict bool, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{dir: dir, cache: c, rootID: rootID, strict: strict, log: log}
}

// Resolve returns the object ID at path. The root path resolves to the
// well-known root ID without a remote call. Intermediate components must be
// folders; the final component may be any type. Trashed objects never match.
func (r *Resolver) Resolve(ctx context.Context, path Path) (string, error) {
	parts, err := splitPath(string(path))
	if err != nil {
		return "", err
	}
	if len(parts) == 0 {
		return r.rootID, nil
	}

	currentID := r.rootID
	for i, part := range parts {
		prefix := string(normalizePath(parts[:i+1]))

		id, ok, err := r.cache.LookupPath(prefix)
		if err != nil {
			return "", newCacheError(fmt.Sprintf("lookup of '%s' failed", prefix), err)
		}
		if ok {
			currentID = id
			continue
		}

		resolved := string(normalizePath(parts[:i]))
		matches, err := r.dir.ListChildren(ctx, currentID, Filter{
			Name:        part,
			FoldersOnly: i < len(parts)-1,
		})
		if err != nil {
			return "", fmt.Errorf("failed to list '%s' while resolving '%s': %w", resolved, path, err)
		}
		if len(matches) == 0 {
			return "", &NotFoundError{Component: part, Prefix: resolved}
		}
		if len(matches) > 1 && r.strict {
			return "", &AmbiguousNameError{Name: part, Prefix: resolved, Matches: len(matches)}
		}

		currentID = matches[0].ID
		if err := r.cache.StorePath(prefix, currentID); err != nil {
			return "", newCacheError(fmt.Sprintf("store of '%s' failed", prefix), err)
		}
		r.log.Debug("resolved path component",
			zap.String("prefix", prefix),
			zap.String("id", currentID))
	}

	return currentID, nil
}

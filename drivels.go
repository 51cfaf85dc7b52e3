// Package drivels presents a remote Google Drive hierarchy through a
// Unix-style path interface. It resolves slash-separated paths to object IDs
// by walking the remote graph level by level, caches resolutions durably, and
// computes aggregate folder sizes over a potentially cyclic, multi-parent
// object graph with ownership and trash filtering. The package is read-only:
// it never mutates the remote store.
package drivels

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"

	"github.com/drivels/drivels/cache"
)

// DriveLS ties the resolver, aggregator and lister to one remote client and
// one cache.
type DriveLS struct {
	dir      Directory
	cache    *cache.Cache
	resolver *Resolver
	agg      *Aggregator
	lister   *Lister
	workers  int
}

type config struct {
	rootID   string
	strict   bool
	workers  int
	pageSize int64
	log      *zap.Logger
}

// Option customizes a DriveLS instance.
type Option func(*config)

// WithLogger sets the logger; the default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithRootID overrides the well-known root ID that absolute paths start from.
func WithRootID(rootID string) Option {
	return func(c *config) { c.rootID = rootID }
}

// WithStrictResolve makes resolution fail with AmbiguousNameError when
// several same-named children match a path component, instead of picking the
// first match.
func WithStrictResolve() Option {
	return func(c *config) { c.strict = true }
}

// WithWorkers bounds concurrent remote calls during size aggregation.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithPageSize overrides the Files API page size.
func WithPageSize(n int64) Option {
	return func(c *config) { c.pageSize = n }
}

// New creates a DriveLS instance over the given drive.Service and cache.
func New(service *drive.Service, c *cache.Cache, opts ...Option) *DriveLS {
	cfg := applyOptions(opts)
	dir := NewDriveDirectory(service)
	if cfg.pageSize > 0 {
		dir.pageSize = cfg.pageSize
	}
	return newWith(dir, c, cfg)
}

// NewWithDirectory creates a DriveLS instance over any Directory
// implementation. Tests use it to inject a fake remote.
func NewWithDirectory(dir Directory, c *cache.Cache, opts ...Option) *DriveLS {
	return newWith(dir, c, applyOptions(opts))
}

func applyOptions(opts []Option) config {
	cfg := config{rootID: RootID, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func newWith(dir Directory, c *cache.Cache, cfg config) *DriveLS {
	resolver := NewResolver(dir, c, cfg.rootID, cfg.strict, cfg.log)
	agg := NewAggregator(dir, c, cfg.log)
	return &DriveLS{
		dir:      dir,
		cache:    c,
		resolver: resolver,
		agg:      agg,
		lister:   NewLister(dir, resolver, agg, cfg.log),
		workers:  cfg.workers,
	}
}

// Resolve returns the object ID at the given path.
func (s *DriveLS) Resolve(ctx context.Context, path Path) (string, error) {
	return s.resolver.Resolve(ctx, path)
}

// List returns the ordered entries of the folder at path.
func (s *DriveLS) List(ctx context.Context, path Path, opts ListOptions) ([]Entry, error) {
	if opts.Workers == 0 {
		opts.Workers = s.workers
	}
	return s.lister.List(ctx, path, opts)
}

// AggregateSize returns the total size of all files under folderID, tagged
// with whether every subtree was reachable.
func (s *DriveLS) AggregateSize(ctx context.Context, folderID string, opts AggregateOptions) (SizeResult, error) {
	if opts.Workers == 0 {
		opts.Workers = s.workers
	}
	return s.agg.Aggregate(ctx, folderID, opts)
}

// Metadata fetches the remote object with the given ID.
func (s *DriveLS) Metadata(ctx context.Context, id string) (Object, error) {
	return s.dir.Metadata(ctx, id)
}

// ClearCache drops every cached resolution and size and stales all
// generations, forcing the next operations to hit the remote store.
func (s *DriveLS) ClearCache() error {
	return s.cache.Clear()
}

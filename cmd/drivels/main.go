// Command drivels lists Google Drive files and folders through a Unix
// ls-like interface.
//
//	drivels                      # list the root folder
//	drivels /Documents           # list a folder by path
//	drivels -l -H /              # long format with human-readable sizes
//	drivels -R /Photos           # recursive listing
//	drivels -l -s -sort size /   # accurate folder sizes, largest first
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/drivels/drivels"
	"github.com/drivels/drivels/cache"
)

func main() {
	var (
		longFormat = flag.Bool("l", false, "Use long listing format")
		human      = flag.Bool("H", false, "Print sizes in human readable format (e.g., 1K, 234M, 2G)")
		all        = flag.Bool("a", false, "Show all files including trashed")
		recursive  = flag.Bool("R", false, "List subdirectories recursively")
		reverse    = flag.Bool("r", false, "Reverse order while sorting")
		sizes      = flag.Bool("s", false, "Compute accurate folder sizes (slow, cached)")
		ownedOnly  = flag.Bool("o", false, "Only count and show files owned by you")
		sortBy     = flag.String("sort", "name", "Sort by attribute: name, size, date, type")
		noCache    = flag.Bool("no-cache", false, "Clear the cache before running")
		strict     = flag.Bool("strict", false, "Fail on ambiguous names instead of taking the first match")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		configPath = flag.String("config", defaultConfigPath(), "INI config file")
		cachePath  = flag.String("cache", "", "Cache file path (overrides config)")
		workers    = flag.Int("workers", 0, "Concurrent remote calls during size aggregation (overrides config)")
	)
	flag.Parse()

	path := "/"
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}

	log := newLogger(*verbose)
	defer log.Sync()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatalf("Error reading config %s: %v", *configPath, err)
	}
	if *cachePath != "" {
		cfg.CachePath = *cachePath
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	key, err := drivels.ParseSortKey(*sortBy)
	if err != nil {
		fatalf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := google.DefaultClient(ctx, drive.DriveReadonlyScope)
	if err != nil {
		fatalf("Error initializing Google Drive connection: %v", err)
	}
	service, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		fatalf("Error initializing Google Drive connection: %v", err)
	}

	c, err := cache.Open(cfg.CachePath)
	if err != nil {
		fatalf("Error opening cache %s: %v", cfg.CachePath, err)
	}
	defer c.Close()

	opts := []drivels.Option{
		drivels.WithLogger(log),
		drivels.WithRootID(cfg.RootID),
		drivels.WithWorkers(cfg.Workers),
		drivels.WithPageSize(int64(cfg.PageSize)),
	}
	if *strict {
		opts = append(opts, drivels.WithStrictResolve())
	}
	dls := drivels.New(service, c, opts...)

	if *noCache {
		if err := dls.ClearCache(); err != nil {
			fatalf("Error clearing cache: %v", err)
		}
	}

	entries, err := dls.List(ctx, drivels.Path(path), drivels.ListOptions{
		SortBy:         key,
		Reverse:        *reverse,
		Recursive:      *recursive,
		ComputeSizes:   *sizes,
		OwnedOnly:      *ownedOnly,
		IncludeTrashed: *all,
	})
	if err != nil {
		var notFound *drivels.NotFoundError
		if errors.As(err, &notFound) {
			fatalf("Error: '%s' not found under '%s'", notFound.Component, notFound.Prefix)
		}
		fatalf("Error: %v", err)
	}

	display(os.Stdout, entries, path, displayOptions{
		long:      *longFormat,
		human:     *human,
		recursive: *recursive,
	})
}

type displayOptions struct {
	long      bool
	human     bool
	recursive bool
}

func display(w io.Writer, entries []drivels.Entry, root string, opts displayOptions) {
	if len(entries) == 0 {
		fmt.Fprintf(w, "No files found in %s\n", root)
		return
	}

	now := time.Now()
	if !opts.recursive {
		if opts.long {
			fmt.Fprintf(w, "total %s\n", formatSize(sumBytes(entries), opts.human))
		}
		for _, e := range entries {
			fmt.Fprintln(w, formatEntry(e, now, opts))
		}
		return
	}

	totals := make(map[string]int64)
	for _, e := range entries {
		totals[filepath.Dir(string(e.Path))] += e.Bytes
	}
	currentDir := ""
	for _, e := range entries {
		dir := filepath.Dir(string(e.Path))
		if dir != currentDir {
			if currentDir != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s:\n", dir)
			if opts.long {
				fmt.Fprintf(w, "total %s\n", formatSize(totals[dir], opts.human))
			}
			currentDir = dir
		}
		fmt.Fprintln(w, formatEntry(e, now, opts))
	}
}

func sumBytes(entries []drivels.Entry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Bytes
	}
	return total
}

func formatEntry(e drivels.Entry, now time.Time, opts displayOptions) string {
	name := e.Name
	if e.IsFolder() {
		name += "/"
	}
	if !opts.long {
		return name
	}

	size := formatSize(e.Bytes, opts.human)
	if !e.SizeComplete {
		// A lower bound: part of the subtree was unreachable.
		size += "~"
	}
	return fmt.Sprintf("%crw-r--r-- %9s %s %s", typeChar(e.Object), size, formatDate(e.ModTime, now), name)
}

func newLogger(verbose bool) *zap.Logger {
	if verbose {
		log, _ := zap.NewDevelopment()
		return log
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	log, _ := cfg.Build()
	return log
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".drivels.ini"
	}
	return filepath.Join(home, ".drivels.ini")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

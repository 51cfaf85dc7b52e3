package drivels

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// RootID is the alias the Files API accepts for the caller's My Drive root.
const RootID = "root"

const defaultPageSize = 1000

// Filter narrows a ListChildren call.
type Filter struct {
	// Name restricts results to children with this exact name when non-empty.
	Name string
	// FoldersOnly restricts results to folders.
	FoldersOnly bool
	// IncludeTrashed includes trashed objects, which are excluded by default.
	IncludeTrashed bool
	// OwnedOnly restricts results to objects owned by the caller.
	OwnedOnly bool
}

// Directory is the remote capability the core depends on: list the children
// of an object and fetch metadata for one object. Implementations exhaust
// pagination before returning. Errors match ErrNotFound, ErrPermission,
// ErrTransient or ErrDriveError under errors.Is.
type Directory interface {
	ListChildren(ctx context.Context, parentID string, filter Filter) ([]Object, error)
	Metadata(ctx context.Context, id string) (Object, error)
}

// DriveDirectory implements Directory against the Google Drive Files API.
// Transient failures are retried with bounded jittered backoff.
type DriveDirectory struct {
	service  *drive.Service
	pageSize int64
	retry    retryConfig
}

var _ Directory = (*DriveDirectory)(nil)

func NewDriveDirectory(service *drive.Service) *DriveDirectory {
	return &DriveDirectory{
		service:  service,
		pageSize: defaultPageSize,
		retry:    defaultRetryConfig(),
	}
}

const (
	driveFileFields  = "parents,id,name,mimeType,size,modifiedTime,ownedByMe,shared,trashed"
	driveFilesFields = "nextPageToken,files(parents,id,name,mimeType,size,modifiedTime,ownedByMe,shared,trashed)"
)

func (d *DriveDirectory) ListChildren(ctx context.Context, parentID string, filter Filter) ([]Object, error) {
	q := childQuery(parentID, filter)
	files, err := retryWithResult(ctx, d.retry, func() ([]*drive.File, error) {
		var results []*drive.File
		err := d.service.Files.List().
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Q(q).
			PageSize(d.pageSize).
			Fields(driveFilesFields).
			Pages(ctx, func(list *drive.FileList) error {
				results = append(results, list.Files...)
				return nil
			})
		if err != nil {
			return nil, mapAPIError("failed to list children", err)
		}
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	objects := make([]Object, 0, len(files))
	for _, f := range files {
		objects = append(objects, newObject(f))
	}
	return objects, nil
}

func (d *DriveDirectory) Metadata(ctx context.Context, id string) (Object, error) {
	file, err := retryWithResult(ctx, d.retry, func() (*drive.File, error) {
		f, err := d.service.Files.Get(id).
			SupportsAllDrives(true).
			Fields(driveFileFields).
			Context(ctx).
			Do()
		if err != nil {
			return nil, mapAPIError(fmt.Sprintf("failed to get metadata for '%s'", id), err)
		}
		return f, nil
	})
	if err != nil {
		return Object{}, err
	}
	return newObject(file), nil
}

func childQuery(parentID string, filter Filter) string {
	parts := []string{fmt.Sprintf("'%s' in parents", escapeQuery(parentID))}
	if filter.Name != "" {
		parts = append(parts, fmt.Sprintf("name = '%s'", escapeQuery(filter.Name)))
	}
	if filter.FoldersOnly {
		parts = append(parts, fmt.Sprintf("mimeType = '%s'", mimeTypeGoogleAppFolder))
	}
	if !filter.IncludeTrashed {
		parts = append(parts, "trashed = false")
	}
	if filter.OwnedOnly {
		parts = append(parts, "'me' in owners")
	}
	return strings.Join(parts, " and ")
}

// escapeQuery escapes a literal for a Files API query string. Backslashes
// must be doubled before quotes are escaped, or the backslash inserted for a
// quote would itself get doubled and leave the quote bare.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	return s
}

// mapAPIError classifies a Files API failure into the package taxonomy:
// 404 is not found, 403 is permission denied unless it is a rate limit,
// rate limits and server errors are transient, and anything that is not a
// googleapi error at all is treated as a transport failure, also transient.
func mapAPIError(msg string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		switch {
		case gErr.Code == 404:
			return fmt.Errorf("%s: %w", msg, ErrNotFound)
		case gErr.Code == 429 || gErr.Code >= 500 || isRateLimit(gErr):
			return newTransientError(msg, err)
		case gErr.Code == 403:
			return newPermissionError(msg, err)
		default:
			return newDriveError(msg, err)
		}
	}
	return newTransientError(msg, err)
}

func isRateLimit(gErr *googleapi.Error) bool {
	for _, e := range gErr.Errors {
		if e.Reason == "rateLimitExceeded" || e.Reason == "userRateLimitExceeded" {
			return true
		}
	}
	return false
}

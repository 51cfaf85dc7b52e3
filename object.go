package drivels

import (
	"strings"
	"time"

	"google.golang.org/api/drive/v3"
)

const (
	mimeTypeGoogleAppFolder = "application/vnd.google-apps.folder"
	mimeTypePrefixGoogleApp = "application/vnd.google-apps."
)

// Object is one node of the remote hierarchy: a file or folder identified by
// an opaque, stable ID. The same object may appear under more than one parent
// and parent sets may change between observations. Objects are ephemeral
// projections of an API response; only path-to-ID and ID-to-size mappings are
// ever persisted.
type Object struct {
	ID        string
	Name      string
	Mime      string
	Size      int64
	ParentIDs []string
	OwnedByMe bool
	Shared    bool
	Trashed   bool
	ModTime   time.Time
}

func (o Object) IsFolder() bool {
	return o.Mime == mimeTypeGoogleAppFolder
}

// IsAppFile reports whether the object is a native Google document
// (Docs, Sheets, ...). The API leaves their size undefined, so they
// contribute zero bytes to aggregation.
func (o Object) IsAppFile() bool {
	return strings.HasPrefix(o.Mime, mimeTypePrefixGoogleApp) && !o.IsFolder()
}

func newObject(f *drive.File) Object {
	modTime, _ := time.Parse(time.RFC3339, f.ModifiedTime)
	return Object{
		ID:        f.Id,
		Name:      f.Name,
		Mime:      f.MimeType,
		Size:      f.Size,
		ParentIDs: f.Parents,
		OwnedByMe: f.OwnedByMe,
		Shared:    f.Shared,
		Trashed:   f.Trashed,
		ModTime:   modTime,
	}
}

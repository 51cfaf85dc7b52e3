package main

import (
	"fmt"
	"time"

	"github.com/drivels/drivels"
)

// formatSize renders bytes the way ls -H does: "500", or "4K", "234M", "2G".
func formatSize(bytes int64, human bool) string {
	if !human {
		return fmt.Sprintf("%d", bytes)
	}
	size := float64(bytes)
	for _, unit := range []string{"B", "K", "M", "G", "T"} {
		if size < 1024.0 {
			if unit == "B" {
				return fmt.Sprintf("%d%s", bytes, unit)
			}
			return fmt.Sprintf("%.0f%s", size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%.0fP", size)
}

// formatDate renders a modification time ls-style: month, day and time for
// recent entries, month, day and year for older ones.
func formatDate(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	if now.Sub(t) < 180*24*time.Hour {
		return t.Format("Jan 02 15:04")
	}
	return t.Format("Jan 02  2006")
}

// typeChar classifies an entry: 'd' for folders, 'g' for native Google
// documents, '-' for regular files.
func typeChar(o drivels.Object) byte {
	switch {
	case o.IsFolder():
		return 'd'
	case o.IsAppFile():
		return 'g'
	default:
		return '-'
	}
}

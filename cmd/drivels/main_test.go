package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivels/drivels"
)

func fileEntry(path string, size int64) drivels.Entry {
	name := path[strings.LastIndex(path, "/")+1:]
	return drivels.Entry{
		Object:       drivels.Object{ID: path, Name: name, Mime: "text/plain", Size: size},
		Path:         drivels.Path(path),
		Bytes:        size,
		SizeComplete: true,
	}
}

func folderEntry(path string, size int64) drivels.Entry {
	return drivels.Entry{
		Object: drivels.Object{
			ID:   path,
			Name: path[strings.LastIndex(path, "/")+1:],
			Mime: "application/vnd.google-apps.folder",
		},
		Path:         drivels.Path(path),
		Bytes:        size,
		SizeComplete: true,
	}
}

func displayLines(entries []drivels.Entry, opts displayOptions) []string {
	var buf bytes.Buffer
	display(&buf, entries, "/", opts)
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

func TestDisplay_LongFormatPrintsTotal(t *testing.T) {
	entries := []drivels.Entry{
		fileEntry("/a.txt", 100),
		fileEntry("/b.txt", 200),
	}
	lines := displayLines(entries, displayOptions{long: true})
	require.Len(t, lines, 3)
	assert.Equal(t, "total 300", lines[0])
	assert.Contains(t, lines[1], "a.txt")
	assert.Contains(t, lines[2], "b.txt")
}

func TestDisplay_HumanTotal(t *testing.T) {
	entries := []drivels.Entry{fileEntry("/a.bin", 2048)}
	lines := displayLines(entries, displayOptions{long: true, human: true})
	require.NotEmpty(t, lines)
	assert.Equal(t, "total 2K", lines[0])
}

func TestDisplay_ShortFormatHasNoTotal(t *testing.T) {
	entries := []drivels.Entry{fileEntry("/a.txt", 100)}
	lines := displayLines(entries, displayOptions{})
	require.Len(t, lines, 1)
	assert.Equal(t, "a.txt", lines[0])
}

func TestDisplay_RecursiveTotalsPerDirectory(t *testing.T) {
	entries := []drivels.Entry{
		fileEntry("/a.txt", 100),
		folderEntry("/sub", 50),
		fileEntry("/sub/c.txt", 50),
	}
	lines := displayLines(entries, displayOptions{long: true, recursive: true})
	require.Len(t, lines, 8)
	assert.Equal(t, "/:", lines[0])
	assert.Equal(t, "total 150", lines[1])
	assert.Contains(t, lines[2], "a.txt")
	assert.Contains(t, lines[3], "sub/")
	assert.Equal(t, "", lines[4])
	assert.Equal(t, "/sub:", lines[5])
	assert.Equal(t, "total 50", lines[6])
	assert.Contains(t, lines[7], "c.txt")
}

func TestDisplay_EmptyListing(t *testing.T) {
	var buf bytes.Buffer
	display(&buf, nil, "/Empty", displayOptions{long: true})
	assert.Equal(t, "No files found in /Empty\n", buf.String())
}

package drivels

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestResolver builds a resolver over a two-level tree:
//
//	/Documents            (d1)
//	/Documents/Projects   (d2)
//	/Documents/notes.txt  (f1)
func newTestResolver(t *testing.T, strict bool) (*Resolver, *fakeDirectory) {
	t.Helper()
	dir := newFakeDirectory()
	dir.add(RootID, folderObj("d1", "Documents"))
	dir.add("d1", folderObj("d2", "Projects"), fileObj("f1", "notes.txt", 10))
	return NewResolver(dir, memCache(t), RootID, strict, nil), dir
}

func TestResolveRootWithoutRemoteCall(t *testing.T) {
	r, dir := newTestResolver(t, false)

	id, err := r.Resolve(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, RootID, id)
	assert.Equal(t, 0, dir.calls())
}

func TestResolveWalksComponents(t *testing.T) {
	r, dir := newTestResolver(t, false)

	id, err := r.Resolve(context.Background(), "/Documents/Projects")
	require.NoError(t, err)
	assert.Equal(t, "d2", id)
	assert.Equal(t, 2, dir.calls())
}

func TestResolveSecondCallIsCacheHit(t *testing.T) {
	r, dir := newTestResolver(t, false)

	id1, err := r.Resolve(context.Background(), "/Documents/Projects")
	require.NoError(t, err)

	dir.resetCalls()
	id2, err := r.Resolve(context.Background(), "/Documents/Projects")
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Equal(t, 0, dir.calls(), "cached resolution must make zero remote calls")
}

func TestResolveNormalizesSlashes(t *testing.T) {
	r, dir := newTestResolver(t, false)

	_, err := r.Resolve(context.Background(), "/Documents/Projects")
	require.NoError(t, err)

	dir.resetCalls()
	id, err := r.Resolve(context.Background(), "//Documents//Projects/")
	require.NoError(t, err)
	assert.Equal(t, "d2", id)
	assert.Equal(t, 0, dir.calls(), "equivalent spellings must share cache entries")
}

func TestResolveFinalComponentMayBeFile(t *testing.T) {
	r, _ := newTestResolver(t, false)

	id, err := r.Resolve(context.Background(), "/Documents/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "f1", id)
}

func TestResolveNotFoundReportsComponentAndPrefix(t *testing.T) {
	dir := newFakeDirectory()
	dir.add(RootID, folderObj("x1", "X"))
	r := NewResolver(dir, memCache(t), RootID, false, nil)

	_, err := r.Resolve(context.Background(), "/X/Y/Z")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Y", notFound.Component)
	assert.Equal(t, "/X", notFound.Prefix)
}

func TestResolveDefaultPolicyPicksFirstMatch(t *testing.T) {
	dir := newFakeDirectory()
	dir.add(RootID, folderObj("a1", "Shared"), folderObj("a2", "Shared"))
	r := NewResolver(dir, memCache(t), RootID, false, nil)

	id, err := r.Resolve(context.Background(), "/Shared")
	require.NoError(t, err)
	assert.Equal(t, "a1", id)

	// The first-match choice is pinned by the cache.
	dir.resetCalls()
	id, err = r.Resolve(context.Background(), "/Shared")
	require.NoError(t, err)
	assert.Equal(t, "a1", id)
	assert.Equal(t, 0, dir.calls())
}

func TestResolveStrictModeFailsOnDuplicates(t *testing.T) {
	dir := newFakeDirectory()
	dir.add(RootID, folderObj("a1", "Shared"), folderObj("a2", "Shared"))
	r := NewResolver(dir, memCache(t), RootID, true, nil)

	_, err := r.Resolve(context.Background(), "/Shared")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousName)

	var ambiguous *AmbiguousNameError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, "Shared", ambiguous.Name)
	assert.Equal(t, "/", ambiguous.Prefix)
	assert.Equal(t, 2, ambiguous.Matches)
}

func TestResolveAfterClearRepeatsColdCallSequence(t *testing.T) {
	dir := newFakeDirectory()
	dir.add(RootID, folderObj("d1", "Documents"))
	dir.add("d1", folderObj("d2", "Projects"))
	c := memCache(t)
	r := NewResolver(dir, c, RootID, false, nil)

	_, err := r.Resolve(context.Background(), "/Documents/Projects")
	require.NoError(t, err)
	cold := dir.calls()

	require.NoError(t, c.Clear())
	dir.resetCalls()

	_, err = r.Resolve(context.Background(), "/Documents/Projects")
	require.NoError(t, err)
	assert.Equal(t, cold, dir.calls(), "post-clear resolution must repeat the cold call sequence")
}

func TestResolveInvalidPath(t *testing.T) {
	r, _ := newTestResolver(t, false)

	for _, path := range []string{"", "relative/path", "/a/../b", "/./a"} {
		_, err := r.Resolve(context.Background(), Path(path))
		assert.ErrorIs(t, err, ErrInvalidPath, "path %q", path)
	}
}

func TestResolveIntermediateComponentMustBeFolder(t *testing.T) {
	r, _ := newTestResolver(t, false)

	// notes.txt exists but is a file, so it cannot appear mid-path.
	_, err := r.Resolve(context.Background(), "/Documents/notes.txt/deeper")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "notes.txt", notFound.Component)
	assert.Equal(t, "/Documents", notFound.Prefix)
}

func TestResolvePropagatesListingFailure(t *testing.T) {
	dir := newFakeDirectory()
	dir.add(RootID, folderObj("d1", "Documents"))
	dir.failListing("d1", newTransientError("listing failed", errors.New("boom")))
	r := NewResolver(dir, memCache(t), RootID, false, nil)

	_, err := r.Resolve(context.Background(), "/Documents/Projects")
	assert.ErrorIs(t, err, ErrTransient)
}

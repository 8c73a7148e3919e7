package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/thematic/internal/story"
)

// storeFactory creates a store for testing.
// We test both MemStore and SQLiteStore with the same test suite.
type storeFactory func() (Storer, error)

func memStoreFactory() (Storer, error) {
	return NewMemStore(), nil
}

func sqliteStoreFactory() (Storer, error) {
	return NewSQLiteStore()
}

// runTestsForAllStores runs a test function against both store implementations.
func runTestsForAllStores(t *testing.T, testName string, testFn func(t *testing.T, store Storer)) {
	factories := map[string]storeFactory{
		"MemStore":    memStoreFactory,
		"SQLiteStore": sqliteStoreFactory,
	}

	for name, factory := range factories {
		t.Run(name+"/"+testName, func(t *testing.T) {
			store, err := factory()
			require.NoError(t, err, "Failed to create store")
			defer store.Close()
			testFn(t, store)
		})
	}
}

func fixtureStory(t *testing.T) *story.Story {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "story", "testdata", "lighthouse.json"))
	require.NoError(t, err)
	s, err := story.Decode(data)
	require.NoError(t, err)
	return s
}

func threshold(v float64) *float64 { return &v }

func TestSaveAndGetStory(t *testing.T) {
	runTestsForAllStores(t, "SaveAndGet", func(t *testing.T, store Storer) {
		ctx := context.Background()
		rec := &StoryRecord{
			ID:        "story-1",
			Title:     "The Lighthouse",
			Author:    "K. Ward",
			Threshold: threshold(0.4),
			Document:  []byte(`{"story":{"title":"The Lighthouse"}}`),
		}
		require.NoError(t, store.SaveStory(ctx, rec))
		assert.NotZero(t, rec.CreatedAt)
		assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)

		got, err := store.GetStory(ctx, "story-1")
		require.NoError(t, err)
		assert.Equal(t, "The Lighthouse", got.Title)
		assert.Equal(t, "K. Ward", got.Author)
		require.NotNil(t, got.Threshold)
		assert.Equal(t, 0.4, *got.Threshold)
		assert.Equal(t, rec.Document, got.Document)
	})
}

func TestGetMissingStory(t *testing.T) {
	runTestsForAllStores(t, "GetMissing", func(t *testing.T, store Storer) {
		_, err := store.GetStory(context.Background(), "nope")
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})
}

func TestSaveAssignsID(t *testing.T) {
	runTestsForAllStores(t, "AssignsID", func(t *testing.T, store Storer) {
		rec := &StoryRecord{Title: "Untitled", Document: []byte(`{}`)}
		require.NoError(t, store.SaveStory(context.Background(), rec))
		assert.Len(t, rec.ID, 36)

		_, err := store.GetStory(context.Background(), rec.ID)
		assert.NoError(t, err)
	})
}

func TestSaveReplacesKeepingCreation(t *testing.T) {
	runTestsForAllStores(t, "Replace", func(t *testing.T, store Storer) {
		ctx := context.Background()
		first := &StoryRecord{ID: "s", Title: "Draft", Threshold: threshold(0.2), Document: []byte(`1`)}
		require.NoError(t, store.SaveStory(ctx, first))

		second := &StoryRecord{ID: "s", Title: "Final", Document: []byte(`2`)}
		require.NoError(t, store.SaveStory(ctx, second))
		assert.Equal(t, first.CreatedAt, second.CreatedAt)

		got, err := store.GetStory(ctx, "s")
		require.NoError(t, err)
		assert.Equal(t, "Final", got.Title)
		assert.Nil(t, got.Threshold)
		assert.Equal(t, []byte(`2`), got.Document)

		count, err := store.CountStories(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestListAndDeleteStories(t *testing.T) {
	runTestsForAllStores(t, "ListDelete", func(t *testing.T, store Storer) {
		ctx := context.Background()
		for _, id := range []string{"a", "b", "c"} {
			require.NoError(t, store.SaveStory(ctx, &StoryRecord{ID: id, Title: id, Document: []byte(id)}))
		}

		list, err := store.ListStories(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		for _, rec := range list {
			assert.Nil(t, rec.Document, "listing omits documents")
		}

		require.NoError(t, store.DeleteStory(ctx, "b"))
		require.NoError(t, store.DeleteStory(ctx, "b"), "deleting twice is fine")

		count, err := store.CountStories(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		_, err = store.GetStory(ctx, "b")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestMemStoreCopiesOnRead(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()
	rec := &StoryRecord{ID: "x", Title: "X", Document: []byte("abc")}
	require.NoError(t, store.SaveStory(ctx, rec))

	rec.Document[0] = 'z'
	got, err := store.GetStory(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got.Document)
}

func TestRecordRoundTrip(t *testing.T) {
	s := fixtureStory(t)
	s.ID = ""

	rec, err := NewRecord(s)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, s.ID, rec.ID)
	assert.Equal(t, "The Lighthouse", rec.Title)
	require.NotNil(t, rec.Threshold)
	assert.Equal(t, 0.4, *rec.Threshold)

	store, err := NewSQLiteStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.SaveStory(ctx, rec))
	got, err := store.GetStory(ctx, rec.ID)
	require.NoError(t, err)

	back, err := got.Story()
	require.NoError(t, err)
	assert.Equal(t, s.ID, back.ID)
	assert.Equal(t, s.Nodes, back.Nodes)
}

func TestSQLiteStorePersists(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "stories.db")
	ctx := context.Background()

	store, err := NewSQLiteStoreWithDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, store.SaveStory(ctx, &StoryRecord{ID: "kept", Title: "Kept", Document: []byte(`{}`)}))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStoreWithDSN(dsn)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetStory(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, "Kept", got.Title)
}

func TestCanceledContext(t *testing.T) {
	runTestsForAllStores(t, "Canceled", func(t *testing.T, store Storer) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := store.SaveStory(ctx, &StoryRecord{ID: "late", Document: []byte(`{}`)})
		assert.Error(t, err)
	})
}

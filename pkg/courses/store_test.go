package courses

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoster() []Course {
	return []Course{
		{
			ID:         "beach1",
			Locator:    Locator("#bs_tr1 > td.bs_sbuch > input"),
			Active:     true,
			CourseDay:  time.Monday,
			CourseTime: ClockTime{Hour: 18, Minute: 0},
		},
		{
			ID:         "volley2",
			Locator:    Locator("#bs_tr2 > td.bs_sbuch > input"),
			Active:     false,
			CourseDay:  time.Thursday,
			CourseTime: ClockTime{Hour: 20, Minute: 30},
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "courses.json"))
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	original := testRoster()

	require.NoError(t, store.Save(original))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, original, loaded, "order and fields must be preserved")
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load()
	assert.Error(t, err)
}

func TestStoreUpdateUnknownID(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(testRoster()))

	err := store.Update("nope", func(c *Course) { c.Active = false })
	assert.ErrorContains(t, err, "not found")
}

func TestStoreMarkBooked(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(testRoster()))

	bookedAt := time.Date(2025, time.June, 2, 18, 1, 30, 0, time.UTC)
	require.NoError(t, store.MarkBooked("beach1", bookedAt))

	loaded, err := store.Load()
	require.NoError(t, err)

	assert.False(t, loaded[0].Active)
	require.NotNil(t, loaded[0].BookingDate)
	assert.True(t, loaded[0].BookingDate.Equal(bookedAt))

	// the other course is untouched
	assert.Equal(t, testRoster()[1], loaded[1])
}

func TestStoreReactivate(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(testRoster()))

	bookedAt := time.Now().UTC()
	require.NoError(t, store.MarkBooked("beach1", bookedAt))
	require.NoError(t, store.Reactivate("beach1"))

	loaded, err := store.Load()
	require.NoError(t, err)

	assert.True(t, loaded[0].Active)
	assert.Nil(t, loaded[0].BookingDate)
}

func TestStoreSaveLeavesNoTempFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(testRoster()))

	_, err := os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be renamed away")
}

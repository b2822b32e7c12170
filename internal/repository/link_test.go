package repository

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filegate/filegate/internal/model"
)

func newLink(token string, expiryAt *time.Time) *model.Link {
	return &model.Link{
		Token:        token,
		FileID:       "file-1",
		FileUniqueID: "unique-1",
		UserID:       42,
		CreatedAt:    time.Now(),
		ExpiryAt:     expiryAt,
	}
}

func TestLinkCreateDuplicateToken(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))

	require.NoError(t, repo.Create(newLink("tok-dup", nil)))

	err := repo.Create(newLink("tok-dup", nil))
	assert.ErrorIs(t, err, ErrDuplicateToken)
}

func TestLinkByTokenExpiry(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	require.NoError(t, repo.Create(newLink("tok-expired", &past)))
	require.NoError(t, repo.Create(newLink("tok-live", &future)))
	require.NoError(t, repo.Create(newLink("tok-forever", nil)))

	// An expired token is indistinguishable from one that never existed
	_, err := repo.ByToken("tok-expired")
	assert.ErrorIs(t, err, ErrLinkNotFound)

	_, err = repo.ByToken("tok-never-issued")
	assert.ErrorIs(t, err, ErrLinkNotFound)

	link, err := repo.ByToken("tok-live")
	require.NoError(t, err)
	assert.Equal(t, "file-1", link.FileID)

	link, err = repo.ByToken("tok-forever")
	require.NoError(t, err)
	assert.Nil(t, link.ExpiryAt)
}

func TestLinkIncrementAccessCountConcurrent(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	require.NoError(t, repo.Create(newLink("tok-count", nil)))

	const workers = 20
	const perWorker = 10

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_, err := repo.IncrementAccessCount("tok-count")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	link, err := repo.ByToken("tok-count")
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), link.AccessCount)
	assert.NotNil(t, link.LastAccessed)
}

func TestLinkIncrementAccessCountExpired(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))

	past := time.Now().Add(-time.Second)
	require.NoError(t, repo.Create(newLink("tok-gone", &past)))

	_, err := repo.IncrementAccessCount("tok-gone")
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestLinkDelete(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	require.NoError(t, repo.Create(newLink("tok-del", nil)))

	deleted, err := repo.Delete("tok-del")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete("tok-del")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestLinkByUserOrderAndLimit(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		link := newLink(fmt.Sprintf("tok-%d", i), nil)
		link.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(link))
	}

	// Another user's link must not leak into the listing
	other := newLink("tok-other", nil)
	other.UserID = 99
	require.NoError(t, repo.Create(other))

	links, err := repo.ByUser(42, 3)
	require.NoError(t, err)
	require.Len(t, links, 3)
	assert.Equal(t, "tok-4", links[0].Token)
	assert.Equal(t, "tok-3", links[1].Token)
	assert.Equal(t, "tok-2", links[2].Token)
}

func TestLinkDeleteExpiredIdempotent(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	require.NoError(t, repo.Create(newLink("tok-a", &past)))
	require.NoError(t, repo.Create(newLink("tok-b", &past)))
	require.NoError(t, repo.Create(newLink("tok-c", &future)))
	require.NoError(t, repo.Create(newLink("tok-d", nil)))

	deleted, err := repo.DeleteExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	deleted, err = repo.DeleteExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

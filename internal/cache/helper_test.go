package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedUser struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestGetSetJSON_RoundTrip(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	in := cachedUser{ID: 7, Name: "quill"}
	require.NoError(t, SetJSON(ctx, UserKey(7), in, UserTTL))

	var out cachedUser
	found, err := GetJSON(ctx, UserKey(7), &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestGetJSON_Miss(t *testing.T) {
	setupMiniredis(t)

	var out cachedUser
	found, err := GetJSON(context.Background(), "user:404", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHelpers_NilClientAreNoOps(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	var out cachedUser
	found, err := GetJSON(ctx, "anything", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, "anything", cachedUser{ID: 1}, time.Minute))
	Invalidate(ctx, "anything")
}

func TestAside_FetchesOnMissThenServesFromCache(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedUser) func() error {
		return func() error {
			fetches++
			*dest = cachedUser{ID: 3, Name: "fetched"}
			return nil
		}
	}

	var first cachedUser
	require.NoError(t, Aside(ctx, PostKey(3), &first, PostTTL, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "fetched", first.Name)

	var second cachedUser
	require.NoError(t, Aside(ctx, PostKey(3), &second, PostTTL, fetch(&second)))
	assert.Equal(t, 1, fetches, "second read should come from cache")
	assert.Equal(t, "fetched", second.Name)
}

func TestAside_FetchErrorPropagates(t *testing.T) {
	setupMiniredis(t)

	boom := errors.New("db down")
	var out cachedUser
	err := Aside(context.Background(), "post:9", &out, PostTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestInvalidatePost_DropsPostAndFeed(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostKey(5), cachedUser{ID: 5}, PostTTL))
	require.NoError(t, SetJSON(ctx, FeedKey, []cachedUser{{ID: 5}}, FeedTTL))

	InvalidatePost(ctx, 5)

	assert.False(t, mr.Exists(PostKey(5)))
	assert.False(t, mr.Exists(FeedKey))
}

package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/ieraasyl/FavoritesService/internal/database"
	"github.com/ieraasyl/FavoritesService/internal/testutil"
	"github.com/ieraasyl/FavoritesService/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionFields = map[string]string{
	"user_id":      "141981764",
	"login":        "twitchdev",
	"display_name": "TwitchDev",
}

func TestNewRedisDB_ConnectionFailure(t *testing.T) {
	_, err := database.NewRedisDB(&config.RedisConfig{Host: "127.0.0.1", Port: "1"})
	assert.Error(t, err)
}

func TestRedisSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		mr := testutil.SetupMiniRedis(t)
		db := testutil.NewTestRedisDB(t, mr)

		require.NoError(t, db.SetSession(ctx, "s1", sessionFields, time.Hour))

		got, err := db.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, sessionFields, got)

		assert.True(t, mr.Exists("session:s1"))
		assert.Equal(t, time.Hour, mr.TTL("session:s1"))
	})

	t.Run("missing session", func(t *testing.T) {
		mr := testutil.SetupMiniRedis(t)
		db := testutil.NewTestRedisDB(t, mr)

		_, err := db.GetSession(ctx, "nope")
		assert.ErrorIs(t, err, database.ErrNotFound)
	})

	t.Run("expires after ttl", func(t *testing.T) {
		mr := testutil.SetupMiniRedis(t)
		db := testutil.NewTestRedisDB(t, mr)

		require.NoError(t, db.SetSession(ctx, "s1", sessionFields, time.Minute))
		mr.FastForward(2 * time.Minute)

		_, err := db.GetSession(ctx, "s1")
		assert.ErrorIs(t, err, database.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		mr := testutil.SetupMiniRedis(t)
		db := testutil.NewTestRedisDB(t, mr)

		require.NoError(t, db.SetSession(ctx, "s1", sessionFields, time.Hour))
		require.NoError(t, db.DeleteSession(ctx, "s1"))
		require.NoError(t, db.DeleteSession(ctx, "s1"))

		_, err := db.GetSession(ctx, "s1")
		assert.ErrorIs(t, err, database.ErrNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		mr := testutil.SetupMiniRedis(t)
		db := testutil.NewTestRedisDB(t, mr)

		assert.NoError(t, db.Ping(ctx))
	})
}

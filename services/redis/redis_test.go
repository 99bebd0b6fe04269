package redis_test

import (
	"context"
	"sync"
	"testing"
	"time"

	svcredis "Impostor/services/redis"
	redis_utils "Impostor/services/redis/utils"
	"Impostor/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestEliminationVotes(t *testing.T) {
	ctx := context.Background()
	mr, client := testutil.NewRedis(t)
	rc := svcredis.Wrap(client, 10*time.Minute)

	t.Run("first ballot wins", func(t *testing.T) {
		ok, err := rc.CastEliminationVote(ctx, 1, 10, uintPtr(20))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = rc.CastEliminationVote(ctx, 1, 10, uintPtr(30))
		require.NoError(t, err)
		assert.False(t, ok)

		voted, err := rc.HasEliminationVote(ctx, 1, 10)
		require.NoError(t, err)
		assert.True(t, voted)

		assert.Equal(t, "20", mr.HGet(redis_utils.FormatEliminationVotesKey(1), "10"))
	})

	t.Run("skip is stored as empty target", func(t *testing.T) {
		ok, err := rc.CastEliminationVote(ctx, 1, 11, nil)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("drain returns and clears", func(t *testing.T) {
		votes, err := rc.DrainEliminationVotes(ctx, 1)
		require.NoError(t, err)
		require.Len(t, votes, 2)
		assert.Equal(t, uint(10), votes[0].VoterID)
		assert.Equal(t, uint(20), *votes[0].TargetID)
		assert.True(t, votes[1].Skip())

		votes, err = rc.DrainEliminationVotes(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, votes)
		assert.False(t, mr.Exists(redis_utils.FormatEliminationVotesKey(1)))
	})

	t.Run("lobbies are isolated", func(t *testing.T) {
		_, err := rc.CastEliminationVote(ctx, 2, 10, uintPtr(1))
		require.NoError(t, err)
		voted, err := rc.HasEliminationVote(ctx, 3, 10)
		require.NoError(t, err)
		assert.False(t, voted)
		require.NoError(t, rc.ClearEliminationVotes(ctx, 2))
		voted, err = rc.HasEliminationVote(ctx, 2, 10)
		require.NoError(t, err)
		assert.False(t, voted)
	})
}

func TestEliminationVotesExpire(t *testing.T) {
	ctx := context.Background()
	mr, client := testutil.NewRedis(t)
	rc := svcredis.Wrap(client, 10*time.Minute)

	_, err := rc.CastEliminationVote(ctx, 7, 1, uintPtr(2))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, mr.TTL(redis_utils.FormatEliminationVotesKey(7)))

	mr.FastForward(11 * time.Minute)

	votes, err := rc.DrainEliminationVotes(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, votes)
}

func TestConcurrentBallotsSameVoter(t *testing.T) {
	ctx := context.Background()
	_, client := testutil.NewRedis(t)
	rc := svcredis.Wrap(client, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(target uint) {
			defer wg.Done()
			ok, err := rc.CastEliminationVote(ctx, 9, 5, &target)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(uint(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	votes, err := rc.DrainEliminationVotes(ctx, 9)
	require.NoError(t, err)
	assert.Len(t, votes, 1)
}

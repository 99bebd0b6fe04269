package redis

import (
	"context"
	"fmt"
	"sort"

	redis_models "Impostor/models/redis"
	redis_utils "Impostor/services/redis/utils"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CastEliminationVote records voter's ballot unless one already exists.
// Key format: "lobby:{id}:votes", one hash field per voter.
// The key TTL is refreshed on every write so abandoned rounds expire.
func (rc *RedisClient) CastEliminationVote(ctx context.Context, lobbyID, voterID uint, target *uint) (bool, error) {
	key := redis_utils.FormatEliminationVotesKey(lobbyID)

	var created *redis.BoolCmd
	_, err := rc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.HSetNX(ctx, key, redis_utils.FormatVoterField(voterID), redis_models.EncodeTarget(target))
		pipe.Expire(ctx, key, rc.voteTTL)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("error casting vote: %w", err)
	}
	return created.Val(), nil
}

// HasEliminationVote reports whether voter already holds a ballot.
func (rc *RedisClient) HasEliminationVote(ctx context.Context, lobbyID, voterID uint) (bool, error) {
	key := redis_utils.FormatEliminationVotesKey(lobbyID)
	ok, err := rc.client.HExists(ctx, key, redis_utils.FormatVoterField(voterID)).Result()
	if err != nil {
		return false, fmt.Errorf("error reading vote: %w", err)
	}
	return ok, nil
}

// DrainEliminationVotes reads and deletes every ballot of a lobby in one
// MULTI/EXEC, so each ballot is counted by exactly one tally. Ballots are
// returned ordered by voter id.
func (rc *RedisClient) DrainEliminationVotes(ctx context.Context, lobbyID uint) ([]redis_models.EliminationVote, error) {
	key := redis_utils.FormatEliminationVotesKey(lobbyID)

	var all *redis.MapStringStringCmd
	_, err := rc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		all = pipe.HGetAll(ctx, key)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error draining votes: %w", err)
	}

	votes := make([]redis_models.EliminationVote, 0, len(all.Val()))
	for field, value := range all.Val() {
		vote, err := redis_models.DecodeVote(field, value)
		if err != nil {
			log.Warn().Err(err).Uint("lobby", lobbyID).Msg("dropping malformed ballot")
			continue
		}
		votes = append(votes, vote)
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].VoterID < votes[j].VoterID })
	return votes, nil
}

// ClearEliminationVotes discards every ballot of a lobby.
func (rc *RedisClient) ClearEliminationVotes(ctx context.Context, lobbyID uint) error {
	key := redis_utils.FormatEliminationVotesKey(lobbyID)
	if err := rc.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("error clearing votes: %w", err)
	}
	return nil
}

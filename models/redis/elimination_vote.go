package redis

import (
	"fmt"
	"strconv"
)

// EliminationVote is one ballot of the elimination vote. A nil TargetID
// is a skip.
type EliminationVote struct {
	VoterID  uint  `json:"voter_id"`
	TargetID *uint `json:"target_id"`
}

func (v EliminationVote) Skip() bool {
	return v.TargetID == nil
}

// EncodeTarget renders a target as the hash value stored per voter.
// Skips are stored as the empty string.
func EncodeTarget(target *uint) string {
	if target == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*target), 10)
}

// DecodeVote parses one (field, value) pair of the ballot hash.
func DecodeVote(field, value string) (EliminationVote, error) {
	voter, err := strconv.ParseUint(field, 10, 64)
	if err != nil {
		return EliminationVote{}, fmt.Errorf("bad voter id %q: %w", field, err)
	}
	vote := EliminationVote{VoterID: uint(voter)}
	if value == "" {
		return vote, nil
	}
	target, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return EliminationVote{}, fmt.Errorf("bad target id %q: %w", value, err)
	}
	t := uint(target)
	vote.TargetID = &t
	return vote, nil
}

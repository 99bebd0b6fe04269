package utils

/**
 * This file contains utility functions to format the keys for Redis
 * (key, value) pairs. It avoids having to call "fmt.Sprintf(...)"
 * with the same format spec every time, potentially confusing the key format.
 */

import "fmt"

// FormatEliminationVotesKey is the hash holding voter -> target for a lobby.
func FormatEliminationVotesKey(lobbyID uint) string {
	return fmt.Sprintf("lobby:%d:votes", lobbyID)
}

func FormatVoterField(voterID uint) string {
	return fmt.Sprintf("%d", voterID)
}

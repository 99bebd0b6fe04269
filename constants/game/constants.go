package game_constants

const MinPlayersToStart = 2

// Players who were impostor this many rounds in a row sit out the next draw
// when enough other players are eligible.
const MaxImpostorStreak = 3

// Vote-now and reroll activate at ceil(active * VoteThresholdPercent / 100).
const VoteThresholdPercent = 70

const MessageHistoryLimit = 100

const DefaultLanguage = "en"

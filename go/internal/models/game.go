package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Provenance tells whether an answer was written by a player or generated.
type Provenance string

const (
	ProvenanceAI    Provenance = "AI"
	ProvenanceHuman Provenance = "human"
)

const (
	aiSuffix   = "_ai"
	realSuffix = "_real"
)

// Matches reports whether a claimed type names this provenance. Claims are
// case-insensitive ("ai", "AI", "Human").
func (p Provenance) Matches(claim string) bool {
	return strings.EqualFold(string(p), strings.TrimSpace(claim))
}

// AnswerID identifies one answer in a round. On the wire it is encoded as
// "<ownerID>_real" or "<ownerID>_ai".
type AnswerID struct {
	OwnerID    string
	Provenance Provenance
}

func RealAnswerID(ownerID string) AnswerID {
	return AnswerID{OwnerID: ownerID, Provenance: ProvenanceHuman}
}

func SyntheticAnswerID(ownerID string) AnswerID {
	return AnswerID{OwnerID: ownerID, Provenance: ProvenanceAI}
}

// String returns the wire form of the ID.
func (id AnswerID) String() string {
	if id.Provenance == ProvenanceAI {
		return id.OwnerID + aiSuffix
	}
	return id.OwnerID + realSuffix
}

// ParseAnswerID decodes a wire answer ID. Provenance is structural: an "_ai"
// suffix means AI, anything else is human. The owner is the ID with a known
// suffix removed.
func ParseAnswerID(raw string) AnswerID {
	if owner, ok := strings.CutSuffix(raw, aiSuffix); ok {
		return AnswerID{OwnerID: owner, Provenance: ProvenanceAI}
	}
	owner, _ := strings.CutSuffix(raw, realSuffix)
	return AnswerID{OwnerID: owner, Provenance: ProvenanceHuman}
}

// Answer is one entry in the anonymised answer list shown to guessers.
type Answer struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// PlayerStats holds a player's guessing behaviour across the whole game.
type PlayerStats struct {
	Correct   int `json:"correct"`
	Wrong     int `json:"wrong"`
	Streak    int `json:"streak"`
	MaxStreak int `json:"max_streak"`
}

// RecordCorrect counts a correct guess and extends the streak.
func (s *PlayerStats) RecordCorrect() {
	s.Correct++
	s.Streak++
	if s.Streak > s.MaxStreak {
		s.MaxStreak = s.Streak
	}
}

// RecordWrong counts a wrong guess and resets the streak.
func (s *PlayerStats) RecordWrong() {
	s.Wrong++
	s.Streak = 0
}

// LeaderboardEntry is one row of the final leaderboard. On the wire it is a
// two-element array: ["<playerID>", <score>].
type LeaderboardEntry struct {
	PlayerID string
	Score    int
}

func (e LeaderboardEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.PlayerID, e.Score})
}

func (e *LeaderboardEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("failed to decode leaderboard entry: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("leaderboard entry must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.PlayerID); err != nil {
		return fmt.Errorf("failed to decode leaderboard player: %w", err)
	}
	if err := json.Unmarshal(pair[1], &e.Score); err != nil {
		return fmt.Errorf("failed to decode leaderboard score: %w", err)
	}
	return nil
}

// TopDetectiveAward goes to every player sharing the highest score.
type TopDetectiveAward struct {
	Players   []string `json:"players"`
	MaxStreak int      `json:"max_streak"`
}

// MostFooledAward goes to every player sharing the lowest score.
type MostFooledAward struct {
	Players      []string       `json:"players"`
	WrongGuesses map[string]int `json:"wrong_guesses"`
}

// Awards is keyed on the wire by the award titles.
type Awards struct {
	TopDetective TopDetectiveAward `json:"Top Detective"`
	MostFooled   MostFooledAward   `json:"Most Fooled by AI"`
}

package game

import (
	"strings"

	"github.com/mcdev12/botornot/go/internal/models"
)

// StartGameRequest represents a request to start (or restart) a room's game
type StartGameRequest struct {
	RoomID string `json:"room_id"`
}

func (r StartGameRequest) Validate() error {
	if strings.TrimSpace(r.RoomID) == "" {
		return validationError(msgRoomRequired)
	}
	return nil
}

// SubmitAnswerRequest represents a player's written answer for the current round
type SubmitAnswerRequest struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
	Answer string `json:"answer"`
}

func (r SubmitAnswerRequest) Validate() error {
	if r.RoomID == "" || r.UserID == "" || strings.TrimSpace(r.Answer) == "" {
		return validationError(msgAnswerFieldsMissing)
	}
	return nil
}

// SubmitGuessRequest represents a guess that an answer is AI or human
type SubmitGuessRequest struct {
	RoomID       string `json:"room_id"`
	GuessingUser string `json:"guessing_user"`
	GuessedID    string `json:"guessed_id"`
	GuessType    string `json:"guess_type"`
}

func (r SubmitGuessRequest) Validate() error {
	if r.RoomID == "" || r.GuessingUser == "" || r.GuessedID == "" || strings.TrimSpace(r.GuessType) == "" {
		return validationError(msgGuessFieldsMissing)
	}
	return nil
}

// AdvanceRoundRequest represents a request to move a room to its next round
type AdvanceRoundRequest struct {
	RoomID string `json:"room_id"`
}

// StartResult is returned by StartGame
type StartResult struct {
	RoomID    string
	MaxRounds int
}

// PromptResult is returned by GetCurrentPrompt. When GameOver is set only
// Scores is meaningful.
type PromptResult struct {
	Round     int
	Prompt    string
	MaxRounds int
	GameOver  bool
	Scores    map[string]int
}

// SubmitAnswerResult is returned by SubmitAnswer
type SubmitAnswerResult struct {
	PlayerID        string
	SyntheticAnswer string
	// PhaseEnded is set when this answer completed the expected set and
	// this call ended the submission phase.
	PhaseEnded bool
}

// GuessResult is returned by SubmitGuess
type GuessResult struct {
	Correct bool
	Scores  map[string]int
}

// AdvanceResult is returned by AdvanceRound. MaxReached means nothing changed
// and Scores holds the final standings.
type AdvanceResult struct {
	Round      int
	MaxReached bool
	Scores     map[string]int
}

// Summary is the end-of-game leaderboard and awards. Empty is set when no
// player has a score yet.
type Summary struct {
	Empty       bool
	Leaderboard []models.LeaderboardEntry
	Awards      models.Awards
}

// RoomState is a point-in-time view of a room for reconnecting clients
type RoomState struct {
	RoomID          string         `json:"room_id"`
	Round           int            `json:"round"`
	MaxRounds       int            `json:"max_rounds"`
	Prompt          string         `json:"prompt,omitempty"`
	Phase           string         `json:"phase,omitempty"`
	TimeRemaining   *int           `json:"time_remaining_sec,omitempty"`
	Answered        []string       `json:"answered"`
	ExpectedPlayers []string       `json:"expected_players"`
	Scores          map[string]int `json:"scores"`
}

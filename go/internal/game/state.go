package game

import (
	"maps"
	"math/rand"
	"slices"
	"strings"

	"github.com/mcdev12/botornot/go/internal/models"
)

// guessRecord is the latest claim a guesser made about one answer this
// round. correct is the outcome of that claim; credited is set once the
// guesser has been awarded a point for the answer.
type guessRecord struct {
	claim    string
	correct  bool
	credited bool
}

// gameState is the mutable per-room game. It is owned by a room and must
// only be touched with the room lock held.
type gameState struct {
	round     int
	maxRounds int

	promptPool    []string
	currentPrompt string

	realAnswers map[string]string
	aiAnswers   map[string]string
	answerOrder []string

	guesses map[string]map[string]*guessRecord
	// guessLog holds every guesser's records for the whole game in the
	// order each answer was first guessed. Stats are derived from it.
	guessLog map[string][]*guessRecord

	scores     map[string]int
	scoreOrder []string
	stats      map[string]*models.PlayerStats
}

func newGameState(maxRounds int, pool []string) *gameState {
	g := &gameState{
		round:      1,
		maxRounds:  maxRounds,
		promptPool: pool,
		scores:     make(map[string]int),
		stats:      make(map[string]*models.PlayerStats),
		guessLog:   make(map[string][]*guessRecord),
	}
	g.resetRound()
	return g
}

// resetRound clears everything scoped to a single round.
func (g *gameState) resetRound() {
	g.currentPrompt = ""
	g.realAnswers = make(map[string]string)
	g.aiAnswers = make(map[string]string)
	g.answerOrder = nil
	g.guesses = make(map[string]map[string]*guessRecord)
}

// drawPrompt picks a random prompt from the pool, removes it and makes it
// current. An exhausted pool is refilled from the catalog first.
func (g *gameState) drawPrompt(catalog []string) string {
	if len(g.promptPool) == 0 {
		g.promptPool = catalog
	}
	i := rand.Intn(len(g.promptPool))
	g.currentPrompt = g.promptPool[i]
	g.promptPool = slices.Delete(g.promptPool, i, i+1)
	return g.currentPrompt
}

// ensurePlayer gives a player both a score row and stats.
func (g *gameState) ensurePlayer(playerID string) {
	g.ensureScore(playerID)
	g.ensureStats(playerID)
}

func (g *gameState) ensureScore(playerID string) {
	if _, ok := g.scores[playerID]; !ok {
		g.scores[playerID] = 0
		g.scoreOrder = append(g.scoreOrder, playerID)
	}
}

func (g *gameState) ensureStats(playerID string) *models.PlayerStats {
	stats, ok := g.stats[playerID]
	if !ok {
		stats = &models.PlayerStats{}
		g.stats[playerID] = stats
	}
	return stats
}

// recordAnswer stores both halves of a player's answer together. A second
// submission in the same round overwrites the first.
func (g *gameState) recordAnswer(playerID, real, synthetic string) {
	if _, ok := g.realAnswers[playerID]; !ok {
		g.answerOrder = append(g.answerOrder, playerID)
	}
	g.realAnswers[playerID] = real
	g.aiAnswers[playerID] = synthetic
	g.ensurePlayer(playerID)
}

func (g *gameState) allAnswered(expected []string) bool {
	for _, playerID := range expected {
		if _, ok := g.realAnswers[playerID]; !ok {
			return false
		}
	}
	return true
}

// answers lists every real and synthetic answer of the round in submission
// order. Callers shuffle before exposing it.
func (g *gameState) answers() []models.Answer {
	out := make([]models.Answer, 0, 2*len(g.answerOrder))
	for _, playerID := range g.answerOrder {
		out = append(out,
			models.Answer{ID: models.RealAnswerID(playerID).String(), Text: g.realAnswers[playerID]},
			models.Answer{ID: models.SyntheticAnswerID(playerID).String(), Text: g.aiAnswers[playerID]},
		)
	}
	return out
}

// recordGuess applies a guess and reports whether the claim was right.
// Only the latest claim per answer counts toward stats: repeating it changes
// nothing and changing it replaces the earlier outcome. A guesser earns at
// most one point per answer per round and scores never decrease. Score rows
// are created by answers and correct guesses only.
func (g *gameState) recordGuess(guesserID, answerID, claim string) bool {
	correct := models.ParseAnswerID(answerID).Provenance.Matches(claim)
	stats := g.ensureStats(guesserID)

	byAnswer, ok := g.guesses[guesserID]
	if !ok {
		byAnswer = make(map[string]*guessRecord)
		g.guesses[guesserID] = byAnswer
	}

	rec, seen := byAnswer[answerID]
	switch {
	case seen && strings.EqualFold(strings.TrimSpace(rec.claim), strings.TrimSpace(claim)):
		return correct
	case seen:
		rec.claim = claim
		rec.correct = correct
		g.replayStats(guesserID)
	default:
		rec = &guessRecord{claim: claim, correct: correct}
		byAnswer[answerID] = rec
		g.guessLog[guesserID] = append(g.guessLog[guesserID], rec)
		if correct {
			stats.RecordCorrect()
		} else {
			stats.RecordWrong()
		}
	}

	if correct && !rec.credited {
		g.ensureScore(guesserID)
		g.scores[guesserID]++
		rec.credited = true
	}
	return correct
}

// replayStats rebuilds a player's stats from the outcomes in their guess log.
func (g *gameState) replayStats(playerID string) {
	var stats models.PlayerStats
	for _, rec := range g.guessLog[playerID] {
		if rec.correct {
			stats.RecordCorrect()
		} else {
			stats.RecordWrong()
		}
	}
	*g.ensureStats(playerID) = stats
}

// advance moves to the next round, keeping scores and stats.
func (g *gameState) advance() {
	g.round++
	g.resetRound()
}

func (g *gameState) gameOver() bool {
	return g.round > g.maxRounds
}

func (g *gameState) scoresCopy() map[string]int {
	return maps.Clone(g.scores)
}

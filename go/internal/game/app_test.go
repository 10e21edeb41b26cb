package game

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/botornot/go/internal/events"
	"github.com/mcdev12/botornot/go/internal/models"
	"github.com/mcdev12/botornot/go/internal/phasetimer"
	"github.com/mcdev12/botornot/go/internal/presence"
	"github.com/mcdev12/botornot/go/internal/prompts"
	"github.com/mcdev12/botornot/go/internal/synthetic"
)

const fiveWords = "one two three four five"

type countingPublisher struct {
	mu     sync.Mutex
	counts map[events.Type]int
}

func (p *countingPublisher) Publish(_ context.Context, _ string, eventType events.Type, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.counts == nil {
		p.counts = make(map[events.Type]int)
	}
	p.counts[eventType]++
	return nil
}

func (p *countingPublisher) count(eventType events.Type) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[eventType]
}

type fixture struct {
	app      *App
	clock    *clockwork.FakeClock
	timers   *phasetimer.Registry
	presence *presence.Registry
	pub      *countingPublisher
}

func newFixture(t *testing.T, catalog ...string) *fixture {
	t.Helper()
	if len(catalog) == 0 {
		catalog = []string{"Describe a rainy morning.", "What is your comfort food?", "Name a place you miss."}
	}
	pub := &countingPublisher{}
	fc := clockwork.NewFakeClock()
	timers := phasetimer.NewRegistry(pub, phasetimer.WithClock(fc))
	t.Cleanup(timers.Shutdown)
	pres := presence.NewRegistry(pub)

	app := NewApp(DefaultConfig(), timers, pres, prompts.NewCatalog(catalog), synthetic.ReversePrompt{})
	return &fixture{app: app, clock: fc, timers: timers, presence: pres, pub: pub}
}

func (f *fixture) join(roomID string, players ...string) {
	for _, p := range players {
		f.presence.Join(context.Background(), roomID, p)
	}
}

func (f *fixture) state(roomID string) *gameState {
	return f.app.rooms[roomID].state
}

// startRound starts a game and draws its first prompt.
func (f *fixture) startRound(t *testing.T, roomID string) string {
	t.Helper()
	ctx := context.Background()
	_, err := f.app.StartGame(ctx, roomID)
	require.NoError(t, err)
	res, err := f.app.GetCurrentPrompt(ctx, roomID)
	require.NoError(t, err)
	return res.Prompt
}

func assertGameError(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	assert.EqualError(t, err, msg)
}

func TestApp_FullRound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join("r1", "A", "B")

	start, err := f.app.StartGame(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxRounds, start.MaxRounds)

	prompt, err := f.app.GetCurrentPrompt(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, prompt.Round)
	assert.NotEmpty(t, prompt.Prompt)

	resA, err := f.app.SubmitAnswer(ctx, "r1", "A", "I like long walks outside")
	require.NoError(t, err)
	assert.False(t, resA.PhaseEnded)
	assert.Equal(t, "AI response for A: "+reverse(prompt.Prompt), resA.SyntheticAnswer)

	resB, err := f.app.SubmitAnswer(ctx, "r1", "B", "Coffee and a good book please")
	require.NoError(t, err)
	assert.True(t, resB.PhaseEnded)
	assert.Equal(t, 1, f.pub.count(events.TypePhaseEnded))

	_, err = f.app.SubmitAnswer(ctx, "r1", "A", fiveWords)
	assertGameError(t, err, ErrPhaseClosed, msgPhaseEnded)

	answers, err := f.app.GetAnswers(ctx, "r1")
	require.NoError(t, err)
	ids := make([]string, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.ID)
	}
	assert.ElementsMatch(t, []string{"A_real", "A_ai", "B_real", "B_ai"}, ids)

	guess, err := f.app.SubmitGuess(ctx, "r1", "A", "B_ai", "AI")
	require.NoError(t, err)
	assert.True(t, guess.Correct)
	assert.Equal(t, map[string]int{"A": 1, "B": 0}, guess.Scores)

	guess, err = f.app.SubmitGuess(ctx, "r1", "B", "A_real", "ai")
	require.NoError(t, err)
	assert.False(t, guess.Correct)

	summary, err := f.app.FinalSummary(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []models.LeaderboardEntry{{PlayerID: "A", Score: 1}, {PlayerID: "B", Score: 0}}, summary.Leaderboard)
	assert.Equal(t, []string{"A"}, summary.Awards.TopDetective.Players)
	assert.Equal(t, 1, summary.Awards.TopDetective.MaxStreak)
	assert.Equal(t, []string{"B"}, summary.Awards.MostFooled.Players)
	assert.Equal(t, map[string]int{"B": 1}, summary.Awards.MostFooled.WrongGuesses)
}

func TestApp_SubmitAnswerWordBoundary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join("r1", "A", "B")
	f.startRound(t, "r1")

	_, err := f.app.SubmitAnswer(ctx, "r1", "A", "only four words here")
	assertGameError(t, err, ErrValidation, msgAnswerTooShort)
	assert.Empty(t, f.state("r1").realAnswers)

	_, err = f.app.SubmitAnswer(ctx, "r1", "A", "  exactly   five words\tright here ")
	require.NoError(t, err)
	assert.Len(t, f.state("r1").realAnswers, 1)
}

func TestApp_AnswerKeySetsStayEqual(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join("r1", "A", "B", "C")
	f.startRound(t, "r1")

	_, err := f.app.SubmitAnswer(ctx, "r1", "A", fiveWords)
	require.NoError(t, err)
	_, err = f.app.SubmitAnswer(ctx, "r1", "A", "a second answer from A")
	require.NoError(t, err)
	_, err = f.app.SubmitAnswer(ctx, "r1", "B", "too short")
	require.Error(t, err)

	g := f.state("r1")
	assert.Len(t, g.realAnswers, 1)
	assert.Equal(t, "a second answer from A", g.realAnswers["A"])
	for playerID := range g.realAnswers {
		assert.Contains(t, g.aiAnswers, playerID)
	}
	assert.Len(t, g.aiAnswers, len(g.realAnswers))
}

func TestApp_GeneratorFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	boom := errors.New("model unavailable")
	f.app.generator = synthetic.GeneratorFunc(func(context.Context, string, string) (string, error) {
		return "", boom
	})
	f.join("r1", "A")
	f.startRound(t, "r1")

	_, err := f.app.SubmitAnswer(ctx, "r1", "A", fiveWords)
	require.ErrorIs(t, err, boom)
	var gameErr *Error
	assert.False(t, errors.As(err, &gameErr))
	assert.Empty(t, f.state("r1").realAnswers)
	assert.Empty(t, f.state("r1").aiAnswers)
}

func TestApp_UnknownRoom(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.app.GetCurrentPrompt(ctx, "nope")
	assertGameError(t, err, ErrNotFound, msgInvalidRoom)
	_, err = f.app.SubmitAnswer(ctx, "nope", "A", fiveWords)
	assertGameError(t, err, ErrNotFound, msgInvalidRoom)
	_, err = f.app.GetAnswers(ctx, "nope")
	assertGameError(t, err, ErrNotFound, msgInvalidRoom)
	_, err = f.app.SubmitGuess(ctx, "nope", "A", "B_ai", "AI")
	assertGameError(t, err, ErrNotFound, msgInvalidRoom)
	_, err = f.app.AdvanceRound(ctx, "nope")
	assertGameError(t, err, ErrNotFound, msgInvalidRoom)
	_, err = f.app.FinalSummary(ctx, "nope")
	assertGameError(t, err, ErrNotFound, msgInvalidRoom)
	_, err = f.app.GetState(ctx, "nope")
	assertGameError(t, err, ErrNotFound, msgInvalidRoom)
}

func TestApp_MissingFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.app.StartGame(ctx, "")
	assertGameError(t, err, ErrValidation, msgRoomRequired)
	_, err = f.app.SubmitAnswer(ctx, "r1", "", fiveWords)
	assertGameError(t, err, ErrValidation, msgAnswerFieldsMissing)
	_, err = f.app.SubmitAnswer(ctx, "r1", "A", "   ")
	assertGameError(t, err, ErrValidation, msgAnswerFieldsMissing)
	_, err = f.app.SubmitGuess(ctx, "r1", "A", "", "AI")
	assertGameError(t, err, ErrValidation, msgGuessFieldsMissing)
}

func TestApp_SubmitAnswerWithoutPrompt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join("r1", "A", "B")
	_, err := f.app.StartGame(ctx, "r1")
	require.NoError(t, err)

	_, err = f.app.SubmitAnswer(ctx, "r1", "A", fiveWords)
	assertGameError(t, err, ErrNotFound, msgNoPrompt)
}

func TestApp_SubmitAnswerAfterExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join("r1", "A", "B")
	f.startRound(t, "r1")

	f.clock.Advance(DefaultAnswerPhaseDuration + time.Second)

	_, err := f.app.SubmitAnswer(ctx, "r1", "A", fiveWords)
	assert.ErrorIs(t, err, ErrPhaseClosed)

	require.Eventually(t, func() bool {
		_, ok := f.timers.Active("r1")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
	_, err = f.app.SubmitAnswer(ctx, "r1", "A", fiveWords)
	assertGameError(t, err, ErrPhaseClosed, msgPhaseEnded)
	assert.Empty(t, f.state("r1").realAnswers)
}

type stubTimers struct {
	now      time.Time
	snapshot phasetimer.Snapshot
	active   bool
	ended    int
}

func (s *stubTimers) Replace(roomID, phase string, d time.Duration) *phasetimer.Timer {
	s.snapshot = phasetimer.Snapshot{RoomID: roomID, Phase: phase, Deadline: s.now.Add(d)}
	s.active = true
	return nil
}

func (s *stubTimers) End(string) bool {
	s.ended++
	s.active = false
	return true
}

func (s *stubTimers) Active(string) (phasetimer.Snapshot, bool) { return s.snapshot, s.active }
func (s *stubTimers) Now() time.Time                            { return s.now }

func TestApp_SubmitAnswerDeadlineBoundary(t *testing.T) {
	ctx := context.Background()
	timers := &stubTimers{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	pres := presence.NewRegistry(nil)
	pres.Join(ctx, "r1", "A")
	pres.Join(ctx, "r1", "B")
	app := NewApp(DefaultConfig(), timers, pres, prompts.NewCatalog([]string{"p"}), synthetic.ReversePrompt{})

	_, err := app.StartGame(ctx, "r1")
	require.NoError(t, err)
	_, err = app.GetCurrentPrompt(ctx, "r1")
	require.NoError(t, err)

	timers.now = timers.snapshot.Deadline
	_, err = app.SubmitAnswer(ctx, "r1", "A", fiveWords)
	require.NoError(t, err, "an answer exactly at the deadline is accepted")

	timers.now = timers.snapshot.Deadline.Add(time.Millisecond)
	_, err = app.SubmitAnswer(ctx, "r1", "B", fiveWords)
	assertGameError(t, err, ErrPhaseClosed, msgTimeElapsed)

	timers.snapshot.Phase = "voting"
	_, err = app.SubmitAnswer(ctx, "r1", "B", fiveWords)
	assertGameError(t, err, ErrPhaseClosed, msgPhaseEnded)
	assert.Zero(t, timers.ended)
}

func TestApp_EmptyExpectedSetEndsOnFirstAnswer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.startRound(t, "r1")

	res, err := f.app.SubmitAnswer(ctx, "r1", "A", fiveWords)
	require.NoError(t, err)
	assert.True(t, res.PhaseEnded)
	assert.Equal(t, 1, f.pub.count(events.TypePhaseEnded))
}

func TestApp_RestartKeepsOneTimerAndResetsState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join("r1", "A", "B")
	f.startRound(t, "r1")
	_, err := f.app.SubmitAnswer(ctx, "r1", "A", fiveWords)
	require.NoError(t, err)
	_, err = f.app.SubmitGuess(ctx, "r1", "B", "A_ai", "AI")
	require.NoError(t, err)

	_, err = f.app.StartGame(ctx, "r1")
	require.NoError(t, err)

	assert.Equal(t, 1, f.timers.Count())
	assert.Equal(t, 1, f.pub.count(events.TypePhaseEnded), "the replaced timer ends once")

	g := f.state("r1")
	assert.Equal(t, 1, g.round)
	assert.Empty(t, g.currentPrompt)
	assert.Empty(t, g.realAnswers)
	assert.Empty(t, g.scores)
	assert.Empty(t, g.stats)
}

func TestApp_GuessRevisions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join("r1", "A", "B")
	f.startRound(t, "r1")
	_, err := f.app.SubmitAnswer(ctx, "r1", "B", fiveWords)
	require.NoError(t, err)

	for k := 0; k < 2; k++ {
		res, err := f.app.SubmitGuess(ctx, "r1", "A", "B_ai", "AI")
		require.NoError(t, err)
		assert.True(t, res.Correct)
	}
	g := f.state("r1")
	assert.Equal(t, 1, g.scores["A"])
	assert.Equal(t, models.PlayerStats{Correct: 1, Streak: 1, MaxStreak: 1}, *g.stats["A"])

	res, err := f.app.SubmitGuess(ctx, "r1", "A", "B_ai", "human")
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, 1, res.Scores["A"], "scores never decrease")
	assert.Equal(t, models.PlayerStats{Wrong: 1}, *g.stats["A"])

	res, err = f.app.SubmitGuess(ctx, "r1", "A", "B_ai", "ai")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, 1, res.Scores["A"], "one point per answer per round")
	assert.Equal(t, models.PlayerStats{Correct: 1, Streak: 1, MaxStreak: 1}, *g.stats["A"])
	assert.Equal(t, "ai", g.guesses["A"]["B_ai"].claim)
}

func TestApp_GuessFlipFlopCountsLatestClaimOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join("r1", "A", "B")
	f.startRound(t, "r1")
	_, err := f.app.SubmitAnswer(ctx, "r1", "B", fiveWords)
	require.NoError(t, err)

	for _, claim := range []string{"human", "AI", "human", "AI"} {
		_, err := f.app.SubmitGuess(ctx, "r1", "A", "B_ai", claim)
		require.NoError(t, err)
	}

	g := f.state("r1")
	assert.Equal(t, 1, g.scores["A"])
	assert.Equal(t, models.PlayerStats{Correct: 1, Streak: 1, MaxStreak: 1}, *g.stats["A"])

	summary, err := f.app.FinalSummary(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.TopDetectiveAward{Players: []string{"A"}, MaxStreak: 1}, summary.Awards.TopDetective)
	assert.Equal(t, map[string]int{"B": 0}, summary.Awards.MostFooled.WrongGuesses)
}

func TestApp_GuessRevisionRecomputesStreak(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join("r1", "A", "B", "C")
	f.startRound(t, "r1")
	_, err := f.app.SubmitAnswer(ctx, "r1", "B", fiveWords)
	require.NoError(t, err)
	_, err = f.app.SubmitAnswer(ctx, "r1", "C", fiveWords)
	require.NoError(t, err)

	_, err = f.app.SubmitGuess(ctx, "r1", "A", "B_ai", "AI")
	require.NoError(t, err)
	_, err = f.app.SubmitGuess(ctx, "r1", "A", "C_real", "human")
	require.NoError(t, err)
	g := f.state("r1")
	assert.Equal(t, models.PlayerStats{Correct: 2, Streak: 2, MaxStreak: 2}, *g.stats["A"])

	res, err := f.app.SubmitGuess(ctx, "r1", "A", "B_ai", "human")
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, 2, res.Scores["A"])
	assert.Equal(t, models.PlayerStats{Correct: 1, Wrong: 1, Streak: 1, MaxStreak: 1}, *g.stats["A"])
}

func TestApp_WrongGuessesCreateNoScoreRow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join("r1", "A", "B")
	f.startRound(t, "r1")

	res, err := f.app.SubmitGuess(ctx, "r1", "A", "B_ai", "human")
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Empty(t, res.Scores)

	g := f.state("r1")
	assert.Equal(t, models.PlayerStats{Wrong: 1}, *g.stats["A"])

	summary, err := f.app.FinalSummary(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, summary.Empty)

	res, err = f.app.SubmitGuess(ctx, "r1", "A", "B_ai", "AI")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 1}, res.Scores)
}

func TestApp_GetAnswersReshufflesEachCall(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join("r1", "A", "B", "C", "D")
	f.startRound(t, "r1")
	for _, p := range []string{"A", "B", "C"} {
		_, err := f.app.SubmitAnswer(ctx, "r1", p, fiveWords)
		require.NoError(t, err)
	}

	orders := make(map[string]struct{})
	for k := 0; k < 50; k++ {
		answers, err := f.app.GetAnswers(ctx, "r1")
		require.NoError(t, err)
		require.Len(t, answers, 6)
		ids := make([]string, 0, len(answers))
		for _, a := range answers {
			ids = append(ids, a.ID)
		}
		orders[strings.Join(ids, ",")] = struct{}{}
	}
	assert.Greater(t, len(orders), 1, "answer order should change between calls")
	assert.Equal(t, []string{"A", "B", "C"}, f.state("r1").answerOrder)
}

func TestApp_SelfGuessIsAllowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join("r1", "A", "B")
	f.startRound(t, "r1")
	_, err := f.app.SubmitAnswer(ctx, "r1", "A", fiveWords)
	require.NoError(t, err)

	res, err := f.app.SubmitGuess(ctx, "r1", "A", "A_real", "Human")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, 1, res.Scores["A"])
}

func TestApp_AdvanceRound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join("r1", "A", "B")
	f.startRound(t, "r1")
	_, err := f.app.SubmitAnswer(ctx, "r1", "A", fiveWords)
	require.NoError(t, err)
	_, err = f.app.SubmitGuess(ctx, "r1", "B", "A_ai", "AI")
	require.NoError(t, err)

	res, err := f.app.AdvanceRound(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Round)
	assert.False(t, res.MaxReached)

	g := f.state("r1")
	assert.Empty(t, g.currentPrompt)
	assert.Empty(t, g.realAnswers)
	assert.Empty(t, g.aiAnswers)
	assert.Empty(t, g.guesses)
	assert.Equal(t, map[string]int{"A": 0, "B": 1}, g.scores)
	assert.Equal(t, 1, f.timers.Count())
	snap, ok := f.timers.Active("r1")
	require.True(t, ok)
	assert.Equal(t, PhaseAnswerSubmission, snap.Phase)

	prompt, err := f.app.GetCurrentPrompt(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 2, prompt.Round)

	for round := 3; round <= DefaultMaxRounds; round++ {
		res, err = f.app.AdvanceRound(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, round, res.Round)
	}

	res, err = f.app.AdvanceRound(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, res.MaxReached)
	assert.Equal(t, DefaultMaxRounds, g.round)
	assert.Equal(t, map[string]int{"A": 0, "B": 1}, res.Scores)
}

func TestApp_GameOverPrompt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.startRound(t, "r1")
	f.state("r1").round = DefaultMaxRounds + 1

	res, err := f.app.GetCurrentPrompt(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, res.GameOver)
	assert.NotNil(t, res.Scores)
}

func TestApp_PromptsDoNotRepeatUntilPoolExhausted(t *testing.T) {
	ctx := context.Background()
	catalog := []string{"p1", "p2", "p3"}
	f := newFixture(t, catalog...)

	seen := make(map[string]bool)
	seen[f.startRound(t, "r1")] = true
	for k := 0; k < 2; k++ {
		_, err := f.app.AdvanceRound(ctx, "r1")
		require.NoError(t, err)
		res, err := f.app.GetCurrentPrompt(ctx, "r1")
		require.NoError(t, err)
		seen[res.Prompt] = true
	}
	assert.Len(t, seen, 3)

	_, err := f.app.AdvanceRound(ctx, "r1")
	require.NoError(t, err)
	res, err := f.app.GetCurrentPrompt(ctx, "r1")
	require.NoError(t, err)
	assert.Contains(t, catalog, res.Prompt, "exhausted pool refills from the catalog")
}

func TestApp_ConcurrentPromptFetchSeesOnePrompt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.app.StartGame(ctx, "r1")
	require.NoError(t, err)

	const n = 20
	got := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.app.GetCurrentPrompt(ctx, "r1")
			if assert.NoError(t, err) {
				got[i] = res.Prompt
			}
		}()
	}
	wg.Wait()

	for _, p := range got {
		assert.Equal(t, got[0], p)
	}
	assert.Len(t, f.state("r1").promptPool, 2)
}

func TestApp_GetState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.join("r1", "A", "B")
	prompt := f.startRound(t, "r1")
	_, err := f.app.SubmitAnswer(ctx, "r1", "A", fiveWords)
	require.NoError(t, err)

	f.clock.Advance(10 * time.Second)
	state, err := f.app.GetState(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", state.RoomID)
	assert.Equal(t, 1, state.Round)
	assert.Equal(t, prompt, state.Prompt)
	assert.Equal(t, PhaseAnswerSubmission, state.Phase)
	require.NotNil(t, state.TimeRemaining)
	assert.Equal(t, 20, *state.TimeRemaining)
	assert.Equal(t, []string{"A"}, state.Answered)
	assert.Equal(t, []string{"A", "B"}, state.ExpectedPlayers)
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

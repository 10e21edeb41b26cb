package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/botornot/go/internal/models"
)

// Service exposes the game App over HTTP with JSON bodies
type Service struct {
	app *App
}

// NewService creates a new game service
func NewService(app *App) *Service {
	return &Service{app: app}
}

type messageResponse struct {
	Message string `json:"message"`
}

type startResponse struct {
	Message   string `json:"message"`
	MaxRounds int    `json:"max_rounds"`
}

type promptResponse struct {
	Round     int    `json:"round"`
	Prompt    string `json:"prompt"`
	MaxRounds int    `json:"max_rounds"`
}

type scoresResponse struct {
	Message string         `json:"message"`
	Scores  map[string]int `json:"scores"`
}

type submitAnswerResponse struct {
	Message    string `json:"message"`
	AIResponse string `json:"ai_response"`
}

type answersResponse struct {
	Answers []models.Answer `json:"answers"`
}

type guessResponse struct {
	Message string         `json:"message"`
	Correct bool           `json:"correct"`
	Scores  map[string]int `json:"scores"`
}

type summaryResponse struct {
	Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
	Awards      models.Awards             `json:"awards"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// RegisterRoutes registers the game routes on mux
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/game/start", s.HandleStartGame)
	mux.HandleFunc("/game/next_round", s.HandleNextRound)
	mux.HandleFunc("/game/submit_answer", s.HandleSubmitAnswer)
	mux.HandleFunc("/game/get_answers", s.HandleGetAnswers)
	mux.HandleFunc("/game/submit_guess", s.HandleSubmitGuess)
	mux.HandleFunc("/game/advance_round", s.HandleAdvanceRound)
	mux.HandleFunc("/game/final_summary", s.HandleFinalSummary)
	mux.HandleFunc("/game/state", s.HandleGetState)
}

// HandleStartGame handles POST /game/start
func (s *Service) HandleStartGame(w http.ResponseWriter, r *http.Request) {
	var req StartGameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.app.StartGame(r.Context(), req.RoomID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, startResponse{
		Message:   fmt.Sprintf("Game commenced in %s", res.RoomID),
		MaxRounds: res.MaxRounds,
	})
}

// HandleNextRound handles GET /game/next_round?room_id=
func (s *Service) HandleNextRound(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	res, err := s.app.GetCurrentPrompt(r.Context(), r.URL.Query().Get("room_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if res.GameOver {
		writeJSON(w, http.StatusOK, scoresResponse{Message: "Game Over", Scores: res.Scores})
		return
	}
	writeJSON(w, http.StatusOK, promptResponse{Round: res.Round, Prompt: res.Prompt, MaxRounds: res.MaxRounds})
}

// HandleSubmitAnswer handles POST /game/submit_answer
func (s *Service) HandleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req SubmitAnswerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.app.SubmitAnswer(r.Context(), req.RoomID, req.UserID, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitAnswerResponse{
		Message:    fmt.Sprintf("Response saved for %s", res.PlayerID),
		AIResponse: res.SyntheticAnswer,
	})
}

// HandleGetAnswers handles GET /game/get_answers?room_id=
func (s *Service) HandleGetAnswers(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	answers, err := s.app.GetAnswers(r.Context(), r.URL.Query().Get("room_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answersResponse{Answers: answers})
}

// HandleSubmitGuess handles POST /game/submit_guess
func (s *Service) HandleSubmitGuess(w http.ResponseWriter, r *http.Request) {
	var req SubmitGuessRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.app.SubmitGuess(r.Context(), req.RoomID, req.GuessingUser, req.GuessedID, req.GuessType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, guessResponse{Message: "Guess recorded", Correct: res.Correct, Scores: res.Scores})
}

// HandleAdvanceRound handles POST /game/advance_round
func (s *Service) HandleAdvanceRound(w http.ResponseWriter, r *http.Request) {
	var req AdvanceRoundRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.app.AdvanceRound(r.Context(), req.RoomID)
	if err != nil {
		writeError(w, err)
		return
	}
	if res.MaxReached {
		writeJSON(w, http.StatusOK, scoresResponse{Message: "Maximum rounds reached", Scores: res.Scores})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("Advanced to round %d", res.Round)})
}

// HandleFinalSummary handles GET /game/final_summary?room_id=
func (s *Service) HandleFinalSummary(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	res, err := s.app.FinalSummary(r.Context(), r.URL.Query().Get("room_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Empty {
		writeJSON(w, http.StatusOK, messageResponse{Message: "No scores yet"})
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Leaderboard: res.Leaderboard, Awards: res.Awards})
}

// HandleGetState handles GET /game/state?room_id=
func (s *Service) HandleGetState(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	state, err := s.app.GetState(r.Context(), r.URL.Query().Get("room_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !allowMethod(w, r, http.MethodPost) {
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	var gameErr *Error
	if errors.As(err, &gameErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: gameErr.Message})
		return
	}
	log.Error().Err(err).Msg("game request failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

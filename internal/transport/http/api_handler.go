package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"live-leaderboard-service/internal/app"
	"live-leaderboard-service/internal/domain"
)

// APIHandler exposes the service over plain JSON endpoints for non-streaming
// clients. It is a thin shim: decode, call the service, map errors.
type APIHandler struct {
	service *app.LeaderboardService
}

func NewAPIHandler(service *app.LeaderboardService) *APIHandler {
	return &APIHandler{service: service}
}

// Register wires all JSON routes into the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/answers", h.submitAnswer)
	mux.HandleFunc("/api/answers/bulk", h.submitBulkAnswers)
	mux.HandleFunc("/api/challenges", h.challenges)
	mux.HandleFunc("/api/leaderboard", h.leaderboard)
	mux.HandleFunc("/api/leaderboard/stats", h.leaderboardStats)
	mux.HandleFunc("/api/questions", h.questions)
	mux.HandleFunc("/api/games/stats", h.gameStats)
	mux.HandleFunc("/api/session", h.sessionProgress)
}

type submitAnswerRequest struct {
	UserID      string  `json:"user_id"`
	QuestionID  int64   `json:"question_id"`
	Answer      string  `json:"answer"`
	TimeTaken   float64 `json:"time_taken"`
	ChallengeID *int64  `json:"challenge_id"`
}

func (h *APIHandler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.QuestionID == 0 {
		writeError(w, http.StatusBadRequest, "user_id and question_id are required")
		return
	}
	if req.TimeTaken < 0 {
		writeError(w, http.StatusBadRequest, "time_taken must be non-negative")
		return
	}

	correct, err := h.service.RecordAnswer(r.Context(), req.UserID, req.QuestionID, req.Answer, req.ChallengeID, req.TimeTaken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "is_correct": correct})
}

type bulkAnswersRequest struct {
	UserCode  string           `json:"user_code"`
	GameType  string           `json:"game_type"`
	Answers   []app.BulkAnswer `json:"answers"`
	TotalTime float64          `json:"total_time_seconds"`
}

func (h *APIHandler) submitBulkAnswers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req bulkAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.RecordBulkAnswers(r.Context(), req.UserCode, domain.GameType(req.GameType), req.Answers, req.TotalTime)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "success",
		"answers_saved":    result.Saved,
		"session_id":       result.Session.ID,
		"score_percentage": result.Session.ScorePercentage(),
	})
}

type startChallengeRequest struct {
	Name string `json:"name"`
}

func (h *APIHandler) challenges(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		challenges, err := h.service.ListChallenges(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"challenges": challenges})
	case http.MethodPost:
		var req startChallengeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		challenge, err := h.service.StartChallenge(r.Context(), req.Name)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, challenge)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *APIHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var challengeID *int64
	if raw := r.URL.Query().Get("challengeId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid challengeId")
			return
		}
		challengeID = &id
	}
	board, err := h.service.Leaderboard(r.Context(), challengeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

type leaderboardStatsRequest struct {
	UserIDs []int64 `json:"user_ids"`
}

func (h *APIHandler) leaderboardStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req leaderboardStatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	stats, err := h.service.ParticipantStats(r.Context(), req.UserIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": stats})
}

func (h *APIHandler) questions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	questions, err := h.service.RandomQuestions(r.Context(), 10)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func (h *APIHandler) gameStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	code := r.URL.Query().Get("user_code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "user_code is required")
		return
	}
	var gameType *domain.GameType
	if raw := r.URL.Query().Get("game_type"); raw != "" {
		t := domain.GameType(raw)
		gameType = &t
	}
	stats, err := h.service.PlayerGameStats(r.Context(), code, gameType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type sessionProgressRequest struct {
	UniqueCode string `json:"unique_code"`
}

func (h *APIHandler) sessionProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req sessionProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UniqueCode == "" {
		writeError(w, http.StatusBadRequest, "unique_code is required")
		return
	}
	progress, err := h.service.GameSessionSnapshot(r.Context(), req.UniqueCode)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrParticipantNotFound),
		errors.Is(err, domain.ErrChallengeNotFound),
		errors.Is(err, domain.ErrQuestionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNoActiveChallenge),
		errors.Is(err, domain.ErrInvalidGameType),
		errors.Is(err, domain.ErrEmptyAnswerList):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("api error: %v", err)
		writeError(w, http.StatusServiceUnavailable, "temporarily unavailable")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

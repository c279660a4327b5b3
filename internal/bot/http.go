package bot

import (
	"encoding/json"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// HTTPServer exposes the webhook endpoint plus a small read-only API
// used for dashboards and uptime checks.
type HTTPServer struct {
	bot *Bot
}

// NewHTTPServer creates the HTTP layer around a bot.
func NewHTTPServer(bot *Bot) *HTTPServer {
	return &HTTPServer{bot: bot}
}

// RegisterRoutes registers all HTTP routes on the provided mux.
func (hs *HTTPServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", hs.handleRoot)
	mux.HandleFunc("/health", hs.handleHealth)
	mux.HandleFunc("/telegram-webhook", hs.handleWebhook)
	mux.HandleFunc("/api/leaderboard", hs.handleLeaderboardAPI)
}

func (hs *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("prompt trainer bot is running"))
}

func (hs *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleWebhook decodes one Telegram update and hands it to the bot.
// Telegram retries on non-200, so decoding failures still return 200 to
// avoid redelivery loops of a permanently bad payload.
func (hs *HTTPServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		hs.bot.logger.Warn("Failed to decode webhook update", zap.Error(err))
		w.WriteHeader(http.StatusOK)
		return
	}

	hs.bot.HandleUpdate(update)
	w.WriteHeader(http.StatusOK)
}

// handleLeaderboardAPI returns the current leaderboard as JSON.
func (hs *HTTPServer) handleLeaderboardAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries, err := hs.bot.db.Leaderboard(r.Context(), leaderboardSize)
	if err != nil {
		hs.bot.logger.Error("Failed to load leaderboard", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	type row struct {
		Name       string  `json:"name"`
		TotalScore float64 `json:"total_score"`
	}
	rows := make([]row, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, row{Name: entry.DisplayName(), TotalScore: entry.TotalScore})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

package bot

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"bookswap/internal/models"
	"bookswap/internal/storage"
)

const maxPerPage = 100

// HTTPServer exposes the stateless read API over the book store
type HTTPServer struct {
	bot *Bot
}

// NewHTTPServer creates the read API server
func NewHTTPServer(bot *Bot) *HTTPServer {
	return &HTTPServer{bot: bot}
}

// RegisterRoutes registers the read API routes on the provided mux
func (hs *HTTPServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", hs.handleHealthz)
	mux.HandleFunc("/books", hs.handleBooks)
}

// handleHealthz is a simple liveness probe
func (hs *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// bookJSON is the API projection of a listing
type bookJSON struct {
	ID          uint        `json:"id"`
	Title       string      `json:"title"`
	Author      string      `json:"author,omitempty"`
	Price       string      `json:"price"`
	Condition   string      `json:"condition"`
	Description string      `json:"description,omitempty"`
	IsSold      bool        `json:"is_sold"`
	CreatedAt   string      `json:"created_at"`
	Seller      *sellerJSON `json:"seller,omitempty"`
}

type sellerJSON struct {
	ID         uint   `json:"id"`
	TelegramID int64  `json:"telegram_id"`
	Display    string `json:"display"`
}

// booksResponse is the paginated /books payload
type booksResponse struct {
	Items   []bookJSON `json:"items"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
	Total   int64      `json:"total"`
}

// handleBooks returns a filtered, paginated list of available listings.
// An empty result is a 200 with an empty items array, not an error.
func (hs *HTTPServer) handleBooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	params := r.URL.Query()

	page := 1
	if raw := params.Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	perPage := hs.bot.pageSize
	if raw := params.Get("per_page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			perPage = parsed
		}
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	filter := storage.BookFilter{
		Title:  params.Get("title"),
		Author: params.Get("author"),
	}
	if raw := params.Get("condition"); raw != "" {
		condition, ok := models.ParseCondition(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid condition parameter")
			return
		}
		filter.Condition = condition
	}

	result, err := hs.bot.db.ListAvailableBooks(r.Context(), page, perPage, filter)
	if err != nil {
		hs.bot.logger.Error("Failed to list books", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch books")
		return
	}

	items := make([]bookJSON, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toBookJSON(&result.Items[i]))
	}

	writeJSON(w, http.StatusOK, booksResponse{
		Items:   items,
		Page:    result.Page,
		PerPage: result.PerPage,
		Total:   result.Total,
	})
}

func toBookJSON(book *models.Book) bookJSON {
	out := bookJSON{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		Price:       book.Price.StringFixed(2),
		Condition:   string(book.Condition),
		Description: book.Description,
		IsSold:      book.IsSold,
		CreatedAt:   book.CreatedAt.UTC().Format(time.RFC3339),
	}
	if book.Owner != nil {
		out.Seller = &sellerJSON{
			ID:         book.Owner.ID,
			TelegramID: book.Owner.TelegramID,
			Display:    book.Owner.ContactDisplay(),
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

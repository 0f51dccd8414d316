// Package api exposes the HTTP surface of the exercise log service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"example.com/exerciselog/internal/domain"
)

// dateLayout renders dates at day precision, matching the format the
// original API exposed (e.g. "Mon Jan 01 2024").
const dateLayout = "Mon Jan 02 2006"

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux. The root pattern doubles as the
// catch-all: anything that is not the home page answers 404 in plain text.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/users", h.users)
	mux.HandleFunc("/api/users/", h.userSubresource)
	mux.HandleFunc("/healthz", healthz)
	mux.HandleFunc("/", h.home)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) users(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createUser(w, r)
	case http.MethodGet:
		h.listUsers(w, r)
	default:
		notFound(w)
	}
}

// userSubresource dispatches /api/users/:id/exercises and /api/users/:id/logs.
func (h *Handler) userSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		notFound(w)
		return
	}

	userID := parts[0]
	switch {
	case parts[1] == "exercises" && r.Method == http.MethodPost:
		h.createExercise(w, r, userID)
	case parts[1] == "logs" && r.Method == http.MethodGet:
		h.getLogs(w, r, userID)
	default:
		notFound(w)
	}
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	values, err := bodyValues(r)
	if err != nil {
		http.Error(w, "unable to parse body", http.StatusBadRequest)
		return
	}

	user, err := h.service.RegisterUser(r.Context(), values["username"])
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userView{Username: user.Username, ID: user.ID})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	views := make([]userView, 0, len(users))
	for _, user := range users {
		views = append(views, userView{Username: user.Username, ID: user.ID})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) createExercise(w http.ResponseWriter, r *http.Request, userID string) {
	values, err := bodyValues(r)
	if err != nil {
		http.Error(w, "unable to parse body", http.StatusBadRequest)
		return
	}

	duration, err := parseDuration(values["duration"])
	if err != nil {
		respondError(w, err)
		return
	}

	var date *time.Time
	if raw := strings.TrimSpace(values["date"]); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			respondError(w, err)
			return
		}
		date = &parsed
	}

	exercise, err := h.service.RecordExercise(r.Context(), domain.RecordExerciseInput{
		UserID:      userID,
		Description: values["description"],
		Duration:    duration,
		Date:        date,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	// The identifier echoed back is the owning user's, not the entry's;
	// clients chain it into subsequent requests.
	writeJSON(w, http.StatusOK, exerciseView{
		Username:    exercise.Username,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        exercise.Date.Format(dateLayout),
		ID:          exercise.UserID,
	})
}

func (h *Handler) getLogs(w http.ResponseWriter, r *http.Request, userID string) {
	filter, err := logFilterFromQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}

	log, err := h.service.BuildLog(r.Context(), userID, filter)
	if err != nil {
		respondError(w, err)
		return
	}

	entries := make([]logEntryView, 0, len(log.Entries))
	for _, entry := range log.Entries {
		entries = append(entries, logEntryView{
			Description: entry.Description,
			Duration:    entry.Duration,
			Date:        entry.Date.Format(dateLayout),
		})
	}

	writeJSON(w, http.StatusOK, logView{
		Username: log.Username,
		Count:    log.Count,
		ID:       log.UserID,
		Log:      entries,
	})
}

// logFilterFromQuery reads the optional from/to/limit query parameters.
// Unparseable dates fail the request; a limit that is not a positive
// number is ignored.
func logFilterFromQuery(r *http.Request) (domain.LogFilter, error) {
	var filter domain.LogFilter

	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			filter.Limit = &parsed
		}
	}
	return filter, nil
}

// bodyValues normalizes form-encoded and JSON request bodies into a flat
// string map, mirroring how the API historically coerced every body field
// from text.
func bodyValues(r *http.Request) (map[string]string, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var raw map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, err
		}
		values := make(map[string]string, len(raw))
		for key, value := range raw {
			switch v := value.(type) {
			case string:
				values[key] = v
			case float64:
				values[key] = strconv.FormatFloat(v, 'f', -1, 64)
			case bool:
				values[key] = strconv.FormatBool(v)
			case nil:
			default:
				encoded, err := json.Marshal(v)
				if err != nil {
					return nil, err
				}
				values[key] = string(encoded)
			}
		}
		return values, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(r.PostForm))
	for key, vals := range r.PostForm {
		if len(vals) > 0 {
			values[key] = vals[0]
		}
	}
	return values, nil
}

func parseDuration(raw string) (int, error) {
	duration, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || duration < 1 {
		return 0, domain.ErrInvalidDuration
	}
	return duration, nil
}

// parseDate accepts calendar dates (2006-01-02) and full RFC 3339 timestamps.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return parsed.UTC(), nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC(), nil
	}
	return time.Time{}, domain.ErrInvalidDate
}

// userView is the public shape of a user.
type userView struct {
	Username string `json:"username"`
	ID       string `json:"_id"`
}

// exerciseView is the response body for a newly recorded exercise.
type exerciseView struct {
	Username    string `json:"username"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
	ID          string `json:"_id"`
}

// logEntryView is one rendered entry of an exercise log.
type logEntryView struct {
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

// logView wraps a user's filtered exercise log.
type logView struct {
	Username string         `json:"username"`
	Count    int            `json:"count"`
	ID       string         `json:"_id"`
	Log      []logEntryView `json:"log"`
}

// respondError translates domain errors into plain-text responses. Success
// bodies are JSON but errors are deliberately text; existing clients depend
// on the asymmetry.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDuplicateUsername):
		http.Error(w, "Username already taken", http.StatusBadRequest)
	case errors.Is(err, domain.ErrUnknownUser):
		http.Error(w, "Unknown userId", http.StatusBadRequest)
	case errors.Is(err, domain.ErrMissingUsername),
		errors.Is(err, domain.ErrMissingDescription),
		errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrInvalidDate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logrus.WithError(err).Error("request failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func notFound(w http.ResponseWriter) {
	http.Error(w, "not found", http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

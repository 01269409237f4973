package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/clipgames-backend/internal/apperror"
	"github.com/rocketscienceinc/clipgames-backend/internal/entity"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
	Symbol  string `json:"symbol,omitempty"`
	Removed *int   `json:"removed,omitempty"`
}

type createResponse struct {
	GameID string `json:"gameId"`
}

type createRequest struct {
	Room     string `json:"room"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type joinRequest struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type moveRequest struct {
	UserID string `json:"userId"`
	Index  *int   `json:"index"`
	Choice string `json:"choice"`
}

type nextRoundRequest struct {
	UserID string `json:"userId"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSession(w http.ResponseWriter, session entity.Session) {
	writeJSON(w, http.StatusOK, session)
}

// writeError maps a directory error to its status code. Unexpected errors
// are logged and never shown to the client.
func writeError(log *slog.Logger, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrFull):
		status = http.StatusConflict
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrInvalidChoice),
		errors.Is(err, apperror.ErrUnknownKind),
		errors.Is(err, apperror.ErrBadRequest):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Error("request failed", "error", err)
		writeJSON(w, status, errorResponse{Error: "Internal Server Error"})
		return
	}

	writeJSON(w, status, errorResponse{Error: rootMessage(err)})
}

// rootMessage returns the sentinel's text for known errors.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		apperror.ErrNotFound,
		apperror.ErrFull,
		apperror.ErrForbidden,
		apperror.ErrInvalidCell,
		apperror.ErrInvalidChoice,
		apperror.ErrUnknownKind,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrBadRequest, err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}

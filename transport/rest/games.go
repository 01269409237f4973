package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/rocketscienceinc/clipgames-backend/internal/apperror"
	"github.com/rocketscienceinc/clipgames-backend/internal/entity"
	"github.com/rocketscienceinc/clipgames-backend/internal/rps"
)

const qrSize = 320

type sessionDirectory interface {
	Create(ctx context.Context, room, userID, userName string, kind entity.Kind) (string, error)
	Join(ctx context.Context, id, userID, userName string) (entity.Session, error)
	Get(ctx context.Context, id, viewerID string) (entity.Session, error)
	List(ctx context.Context, room string, kind entity.Kind) ([]entity.Summary, error)
	Move(ctx context.Context, id, userID string, move entity.Move) (entity.Session, error)
	NextRound(ctx context.Context, id, viewerID string) (entity.Session, error)
	Leave(ctx context.Context, id, userID string) error
	ClearRoom(ctx context.Context, room string) (int, error)
}

type GameHandler struct {
	logger    *slog.Logger
	directory sessionDirectory
	publicURL string
}

func NewGameHandler(logger *slog.Logger, directory sessionDirectory, publicURL string) *GameHandler {
	return &GameHandler{
		logger:    logger.With("component", "game_handler"),
		directory: directory,
		publicURL: publicURL,
	}
}

func (that *GameHandler) List(kind entity.Kind) httprouter.Handle {
	log := that.logger.With("method", "List", "kind", kind)

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		room := r.URL.Query().Get("room")
		if room == "" {
			writeError(log, w, fmt.Errorf("%w: room is required", apperror.ErrBadRequest))
			return
		}

		summaries, err := that.directory.List(r.Context(), room, kind)
		if err != nil {
			writeError(log, w, err)
			return
		}

		writeJSON(w, http.StatusOK, summaries)
	}
}

func (that *GameHandler) Create(kind entity.Kind) httprouter.Handle {
	log := that.logger.With("method", "Create", "kind", kind)

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req createRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(log, w, err)
			return
		}

		if req.Room == "" || req.UserID == "" {
			writeError(log, w, fmt.Errorf("%w: room and userId are required", apperror.ErrBadRequest))
			return
		}

		id, err := that.directory.Create(r.Context(), req.Room, req.UserID, req.UserName, kind)
		if err != nil {
			writeError(log, w, err)
			return
		}

		writeJSON(w, http.StatusOK, createResponse{GameID: id})
	}
}

func (that *GameHandler) Get(kind entity.Kind) httprouter.Handle {
	log := that.logger.With("method", "Get", "kind", kind)

	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		session, err := that.directory.Get(r.Context(), ps.ByName("id"), r.URL.Query().Get("userId"))
		if err == nil && session.GetKind() != kind {
			err = apperror.ErrNotFound
		}

		if err != nil {
			writeError(log, w, err)
			return
		}

		writeSession(w, session)
	}
}

func (that *GameHandler) Join(kind entity.Kind) httprouter.Handle {
	log := that.logger.With("method", "Join", "kind", kind)

	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		var req joinRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(log, w, err)
			return
		}

		if req.UserID == "" {
			writeError(log, w, fmt.Errorf("%w: userId is required", apperror.ErrBadRequest))
			return
		}

		id := ps.ByName("id")
		if err := that.checkKind(r.Context(), id, kind); err != nil {
			writeError(log, w, err)
			return
		}

		session, err := that.directory.Join(r.Context(), id, req.UserID, req.UserName)
		if err != nil {
			writeError(log, w, err)
			return
		}

		resp := messageResponse{Message: "joined"}
		if game, ok := session.(*entity.TicTacToe); ok {
			resp.Symbol = game.SymbolOf(req.UserID)
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func (that *GameHandler) Move(kind entity.Kind) httprouter.Handle {
	log := that.logger.With("method", "Move", "kind", kind)

	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		var req moveRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(log, w, err)
			return
		}

		move, err := parseMove(kind, req)
		if err != nil {
			writeError(log, w, err)
			return
		}

		id := ps.ByName("id")
		if err = that.checkKind(r.Context(), id, kind); err != nil {
			writeError(log, w, err)
			return
		}

		session, err := that.directory.Move(r.Context(), id, req.UserID, move)
		if err != nil {
			writeError(log, w, err)
			return
		}

		writeSession(w, session)
	}
}

func (that *GameHandler) NextRound() httprouter.Handle {
	log := that.logger.With("method", "NextRound")

	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// the body is optional
		var req nextRoundRequest
		if r.ContentLength != 0 {
			if err := decodeBody(r, &req); err != nil {
				writeError(log, w, err)
				return
			}
		}

		id := ps.ByName("id")
		if err := that.checkKind(r.Context(), id, entity.KindRPS); err != nil {
			writeError(log, w, err)
			return
		}

		session, err := that.directory.NextRound(r.Context(), id, req.UserID)
		if err != nil {
			writeError(log, w, err)
			return
		}

		writeSession(w, session)
	}
}

func (that *GameHandler) Leave(kind entity.Kind) httprouter.Handle {
	log := that.logger.With("method", "Leave", "kind", kind)

	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id := ps.ByName("id")

		err := that.checkKind(r.Context(), id, kind)
		if err == nil {
			err = that.directory.Leave(r.Context(), id, r.URL.Query().Get("userId"))
		}

		// leaving a session that is already gone is acknowledged too
		if err != nil && !isNotFound(err) {
			writeError(log, w, err)
			return
		}

		writeJSON(w, http.StatusOK, messageResponse{Message: "session destroyed"})
	}
}

// QR serves a PNG invite code pointing at the session in the web client.
func (that *GameHandler) QR(kind entity.Kind) httprouter.Handle {
	log := that.logger.With("method", "QR", "kind", kind)

	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id := ps.ByName("id")

		session, err := that.directory.Get(r.Context(), id, "")
		if err == nil && session.GetKind() != kind {
			err = apperror.ErrNotFound
		}

		if err != nil {
			writeError(log, w, err)
			return
		}

		png, err := qrcode.Encode(that.inviteURL(r, session), qrcode.Medium, qrSize)
		if err != nil {
			writeError(log, w, fmt.Errorf("failed to generate qr code: %w", err))
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

func (that *GameHandler) ClearRoom() httprouter.Handle {
	log := that.logger.With("method", "ClearRoom")

	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		removed, err := that.directory.ClearRoom(r.Context(), ps.ByName("room"))
		if err != nil {
			writeError(log, w, err)
			return
		}

		writeJSON(w, http.StatusOK, messageResponse{Message: "room cleared", Removed: &removed})
	}
}

// checkKind keeps a session reachable only under the route of its own kind.
func (that *GameHandler) checkKind(ctx context.Context, id string, kind entity.Kind) error {
	session, err := that.directory.Get(ctx, id, "")
	if err != nil {
		return err
	}

	if session.GetKind() != kind {
		return apperror.ErrNotFound
	}

	return nil
}

func (that *GameHandler) inviteURL(r *http.Request, session entity.Session) string {
	base := that.publicURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}

	query := url.Values{}
	query.Set("room", session.GetRoom())
	query.Set("game", session.GetID())
	query.Set("kind", string(session.GetKind()))

	return base + "/?" + query.Encode()
}

func parseMove(kind entity.Kind, req moveRequest) (entity.Move, error) {
	if req.UserID == "" {
		return entity.Move{}, fmt.Errorf("%w: userId is required", apperror.ErrBadRequest)
	}

	switch kind {
	case entity.KindTicTacToe:
		if req.Index == nil {
			return entity.Move{}, fmt.Errorf("%w: index is required", apperror.ErrInvalidCell)
		}
		return entity.Move{Cell: *req.Index}, nil
	case entity.KindRPS:
		choice, err := rps.ParseChoice(req.Choice)
		if err != nil {
			return entity.Move{}, err
		}
		return entity.Move{Choice: choice}, nil
	default:
		return entity.Move{}, fmt.Errorf("%w: %q", apperror.ErrUnknownKind, kind)
	}
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rocketscienceinc/clipgames-backend/internal/apperror"
	"github.com/rocketscienceinc/clipgames-backend/internal/entity"
	"github.com/rocketscienceinc/clipgames-backend/internal/rps"
)

const defaultTimeout = 10 * time.Second

var segments = map[entity.Kind]string{
	entity.KindTicTacToe: "games",
	entity.KindRPS:       "rps",
}

// Client talks to the game routes of a clipgames server.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (that *Client) Create(ctx context.Context, kind entity.Kind, room, userID, userName string) (string, error) {
	body := map[string]string{"room": room, "userId": userID, "userName": userName}

	var resp struct {
		GameID string `json:"gameId"`
	}
	if err := that.do(ctx, http.MethodPost, that.kindPath(kind), body, &resp); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return resp.GameID, nil
}

// Join - joins the session and returns the assigned tic-tac-toe symbol, if any.
func (that *Client) Join(ctx context.Context, kind entity.Kind, id, userID, userName string) (string, error) {
	body := map[string]string{"userId": userID, "userName": userName}

	var resp struct {
		Symbol string `json:"symbol"`
	}
	if err := that.do(ctx, http.MethodPost, that.sessionPath(kind, id)+"/join", body, &resp); err != nil {
		return "", fmt.Errorf("failed to join session: %w", err)
	}

	return resp.Symbol, nil
}

func (that *Client) List(ctx context.Context, kind entity.Kind, room string) ([]entity.Summary, error) {
	var summaries []entity.Summary
	if err := that.do(ctx, http.MethodGet, that.kindPath(kind)+"?room="+url.QueryEscape(room), nil, &summaries); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return summaries, nil
}

func (that *Client) GetTicTacToe(ctx context.Context, id, viewerID string) (*entity.TicTacToe, error) {
	var game entity.TicTacToe
	if err := that.do(ctx, http.MethodGet, that.sessionPath(entity.KindTicTacToe, id)+"?userId="+url.QueryEscape(viewerID), nil, &game); err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &game, nil
}

func (that *Client) GetRPS(ctx context.Context, id, viewerID string) (*entity.RPS, error) {
	var game entity.RPS
	if err := that.do(ctx, http.MethodGet, that.sessionPath(entity.KindRPS, id)+"?userId="+url.QueryEscape(viewerID), nil, &game); err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &game, nil
}

func (that *Client) PlayCell(ctx context.Context, id, userID string, cell int) (*entity.TicTacToe, error) {
	body := map[string]any{"userId": userID, "index": cell}

	var game entity.TicTacToe
	if err := that.do(ctx, http.MethodPost, that.sessionPath(entity.KindTicTacToe, id)+"/move", body, &game); err != nil {
		return nil, fmt.Errorf("failed to play cell %d: %w", cell, err)
	}

	return &game, nil
}

func (that *Client) PlayChoice(ctx context.Context, id, userID string, choice rps.Choice) (*entity.RPS, error) {
	body := map[string]any{"userId": userID, "choice": choice}

	var game entity.RPS
	if err := that.do(ctx, http.MethodPost, that.sessionPath(entity.KindRPS, id)+"/move", body, &game); err != nil {
		return nil, fmt.Errorf("failed to play %s: %w", choice, err)
	}

	return &game, nil
}

func (that *Client) NextRound(ctx context.Context, id, userID string) (*entity.RPS, error) {
	body := map[string]string{"userId": userID}

	var game entity.RPS
	if err := that.do(ctx, http.MethodPost, that.sessionPath(entity.KindRPS, id)+"/next", body, &game); err != nil {
		return nil, fmt.Errorf("failed to start next round: %w", err)
	}

	return &game, nil
}

func (that *Client) Leave(ctx context.Context, kind entity.Kind, id, userID string) error {
	if err := that.do(ctx, http.MethodDelete, that.sessionPath(kind, id)+"/leave?userId="+url.QueryEscape(userID), nil, nil); err != nil {
		return fmt.Errorf("failed to leave session: %w", err)
	}

	return nil
}

func (that *Client) ClearRoom(ctx context.Context, room string) (int, error) {
	var resp struct {
		Removed int `json:"removed"`
	}
	if err := that.do(ctx, http.MethodDelete, "/api/rooms/"+url.PathEscape(room)+"/sessions", nil, &resp); err != nil {
		return 0, fmt.Errorf("failed to clear room: %w", err)
	}

	return resp.Removed, nil
}

func (that *Client) kindPath(kind entity.Kind) string {
	return "/api/" + segments[kind]
}

func (that *Client) sessionPath(kind entity.Kind, id string) string {
	return that.kindPath(kind) + "/" + url.PathEscape(id)
}

func (that *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, that.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := that.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	if out == nil {
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// statusError maps a response status back to the matching apperror sentinel.
func statusError(resp *http.Response) error {
	var body errorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)

	message := body.Error
	if message == "" {
		message = "status " + strconv.Itoa(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return apperror.ErrNotFound
	case http.StatusConflict:
		return apperror.ErrFull
	case http.StatusForbidden:
		return apperror.ErrForbidden
	case http.StatusBadRequest:
		for _, sentinel := range []error{apperror.ErrInvalidCell, apperror.ErrInvalidChoice, apperror.ErrUnknownKind} {
			if message == sentinel.Error() {
				return fmt.Errorf("%w: %w", apperror.ErrBadRequest, sentinel)
			}
		}
		return fmt.Errorf("%w: %s", apperror.ErrBadRequest, message)
	default:
		return fmt.Errorf("unexpected response: %s", message)
	}
}

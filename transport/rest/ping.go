package rest

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type PingHandler interface {
	PingHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params)
}

type pingHandler struct{}

func NewPingHandler() PingHandler {
	return &pingHandler{}
}

func (that *pingHandler) PingHandler(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

package httpserver

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/stockroom/internal/domain"
	"github.com/phenrril/stockroom/internal/ledger"
)

type errorBody struct {
	Error     string         `json:"error"`
	Shortfall *shortfallBody `json:"shortfall,omitempty"`
}

type shortfallBody struct {
	ItemID    string `json:"item_id"`
	Variants  any    `json:"variants"`
	Requested int    `json:"requested"`
	Missing   int    `json:"missing"`
}

func statusOf(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindNotFound, domain.KindConflict, domain.KindShortfall:
		return http.StatusBadRequest
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError answers with the named condition carried by err. Anything else is
// logged and reported as internal_error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	de, ok := domain.AsError(err)
	if !ok {
		log.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", requestIDFrom(r.Context())).
			Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal_error"})
		return
	}
	body := errorBody{Error: de.Code}
	var sf *ledger.ShortfallError
	if errors.As(err, &sf) {
		body.Shortfall = &shortfallBody{
			ItemID:    sf.ItemID.String(),
			Variants:  sf.Variants,
			Requested: sf.Requested,
			Missing:   sf.Missing,
		}
	}
	writeJSON(w, statusOf(de.Kind), body)
}

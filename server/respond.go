// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gogpu/ggedit"
	"github.com/gogpu/ggedit/aiedit"
	"github.com/gogpu/ggedit/crop"
	"github.com/gogpu/ggedit/draft"
	"github.com/gogpu/ggedit/layer"
	"github.com/gogpu/ggedit/surface"
)

// maxBody bounds JSON request bodies. Media and backgrounds may arrive as
// data URLs.
const maxBody = 32 << 20

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithErr maps a command error to a status code.
func respondWithErr(w http.ResponseWriter, err error) {
	respondWithError(w, statusOf(err), err.Error())
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrUnknownSession),
		errors.Is(err, layer.ErrNotFound),
		errors.Is(err, draft.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, layer.ErrInvalid),
		errors.Is(err, crop.ErrAspect),
		errors.Is(err, ggedit.ErrFormat),
		errors.Is(err, ggedit.ErrInvalidSchedule),
		errors.Is(err, aiedit.ErrEmptyInstruction),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, crop.ErrInactive),
		errors.Is(err, crop.ErrStale),
		errors.Is(err, crop.ErrEmptyRegion),
		errors.Is(err, ggedit.ErrNoBackground),
		errors.Is(err, surface.ErrSuperseded),
		errors.Is(err, ggedit.ErrClosed):
		return http.StatusConflict
	case errors.Is(err, ErrTooManySessions):
		return http.StatusServiceUnavailable
	case errors.Is(err, ggedit.ErrNoDraftStore), errors.Is(err, ggedit.ErrNoAI):
		return http.StatusNotImplemented
	case errors.Is(err, ggedit.ErrCropSource), errors.Is(err, aiedit.ErrRejected):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("server: bad request")

// decode reads a JSON body into v. An empty body leaves v unchanged.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

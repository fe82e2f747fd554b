// Package httpx maps page errors onto the JSON envelope returned by fragment and form endpoints.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/haikalarif/portofolio-freelance/internal/catalog"
	"github.com/haikalarif/portofolio-freelance/internal/contact"
	"github.com/haikalarif/portofolio-freelance/internal/order"
	"github.com/haikalarif/portofolio-freelance/internal/pagesession"
)

// ErrInvalidRequest marks a request whose form or path parameters cannot be read.
var ErrInvalidRequest = errors.New("httpx: invalid request")

// Error is one response in the envelope.
type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]any
}

type mapping struct {
	target  error
	code    string
	message string
	status  int
}

// mappings is checked in order; the first sentinel found in the chain wins.
var mappings = []mapping{
	{order.ErrMalformedPrice, "malformed_price", "package price is not a whole number", http.StatusUnprocessableEntity},
	{order.ErrUnknownAddon, "unknown_addon", "add-on not found", http.StatusNotFound},
	{pagesession.ErrUnknownSession, "session_expired", "page session expired, reload the page", http.StatusNotFound},
	{catalog.ErrUnknownPackage, "unknown_package", "package not found", http.StatusNotFound},
	{ErrInvalidRequest, "invalid_request", "request could not be read", http.StatusBadRequest},
}

// FromError maps a page error to its response. Unrecognised errors become a 500 that does not
// leak the error text.
func FromError(err error) Error {
	var verr *contact.ValidationError
	if errors.As(err, &verr) {
		return Error{
			Code:    "invalid_contact",
			Message: "contact form is incomplete",
			Status:  http.StatusUnprocessableEntity,
			Details: map[string]any{"missing": verr.Missing, "invalid": verr.Invalid},
		}
	}
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return Error{Code: m.code, Message: m.message, Status: m.status}
		}
	}
	return Error{Code: "internal", Message: "something went wrong", Status: http.StatusInternalServerError}
}

// With returns a copy of e carrying key in its details.
func (e Error) With(key string, value any) Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

type envelope struct {
	Error     string         `json:"error"`
	Message   string         `json:"message"`
	Status    int            `json:"status"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Write maps err and writes it.
func Write(ctx context.Context, w http.ResponseWriter, err error) {
	WriteError(ctx, w, FromError(err))
}

// WriteError writes e as JSON, tagged with the chi request id.
func WriteError(ctx context.Context, w http.ResponseWriter, e Error) {
	status := e.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Error:     singleLine(e.Code, 80),
		Message:   singleLine(e.Message, 512),
		Status:    status,
		RequestID: singleLine(middleware.GetReqID(ctx), 80),
		Details:   e.Details,
	})
}

func singleLine(value string, limit int) string {
	value = strings.TrimSpace(strings.NewReplacer("\n", " ", "\r", " ").Replace(value))
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}

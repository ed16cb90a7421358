package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/DukeRupert/careerlift/internal/auth"
	"github.com/DukeRupert/careerlift/internal/domain"
	"github.com/google/uuid"
)

// maxBodyBytes bounds JSON request bodies. A profile text at the rune
// limit still fits when every rune arrives as an escaped surrogate pair
// (12 bytes), with room left for the envelope and extra context.
const maxBodyBytes = 12*domain.MaxProfileTextLength + 32<<10

// decodeJSON reads a single JSON object from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return domain.Errorf(domain.ETOOLARGE, op, "Request body too large")
		case errors.Is(err, io.EOF):
			return domain.Invalid(op, "Request body is required")
		default:
			return domain.Invalid(op, "Request body must be valid JSON")
		}
	}
	return nil
}

// principalFrom returns the authenticated caller or a 401-mapped error.
func principalFrom(r *http.Request, op string) (*auth.Principal, error) {
	p := auth.GetPrincipalFromRequest(r)
	if p == nil {
		return nil, domain.Unauthorized(op, "Authentication required")
	}
	return p, nil
}

// pathUUID parses a UUID path value.
func pathUUID(r *http.Request, name, op string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, domain.NewValidationError(op, name, "must be a valid ID")
	}
	return id, nil
}

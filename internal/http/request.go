package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"finledger/internal/core"
	"finledger/internal/middleware/auth"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object into dst. Malformed bodies are
// validation errors; errors raised by core field types keep their message.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		var typeErr *json.UnmarshalTypeError
		switch {
		case core.Kind(err) != nil:
			return err
		case errors.As(err, &maxErr):
			return core.Validationf("request body too large")
		case errors.Is(err, io.EOF):
			return core.Validationf("request body is empty")
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return core.Validationf("invalid value for field %q", typeErr.Field)
		default:
			return core.Validationf("malformed JSON body")
		}
	}
	if dec.More() {
		return core.Validationf("request body must contain a single JSON object")
	}
	return nil
}

// queryInt parses an optional integer query parameter; absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, core.Validationf("%s must be an integer", name)
	}
	return n, nil
}

// queryYear defaults to the current year when the parameter is absent.
func queryYear(r *http.Request, now time.Time) (int, error) {
	year, err := queryInt(r, "year")
	if err != nil {
		return 0, err
	}
	if year == 0 && r.URL.Query().Get("year") == "" {
		return now.Year(), nil
	}
	return year, nil
}

// pathID parses the {id} URL parameter as a positive integer.
func pathID(r *http.Request, what string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.Validationf("invalid %s id", what)
	}
	return id, nil
}

// ownerID is always present behind auth.Middleware.
func ownerID(r *http.Request) int64 {
	id, _ := auth.OwnerID(r.Context())
	return id
}

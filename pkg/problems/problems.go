package problems

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"taskbridge/pkg/faults"
)

// Base returns the base URL for problem type identifiers.
// Order of precedence:
// 1. PROBLEM_BASE_URL (exact base, e.g. https://mydomain.com/problems)
// 2. BASE_PUBLIC_URL + "/problems" (if set)
// 3. https://example.com/problems (fallback)
func Base() string {
	if b := os.Getenv("PROBLEM_BASE_URL"); b != "" {
		return strings.TrimRight(b, "/")
	}
	if b := os.Getenv("BASE_PUBLIC_URL"); b != "" {
		return strings.TrimRight(b, "/") + "/problems"
	}
	return "https://example.com/problems"
}

// Type builds a full problem type URL for the given slug.
func Type(slug string) string { return Base() + "/" + slug }

type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// FromError maps a fault class onto a problem document.
func FromError(err error) Problem {
	switch {
	case errors.Is(err, faults.ErrUnauthorized):
		return Problem{Type: Type("unauthorized"), Title: "Unauthorized", Status: http.StatusUnauthorized, Detail: err.Error()}
	case errors.Is(err, faults.ErrForbidden):
		return Problem{Type: Type("forbidden"), Title: "Forbidden", Status: http.StatusForbidden, Detail: err.Error()}
	case errors.Is(err, faults.ErrNotFound):
		return Problem{Type: Type("not-found"), Title: "Not Found", Status: http.StatusNotFound}
	case errors.Is(err, faults.ErrValidation):
		return Problem{Type: Type("invalid-request"), Title: "Invalid request", Status: http.StatusBadRequest, Detail: err.Error()}
	default:
		return Problem{Type: Type("internal"), Title: "Internal error", Status: http.StatusInternalServerError}
	}
}

// Write renders err as application/problem+json.
func Write(w http.ResponseWriter, err error) {
	p := FromError(err)
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

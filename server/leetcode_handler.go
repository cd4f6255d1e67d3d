package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/atinroy/leetly-web/internal/errors"
	"github.com/atinroy/leetly-web/leetcode"
)

// LeetCodeLookupHandler resolves a problem reference to its metadata.
// Accepts ?id=, ?slug= or free-form ?q= (a problem number or problem URL).
func (s *Server) LeetCodeLookupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := lookupQuery(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "Provide id, slug or q")
			return
		}

		problem, err := s.leetcode.Lookup(r.Context(), query)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, problem)
		case apperrors.Is(err, apperrors.ErrProblemNotFound):
			writeJSONError(w, http.StatusNotFound, "Problem not found")
		case apperrors.Is(err, apperrors.ErrInvalidProblem):
			writeJSONError(w, http.StatusBadRequest, "Provide a valid problem number or LeetCode URL")
		default:
			log.Err(err).Msg("LeetCode lookup failed")
			writeJSONError(w, http.StatusBadGateway, "Failed to fetch from LeetCode")
		}
	}
}

func lookupQuery(r *http.Request) (*leetcode.Query, error) {
	params := r.URL.Query()
	if id := params.Get("id"); id != "" {
		return &leetcode.Query{Param: "id", Value: id}, nil
	}
	if slug := params.Get("slug"); slug != "" {
		return &leetcode.Query{Param: "slug", Value: slug}, nil
	}
	if q := params.Get("q"); q != "" {
		return leetcode.ParseProblemInput(q)
	}
	return nil, apperrors.ErrInvalidProblem
}

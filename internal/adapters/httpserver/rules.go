package httpserver

import (
	"net/http"

	"github.com/phenrril/bikeconfig/internal/domain"
)

func (s *Server) listRestrictions(w http.ResponseWriter, r *http.Request) {
	list, err := s.rules.ListRestrictions(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createRestriction(w http.ResponseWriter, r *http.Request) {
	var x domain.Restriction
	if err := decodeWrapped(r, "part_restriction", &x); err != nil {
		badBody(w, err)
		return
	}
	if err := s.rules.CreateRestriction(r.Context(), &x); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, x)
}

func (s *Server) deleteRestriction(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id")
	if !ok {
		return
	}
	if err := s.rules.DeleteRestriction(r.Context(), ids[0]); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listPriceRules(w http.ResponseWriter, r *http.Request) {
	list, err := s.rules.ListPriceRules(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createPriceRule(w http.ResponseWriter, r *http.Request) {
	var x domain.PriceRule
	if err := decodeWrapped(r, "price_rule", &x); err != nil {
		badBody(w, err)
		return
	}
	if err := s.rules.CreatePriceRule(r.Context(), &x); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, x)
}

func (s *Server) deletePriceRule(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "id")
	if !ok {
		return
	}
	if err := s.rules.DeletePriceRule(r.Context(), ids[0]); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

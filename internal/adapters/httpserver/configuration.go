package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/phenrril/bikeconfig/internal/configurator"
	"github.com/phenrril/bikeconfig/internal/domain"
)

type selectionRequest struct {
	ProductID int64   `json:"product_id"`
	OptionIDs []int64 `json:"selected_part_option_ids"`
}

// decodeSelection accepts {"selected_part_option_ids": [...], "product_id": n}
// or a bare array of ids.
func decodeSelection(r *http.Request) (domain.Selection, error) {
	body, err := readBody(r)
	if err != nil {
		return domain.Selection{}, err
	}
	if body[0] == '[' {
		var ids []int64
		if err := json.Unmarshal(body, &ids); err != nil {
			return domain.Selection{}, err
		}
		return domain.Selection{OptionIDs: ids}, nil
	}
	var req selectionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return domain.Selection{}, err
	}
	if req.OptionIDs == nil {
		return domain.Selection{}, errors.New("selected_part_option_ids is required")
	}
	return domain.Selection{ProductID: req.ProductID, OptionIDs: req.OptionIDs}, nil
}

// handleValidateSelection answers 200 for valid and invalid selections alike;
// a malformed body is one more validation error.
func (s *Server) handleValidateSelection(w http.ResponseWriter, r *http.Request) {
	sel, err := decodeSelection(r)
	if err != nil {
		writeJSON(w, http.StatusOK, configurator.ValidationResult{
			Valid:  false,
			Errors: []string{"Malformed selection: " + err.Error()},
		})
		return
	}
	res, err := s.config.Validate(r.Context(), sel)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCalculatePrice(w http.ResponseWriter, r *http.Request) {
	sel, err := decodeSelection(r)
	if err != nil {
		badBody(w, err)
		return
	}
	res, err := s.config.Price(r.Context(), sel)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	sel, err := decodeSelection(r)
	if err != nil {
		badBody(w, err)
		return
	}
	ev, err := s.config.Evaluate(r.Context(), sel)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

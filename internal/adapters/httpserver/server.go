package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	zlog "github.com/rs/zerolog/log"

	"github.com/phenrril/bikeconfig/internal/domain"
	"github.com/phenrril/bikeconfig/internal/usecase"
)

const maxBody = 64 << 10

type Server struct {
	config  *usecase.ConfigurationUC
	catalog *usecase.CatalogUC
	rules   *usecase.RuleUC
	orders  *usecase.OrderUC
}

// New builds the /api/v1 router. corsOrigins may contain "*".
func New(cfg *usecase.ConfigurationUC, cat *usecase.CatalogUC, rules *usecase.RuleUC, orders *usecase.OrderUC, corsOrigins []string) http.Handler {
	s := &Server{config: cfg, catalog: cat, rules: rules, orders: orders}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(corsOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api/v1", s.routes)
	return r
}

func (s *Server) routes(r chi.Router) {
	r.Route("/product_configuration", func(r chi.Router) {
		r.Post("/validate_selection", s.handleValidateSelection)
		r.Post("/calculate_price", s.handleCalculatePrice)
		r.Post("/evaluate", s.handleEvaluate)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.listProducts)
		r.Post("/", s.createProduct)
		r.Route("/{productID}", func(r chi.Router) {
			r.Get("/", s.getProduct)
			r.Put("/", s.updateProduct)
			r.Patch("/", s.updateProduct)
			r.Delete("/", s.deleteProduct)

			r.Route("/parts", func(r chi.Router) {
				r.Get("/", s.listParts)
				r.Post("/", s.createPart)
				r.Route("/{partID}", func(r chi.Router) {
					r.Get("/", s.getPart)
					r.Put("/", s.updatePart)
					r.Patch("/", s.updatePart)
					r.Delete("/", s.deletePart)

					r.Route("/part_options", func(r chi.Router) {
						r.Get("/", s.listOptions)
						r.Post("/", s.createOption)
						r.Get("/{optionID}", s.getOption)
						r.Put("/{optionID}", s.updateOption)
						r.Patch("/{optionID}", s.updateOption)
						r.Delete("/{optionID}", s.deleteOption)
					})
				})
			})
		})
	})

	r.Route("/part_restrictions", func(r chi.Router) {
		r.Get("/", s.listRestrictions)
		r.Post("/", s.createRestriction)
		r.Delete("/{id}", s.deleteRestriction)
	})
	r.Route("/price_rules", func(r chi.Router) {
		r.Get("/", s.listPriceRules)
		r.Post("/", s.createPriceRule)
		r.Delete("/{id}", s.deletePriceRule)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", s.listOrders)
		r.Post("/", s.createOrder)
		r.Get("/export.xlsx", s.exportOrders)
		r.Get("/{id}", s.getOrder)
		r.Put("/{id}", s.updateOrder)
		r.Patch("/{id}", s.updateOrder)
		r.Delete("/{id}", s.deleteOrder)
	})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type selectionErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Valid   bool     `json:"valid"`
	Errors  []string `json:"errors"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}

// fail maps usecase errors to HTTP responses.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var lf *domain.LookupFailure
	var se *domain.SelectionError
	switch {
	case errors.As(err, &lf):
		zlog.Error().Err(lf.Err).Str("source", lf.Source).Str("request_id", middleware.GetReqID(r.Context())).Msg("catalog lookup failed")
		writeError(w, http.StatusServiceUnavailable, "lookup_failure", "catalog data is temporarily unavailable")
	case errors.As(err, &se):
		writeJSON(w, http.StatusUnprocessableEntity, selectionErrorResponse{
			Error:   "invalid_selection",
			Message: strings.Join(se.Errors, "; "),
			Valid:   false,
			Errors:  se.Errors,
		})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "")
	case errors.Is(err, domain.ErrInvalid):
		writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), domain.ErrInvalid.Error()+": "))
	default:
		zlog.Error().Err(err).Str("path", r.URL.Path).Str("request_id", middleware.GetReqID(r.Context())).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}
	return body, nil
}

// decodeWrapped decodes {"<key>": {...}} into v, and also accepts the inner
// object on its own.
func decodeWrapped(r *http.Request, key string, v any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return err
	}
	if inner, ok := outer[key]; ok {
		body = inner
	}
	return json.Unmarshal(body, v)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalidf("invalid %s", name)
	}
	return id, nil
}

// pathIDs parses the named params in order, writing a 400 on the first bad one.
func pathIDs(w http.ResponseWriter, r *http.Request, names ...string) ([]int64, bool) {
	out := make([]int64, len(names))
	for i, n := range names {
		id, err := pathID(r, n)
		if err != nil {
			fail(w, r, err)
			return nil, false
		}
		out[i] = id
	}
	return out, true
}

func badBody(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, "invalid_json", fmt.Sprintf("malformed body: %v", err))
}

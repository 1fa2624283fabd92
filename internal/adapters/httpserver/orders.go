package httpserver

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phenrril/bikeconfig/internal/domain"
	"github.com/phenrril/bikeconfig/internal/usecase"
)

type orderRequest struct {
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	ProductID     int64   `json:"product_id"`
	OptionIDs     []int64 `json:"selected_part_option_ids"`
	Status        string  `json:"status"`
}

type OrderResponse struct {
	ID            string  `json:"id"`
	Status        string  `json:"status"`
	ProductID     int64   `json:"product_id"`
	CustomerID    string  `json:"customer_id,omitempty"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	OptionIDs     []int64 `json:"selected_part_option_ids"`
	TotalPrice    string  `json:"total_price"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func mapOrderToResponse(o *domain.Order) OrderResponse {
	res := OrderResponse{
		ID:            o.ID.String(),
		Status:        string(o.Status),
		ProductID:     o.ProductID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		OptionIDs:     o.OptionIDs,
		TotalPrice:    o.TotalPrice.StringFixed(2),
		CreatedAt:     o.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     o.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if o.CustomerID != nil {
		res.CustomerID = o.CustomerID.String()
	}
	if res.OptionIDs == nil {
		res.OptionIDs = []int64{}
	}
	return res
}

func orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid order id")
		return uuid.Nil, false
	}
	return id, true
}

// listOrders returns a bare array; the total goes in X-Total-Count.
func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f domain.OrderFilter
	if raw := q.Get("status"); raw != "" {
		st, ok := domain.ParseOrderStatus(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_request", "unknown status "+strconv.Quote(raw))
			return
		}
		f.Status = &st
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("per_page"))

	list, total, err := s.orders.List(r.Context(), f)
	if err != nil {
		fail(w, r, err)
		return
	}
	out := make([]OrderResponse, len(list))
	for i := range list {
		out[i] = mapOrderToResponse(&list[i])
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeWrapped(r, "order", &req); err != nil {
		badBody(w, err)
		return
	}
	o, err := s.orders.Place(r.Context(), usecase.PlaceOrder{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		ProductID:     req.ProductID,
		OptionIDs:     req.OptionIDs,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapOrderToResponse(o))
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	o, err := s.orders.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(o))
}

// updateOrder only changes the status; totals and selections are frozen.
func (s *Server) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	var req orderRequest
	if err := decodeWrapped(r, "order", &req); err != nil {
		badBody(w, err)
		return
	}
	o, err := s.orders.UpdateStatus(r.Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(o))
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	if err := s.orders.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportOrders(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.orders.Export(r.Context(), &buf); err != nil {
		fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="orders-`+time.Now().Format("20060102")+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

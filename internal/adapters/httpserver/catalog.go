package httpserver

import (
	"net/http"

	"github.com/phenrril/bikeconfig/internal/domain"
)

// --- Productos ---

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.ListProducts(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "productID")
	if !ok {
		return
	}
	p, err := s.catalog.GetProduct(r.Context(), ids[0])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if err := decodeWrapped(r, "product", &p); err != nil {
		badBody(w, err)
		return
	}
	p.ID = 0
	if err := s.catalog.SaveProduct(r.Context(), &p); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// updateProduct decodes the body over the stored product, so omitted fields
// keep their values.
func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "productID")
	if !ok {
		return
	}
	p, err := s.catalog.GetProduct(r.Context(), ids[0])
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := decodeWrapped(r, "product", p); err != nil {
		badBody(w, err)
		return
	}
	p.ID = ids[0]
	if err := s.catalog.SaveProduct(r.Context(), p); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "productID")
	if !ok {
		return
	}
	if err := s.catalog.DeleteProduct(r.Context(), ids[0]); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Partes ---

func (s *Server) listParts(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "productID")
	if !ok {
		return
	}
	list, err := s.catalog.ListParts(r.Context(), ids[0])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getPart(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "productID", "partID")
	if !ok {
		return
	}
	p, err := s.catalog.GetPart(r.Context(), ids[0], ids[1])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createPart(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "productID")
	if !ok {
		return
	}
	var p domain.Part
	if err := decodeWrapped(r, "part", &p); err != nil {
		badBody(w, err)
		return
	}
	p.ID = 0
	if err := s.catalog.SavePart(r.Context(), ids[0], &p); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updatePart(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "productID", "partID")
	if !ok {
		return
	}
	p, err := s.catalog.GetPart(r.Context(), ids[0], ids[1])
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := decodeWrapped(r, "part", p); err != nil {
		badBody(w, err)
		return
	}
	p.ID = ids[1]
	if err := s.catalog.SavePart(r.Context(), ids[0], p); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deletePart(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "productID", "partID")
	if !ok {
		return
	}
	if err := s.catalog.DeletePart(r.Context(), ids[0], ids[1]); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Opciones ---

func (s *Server) listOptions(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "productID", "partID")
	if !ok {
		return
	}
	list, err := s.catalog.ListOptions(r.Context(), ids[0], ids[1])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getOption(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "productID", "partID", "optionID")
	if !ok {
		return
	}
	o, err := s.catalog.GetOption(r.Context(), ids[0], ids[1], ids[2])
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) createOption(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "productID", "partID")
	if !ok {
		return
	}
	o := domain.Option{InStock: true}
	if err := decodeWrapped(r, "part_option", &o); err != nil {
		badBody(w, err)
		return
	}
	o.ID = 0
	if err := s.catalog.SaveOption(r.Context(), ids[0], ids[1], &o); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) updateOption(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "productID", "partID", "optionID")
	if !ok {
		return
	}
	o, err := s.catalog.GetOption(r.Context(), ids[0], ids[1], ids[2])
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := decodeWrapped(r, "part_option", o); err != nil {
		badBody(w, err)
		return
	}
	o.ID = ids[2]
	if err := s.catalog.SaveOption(r.Context(), ids[0], ids[1], o); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) deleteOption(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "productID", "partID", "optionID")
	if !ok {
		return
	}
	if err := s.catalog.DeleteOption(r.Context(), ids[0], ids[1], ids[2]); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/safar/go-shop-api/internal/store"
	"github.com/shopspring/decimal"
)

func (s *server) handleProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodPost:
		if _, err := s.authenticateAdmin(r); err != nil {
			s.respondStoreError(w, err)
			return
		}

		var req struct {
			Name        string  `json:"name"`
			Description string  `json:"description"`
			Price       float64 `json:"price"`
			Stock       int     `json:"stock"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Name == "" {
			s.respondError(w, http.StatusBadRequest, "Product name is required")
			return
		}

		price := decimal.NewFromFloat(req.Price)
		product, err := store.CreateProduct(ctx, s.db, req.Name, req.Description, price, req.Stock)
		if err != nil {
			s.respondStoreError(w, err)
			return
		}

		s.respondJSON(w, http.StatusCreated, map[string]interface{}{"product": product})

	case http.MethodGet:
		opts := store.ListProductsOptions{
			Page:     1,
			PageSize: 20,
			Sort:     r.URL.Query().Get("sort"),
		}

		if page, _ := strconv.Atoi(r.URL.Query().Get("page")); page >= 1 {
			opts.Page = page
		}
		if pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size")); pageSize >= 1 && pageSize <= 100 {
			opts.PageSize = pageSize
		}
		if minStr := r.URL.Query().Get("min_price"); minStr != "" {
			min, err := decimal.NewFromString(minStr)
			if err != nil || min.IsNegative() {
				s.respondError(w, http.StatusBadRequest, "min_price must be a non-negative number")
				return
			}
			opts.MinPrice = &min
		}
		if maxStr := r.URL.Query().Get("max_price"); maxStr != "" {
			max, err := decimal.NewFromString(maxStr)
			if err != nil || max.IsNegative() {
				s.respondError(w, http.StatusBadRequest, "max_price must be a non-negative number")
				return
			}
			opts.MaxPrice = &max
		}

		result, err := store.ListProducts(ctx, s.db, opts)
		if err != nil {
			s.respondStoreError(w, err)
			return
		}

		s.respondJSON(w, http.StatusOK, result)

	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *server) handleProductByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	idStr := r.URL.Path[len("/products/"):]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		product, err := store.GetProduct(ctx, s.db, id)
		if err != nil {
			s.respondStoreError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]interface{}{"product": product})

	case http.MethodPut:
		if _, err := s.authenticateAdmin(r); err != nil {
			s.respondStoreError(w, err)
			return
		}

		var req struct {
			Name        *string  `json:"name"`
			Description *string  `json:"description"`
			Price       *float64 `json:"price"`
			Stock       *int     `json:"stock"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		update := store.UpdateProductRequest{
			Name:        req.Name,
			Description: req.Description,
			Stock:       req.Stock,
		}
		if req.Price != nil {
			price := decimal.NewFromFloat(*req.Price)
			update.Price = &price
		}

		product, err := store.UpdateProduct(ctx, s.db, id, update)
		if err != nil {
			s.respondStoreError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]interface{}{"product": product})

	case http.MethodDelete:
		if _, err := s.authenticateAdmin(r); err != nil {
			s.respondStoreError(w, err)
			return
		}

		if err := store.DeleteProduct(ctx, s.db, id); err != nil {
			s.respondStoreError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully."})

	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

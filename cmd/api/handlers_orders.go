package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/safar/go-shop-api/internal/store"
)

func (s *server) handleOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := s.authenticate(r)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req struct {
			Items []struct {
				ProductID int64 `json:"product_id"`
				Quantity  int   `json:"quantity"`
			} `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var items []store.OrderItemRequest
		for _, item := range req.Items {
			items = append(items, store.OrderItemRequest{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		order, err := store.PlaceOrder(ctx, s.db, store.PlaceOrderRequest{
			UserID: caller.UserID,
			Items:  items,
		})
		if err != nil {
			s.respondStoreError(w, err)
			return
		}

		s.respondJSON(w, http.StatusCreated, map[string]interface{}{
			"message":      "Order placed successfully",
			"order_id":     order.ID,
			"total_amount": order.TotalAmount,
		})

	case http.MethodGet:
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit < 1 || limit > 100 {
			limit = 10
		}
		cursor := r.URL.Query().Get("cursor")

		result, err := store.ListOrders(ctx, s.db, caller, cursor, limit)
		if err != nil {
			s.respondStoreError(w, err)
			return
		}

		s.respondJSON(w, http.StatusOK, result)

	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *server) handleOrderByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	path := r.URL.Path[len("/orders/"):]

	// PATCH /orders/{id}/approve is the only nested route.
	if idStr, ok := strings.CutSuffix(path, "/approve"); ok {
		if r.Method != http.MethodPatch {
			s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if _, err := s.authenticateAdmin(r); err != nil {
			s.respondStoreError(w, err)
			return
		}

		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid order ID")
			return
		}

		if err := store.ApproveOrder(ctx, s.db, id); err != nil {
			s.respondStoreError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]string{"message": "Order approved successfully"})
		return
	}

	caller, err := s.authenticate(r)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	id, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		order, err := store.GetOrder(ctx, s.db, caller, id)
		if err != nil {
			s.respondStoreError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"order": order,
			"items": order.Items,
		})

	case http.MethodDelete:
		if err := store.CancelOrder(ctx, s.db, caller, id); err != nil {
			s.respondStoreError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]string{"message": "Order canceled successfully"})

	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

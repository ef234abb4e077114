package api

import (
	"database/sql"
	"net/http"

	"github.com/logistix/logistix/internal/model"
	"github.com/logistix/logistix/internal/store"
)

// WarehousesHandler handles warehouse endpoints.
type WarehousesHandler struct {
	DB *sql.DB
}

type createWarehouseRequest struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// List handles GET /api/warehouses.
func (h *WarehousesHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	warehouses, err := store.ListWarehouses(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list warehouses")
		return
	}
	if warehouses == nil {
		warehouses = []model.Warehouse{}
	}
	jsonResponse(w, http.StatusOK, warehouses)
}

// Create handles POST /api/warehouses. The user's first warehouse becomes
// the default automatically.
func (h *WarehousesHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createWarehouseRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	existing, err := store.ListWarehouses(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if len(existing) == 0 {
		req.IsDefault = true
	}

	warehouse, err := store.CreateWarehouse(r.Context(), h.DB, claims.UserID, req.Name, req.IsDefault)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create warehouse")
		return
	}

	jsonResponse(w, http.StatusCreated, warehouse)
}

// Get handles GET /api/warehouses/{id}.
func (h *WarehousesHandler) Get(w http.ResponseWriter, r *http.Request) {
	warehouse := h.ownedWarehouse(w, r)
	if warehouse == nil {
		return
	}
	jsonResponse(w, http.StatusOK, warehouse)
}

// Delete handles DELETE /api/warehouses/{id}. Warehouses holding stock
// cannot be deleted.
func (h *WarehousesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	warehouse := h.ownedWarehouse(w, r)
	if warehouse == nil {
		return
	}

	if err := store.DeleteWarehouse(r.Context(), h.DB, warehouse.ID); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "warehouse deleted"})
}

// ownedWarehouse loads the warehouse from the path and checks ownership.
func (h *WarehousesHandler) ownedWarehouse(w http.ResponseWriter, r *http.Request) *model.Warehouse {
	claims := GetClaims(r.Context())

	warehouse, err := store.GetWarehouse(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get warehouse")
		return nil
	}
	if warehouse == nil || warehouse.UserID != claims.UserID {
		jsonError(w, http.StatusNotFound, "warehouse not found")
		return nil
	}
	return warehouse
}

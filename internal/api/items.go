package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/logistix/logistix/internal/ledger"
	"github.com/logistix/logistix/internal/model"
	"github.com/logistix/logistix/internal/store"
)

// ItemsHandler handles item, version and inventory endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type createItemRequest struct {
	Name              string `json:"name"`
	UnitPrice         string `json:"unit_price"`
	ServiceCost       string `json:"service_cost"`
	TaxCost           string `json:"tax_cost"`
	DeductibleTaxCost string `json:"deductible_tax_cost"`
	Volume            string `json:"volume"`
	Weight            string `json:"weight"`
	Currency          string `json:"currency"`
	Supplier          string `json:"supplier"`
	Note              string `json:"note"`
}

// List handles GET /api/items. Each item carries its total units and total
// value, folded across all versions and warehouses.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	search := r.URL.Query().Get("search")

	items, err := store.ListItemsWithVersions(r.Context(), h.DB, claims.UserID, search)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	jsonResponse(w, http.StatusOK, ledger.ItemStats(items))
}

// Create handles POST /api/items. The item is created together with its
// version 1 cost snapshot.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, claims.UserID, req.Name)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	version, err := store.CreateItemVersion(r.Context(), h.DB, item.ID, versionInput(req))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid cost attributes")
		return
	}
	item.Versions = []model.ItemVersion{*version}

	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}. Responds with the item's versions, its
// valuation (optionally restricted by ?versions=1,2), the per-warehouse value
// distribution and the full inventory history.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item := h.ownedItem(w, r)
	if item == nil {
		return
	}

	var filter []string
	if raw := r.URL.Query().Get("versions"); raw != "" {
		filter = strings.Split(raw, ",")
	}

	detail, err := store.LoadItemDetail(r.Context(), h.DB, item.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load item")
		return
	}

	history, err := store.GetItemHistory(r.Context(), h.DB, item.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load item history")
		return
	}
	if history == nil {
		history = []model.InventoryHistory{}
	}

	valuation := ledger.ComputeValuation(detail.Versions, filter)

	jsonResponse(w, http.StatusOK, map[string]any{
		"item":      detail,
		"valuation": valuation,
		"history":   history,
	})
}

// CreateVersion handles POST /api/items/{id}/versions.
func (h *ItemsHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	item := h.ownedItem(w, r)
	if item == nil {
		return
	}

	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	version, err := store.CreateItemVersion(r.Context(), h.DB, item.ID, versionInput(req))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid cost attributes")
		return
	}

	jsonResponse(w, http.StatusCreated, version)
}

// ChangeInventory handles POST /api/items/{id}/inventory. The request is
// submitted as form data: operation ("add" or "set"), quantity, versionId and
// warehouseId. Validation failures are rejected before any storage is
// touched.
func (h *ItemsHandler) ChangeInventory(w http.ResponseWriter, r *http.Request) {
	item := h.ownedItem(w, r)
	if item == nil {
		return
	}

	if err := r.ParseForm(); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	change, err := ledger.ParseChange(
		r.PostFormValue("operation"),
		r.PostFormValue("quantity"),
		r.PostFormValue("versionId"),
		r.PostFormValue("warehouseId"),
	)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	inv, err := store.ApplyQuantityChange(r.Context(), h.DB, item.ID, change)
	if errors.Is(err, store.ErrBadReference) {
		jsonError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to change inventory")
		return
	}

	jsonResponse(w, http.StatusOK, inv)
}

// GetHistory handles GET /api/items/{id}/history.
func (h *ItemsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	item := h.ownedItem(w, r)
	if item == nil {
		return
	}

	history, err := store.GetItemHistory(r.Context(), h.DB, item.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item history")
		return
	}
	if history == nil {
		history = []model.InventoryHistory{}
	}
	jsonResponse(w, http.StatusOK, history)
}

// ownedItem loads the item from the path and checks it belongs to the
// authenticated user. Writes the error response and returns nil otherwise.
func (h *ItemsHandler) ownedItem(w http.ResponseWriter, r *http.Request) *model.Item {
	claims := GetClaims(r.Context())

	item, err := store.GetItem(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return nil
	}
	if item == nil || item.UserID != claims.UserID {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil
	}
	return item
}

func versionInput(req createItemRequest) store.VersionInput {
	return store.VersionInput{
		UnitPrice:         req.UnitPrice,
		ServiceCost:       req.ServiceCost,
		TaxCost:           req.TaxCost,
		DeductibleTaxCost: req.DeductibleTaxCost,
		Volume:            req.Volume,
		Weight:            req.Weight,
		Currency:          req.Currency,
		Supplier:          req.Supplier,
		Note:              req.Note,
	}
}

package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/stockroom/internal/adapters/export"
	"github.com/phenrril/stockroom/internal/currency"
	"github.com/phenrril/stockroom/internal/domain"
	"github.com/phenrril/stockroom/internal/metrics"
	"github.com/phenrril/stockroom/internal/usecase"
)

const (
	maxImportBytes = 10 << 20
	maxBodyBytes   = 1 << 20
)

type Server struct {
	mux        *http.ServeMux
	catalog    *usecase.CatalogUC
	inventory  *usecase.InventoryUC
	orders     *usecase.OrderUC
	shipments  *usecase.ShipmentUC
	currencies *currency.Table
	metrics    *metrics.Metrics
	validate   *validator.Validate
}

func New(c *usecase.CatalogUC, inv *usecase.InventoryUC, o *usecase.OrderUC, sh *usecase.ShipmentUC, cur *currency.Table, m *metrics.Metrics) http.Handler {
	s := &Server{
		mux:        http.NewServeMux(),
		catalog:    c,
		inventory:  inv,
		orders:     o,
		shipments:  sh,
		currencies: cur,
		metrics:    m,
		validate:   validator.New(),
	}
	s.routes()
	return Chain(s.mux,
		RequestID,
		Recovery,
		Logging,
		Metrics(m),
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	s.mux.HandleFunc("GET /api/currencies", s.apiCurrencies)

	s.mux.HandleFunc("GET /api/items", s.apiItems)
	s.mux.HandleFunc("POST /api/items", s.apiSaveItem)
	s.mux.HandleFunc("DELETE /api/items/{id}", s.apiDeleteItem)

	s.mux.HandleFunc("GET /api/locations/{id}/inventory", s.apiInventory)
	s.mux.HandleFunc("PUT /api/locations/{id}/inventory", s.apiReplaceInventory)
	s.mux.HandleFunc("GET /api/locations/{id}/inventory/export", s.apiExportInventory)
	s.mux.HandleFunc("POST /api/locations/{id}/inventory/import", s.apiImportInventory)

	s.mux.HandleFunc("GET /api/shipments", s.apiShipmentSchedules)
	s.mux.HandleFunc("GET /api/shipments/today", s.apiShipmentsToday)
	s.mux.HandleFunc("GET /api/shipments/{id}", s.apiShipment)
	s.mux.HandleFunc("POST /api/shipments/{id}/departure", s.apiValidateDeparture)
	s.mux.HandleFunc("POST /api/shipments/{id}/arrival", s.apiValidateArrival)

	s.mux.HandleFunc("GET /api/orders", s.apiOrders)
	s.mux.HandleFunc("POST /api/orders", s.apiCreateOrder)
	s.mux.HandleFunc("GET /api/orders/{id}", s.apiOrder)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) apiCurrencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.currencies.All())
}

// --- Catalog ---

type variantRequest struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name" validate:"required,max=100"`
	Position int       `json:"position"`
}

type variantGroupRequest struct {
	ID       uuid.UUID        `json:"id"`
	Name     string           `json:"name" validate:"required,max=100"`
	Position int              `json:"position"`
	Variants []variantRequest `json:"variants" validate:"dive"`
}

type itemRequest struct {
	ID            uuid.UUID             `json:"id"`
	Name          string                `json:"name" validate:"required,max=180"`
	Price         decimal.Decimal       `json:"price"`
	Type          domain.ItemType       `json:"type" validate:"required,oneof=raw-material assembly-part end-product"`
	VariantGroups []variantGroupRequest `json:"variant_groups" validate:"dive"`
}

func (req itemRequest) item() *domain.Item {
	it := &domain.Item{ID: req.ID, Name: req.Name, Price: req.Price, Type: req.Type}
	for _, g := range req.VariantGroups {
		vg := domain.VariantGroup{ID: g.ID, Name: g.Name, Position: g.Position}
		for _, v := range g.Variants {
			vg.Variants = append(vg.Variants, domain.Variant{ID: v.ID, Name: v.Name, Position: v.Position})
		}
		it.VariantGroups = append(it.VariantGroups, vg)
	}
	return it
}

func (s *Server) apiItems(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	raw := strings.TrimSpace(r.URL.Query().Get("ids"))
	if raw == "" {
		list, err := s.catalog.List(r.Context(), actor)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			writeError(w, r, domain.ErrNoSuchItem)
			return
		}
		ids = append(ids, id)
	}
	items, err := s.catalog.Lookup(r.Context(), ids)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		if it.BusinessID == actor.BusinessID {
			out = append(out, it)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) apiSaveItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req itemRequest
	if !s.decode(w, r, &req, domain.ErrInvalidItem) {
		return
	}
	it := req.item()
	if err := s.catalog.Save(r.Context(), actor, it); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) apiDeleteItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, domain.ErrNoSuchItem)
	if !ok {
		return
	}
	if err := s.catalog.Delete(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Inventory ---

type inventoryRequest struct {
	Items []domain.StockLine `json:"items" validate:"required,dive"`
}

func (s *Server) apiInventory(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, domain.ErrNoSuchLocation)
	if !ok {
		return
	}
	loc, entries, err := s.inventory.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"location": loc, "items": entries})
}

func (s *Server) apiReplaceInventory(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, domain.ErrNoSuchLocation)
	if !ok {
		return
	}
	var req inventoryRequest
	if !s.decode(w, r, &req, domain.ErrInvalidInventoryLines) {
		return
	}
	if err := s.inventory.Replace(r.Context(), actor, id, req.Items); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiExportInventory(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, domain.ErrNoSuchLocation)
	if !ok {
		return
	}
	loc, entries, err := s.inventory.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows := make([]export.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, export.Row{ItemID: e.ItemID, ItemName: e.Item.Name, Variants: e.Variants, Description: e.Description, Quantity: e.Quantity})
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=inventory-%s.xlsx", loc.ID))
	if err := export.WriteInventory(w, rows); err != nil {
		writeError(w, r, err)
	}
}

func (s *Server) apiImportInventory(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, domain.ErrNoSuchLocation)
	if !ok {
		return
	}
	lines, err := export.ReadInventory(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.inventory.Replace(r.Context(), actor, id, lines); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"lines": len(lines)})
}

// --- Shipments ---

func (s *Server) apiShipmentSchedules(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	list, err := s.shipments.ListSchedules(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) apiShipmentsToday(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	list, err := s.shipments.ListToday(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) apiShipment(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, domain.ErrNoSuchShipment)
	if !ok {
		return
	}
	sh, err := s.shipments.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

func (s *Server) apiValidateDeparture(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, domain.ErrNoSuchShipment)
	if !ok {
		return
	}
	sh, err := s.shipments.ValidateDeparture(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

func (s *Server) apiValidateArrival(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, domain.ErrNoSuchShipment)
	if !ok {
		return
	}
	sh, err := s.shipments.ValidateArrival(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

// --- Orders ---

func (s *Server) apiOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	list, err := s.orders.List(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) apiOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, domain.ErrNoSuchOrder)
	if !ok {
		return
	}
	o, err := s.orders.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) apiCreateOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var req usecase.PlaceOrder
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, r, orderBodyError(err))
		return
	}
	o, err := s.orders.Create(r.Context(), actor, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// orderBodyError names the part of an order body that failed to decode.
func orderBodyError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		switch field := typeErr.Field; {
		case field == "items" || strings.HasPrefix(field, "items."):
			return fmt.Errorf("%w: %v", domain.ErrEmptyOrderItems, err)
		case field == "customer" || strings.HasPrefix(field, "customer."):
			return fmt.Errorf("%w: %v", domain.ErrInvalidCustomerFields, err)
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidBody, err)
}

// --- helpers ---

// actor reads the identity forwarded by the authenticating gateway.
func (s *Server) actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	user, errU := uuid.Parse(r.Header.Get("X-User-ID"))
	biz, errB := uuid.Parse(r.Header.Get("X-Business-ID"))
	if errU != nil || errB != nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return domain.Actor{}, false
	}
	return domain.Actor{UserID: user, BusinessID: biz}, true
}

func pathID(w http.ResponseWriter, r *http.Request, missing *domain.Error) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, missing)
		return uuid.Nil, false
	}
	return id, true
}

// decode reads and validates a JSON body, answering with invalid on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any, invalid *domain.Error) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", invalid, err))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", invalid, err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

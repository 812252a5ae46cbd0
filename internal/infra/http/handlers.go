package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/print-shop/internal/domain/catalog"
	"github.com/Spok95/print-shop/internal/domain/materials"
	"github.com/Spok95/print-shop/internal/domain/orders"
	"github.com/Spok95/print-shop/internal/domain/pricing"
	"github.com/Spok95/print-shop/internal/domain/stock"
	"github.com/Spok95/print-shop/internal/infra/metrics"
	"github.com/Spok95/print-shop/internal/reports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	log     *slog.Logger
	catalog *catalog.Repo
	mats    *materials.Repo
	stock   *stock.Repo
	orders  *orders.Service
}

func NewHandler(log *slog.Logger, cat *catalog.Repo, mats *materials.Repo, st *stock.Repo, ord *orders.Service) *Handler {
	return &Handler{log: log, catalog: cat, mats: mats, stock: st, orders: ord}
}

/* Categories */

func (h *Handler) ListCategories(c *gin.Context) {
	out, err := h.catalog.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cat, err := h.catalog.Create(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cat, err := h.catalog.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if cat == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cat, err := h.catalog.UpdateName(c.Request.Context(), id, req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	if cat == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) SetCategoryActive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cat, err := h.catalog.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		h.fail(c, err)
		return
	}
	if cat == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	c.JSON(http.StatusOK, cat)
}

/* Materials */

type materialView struct {
	materials.Material
	Stocks []stock.Entry `json:"stocks"`
}

// ListMaterials returns materials with their stock entries embedded, the
// shape the order form loads once per session.
func (h *Handler) ListMaterials(c *gin.Context) {
	ctx := c.Request.Context()
	onlyActive := c.Query("active") == "true"

	var mats []materials.Material
	var err error
	if q := c.Query("q"); q != "" {
		mats, err = h.mats.SearchByName(ctx, q, onlyActive)
	} else {
		mats, err = h.mats.List(ctx, onlyActive)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	entries, err := h.stock.ListAll(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	byMaterial := make(map[int64][]stock.Entry)
	for _, e := range entries {
		byMaterial[e.MaterialID] = append(byMaterial[e.MaterialID], e)
	}

	out := make([]materialView, 0, len(mats))
	for _, m := range mats {
		out = append(out, materialView{Material: m, Stocks: byMaterial[m.ID]})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateMaterial(c *gin.Context) {
	var req struct {
		Name         string             `json:"name" binding:"required"`
		CategoryID   int64              `json:"category_id" binding:"required"`
		Unit         string             `json:"unit"`
		PricePerUnit float64            `json:"price_per_unit" binding:"gte=0"`
		Options      map[string]float64 `json:"options"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	unit := materials.UnitMode(req.Unit)
	if unit == "" {
		unit = materials.UnitSquareMeter
	}
	if unit != materials.UnitSquareMeter && unit != materials.UnitLinearMeter {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unit must be m2 or ml"})
		return
	}
	m, err := h.mats.Create(c.Request.Context(), req.Name, req.CategoryID, unit, req.PricePerUnit, req.Options)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetMaterial(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	m, err := h.mats.GetByID(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "material not found"})
		return
	}
	entries, err := h.stock.ListByMaterial(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, materialView{Material: *m, Stocks: entries})
}

func (h *Handler) UpdateMaterialPrice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		PricePerUnit float64 `json:"price_per_unit" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	m, err := h.mats.UpdatePrice(c.Request.Context(), id, req.PricePerUnit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) UpdateMaterialOptions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Options map[string]float64 `json:"options" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	m, err := h.mats.UpdateOptions(c.Request.Context(), id, req.Options)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) SetMaterialActive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	m, err := h.mats.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

/* Stock */

func (h *Handler) UpsertStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Width           float64 `json:"width" binding:"required,gt=0"`
		QuantityInStock float64 `json:"quantity_in_stock" binding:"gte=0"`
		AlertThreshold  float64 `json:"alert_threshold" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	e, err := h.stock.Upsert(c.Request.Context(), id, req.Width, req.QuantityInStock, req.AlertThreshold)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) GetStockEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	e, err := h.stock.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if e == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "stock entry not found"})
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) ReceiveStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Qty  float64 `json:"qty" binding:"required,gt=0"`
		Note string  `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.stock.Receive(c.Request.Context(), id, req.Qty, req.Note); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AdjustStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Delta float64 `json:"delta" binding:"required"`
		Note  string  `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.stock.Adjust(c.Request.Context(), id, req.Delta, req.Note); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListMovements(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	out, err := h.stock.ListMovements(c.Request.Context(), id, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

/* Quotes and orders */

type quoteRequest struct {
	MaterialID   int64    `json:"material_id"`
	Width        float64  `json:"width" binding:"required,gt=0"`
	Length       float64  `json:"length" binding:"required,gt=0"`
	Quantity     int      `json:"quantity" binding:"required,gt=0"`
	Options      []string `json:"options"`
	SpecialOrder bool     `json:"special_order"`
}

func (r quoteRequest) toDomain() orders.QuoteRequest {
	return orders.QuoteRequest{
		MaterialID:   r.MaterialID,
		Width:        r.Width,
		Length:       r.Length,
		Quantity:     r.Quantity,
		Options:      r.Options,
		SpecialOrder: r.SpecialOrder,
	}
}

type stockVerdict struct {
	Valid   bool   `json:"valid"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
	Warning bool   `json:"warning,omitempty"`
}

type quoteResponse struct {
	Price pricing.Result `json:"price"`
	Stock stockVerdict   `json:"stock"`
}

func (h *Handler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.QuotesTotal.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	q, err := h.orders.Quote(c.Request.Context(), req.toDomain())
	if err != nil {
		status, code := errCode(err)
		metrics.QuotesTotal.WithLabelValues(code).Inc()
		c.JSON(status, gin.H{"error": err.Error(), "code": code})
		return
	}

	outcome := "ok"
	if !q.Validation.Valid {
		outcome = q.Validation.Reason
	}
	metrics.QuotesTotal.WithLabelValues(outcome).Inc()

	c.JSON(http.StatusOK, quoteResponse{
		Price: roundMoney(q.Price),
		Stock: stockVerdict{
			Valid:   q.Validation.Valid,
			Reason:  q.Validation.Reason,
			Message: q.Validation.Message,
			Warning: q.Validation.Warning,
		},
	})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req struct {
		quoteRequest
		Customer string `json:"customer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	o, err := h.orders.Create(c.Request.Context(), orders.CreateRequest{
		QuoteRequest: req.quoteRequest.toDomain(),
		Customer:     req.Customer,
	})
	if err != nil {
		var verr *orders.ValidationError
		if errors.As(err, &verr) {
			metrics.OrdersRejectedTotal.Inc()
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": verr.Result.Message,
				"code":  verr.Result.Reason,
			})
			return
		}
		status, code := errCode(err)
		if errors.Is(err, stock.ErrInsufficientStock) {
			metrics.OrdersRejectedTotal.Inc()
		}
		c.JSON(status, gin.H{"error": err.Error(), "code": code})
		return
	}

	metrics.OrdersCreatedTotal.Inc()
	o.Price = roundMoney(o.Price)
	o.TotalPrice = pricing.Round2(o.TotalPrice)
	c.JSON(http.StatusCreated, o)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	o, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if o == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) ListOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	out, err := h.orders.List(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	o, err := h.orders.Cancel(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if o == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, o)
}

/* Reports */

func (h *Handler) PriceListReport(c *gin.Context) {
	mats, err := h.mats.List(c.Request.Context(), false)
	if err != nil {
		h.fail(c, err)
		return
	}
	data, err := reports.PriceList(mats)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="price-list.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *Handler) StockReport(c *gin.Context) {
	ctx := c.Request.Context()
	mats, err := h.mats.List(ctx, false)
	if err != nil {
		h.fail(c, err)
		return
	}
	entries, err := h.stock.ListAll(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	data, err := reports.StockSheet(mats, entries)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="stock.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

/* Helpers */

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.log.Error("request failed", "path", c.Request.URL.Path, "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func errCode(err error) (int, string) {
	switch {
	case errors.Is(err, pricing.ErrInvalidDimensions):
		return http.StatusUnprocessableEntity, "invalid_dimensions"
	case errors.Is(err, pricing.ErrMaterialOrStockRequired):
		return http.StatusUnprocessableEntity, "material_or_stock_required"
	case errors.Is(err, stock.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	}
	return http.StatusInternalServerError, "internal"
}

// roundMoney rounds the monetary fields for presentation; measures stay raw.
func roundMoney(r pricing.Result) pricing.Result {
	r.UnitPrice = pricing.Round2(r.UnitPrice)
	r.BasePrice = pricing.Round2(r.BasePrice)
	r.OptionsCost = pricing.Round2(r.OptionsCost)
	r.TotalPrice = pricing.Round2(r.TotalPrice)
	for i := range r.OptionsDetails {
		r.OptionsDetails[i].UnitPrice = pricing.Round2(r.OptionsDetails[i].UnitPrice)
		r.OptionsDetails[i].TotalPrice = pricing.Round2(r.OptionsDetails[i].TotalPrice)
	}
	return r
}

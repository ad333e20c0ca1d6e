// controllers/item_controller.go
package controllers

import (
	"net/http"
	"strings"

	"Gin_postgres_redis_loan_inventory/app"
	"Gin_postgres_redis_loan_inventory/db"
	"Gin_postgres_redis_loan_inventory/models"

	"github.com/gin-gonic/gin"
)

type ItemController struct{ *Srv }

func NewItemController(s *Srv) *ItemController { return &ItemController{Srv: s} }

func (ic *ItemController) CreateAssetModel(c *gin.Context) {
	var in struct {
		Type  string `json:"type" binding:"required"`
		Brand string `json:"brand" binding:"required"`
		Model string `json:"model" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "type, brand and model are required")
		return
	}
	m := &models.AssetModel{Type: in.Type, Brand: in.Brand, Model: in.Model}
	if err := ic.Catalog.CreateAssetModel(c.Request.Context(), m); err != nil {
		ic.respondError(c, err)
		return
	}
	ic.audit(c, models.AuditCreate, models.AssetModelTable, m.ID, nil, *m)
	ok(c, http.StatusCreated, m)
}

func (ic *ItemController) ListAssetModels(c *gin.Context) {
	ms, err := ic.Catalog.ListAssetModels(c.Request.Context())
	if err != nil {
		ic.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, ms)
}

// 新建资产：状态固定 EN_STOCK
func (ic *ItemController) CreateAssetItem(c *gin.Context) {
	var in struct {
		Tag          string  `json:"tag" binding:"required"`
		Serial       *string `json:"serial"`
		AssetModelID string  `json:"assetModelId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "tag and assetModelId are required")
		return
	}
	if in.Serial != nil && strings.TrimSpace(*in.Serial) == "" {
		in.Serial = nil
	}
	it := &models.AssetItem{Tag: strings.TrimSpace(in.Tag), Serial: in.Serial, AssetModelID: in.AssetModelID}
	if err := ic.Catalog.CreateAssetItem(c.Request.Context(), it); err != nil {
		ic.respondError(c, err)
		return
	}
	ic.audit(c, models.AuditCreate, models.AssetItemTable, it.ID, nil, *it)
	ok(c, http.StatusCreated, it)
}

// 列表（含当前借用人）?q=&status=
func (ic *ItemController) ListAssetItems(c *gin.Context) {
	q := db.AdminItemsQuery{
		Q:      c.Query("q"),
		Status: strings.ToUpper(c.Query("status")),
	}
	if q.Status != "" && !models.AssetStatus(q.Status).Valid() {
		badRequest(c, "unknown status "+q.Status)
		return
	}
	rows, err := ic.Catalog.ListAssetItemsWithCurrentLoan(c.Request.Context(), q)
	if err != nil {
		ic.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, rows)
}

// 手动改状态：HS / REPARATION / EN_STOCK，PRETE 只能由借用产生
func (ic *ItemController) SetAssetStatus(c *gin.Context) {
	var in struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "status is required")
		return
	}
	status := models.AssetStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	it, err := ic.Loans.MarkAssetStatus(c.Request.Context(), c.Param("id"), status, app.ActorID(c))
	if err != nil {
		ic.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, it)
}

func (ic *ItemController) CreateStockItem(c *gin.Context) {
	var in struct {
		AssetModelID string `json:"assetModelId" binding:"required"`
		Quantity     int    `json:"quantity" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "assetModelId is required and quantity must not be negative")
		return
	}
	it := &models.StockItem{AssetModelID: in.AssetModelID, Quantity: in.Quantity}
	if err := ic.Catalog.CreateStockItem(c.Request.Context(), it); err != nil {
		ic.respondError(c, err)
		return
	}
	ic.audit(c, models.AuditCreate, models.StockItemTable, it.ID, nil, *it)
	ok(c, http.StatusCreated, it)
}

func (ic *ItemController) ListStockItems(c *gin.Context) {
	items, err := ic.Catalog.ListStockItems(c.Request.Context())
	if err != nil {
		ic.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

func (ic *ItemController) SetStockQuantity(c *gin.Context) {
	var in struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "quantity is required")
		return
	}
	it, err := ic.Loans.AdjustStockQuantity(c.Request.Context(), c.Param("id"), *in.Quantity, app.ActorID(c))
	if err != nil {
		ic.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, it)
}

package routes

import (
	"strings"

	"Gin_postgres_redis_loan_inventory/app"
	"Gin_postgres_redis_loan_inventory/controllers"
	"Gin_postgres_redis_loan_inventory/idempotency"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 签名文件：基地址是本地路径时由 gin 直接提供
	if strings.HasPrefix(a.Config.SignatureBaseURL, "/") {
		r.Static(a.Config.SignatureBaseURL, a.Signatures.Dir())
	}
	Register(r, controllers.GetSrv(a), idempotency.Middleware(a.Idempotency, a.Logger))
}

// Register 挂载 /api 路由；idem 只加在会改数据的借用接口上
func Register(r *gin.Engine, s *controllers.Srv, idem gin.HandlerFunc) {
	loanCtl := controllers.NewLoanController(s)
	itemCtl := controllers.NewItemController(s)
	empCtl := controllers.NewEmployeeController(s)

	api := r.Group("/api", app.Actor())

	// ------------------------------
	// 借用单
	// ------------------------------
	loans := api.Group("/loans")
	{
		loans.GET("", loanCtl.List) // ?status=OPEN|CLOSED&employeeId=
		loans.GET("/:id", loanCtl.Get)
	}
	loansW := loans.Group("", idem)
	{
		loansW.POST("", loanCtl.Open)
		loansW.POST("/bulk-delete", loanCtl.BulkDelete)
		loansW.POST("/:id/lines", loanCtl.AddLine)
		loansW.DELETE("/:id/lines/:lineId", loanCtl.RemoveLine)
		loansW.POST("/:id/signatures/pickup", loanCtl.SignPickup)
		loansW.POST("/:id/signatures/return", loanCtl.SignReturn)
		loansW.POST("/:id/close", loanCtl.Close)
		loansW.DELETE("/:id", loanCtl.Delete)
	}

	// ------------------------------
	// 目录：员工 / 型号 / 资产 / 库存
	// ------------------------------
	emps := api.Group("/employees")
	{
		emps.GET("", empCtl.List) // ?q=
		emps.POST("", empCtl.Create)
		emps.DELETE("/:id", empCtl.Delete)
	}

	api.GET("/asset-models", itemCtl.ListAssetModels)
	api.POST("/asset-models", itemCtl.CreateAssetModel)

	assets := api.Group("/asset-items")
	{
		assets.GET("", itemCtl.ListAssetItems) // ?q=&status=
		assets.POST("", itemCtl.CreateAssetItem)
		assets.PATCH("/:id/status", itemCtl.SetAssetStatus)
	}

	stock := api.Group("/stock-items")
	{
		stock.GET("", itemCtl.ListStockItems)
		stock.POST("", itemCtl.CreateStockItem)
		stock.PATCH("/:id/quantity", itemCtl.SetStockQuantity)
	}

	api.GET("/audit", s.ListAudit) // ?table=&recordId=&limit=
}

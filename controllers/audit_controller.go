package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_loan_inventory/db"

	"github.com/gin-gonic/gin"
)

// ListAudit ?table=&recordId=&limit=
func (s *Srv) ListAudit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	logs, err := s.Catalog.ListAuditLogs(c.Request.Context(), db.AuditQuery{
		Table:    c.Query("table"),
		RecordID: c.Query("recordId"),
		Limit:    limit,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, logs)
}

package controllers

import (
	"net/http"
	"strings"

	"Gin_postgres_redis_loan_inventory/models"

	"github.com/gin-gonic/gin"
)

type EmployeeController struct{ *Srv }

func NewEmployeeController(s *Srv) *EmployeeController { return &EmployeeController{Srv: s} }

func (ec *EmployeeController) Create(c *gin.Context) {
	var in struct {
		FirstName  string  `json:"firstName" binding:"required"`
		LastName   string  `json:"lastName" binding:"required"`
		Email      *string `json:"email" binding:"omitempty,email"`
		Department *string `json:"department"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	e := &models.Employee{
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Email:      in.Email,
		Department: in.Department,
	}
	if err := ec.Catalog.CreateEmployee(c.Request.Context(), e); err != nil {
		ec.respondError(c, err)
		return
	}
	ec.audit(c, models.AuditCreate, models.EmployeeTable, e.ID, nil, *e)
	ok(c, http.StatusCreated, e)
}

// ?q= 按姓名/邮箱模糊搜索
func (ec *EmployeeController) List(c *gin.Context) {
	es, err := ec.Catalog.ListEmployees(c.Request.Context(), c.Query("q"))
	if err != nil {
		ec.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, es)
}

func (ec *EmployeeController) Delete(c *gin.Context) {
	e, err := ec.Catalog.DeleteEmployee(c.Request.Context(), c.Param("id"))
	if err != nil {
		ec.respondError(c, err)
		return
	}
	ec.audit(c, models.AuditDelete, models.EmployeeTable, e.ID, *e, nil)
	ok(c, http.StatusOK, gin.H{"deleted": 1})
}

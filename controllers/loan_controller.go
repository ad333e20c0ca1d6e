package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"Gin_postgres_redis_loan_inventory/app"
	"Gin_postgres_redis_loan_inventory/loans"
	"Gin_postgres_redis_loan_inventory/models"
	"Gin_postgres_redis_loan_inventory/signature"

	"github.com/gin-gonic/gin"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

// 签名上传的表单字段
const signatureField = "signature"

func (lc *LoanController) Open(c *gin.Context) {
	var in struct {
		EmployeeID string `json:"employeeId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "employeeId is required")
		return
	}
	loan, err := lc.Loans.Open(c.Request.Context(), in.EmployeeID, app.ActorID(c))
	if err != nil {
		lc.respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, loan)
}

// ?status=OPEN|CLOSED&employeeId=
func (lc *LoanController) List(c *gin.Context) {
	f := loans.ListFilter{
		Status:     models.LoanStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		EmployeeID: strings.TrimSpace(c.Query("employeeId")),
	}
	ls, err := lc.Loans.List(c.Request.Context(), f)
	if err != nil {
		lc.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, ls)
}

func (lc *LoanController) Get(c *gin.Context) {
	loan, err := lc.Loans.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		lc.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, loan)
}

func (lc *LoanController) AddLine(c *gin.Context) {
	var in struct {
		AssetItemID string `json:"assetItemId"`
		StockItemID string `json:"stockItemId"`
		Quantity    int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	line, err := lc.Loans.AddLine(c.Request.Context(), c.Param("id"), loans.LineSelector{
		AssetItemID: in.AssetItemID,
		StockItemID: in.StockItemID,
		Quantity:    in.Quantity,
	}, app.ActorID(c))
	if err != nil {
		lc.respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, line)
}

func (lc *LoanController) RemoveLine(c *gin.Context) {
	loan, err := lc.Loans.RemoveLine(c.Request.Context(), c.Param("id"), c.Param("lineId"), app.ActorID(c))
	if err != nil {
		lc.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, loan)
}

func (lc *LoanController) SignPickup(c *gin.Context) {
	lc.sign(c, lc.Loans.SignPickup)
}

func (lc *LoanController) SignReturn(c *gin.Context) {
	lc.sign(c, lc.Loans.SignReturn)
}

type signFunc func(ctx context.Context, loanID string, image []byte, actorID string) (*models.Loan, error)

func (lc *LoanController) sign(c *gin.Context, fn signFunc) {
	image, err := readSignature(c)
	if err != nil {
		lc.respondError(c, err)
		return
	}
	loan, err := fn(c.Request.Context(), c.Param("id"), image, app.ActorID(c))
	if err != nil {
		lc.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, loan)
}

// readSignature 读取 multipart 文件，超过上限直接拒绝
func readSignature(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile(signatureField)
	if err != nil {
		return nil, fmt.Errorf("%w: multipart field %q is required", loans.ErrValidation, signatureField)
	}
	if fh.Size > signature.MaxImageSize {
		return nil, signature.ErrImageTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	image, err := io.ReadAll(io.LimitReader(f, signature.MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(image) > signature.MaxImageSize {
		return nil, signature.ErrImageTooLarge
	}
	return image, nil
}

func (lc *LoanController) Close(c *gin.Context) {
	loan, err := lc.Loans.Close(c.Request.Context(), c.Param("id"), app.ActorID(c))
	if err != nil {
		lc.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, loan)
}

func (lc *LoanController) Delete(c *gin.Context) {
	if err := lc.Loans.DeleteLoan(c.Request.Context(), c.Param("id"), app.ActorID(c)); err != nil {
		lc.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"deleted": 1})
}

func (lc *LoanController) BulkDelete(c *gin.Context) {
	var in struct {
		IDs []string `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "ids is required")
		return
	}
	n, err := lc.Loans.DeleteLoans(c.Request.Context(), in.IDs, app.ActorID(c))
	if err != nil {
		lc.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"deleted": n})
}

package controllers

import (
	"errors"
	"net/http"

	"Gin_postgres_redis_loan_inventory/db"
	"Gin_postgres_redis_loan_inventory/loans"

	"github.com/gin-gonic/gin"
)

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, kind, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   gin.H{"kind": kind, "message": msg},
	})
}

func badRequest(c *gin.Context, msg string) {
	fail(c, http.StatusBadRequest, loans.Kind(loans.ErrValidation), msg)
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, db.ErrDuplicate):
		return http.StatusConflict, "Duplicate"
	case errors.Is(err, db.ErrInUse):
		return http.StatusConflict, "InUse"
	}
	kind := loans.Kind(err)
	switch {
	case errors.Is(err, loans.ErrNotFound):
		return http.StatusNotFound, kind
	case errors.Is(err, loans.ErrValidation):
		return http.StatusBadRequest, kind
	case errors.Is(err, loans.ErrItemAlreadyLoaned),
		errors.Is(err, loans.ErrInsufficientStock),
		errors.Is(err, loans.ErrLoanNotOpen),
		errors.Is(err, loans.ErrAlreadyClosed),
		errors.Is(err, loans.ErrCannotDeleteSignedLoan),
		errors.Is(err, loans.ErrUnavailable):
		return http.StatusConflict, kind
	case errors.Is(err, loans.ErrEmptyLoan),
		errors.Is(err, loans.ErrMissingSignature):
		return http.StatusUnprocessableEntity, kind
	}
	return http.StatusInternalServerError, kind
}

// respondError 把领域错误映射成状态码；500 不向客户端暴露细节
func (s *Srv) respondError(c *gin.Context, err error) {
	status, kind := statusOf(err)
	if status == http.StatusInternalServerError {
		s.Logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
		fail(c, status, kind, "internal error")
		return
	}
	fail(c, status, kind, err.Error())
}

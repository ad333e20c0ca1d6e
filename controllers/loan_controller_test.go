package controllers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Gin_postgres_redis_loan_inventory/models"
)

func Test_LoanRoutes_FullLifecycle(t *testing.T) {
	s := newServer(t)
	loan := s.openLoan(t)
	base := "/api/loans/" + loan.ID

	// add an asset and three cables
	code, env := s.do(t, http.MethodPost, base+"/lines", gin.H{"assetItemId": laptopID})
	require.Equal(t, http.StatusCreated, code, env.Error.Message)
	code, env = s.do(t, http.MethodPost, base+"/lines", gin.H{"stockItemId": cablesID, "quantity": 3})
	require.Equal(t, http.StatusCreated, code, env.Error.Message)

	// closing without signatures is refused
	code, env = s.do(t, http.MethodPost, base+"/close", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "MissingSignature", env.Error.Kind)

	// return before pickup is refused
	code, env = s.upload(t, base+"/signatures/return", pngImage(t))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "MissingSignature", env.Error.Kind)

	code, env = s.upload(t, base+"/signatures/pickup", pngImage(t))
	require.Equal(t, http.StatusOK, code, env.Error.Message)
	signed := decode[models.Loan](t, env)
	require.NotNil(t, signed.PickupSignatureURL)
	assert.True(t, strings.HasPrefix(*signed.PickupSignatureURL, "/uploads/signatures/"))

	code, env = s.upload(t, base+"/signatures/return", pngImage(t))
	require.Equal(t, http.StatusOK, code, env.Error.Message)

	code, env = s.do(t, http.MethodPost, base+"/close", nil)
	require.Equal(t, http.StatusOK, code, env.Error.Message)
	closed := decode[models.Loan](t, env)
	assert.Equal(t, models.LoanClosed, closed.Status)
	assert.Len(t, closed.Lines, 2)

	code, env = s.do(t, http.MethodPost, base+"/close", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "AlreadyClosed", env.Error.Kind)

	code, env = s.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CannotDeleteSignedLoan", env.Error.Kind)
}

func Test_LoanRoutes_AddLine_Conflicts(t *testing.T) {
	s := newServer(t)
	first := s.openLoan(t)
	second := s.openLoan(t)

	code, _ := s.do(t, http.MethodPost, "/api/loans/"+first.ID+"/lines", gin.H{"assetItemId": laptopID})
	require.Equal(t, http.StatusCreated, code)

	code, env := s.do(t, http.MethodPost, "/api/loans/"+second.ID+"/lines", gin.H{"assetItemId": laptopID})
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)
	assert.Equal(t, "ItemAlreadyLoaned", env.Error.Kind)

	code, env = s.do(t, http.MethodPost, "/api/loans/"+second.ID+"/lines", gin.H{"stockItemId": cablesID, "quantity": 11})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "InsufficientStock", env.Error.Kind)

	code, env = s.do(t, http.MethodPost, "/api/loans/"+second.ID+"/lines", gin.H{"assetItemId": laptopID, "stockItemId": cablesID})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ValidationError", env.Error.Kind)
}

func Test_LoanRoutes_RemoveLine_ReleasesItem(t *testing.T) {
	s := newServer(t)
	loan := s.openLoan(t)
	_, env := s.do(t, http.MethodPost, "/api/loans/"+loan.ID+"/lines", gin.H{"assetItemId": laptopID})
	line := decode[models.LoanLine](t, env)

	code, env := s.do(t, http.MethodDelete, "/api/loans/"+loan.ID+"/lines/"+line.ID, nil)
	require.Equal(t, http.StatusOK, code, env.Error.Message)

	assert.Empty(t, decode[models.Loan](t, env).Lines)
	item, _ := s.store.AssetItem(laptopID)
	assert.Equal(t, models.AssetInStock, item.Status)

	code, env = s.do(t, http.MethodDelete, "/api/loans/"+loan.ID+"/lines/"+line.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NotFound", env.Error.Kind)
}

func Test_LoanRoutes_GetAndList(t *testing.T) {
	s := newServer(t)
	loan := s.openLoan(t)

	code, env := s.do(t, http.MethodGet, "/api/loans/"+loan.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, loan.ID, decode[models.Loan](t, env).ID)

	code, env = s.do(t, http.MethodGet, "/api/loans?status=open", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]models.Loan](t, env), 1)

	code, env = s.do(t, http.MethodGet, "/api/loans?status=closed", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]models.Loan](t, env))

	code, env = s.do(t, http.MethodGet, "/api/loans?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ValidationError", env.Error.Kind)

	code, env = s.do(t, http.MethodGet, "/api/loans/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NotFound", env.Error.Kind)
}

func Test_LoanRoutes_Open_UnknownEmployee(t *testing.T) {
	s := newServer(t)

	code, env := s.do(t, http.MethodPost, "/api/loans", gin.H{"employeeId": "nobody"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NotFound", env.Error.Kind)

	code, env = s.do(t, http.MethodPost, "/api/loans", gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ValidationError", env.Error.Kind)
}

func Test_LoanRoutes_Sign_RejectsBadUploads(t *testing.T) {
	s := newServer(t)
	loan := s.openLoan(t)

	code, env := s.upload(t, "/api/loans/"+loan.ID+"/signatures/pickup", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ValidationError", env.Error.Kind)

	code, env = s.upload(t, "/api/loans/"+loan.ID+"/signatures/pickup", []byte("plain text, not an image"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ValidationError", env.Error.Kind)

	stored, _ := s.store.Loan(loan.ID)
	assert.Nil(t, stored.PickupSignatureURL)
}

func Test_LoanRoutes_BulkDelete(t *testing.T) {
	s := newServer(t)
	a := s.openLoan(t)
	b := s.openLoan(t)
	s.do(t, http.MethodPost, "/api/loans/"+a.ID+"/lines", gin.H{"assetItemId": laptopID})
	s.do(t, http.MethodPost, "/api/loans/"+b.ID+"/lines", gin.H{"stockItemId": cablesID, "quantity": 4})

	code, env := s.do(t, http.MethodPost, "/api/loans/bulk-delete", gin.H{"ids": []string{a.ID, b.ID}})
	require.Equal(t, http.StatusOK, code, env.Error.Message)
	assert.Equal(t, 2, decode[map[string]int](t, env)["deleted"])

	item, _ := s.store.AssetItem(laptopID)
	assert.Equal(t, models.AssetInStock, item.Status)
	stock, _ := s.store.StockItem(cablesID)
	assert.Equal(t, 0, stock.Loaned)

	code, env = s.do(t, http.MethodPost, "/api/loans/bulk-delete", gin.H{"ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ValidationError", env.Error.Kind)

	code, env = s.do(t, http.MethodPost, "/api/loans/bulk-delete", gin.H{"ids": []string{a.ID}})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NotFound", env.Error.Kind)
}

func Test_LoanRoutes_ActorIsAudited(t *testing.T) {
	s := newServer(t)

	loan := s.openLoan(t)

	audits := s.effects.Audits()
	require.NotEmpty(t, audits)
	assert.Equal(t, loan.ID, audits[0].RecordID)
	assert.Equal(t, clerk, audits[0].ActorID)
}

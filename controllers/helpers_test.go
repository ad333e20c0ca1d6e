package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"Gin_postgres_redis_loan_inventory/app"
	"Gin_postgres_redis_loan_inventory/controllers"
	"Gin_postgres_redis_loan_inventory/db"
	"Gin_postgres_redis_loan_inventory/loans"
	"Gin_postgres_redis_loan_inventory/loans/loanstest"
	"Gin_postgres_redis_loan_inventory/models"
	"Gin_postgres_redis_loan_inventory/routes"
	"Gin_postgres_redis_loan_inventory/signature"
)

const (
	employeeID = "emp-1"
	laptopID   = "asset-laptop"
	cablesID   = "stock-cables"
	clerk      = "clerk-9"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

type server struct {
	router  *gin.Engine
	store   *loanstest.Store
	effects *loanstest.Effects
	catalog *fakeCatalog
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := loanstest.NewStore()
	store.AddEmployee(models.Employee{ID: employeeID, FirstName: "Ada", LastName: "Lovelace"})
	store.AddAssetItem(models.AssetItem{ID: laptopID, Tag: "LAP-001", AssetModelID: "model-laptop"})
	store.AddStockItem(models.StockItem{ID: cablesID, Quantity: 10, AssetModelID: "model-cable"})

	sigs, err := signature.NewFileStore(t.TempDir(), "/uploads/signatures")
	require.NoError(t, err)

	effects := &loanstest.Effects{}
	catalog := &fakeCatalog{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := controllers.NewSrv(loans.NewService(store, sigs, effects), catalog, effects, logger)

	r := gin.New()
	routes.Register(r, srv, func(c *gin.Context) { c.Next() })
	return &server{router: r, store: store, effects: effects, catalog: catalog}
}

func (s *server) do(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(app.ActorHeader, clerk)
	return s.serve(t, req)
}

func (s *server) upload(t *testing.T, path string, image []byte) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if image != nil {
		fw, err := mw.CreateFormFile("signature", "signature.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(app.ActorHeader, clerk)
	return s.serve(t, req)
}

func (s *server) serve(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func (s *server) openLoan(t *testing.T) models.Loan {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/loans", gin.H{"employeeId": employeeID})
	require.Equal(t, http.StatusCreated, code, env.Error.Message)
	return decode[models.Loan](t, env)
}

func pngImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(2, 3, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fakeCatalog 只实现测试用到的部分
type fakeCatalog struct {
	mu        sync.Mutex
	employees []models.Employee
	listErr   error
}

func (f *fakeCatalog) CreateEmployee(_ context.Context, e *models.Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.employees {
		if e.Email != nil && x.Email != nil && *x.Email == *e.Email {
			return db.ErrDuplicate
		}
	}
	e.ID = "emp-new"
	f.employees = append(f.employees, *e)
	return nil
}

func (f *fakeCatalog) ListEmployees(context.Context, string) ([]models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Employee{}, f.employees...), nil
}

func (f *fakeCatalog) DeleteEmployee(_ context.Context, id string) (*models.Employee, error) {
	if id == employeeID {
		return nil, db.ErrInUse
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.employees {
		if e.ID == id {
			f.employees = append(f.employees[:i], f.employees[i+1:]...)
			return &e, nil
		}
	}
	return nil, errors.Join(loans.ErrNotFound, errors.New("employee "+id))
}

func (f *fakeCatalog) CreateAssetModel(context.Context, *models.AssetModel) error { return nil }
func (f *fakeCatalog) ListAssetModels(context.Context) ([]models.AssetModel, error) {
	return []models.AssetModel{}, nil
}
func (f *fakeCatalog) CreateAssetItem(context.Context, *models.AssetItem) error { return nil }
func (f *fakeCatalog) ListAssetItemsWithCurrentLoan(context.Context, db.AdminItemsQuery) ([]db.AdminItemRow, error) {
	return []db.AdminItemRow{}, nil
}
func (f *fakeCatalog) CreateStockItem(_ context.Context, it *models.StockItem) error {
	it.ID = "stock-new"
	return nil
}
func (f *fakeCatalog) ListStockItems(context.Context) ([]models.StockItem, error) {
	return []models.StockItem{}, nil
}
func (f *fakeCatalog) ListAuditLogs(context.Context, db.AuditQuery) ([]models.AuditLog, error) {
	return []models.AuditLog{}, nil
}

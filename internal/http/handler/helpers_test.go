package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/autoline-panel/shop-api/internal/auth"
	"github.com/autoline-panel/shop-api/internal/config"
	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/autoline-panel/shop-api/internal/http/handler"
	"github.com/autoline-panel/shop-api/internal/repository"
	"github.com/autoline-panel/shop-api/internal/service"
	"github.com/autoline-panel/shop-api/internal/storage"
	"github.com/autoline-panel/shop-api/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testUploadBaseURL = "http://localhost:8080/api/uploads"

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

// testServer mounts the shop handlers the way the API router does, without
// the auth and rate limit middleware
type testServer struct {
	db        *gorm.DB
	router    chi.Router
	authSvc   *service.AuthService
	documents *service.DocumentService
	quotes    *service.QuoteService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	db := testutil.SetupTestDB(t)

	store, err := storage.NewLocalStorage(t.TempDir(), testUploadBaseURL)
	require.NoError(t, err)

	authCfg := &config.AuthConfig{JWTSecret: "test-secret", Issuer: "shop-api-test", TokenTTL: 60}
	shop := &config.ShopConfig{
		Name:              "AutoLine Panel Shop",
		Phone:             "011 555 0100",
		BankName:          "First National Bank",
		AccountName:       "AutoLine Panel Shop",
		AccountNumber:     "62000000000",
		BranchCode:        "250655",
		QuoteValidityDays: 30,
		WarrantyMonths:    12,
	}

	uploadRepo := repository.NewUploadRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	activities := service.NewActivityService(repository.NewActivityRepository(db), logger)
	numbers := service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), logger)

	authSvc := service.NewAuthService(repository.NewAdminUserRepository(db), auth.NewTokenManager(authCfg), logger)
	uploadSvc := service.NewUploadService(uploadRepo, store, 1<<20, 5, logger)
	quoteSvc := service.NewQuoteService(quoteRepo, uploadRepo, activities, 5, logger)
	documentSvc := service.NewDocumentService(db, repository.NewDocumentRepository(db), quoteRepo, numbers, activities, logger)

	authHandler := handler.NewAuthHandler(authSvc, logger)
	uploadHandler := handler.NewUploadHandler(uploadSvc, 1<<20, 5, logger)
	quoteHandler := handler.NewQuoteHandler(quoteSvc, uploadHandler, logger)
	documentHandler := handler.NewDocumentHandler(documentSvc, shop, logger)

	r := chi.NewRouter()
	r.Post("/api/quotes", quoteHandler.Create)
	r.Post("/api/uploads", uploadHandler.Upload)
	r.Get("/api/uploads/*", uploadHandler.Serve)
	r.Post("/api/admin/login", authHandler.Login)
	r.Get("/api/admin/me", authHandler.Me)
	r.Get("/api/admin/quotes", quoteHandler.List)
	r.Get("/api/admin/quotes/{id}", quoteHandler.GetByID)
	r.Put("/api/admin/quotes/{id}/status", quoteHandler.UpdateStatus)
	r.Get("/api/admin/quotes/{id}/activities", quoteHandler.GetActivities)
	r.Get("/api/admin/invoices", documentHandler.List)
	r.Post("/api/admin/invoices", documentHandler.Create)
	r.Get("/api/admin/invoices/{id}", documentHandler.GetByID)
	r.Put("/api/admin/invoices/{id}", documentHandler.Update)
	r.Delete("/api/admin/invoices/{id}", documentHandler.Delete)
	r.Post("/api/admin/invoices/{id}/convert", documentHandler.Convert)
	r.Get("/api/admin/invoices/{id}/pdf", documentHandler.PDF)
	r.Get("/api/admin/invoices/{id}/activities", documentHandler.GetActivities)

	return &testServer{
		db:        db,
		router:    r,
		authSvc:   authSvc,
		documents: documentSvc,
		quotes:    quoteSvc,
	}
}

func adminContext() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Shop Admin",
		Email:       "admin@example.com",
		Kind:        auth.KindAdmin,
	})
}

// do sends a request as an authenticated admin
func (s *testServer) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body).WithContext(adminContext())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) doJSON(method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}
	return s.do(method, path, body, "application/json")
}

// envelope is the success body with its data left raw
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	require.Equal(t, "success", env.Status)
	require.NoError(t, json.Unmarshal(env.Data, target))
}

type problem struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors"`
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) problem {
	t.Helper()
	require.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	var p problem
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p), rr.Body.String())
	return p
}

type formFile struct {
	name string
	data []byte
}

// multipartBody builds a form with text fields and files under "images"
func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile("images", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}


func amount(v int64) domain.Amount {
	return domain.NewAmount(decimal.NewFromInt(v))
}

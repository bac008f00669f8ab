package adminclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, data interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(domain.APIResponse{Status: "success", Data: data}))
}

func writeProblem(w http.ResponseWriter, status int, typ, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{Type: typ, Title: http.StatusText(status), Status: status, Detail: detail})
}

func newClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", NewSession())
}

func loggedIn(c *Client) *Client {
	c.Session().Set("token-1", time.Now().Add(time.Hour))
	return c
}

func TestClient_Login(t *testing.T) {
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/admin/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var req domain.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret" {
			writeProblem(w, http.StatusUnauthorized, domain.ErrorTypeUnauthorized, "Invalid email or password")
			return
		}
		writeEnvelope(t, w, http.StatusOK, domain.LoginResponse{
			Token:     "token-1",
			ExpiresAt: expires.Format(time.RFC3339),
			Admin:     domain.AdminUserDTO{Email: req.Email},
		})
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := c.Login(context.Background(), "admin@example.com", "nope")
		var apiErr *domain.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
		assert.Equal(t, "Invalid email or password", apiErr.Detail)
		assert.NotErrorIs(t, err, ErrUnauthorized, "login is not an authenticated call")
		assert.False(t, c.Session().Valid())
	})

	t.Run("ok", func(t *testing.T) {
		resp, err := c.Login(context.Background(), "admin@example.com", "secret")
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", resp.Admin.Email)

		token, err := c.Session().Token()
		require.NoError(t, err)
		assert.Equal(t, "token-1", token)
		assert.True(t, expires.Equal(c.Session().ExpiresAt()))
	})

	t.Run("logout", func(t *testing.T) {
		c.Logout()
		assert.False(t, c.Session().Valid())
	})
}

func TestClient_AuthenticatedCalls(t *testing.T) {
	id := uuid.New()
	c := loggedIn(newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/admin/quotes":
			assert.Equal(t, "contacted", r.URL.Query().Get("status"))
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Equal(t, "10", r.URL.Query().Get("pageSize"))
			writeEnvelope(t, w, http.StatusOK, domain.PaginatedResponse{
				Data:       []domain.QuoteDTO{{ID: id, Name: "Thabo", Status: domain.QuoteStatusContacted}},
				Total:      11,
				Page:       2,
				PageSize:   10,
				TotalPages: 2,
			})
		case "/api/admin/quotes/" + id.String() + "/status":
			var req domain.UpdateQuoteStatusRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			writeEnvelope(t, w, http.StatusOK, domain.QuoteDTO{ID: id, Status: domain.QuoteStatus(req.Status)})
		case "/api/admin/invoices/" + id.String():
			assert.Equal(t, http.MethodDelete, r.Method)
			w.WriteHeader(http.StatusNoContent)
		default:
			writeProblem(w, http.StatusNotFound, domain.ErrorTypeNotFound, "no route")
		}
	}))
	ctx := context.Background()

	page, err := c.ListQuotes(ctx, QuoteQuery{Status: domain.QuoteStatusContacted, Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(11), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Thabo", page.Data[0].Name)

	quote, err := c.UpdateQuoteStatus(ctx, id, domain.QuoteStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusCompleted, quote.Status)

	require.NoError(t, c.DeleteDocument(ctx, id))

	_, err = c.GetQuote(ctx, id)
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, domain.ErrorTypeNotFound, apiErr.Type)
}

func TestClient_Unauthorized(t *testing.T) {
	calls := 0
	c := loggedIn(newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeProblem(w, http.StatusUnauthorized, domain.ErrorTypeUnauthorized, "token expired")
	}))

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, c.Session().Valid(), "session is cleared")

	_, err = c.Me(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, calls, "no request without a token")
}

func TestClient_ConvertDocument(t *testing.T) {
	id := uuid.New()
	var bodies []string
	c := loggedIn(newClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		writeEnvelope(t, w, http.StatusCreated, domain.DocumentDTO{ID: uuid.New(), DocumentType: domain.DocumentTypeInvoice})
	}))

	doc, err := c.ConvertDocument(context.Background(), id, "")
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentTypeInvoice, doc.DocumentType)

	_, err = c.ConvertDocument(context.Background(), id, domain.DocumentTypeQuote)
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	assert.Empty(t, bodies[0])
	assert.JSONEq(t, `{"target_type":"quote"}`, bodies[1])
}

func TestClient_DocumentPDF(t *testing.T) {
	id := uuid.New()
	c := loggedIn(newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "attachment", r.URL.Query().Get("disposition"))
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="INV-2026-0001.pdf"`)
		_, _ = w.Write([]byte("%PDF-1.3"))
	}))

	file, err := c.DocumentPDF(context.Background(), id, "attachment")
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0001.pdf", file.Filename)
	assert.Equal(t, []byte("%PDF-1.3"), file.Data)
}

func TestClient_UploadImages(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		files := r.MultipartForm.File["images"]
		assert.Len(t, files, 2)

		out := make([]domain.UploadDTO, len(files))
		for i, f := range files {
			out[i] = domain.UploadDTO{ID: uuid.New(), Filename: f.Filename, Size: f.Size, URL: "http://shop/api/uploads/" + f.Filename}
		}
		writeEnvelope(t, w, http.StatusCreated, out)
	})

	uploads, err := c.UploadImages(context.Background(), []UploadFile{
		{Name: "front.jpg", Data: []byte("a")},
		{Name: "side.jpg", Data: []byte("bb")},
	})
	require.NoError(t, err)
	require.Len(t, uploads, 2)
	assert.Equal(t, "front.jpg", uploads[0].Filename)
	assert.Equal(t, int64(2), uploads[1].Size)
}

func TestClient_SubmitQuoteValidation(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(domain.APIError{
			Type:   domain.ErrorTypeValidation,
			Title:  "Validation Failed",
			Status: http.StatusBadRequest,
			Errors: map[string]string{"phone": "This field is required"},
		})
	})

	_, err := c.SubmitQuote(context.Background(), &domain.CreateQuoteRequest{Name: "Thabo"})
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
	assert.Contains(t, apiErr.Errors, "phone")
}

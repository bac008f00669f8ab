package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/google/uuid"
)

// ErrUnauthorized is returned when the API rejects the session; the session
// is cleared before it is returned
var ErrUnauthorized = errors.New("unauthorized")

const defaultTimeout = 15 * time.Second

// Page is one page of a list endpoint
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// DocumentQuery filters the document list; zero values are omitted
type DocumentQuery struct {
	Type     domain.DocumentType
	Status   domain.InvoiceStatus
	Search   string
	Page     int
	PageSize int
}

func (q DocumentQuery) values() url.Values {
	v := url.Values{}
	if q.Type != "" {
		v.Set("type", string(q.Type))
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	setPaging(v, q.Page, q.PageSize)
	return v
}

// QuoteQuery filters the quote request list
type QuoteQuery struct {
	Status   domain.QuoteStatus
	Search   string
	Page     int
	PageSize int
}

func (q QuoteQuery) values() url.Values {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	setPaging(v, q.Page, q.PageSize)
	return v
}

func setPaging(v url.Values, page, pageSize int) {
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		v.Set("pageSize", strconv.Itoa(pageSize))
	}
}

// UploadFile is an image sent to the public upload endpoint
type UploadFile struct {
	Name string
	Data []byte
}

// PDFFile is a rendered document
type PDFFile struct {
	Filename string
	Data     []byte
}

// Client calls the shop API
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

// NewClient creates a client for the API at baseURL, e.g. "https://api.example.com/api"
func NewClient(baseURL string, session *Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		session: session,
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Session returns the session the client authenticates with
func (c *Client) Session() *Session {
	return c.session
}

// Login exchanges credentials for a token and stores it in the session
func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	var resp domain.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/admin/login", nil, &domain.LoginRequest{Email: email, Password: password}, false, &resp)
	if err != nil {
		return nil, err
	}

	expiresAt, err := time.Parse(time.RFC3339, resp.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("invalid token expiry %q: %w", resp.ExpiresAt, err)
	}
	c.session.Set(resp.Token, expiresAt)
	return &resp, nil
}

// Logout drops the session; tokens are stateless so the server is not called
func (c *Client) Logout() {
	c.session.Clear()
}

func (c *Client) Me(ctx context.Context) (*domain.AdminUserDTO, error) {
	var me domain.AdminUserDTO
	if err := c.doJSON(ctx, http.MethodGet, "/admin/me", nil, nil, true, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// Public endpoints

func (c *Client) SubmitQuote(ctx context.Context, req *domain.CreateQuoteRequest) (*domain.QuoteDTO, error) {
	var quote domain.QuoteDTO
	if err := c.doJSON(ctx, http.MethodPost, "/quotes", nil, req, false, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// UploadImages sends images as one multipart request and returns their URLs
func (c *Client) UploadImages(ctx context.Context, files []UploadFile) ([]domain.UploadDTO, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, f := range files {
		part, err := mw.CreateFormFile("images", f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to build upload: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("failed to build upload: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	var uploads []domain.UploadDTO
	if err := c.do(ctx, http.MethodPost, "/uploads", nil, body, mw.FormDataContentType(), false, &uploads); err != nil {
		return nil, err
	}
	return uploads, nil
}

// Quote requests

func (c *Client) ListQuotes(ctx context.Context, q QuoteQuery) (*Page[domain.QuoteDTO], error) {
	var page Page[domain.QuoteDTO]
	if err := c.doJSON(ctx, http.MethodGet, "/admin/quotes", q.values(), nil, true, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetQuote(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	var quote domain.QuoteDTO
	if err := c.doJSON(ctx, http.MethodGet, "/admin/quotes/"+id.String(), nil, nil, true, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (c *Client) UpdateQuoteStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) (*domain.QuoteDTO, error) {
	var quote domain.QuoteDTO
	req := &domain.UpdateQuoteStatusRequest{Status: string(status)}
	if err := c.doJSON(ctx, http.MethodPut, "/admin/quotes/"+id.String()+"/status", nil, req, true, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (c *Client) QuoteActivities(ctx context.Context, id uuid.UUID) ([]domain.ActivityDTO, error) {
	var activities []domain.ActivityDTO
	if err := c.doJSON(ctx, http.MethodGet, "/admin/quotes/"+id.String()+"/activities", nil, nil, true, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// Documents

func (c *Client) ListDocuments(ctx context.Context, q DocumentQuery) (*Page[domain.DocumentDTO], error) {
	var page Page[domain.DocumentDTO]
	if err := c.doJSON(ctx, http.MethodGet, "/admin/invoices", q.values(), nil, true, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetDocument(ctx context.Context, id uuid.UUID) (*domain.DocumentDTO, error) {
	var doc domain.DocumentDTO
	if err := c.doJSON(ctx, http.MethodGet, "/admin/invoices/"+id.String(), nil, nil, true, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) CreateDocument(ctx context.Context, req *domain.CreateDocumentRequest) (*domain.DocumentDTO, error) {
	var doc domain.DocumentDTO
	if err := c.doJSON(ctx, http.MethodPost, "/admin/invoices", nil, req, true, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) UpdateDocument(ctx context.Context, id uuid.UUID, req *domain.UpdateDocumentRequest) (*domain.DocumentDTO, error) {
	var doc domain.DocumentDTO
	if err := c.doJSON(ctx, http.MethodPut, "/admin/invoices/"+id.String(), nil, req, true, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	return c.doJSON(ctx, http.MethodDelete, "/admin/invoices/"+id.String(), nil, nil, true, nil)
}

// ConvertDocument creates a document of the target kind; an empty target means the opposite kind
func (c *Client) ConvertDocument(ctx context.Context, id uuid.UUID, target domain.DocumentType) (*domain.DocumentDTO, error) {
	var body interface{}
	if target != "" {
		body = &domain.ConvertDocumentRequest{TargetType: target}
	}
	var doc domain.DocumentDTO
	if err := c.doJSON(ctx, http.MethodPost, "/admin/invoices/"+id.String()+"/convert", nil, body, true, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) DocumentActivities(ctx context.Context, id uuid.UUID) ([]domain.ActivityDTO, error) {
	var activities []domain.ActivityDTO
	if err := c.doJSON(ctx, http.MethodGet, "/admin/invoices/"+id.String()+"/activities", nil, nil, true, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// DocumentPDF downloads the rendered document. disposition is "inline" or "attachment".
func (c *Client) DocumentPDF(ctx context.Context, id uuid.UUID, disposition string) (*PDFFile, error) {
	query := url.Values{}
	if disposition != "" {
		query.Set("disposition", disposition)
	}

	resp, err := c.send(ctx, http.MethodGet, "/admin/invoices/"+id.String()+"/pdf", query, nil, "", true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}

	file := &PDFFile{Data: data}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		file.Filename = params["filename"]
	}
	return file, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in interface{}, authenticated bool, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, query, body, contentType, authenticated, out)
}

// do sends the request and unwraps the success envelope into out
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, authenticated bool, out interface{}) error {
	resp, err := c.send(ctx, method, path, query, body, contentType, authenticated)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// send performs the request and turns error statuses into errors. The caller
// closes the body of a successful response.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, authenticated bool) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	if authenticated {
		token, err := c.session.Token()
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}

	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}
	defer resp.Body.Close()

	problem := &domain.APIError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}
	_ = json.NewDecoder(resp.Body).Decode(problem)

	if resp.StatusCode == http.StatusUnauthorized && authenticated {
		c.session.Clear()
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, problem.Error())
	}
	return nil, problem
}

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/pos/internal/config"
	"github.com/mamadbah2/pos/internal/domain/models"
)

const unauthenticatedMessage = "Unauthenticated."

// TokenStore is the key-value store holding the cashier credentials.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// Client exposes the commerce backend operations used by the terminal.
type Client interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	FetchProducts(ctx context.Context) ([]models.Product, error)
	DocumentTypes(ctx context.Context) ([]models.DocumentType, error)
	FindCustomer(ctx context.Context, documentType, documentNumber string) (*models.Customer, error)
	CreateQuotation(ctx context.Context, req models.QuotationRequest, idempotencyKey string) (*models.QuotationResult, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	tokens     TokenStore
	logger     *zap.Logger
}

// NewClient builds a backend client using the provided configuration values.
func NewClient(cfg config.BackendConfig, tokens TokenStore, logger *zap.Logger) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &APIClient{
		httpClient: restyClient,
		tokens:     tokens,
		logger:     logger,
	}
}

// apiError is the error payload returned by the backend.
type apiError struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// Login exchanges credentials for a token and stores it with the cashier name.
func (c *APIClient) Login(ctx context.Context, email, password string) (*models.Session, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post("/login")
	if err := c.check(ctx, resp, err, "login"); err != nil {
		return nil, err
	}

	var body loginResponse
	if err := decode(resp, &body); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if body.Data == nil || body.Data.Token == "" {
		message := body.Message
		if message == "" {
			message = "login failed"
		}
		return nil, models.NewAuthError(message)
	}

	if err := c.tokens.Set(ctx, models.TokenKey, body.Data.Token); err != nil {
		return nil, fmt.Errorf("store auth token: %w", err)
	}
	if err := c.tokens.Set(ctx, models.UserNameKey, body.Data.User.FirstName); err != nil {
		return nil, fmt.Errorf("store user name: %w", err)
	}

	c.logger.Info("cashier logged in", zap.Int("user_id", body.Data.User.ID))
	return body.Data.toModel(), nil
}

// FetchProducts returns the whole product catalog.
func (c *APIClient) FetchProducts(ctx context.Context) ([]models.Product, error) {
	req, err := c.authorized(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := req.Get("/products")
	if err := c.check(ctx, resp, err, "fetch products"); err != nil {
		return nil, err
	}

	var body productResponse
	if err := decode(resp, &body); err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}

	products := make([]models.Product, 0, len(body.Data))
	for _, resource := range body.Data {
		products = append(products, resource.toModel())
	}

	c.logger.Debug("products fetched", zap.Int("count", len(products)))
	return products, nil
}

// DocumentTypes lists the identity document kinds known to the backend.
func (c *APIClient) DocumentTypes(ctx context.Context) ([]models.DocumentType, error) {
	req, err := c.authorized(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := req.Get("/document-types")
	if err := c.check(ctx, resp, err, "fetch document types"); err != nil {
		return nil, err
	}

	var types []models.DocumentType
	if err := decode(resp, &types); err != nil {
		return nil, fmt.Errorf("fetch document types: %w", err)
	}
	return types, nil
}

// FindCustomer resolves a customer by document. It returns
// models.ErrCustomerNotFound when the directory has no match.
func (c *APIClient) FindCustomer(ctx context.Context, documentType, documentNumber string) (*models.Customer, error) {
	req, err := c.authorized(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := req.
		SetQueryParam("filter[document_type]", documentType).
		SetQueryParam("filter[document_number]", documentNumber).
		Get("/customers")
	if resp != nil && resp.StatusCode() == http.StatusNotFound {
		return nil, models.ErrCustomerNotFound
	}
	if err := c.check(ctx, resp, err, "find customer"); err != nil {
		return nil, err
	}

	var body customerResponse
	if err := decode(resp, &body); err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}

	for _, resource := range body.Data {
		if resource.Attributes.DocumentNumber == documentNumber {
			customer := resource.toModel()
			return &customer, nil
		}
	}
	return nil, models.ErrCustomerNotFound
}

// CreateQuotation submits a quotation. The idempotency key lets the backend
// drop replays of the same submission.
func (c *APIClient) CreateQuotation(ctx context.Context, quotation models.QuotationRequest, idempotencyKey string) (*models.QuotationResult, error) {
	req, err := c.authorized(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("submitting quotation",
		zap.String("idempotency_key", idempotencyKey),
		zap.Int("items", len(quotation.Items)),
		zap.Float64("grand_total", quotation.GrandTotal))

	resp, err := req.
		SetHeader("Idempotency-Key", idempotencyKey).
		SetBody(quotation).
		Post("/quotations")
	if err := c.check(ctx, resp, err, "create quotation"); err != nil {
		return nil, err
	}

	var body quotationResponse
	if err := decode(resp, &body); err != nil {
		return nil, fmt.Errorf("create quotation: %w", err)
	}
	if body.Data.ID == 0 {
		return nil, models.NewServerError(resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	return &models.QuotationResult{
		ID:            body.Data.ID,
		ReferenceCode: body.Data.Attributes.ReferenceCode,
	}, nil
}

func (c *APIClient) authorized(ctx context.Context) (*resty.Request, error) {
	token, ok, err := c.tokens.Get(ctx, models.TokenKey)
	if err != nil {
		return nil, fmt.Errorf("read auth token: %w", err)
	}
	if !ok || token == "" {
		return nil, models.NewAuthError("no authentication token, please log in")
	}
	return c.httpClient.R().SetContext(ctx).SetAuthToken(token), nil
}

// check converts transport failures and non-success responses into typed
// errors. Authentication failures drop the stored credentials.
func (c *APIClient) check(ctx context.Context, resp *resty.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, models.NewTransportError(err))
	}
	if resp.IsSuccess() {
		return nil
	}

	message := errorMessage(resp)
	if resp.StatusCode() == http.StatusUnauthorized || message == unauthenticatedMessage {
		if rmErr := c.tokens.Remove(ctx, models.TokenKey, models.UserNameKey); rmErr != nil {
			c.logger.Error("failed to clear auth token", zap.Error(rmErr))
		}
		c.logger.Warn("backend rejected credentials", zap.String("op", op))
		return models.NewAuthError(message)
	}

	c.logger.Warn("backend request failed",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode()),
		zap.String("message", message))
	return models.NewServerError(resp.StatusCode(), message)
}

// errorMessage prefers the server supplied message, then the raw body, then
// the status text.
func errorMessage(resp *resty.Response) string {
	raw := strings.TrimSpace(resp.String())

	var body apiError
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Message != "" {
		return body.Message
	}
	if raw != "" {
		return raw
	}
	return strconv.Itoa(resp.StatusCode()) + " " + http.StatusText(resp.StatusCode())
}

func decode(resp *resty.Response, out any) error {
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return models.NewServerError(resp.StatusCode(), fmt.Sprintf("malformed response body: %v", err))
	}
	return nil
}

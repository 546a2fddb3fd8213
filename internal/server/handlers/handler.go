package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pos/internal/domain/models"
	"github.com/mamadbah2/pos/internal/service/checkout"
)

// SessionService manages the cashier login.
type SessionService interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Logout(ctx context.Context) error
	LoggedIn(ctx context.Context) (bool, error)
	UserName(ctx context.Context) (string, error)
}

// Catalog exposes the cached products.
type Catalog interface {
	Refresh(ctx context.Context) error
	All() []models.Product
	Search(query string) []models.Product
	Product(id int) (models.Product, error)
	RefreshedAt() time.Time
}

// Cart is the mutable sale being built.
type Cart interface {
	AddProduct(product models.Product)
	Increment(productID int) bool
	Decrement(productID int) bool
	Clear()
	SelectReceipt(receipt models.ReceiptType) error
	ClearReceipt()
	Snapshot() models.CartSnapshot
	Subscribe() (<-chan models.CartSnapshot, func())
}

// DocumentTypeSource lists identity document kinds.
type DocumentTypeSource interface {
	DocumentTypes(ctx context.Context) ([]models.DocumentType, error)
}

// CustomerLookup resolves the buyer from document input.
type CustomerLookup interface {
	SetQuery(query models.CustomerQuery)
	Query() models.CustomerQuery
	Customer() (*models.Customer, bool)
	Loading() bool
	Assign(customer models.Customer)
	Reset()
}

// Checkout submits the cart.
type Checkout interface {
	Submit(ctx context.Context, payment models.Payment) (models.CheckoutResult, error)
	State() models.CheckoutState
	ConsumeReference() (string, bool)
	AcknowledgeFailure() bool
}

// DailyReports aggregates the sales journal.
type DailyReports interface {
	DailySummary(ctx context.Context, day time.Time) (models.DailyReport, error)
}

// Dependencies groups the services served over HTTP. Reports is optional.
type Dependencies struct {
	Session       SessionService
	Catalog       Catalog
	Cart          Cart
	DocumentTypes DocumentTypeSource
	Customers     CustomerLookup
	Checkout      Checkout
	Reports       DailyReports
	Location      *time.Location
}

// Handler adapts the terminal services to HTTP.
type Handler struct {
	deps   Dependencies
	logger *zap.Logger
}

// New constructs the HTTP handler adapter.
func New(deps Dependencies, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	return &Handler{deps: deps, logger: logger}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	session := r.Group("/session")
	session.GET("", h.SessionStatus)
	session.POST("/login", h.Login)
	session.POST("/logout", h.Logout)

	r.GET("/products", h.ListProducts)
	r.POST("/products/refresh", h.RefreshProducts)
	r.GET("/document-types", h.ListDocumentTypes)

	cart := r.Group("/cart")
	cart.GET("", h.GetCart)
	cart.DELETE("", h.ClearCart)
	cart.GET("/stream", h.StreamCart)
	cart.POST("/items", h.AddItem)
	cart.POST("/items/:id/increment", h.IncrementItem)
	cart.POST("/items/:id/decrement", h.DecrementItem)
	cart.PUT("/receipt", h.SelectReceipt)
	cart.DELETE("/receipt", h.ClearReceipt)

	sale := r.Group("/checkout")
	sale.GET("", h.CheckoutState)
	sale.POST("", h.Submit)
	sale.GET("/customer", h.GetCustomer)
	sale.PUT("/customer", h.SetCustomerQuery)
	sale.POST("/customer", h.AssignCustomer)
	sale.DELETE("/customer", h.ResetCustomer)
	sale.POST("/consume", h.ConsumeReference)
	sale.POST("/acknowledge", h.AcknowledgeFailure)

	r.GET("/reports/daily", h.DailyReport)
}

// statusFor maps an error onto the HTTP status returned to the front end.
func statusFor(err error) int {
	switch {
	case errors.Is(err, checkout.ErrSubmitInProgress):
		return http.StatusConflict
	case errors.Is(err, models.ErrUnknownProduct):
		return http.StatusNotFound
	case models.IsKind(err, models.KindValidation):
		return http.StatusBadRequest
	case models.IsKind(err, models.KindAuth):
		return http.StatusUnauthorized
	case models.IsKind(err, models.KindTransport), models.IsKind(err, models.KindServer):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": models.Message(err)})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

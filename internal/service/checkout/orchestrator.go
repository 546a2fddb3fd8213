package checkout

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/pos/internal/config"
	"github.com/mamadbah2/pos/internal/domain/models"
)

const (
	dateLayout = "2006-01-02"

	// Placeholder line item fields expected by the quotations endpoint.
	taxTypeExclusive      = 2
	discountTypeFixed     = 2
	defaultSaleUnit       = 1
	walkInCustomerDisplay = "Walk-in"
)

// ErrSubmitInProgress is returned when a submission is already running.
var ErrSubmitInProgress = errors.New("checkout already in progress")

// Cart is the part of the cart store the orchestrator depends on.
type Cart interface {
	Snapshot() models.CartSnapshot
	ClearIfUnchanged(version uint64) bool
	ClearReceipt()
}

// Submitter sends quotations to the backend.
type Submitter interface {
	CreateQuotation(ctx context.Context, req models.QuotationRequest, idempotencyKey string) (*models.QuotationResult, error)
}

// CustomerSource provides the customer resolved for the sale, if any.
type CustomerSource interface {
	Customer() (*models.Customer, bool)
	Reset()
}

// SaleRecorder journals completed sales.
type SaleRecorder interface {
	RecordSale(ctx context.Context, record models.SaleRecord) error
}

// Orchestrator turns the cart into a quotation and tracks the outcome through
// Idle -> Submitting -> Succeeded|Failed -> Idle.
type Orchestrator struct {
	cart      Cart
	submitter Submitter
	customers CustomerSource
	recorder  SaleRecorder
	cfg       config.SalesConfig
	logger    *zap.Logger
	now       func() time.Time
	newKey    func() string

	mu    sync.Mutex
	state models.CheckoutState
}

// NewOrchestrator wires the checkout flow. customers and recorder are optional.
func NewOrchestrator(cart Cart, submitter Submitter, customers CustomerSource, recorder SaleRecorder, cfg config.SalesConfig, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cart:      cart,
		submitter: submitter,
		customers: customers,
		recorder:  recorder,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		newKey:    uuid.NewString,
		state:     models.CheckoutState{Status: models.CheckoutIdle},
	}
}

// Submit sends the current cart. An empty cart or a submission already in
// flight is rejected without touching the network. Backend failures do not
// produce an error: they move the orchestrator to Failed and are reported in
// the returned result.
func (o *Orchestrator) Submit(ctx context.Context, payment models.Payment) (models.CheckoutResult, error) {
	o.mu.Lock()
	if o.state.Status == models.CheckoutSubmitting {
		o.mu.Unlock()
		return models.CheckoutResult{}, models.NewValidationError("a checkout is already being submitted", ErrSubmitInProgress)
	}

	snap := o.cart.Snapshot()
	if snap.Empty() {
		o.mu.Unlock()
		return models.CheckoutResult{}, models.NewValidationError("cannot check out an empty cart", models.ErrEmptyCart)
	}

	if payment.Cash.IsNegative() || payment.Card.IsNegative() {
		o.mu.Unlock()
		return models.CheckoutResult{}, models.NewValidationError("payment amounts must not be negative", nil)
	}

	o.state = models.CheckoutState{Status: models.CheckoutSubmitting}
	o.mu.Unlock()

	customer, hasCustomer := o.resolveCustomer()
	req := o.buildRequest(snap, payment, customer)
	key := o.newKey()

	o.logger.Info("submitting quotation",
		zap.String("idempotency_key", key),
		zap.Int("lines", len(req.Items)),
		zap.String("total", snap.Total.StringFixed(2)))

	res, err := o.submitter.CreateQuotation(ctx, req, key)
	if err != nil {
		message := models.Message(err)
		o.setState(models.CheckoutState{Status: models.CheckoutFailed, Message: message})
		o.logger.Warn("quotation submission failed", zap.String("idempotency_key", key), zap.Error(err))
		return models.CheckoutResult{Message: message, Total: snap.Total}, nil
	}

	reference := strconv.Itoa(res.ID)
	o.setState(models.CheckoutState{
		Status:        models.CheckoutSucceeded,
		ReferenceID:   reference,
		ReferenceCode: res.ReferenceCode,
	})
	o.logger.Info("quotation created", zap.String("reference_id", reference), zap.String("reference_code", res.ReferenceCode))

	if !o.cart.ClearIfUnchanged(snap.Version) {
		o.logger.Warn("cart changed during checkout, keeping it", zap.String("reference_id", reference))
	}
	// Receipt and buyer belong to the completed sale.
	o.cart.ClearReceipt()
	if o.customers != nil {
		o.customers.Reset()
	}

	o.record(ctx, snap, reference, customer, hasCustomer)

	return models.CheckoutResult{
		Succeeded:     true,
		ReferenceID:   reference,
		ReferenceCode: res.ReferenceCode,
		Total:         snap.Total,
		Change:        payment.Change(snap.Total),
	}, nil
}

// State returns the current checkout state.
func (o *Orchestrator) State() models.CheckoutState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// ConsumeReference hands out the reference of a successful submission exactly
// once and returns the orchestrator to Idle.
func (o *Orchestrator) ConsumeReference() (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Status != models.CheckoutSucceeded {
		return "", false
	}
	reference := o.state.ReferenceID
	o.state = models.CheckoutState{Status: models.CheckoutIdle}
	return reference, true
}

// AcknowledgeFailure clears a failure and returns to Idle.
func (o *Orchestrator) AcknowledgeFailure() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Status != models.CheckoutFailed {
		return false
	}
	o.state = models.CheckoutState{Status: models.CheckoutIdle}
	return true
}

func (o *Orchestrator) setState(state models.CheckoutState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = state
}

func (o *Orchestrator) resolveCustomer() (models.Customer, bool) {
	if o.customers != nil {
		if c, ok := o.customers.Customer(); ok && c.ID != 0 {
			return *c, true
		}
	}
	return models.Customer{ID: o.cfg.DefaultCustomerID}, false
}

func (o *Orchestrator) buildRequest(snap models.CartSnapshot, payment models.Payment, customer models.Customer) models.QuotationRequest {
	items := make([]models.QuotationItem, 0, len(snap.Lines))
	for _, line := range snap.Lines {
		price := line.Product.Price.InexactFloat64()
		items = append(items, models.QuotationItem{
			ProductID:    strconv.Itoa(line.Product.ID),
			Quantity:     line.Quantity,
			ProductPrice: price,
			NetUnitPrice: price,
			TaxType:      taxTypeExclusive,
			DiscountType: discountTypeFixed,
			SaleUnit:     defaultSaleUnit,
			SubTotal:     line.Subtotal().InexactFloat64(),
		})
	}

	req := models.QuotationRequest{
		Date:           o.now().Format(dateLayout),
		CustomerID:     customer.ID,
		WarehouseID:    o.cfg.WarehouseID,
		Status:         o.cfg.QuotationStatus,
		TaxRate:        snap.TaxRate.Mul(decimal.NewFromInt(100)).InexactFloat64(),
		TaxAmount:      snap.Tax.InexactFloat64(),
		GrandTotal:     snap.Total.InexactFloat64(),
		ReceivedAmount: payment.Received().InexactFloat64(),
		PaidAmount:     payment.Paid(snap.Total).InexactFloat64(),
		Items:          items,
	}
	if snap.Receipt != nil {
		req.Note = string(*snap.Receipt)
	}
	return req
}

func (o *Orchestrator) record(ctx context.Context, snap models.CartSnapshot, reference string, customer models.Customer, hasCustomer bool) {
	if o.recorder == nil {
		return
	}

	name := walkInCustomerDisplay
	if hasCustomer && customer.Name != "" {
		name = customer.Name
	}
	record := models.SaleRecord{
		Date:        o.now(),
		ReferenceID: reference,
		Customer:    name,
		Items:       snap.ItemCount,
		Tax:         snap.Tax,
		Total:       snap.Total,
	}
	if snap.Receipt != nil {
		record.Receipt = string(*snap.Receipt)
	}

	if err := o.recorder.RecordSale(context.WithoutCancel(ctx), record); err != nil {
		o.logger.Error("failed to journal sale", zap.String("reference_id", reference), zap.Error(err))
	}
}

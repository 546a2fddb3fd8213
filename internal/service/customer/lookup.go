// Package customer resolves the buyer of the current sale from a document
// number typed by the cashier.
package customer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/pos/internal/domain/models"
)

const (
	lookupTimeout    = 15 * time.Second
	notificationSize = 16
)

// Directory finds customers by identity document.
type Directory interface {
	FindCustomer(ctx context.Context, documentType, documentNumber string) (*models.Customer, error)
}

// Lookup debounces document input and resolves the matching customer. Every
// input restarts the debounce window; only the evaluation scheduled by the
// latest input runs. Results of lookups whose query is no longer current are
// discarded.
type Lookup struct {
	directory Directory
	window    time.Duration
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	query      models.CustomerQuery
	generation uint64
	timer      *time.Timer
	customer   *models.Customer
	inFlight   int
	closed     bool
	notices    chan string
}

// NewLookup creates a lookup flow with the given debounce window.
func NewLookup(directory Directory, window time.Duration, logger *zap.Logger) *Lookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Lookup{
		directory: directory,
		window:    window,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		notices:   make(chan string, notificationSize),
	}
}

// SetDocumentType selects the document kind. An empty type means none. A type
// change restarts the same debounce window as typing, so flipping between
// kinds issues at most one lookup.
func (l *Lookup) SetDocumentType(documentType string) {
	l.update(func(q *models.CustomerQuery) { q.DocumentType = documentType })
}

// SetDocumentNumber records the text typed so far.
func (l *Lookup) SetDocumentNumber(number string) {
	l.update(func(q *models.CustomerQuery) { q.DocumentNumber = number })
}

// SetQuery replaces both inputs at once.
func (l *Lookup) SetQuery(query models.CustomerQuery) {
	l.update(func(q *models.CustomerQuery) { *q = query })
}

// Query returns the current inputs.
func (l *Lookup) Query() models.CustomerQuery {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query
}

// Customer returns the resolved customer, if any.
func (l *Lookup) Customer() (*models.Customer, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.customer == nil {
		return nil, false
	}
	c := *l.customer
	return &c, true
}

// Loading reports whether a lookup is in flight.
func (l *Lookup) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight > 0
}

// Assign sets a customer registered outside the directory lookup.
func (l *Lookup) Assign(customer models.Customer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.customer = &customer
	l.notifyLocked(fmt.Sprintf("customer registered: %s", customer.Name))
}

// Reset clears the inputs and the resolved customer.
func (l *Lookup) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	if l.timer != nil {
		l.timer.Stop()
	}
	l.query = models.CustomerQuery{}
	l.customer = nil
}

// Notifications delivers one-shot messages meant for the cashier. Messages are
// dropped when nobody drains the channel.
func (l *Lookup) Notifications() <-chan string {
	return l.notices
}

// Wait blocks until in-flight lookups complete.
func (l *Lookup) Wait() {
	l.wg.Wait()
}

// Close stops pending evaluations, cancels in-flight lookups and closes the
// notification channel.
func (l *Lookup) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	if l.timer != nil {
		l.timer.Stop()
	}
	l.cancel()
	l.mu.Unlock()

	l.wg.Wait()

	l.mu.Lock()
	close(l.notices)
	l.mu.Unlock()
}

func (l *Lookup) update(apply func(q *models.CustomerQuery)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	apply(&l.query)
	l.generation++
	gen := l.generation

	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(l.window, func() { l.evaluate(gen) })
}

func (l *Lookup) evaluate(gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || gen != l.generation {
		return
	}

	query := l.query
	if !query.Ready() {
		l.customer = nil
		return
	}

	l.customer = nil
	l.inFlight++
	l.wg.Add(1)
	l.logger.Debug("customer lookup started",
		zap.String("document_type", query.DocumentType),
		zap.String("document_number", query.DocumentNumber))

	go l.lookup(query)
}

func (l *Lookup) lookup(query models.CustomerQuery) {
	defer l.wg.Done()

	ctx, cancel := context.WithTimeout(l.ctx, lookupTimeout)
	defer cancel()

	customer, err := l.directory.FindCustomer(ctx, query.DocumentType, query.DocumentNumber)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inFlight--

	if l.closed {
		return
	}
	if l.query != query {
		l.logger.Debug("discarding stale customer lookup", zap.String("document_number", query.DocumentNumber))
		return
	}

	switch {
	case err == nil && customer != nil:
		l.customer = customer
		l.notifyLocked(fmt.Sprintf("customer found: %s", customer.Name))
	case err == nil, errors.Is(err, models.ErrCustomerNotFound):
		l.customer = nil
		l.notifyLocked(fmt.Sprintf("no customer found for %s %s", query.DocumentType, query.DocumentNumber))
	default:
		l.customer = nil
		l.logger.Warn("customer lookup failed", zap.Error(err))
		l.notifyLocked(fmt.Sprintf("customer lookup failed: %s", models.Message(err)))
	}
}

func (l *Lookup) notifyLocked(message string) {
	if l.closed {
		return
	}
	select {
	case l.notices <- message:
	default:
		l.logger.Debug("notification dropped", zap.String("message", message))
	}
}

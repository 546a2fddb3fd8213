// Package cart holds the in-memory cart of the active sale session.
package cart

import (
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/pos/internal/domain/models"
)

// Store is the single source of truth for what is being purchased. Reads return
// immutable snapshots; mutations go through the exported operations only.
type Store struct {
	mu         sync.RWMutex
	taxRate    decimal.Decimal
	order      []int
	products   map[int]models.Product
	quantities map[int]int
	receipt    *models.ReceiptType
	version    uint64

	subscribers map[int]chan models.CartSnapshot
	nextSubID   int

	logger *zap.Logger
}

// NewStore creates an empty cart that computes tax with taxRate.
func NewStore(taxRate decimal.Decimal, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		taxRate:     taxRate,
		products:    make(map[int]models.Product),
		quantities:  make(map[int]int),
		subscribers: make(map[int]chan models.CartSnapshot),
		logger:      logger,
	}
}

// AddProduct appends a new line at quantity 1, or bumps the quantity of the
// line already holding this product.
func (s *Store) AddProduct(product models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quantities[product.ID]; !ok {
		s.order = append(s.order, product.ID)
		s.products[product.ID] = product
	}
	s.quantities[product.ID]++

	s.logger.Debug("product added", zap.Int("product_id", product.ID), zap.Int("quantity", s.quantities[product.ID]))
	s.publishLocked()
}

// Increment adds one unit to an existing line. It returns false and changes
// nothing when the product is not in the cart.
func (s *Store) Increment(productID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quantities[productID]; !ok {
		return false
	}
	s.quantities[productID]++
	s.publishLocked()
	return true
}

// Decrement removes one unit; the line disappears instead of reaching zero.
// It returns false when the product is not in the cart.
func (s *Store) Decrement(productID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	qty, ok := s.quantities[productID]
	if !ok {
		return false
	}

	if qty > 1 {
		s.quantities[productID] = qty - 1
	} else {
		delete(s.quantities, productID)
		delete(s.products, productID)
		s.order = slices.DeleteFunc(s.order, func(id int) bool { return id == productID })
		s.logger.Debug("line removed", zap.Int("product_id", productID))
	}

	s.publishLocked()
	return true
}

// Clear empties the cart. The receipt selection is kept.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = nil
	s.products = make(map[int]models.Product)
	s.quantities = make(map[int]int)
	s.publishLocked()
}

// ClearIfUnchanged empties the cart only when no mutation happened since the
// snapshot with the given version was taken. It reports whether it cleared.
func (s *Store) ClearIfUnchanged(version uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.version != version {
		return false
	}
	s.order = nil
	s.products = make(map[int]models.Product)
	s.quantities = make(map[int]int)
	s.publishLocked()
	return true
}

// SelectReceipt records the document kind chosen for the sale.
func (s *Store) SelectReceipt(receipt models.ReceiptType) error {
	parsed, err := models.ParseReceiptType(string(receipt))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipt = &parsed
	s.publishLocked()
	return nil
}

// ClearReceipt drops the receipt selection.
func (s *Store) ClearReceipt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.receipt == nil {
		return
	}
	s.receipt = nil
	s.publishLocked()
}

// Receipt returns the selected receipt kind, if any.
func (s *Store) Receipt() (models.ReceiptType, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.receipt == nil {
		return "", false
	}
	return *s.receipt, true
}

// Quantity returns the units of productID in the cart, 0 when absent.
func (s *Store) Quantity(productID int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quantities[productID]
}

// LineTotal returns price times quantity for productID, 0 when absent.
func (s *Store) LineTotal(productID int) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	qty, ok := s.quantities[productID]
	if !ok {
		return decimal.Zero
	}
	return s.products[productID].Price.Mul(decimal.NewFromInt(int64(qty)))
}

// Len returns the number of distinct lines.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Subtotal is the sum of price times quantity over all lines.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subtotalLocked()
}

// Tax is the subtotal times the configured rate, rounded to cents.
func (s *Store) Tax() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taxLocked(s.subtotalLocked())
}

// Total is the amount charged. Prices already include tax, so the total equals
// the subtotal and tax is only reported alongside it.
func (s *Store) Total() decimal.Decimal {
	return s.Subtotal()
}

// Snapshot returns an immutable copy of the cart.
func (s *Store) Snapshot() models.CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that always holds the most recent snapshot not
// yet received. The current state is delivered immediately. Call cancel to
// stop receiving; the channel is closed afterwards.
func (s *Store) Subscribe() (<-chan models.CartSnapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan models.CartSnapshot, 1)
	ch <- s.snapshotLocked()
	s.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) publishLocked() {
	s.version++
	if len(s.subscribers) == 0 {
		return
	}

	snap := s.snapshotLocked()
	for _, ch := range s.subscribers {
		// Replace any snapshot the subscriber has not consumed yet.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Store) snapshotLocked() models.CartSnapshot {
	lines := make([]models.CartLine, 0, len(s.order))
	items := 0
	for _, id := range s.order {
		qty := s.quantities[id]
		lines = append(lines, models.CartLine{Product: s.products[id], Quantity: qty})
		items += qty
	}

	subtotal := s.subtotalLocked()
	snap := models.CartSnapshot{
		Lines:     lines,
		ItemCount: items,
		Subtotal:  subtotal,
		TaxRate:   s.taxRate,
		Tax:       s.taxLocked(subtotal),
		Total:     subtotal,
		Version:   s.version,
	}
	if s.receipt != nil {
		r := *s.receipt
		snap.Receipt = &r
	}
	return snap
}

func (s *Store) subtotalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, id := range s.order {
		total = total.Add(s.products[id].Price.Mul(decimal.NewFromInt(int64(s.quantities[id]))))
	}
	return total
}

func (s *Store) taxLocked(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(s.taxRate).Round(2)
}

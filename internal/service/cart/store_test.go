package cart

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/pos/internal/domain/models"
)

var igv = decimal.RequireFromString("0.18")

func product(id int, price string) models.Product {
	return models.Product{ID: id, Name: "product", Price: decimal.RequireFromString(price)}
}

func TestStore_TotalsForMixedCart(t *testing.T) {
	s := NewStore(igv, nil)
	a := product(1, "10.00")
	b := product(2, "5.00")

	s.AddProduct(a)
	s.AddProduct(a)
	s.AddProduct(b)

	assert.True(t, s.Subtotal().Equal(decimal.RequireFromString("25.00")), "subtotal %s", s.Subtotal())
	assert.True(t, s.Tax().Equal(decimal.RequireFromString("4.50")), "tax %s", s.Tax())
	assert.True(t, s.Total().Equal(s.Subtotal()))
	assert.Equal(t, 2, s.Quantity(1))
	assert.True(t, s.LineTotal(1).Equal(decimal.NewFromInt(20)))
}

func TestStore_AddKeepsInsertionOrder(t *testing.T) {
	s := NewStore(igv, nil)
	s.AddProduct(product(3, "1"))
	s.AddProduct(product(1, "1"))
	s.AddProduct(product(3, "1"))
	s.AddProduct(product(2, "1"))

	snap := s.Snapshot()
	require.Len(t, snap.Lines, 3)
	assert.Equal(t, 3, snap.Lines[0].Product.ID)
	assert.Equal(t, 2, snap.Lines[0].Quantity)
	assert.Equal(t, 1, snap.Lines[1].Product.ID)
	assert.Equal(t, 2, snap.Lines[2].Product.ID)
	assert.Equal(t, 4, snap.ItemCount)
}

func TestStore_IncrementUnknownIsNoop(t *testing.T) {
	s := NewStore(igv, nil)
	assert.False(t, s.Increment(42))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Quantity(42))

	s.AddProduct(product(42, "2"))
	assert.True(t, s.Increment(42))
	assert.Equal(t, 2, s.Quantity(42))
}

func TestStore_DecrementRemovesLineAtOne(t *testing.T) {
	s := NewStore(igv, nil)
	s.AddProduct(product(1, "3"))
	s.AddProduct(product(2, "4"))

	assert.True(t, s.Decrement(1))
	assert.Equal(t, 0, s.Quantity(1))
	snap := s.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 2, snap.Lines[0].Product.ID)

	// A second decrement on the removed line is a no-op.
	assert.False(t, s.Decrement(1))
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Subtotal().Equal(decimal.NewFromInt(4)))
}

func TestStore_ClearZeroesTotals(t *testing.T) {
	s := NewStore(igv, nil)
	s.AddProduct(product(1, "9.99"))
	s.AddProduct(product(2, "0.01"))
	s.Clear()

	assert.True(t, s.Subtotal().IsZero())
	assert.True(t, s.Tax().IsZero())
	assert.True(t, s.Total().IsZero())
	assert.True(t, s.Snapshot().Empty())
}

func TestStore_RandomMutationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	catalog := []models.Product{
		product(1, "10.00"),
		product(2, "5.50"),
		product(3, "0.99"),
		product(4, "120.00"),
	}

	s := NewStore(igv, nil)
	for i := 0; i < 2000; i++ {
		p := catalog[rng.Intn(len(catalog))]
		switch rng.Intn(4) {
		case 0:
			s.AddProduct(p)
		case 1:
			s.Increment(p.ID)
		case 2, 3:
			s.Decrement(p.ID)
		}

		snap := s.Snapshot()
		expected := decimal.Zero
		seen := map[int]bool{}
		for _, line := range snap.Lines {
			require.GreaterOrEqual(t, line.Quantity, 1)
			require.False(t, seen[line.Product.ID], "duplicate line for %d", line.Product.ID)
			seen[line.Product.ID] = true
			expected = expected.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		require.True(t, expected.Equal(snap.Subtotal), "step %d: %s != %s", i, expected, snap.Subtotal)
		require.False(t, snap.Tax.IsNegative())
	}
}

func TestStore_ReceiptSelection(t *testing.T) {
	s := NewStore(igv, nil)

	_, ok := s.Receipt()
	assert.False(t, ok)

	require.NoError(t, s.SelectReceipt(models.ReceiptInvoice))
	r, ok := s.Receipt()
	assert.True(t, ok)
	assert.Equal(t, models.ReceiptInvoice, r)

	err := s.SelectReceipt("Ticket")
	assert.True(t, models.IsKind(err, models.KindValidation))
	r, _ = s.Receipt()
	assert.Equal(t, models.ReceiptInvoice, r)

	s.ClearReceipt()
	_, ok = s.Receipt()
	assert.False(t, ok)
}

func TestStore_SubscribeDeliversLatest(t *testing.T) {
	s := NewStore(igv, nil)
	ch, cancel := s.Subscribe()

	initial := <-ch
	assert.True(t, initial.Empty())

	s.AddProduct(product(1, "1"))
	s.AddProduct(product(1, "1"))
	s.AddProduct(product(2, "1"))

	latest := <-ch
	assert.Equal(t, 3, latest.ItemCount)
	assert.Equal(t, uint64(3), latest.Version)

	cancel()
	_, open := <-ch
	assert.False(t, open)

	// Mutations after cancel must not panic on the closed channel.
	s.Clear()
	cancel()
}

func TestStore_ClearIfUnchanged(t *testing.T) {
	s := NewStore(igv, nil)
	s.AddProduct(product(1, "2"))
	snap := s.Snapshot()

	s.AddProduct(product(2, "3"))
	assert.False(t, s.ClearIfUnchanged(snap.Version))
	assert.Equal(t, 2, s.Len())

	snap = s.Snapshot()
	assert.True(t, s.ClearIfUnchanged(snap.Version))
	assert.Equal(t, 0, s.Len())
}

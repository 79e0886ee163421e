package domain

import "errors"

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrOutOfStockItems  = errors.New("some items in your cart are out of stock; remove them before checkout")
	ErrOverstockedItems = errors.New("some items exceed available stock; adjust quantities before checkout")
)

type CartItem struct {
	ID       int64   `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Cart mirrors the server cart. TotalAmount is computed by the server and
// never recomputed here.
type Cart struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	Items       []CartItem `json:"items"`
	TotalAmount float64    `json:"totalAmount"`
}

func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Empty() bool { return c == nil || len(c.Items) == 0 }

type ConflictKind string

const (
	ConflictOutOfStock   ConflictKind = "OUT_OF_STOCK"
	ConflictOverQuantity ConflictKind = "OVER_QUANTITY"
)

type StockConflict struct {
	ProductID int64
	Kind      ConflictKind
	Requested int
	Available int
}

// ConflictFor classifies a single line against its embedded stock snapshot.
func ConflictFor(it CartItem) (StockConflict, bool) {
	stock := it.Product.StockQuantity
	switch {
	case stock == 0:
		return StockConflict{ProductID: it.Product.ID, Kind: ConflictOutOfStock, Requested: it.Quantity}, true
	case stock > 0 && it.Quantity > stock:
		return StockConflict{ProductID: it.Product.ID, Kind: ConflictOverQuantity, Requested: it.Quantity, Available: stock}, true
	}
	return StockConflict{}, false
}

func (c *Cart) Conflicts() []StockConflict {
	if c == nil {
		return nil
	}
	var out []StockConflict
	for _, it := range c.Items {
		if sc, ok := ConflictFor(it); ok {
			out = append(out, sc)
		}
	}
	return out
}

func (c *Cart) HasOutOfStock() bool  { return c.hasConflict(ConflictOutOfStock) }
func (c *Cart) HasOverstocked() bool { return c.hasConflict(ConflictOverQuantity) }

func (c *Cart) hasConflict(kind ConflictKind) bool {
	for _, sc := range c.Conflicts() {
		if sc.Kind == kind {
			return true
		}
	}
	return false
}

// CheckoutAdmission is a presentation guard; the server re-validates stock.
// Out-of-stock lines are reported ahead of over-quantity lines.
func (c *Cart) CheckoutAdmission() error {
	switch {
	case c.Empty():
		return ErrEmptyCart
	case c.HasOutOfStock():
		return ErrOutOfStockItems
	case c.HasOverstocked():
		return ErrOverstockedItems
	}
	return nil
}

// Lines converts the cart into checkout request lines.
func (c *Cart) Lines() []CartItemRequest {
	if c == nil {
		return nil
	}
	out := make([]CartItemRequest, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, CartItemRequest{ProductID: it.Product.ID, Quantity: it.Quantity})
	}
	return out
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Items = append([]CartItem(nil), c.Items...)
	return &cp
}

// Package cart defines the storefront cart record that chains operate on.
package cart

import (
	"fmt"
	"maps"
	"slices"
)

const (
	// GiftVariantID is the variant of the free gift handed out by the
	// default chains.
	GiftVariantID int64 = 123456789
	// DefaultTotal is the total, in cents, of the cart the mock backend
	// serves when nothing else is configured.
	DefaultTotal int64 = 12000
	// DefaultToken identifies the single mock session cart.
	DefaultToken = "mock-cart-token"
)

// LineItem is a single product line in a cart. Prices are in cents.
type LineItem struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	VariantID int64  `json:"variant_id"`
}

// Cart mirrors the storefront cart payload.
type Cart struct {
	Token      string         `json:"token"`
	Note       *string        `json:"note"`
	Attributes map[string]any `json:"attributes"`
	TotalPrice int64          `json:"total_price"`
	Items      []LineItem     `json:"items"`
}

// NewMockCart returns the one-line sample cart served by the mock backend.
func NewMockCart(total int64) Cart {
	return Cart{
		Token:      DefaultToken,
		Attributes: map[string]any{},
		TotalPrice: total,
		Items: []LineItem{
			{
				ID:        1,
				ProductID: 100,
				Title:     "Sample Product",
				Price:     total,
				Quantity:  1,
				VariantID: 200,
			},
		},
	}
}

// Clone returns a copy that shares no mutable memory with c. Attribute
// values are copied shallowly.
func (c Cart) Clone() Cart {
	out := c
	if c.Note != nil {
		note := *c.Note
		out.Note = &note
	}
	out.Attributes = maps.Clone(c.Attributes)
	if out.Attributes == nil {
		out.Attributes = map[string]any{}
	}
	out.Items = slices.Clone(c.Items)
	return out
}

// WithItem returns a copy of c with item appended and the total raised by
// the item's price times its quantity.
func (c Cart) WithItem(item LineItem) Cart {
	out := c.Clone()
	out.Items = append(out.Items, item)
	out.TotalPrice += item.Price * item.Quantity
	return out
}

// WithAttributes returns a copy of c with attrs merged into its attributes.
// Keys in attrs win over existing ones.
func (c Cart) WithAttributes(attrs map[string]any) Cart {
	out := c.Clone()
	maps.Copy(out.Attributes, attrs)
	return out
}

// HasVariant reports whether a line with the given variant is in the cart.
func (c Cart) HasVariant(variantID int64) bool {
	return slices.ContainsFunc(c.Items, func(it LineItem) bool {
		return it.VariantID == variantID
	})
}

// ItemCount returns the number of lines in the cart.
func (c Cart) ItemCount() int {
	return len(c.Items)
}

// NextItemID returns an ID that no line of the cart uses yet.
func (c Cart) NextItemID() int64 {
	var maxID int64
	for _, it := range c.Items {
		maxID = max(maxID, it.ID)
	}
	return maxID + 1
}

// Summary renders a one-line description used in logs and CLI output.
func (c Cart) Summary() string {
	return fmt.Sprintf("token=%s total=%s items=%d attributes=%d",
		c.Token, FormatPrice(c.TotalPrice), len(c.Items), len(c.Attributes))
}

// FormatPrice renders cents as a decimal amount, e.g. 12000 -> "120.00".
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

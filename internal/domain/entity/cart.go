package entity

import (
	"time"

	"github.com/google/uuid"
)

// Cart collects sale lines before checkout. Carts live in memory only.
type Cart struct {
	ID        uuid.UUID
	Lines     []SaleLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Quantity returns how many units of productID the cart holds
func (c *Cart) Quantity(productID uuid.UUID) int {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return line.Quantity
		}
	}
	return 0
}

// Add merges quantity into the line for productID, appending a line if the
// product is new to the cart.
func (c *Cart) Add(productID uuid.UUID, quantity int) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity += quantity
			return
		}
	}
	c.Lines = append(c.Lines, SaleLine{ProductID: productID, Quantity: quantity})
}

// Remove drops the line for productID. It reports whether a line existed.
func (c *Cart) Remove(productID uuid.UUID) bool {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Lines = nil
}

package domain

// CartItem is a product with a quantity. Quantity is always at least 1.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Cart is an ordered list of items holding at most one entry per product ID
type Cart struct {
	Items []CartItem `json:"items"`
}

// Add puts quantity units of product into the cart, merging with an existing entry
func (c *Cart) Add(product Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].ID == product.ID {
			c.Items[i].Quantity += quantity
			return
		}
	}
	c.Items = append(c.Items, CartItem{Product: product, Quantity: quantity})
}

// Remove drops the entry for productID. Returns false when it was not in the cart.
func (c *Cart) Remove(productID string) bool {
	for i := range c.Items {
		if c.Items[i].ID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateQuantity sets the quantity of an entry; a quantity of zero or less removes it
func (c *Cart) UpdateQuantity(productID string, quantity int) bool {
	if quantity <= 0 {
		return c.Remove(productID)
	}
	for i := range c.Items {
		if c.Items[i].ID == productID {
			c.Items[i].Quantity = quantity
			return true
		}
	}
	return false
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = nil
}

// Contains reports whether the cart holds productID
func (c *Cart) Contains(productID string) bool {
	for _, item := range c.Items {
		if item.ID == productID {
			return true
		}
	}
	return false
}

// Total returns the summed price of all items
func (c *Cart) Total() float64 {
	total := 0.0
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Count returns the number of units across all items
func (c *Cart) Count() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

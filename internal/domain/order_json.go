package domain

import "encoding/json"

// UnmarshalJSON accepts the several shapes the orders endpoint has used:
// totals under "total_cents" or "total", lines under "items" or "cart_items",
// and customer details nested or flattened onto the order.
func (o *Order) UnmarshalJSON(b []byte) error {
	type plain Order
	var aux struct {
		plain
		Total         *Amount       `json:"total"`
		CartItems     []OrderItem   `json:"cart_items"`
		CustomerName  string        `json:"customer_name"`
		CustomerEmail string        `json:"customer_email"`
		CustomerPhone string        `json:"customer_phone"`
		Address       string        `json:"shipping_address"`
		CustomerRaw   *CustomerInfo `json:"customer"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*o = Order(aux.plain)
	if o.Total == 0 && aux.Total != nil {
		o.Total = *aux.Total
	}
	if len(o.Items) == 0 && len(aux.CartItems) > 0 {
		o.Items = aux.CartItems
	}
	if o.Customer == (CustomerInfo{}) && aux.CustomerRaw != nil {
		o.Customer = *aux.CustomerRaw
	}
	if o.Customer.FirstName == "" && o.Customer.LastName == "" && aux.CustomerName != "" {
		o.Customer.FirstName = aux.CustomerName
	}
	if o.Customer.Email == "" {
		o.Customer.Email = aux.CustomerEmail
	}
	if o.Customer.Phone == "" {
		o.Customer.Phone = aux.CustomerPhone
	}
	if o.Customer.Address == "" {
		o.Customer.Address = aux.Address
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	return nil
}

// UnmarshalJSON accepts "quantity"/"qty" and "price"/"unit_price".
func (i *OrderItem) UnmarshalJSON(b []byte) error {
	type plain OrderItem
	var aux struct {
		plain
		Qty       *Int    `json:"qty"`
		UnitPrice *Amount `json:"unit_price"`
		ID        *ID     `json:"id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*i = OrderItem(aux.plain)
	if i.Quantity == 0 && aux.Qty != nil {
		i.Quantity = *aux.Qty
	}
	if i.Price == 0 && aux.UnitPrice != nil {
		i.Price = *aux.UnitPrice
	}
	if i.ProductID == "" && aux.ID != nil {
		i.ProductID = *aux.ID
	}
	return nil
}

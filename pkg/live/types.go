// Package live fetches and normalizes the current live-order list of the
// portal, with bounded retry under transient failure.
package live

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount that decodes from either a JSON number or a
// locale-formatted string ("12,50"). The live endpoint is not consistent
// about which it sends.
type Money struct {
	decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		m.Decimal = decimal.Zero
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			m.Decimal = decimal.Zero
			return nil
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
		if err != nil {
			return err
		}
		m.Decimal = d
		return nil
	}

	return m.Decimal.UnmarshalJSON(data)
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// Order is one live order in canonical shape with its owned customer and
// product tree.
type Order struct {
	OrderCode       string    `json:"orderCode"`
	PlacedDate      string    `json:"placedDate"`
	RequestedTime   string    `json:"requestedTime"`
	PaymentType     string    `json:"paymentType"`
	Subtotal        Money     `json:"subtotal"`
	RestaurantTotal Money     `json:"restaurantTotal"`
	CustomerTotal   Money     `json:"customerTotal"`
	DeliveryFee     Money     `json:"deliveryFee"`
	Status          string    `json:"status"`
	Customer        Customer  `json:"customer"`
	Products        []Product `json:"products"`
}

// Customer is the delivery contact of a live order.
type Customer struct {
	FullName     string `json:"fullName"`
	Street       string `json:"street"`
	StreetNumber string `json:"streetNumber"`
	Postcode     string `json:"postcode"`
	City         string `json:"city"`
	Extra        string `json:"extra"`
	PhoneNumber  string `json:"phoneNumber"`
}

// Product is one ordered line item.
type Product struct {
	Quantity       int             `json:"quantity"`
	Name           string          `json:"name"`
	TotalAmount    Money           `json:"totalAmount"`
	Code           string          `json:"code"`
	Specifications []Specification `json:"specifications"`
}

// Specification is a product option, e.g. a topping or size.
type Specification struct {
	Name        string `json:"name"`
	TotalAmount Money  `json:"totalAmount"`
}

// Wire shapes of the live endpoint (snake_case upstream fields).

type wireOrder struct {
	PublicReference string        `json:"public_reference"`
	PlacedDate      string        `json:"placed_date"`
	RequestedTime   string        `json:"requested_time"`
	PaymentType     string        `json:"payment_type"`
	Subtotal        Money         `json:"subtotal"`
	RestaurantTotal Money         `json:"restaurant_total"`
	CustomerTotal   Money         `json:"customer_total"`
	DeliveryFee     Money         `json:"delivery_fee"`
	Status          string        `json:"status"`
	Customer        wireCustomer  `json:"customer"`
	Products        []wireProduct `json:"products"`
}

type wireCustomer struct {
	FullName     string   `json:"full_name"`
	Street       string   `json:"street"`
	StreetNumber string   `json:"street_number"`
	Postcode     string   `json:"postcode"`
	City         string   `json:"city"`
	Extra        []string `json:"extra"`
	PhoneNumber  string   `json:"phone_number"`
}

type wireProduct struct {
	Quantity       int                 `json:"quantity"`
	Name           string              `json:"name"`
	TotalAmount    Money               `json:"total_amount"`
	Code           string              `json:"code"`
	Specifications []wireSpecification `json:"specifications"`
}

type wireSpecification struct {
	Name        string `json:"name"`
	TotalAmount Money  `json:"total_amount"`
}

// mapOrder converts one wire order into the canonical shape.
func mapOrder(w wireOrder) Order {
	// extra is a list of strings upstream; only its first entry matters.
	extra := ""
	if len(w.Customer.Extra) > 0 {
		extra = w.Customer.Extra[0]
	}

	products := make([]Product, 0, len(w.Products))
	for _, p := range w.Products {
		specs := make([]Specification, 0, len(p.Specifications))
		for _, s := range p.Specifications {
			specs = append(specs, Specification{
				Name:        s.Name,
				TotalAmount: s.TotalAmount,
			})
		}
		products = append(products, Product{
			Quantity:       p.Quantity,
			Name:           p.Name,
			TotalAmount:    p.TotalAmount,
			Code:           p.Code,
			Specifications: specs,
		})
	}

	return Order{
		OrderCode:       w.PublicReference,
		PlacedDate:      w.PlacedDate,
		RequestedTime:   w.RequestedTime,
		PaymentType:     w.PaymentType,
		Subtotal:        w.Subtotal,
		RestaurantTotal: w.RestaurantTotal,
		CustomerTotal:   w.CustomerTotal,
		DeliveryFee:     w.DeliveryFee,
		Status:          w.Status,
		Customer: Customer{
			FullName:     w.Customer.FullName,
			Street:       w.Customer.Street,
			StreetNumber: w.Customer.StreetNumber,
			Postcode:     w.Customer.Postcode,
			City:         w.Customer.City,
			Extra:        extra,
			PhoneNumber:  w.Customer.PhoneNumber,
		},
		Products: products,
	}
}

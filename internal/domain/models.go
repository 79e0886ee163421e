package domain

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

type KeyboardLayout string

const (
	LayoutFullSize           KeyboardLayout = "FULL_SIZE"
	LayoutTKL                KeyboardLayout = "TKL"
	LayoutSeventyFivePercent KeyboardLayout = "SEVENTY_FIVE_PERCENT"
	LayoutSixtyFivePercent   KeyboardLayout = "SIXTY_FIVE_PERCENT"
	LayoutSixtyPercent       KeyboardLayout = "SIXTY_PERCENT"
	LayoutFortyPercent       KeyboardLayout = "FORTY_PERCENT"
	LayoutSplit              KeyboardLayout = "SPLIT"
	LayoutOrtholinear        KeyboardLayout = "ORTHOLINEAR"
	LayoutCustom             KeyboardLayout = "CUSTOM"
)

var Layouts = []KeyboardLayout{
	LayoutFullSize, LayoutTKL, LayoutSeventyFivePercent, LayoutSixtyFivePercent,
	LayoutSixtyPercent, LayoutFortyPercent, LayoutSplit, LayoutOrtholinear, LayoutCustom,
}

func (l KeyboardLayout) Valid() bool {
	for _, v := range Layouts {
		if v == l {
			return true
		}
	}
	return false
}

// Label renders SEVENTY_FIVE_PERCENT as "Seventy Five Percent".
func (l KeyboardLayout) Label() string {
	if l == LayoutTKL {
		return "TKL"
	}
	parts := strings.Split(strings.ToLower(string(l)), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

type Product struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Price           float64        `json:"price"`
	Brand           string         `json:"brand"`
	Layout          KeyboardLayout `json:"layout"`
	SwitchType      string         `json:"switchType"`
	KeycapMaterial  string         `json:"keycapMaterial"`
	CaseMaterial    string         `json:"caseMaterial"`
	RGBSupport      bool           `json:"rgbSupport"`
	WirelessSupport bool           `json:"wirelessSupport"`
	StockQuantity   int            `json:"stockQuantity"`
	ImageURL        string         `json:"imageUrl"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}

// Availability buckets the stock snapshot carried by the product.
func (p Product) Availability() Availability {
	status := "OUT_OF_STOCK"
	switch {
	case p.StockQuantity >= 5:
		status = "IN_STOCK"
	case p.StockQuantity > 0:
		status = "LOW_STOCK"
	}
	qty := p.StockQuantity
	if qty < 0 {
		qty = 0
	}
	return Availability{Status: status, Qty: qty}
}

type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

var OrderStatuses = []OrderStatus{OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled}

type OrderItem struct {
	ID        int64   `json:"id"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type Order struct {
	ID              int64       `json:"id"`
	UserID          int64       `json:"userId"`
	Items           []OrderItem `json:"items"`
	TotalAmount     float64     `json:"totalAmount"`
	Status          OrderStatus `json:"status"`
	CreatedAt       string      `json:"createdAt"`
	ShippingAddress string      `json:"shippingAddress"`
	BillingAddress  string      `json:"billingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
}

var createdAtLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"}

// Created parses CreatedAt; the backend omits the zone, which is read as UTC.
func (o Order) Created() (time.Time, bool) {
	for _, l := range createdAtLayouts {
		if t, err := time.Parse(l, o.CreatedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type CartItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type CheckoutRequest struct {
	Items           []CartItemRequest `json:"items"`
	PhoneNumber     string            `json:"phoneNumber,omitempty"`
	ShippingAddress string            `json:"shippingAddress"`
	BillingAddress  string            `json:"billingAddress"`
	PaymentMethod   string            `json:"paymentMethod"`
}

type Profile struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type ProfileUpdate struct {
	DisplayName string `json:"displayName"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// FormatPrice renders an amount as USD for display only.
func FormatPrice(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

package validate

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"keebshop/internal/domain"
)

type LoginForm struct {
	Username string `form:"username" validate:"required,max=50"`
	Password string `form:"password" validate:"required,max=128"`
}

func (f LoginForm) Credentials() domain.Credentials {
	return domain.Credentials{Username: strings.TrimSpace(f.Username), Password: f.Password}
}

type RegisterForm struct {
	Username        string `form:"username" validate:"required,min=3,max=50"`
	Email           string `form:"email" validate:"required,email,max=100"`
	Password        string `form:"password" validate:"required,min=6,max=128"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
	FirstName       string `form:"firstName" validate:"required,max=50"`
	LastName        string `form:"lastName" validate:"required,max=50"`
}

func (f RegisterForm) Registration() domain.Registration {
	return domain.Registration{
		Username:  strings.TrimSpace(f.Username),
		Email:     strings.TrimSpace(f.Email),
		Password:  f.Password,
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
	}
}

var PaymentMethods = []string{"cod", "card", "paypal"}

const DefaultPaymentMethod = "cod"

type CheckoutForm struct {
	PhoneNumber     string `form:"phoneNumber" validate:"required,phone"`
	ShippingAddress string `form:"shippingAddress" validate:"required,max=255"`
	BillingAddress  string `form:"billingAddress" validate:"required,max=255"`
	PaymentMethod   string `form:"paymentMethod" validate:"required,oneof=cod card paypal"`
}

// Normalize trims inputs and defaults the payment method.
func (f CheckoutForm) Normalize() CheckoutForm {
	f.PhoneNumber = strings.TrimSpace(f.PhoneNumber)
	f.ShippingAddress = strings.TrimSpace(f.ShippingAddress)
	f.BillingAddress = strings.TrimSpace(f.BillingAddress)
	f.PaymentMethod = strings.ToLower(strings.TrimSpace(f.PaymentMethod))
	if f.PaymentMethod == "" {
		f.PaymentMethod = DefaultPaymentMethod
	}
	return f
}

var Genders = []string{"", "Male", "Female", "Other", "Prefer not to say"}

type ProfileForm struct {
	DisplayName string `form:"displayName" validate:"max=100"`
	Gender      string `form:"gender" validate:"omitempty,oneof=Male Female Other 'Prefer not to say'"`
	DateOfBirth string `form:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Address     string `form:"address" validate:"max=255"`
	PhoneNumber string `form:"phoneNumber" validate:"omitempty,phone"`
}

func (f ProfileForm) Update() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		DisplayName: strings.TrimSpace(f.DisplayName),
		Gender:      strings.TrimSpace(f.Gender),
		DateOfBirth: strings.TrimSpace(f.DateOfBirth),
		Address:     strings.TrimSpace(f.Address),
		PhoneNumber: strings.TrimSpace(f.PhoneNumber),
	}
}

// ProductForm keeps price and stock as text so an empty input is told apart
// from zero.
type ProductForm struct {
	Name            string `form:"name" validate:"required,max=100"`
	Description     string `form:"description" validate:"required,max=2000"`
	Price           string `form:"price" validate:"required,numeric"`
	Brand           string `form:"brand" validate:"required,max=50"`
	Layout          string `form:"layout" validate:"required,layout"`
	SwitchType      string `form:"switchType" validate:"max=50"`
	KeycapMaterial  string `form:"keycapMaterial" validate:"max=50"`
	CaseMaterial    string `form:"caseMaterial" validate:"max=50"`
	RGBSupport      bool   `form:"rgbSupport"`
	WirelessSupport bool   `form:"wirelessSupport"`
	StockQuantity   string `form:"stockQuantity" validate:"required,number"`
	ImageURL        string `form:"imageUrl" validate:"max=500"`
}

func productRules(sl validator.StructLevel) {
	f := sl.Current().Interface().(ProductForm)
	if p, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64); err == nil && p <= 0 {
		sl.ReportError(f.Price, "price", "Price", "gt", "0")
	}
	if n, err := strconv.Atoi(strings.TrimSpace(f.StockQuantity)); err == nil && n < 0 {
		sl.ReportError(f.StockQuantity, "stockQuantity", "StockQuantity", "gte", "0")
	}
}

// Product converts a validated form. Call only after Struct returned nil.
func (f ProductForm) Product() domain.Product {
	price, _ := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	stock, _ := strconv.Atoi(strings.TrimSpace(f.StockQuantity))
	return domain.Product{
		Name:            strings.TrimSpace(f.Name),
		Description:     strings.TrimSpace(f.Description),
		Price:           price,
		Brand:           strings.TrimSpace(f.Brand),
		Layout:          domain.KeyboardLayout(f.Layout),
		SwitchType:      strings.TrimSpace(f.SwitchType),
		KeycapMaterial:  strings.TrimSpace(f.KeycapMaterial),
		CaseMaterial:    strings.TrimSpace(f.CaseMaterial),
		RGBSupport:      f.RGBSupport,
		WirelessSupport: f.WirelessSupport,
		StockQuantity:   stock,
		ImageURL:        strings.TrimSpace(f.ImageURL),
	}
}

// ProductFormFrom fills the edit form from an existing product.
func ProductFormFrom(p domain.Product) ProductForm {
	return ProductForm{
		Name:            p.Name,
		Description:     p.Description,
		Price:           strconv.FormatFloat(p.Price, 'f', 2, 64),
		Brand:           p.Brand,
		Layout:          string(p.Layout),
		SwitchType:      p.SwitchType,
		KeycapMaterial:  p.KeycapMaterial,
		CaseMaterial:    p.CaseMaterial,
		RGBSupport:      p.RGBSupport,
		WirelessSupport: p.WirelessSupport,
		StockQuantity:   strconv.Itoa(p.StockQuantity),
		ImageURL:        p.ImageURL,
	}
}

type StatusForm struct {
	Status string `form:"status" validate:"required,orderstatus"`
}

package validate

import (
	"testing"

	"keebshop/internal/domain"
)

func TestRegisterForm(t *testing.T) {
	ok := RegisterForm{Username: "kai", Email: "kai@keeb.test", Password: "secret", ConfirmPassword: "secret", FirstName: "Kai", LastName: "Lee"}
	if err := Struct(ok); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}

	bad := ok
	bad.Username = "ab"
	bad.ConfirmPassword = "secreT"
	bad.Email = "nope"
	fields := FieldErrors(Struct(bad))
	for _, k := range []string{"username", "confirmPassword", "email"} {
		if fields[k] == "" {
			t.Fatalf("missing error for %s: %v", k, fields)
		}
	}
	if fields["confirmPassword"] != "Passwords do not match" {
		t.Fatalf("confirm message: %q", fields["confirmPassword"])
	}
}

func TestCheckoutDefaultsPayment(t *testing.T) {
	f := CheckoutForm{PhoneNumber: " 555-123-4567 ", ShippingAddress: "1 Main St", BillingAddress: "1 Main St"}.Normalize()
	if f.PaymentMethod != "cod" || f.PhoneNumber != "555-123-4567" {
		t.Fatalf("normalize: %+v", f)
	}
	if err := Struct(f); err != nil {
		t.Fatalf("valid checkout rejected: %v", err)
	}
	f.PaymentMethod = "bitcoin"
	if FieldErrors(Struct(f))["paymentMethod"] == "" {
		t.Fatal("unknown payment method accepted")
	}
}

func TestProductFormRules(t *testing.T) {
	f := ProductForm{Name: "Q1", Description: "75% board", Price: "169.00", Brand: "Keychron", Layout: "SEVENTY_FIVE_PERCENT", StockQuantity: "4"}
	if err := Struct(f); err != nil {
		t.Fatalf("valid product rejected: %v", err)
	}
	p := f.Product()
	if p.Price != 169 || p.StockQuantity != 4 || p.Layout != domain.LayoutSeventyFivePercent {
		t.Fatalf("conversion: %+v", p)
	}

	cases := map[string]func(*ProductForm){
		"price":         func(f *ProductForm) { f.Price = "0" },
		"stockQuantity": func(f *ProductForm) { f.StockQuantity = "-1" },
		"layout":        func(f *ProductForm) { f.Layout = "NUMPAD" },
		"description":   func(f *ProductForm) { f.Description = "" },
	}
	for field, mut := range cases {
		bad := f
		mut(&bad)
		if FieldErrors(Struct(bad))[field] == "" {
			t.Fatalf("%s: expected an error", field)
		}
	}
	if got := FieldErrors(Struct(ProductForm{Price: "-3", Name: "x", Description: "y", Brand: "z", Layout: "TKL", StockQuantity: "1"}))["price"]; got != "Please enter a valid price" {
		t.Fatalf("price message %q", got)
	}
}

func TestProfileAndStatus(t *testing.T) {
	if err := Struct(ProfileForm{Gender: "Prefer not to say", DateOfBirth: "1990-04-01"}); err != nil {
		t.Fatalf("valid profile rejected: %v", err)
	}
	if FieldErrors(Struct(ProfileForm{DateOfBirth: "01/04/1990"}))["dateOfBirth"] == "" {
		t.Fatal("bad date accepted")
	}
	if err := Struct(StatusForm{Status: "SHIPPED"}); err != nil {
		t.Fatal(err)
	}
	if Struct(StatusForm{Status: "LOST"}) == nil {
		t.Fatal("unknown status accepted")
	}
}

func TestQtyAndID(t *testing.T) {
	if n, ok := Qty("0"); !ok || n != 0 {
		t.Fatalf("Qty(0) = %d %v", n, ok)
	}
	if n, _ := Qty("500"); n != MaxQty {
		t.Fatalf("Qty clamp = %d", n)
	}
	if _, ok := Qty("two"); ok {
		t.Fatal("non-number accepted")
	}
	if _, ok := ID("0"); ok {
		t.Fatal("zero id accepted")
	}
	if id, ok := ID(" 42 "); !ok || id != 42 {
		t.Fatalf("ID = %d %v", id, ok)
	}
	if _, ok := Term("Cherry MX <script>"); ok {
		t.Fatal("markup accepted as filter term")
	}
}

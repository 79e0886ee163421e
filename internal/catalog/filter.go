// Package catalog holds the product listing filter state: a draft the user is
// editing and the active filter that drives the query. Both are values; every
// edit returns a new Filters.
package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultSize = 12

	// Bounds of the price slider.
	PriceFloor   = 0.0
	PriceCeiling = 500.0
	PriceStep    = 10.0
)

// Filter is one committed or pending set of listing parameters. Nil pointers
// and empty strings are unset and never reach the query.
type Filter struct {
	Layout          string
	Brand           string
	SwitchType      string
	MinPrice        *float64
	MaxPrice        *float64
	RGBSupport      *bool
	WirelessSupport *bool
	Page            int
	Size            int
}

func Default() Filter { return Filter{Size: DefaultSize} }

// Query maps the filter onto the product listing parameters.
func (f Filter) Query() url.Values {
	q := url.Values{}
	setStr := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			q.Set(k, v)
		}
	}
	setStr("layout", f.Layout)
	setStr("brand", f.Brand)
	setStr("switchType", f.SwitchType)
	if f.MinPrice != nil {
		q.Set("minPrice", formatPrice(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		q.Set("maxPrice", formatPrice(*f.MaxPrice))
	}
	if f.RGBSupport != nil {
		q.Set("rgbSupport", strconv.FormatBool(*f.RGBSupport))
	}
	if f.WirelessSupport != nil {
		q.Set("wirelessSupport", strconv.FormatBool(*f.WirelessSupport))
	}
	q.Set("page", strconv.Itoa(f.Page))
	size := f.Size
	if size <= 0 {
		size = DefaultSize
	}
	q.Set("size", strconv.Itoa(size))
	return q
}

// HasCriteria reports whether any narrowing field is set; paging is ignored.
func (f Filter) HasCriteria() bool {
	return strings.TrimSpace(f.Layout) != "" || strings.TrimSpace(f.Brand) != "" ||
		strings.TrimSpace(f.SwitchType) != "" || f.MinPrice != nil || f.MaxPrice != nil ||
		f.RGBSupport != nil || f.WirelessSupport != nil
}

// Equal compares by value, including the targets of the pointer fields.
func (f Filter) Equal(o Filter) bool {
	return f.Layout == o.Layout && f.Brand == o.Brand && f.SwitchType == o.SwitchType &&
		eqPtr(f.MinPrice, o.MinPrice) && eqPtr(f.MaxPrice, o.MaxPrice) &&
		eqPtr(f.RGBSupport, o.RGBSupport) && eqPtr(f.WirelessSupport, o.WirelessSupport) &&
		f.Page == o.Page && f.Size == o.Size
}

// clone detaches the pointer fields so the copy shares nothing.
func (f Filter) clone() Filter {
	f.MinPrice = copyPtr(f.MinPrice)
	f.MaxPrice = copyPtr(f.MaxPrice)
	f.RGBSupport = copyPtr(f.RGBSupport)
	f.WirelessSupport = copyPtr(f.WirelessSupport)
	return f
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func formatPrice(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Filters pairs the draft with the active filter.
type Filters struct {
	draft  Filter
	active Filter
	size   int
}

func New() Filters { return NewSized(DefaultSize) }

// NewSized starts with no criteria and the given page size; Clear returns to
// this state.
func NewSized(size int) Filters {
	if size <= 0 {
		size = DefaultSize
	}
	f := Filter{Size: size}
	return Filters{draft: f, active: f, size: size}
}

func (fs Filters) Draft() Filter  { return fs.draft.clone() }
func (fs Filters) Active() Filter { return fs.active.clone() }

func (fs Filters) edit(fn func(*Filter)) Filters {
	d := fs.draft.clone()
	fn(&d)
	return Filters{draft: d, active: fs.active.clone(), size: fs.size}
}

func (fs Filters) SetLayout(v string) Filters {
	return fs.edit(func(f *Filter) { f.Layout = strings.TrimSpace(v) })
}

func (fs Filters) SetBrand(v string) Filters {
	return fs.edit(func(f *Filter) { f.Brand = strings.TrimSpace(v) })
}

func (fs Filters) SetSwitchType(v string) Filters {
	return fs.edit(func(f *Filter) { f.SwitchType = strings.TrimSpace(v) })
}

func (fs Filters) SetRGBSupport(v *bool) Filters {
	return fs.edit(func(f *Filter) { f.RGBSupport = copyPtr(v) })
}

func (fs Filters) SetWirelessSupport(v *bool) Filters {
	return fs.edit(func(f *Filter) { f.WirelessSupport = copyPtr(v) })
}

// SetMinPrice sets the lower bound; a value above the current upper bound
// raises the upper bound with it. Nil unsets the bound.
func (fs Filters) SetMinPrice(v *float64) Filters {
	return fs.edit(func(f *Filter) {
		if v == nil {
			f.MinPrice = nil
			return
		}
		lo := floorPrice(*v)
		f.MinPrice = &lo
		if f.MaxPrice != nil && *f.MaxPrice < lo {
			hi := lo
			f.MaxPrice = &hi
		}
	})
}

// SetMaxPrice sets the upper bound; a value below the current lower bound
// lowers the lower bound with it. Nil unsets the bound.
func (fs Filters) SetMaxPrice(v *float64) Filters {
	return fs.edit(func(f *Filter) {
		if v == nil {
			f.MaxPrice = nil
			return
		}
		hi := floorPrice(*v)
		f.MaxPrice = &hi
		if f.MinPrice != nil && *f.MinPrice > hi {
			lo := hi
			f.MinPrice = &lo
		}
	})
}

// SetPriceRange is the slider edit. It follows the same clamping as the
// numeric inputs: the lower bound is applied first, then the upper.
func (fs Filters) SetPriceRange(lo, hi float64) Filters {
	return fs.SetMinPrice(&lo).SetMaxPrice(&hi)
}

// SetPriceBounds takes both numeric inputs of a submitted form. Only the
// bounds that differ from the draft count as edited, so an untouched bound
// never undoes the clamp of the one that moved.
func (fs Filters) SetPriceBounds(lo, hi *float64) Filters {
	loEdited := !samePrice(lo, fs.draft.MinPrice)
	hiEdited := !samePrice(hi, fs.draft.MaxPrice)
	switch {
	case loEdited && hiEdited:
		return fs.SetMinPrice(lo).SetMaxPrice(hi)
	case loEdited:
		return fs.SetMinPrice(lo)
	case hiEdited:
		return fs.SetMaxPrice(hi)
	}
	return fs
}

func samePrice(submitted, current *float64) bool {
	if submitted == nil || current == nil {
		return submitted == nil && current == nil
	}
	return floorPrice(*submitted) == *current
}

// Apply commits the draft; the committed page is always the first one.
func (fs Filters) Apply() Filters {
	a := fs.draft.clone()
	a.Page = 0
	if a.Size <= 0 {
		a.Size = DefaultSize
	}
	return Filters{draft: fs.draft.clone(), active: a, size: fs.size}
}

// ChangePage moves the active filter to the one-based page n.
func (fs Filters) ChangePage(n int) Filters {
	if n < 1 {
		n = 1
	}
	a := fs.active.clone()
	a.Page = n - 1
	return Filters{draft: fs.draft.clone(), active: a, size: fs.size}
}

func (fs Filters) Clear() Filters { return NewSized(fs.size) }

func floorPrice(v float64) float64 {
	if v < PriceFloor {
		return PriceFloor
	}
	return v
}

package gateway

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/appliancehub/console-api/internal/core/domain"
)

// The backend's JSON is inconsistent: identifiers appear under several
// field names and casings, amounts arrive as numbers or strings, lists
// come bare or wrapped in a pluralized envelope. All of that tolerance
// is concentrated here; everything past this file sees canonical
// records with a single name per field.

// flexString decodes a JSON string or number into a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		// Not a string or number; ignore rather than fail the record.
		*f = ""
		return nil
	}
	*f = flexString(n.String())
	return nil
}

// flexAmount decodes a JSON number or numeric string into a decimal.
// It tracks whether the field was present and non-null, so callers can
// tell an explicit zero apart from an absent field. Present but
// unparseable values decode as zero; they never count as absent.
type flexAmount struct {
	d  decimal.Decimal
	ok bool
}

func (f *flexAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = flexAmount{}
		return nil
	}
	s := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			*f = flexAmount{ok: true}
			return nil
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		*f = flexAmount{ok: true}
		return nil
	}
	*f = flexAmount{d: d, ok: true}
	return nil
}

func (f flexAmount) decimal() decimal.Decimal { return f.d }

func (f flexAmount) present() bool { return f.ok }

// timeLayouts are tried in order when parsing backend timestamps.
// Zoneless layouts are interpreted in local time, matching how the
// console has always bucketed dates.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// flexTime decodes a timestamp string; unparseable or missing values
// yield nil rather than an error.
type flexTime struct {
	t *time.Time
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) || data[0] != '"' {
		f.t = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		f.t = nil
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			f.t = &parsed
			return nil
		}
	}
	f.t = nil
	return nil
}

func firstTime(candidates ...flexTime) *time.Time {
	for _, c := range candidates {
		if c.t != nil {
			return c.t
		}
	}
	return nil
}

func firstString(candidates ...flexString) string {
	for _, c := range candidates {
		if c != "" {
			return string(c)
		}
	}
	return ""
}

// rawPrincipal is the wire shape of a user object returned by login.
// ID priority: id, user_id, user_Id.
type rawPrincipal struct {
	ID        flexString `json:"id"`
	UserID    flexString `json:"user_id"`
	UserIDAlt flexString `json:"user_Id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
}

func (r rawPrincipal) normalize() domain.Principal {
	return domain.Principal{
		ID:       firstString(r.ID, r.UserID, r.UserIDAlt),
		Email:    r.Email,
		Username: r.Username,
		Name:     r.Name,
		Role:     r.Role,
	}
}

// rawOrder is the wire shape of an order.
// Customer key priority: customer_id, user_id, user_Id, customer_Id.
// Amount priority: total_amount, amount. Date priority: date, created_at.
type rawOrder struct {
	ID            flexString `json:"id"`
	OrderID       flexString `json:"order_id"`
	CustomerID    flexString `json:"customer_id"`
	UserID        flexString `json:"user_id"`
	UserIDAlt     flexString `json:"user_Id"`
	CustomerIDAlt flexString `json:"customer_Id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Status        string     `json:"status"`
	TotalAmount   flexAmount `json:"total_amount"`
	Amount        flexAmount `json:"amount"`
	Date          flexTime   `json:"date"`
	CreatedAt     flexTime   `json:"created_at"`
}

func (r rawOrder) normalize() domain.Order {
	// Presence-based fallback: an explicit total_amount of 0 (a fully
	// discounted order) must stay 0 and never borrow from amount.
	total := r.TotalAmount.decimal()
	if !r.TotalAmount.present() {
		total = r.Amount.decimal()
	}
	return domain.Order{
		ID:         firstString(r.ID, r.OrderID),
		CustomerID: firstString(r.CustomerID, r.UserID, r.UserIDAlt, r.CustomerIDAlt),
		Username:   r.Username,
		Email:      r.Email,
		Status:     r.Status,
		Total:      total,
		PlacedAt:   firstTime(r.Date, r.CreatedAt),
	}
}

// rawPayment is the wire shape of a payment record.
type rawPayment struct {
	ID         flexString `json:"id"`
	PaymentID  flexString `json:"payment_id"`
	OrderID    flexString `json:"order_id"`
	CustomerID flexString `json:"customer_id"`
	UserID     flexString `json:"user_id"`
	Method     string     `json:"method"`
	Status     string     `json:"status"`
	Amount     flexAmount `json:"amount"`
	Date       flexTime   `json:"date"`
	CreatedAt  flexTime   `json:"created_at"`
}

func (r rawPayment) normalize() domain.Payment {
	return domain.Payment{
		ID:         firstString(r.ID, r.PaymentID),
		OrderID:    string(r.OrderID),
		CustomerID: firstString(r.CustomerID, r.UserID),
		Method:     r.Method,
		Status:     r.Status,
		Amount:     r.Amount.decimal(),
		PaidAt:     firstTime(r.Date, r.CreatedAt),
	}
}

type rawProduct struct {
	ID        flexString `json:"id"`
	ProductID flexString `json:"product_id"`
	Name      string     `json:"name"`
	Category  flexString `json:"category"`
	Price     flexAmount `json:"price"`
	Stock     int        `json:"stock"`
}

func (r rawProduct) normalize() domain.Product {
	return domain.Product{
		ID:       firstString(r.ID, r.ProductID),
		Name:     r.Name,
		Category: string(r.Category),
		Price:    r.Price.decimal(),
		Stock:    r.Stock,
	}
}

type rawCustomer struct {
	ID       flexString `json:"id"`
	UserID   flexString `json:"user_id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Phone    string     `json:"phone"`
}

func (r rawCustomer) normalize() domain.Customer {
	return domain.Customer{
		ID:       firstString(r.ID, r.UserID),
		Username: r.Username,
		Email:    r.Email,
		Phone:    r.Phone,
	}
}

// unwrapCollection accepts either a bare JSON array or an object
// wrapping the array under the given pluralized key (or "data"), and
// returns the raw elements. Any other shape yields an error so the
// caller can report a protocol problem.
func unwrapCollection(body []byte, key string) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	for _, k := range []string{key, "data"} {
		raw, ok := envelope[k]
		if !ok {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	// An envelope without the expected key is treated as empty, not an
	// error: some backend routes return {"orders": []} as {} when empty.
	return nil, nil
}

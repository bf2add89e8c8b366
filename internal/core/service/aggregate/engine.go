// Package aggregate derives summary views from the raw collections the
// backend exposes. The backend has no precomputed reporting endpoints,
// so every view here is folded client-side on each load — no caching,
// no incremental maintenance.
//
// All functions are pure and never fail on malformed input: records
// with unusable fields are skipped or defaulted, because upstream data
// quality is known to be inconsistent across field-name variants.
package aggregate

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/appliancehub/console-api/internal/core/domain"
)

// CustomerTotal accumulates one customer's order history.
type CustomerTotal struct {
	CustomerID    string          `json:"customer_id"`
	Username      string          `json:"username,omitempty"`
	Email         string          `json:"email,omitempty"`
	TotalOrders   int             `json:"total_orders"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	LastOrderDate *time.Time      `json:"last_order_date,omitempty"`
}

// CustomerTotals folds orders into per-customer totals. Orders without
// any customer identifier are skipped. Display fields (username, email)
// are first-seen-wins; later orders for the same customer update only
// the numeric and date aggregates, so the result is independent of
// input ordering for everything except those display fields.
func CustomerTotals(orders []domain.Order) map[string]*CustomerTotal {
	totals := make(map[string]*CustomerTotal)
	for _, o := range orders {
		if o.CustomerID == "" {
			continue
		}

		ct, ok := totals[o.CustomerID]
		if !ok {
			ct = &CustomerTotal{
				CustomerID: o.CustomerID,
				Username:   o.Username,
				Email:      o.Email,
				TotalSpent: decimal.Zero,
			}
			totals[o.CustomerID] = ct
		}

		ct.TotalOrders++
		ct.TotalSpent = ct.TotalSpent.Add(o.Total)
		if o.PlacedAt != nil && (ct.LastOrderDate == nil || o.PlacedAt.After(*ct.LastOrderDate)) {
			placed := *o.PlacedAt
			ct.LastOrderDate = &placed
		}
	}
	return totals
}

// CustomerTotalsList returns the totals sorted by total spent,
// descending, with customer id as a deterministic tie-break.
func CustomerTotalsList(orders []domain.Order) []CustomerTotal {
	totals := CustomerTotals(orders)
	list := make([]CustomerTotal, 0, len(totals))
	for _, ct := range totals {
		list = append(list, *ct)
	}
	sort.Slice(list, func(i, j int) bool {
		if c := list[i].TotalSpent.Cmp(list[j].TotalSpent); c != 0 {
			return c > 0
		}
		return list[i].CustomerID < list[j].CustomerID
	})
	return list
}

const monthLabelLayout = "Jan 2006"

// MonthlyBucket is one month's revenue across all payments.
type MonthlyBucket struct {
	Month      string          `json:"month"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"order_count"`
}

// MonthlyRevenue groups payments into "<Month> <Year>" buckets, in the
// payment's local time zone, sorted chronologically. Payments without a
// usable date are skipped.
//
// The sort reconstructs a date from the bucket label rather than the
// original timestamps, matching the console's historical behaviour.
func MonthlyRevenue(payments []domain.Payment) []MonthlyBucket {
	buckets := make(map[string]*MonthlyBucket)
	for _, p := range payments {
		if p.PaidAt == nil {
			continue
		}

		label := p.PaidAt.Format(monthLabelLayout)
		b, ok := buckets[label]
		if !ok {
			b = &MonthlyBucket{Month: label, Revenue: decimal.Zero}
			buckets[label] = b
		}
		b.Revenue = b.Revenue.Add(p.Amount)
		b.OrderCount++
	}

	list := make([]MonthlyBucket, 0, len(buckets))
	for _, b := range buckets {
		list = append(list, *b)
	}
	sort.Slice(list, func(i, j int) bool {
		ti, _ := time.Parse(monthLabelLayout, list[i].Month)
		tj, _ := time.Parse(monthLabelLayout, list[j].Month)
		return ti.Before(tj)
	})
	return list
}

const recentOrderCount = 5

// Summary is the dashboard's headline view.
type Summary struct {
	TotalProducts  int             `json:"total_products"`
	TotalCustomers int             `json:"total_customers"`
	TotalOrders    int             `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	RecentOrders   []domain.Order  `json:"recent_orders"`
}

// DashboardSummary folds the three raw collections into the dashboard
// headline numbers. A source that failed to fetch arrives as an empty
// (or nil) slice and simply contributes zeros — the summary is always
// computed. Recent orders are the first five in received order; the
// backend already returns newest-first.
func DashboardSummary(products []domain.Product, orders []domain.Order, payments []domain.Payment) Summary {
	revenue := decimal.Zero
	for _, p := range payments {
		revenue = revenue.Add(p.Amount)
	}

	customers := make(map[string]struct{})
	for _, o := range orders {
		if o.CustomerID != "" {
			customers[o.CustomerID] = struct{}{}
		}
	}

	recent := orders
	if len(recent) > recentOrderCount {
		recent = recent[:recentOrderCount]
	}
	recentOrders := make([]domain.Order, len(recent))
	copy(recentOrders, recent)

	return Summary{
		TotalProducts:  len(products),
		TotalCustomers: len(customers),
		TotalOrders:    len(orders),
		TotalRevenue:   revenue,
		RecentOrders:   recentOrders,
	}
}

var (
	hexTermPattern     = regexp.MustCompile(`^[0-9a-fA-F-]{12,}$`)
	numericTermPattern = regexp.MustCompile(`^[0-9]+$`)
)

// FilterOrders filters by status and searches by identifier. The term
// is classified in order: a long hex/UUID-looking term is matched as a
// substring of the order and customer ids; a purely numeric term must
// equal the order id exactly; anything else is matched as a substring
// of the customer id only. Free-text name search is deliberately not
// supported here.
func FilterOrders(orders []domain.Order, term, statusFilter string) []domain.Order {
	term = strings.TrimSpace(term)
	lowered := strings.ToLower(term)

	match := func(o domain.Order) bool { return true }
	switch {
	case term == "":
		// status filter only
	case hexTermPattern.MatchString(term):
		match = func(o domain.Order) bool {
			return strings.Contains(strings.ToLower(o.ID), lowered) ||
				strings.Contains(strings.ToLower(o.CustomerID), lowered)
		}
	case numericTermPattern.MatchString(term):
		match = func(o domain.Order) bool { return o.ID == term }
	default:
		match = func(o domain.Order) bool {
			return strings.Contains(strings.ToLower(o.CustomerID), lowered)
		}
	}

	var out []domain.Order
	for _, o := range orders {
		if statusFilter != "" && statusFilter != "all" && !strings.EqualFold(o.Status, statusFilter) {
			continue
		}
		if match(o) {
			out = append(out, o)
		}
	}
	return out
}

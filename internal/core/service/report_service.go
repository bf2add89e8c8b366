package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/appliancehub/console-api/internal/core/domain"
	"github.com/appliancehub/console-api/internal/core/ports"
	"github.com/appliancehub/console-api/internal/core/service/aggregate"
)

// ReportService fetches raw collections through the gateway and runs
// the aggregation engine over them. It holds no state of its own; every
// report is recomputed from a fresh fetch.
type ReportService struct {
	backend ports.Backend
	log     zerolog.Logger
}

func NewReportService(backend ports.Backend, log zerolog.Logger) *ReportService {
	return &ReportService{backend: backend, log: log}
}

// Dashboard fetches products, orders, and payments concurrently and
// folds them into the summary. Each fetch fails independently: a failed
// source contributes an empty collection and the summary is still
// produced. Dashboard therefore never returns an error.
func (s *ReportService) Dashboard(ctx context.Context, cred domain.Credential) aggregate.Summary {
	var (
		products []domain.Product
		orders   []domain.Order
		payments []domain.Payment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if products, err = s.backend.ListProducts(gctx, cred); err != nil {
			s.log.Warn().Err(err).Msg("products fetch failed, dashboard degrades")
			products = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if orders, err = s.backend.ListOrders(gctx, cred); err != nil {
			s.log.Warn().Err(err).Msg("orders fetch failed, dashboard degrades")
			orders = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if payments, err = s.backend.ListPayments(gctx, cred); err != nil {
			s.log.Warn().Err(err).Msg("payments fetch failed, dashboard degrades")
			payments = nil
		}
		return nil
	})
	_ = g.Wait() // goroutines swallow their own errors

	return aggregate.DashboardSummary(products, orders, payments)
}

// CustomerReport returns per-customer lifetime totals, highest spenders
// first. Order rows often omit username or email, so the customer list
// is fetched alongside to backfill display fields; if that fetch fails
// the report still goes out unenriched.
func (s *ReportService) CustomerReport(ctx context.Context, cred domain.Credential) ([]aggregate.CustomerTotal, error) {
	var (
		orders    []domain.Order
		customers []domain.Customer
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.backend.ListOrders(gctx, cred)
		return err
	})
	g.Go(func() error {
		var err error
		if customers, err = s.backend.ListCustomers(gctx, cred); err != nil {
			s.log.Warn().Err(err).Msg("customers fetch failed, report goes out unenriched")
			customers = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("customer report: %w", err)
	}

	totals := aggregate.CustomerTotalsList(orders)

	byID := make(map[string]domain.Customer, len(customers))
	for _, c := range customers {
		if c.ID != "" {
			byID[c.ID] = c
		}
	}
	for i := range totals {
		c, ok := byID[totals[i].CustomerID]
		if !ok {
			continue
		}
		if totals[i].Username == "" {
			totals[i].Username = c.Username
		}
		if totals[i].Email == "" {
			totals[i].Email = c.Email
		}
	}
	return totals, nil
}

// MonthlyRevenue returns chronologically ordered revenue buckets.
func (s *ReportService) MonthlyRevenue(ctx context.Context, cred domain.Credential) ([]aggregate.MonthlyBucket, error) {
	payments, err := s.backend.ListPayments(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}
	return aggregate.MonthlyRevenue(payments), nil
}

// SearchOrders lists orders filtered by identifier term and status.
func (s *ReportService) SearchOrders(ctx context.Context, cred domain.Credential, term, status string) ([]domain.Order, error) {
	orders, err := s.backend.ListOrders(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("search orders: %w", err)
	}
	return aggregate.FilterOrders(orders, term, status), nil
}

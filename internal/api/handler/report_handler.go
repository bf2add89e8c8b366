package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/appliancehub/console-api/internal/api/metrics"
	"github.com/appliancehub/console-api/internal/core/ports"
	"github.com/appliancehub/console-api/internal/core/service"
)

// ReportHandler serves the admin console's aggregated views. Every
// report is computed on demand from fresh backend data.
type ReportHandler struct {
	reports *service.ReportService
	session ports.AuthSession
}

func NewReportHandler(reports *service.ReportService, session ports.AuthSession) *ReportHandler {
	return &ReportHandler{reports: reports, session: session}
}

// Dashboard returns the headline numbers plus the most recent orders.
// Backend sources that fail contribute zeroes instead of failing the
// whole view.
//
// @Summary      Dashboard summary
// @Tags         reports
// @Produce      json
// @Success      200  {object}  aggregate.Summary
// @Router       /admin/dashboard [get]
func (h *ReportHandler) Dashboard(c echo.Context) error {
	cred, err := sessionCredential(h.session)
	if err != nil {
		return err
	}

	timer := prometheus.NewTimer(metrics.ReportBuildDuration.WithLabelValues("dashboard"))
	summary := h.reports.Dashboard(c.Request().Context(), cred)
	timer.ObserveDuration()

	return c.JSON(http.StatusOK, summary)
}

// Customers returns lifetime spend per customer, highest first.
//
// @Summary      Customer spend report
// @Tags         reports
// @Produce      json
// @Success      200  {array}  aggregate.CustomerTotal
// @Router       /admin/reports/customers [get]
func (h *ReportHandler) Customers(c echo.Context) error {
	cred, err := sessionCredential(h.session)
	if err != nil {
		return err
	}

	timer := prometheus.NewTimer(metrics.ReportBuildDuration.WithLabelValues("customers"))
	totals, err := h.reports.CustomerReport(c.Request().Context(), cred)
	timer.ObserveDuration()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, totals)
}

// MonthlyRevenue returns chronologically ordered revenue buckets.
//
// @Summary      Monthly revenue report
// @Tags         reports
// @Produce      json
// @Success      200  {array}  aggregate.MonthlyBucket
// @Router       /admin/reports/revenue [get]
func (h *ReportHandler) MonthlyRevenue(c echo.Context) error {
	cred, err := sessionCredential(h.session)
	if err != nil {
		return err
	}

	timer := prometheus.NewTimer(metrics.ReportBuildDuration.WithLabelValues("monthly_revenue"))
	buckets, err := h.reports.MonthlyRevenue(c.Request().Context(), cred)
	timer.ObserveDuration()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, buckets)
}

// SearchOrders filters the order list by an identifier term and an
// optional status.
//
// @Summary      Search orders
// @Tags         reports
// @Produce      json
// @Param        term    query  string  false  "identifier search term"
// @Param        status  query  string  false  "order status filter"
// @Success      200  {array}  domain.Order
// @Router       /admin/orders/search [get]
func (h *ReportHandler) SearchOrders(c echo.Context) error {
	cred, err := sessionCredential(h.session)
	if err != nil {
		return err
	}

	timer := prometheus.NewTimer(metrics.ReportBuildDuration.WithLabelValues("order_search"))
	orders, err := h.reports.SearchOrders(
		c.Request().Context(),
		cred,
		c.QueryParam("term"),
		c.QueryParam("status"),
	)
	timer.ObserveDuration()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

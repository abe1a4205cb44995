package controllers

import (
	"log"
	"net/http"

	"github.com/doujindesk/doujindesk-api/internal/http/request"
	"github.com/doujindesk/doujindesk-api/internal/http/response"
	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/internal/services"
)

// FinanceController backs the financial dashboard.
type FinanceController struct {
	finance *services.FinanceService
	tickets *services.TicketService
	rates   *services.ExchangeRates
	logger  *log.Logger
}

func NewFinanceController(finance *services.FinanceService, tickets *services.TicketService, rates *services.ExchangeRates, logger *log.Logger) *FinanceController {
	return &FinanceController{finance: finance, tickets: tickets, rates: rates, logger: logger}
}

// Record handles POST /api/finance/transactions
func (c *FinanceController) Record(w http.ResponseWriter, r *request.Request) {
	var input services.TransactionInput
	if !bind(w, r, &input) {
		return
	}

	tx, err := c.finance.Record(r.Context(), &input)
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	created(w, tx)
}

// Index handles GET /api/finance/transactions?type=
func (c *FinanceController) Index(w http.ResponseWriter, r *request.Request) {
	txs, err := c.finance.List(r.Context(), models.TransactionType(r.Query("type", "")))
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	list(w, txs, len(txs))
}

// Show handles GET /api/finance/transactions/{id}
func (c *FinanceController) Show(w http.ResponseWriter, r *request.Request) {
	tx, err := c.finance.FindByID(r.Context(), r.RouteParam("id"))
	if err != nil {
		response.FromError(w, err, c.logger)
		return
	}

	ok(w, tx)
}

// Summary handles GET /api/finance/summary
func (c *FinanceController) Summary(w http.ResponseWriter, r *request.Request) {
	ok(w, c.finance.Summary(r.Context()))
}

// Sales handles GET /api/finance/sales
func (c *FinanceController) Sales(w http.ResponseWriter, r *request.Request) {
	ok(w, c.tickets.SalesStats(r.Context()))
}

// ExchangeRate handles GET /api/exchange-rate
func (c *FinanceController) ExchangeRate(w http.ResponseWriter, r *request.Request) {
	ok(w, map[string]interface{}{
		"base":       models.CurrencyUSD,
		"quote":      models.CurrencyIDR,
		"rate":       c.rates.Rate(),
		"updated_at": c.rates.UpdatedAt(),
	})
}

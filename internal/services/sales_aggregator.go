// -----------------------------------------------------------------------------
// Sales Aggregator
// -----------------------------------------------------------------------------
// Full recompute of the sales summary over every paid purchase. Pending,
// failed and refunded purchases do not count. Each purchase carries both
// currency totals, so both revenue columns are summed for every sale.
// -----------------------------------------------------------------------------

package services

import (
	"sort"
	"sync"
	"time"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/shopspring/decimal"
)

// TicketTypeSales is the breakdown of one ticket type.
type TicketTypeSales struct {
	TicketTypeID string          `json:"ticket_type_id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	RevenueIDR   decimal.Decimal `json:"revenue_idr"`
	RevenueUSD   decimal.Decimal `json:"revenue_usd"`
}

// SalesStats is the sales summary.
type SalesStats struct {
	TotalRevenueIDR decimal.Decimal    `json:"total_revenue_idr"`
	TotalRevenueUSD decimal.Decimal    `json:"total_revenue_usd"`
	TotalTickets    int                `json:"total_tickets"`
	PaidPurchases   int                `json:"paid_purchases"`
	ByTicketType    []*TicketTypeSales `json:"by_ticket_type"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// SalesAggregator keeps the last computed SalesStats.
type SalesAggregator struct {
	mu    sync.RWMutex
	stats *SalesStats
}

func NewSalesAggregator() *SalesAggregator {
	return &SalesAggregator{stats: &SalesStats{ByTicketType: []*TicketTypeSales{}}}
}

// Recompute rebuilds the summary from purchases and stores it.
func (a *SalesAggregator) Recompute(purchases []*models.TicketPurchase, now time.Time) *SalesStats {
	stats := ComputeSales(purchases)
	stats.UpdatedAt = now

	a.mu.Lock()
	a.stats = stats
	a.mu.Unlock()

	return stats.clone()
}

// Current returns a copy of the last computed summary.
func (a *SalesAggregator) Current() *SalesStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats.clone()
}

// ComputeSales sums the paid purchases. The breakdown is ordered by ticket
// type id.
func ComputeSales(purchases []*models.TicketPurchase) *SalesStats {
	stats := &SalesStats{
		TotalRevenueIDR: decimal.Zero,
		TotalRevenueUSD: decimal.Zero,
	}
	byType := make(map[string]*TicketTypeSales)

	for _, p := range purchases {
		if !p.IsPaid() {
			continue
		}

		stats.PaidPurchases++
		stats.TotalTickets += p.Quantity
		stats.TotalRevenueIDR = stats.TotalRevenueIDR.Add(p.TotalPriceIDR)
		stats.TotalRevenueUSD = stats.TotalRevenueUSD.Add(p.TotalPriceUSD)

		entry, ok := byType[p.TicketTypeID]
		if !ok {
			entry = &TicketTypeSales{
				TicketTypeID: p.TicketTypeID,
				Name:         p.TicketTypeName,
				RevenueIDR:   decimal.Zero,
				RevenueUSD:   decimal.Zero,
			}
			byType[p.TicketTypeID] = entry
		}
		entry.Quantity += p.Quantity
		entry.RevenueIDR = entry.RevenueIDR.Add(p.TotalPriceIDR)
		entry.RevenueUSD = entry.RevenueUSD.Add(p.TotalPriceUSD)
	}

	stats.ByTicketType = make([]*TicketTypeSales, 0, len(byType))
	for _, entry := range byType {
		stats.ByTicketType = append(stats.ByTicketType, entry)
	}
	sort.Slice(stats.ByTicketType, func(i, j int) bool {
		return stats.ByTicketType[i].TicketTypeID < stats.ByTicketType[j].TicketTypeID
	})

	return stats
}

// ForTicketType returns the breakdown entry of id, or nil.
func (s *SalesStats) ForTicketType(id string) *TicketTypeSales {
	for _, entry := range s.ByTicketType {
		if entry.TicketTypeID == id {
			return entry
		}
	}
	return nil
}

func (s *SalesStats) clone() *SalesStats {
	c := *s
	c.ByTicketType = make([]*TicketTypeSales, 0, len(s.ByTicketType))
	for _, entry := range s.ByTicketType {
		e := *entry
		c.ByTicketType = append(c.ByTicketType, &e)
	}
	return &c
}

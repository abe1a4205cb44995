package strategy

import (
	"time"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/shopspring/decimal"
)

// DiscountFlags are the buyer's discount eligibility flags. Age is nil when
// the buyer did not state one.
type DiscountFlags struct {
	IsPWD   bool `json:"is_pwd"`
	IsChild bool `json:"is_child"`
	Age     *int `json:"age,omitempty"`
}

// DiscountContext holds the inputs a discount strategy may look at.
type DiscountContext struct {
	Quantity int
	Flags    DiscountFlags
}

// DiscountStrategy defines the interface for a single discount rule.
// Percentage returns 0 when the rule does not apply.
type DiscountStrategy interface {
	Percentage(context *DiscountContext) int
	Type() models.DiscountType
	GetName() string
}

// PWDDiscountStrategy - Discount for persons with disability
type PWDDiscountStrategy struct {
	DiscountPercent int
}

func (s *PWDDiscountStrategy) Percentage(context *DiscountContext) int {
	if context.Flags.IsPWD {
		return s.DiscountPercent
	}
	return 0
}

func (s *PWDDiscountStrategy) Type() models.DiscountType {
	return models.DiscountTypePWD
}

func (s *PWDDiscountStrategy) GetName() string {
	return "PWD Discount"
}

// ChildDiscountStrategy - Discount for children under MaxAge.
// Both the child flag and a stated age are required.
type ChildDiscountStrategy struct {
	MaxAge          int
	DiscountPercent int
}

func (s *ChildDiscountStrategy) Percentage(context *DiscountContext) int {
	if context.Flags.IsChild && context.Flags.Age != nil && *context.Flags.Age < s.MaxAge {
		return s.DiscountPercent
	}
	return 0
}

func (s *ChildDiscountStrategy) Type() models.DiscountType {
	return models.DiscountTypeChild
}

func (s *ChildDiscountStrategy) GetName() string {
	return "Child Discount"
}

// GroupDiscountStrategy - Discounts for bulk purchases
type GroupDiscountStrategy struct {
	MinTickets      int
	DiscountPercent int
}

func (s *GroupDiscountStrategy) Percentage(context *DiscountContext) int {
	if context.Quantity >= s.MinTickets {
		return s.DiscountPercent
	}
	return 0
}

func (s *GroupDiscountStrategy) Type() models.DiscountType {
	return models.DiscountTypeBulk
}

func (s *GroupDiscountStrategy) GetName() string {
	return "Group Discount"
}

// BestDiscountStrategy picks the single highest-percentage applicable
// discount. Discounts never stack. On a tie the strategy listed first wins,
// so the order of Strategies is the tie-break precedence.
type BestDiscountStrategy struct {
	Strategies []DiscountStrategy
}

// Select returns the winning strategy and its percentage, or nil, 0.
func (s *BestDiscountStrategy) Select(context *DiscountContext) (DiscountStrategy, int) {
	var best DiscountStrategy
	bestPercent := 0

	for _, strategy := range s.Strategies {
		percent := strategy.Percentage(context)
		if percent > bestPercent {
			best = strategy
			bestPercent = percent
		}
	}

	return best, bestPercent
}

func (s *BestDiscountStrategy) GetName() string {
	return "Best Discount"
}

// EarlyBirdPricingStrategy - Picks the per-unit base price.
// The early-bird price is used when the type defines one and now is inside
// its window; otherwise the standard price.
type EarlyBirdPricingStrategy struct{}

// UnitPrice returns the per-unit price in both currencies and whether the
// early-bird price was used.
func (s *EarlyBirdPricingStrategy) UnitPrice(ticketType *models.TicketType, now time.Time) (decimal.Decimal, decimal.Decimal, bool) {
	if eb := ticketType.EarlyBird; eb != nil && eb.Active(now) {
		return eb.PriceIDR, eb.PriceUSD, true
	}
	return ticketType.PriceIDR, ticketType.PriceUSD, false
}

func (s *EarlyBirdPricingStrategy) GetName() string {
	return "Early Bird Pricing"
}

// PricingStrategyFactory - Factory for creating pricing strategies
type PricingStrategyFactory struct{}

func NewPricingStrategyFactory() *PricingStrategyFactory {
	return &PricingStrategyFactory{}
}

func (f *PricingStrategyFactory) CreatePWDStrategy(discountPercent int) DiscountStrategy {
	return &PWDDiscountStrategy{DiscountPercent: discountPercent}
}

func (f *PricingStrategyFactory) CreateChildStrategy(maxAge, discountPercent int) DiscountStrategy {
	return &ChildDiscountStrategy{MaxAge: maxAge, DiscountPercent: discountPercent}
}

func (f *PricingStrategyFactory) CreateGroupStrategy(minTickets, discountPercent int) DiscountStrategy {
	return &GroupDiscountStrategy{MinTickets: minTickets, DiscountPercent: discountPercent}
}

// CreateBestDiscountStrategy builds the selector; strategies are listed in
// tie-break order.
func (f *PricingStrategyFactory) CreateBestDiscountStrategy(strategies ...DiscountStrategy) *BestDiscountStrategy {
	return &BestDiscountStrategy{Strategies: strategies}
}

// CreateDefaultDiscounts returns the convention's discount rules:
// PWD 20%, child under 12 50%, five or more tickets 10%, with ties resolved
// PWD > child > bulk.
func (f *PricingStrategyFactory) CreateDefaultDiscounts() *BestDiscountStrategy {
	return f.CreateBestDiscountStrategy(
		f.CreatePWDStrategy(20),
		f.CreateChildStrategy(12, 50),
		f.CreateGroupStrategy(5, 10),
	)
}

package repositories

import (
	"time"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/shopspring/decimal"
)

// DefaultTicketTypes is the catalog a fresh install starts with. The early
// bird window closes two weeks before eventStart.
func DefaultTicketTypes(eventStart, now time.Time) []*models.TicketType {
	earlyBirdEnd := eventStart.AddDate(0, 0, -14)

	types := []*models.TicketType{
		{
			BaseModel:         models.BaseModel{ID: "weekend-pass"},
			Name:              "Weekend Pass",
			Description:       "Entry for both convention days",
			PriceIDR:          decimal.NewFromInt(150000),
			PriceUSD:          decimal.RequireFromString("10.00"),
			Category:          models.TicketCategoryWeekend,
			Benefits:          []string{"Two-day entry", "Event guidebook", "Exclusive wristband"},
			MaxQuantity:       2000,
			AvailableQuantity: 2000,
			IsActive:          true,
			EarlyBird: &models.EarlyBird{
				PriceIDR:  decimal.NewFromInt(120000),
				PriceUSD:  decimal.RequireFromString("8.00"),
				StartDate: now.AddDate(0, -1, 0),
				EndDate:   earlyBirdEnd,
			},
		},
		{
			BaseModel:         models.BaseModel{ID: "day-1"},
			Name:              "Day 1 Pass",
			Description:       "Entry for Saturday only",
			PriceIDR:          decimal.NewFromInt(85000),
			PriceUSD:          decimal.RequireFromString("5.50"),
			Category:          models.TicketCategorySingleDay,
			Benefits:          []string{"Saturday entry", "Event guidebook"},
			MaxQuantity:       1500,
			AvailableQuantity: 1500,
			IsActive:          true,
		},
		{
			BaseModel:         models.BaseModel{ID: "day-2"},
			Name:              "Day 2 Pass",
			Description:       "Entry for Sunday only",
			PriceIDR:          decimal.NewFromInt(85000),
			PriceUSD:          decimal.RequireFromString("5.50"),
			Category:          models.TicketCategorySingleDay,
			Benefits:          []string{"Sunday entry", "Event guidebook"},
			MaxQuantity:       1500,
			AvailableQuantity: 1500,
			IsActive:          true,
		},
		{
			BaseModel:         models.BaseModel{ID: "vip-pass"},
			Name:              "VIP Pass",
			Description:       "Priority entry with the artist meet and greet",
			PriceIDR:          decimal.NewFromInt(300000),
			PriceUSD:          decimal.RequireFromString("20.00"),
			Category:          models.TicketCategoryVIP,
			Benefits:          []string{"Priority entry", "Meet and greet", "Limited artbook", "VIP lounge"},
			MaxQuantity:       200,
			AvailableQuantity: 200,
			IsActive:          true,
			RequiresID:        true,
		},
		{
			BaseModel:         models.BaseModel{ID: "cosplay-special"},
			Name:              "Cosplay Competition Pass",
			Description:       "Weekend entry plus a cosplay competition slot",
			PriceIDR:          decimal.NewFromInt(200000),
			PriceUSD:          decimal.RequireFromString("13.50"),
			Category:          models.TicketCategorySpecial,
			Benefits:          []string{"Two-day entry", "Competition slot", "Changing room access"},
			MaxQuantity:       100,
			AvailableQuantity: 100,
			IsActive:          true,
			AgeRestriction:    13,
			RequiresID:        true,
		},
	}

	for _, tt := range types {
		tt.Initialize(now)
	}
	return types
}

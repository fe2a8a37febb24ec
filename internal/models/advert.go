package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Advert sizes
const (
	SizeQuarter      = "1/4"
	SizeThird        = "1/3"
	SizeHalf         = "1/2"
	SizeTwoThirds    = "2/3"
	SizeFull         = "FUL"
	SizeCenterSpread = "CTR"
)

const DefaultSize = SizeThird

type SizeChoice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Sizes lists the page sizes in the order they are offered.
var Sizes = []SizeChoice{
	{ID: SizeQuarter, Label: "Quarter Page"},
	{ID: SizeThird, Label: "Third Page"},
	{ID: SizeHalf, Label: "Half Page"},
	{ID: SizeTwoThirds, Label: "Two-Thirds Page"},
	{ID: SizeFull, Label: "Full Page"},
	{ID: SizeCenterSpread, Label: "Center Spread"},
}

func IsValidSize(s string) bool {
	for _, c := range Sizes {
		if c.ID == s {
			return true
		}
	}
	return false
}

func SizeLabel(s string) string {
	for _, c := range Sizes {
		if c.ID == s {
			return c.Label
		}
	}
	return s
}

type Advert struct {
	ID           uuid.UUID   `json:"id"`
	AdvertiserID uuid.UUID   `json:"advertiser_id" validate:"required"`
	Size         string      `json:"size" validate:"ad_size"`
	Description  string      `json:"description" validate:"notblank"`
	ImageFile    string      `json:"image_file" validate:"required,max=255"`
	IssueIDs     []uuid.UUID `json:"issue_ids" validate:"min=1"`
	FinalPrice   *string     `json:"final_price,omitempty" validate:"omitempty,price"`
	Paid         bool        `json:"paid"`
	Notes        *string     `json:"notes,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// AdvertWithAdvertiser embeds Advert with the owner's display fields.
type AdvertWithAdvertiser struct {
	Advert
	AdvertiserName string     `json:"advertiser_name"`
	SalespersonID  *uuid.UUID `json:"salesperson_id,omitempty"`
	IssuesCount    int        `json:"issues_count"`
}

// Validate applies the default size, trims the description and clears a
// blank price before checking the fields.
func (a *Advert) Validate() error {
	if a.Size == "" {
		a.Size = DefaultSize
	}
	a.Description = strings.TrimSpace(a.Description)
	if a.FinalPrice != nil {
		if p := strings.TrimSpace(*a.FinalPrice); p == "" {
			a.FinalPrice = nil
		} else {
			a.FinalPrice = &p
		}
	}
	return check(a)
}

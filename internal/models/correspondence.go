package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ReceptiveMin = 1
	ReceptiveMax = 10
)

// Correspondence is one logged communication with an advertiser.
type Correspondence struct {
	ID           uuid.UUID `json:"id"`
	AdvertiserID uuid.UUID `json:"advertiser_id" validate:"required"`
	From         string    `json:"from" validate:"notblank,max=128"`
	To           string    `json:"to" validate:"notblank,max=128"`
	Text         string    `json:"text" validate:"notblank"`
	CreatedOn    time.Time `json:"created_on"`
	Receptive    *int      `json:"receptive,omitempty" validate:"omitempty,min=1,max=10"`
}

// Title is the first line of the text.
func (c *Correspondence) Title() string {
	if i := strings.IndexAny(c.Text, "\r\n"); i >= 0 {
		return c.Text[:i]
	}
	return c.Text
}

const receptiveRule = "omitempty,min=1,max=10"

func ValidReceptive(r *int) error {
	if validate.Var(r, receptiveRule) != nil {
		return invalidf("receptive must be between %d and %d", ReceptiveMin, ReceptiveMax)
	}
	return nil
}

func (c *Correspondence) Validate() error {
	return check(c)
}

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Advertiser struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name" validate:"notblank,max=128"`
	Address1      string     `json:"address_1" validate:"notblank,max=128"`
	Address2      *string    `json:"address_2,omitempty" validate:"omitempty,max=128"`
	City          string     `json:"city" validate:"notblank,max=64"`
	State         string     `json:"state" validate:"us_state"`
	ZipCode       string     `json:"zip_code" validate:"len=5,number"`
	Contact       string     `json:"contact" validate:"notblank,max=128"`
	Position      string     `json:"position" validate:"notblank,max=128"`
	Telephone     string     `json:"telephone" validate:"phone"`
	Email         string     `json:"email" validate:"required,email,max=254"`
	Approved      bool       `json:"approved"`
	SalespersonID *uuid.UUID `json:"salesperson_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// MailingAddress formats the postal address on one line.
func (a *Advertiser) MailingAddress() string {
	if a.Address2 != nil && *a.Address2 != "" {
		return fmt.Sprintf("%s %s, %s, %s %s", a.Address1, *a.Address2, a.City, a.State, a.ZipCode)
	}
	return fmt.Sprintf("%s, %s, %s %s", a.Address1, a.City, a.State, a.ZipCode)
}

func (a *Advertiser) String() string {
	return a.Name
}

// Normalize trims free text and canonicalises the state, phone and email.
func (a *Advertiser) Normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Address1 = strings.TrimSpace(a.Address1)
	if a.Address2 != nil {
		v := strings.TrimSpace(*a.Address2)
		if v == "" {
			a.Address2 = nil
		} else {
			a.Address2 = &v
		}
	}
	a.City = strings.TrimSpace(a.City)
	a.State = strings.ToUpper(strings.TrimSpace(a.State))
	a.ZipCode = strings.TrimSpace(a.ZipCode)
	a.Contact = strings.TrimSpace(a.Contact)
	a.Position = strings.TrimSpace(a.Position)
	a.Telephone = NormalizePhone(a.Telephone)
	a.Email = NormalizeEmail(a.Email)
}

func (a *Advertiser) Validate() error {
	return check(a)
}

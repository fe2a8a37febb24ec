package rbac

import (
	"github.com/google/uuid"
	"github.com/lampoon-ads/backend/internal/models"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Kind string

const (
	KindAdvertiser     Kind = "advertiser"
	KindAdvert         Kind = "advert"
	KindCorrespondence Kind = "correspondence"
)

// Actor is the acting user as the permission checks see it.
type Actor struct {
	UserID    uuid.UUID
	Staff     bool
	Superuser bool
}

func ActorFor(u *models.User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{UserID: u.ID, Staff: u.IsStaff, Superuser: u.IsSuperuser}
}

// CanAdmin reports whether the actor may use the staff surface at all.
func (a Actor) CanAdmin() bool {
	return a.Staff || a.Superuser
}

// Subject is the part of an entity the permission checks depend on.
// Adverts and correspondence carry their advertiser's salesperson.
type Subject struct {
	Kind          Kind
	SalespersonID *uuid.UUID
	Approved      bool
}

func AdvertiserSubject(a *models.Advertiser) Subject {
	return Subject{Kind: KindAdvertiser, SalespersonID: a.SalespersonID, Approved: a.Approved}
}

func AdvertSubject(owner *models.Advertiser) Subject {
	return Subject{Kind: KindAdvert, SalespersonID: owner.SalespersonID}
}

func CorrespondenceSubject(owner *models.Advertiser) Subject {
	return Subject{Kind: KindCorrespondence, SalespersonID: owner.SalespersonID}
}

// Allowed decides one action for every entity kind.
func Allowed(actor Actor, action Action, s Subject) bool {
	switch action {
	case ActionCreate:
		return true
	case ActionDelete:
		return actor.Superuser
	case ActionUpdate:
		return CanUpdate(actor, s)
	}
	return false
}

func CanUpdate(actor Actor, s Subject) bool {
	switch {
	case actor.Superuser:
		return true
	case s.SalespersonID == nil:
		return true
	case *s.SalespersonID == actor.UserID:
		return true
	case s.Kind == KindAdvertiser && !s.Approved:
		return true
	}
	return false
}

func CanDelete(actor Actor, s Subject) bool {
	return Allowed(actor, ActionDelete, s)
}

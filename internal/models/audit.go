package models

import (
	"time"

	"github.com/google/uuid"
)

// Account events
const (
	ActionUserLoggedIn    = "USER_LOGGED_IN"
	ActionLoginAttempted  = "LOGIN_ATTEMPTED"
	ActionSignupAttempted = "SIGNUP_ATTEMPTED"
	ActionUserSignedUp    = "USER_SIGNED_UP"
	ActionPasswordChanged = "PASSWORD_CHANGED"
)

// Audited entity types
const (
	EntityUser           = "user"
	EntityAdvertiser     = "advertiser"
	EntityAdvert         = "advert"
	EntityIssue          = "issue"
	EntityCorrespondence = "correspondence"
)

// Entity verbs, joined to the type as in "advert_created".
const (
	VerbCreated    = "created"
	VerbUpdated    = "updated"
	VerbDeleted    = "deleted"
	VerbApproved   = "approved"
	VerbUnapproved = "unapproved"
)

func EntityAction(entityType, verb string) string {
	return entityType + "_" + verb
}

type AuditLog struct {
	ID          uuid.UUID  `json:"id"`
	ActorUserID *uuid.UUID `json:"actor_user_id,omitempty"`
	ActorType   string     `json:"actor_type"` // user/staff/system
	Action      string     `json:"action"`
	EntityType  string     `json:"entity_type"`
	EntityID    *uuid.UUID `json:"entity_id,omitempty"`
	Meta        any        `json:"meta,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

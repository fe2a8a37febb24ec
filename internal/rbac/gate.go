package rbac

import "github.com/lampoon-ads/backend/internal/models"

type GateOutcome int

const (
	GateContinue GateOutcome = iota
	GateRedirectToRegister
	GateRedirectToPending
)

const (
	RegisterPath = "/register"
	PendingPath  = "/pending"
)

func (g GateOutcome) String() string {
	switch g {
	case GateContinue:
		return "continue"
	case GateRedirectToRegister:
		return "register"
	case GateRedirectToPending:
		return "pending"
	}
	return "unknown"
}

// Location is the redirect target, empty for GateContinue.
func (g GateOutcome) Location() string {
	switch g {
	case GateRedirectToRegister:
		return RegisterPath
	case GateRedirectToPending:
		return PendingPath
	}
	return ""
}

// Gate checks that the user has an advertiser profile and that the
// profile is approved, in that order. profile is the advertiser linked
// to user, nil when there is none.
func Gate(user *models.User, profile *models.Advertiser) GateOutcome {
	if user == nil || user.AdvertiserID == nil || profile == nil {
		return GateRedirectToRegister
	}
	if !profile.Approved {
		return GateRedirectToPending
	}
	return GateContinue
}

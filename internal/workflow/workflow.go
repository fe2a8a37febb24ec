// Package workflow decides which notifications a saved advertiser or
// advert produces. It compares the stored version, read before the write,
// with the version being written, and has no side effects.
package workflow

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lampoon-ads/backend/internal/models"
)

// PaidUpdatePolicy controls when saving an existing paid advert notifies.
type PaidUpdatePolicy string

const (
	// PaidOnTransition notifies only when paid flips from false to true.
	PaidOnTransition PaidUpdatePolicy = "on_transition"
	// PaidEverySave notifies on every save while the advert is paid.
	PaidEverySave PaidUpdatePolicy = "every_save"
)

func ParsePaidUpdatePolicy(s string) (PaidUpdatePolicy, error) {
	switch PaidUpdatePolicy(s) {
	case PaidOnTransition, PaidEverySave:
		return PaidUpdatePolicy(s), nil
	case "":
		return PaidOnTransition, nil
	}
	return "", fmt.Errorf("unknown paid update policy %q", s)
}

// Notification is one email the workflow wants sent.
type Notification struct {
	Topic        Topic              `json:"topic"`
	To           string             `json:"to"`
	AdvertiserID uuid.UUID          `json:"advertiser_id"`
	Advertiser   *models.Advertiser `json:"advertiser"`
	Advert       *models.Advert     `json:"advert,omitempty"`
}

// Data is the template payload.
func (n Notification) Data() map[string]any {
	data := map[string]any{"advertiser": n.Advertiser}
	if n.Advert != nil {
		data["ad"] = n.Advert
	}
	return data
}

func advertiserNotification(t Topic, a *models.Advertiser) Notification {
	return Notification{Topic: t, To: a.Email, AdvertiserID: a.ID, Advertiser: a}
}

// AdvertiserSaved decides the notifications for writing next over prior.
// prior is nil when next is a fresh record.
func AdvertiserSaved(prior, next *models.Advertiser) []Notification {
	if next == nil {
		return nil
	}
	if prior == nil {
		return []Notification{advertiserNotification(TopicAdvertiserCreated, next)}
	}
	if !prior.Approved && next.Approved {
		return []Notification{advertiserNotification(TopicAdvertiserApproved, next)}
	}
	return nil
}

// AdvertSaved decides the notifications for writing next over prior.
// owner is the advert's advertiser and receives the email.
func AdvertSaved(prior, next *models.Advert, owner *models.Advertiser, policy PaidUpdatePolicy) []Notification {
	if next == nil || owner == nil || !next.Paid {
		return nil
	}

	var topic Topic
	switch {
	case prior == nil:
		topic = TopicAdPaidCreated
	case policy == PaidEverySave, !prior.Paid:
		topic = TopicAdPaidUpdated
	default:
		return nil
	}

	n := advertiserNotification(topic, owner)
	n.Advert = next
	return []Notification{n}
}

package workflow

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func advertiser(approved bool) *models.Advertiser {
	return &models.Advertiser{ID: uuid.New(), Name: "A", Email: "a@x.com", Approved: approved}
}

func withApproval(a *models.Advertiser, approved bool) *models.Advertiser {
	cp := *a
	cp.Approved = approved
	return &cp
}

func TestAdvertiserSaved(t *testing.T) {
	base := advertiser(false)

	tests := []struct {
		name   string
		prior  *models.Advertiser
		next   *models.Advertiser
		topics []Topic
	}{
		{"created unapproved", nil, base, []Topic{TopicAdvertiserCreated}},
		{"created approved", nil, withApproval(base, true), []Topic{TopicAdvertiserCreated}},
		{"approved", base, withApproval(base, true), []Topic{TopicAdvertiserApproved}},
		{"unapproved", withApproval(base, true), base, nil},
		{"still approved", withApproval(base, true), withApproval(base, true), nil},
		{"still unapproved", base, base, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdvertiserSaved(tt.prior, tt.next)
			require.Len(t, got, len(tt.topics))
			for i, n := range got {
				assert.Equal(t, tt.topics[i], n.Topic)
				assert.Equal(t, "a@x.com", n.To)
				assert.Equal(t, base.ID, n.AdvertiserID)
			}
		})
	}
}

func TestAdvertSaved(t *testing.T) {
	owner := advertiser(true)
	owner.Email = "b@x.com"
	unpaid := &models.Advert{ID: uuid.New(), AdvertiserID: owner.ID}
	paid := &models.Advert{ID: unpaid.ID, AdvertiserID: owner.ID, Paid: true}

	tests := []struct {
		name   string
		prior  *models.Advert
		next   *models.Advert
		policy PaidUpdatePolicy
		topics []Topic
	}{
		{"created paid", nil, paid, PaidOnTransition, []Topic{TopicAdPaidCreated}},
		{"created unpaid", nil, unpaid, PaidOnTransition, nil},
		{"marked paid", unpaid, paid, PaidOnTransition, []Topic{TopicAdPaidUpdated}},
		{"resaved paid on transition", paid, paid, PaidOnTransition, nil},
		{"resaved paid every save", paid, paid, PaidEverySave, []Topic{TopicAdPaidUpdated}},
		{"marked paid every save", unpaid, paid, PaidEverySave, []Topic{TopicAdPaidUpdated}},
		{"marked unpaid", paid, unpaid, PaidEverySave, nil},
		{"unpaid resave", unpaid, unpaid, PaidEverySave, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdvertSaved(tt.prior, tt.next, owner, tt.policy)
			require.Len(t, got, len(tt.topics))
			for i, n := range got {
				assert.Equal(t, tt.topics[i], n.Topic)
				assert.Equal(t, "b@x.com", n.To)
				assert.Same(t, tt.next, n.Advert)
				assert.Equal(t, owner, n.Data()["advertiser"])
				assert.Equal(t, tt.next, n.Data()["ad"])
			}
		})
	}
}

func TestAdvertSavedWithoutOwner(t *testing.T) {
	assert.Empty(t, AdvertSaved(nil, &models.Advert{Paid: true}, nil, PaidOnTransition))
}

func TestTopicTable(t *testing.T) {
	want := map[string]string{
		"advertiser_approved": "Your account has been approved",
		"advertiser_created":  "The organization welcomes you!",
		"ad_paid_created":     "Your advertising contract needs your attention",
		"ad_paid_updated":     "Your advertising contract has been updated",
	}

	all := AllTopics()
	require.Len(t, all, len(want))
	for _, topic := range all {
		subject, ok := want[topic.String()]
		require.True(t, ok, "unexpected topic %s", topic)
		assert.Equal(t, subject, topic.Subject())

		parsed, err := ParseTopic(topic.String())
		require.NoError(t, err)
		assert.Equal(t, topic, parsed)
	}

	_, err := ParseTopic("ad_deleted")
	assert.Error(t, err)
	assert.False(t, Topic(99).Valid())
	assert.Empty(t, Topic(99).Subject())
}

func TestNotificationJSON(t *testing.T) {
	n := AdvertiserSaved(nil, advertiser(false))[0]
	b, err := json.Marshal(n)
	require.NoError(t, err)

	var back Notification
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, TopicAdvertiserCreated, back.Topic)
	assert.Equal(t, n.To, back.To)
	assert.Equal(t, n.Advertiser.ID, back.Advertiser.ID)
}

func TestParsePaidUpdatePolicy(t *testing.T) {
	p, err := ParsePaidUpdatePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PaidOnTransition, p)

	p, err = ParsePaidUpdatePolicy("every_save")
	require.NoError(t, err)
	assert.Equal(t, PaidEverySave, p)

	_, err = ParsePaidUpdatePolicy("sometimes")
	assert.Error(t, err)
}

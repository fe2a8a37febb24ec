package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/lampoon-ads/backend/internal/metrics"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testFrom = "The Harvard Lampoon <sales@harvardlampoon.com>"

type fakeTransport struct {
	sent []Message
	err  error
}

func (f *fakeTransport) Deliver(_ context.Context, m Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

type fakeRecorder struct {
	rows []*models.Correspondence
	err  error
}

func (f *fakeRecorder) Create(_ context.Context, c *models.Correspondence) error {
	if f.err != nil {
		return f.err
	}
	c.ID = uuid.New()
	f.rows = append(f.rows, c)
	return nil
}

func testAdvertiser() *models.Advertiser {
	return &models.Advertiser{
		ID:       uuid.New(),
		Name:     "O'Brien & Sons",
		Address1: "44 Bow St",
		City:     "Cambridge",
		State:    "MA",
		ZipCode:  "02138",
		Contact:  "Pat O'Brien",
		Email:    "a@x.com",
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
		err      error
	}{
		{
			name:     "region between markers",
			html:     "<html><h1>Header</h1>" + PlainTextMarker + "\n <p>Hello <b>there</b></p>\n" + PlainTextMarker + "<footer>x</footer></html>",
			expected: "Hello there",
		},
		{
			name:     "entities decoded",
			html:     PlainTextMarker + "<p>Fish &amp; Chips</p>",
			expected: "Fish & Chips",
		},
		{
			name: "no marker",
			html: "<p>Hello</p>",
			err:  ErrNoPlainText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlainText(tt.html)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRendererCoversEveryTopic(t *testing.T) {
	r, err := NewRenderer("The Harvard Lampoon")
	require.NoError(t, err)

	adv := testAdvertiser()
	price := "450.00"
	ad := &models.Advert{ID: uuid.New(), AdvertiserID: adv.ID, Size: models.SizeHalf, Description: "Spring issue", FinalPrice: &price, Paid: true}

	for _, topic := range workflow.AllTopics() {
		t.Run(topic.String(), func(t *testing.T) {
			html, text, err := r.Render(topic, map[string]any{"advertiser": adv, "ad": ad})
			require.NoError(t, err)

			assert.Equal(t, 2, strings.Count(html, PlainTextMarker))
			assert.Contains(t, html, "<p>")
			assert.NotContains(t, text, "<p>")
			assert.Contains(t, text, "Dear Pat O'Brien")
			assert.Contains(t, text, "The Harvard Lampoon")
		})
	}
}

func TestRendererAdvertFields(t *testing.T) {
	r, err := NewRenderer("The Harvard Lampoon")
	require.NoError(t, err)

	price := "450.00"
	_, text, err := r.Render(workflow.TopicAdPaidCreated, map[string]any{
		"advertiser": testAdvertiser(),
		"ad":         &models.Advert{Size: models.SizeHalf, Description: "Spring issue", FinalPrice: &price},
	})
	require.NoError(t, err)
	assert.Contains(t, text, "Half Page")
	assert.Contains(t, text, "Price: $450.00")

	_, text, err = r.Render(workflow.TopicAdPaidUpdated, map[string]any{
		"advertiser": testAdvertiser(),
		"ad":         &models.Advert{Size: models.SizeFull, Description: "Back cover"},
	})
	require.NoError(t, err)
	assert.Contains(t, text, "Full Page")
	assert.NotContains(t, text, "Price:")
}

func TestRendererMissingTemplate(t *testing.T) {
	fsys := fstest.MapFS{
		"mail/advertiser_approved.html": {Data: []byte("{{marker}}hi{{marker}}")},
	}
	_, err := NewRendererFS(fsys, "mail", "Site")
	assert.Error(t, err)
}

func TestRendererTemplateWithoutMarker(t *testing.T) {
	fsys := fstest.MapFS{}
	for _, topic := range workflow.AllTopics() {
		fsys["mail/"+topic.String()+".html"] = &fstest.MapFile{Data: []byte("<p>no region</p>")}
	}
	r, err := NewRendererFS(fsys, "mail", "Site")
	require.NoError(t, err)

	_, _, err = r.Render(workflow.TopicAdvertiserCreated, map[string]any{"advertiser": testAdvertiser()})
	assert.ErrorIs(t, err, ErrNoPlainText)
}

func newTestMailer(t *testing.T, transport Transport, recorder CorrespondenceRecorder) *Mailer {
	t.Helper()
	r, err := NewRenderer("The Harvard Lampoon")
	require.NoError(t, err)
	return NewMailer(r, transport, recorder, testFrom, metrics.NewNop(), zap.NewNop())
}

func TestMailerSendApproved(t *testing.T) {
	transport := &fakeTransport{}
	recorder := &fakeRecorder{}
	m := newTestMailer(t, transport, recorder)

	prior := testAdvertiser()
	next := *prior
	next.Approved = true

	ns := workflow.AdvertiserSaved(prior, &next)
	require.Len(t, ns, 1)
	require.NoError(t, NewSyncDispatcher(m).Dispatch(context.Background(), ns))

	require.Len(t, transport.sent, 1)
	msg := transport.sent[0]
	assert.Equal(t, "a@x.com", msg.To)
	assert.Equal(t, testFrom, msg.From)
	assert.Equal(t, "Your account has been approved", msg.Subject)
	assert.NotEmpty(t, msg.HTML)
	assert.NotEmpty(t, msg.Text)

	require.Len(t, recorder.rows, 1)
	row := recorder.rows[0]
	assert.Equal(t, testFrom, row.From)
	assert.Equal(t, "a@x.com", row.To)
	assert.Equal(t, prior.ID, row.AdvertiserID)
	assert.Equal(t, "advertiser_approved\n"+msg.Text, row.Text)
	assert.Equal(t, "advertiser_approved", row.Title())
}

func TestMailerDeliveryFailureRecordsNothing(t *testing.T) {
	transport := &fakeTransport{err: errors.New("connection refused")}
	recorder := &fakeRecorder{}
	m := newTestMailer(t, transport, recorder)

	err := m.Send(context.Background(), workflow.AdvertiserSaved(nil, testAdvertiser())[0])
	assert.Error(t, err)
	assert.Empty(t, recorder.rows)
}

func TestMailerInvalidTopic(t *testing.T) {
	transport := &fakeTransport{}
	recorder := &fakeRecorder{}
	m := newTestMailer(t, transport, recorder)

	err := m.Send(context.Background(), workflow.Notification{Topic: workflow.Topic(42), To: "a@x.com", Advertiser: testAdvertiser()})
	assert.Error(t, err)
	assert.Empty(t, transport.sent)
	assert.Empty(t, recorder.rows)
}

func TestMailerRecordFailureIsReported(t *testing.T) {
	transport := &fakeTransport{}
	recorder := &fakeRecorder{err: errors.New("db down")}
	m := newTestMailer(t, transport, recorder)

	err := m.Send(context.Background(), workflow.AdvertiserSaved(nil, testAdvertiser())[0])
	assert.Error(t, err)
	assert.Len(t, transport.sent, 1)
}

type countingSender struct {
	calls int
	fail  map[workflow.Topic]bool
}

func (s *countingSender) Send(_ context.Context, n workflow.Notification) error {
	s.calls++
	if s.fail[n.Topic] {
		return errors.New("boom")
	}
	return nil
}

func TestSyncDispatcherSendsAllAndJoinsErrors(t *testing.T) {
	s := &countingSender{fail: map[workflow.Topic]bool{workflow.TopicAdPaidCreated: true}}
	d := NewSyncDispatcher(s)

	err := d.Dispatch(context.Background(), []workflow.Notification{
		{Topic: workflow.TopicAdPaidCreated},
		{Topic: workflow.TopicAdvertiserCreated},
	})
	assert.Error(t, err)
	assert.Equal(t, 2, s.calls)

	assert.NoError(t, d.Dispatch(context.Background(), nil))
}

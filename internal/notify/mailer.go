package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/lampoon-ads/backend/internal/metrics"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/workflow"
	"go.uber.org/zap"
)

// CorrespondenceRecorder stores the log row for a delivered mail.
type CorrespondenceRecorder interface {
	Create(ctx context.Context, c *models.Correspondence) error
}

// Failure stages
const (
	StageRender  = "render"
	StageDeliver = "deliver"
	StageRecord  = "record"
)

type Mailer struct {
	renderer  *Renderer
	transport Transport
	recorder  CorrespondenceRecorder
	from      string
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewMailer(
	renderer *Renderer,
	transport Transport,
	recorder CorrespondenceRecorder,
	from string,
	m *metrics.Metrics,
	log *zap.Logger,
) *Mailer {
	return &Mailer{
		renderer:  renderer,
		transport: transport,
		recorder:  recorder,
		from:      from,
		metrics:   m,
		log:       log,
	}
}

func (m *Mailer) From() string {
	return m.from
}

// Send renders, delivers and records one notification. Nothing is
// recorded unless delivery succeeded.
func (m *Mailer) Send(ctx context.Context, n workflow.Notification) error {
	topic := n.Topic.String()
	log := m.log.With(
		zap.String("topic", topic),
		zap.String("to", n.To),
		zap.String("advertiser_id", n.AdvertiserID.String()),
	)

	if !n.Topic.Valid() {
		m.metrics.NotificationsFailed.WithLabelValues(topic, StageRender).Inc()
		return fmt.Errorf("send notification: invalid topic %d", int(n.Topic))
	}

	html, text, err := m.renderer.Render(n.Topic, n.Data())
	if err != nil {
		m.metrics.NotificationsFailed.WithLabelValues(topic, StageRender).Inc()
		log.Error("failed to render notification", zap.Error(err))
		return err
	}

	err = m.transport.Deliver(ctx, Message{
		Subject: n.Topic.Subject(),
		Text:    text,
		HTML:    html,
		From:    m.from,
		To:      n.To,
	})
	if err != nil {
		m.metrics.NotificationsFailed.WithLabelValues(topic, StageDeliver).Inc()
		log.Error("failed to deliver notification", zap.Error(err))
		return fmt.Errorf("deliver %s to %s: %w", topic, n.To, err)
	}
	m.metrics.NotificationsSent.WithLabelValues(topic).Inc()

	corr := &models.Correspondence{
		AdvertiserID: n.AdvertiserID,
		From:         m.from,
		To:           n.To,
		Text:         strings.Join([]string{topic, text}, "\n"),
	}
	if err := m.recorder.Create(ctx, corr); err != nil {
		m.metrics.NotificationsFailed.WithLabelValues(topic, StageRecord).Inc()
		log.Error("mail sent but correspondence not recorded", zap.Error(err))
		return fmt.Errorf("record correspondence: %w", err)
	}

	log.Info("notification sent", zap.String("correspondence_id", corr.ID.String()))
	return nil
}

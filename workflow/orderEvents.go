package workflow

import (
	"context"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/scm_backend/utils"
	"github.com/sirupsen/logrus"
)

const EventTypeOrderCommitted = "order.committed"

// OrderEventPublisher is satisfied by config.PubSubPublisher.
type OrderEventPublisher interface {
	Publish(ctx context.Context, eventType string, attributes map[string]string, payload any) (string, error)
}

type OrderCommittedLine struct {
	LineNo      int `json:"line_no"`
	PartId      int `json:"part_id"`
	Quantity    int `json:"quantity"`
	ReceivedQty int `json:"received_qty"`
}

// OrderCommittedEvent is published after the transaction is durable.
type OrderCommittedEvent struct {
	POID          int                  `json:"poid"`
	DeliveryId    int                  `json:"delivery_id"`
	ProjectId     int                  `json:"project_id"`
	SupplierId    int                  `json:"supplier_id"`
	WarehouseId   int                  `json:"warehouse_id"`
	TransportMode string               `json:"transport_mode"`
	Attempts      int                  `json:"attempts"`
	CommittedAt   time.Time            `json:"committed_at"`
	CorrelationId string               `json:"correlation_id,omitempty"`
	Lines         []OrderCommittedLine `json:"lines"`
}

func newOrderCommittedEvent(ctx context.Context, in OrderCommitInput, result *OrderCommitResult, at time.Time) OrderCommittedEvent {
	evt := OrderCommittedEvent{
		POID:          result.POID,
		DeliveryId:    result.DeliveryId,
		ProjectId:     in.ProjectId,
		SupplierId:    in.SupplierId,
		WarehouseId:   in.WarehouseId,
		TransportMode: in.TransportMode,
		Attempts:      result.Attempts,
		CommittedAt:   at,
		Lines:         make([]OrderCommittedLine, 0, len(in.Lines)),
	}
	evt.CorrelationId, _ = utils.GetCorrelationIdFromContext(ctx)
	for i, line := range in.Lines {
		evt.Lines = append(evt.Lines, OrderCommittedLine{
			LineNo:      i + 1,
			PartId:      line.PartId,
			Quantity:    line.Quantity,
			ReceivedQty: InitialReceiptQty(line.Quantity),
		})
	}
	return evt
}

// publishCommitted is best effort: the order is already committed, so a publish
// failure is logged and never returned.
func (c *OrderCommitter) publishCommitted(ctx context.Context, logger *logrus.Entry, in OrderCommitInput, result *OrderCommitResult) {
	if c.Events == nil {
		return
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	evt := newOrderCommittedEvent(ctx, in, result, now().UTC())
	attrs := map[string]string{"poid": strconv.Itoa(result.POID)}
	if evt.CorrelationId != "" {
		attrs["correlation_id"] = evt.CorrelationId
	}

	messageId, err := c.Events.Publish(ctx, EventTypeOrderCommitted, attrs, evt)
	if err != nil {
		logger.WithField("poid", result.POID).Warn("order committed event not published: " + err.Error())
		return
	}
	logger.WithFields(logrus.Fields{
		"poid":       result.POID,
		"message_id": messageId,
	}).Debug("order committed event published")
}

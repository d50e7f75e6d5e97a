package workflow

import (
	"context"
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/scm_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	err       error
	eventType string
	attrs     map[string]string
	payloads  []any
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, attrs map[string]string, payload any) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.eventType = eventType
	p.attrs = attrs
	p.payloads = append(p.payloads, payload)
	return "msg-1", nil
}

func TestCommit_PublishesCommittedEvent(t *testing.T) {
	db := newTestDB(t)
	c, _ := newTestCommitter(t, db)
	pub := &recordingPublisher{}
	c.Events = pub

	ctx := utils.SetCorrelationIdInContext(context.Background(), "corr-9")
	_, err := c.Commit(ctx, sampleInput(5, 2))
	require.NoError(t, err)

	require.Len(t, pub.payloads, 1)
	assert.Equal(t, EventTypeOrderCommitted, pub.eventType)
	assert.Equal(t, map[string]string{"poid": "1", "correlation_id": "corr-9"}, pub.attrs)

	evt, ok := pub.payloads[0].(OrderCommittedEvent)
	require.True(t, ok)
	assert.Equal(t, 1, evt.POID)
	assert.Equal(t, 1, evt.DeliveryId)
	assert.Equal(t, 1, evt.Attempts)
	assert.Equal(t, fixedNow, evt.CommittedAt)
	assert.Equal(t, []OrderCommittedLine{
		{LineNo: 1, PartId: 1, Quantity: 5, ReceivedQty: 3},
		{LineNo: 2, PartId: 2, Quantity: 2, ReceivedQty: 1},
	}, evt.Lines)
}

func TestCommit_PublishFailureDoesNotFailCommit(t *testing.T) {
	db := newTestDB(t)
	c, hook := newTestCommitter(t, db)
	c.Events = &recordingPublisher{err: errors.New("topic not found")}

	result, err := c.Commit(context.Background(), sampleInput(1))
	require.NoError(t, err)
	assert.Equal(t, 1, result.POID)
	assert.Equal(t, 1, countMessages(hook, "order committed event not published: topic not found"))
}

func TestCommit_NoEventOnFailure(t *testing.T) {
	db := newTestDB(t)
	c, _ := newTestCommitter(t, db)
	pub := &recordingPublisher{}
	c.Events = pub

	in := sampleInput(1)
	in.SupplierId = 42
	_, err := c.Commit(context.Background(), in)
	require.Error(t, err)
	assert.Empty(t, pub.payloads)
}

package workflow

import (
	"context"
	"errors"
	"strings"

	"bitbucket.org/mmdatafocus/scm_backend/models"
	"gorm.io/gorm"
)

const maxRequestKeyLength = 255

func normalizeRequestKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if len(key) > maxRequestKeyLength {
		return "", errors.New("request key is longer than 255 characters")
	}
	return key, nil
}

// findCommittedRequest returns the order a request key already produced, or nil.
func (c *OrderCommitter) findCommittedRequest(ctx context.Context, key string) (*OrderCommitResult, error) {
	var req models.OrderRequest
	err := c.DB.WithContext(ctx).Where("request_key = ?", key).Take(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &OrderCommitResult{POID: req.POID, DeliveryId: req.DeliveryId, Replayed: true}, nil
}

func (c *OrderCommitter) recordRequestKey(a *commitAttempt) error {
	if a.input.RequestKey == "" {
		return nil
	}
	return a.tx.Create(&models.OrderRequest{
		RequestKey: a.input.RequestKey,
		POID:       a.poid,
		DeliveryId: a.deliveryId,
	}).Error
}

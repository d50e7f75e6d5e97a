package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/scm_backend/models"
	"bitbucket.org/mmdatafocus/scm_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("scm_backend/workflow")

// CommitState is the position of one commit attempt in its state machine.
type CommitState string

const (
	StateIdle             CommitState = "Idle"
	StateTransactionOpen  CommitState = "TransactionOpen"
	StateHeaderWritten    CommitState = "HeaderWritten"
	StateLinesWritten     CommitState = "LinesWritten"
	StateDeliveryWritten  CommitState = "DeliveryWritten"
	StateInventoryApplied CommitState = "InventoryApplied"
	StateCommitted        CommitState = "Committed"
	StateRolledBack       CommitState = "RolledBack"
	StateFailed           CommitState = "Failed"
)

const (
	StepFindRequestKey       = "find-request-key"
	StepAcquireLock          = "acquire-allocation-lock"
	StepBegin                = "begin"
	StepAllocateOrder        = "allocate-order"
	StepInsertOrderHeader    = "insert-order-header"
	StepInsertOrderLines     = "insert-order-lines"
	StepAllocateDelivery     = "allocate-delivery"
	StepInsertDeliveryHeader = "insert-delivery-header"
	StepApplyInitialReceipt  = "apply-initial-receipt"
	StepRecordRequestKey     = "record-request-key"
	StepCommit               = "commit"
)

type OrderStore interface {
	InsertPurchaseOrder(tx *gorm.DB, order *models.PurchaseOrder) error
	InsertPurchaseOrderLine(tx *gorm.DB, line *models.PurchaseOrderLine) error
}

type DeliveryStore interface {
	InsertDelivery(tx *gorm.DB, delivery *models.Delivery) error
	InsertDeliveryLine(tx *gorm.DB, line *models.DeliveryLine) error
}

type InventoryStore interface {
	AddInventory(tx *gorm.DB, warehouseId, partId, delta int) error
}

// OrderCommitter writes a purchase order, its initial delivery and the resulting inventory
// increase as one READ COMMITTED transaction, restarting the whole attempt on deadlock.
// Fields are read-only after construction; one committer serves concurrent callers.
type OrderCommitter struct {
	DB     *gorm.DB
	Logger *logrus.Logger

	Orders     OrderStore
	Deliveries DeliveryStore
	Inventory  InventoryStore

	// Lock is nil unless ALLOCATION_LOCK=redis.
	Lock AllocationLock
	// Events is nil unless PUBSUB_TOPIC is set.
	Events OrderEventPublisher

	MaxAttempts int
	BaseDelay   time.Duration
	Now         func() time.Time
}

func NewOrderCommitter(db *gorm.DB, logger *logrus.Logger) *OrderCommitter {
	return &OrderCommitter{
		DB:          db,
		Logger:      logger,
		Orders:      OrderWriter{},
		Deliveries:  DeliveryWriter{},
		Inventory:   InventoryWriter{},
		MaxAttempts: 3,
		BaseDelay:   200 * time.Millisecond,
		Now:         time.Now,
	}
}

// commitAttempt carries the open transaction and everything allocated so far.
type commitAttempt struct {
	tx         *gorm.DB
	input      OrderCommitInput
	today      time.Time
	poid       int
	deliveryId int
	state      CommitState
}

type commitStep struct {
	name  string
	after CommitState
	run   func(c *OrderCommitter, a *commitAttempt) error
}

// Order matters: every step references rows written by the ones before it.
var orderCommitSteps = []commitStep{
	{name: StepAllocateOrder, after: StateTransactionOpen, run: (*OrderCommitter).allocateOrder},
	{name: StepInsertOrderHeader, after: StateHeaderWritten, run: (*OrderCommitter).insertOrderHeader},
	{name: StepInsertOrderLines, after: StateLinesWritten, run: (*OrderCommitter).insertOrderLines},
	{name: StepAllocateDelivery, after: StateLinesWritten, run: (*OrderCommitter).allocateDelivery},
	{name: StepInsertDeliveryHeader, after: StateDeliveryWritten, run: (*OrderCommitter).insertDeliveryHeader},
	{name: StepApplyInitialReceipt, after: StateInventoryApplied, run: (*OrderCommitter).applyInitialReceipt},
	{name: StepRecordRequestKey, after: StateInventoryApplied, run: (*OrderCommitter).recordRequestKey},
}

// Commit runs the order pipeline. Every failure is a *CommitError; a deadlock on the last
// allowed attempt yields ErrorKindRetriesExhausted wrapping both ErrRetriesExhausted and the
// last storage error.
func (c *OrderCommitter) Commit(ctx context.Context, in OrderCommitInput) (*OrderCommitResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(in.Lines) == 0 {
		return nil, &CommitError{Kind: ErrorKindInvalidInput, Err: fmt.Errorf("%w: order has no lines", ErrInvalidInput)}
	}
	key, err := normalizeRequestKey(in.RequestKey)
	if err != nil {
		return nil, &CommitError{Kind: ErrorKindInvalidInput, Err: fmt.Errorf("%w: %v", ErrInvalidInput, err)}
	}
	in.RequestKey = key
	if prior, ok, err := c.replay(ctx, in.RequestKey); err != nil || ok {
		return prior, err
	}

	ctx, span := tracer.Start(ctx, "OrderCommit", trace.WithAttributes(
		attribute.Int("order.lines", len(in.Lines)),
		attribute.Int("order.warehouse_id", in.WarehouseId),
	))
	defer span.End()

	maxAttempts := c.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var (
		lastErr  error
		lastCode string
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		logger := c.attemptLogger(ctx, attempt)

		result, step, err := c.runAttempt(ctx, logger, in)
		if err == nil {
			result.Attempts = attempt
			span.SetAttributes(attribute.Int("order.poid", result.POID), attribute.Int("order.attempts", attempt))
			c.publishCommitted(ctx, logger, in, result)
			return result, nil
		}

		kind, code := ClassifyError(err)
		if kind == ErrorKindConstraintViolation && in.RequestKey != "" {
			// A concurrent submission with the same key may have committed first.
			if prior, ok, replayErr := c.replay(ctx, in.RequestKey); replayErr == nil && ok {
				return prior, nil
			}
		}
		if kind != ErrorKindTransactionConflict {
			logger.WithFields(logrus.Fields{
				"state": StateFailed,
				"step":  step,
				"kind":  kind,
				"code":  code,
			}).Error("order commit failed: " + err.Error())
			span.RecordError(err)
			span.SetStatus(codes.Error, string(kind))
			return nil, &CommitError{Kind: kind, SQLState: code, Step: step, Attempts: attempt, Err: err}
		}

		lastErr, lastCode = err, code
		if attempt == maxAttempts {
			break
		}

		delay := c.BaseDelay * time.Duration(attempt)
		logger.WithFields(logrus.Fields{
			"state": StateIdle,
			"step":  step,
			"code":  code,
			"delay": delay.String(),
		}).Warn("transaction conflict; retrying order commit")
		if err := sleepContext(ctx, delay); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(ErrorKindTransactionFailure))
			return nil, &CommitError{Kind: ErrorKindTransactionFailure, Step: step, Attempts: attempt, Err: err}
		}
	}

	c.attemptLogger(ctx, maxAttempts).WithFields(logrus.Fields{
		"state": StateFailed,
		"code":  lastCode,
	}).Error("order commit retries exhausted")
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, string(ErrorKindRetriesExhausted))
	return nil, &CommitError{
		Kind:     ErrorKindRetriesExhausted,
		SQLState: lastCode,
		Attempts: maxAttempts,
		Err:      fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, maxAttempts, lastErr),
	}
}

// replay reports whether key already produced a committed order.
func (c *OrderCommitter) replay(ctx context.Context, key string) (*OrderCommitResult, bool, error) {
	if key == "" {
		return nil, false, nil
	}
	prior, err := c.findCommittedRequest(ctx, key)
	if err != nil {
		kind, code := ClassifyError(err)
		return nil, true, &CommitError{Kind: kind, SQLState: code, Step: StepFindRequestKey, Err: err}
	}
	if prior == nil {
		return nil, false, nil
	}
	c.attemptLogger(ctx, 0).WithFields(logrus.Fields{
		"poid":        prior.POID,
		"delivery_id": prior.DeliveryId,
	}).Info("order commit replayed")
	return prior, true, nil
}

func (c *OrderCommitter) runAttempt(ctx context.Context, logger *logrus.Entry, in OrderCommitInput) (*OrderCommitResult, string, error) {
	if c.Lock != nil {
		release, err := c.Lock.Acquire(ctx)
		if err != nil {
			return nil, StepAcquireLock, err
		}
		defer release()
	}

	tx := c.DB.WithContext(ctx).Begin(&sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if tx.Error != nil {
		return nil, StepBegin, tx.Error
	}

	a := &commitAttempt{
		tx:    tx,
		input: in,
		today: c.today(),
		state: StateTransactionOpen,
	}
	for _, step := range orderCommitSteps {
		if err := step.run(c, a); err != nil {
			c.rollback(a, logger.WithField("step", step.name), err)
			return nil, step.name, err
		}
		a.state = step.after
	}

	if err := tx.Commit().Error; err != nil {
		// database/sql closes the transaction even when COMMIT fails.
		logger.WithFields(logrus.Fields{
			"state": StateRolledBack,
			"step":  StepCommit,
		}).Warn("order commit rolled back: " + err.Error())
		return nil, StepCommit, err
	}

	logger.WithFields(logrus.Fields{
		"state":       StateCommitted,
		"poid":        a.poid,
		"delivery_id": a.deliveryId,
	}).Info("order committed")
	return &OrderCommitResult{POID: a.poid, DeliveryId: a.deliveryId}, "", nil
}

// rollback never replaces cause; a failed rollback is only logged.
func (c *OrderCommitter) rollback(a *commitAttempt, logger *logrus.Entry, cause error) {
	if err := a.tx.Rollback().Error; err != nil {
		logger.WithFields(logrus.Fields{
			"state": a.state,
			"cause": cause.Error(),
		}).Error("order commit rollback failed: " + err.Error())
		return
	}
	a.state = StateRolledBack
	logger.WithField("state", a.state).Warn("order commit rolled back: " + cause.Error())
}

func (c *OrderCommitter) allocateOrder(a *commitAttempt) error {
	poid, err := NextID(a.tx, AllocatorKeyPurchaseOrder)
	if err != nil {
		return err
	}
	a.poid = poid
	return nil
}

func (c *OrderCommitter) insertOrderHeader(a *commitAttempt) error {
	status := a.input.Status
	if status == "" {
		status = models.PurchaseOrderStatusRequested
	}
	return c.Orders.InsertPurchaseOrder(a.tx, &models.PurchaseOrder{
		POID:         a.poid,
		OrderDate:    a.today,
		Status:       status,
		EngineerName: a.input.EngineerName,
		ProjectId:    a.input.ProjectId,
		SupplierId:   a.input.SupplierId,
	})
}

func (c *OrderCommitter) insertOrderLines(a *commitAttempt) error {
	for i, line := range a.input.Lines {
		if err := c.Orders.InsertPurchaseOrderLine(a.tx, &models.PurchaseOrderLine{
			POID:             a.poid,
			LineNo:           i + 1,
			PartId:           line.PartId,
			Quantity:         line.Quantity,
			UnitPriceAtOrder: line.UnitPrice,
			RequestedDueDate: line.RequestedDueDate,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (c *OrderCommitter) allocateDelivery(a *commitAttempt) error {
	deliveryId, err := NextID(a.tx, AllocatorKeyDelivery)
	if err != nil {
		return err
	}
	a.deliveryId = deliveryId
	return nil
}

func (c *OrderCommitter) insertDeliveryHeader(a *commitAttempt) error {
	return c.Deliveries.InsertDelivery(a.tx, &models.Delivery{
		DeliveryId:        a.deliveryId,
		POID:              a.poid,
		ActualArrivalDate: a.today,
		TransportMode:     a.input.TransportMode,
		DistanceKm:        a.input.DistanceKm,
		Status:            models.DeliveryStatusReceivedOk,
	})
}

func (c *OrderCommitter) applyInitialReceipt(a *commitAttempt) error {
	for i, line := range a.input.Lines {
		received := InitialReceiptQty(line.Quantity)
		if err := c.Deliveries.InsertDeliveryLine(a.tx, &models.DeliveryLine{
			DeliveryId:       a.deliveryId,
			POID:             a.poid,
			LineNo:           i + 1,
			ReceivedQty:      received,
			InspectionResult: models.InspectionResultAutoInitial,
		}); err != nil {
			return err
		}
		if err := c.Inventory.AddInventory(a.tx, a.input.WarehouseId, line.PartId, received); err != nil {
			return err
		}
	}
	return nil
}

func (c *OrderCommitter) attemptLogger(ctx context.Context, attempt int) *logrus.Entry {
	logger := c.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	entry := logger.WithFields(logrus.Fields{
		"field":   "OrderCommit",
		"attempt": attempt,
	})
	if correlationId, ok := utils.GetCorrelationIdFromContext(ctx); ok && correlationId != "" {
		entry = entry.WithField("correlation_id", correlationId)
	}
	if channel, ok := utils.GetChannelFromContext(ctx); ok {
		entry = entry.WithField("channel", channel)
	}
	return entry
}

func (c *OrderCommitter) today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	t := now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

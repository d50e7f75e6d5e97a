package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/scm_backend/config"
	"bitbucket.org/mmdatafocus/scm_backend/utils"
	"bitbucket.org/mmdatafocus/scm_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	dateLayout = "2006-01-02"

	IdempotencyKeyHeader = "Idempotency-Key"
)

type NewOrderLine struct {
	PartId           int             `json:"part_id" binding:"required,gt=0"`
	Quantity         int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	RequestedDueDate string          `json:"requested_due_date" binding:"omitempty,datetime=2006-01-02"`
}

type NewOrder struct {
	ProjectId     int              `json:"project_id" binding:"required,gt=0"`
	SupplierId    int              `json:"supplier_id" binding:"required,gt=0"`
	EngineerName  string           `json:"engineer_name" binding:"max=100"`
	Status        string           `json:"status" binding:"omitempty,max=50"`
	Lines         []NewOrderLine   `json:"lines" binding:"required,min=1,dive"`
	WarehouseId   int              `json:"warehouse_id" binding:"required,gt=0"`
	TransportMode string           `json:"transport_mode" binding:"required,max=50"`
	DistanceKm    *decimal.Decimal `json:"distance_km"`
}

type OrderResponse struct {
	Success    bool   `json:"success"`
	POID       int    `json:"poid"`
	DeliveryId int    `json:"delivery_id"`
	Replayed   bool   `json:"replayed,omitempty"`
	Message    string `json:"message"`
}

type ErrorResponse struct {
	Success bool              `json:"success"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type orderCommitter interface {
	Commit(ctx context.Context, in workflow.OrderCommitInput) (*workflow.OrderCommitResult, error)
}

type OrderHandler struct {
	Committer orderCommitter
	Logger    *logrus.Logger
	// Timeout bounds one request including retries; zero means no extra bound.
	Timeout time.Duration
}

func NewOrderHandler(committer *workflow.OrderCommitter, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		Committer: committer,
		Logger:    logger,
		Timeout:   30 * time.Second,
	}
}

// CreateOrder registers a purchase order together with its initial delivery.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req NewOrder
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "BAD_REQUEST",
			Message: "invalid request",
			Fields:  utils.ProcessValidationErrors(err),
		})
		return
	}

	ctx := c.Request.Context()
	input, err := req.toCommitInput(ctx)
	input.RequestKey = c.GetHeader(IdempotencyKeyHeader)
	if err == nil {
		err = input.Validate()
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "BAD_REQUEST",
			Message: workflow.UserMessage(err),
		})
		return
	}

	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	result, err := h.Committer.Commit(ctx, input)
	if err != nil {
		code := workflow.ErrorCode(err)
		_ = c.Error(err)
		config.LogError(h.Logger, "handlers", "CreateOrder", code, nil, err)
		c.JSON(httpStatus(code), ErrorResponse{
			Code:    code,
			Message: workflow.UserMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, OrderResponse{
		Success:    true,
		POID:       result.POID,
		DeliveryId: result.DeliveryId,
		Replayed:   result.Replayed,
		Message:    "order registered",
	})
}

func (req NewOrder) toCommitInput(ctx context.Context) (workflow.OrderCommitInput, error) {
	engineer := strings.TrimSpace(req.EngineerName)
	if engineer == "" {
		// Fall back to the authenticated engineer when the body leaves it blank.
		engineer, _ = utils.GetUserNameFromContext(ctx)
	}

	in := workflow.OrderCommitInput{
		ProjectId:     req.ProjectId,
		SupplierId:    req.SupplierId,
		EngineerName:  engineer,
		Status:        strings.TrimSpace(req.Status),
		WarehouseId:   req.WarehouseId,
		TransportMode: strings.TrimSpace(req.TransportMode),
		Lines:         make([]workflow.OrderLineInput, 0, len(req.Lines)),
	}
	if req.DistanceKm != nil {
		in.DistanceKm = decimal.NewNullDecimal(*req.DistanceKm)
	}
	for _, line := range req.Lines {
		l := workflow.OrderLineInput{
			PartId:    line.PartId,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
		if line.RequestedDueDate != "" {
			due, err := time.Parse(dateLayout, line.RequestedDueDate)
			if err != nil {
				return in, errors.Join(workflow.ErrInvalidInput, err)
			}
			l.RequestedDueDate = &due
		}
		in.Lines = append(in.Lines, l)
	}
	return in, nil
}

func httpStatus(code string) int {
	switch code {
	case "BAD_REQUEST":
		return http.StatusBadRequest
	case "CONSTRAINT_VIOLATION", "TRANSACTION_CONFLICT":
		return http.StatusConflict
	case "RETRIES_EXHAUSTED":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

package console

import (
	"context"
	"io"

	"bitbucket.org/mmdatafocus/scm_backend/config"
	"bitbucket.org/mmdatafocus/scm_backend/models"
	"bitbucket.org/mmdatafocus/scm_backend/utils"
	"bitbucket.org/mmdatafocus/scm_backend/workflow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type orderCommitter interface {
	Commit(ctx context.Context, in workflow.OrderCommitInput) (*workflow.OrderCommitResult, error)
}

// OrderRegistration collects one order interactively and commits it with its initial delivery.
type OrderRegistration struct {
	Committer orderCommitter
	Logger    *logrus.Logger
}

// Run prompts for one order. Invalid answers print a notice and end the flow without
// touching the database. The returned error is only for broken input streams.
func (r *OrderRegistration) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	return r.run(ctx, newPrompter(in, out))
}

func (r *OrderRegistration) run(ctx context.Context, p *prompter) error {
	p.println()
	p.println("========== Order registration (transaction) ==========")

	input, ok, err := r.collect(p)
	if err != nil || !ok {
		return err
	}

	ctx = utils.SetChannelInContext(ctx, utils.ChannelConsole)
	result, err := r.Committer.Commit(ctx, input)
	if err != nil {
		config.LogError(r.Logger, "console", "OrderRegistration", workflow.ErrorCode(err), nil, err)
		p.println("[failed] order registration failed (all changes rolled back)")
		p.println("       " + workflow.UserMessage(err))
		return nil
	}

	p.println("[done] order registered")
	p.printf("- POID: %d\n", result.POID)
	p.printf("- DeliveryID (initial receipt): %d\n", result.DeliveryId)
	return nil
}

func (r *OrderRegistration) collect(p *prompter) (workflow.OrderCommitInput, bool, error) {
	var in workflow.OrderCommitInput
	var err error

	if in.ProjectId, err = p.readInt("ProjectID> "); err != nil {
		return in, false, err
	}
	if in.SupplierId, err = p.readInt("SupplierID> "); err != nil {
		return in, false, err
	}
	if in.EngineerName, err = p.readLine("Engineer name (Enter to skip)> "); err != nil {
		return in, false, err
	}

	count, err := p.readInt("Number of order lines> ")
	if err != nil {
		return in, false, err
	}
	if count <= 0 {
		p.println("[notice] the number of lines must be at least 1.")
		return in, false, nil
	}

	in.Lines = make([]workflow.OrderLineInput, 0, count)
	for i := 1; i <= count; i++ {
		p.printf("- Line %d\n", i)
		partId, err := p.readInt("  PartID> ")
		if err != nil {
			return in, false, err
		}
		qty, err := p.readInt("  Quantity> ")
		if err != nil {
			return in, false, err
		}
		if qty <= 0 {
			p.println("[notice] quantity must be at least 1.")
			return in, false, nil
		}
		price, err := p.readDecimalOptional("  UnitPriceAtOrder> ")
		if err != nil {
			return in, false, err
		}
		if price == nil || price.IsNegative() {
			p.println("[notice] unit price must be a number of 0 or more.")
			return in, false, nil
		}
		in.Lines = append(in.Lines, workflow.OrderLineInput{PartId: partId, Quantity: qty, UnitPrice: *price})
	}

	if in.WarehouseId, err = p.readInt("Receiving WarehouseID> "); err != nil {
		return in, false, err
	}
	if in.TransportMode, err = p.readLine("Transport mode (Enter for 'truck')> "); err != nil {
		return in, false, err
	}
	if in.TransportMode == "" {
		in.TransportMode = models.TransportModeTruck
	}
	distance, err := p.readDecimalOptional("Distance (km, Enter to skip)> ")
	if err != nil {
		return in, false, err
	}
	if distance != nil {
		if distance.IsNegative() {
			p.println("[notice] distance must not be negative.")
			return in, false, nil
		}
		in.DistanceKm = decimal.NewNullDecimal(*distance)
	}
	return in, true, nil
}

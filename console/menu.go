package console

import (
	"context"
	"errors"
	"io"
)

// Menu loops over the console actions until the user exits or input ends.
type Menu struct {
	Registration *OrderRegistration
}

func (m *Menu) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	p := newPrompter(in, out)
	for {
		p.println()
		p.println("========== Supply chain console ==========")
		p.println("1. Register purchase order")
		p.println("0. Exit")
		choice, err := p.readLine("Select> ")
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}

		switch choice {
		case "1":
			if err := m.Registration.run(ctx, p); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
		case "0":
			p.println("bye")
			return nil
		default:
			p.println("[notice] choose 1 or 0.")
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// prompter reads one answer per line. Malformed numbers are asked again; end of input is
// reported as io.EOF so the flow can stop cleanly.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

func (p *prompter) println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

func (p *prompter) printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

func (p *prompter) readLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *prompter) readInt(prompt string) (int, error) {
	for {
		s, err := p.readLine(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err == nil {
			return n, nil
		}
		p.println("[notice] enter an integer.")
	}
}

// readDecimalOptional returns nil when the answer is blank.
func (p *prompter) readDecimalOptional(prompt string) (*decimal.Decimal, error) {
	for {
		s, err := p.readLine(prompt)
		if err != nil {
			return nil, err
		}
		if s == "" {
			return nil, nil
		}
		d, err := decimal.NewFromString(s)
		if err == nil {
			return &d, nil
		}
		p.println("[notice] enter a number or press Enter to skip.")
	}
}

package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
)

// Confirmer asks a yes/no question before a destructive or publishing step.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// LineConfirmer reads one answer line per question. Only "y" or "yes",
// in any case, confirms.
type LineConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLineConfirmer(input io.Reader, output io.Writer) *LineConfirmer {
	if output == nil {
		output = io.Discard
	}
	var reader *bufio.Reader
	if input != nil {
		reader = bufio.NewReader(input)
	}
	return &LineConfirmer{in: reader, out: output}
}

func (c *LineConfirmer) Confirm(_ context.Context, question string) (bool, error) {
	if c.in == nil {
		return false, errors.New("confirmation input is not available")
	}
	if _, err := fmt.Fprint(c.out, question); err != nil {
		return false, fmt.Errorf("write confirmation prompt: %w", err)
	}

	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	return IsYes(line), nil
}

func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// FormConfirmer renders the question as an interactive huh confirm field.
type FormConfirmer struct {
	Accessible bool
}

func (c FormConfirmer) Confirm(ctx context.Context, question string) (bool, error) {
	confirmed := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	).WithAccessible(c.Accessible)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("run confirmation form: %w", err)
	}
	return confirmed, nil
}

// AutoConfirmer answers yes without asking and echoes the question to Out.
type AutoConfirmer struct {
	Out io.Writer
}

func (c AutoConfirmer) Confirm(_ context.Context, question string) (bool, error) {
	if c.Out != nil {
		fmt.Fprintln(c.Out, question+" y")
	}
	return true, nil
}

// New picks a confirmer by mode: "line" (default), "form" or "auto".
func New(mode string, input io.Reader, output io.Writer) (Confirmer, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "line":
		return NewLineConfirmer(input, output), nil
	case "form":
		return FormConfirmer{}, nil
	case "auto":
		return AutoConfirmer{Out: output}, nil
	default:
		return nil, fmt.Errorf("unknown prompt mode %q (supported: line, form, auto)", mode)
	}
}

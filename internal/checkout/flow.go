package checkout

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidTransition = errors.New("invalid checkout transition")

type State int

const (
	Idle State = iota
	FormFilled
	Validated
	OrderPlaced
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FormFilled:
		return "form_filled"
	case Validated:
		return "validated"
	case OrderPlaced:
		return "order_placed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Flow tracks one checkout attempt. The zero value is an idle flow.
type Flow struct {
	state State
	form  Form
}

func NewFlow() *Flow {
	return &Flow{}
}

func (f *Flow) State() State {
	return f.state
}

func (f *Flow) Form() Form {
	return f.form
}

// Fill stores the form. Refilling before the order is placed sends the flow
// back to FormFilled.
func (f *Flow) Fill(form Form) error {
	if f.state == OrderPlaced {
		return f.illegal(FormFilled)
	}
	f.form = form.Normalize()
	f.state = FormFilled
	return nil
}

// Validate leaves the flow in FormFilled when the form is rejected.
func (f *Flow) Validate(v *validator.Validate) error {
	if f.state != FormFilled {
		return f.illegal(Validated)
	}
	if err := ValidateForm(v, f.form); err != nil {
		return err
	}
	f.state = Validated
	return nil
}

func (f *Flow) Place() error {
	if f.state != Validated {
		return f.illegal(OrderPlaced)
	}
	f.state = OrderPlaced
	return nil
}

func (f *Flow) Reset() {
	*f = Flow{}
}

func (f *Flow) illegal(to State) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.state, to)
}

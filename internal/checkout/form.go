package checkout

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/azaliaz/bookhaven/internal/domain/models"
)

var ErrInvalidForm = errors.New("invalid checkout form")

var (
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	cardRe   = regexp.MustCompile(`^\d{16}$`)
	expiryRe = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvvRe    = regexp.MustCompile(`^\d{3,4}$`)
)

// Form is what the shopper submits on the checkout page.
type Form struct {
	Name    string         `json:"name" validate:"required"`
	Email   string         `json:"email" validate:"required,storeemail"`
	Address models.Address `json:"address"`
	Payment Payment        `json:"payment"`
}

type Payment struct {
	CardName   string `json:"cardName" validate:"required"`
	CardNumber string `json:"cardNumber" validate:"required,cardnumber"`
	Expiry     string `json:"expiry" validate:"required,expiry"`
	CVV        string `json:"cvv" validate:"required,cvv"`
}

// Normalize trims every field and strips whitespace from the card number.
func (f Form) Normalize() Form {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Address = models.Address{
		Street:  strings.TrimSpace(f.Address.Street),
		City:    strings.TrimSpace(f.Address.City),
		State:   strings.TrimSpace(f.Address.State),
		Zip:     strings.TrimSpace(f.Address.Zip),
		Country: strings.TrimSpace(f.Address.Country),
	}
	f.Payment.CardName = strings.TrimSpace(f.Payment.CardName)
	f.Payment.CardNumber = stripSpaces(f.Payment.CardNumber)
	f.Payment.Expiry = strings.TrimSpace(f.Payment.Expiry)
	f.Payment.CVV = strings.TrimSpace(f.Payment.CVV)
	return f
}

// ValidationError carries the message shown next to the checkout form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidForm
}

var messages = map[string]string{
	"required":   "Please fill in all required fields",
	"storeemail": "Please enter a valid email address",
	"cardnumber": "Please enter a valid 16-digit card number",
	"expiry":     "Please enter a valid expiry date in MM/YY format",
	"cvv":        "Please enter a valid CVV (3 or 4 digits)",
}

// NewValidator returns a validator with the storefront tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	must(v.RegisterValidation("storeemail", matches(emailRe)))
	must(v.RegisterValidation("cardnumber", func(fl validator.FieldLevel) bool {
		return cardRe.MatchString(stripSpaces(fl.Field().String()))
	}))
	must(v.RegisterValidation("expiry", matches(expiryRe)))
	must(v.RegisterValidation("cvv", matches(cvvRe)))
	return v
}

// ValidateForm checks the form and reports the first problem the same way
// the storefront did: missing fields first, then email, card, expiry, CVV.
func ValidateForm(v *validator.Validate, f Form) error {
	err := v.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return &ValidationError{Field: fe.Namespace(), Message: messages["required"]}
		}
	}
	fe := verrs[0]
	msg, ok := messages[fe.Tag()]
	if !ok {
		msg = "Invalid value for " + fe.Field()
	}
	return &ValidationError{Field: fe.Namespace(), Message: msg}
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

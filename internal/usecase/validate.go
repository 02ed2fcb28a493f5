package usecase

import (
	"strings"
	"time"

	"NewsImpact/internal/domain/models"
	"NewsImpact/pkg/util"

	"github.com/go-playground/validator/v10"
)

type formInput struct {
	Ticker string `validate:"required"`
	Date   string `validate:"required,datetime=2006-01-02,notfuture"`
}

var formMessages = map[string]map[string]string{
	"Ticker": {
		"required": "Stock ticker is required",
	},
	"Date": {
		"required":  "Date is required",
		"datetime":  "Date must be in YYYY-MM-DD format",
		"notfuture": "Date cannot be in the future",
	},
}

// FormValidator checks the ticker and date inputs. Both fields are always
// checked so every error can be shown at once.
type FormValidator struct {
	v   *validator.Validate
	loc *time.Location
	now func() time.Time
}

func NewFormValidator(loc *time.Location, now func() time.Time) *FormValidator {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	fv := &FormValidator{v: validator.New(), loc: loc, now: now}
	_ = fv.v.RegisterValidation("notfuture", fv.notFuture)
	return fv
}

func (fv *FormValidator) notFuture(fl validator.FieldLevel) bool {
	d, err := util.ParseDate(fl.Field().String(), fv.loc)
	if err != nil {
		// format errors belong to the datetime tag
		return true
	}
	return !util.AfterDay(d, fv.now().In(fv.loc))
}

// Validate returns the per-field errors for the inputs; the result is empty when both are valid.
func (fv *FormValidator) Validate(ticker, date string) models.FieldErrors {
	in := formInput{
		Ticker: strings.TrimSpace(ticker),
		Date:   strings.TrimSpace(date),
	}

	var out models.FieldErrors
	err := fv.v.Struct(in)
	if err == nil {
		return out
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out.Date = err.Error()
		return out
	}
	for _, fe := range verrs {
		msg := formMessages[fe.Field()][fe.Tag()]
		switch fe.Field() {
		case "Ticker":
			out.Ticker = msg
		case "Date":
			out.Date = msg
		}
	}
	return out
}

package validation

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/rivo/uniseg"

	apperrors "github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// registration only fails for empty tags or nil functions
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("emoji", isEmoji)
	v.RegisterStructValidation(trackerRules, models.TrackerInput{})
	return v
}

// isEmoji accepts exactly one grapheme cluster that starts with a symbol,
// which covers ZWJ sequences, flags, skin tones and keycaps.
func isEmoji(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if uniseg.GraphemeClusterCount(s) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	if unicode.Is(unicode.So, r) {
		return true
	}
	// keycaps start with a digit, '#' or '*'
	for _, c := range s {
		if c == '\u20e3' {
			return true
		}
	}
	return false
}

func trackerRules(sl validator.StructLevel) {
	in := sl.Current().Interface().(models.TrackerInput)
	if in.Kind == models.KindHabit && in.Schedule.IsEmpty() {
		sl.ReportError(in.Schedule, "Schedule", "Schedule", "habit_schedule", "")
	}
}

// Tracker checks user input for a new or edited tracker.
func Tracker(in models.TrackerInput) error {
	return translate(validate.Struct(in))
}

// Category checks a category title.
func Category(in models.CategoryInput) error {
	return translate(validate.Struct(in))
}

// CategoryTitle is a shorthand for Category.
func CategoryTitle(title string) error {
	return Category(models.CategoryInput{Title: title})
}

func translate(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &apperrors.ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "hexcolor":
		return "must be a #RRGGBB color"
	case "emoji":
		return "must be a single emoji"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "habit_schedule":
		return "must contain at least one day for a habit"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

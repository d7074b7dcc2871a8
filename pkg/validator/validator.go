package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// meetingURLPattern matches join links from the supported conference platforms
var meetingURLPattern = regexp.MustCompile(`^https://(meet\.google\.com|([a-z0-9-]+\.)?zoom\.us|teams\.microsoft\.com)/\S+$`)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance
func New() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("meeting_url", validateMeetingURL)
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// IsMeetingURL reports whether s is a join link for a supported platform
func IsMeetingURL(s string) bool {
	return meetingURLPattern.MatchString(s)
}

func validateMeetingURL(fl validator.FieldLevel) bool {
	return IsMeetingURL(fl.Field().String())
}

package lesson

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/mirpeset/mirpeset/core"
)

var (
	hhmmTag   = "hhmm"
	hhmmText  = "must be a zero-padded 24h time (HH:MM)"
	hhmmRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	categoryTag  = "category"
	categoryText = "unknown lesson category"
)

func init() {
	_ = core.Validate.RegisterValidation(hhmmTag, hhmmValidation)
	core.RegisterCustomTranslation(hhmmTag, hhmmText)

	_ = core.Validate.RegisterValidation(categoryTag, categoryValidation)
	core.RegisterCustomTranslation(categoryTag, categoryText)
}

func hhmmValidation(fl validator.FieldLevel) bool {
	return hhmmRegex.MatchString(fl.Field().String())
}

func categoryValidation(fl validator.FieldLevel) bool {
	return IsValidCategory(fl.Field().String())
}

func (nl NewLesson) Validate() error {
	return core.Validate.Struct(nl)
}

func (ul UpdateLesson) Validate() error {
	return core.Validate.Struct(ul)
}

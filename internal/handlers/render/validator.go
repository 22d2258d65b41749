package render

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
)

var validate = validator.New()

func init() {
	configureValidator(validate)
}

func configureValidator(v *validator.Validate) {
	_ = v.RegisterValidation("box_id", validateBoxID)
	v.RegisterTagNameFunc(useJSONTagNames)
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

func validateBoxID(fl validator.FieldLevel) bool {
	return models.ValidBoxID(fl.Field().String())
}

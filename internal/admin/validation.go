package admin

import (
	"errors"

	"github.com/abduss/docadmin/internal/file"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// labelRules mirrors file.Record.SetLabel: any non-empty value up to 255 characters.
const labelRules = "required,max=255"

type createForm struct {
	Label string `form:"label" binding:"required,max=255"`
}

// validateLabel checks a label the way createForm does.
func validateLabel(label string) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return labelError(v.Var(label, labelRules))
}

// labelError maps validator failures on the label to the file package errors.
func labelError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "max" {
		return file.ErrLabelTooLong
	}
	return file.ErrLabelRequired
}

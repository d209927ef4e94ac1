package application

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf(
					"%s failed on %q", strings.ToLower(e.Field()), e.Tag(),
				))
			}
			return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, ", "))
		}
		return fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	return nil
}

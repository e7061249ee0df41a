package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"atelier/internal/domain"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report json field names so messages match request bodies
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// SpaceRequest creates or replaces a space
type SpaceRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Theme string `json:"theme" validate:"max=2000"`
	Color string `json:"color" validate:"omitempty,oneof=green orange yellow blue violet mauve"`
}

// BlockRequest creates a block with optional initial contents
type BlockRequest struct {
	SpaceID  string           `json:"space_id" validate:"required"`
	X        float64          `json:"x"`
	Y        float64          `json:"y"`
	Shape    string           `json:"shape" validate:"omitempty,oneof=cloud rounded-rect square oval circle"`
	Color    string           `json:"color" validate:"omitempty,oneof=green orange yellow blue violet mauve"`
	Width    float64          `json:"width" validate:"gte=0"`
	Height   float64          `json:"height" validate:"gte=0"`
	Title    string           `json:"title" validate:"max=500"`
	Contents []ContentRequest `json:"contents" validate:"omitempty,max=100,dive"`
}

// BlockUpdate changes any subset of a block's presentation
type BlockUpdate struct {
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Shape  *string  `json:"shape" validate:"omitempty,oneof=cloud rounded-rect square oval circle"`
	Color  *string  `json:"color" validate:"omitempty,oneof=green orange yellow blue violet mauve"`
	Width  *float64 `json:"width" validate:"omitempty,gt=0"`
	Height *float64 `json:"height" validate:"omitempty,gt=0"`
	Title  *string  `json:"title" validate:"omitempty,max=500"`
}

// ContentRequest adds one item to a block
type ContentRequest struct {
	Type     string         `json:"type" validate:"required,oneof=text note url pdf image video_ref file quote table"`
	Body     string         `json:"body" validate:"max=1000000"`
	Metadata map[string]any `json:"metadata" validate:"omitempty,max=100"`
	Order    int            `json:"order" validate:"gte=0"`
}

// LinkRequest connects two blocks
type LinkRequest struct {
	SpaceID    string   `json:"space_id"`
	SourceID   string   `json:"source_id" validate:"required"`
	TargetID   string   `json:"target_id" validate:"required,nefield=SourceID"`
	Type       string   `json:"type" validate:"omitempty,oneof=simple logical tension anchored"`
	Weight     *float64 `json:"weight" validate:"omitempty,gte=0"`
	Validation string   `json:"validation" validate:"omitempty,oneof=pending validated rejected"`
}

// LinkUpdate changes any subset of a link's attributes
type LinkUpdate struct {
	Type       *string  `json:"type" validate:"omitempty,oneof=simple logical tension anchored"`
	Weight     *float64 `json:"weight" validate:"omitempty,gte=0"`
	Validation *string  `json:"validation" validate:"omitempty,oneof=pending validated rejected"`
}

// validateRequest runs struct validation and wraps failures in domain.ErrInvalid
func validateRequest(req any) error {
	if v := reflect.ValueOf(req); !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return fmt.Errorf("%w: request cannot be nil", domain.ErrInvalid)
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalid, formatValidationError(err))
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}

	// Report the first failure, addressed by its path inside the request
	for _, e := range validationErrs {
		field := e.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Sprintf("%s: field is required", field)
		case "min", "gte":
			return fmt.Sprintf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Sprintf("%s: must not exceed %s", field, param)
		case "gt":
			return fmt.Sprintf("%s: must be greater than %s", field, param)
		case "oneof":
			return fmt.Sprintf("%s: must be one of [%s]", field, param)
		case "nefield":
			return fmt.Sprintf("%s: must differ from %s", field, param)
		default:
			return fmt.Sprintf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err.Error()
}

package dtos

import (
	"context"

	"github.com/aquaops/pond-miniapp/modules/miniapp/services"
	"github.com/aquaops/pond-miniapp/pkg/validation"
)

// SharedDTO updates the shared date and pond. Absent keys leave the current
// value unchanged; an empty date clears it.
type SharedDTO struct {
	Date     *string `json:"date" form:"date" validate:"omitempty,datetime=2006-01-02"`
	Location *string `json:"location" form:"location" validate:"omitempty,max=200"`
}

func (dto *SharedDTO) Ok(ctx context.Context) (map[string]string, bool) {
	errs := validation.Struct(ctx, dto)
	return errs, len(errs) == 0
}

func (dto *SharedDTO) ToService() services.SetSharedDTO {
	return services.SetSharedDTO{Date: dto.Date, Location: dto.Location}
}

type FieldValueDTO struct {
	Value string `json:"value" form:"value" validate:"max=64"`
}

func (dto *FieldValueDTO) Ok(ctx context.Context) (map[string]string, bool) {
	errs := validation.Struct(ctx, dto)
	return errs, len(errs) == 0
}

package mappers

import (
	"context"
	"slices"

	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/aggregates/draft"
	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/entities/formvariant"
	"github.com/aquaops/pond-miniapp/modules/miniapp/presentation/viewmodels"
	"github.com/aquaops/pond-miniapp/modules/miniapp/services"
	"github.com/aquaops/pond-miniapp/pkg/backend"
	"github.com/aquaops/pond-miniapp/pkg/intl"
	"github.com/aquaops/pond-miniapp/pkg/rowlist"
	"github.com/aquaops/pond-miniapp/pkg/telegram"
)

func MeToViewModel(identity telegram.InitData, user *backend.User, isAdmin bool) viewmodels.Me {
	vm := viewmodels.Me{
		TelegramID: identity.UserID(),
		Name:       identity.User.FullName(),
		IsAdmin:    isAdmin,
	}
	if user != nil {
		vm.Registered = true
		vm.Role = string(user.Role)
		vm.Status = string(user.Status)
		if user.Fullname != "" {
			vm.Name = user.Fullname
		}
	}
	return vm
}

func MeasurementOptions(ctx context.Context) []viewmodels.Option {
	out := make([]viewmodels.Option, 0, len(formvariant.MeasurementTypes))
	for _, t := range formvariant.MeasurementTypes {
		out = append(out, viewmodels.Option{Value: t, Label: intl.Localize(ctx, formvariant.MeasurementLabel(t), nil)})
	}
	return out
}

func CatalogsToViewModel(ctx context.Context, c services.Catalogs) viewmodels.Catalogs {
	vm := viewmodels.Catalogs{
		Locations:        nonNil(c.Locations),
		FishTypes:        nonNil(c.FishTypes),
		MeasurementTypes: MeasurementOptions(ctx),
	}
	if c.LocationsErr != nil {
		vm.LocationsError = intl.Localize(ctx, "Forms.Errors.Network", nil)
	}
	if c.FishTypesErr != nil {
		vm.FishTypesError = intl.Localize(ctx, "Forms.Errors.Network", nil)
	}
	return vm
}

func VariantToViewModel(ctx context.Context, v *formvariant.Variant) viewmodels.Variant {
	vm := viewmodels.Variant{
		Key:    v.Key,
		Title:  intl.Localize(ctx, v.Title, nil),
		Fields: make([]viewmodels.Field, 0, len(v.Fields)),
	}
	for _, f := range v.Fields {
		field := viewmodels.Field{
			Name:     f.Name,
			Label:    intl.Localize(ctx, f.Label, nil),
			Kind:     string(f.Kind),
			Required: f.Required,
		}
		if f.Kind == formvariant.KindMeasurementType {
			field.Options = MeasurementOptions(ctx)
		}
		vm.Fields = append(vm.Fields, field)
	}
	if v.Rows != nil {
		required := v.Rows.Schema.Required
		if len(required) == 0 {
			required = v.Rows.Schema.Fields
		}
		for _, name := range v.Rows.Schema.Fields {
			vm.Columns = append(vm.Columns, viewmodels.RowColumn{
				Name:     name,
				Label:    intl.Localize(ctx, v.Rows.Labels[name], nil),
				Kind:     string(v.Rows.Kind(name)),
				Required: slices.Contains(required, name),
			})
		}
	}
	return vm
}

func SharedToViewModel(s draft.Shared) viewmodels.Shared {
	return viewmodels.Shared{Date: s.Date(), Location: s.Location()}
}

func DraftToViewModel(d draft.Draft, s draft.Shared) viewmodels.Draft {
	v := d.Variant()
	values := d.Values()
	active := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		if v.FieldActive(f.Name, values) {
			active = append(active, f.Name)
		}
	}
	rows := d.Rows()
	if rows == nil {
		rows = []rowlist.Row{}
	}
	return viewmodels.Draft{
		Variant:      v.Key,
		Date:         s.Date(),
		Location:     s.Location(),
		Values:       values,
		ActiveFields: active,
		RowsActive:   v.RowsActive(values),
		Rows:         rows,
		UpdatedAt:    d.UpdatedAt(),
	}
}

func UsersToViewModels(users []services.ManagedUser) []viewmodels.User {
	out := make([]viewmodels.User, 0, len(users))
	for i := range users {
		u := &users[i]
		actions := make([]string, 0, len(u.Actions))
		for _, a := range u.Actions {
			actions = append(actions, string(a))
		}
		out = append(out, viewmodels.User{
			TelegramID: u.TelegramID,
			Fullname:   u.Fullname,
			Phone:      u.Phone,
			Role:       string(u.Role),
			Status:     string(u.Status),
			IsAdmin:    u.IsAdmin(),
			Actions:    actions,
		})
	}
	return out
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

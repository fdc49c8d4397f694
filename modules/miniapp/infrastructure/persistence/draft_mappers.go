package persistence

import (
	"fmt"

	"github.com/go-faster/errors"

	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/aggregates/draft"
	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/entities/formvariant"
	"github.com/aquaops/pond-miniapp/modules/miniapp/infrastructure/persistence/models"
	"github.com/aquaops/pond-miniapp/pkg/rowlist"
)

func ToDBDraft(d draft.Draft) models.Draft {
	rows := d.Rows()
	dbRows := make([]models.DraftRow, 0, len(rows))
	for _, r := range rows {
		dbRows = append(dbRows, models.DraftRow{ID: r.ID, Values: r.Values})
	}
	return models.Draft{
		UserID:    d.UserID(),
		Variant:   d.Variant().Key,
		Values:    d.Values(),
		Rows:      dbRows,
		LastRowID: d.LastRowID(),
		UpdatedAt: d.UpdatedAt(),
	}
}

func ToDomainDraft(model models.Draft) (draft.Draft, error) {
	variant, err := formvariant.Get(model.Variant)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to resolve form variant: %s", model.Variant))
	}
	rows := make([]rowlist.Row, 0, len(model.Rows))
	for _, r := range model.Rows {
		rows = append(rows, rowlist.Row{ID: r.ID, Values: r.Values})
	}
	return draft.New(
		model.UserID,
		variant,
		draft.WithValues(model.Values),
		draft.WithRows(rows, model.LastRowID),
		draft.WithUpdatedAt(model.UpdatedAt),
	), nil
}

func ToDBShared(s draft.Shared) models.Shared {
	return models.Shared{
		UserID:   s.UserID(),
		Date:     s.Date(),
		Location: s.Location(),
	}
}

// ToDomainShared keeps a date the operator cleared on purpose empty.
func ToDomainShared(model models.Shared) (draft.Shared, error) {
	s := draft.NewShared(model.UserID, model.Date, model.Location)
	if model.Date == "" {
		return s.SetDate("")
	}
	if _, err := s.SetDate(model.Date); err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to parse shared date: %s", model.Date))
	}
	return s, nil
}

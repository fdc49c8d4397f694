package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/aggregates/draft"
	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/entities/formvariant"
	"github.com/aquaops/pond-miniapp/modules/miniapp/infrastructure/persistence"
	"github.com/aquaops/pond-miniapp/modules/miniapp/infrastructure/persistence/models"
	"github.com/aquaops/pond-miniapp/pkg/rowlist"
)

func TestInmemDraftRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewInmemDraftRepository()

	_, err := repo.Get(ctx, 7, formvariant.KeyDeathReport)
	require.ErrorIs(t, err, draft.ErrDraftNotFound)

	v, err := formvariant.Get(formvariant.KeyDeathReport)
	require.NoError(t, err)
	d := draft.New(7, v)
	require.NoError(t, d.UpdateRow(1, "type", "Карп"))
	require.NoError(t, d.UpdateRow(1, "kg", "2"))
	require.NoError(t, d.RemoveRow(2))
	require.NoError(t, repo.Save(ctx, d))

	loaded, err := repo.Get(ctx, 7, formvariant.KeyDeathReport)
	require.NoError(t, err)
	assert.Equal(t, d.Rows(), loaded.Rows())
	assert.Equal(t, d.LastRowID(), loaded.LastRowID())

	require.NoError(t, loaded.UpdateRow(1, "kg", "5"))
	again, err := repo.Get(ctx, 7, formvariant.KeyDeathReport)
	require.NoError(t, err)
	assert.Equal(t, "2", again.Rows()[0].Get("kg"), "unsaved edits do not leak into the store")

	_, err = repo.Get(ctx, 8, formvariant.KeyDeathReport)
	require.ErrorIs(t, err, draft.ErrDraftNotFound, "drafts are per operator")

	require.NoError(t, repo.Delete(ctx, 7, formvariant.KeyDeathReport))
	_, err = repo.Get(ctx, 7, formvariant.KeyDeathReport)
	require.ErrorIs(t, err, draft.ErrDraftNotFound)
}

func TestInmemDraftRepository_Shared(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewInmemDraftRepository()

	_, err := repo.GetShared(ctx, 7)
	require.ErrorIs(t, err, draft.ErrDraftNotFound)

	s, err := draft.NewShared(7, "2024-05-01", "Pond A").SetDate("")
	require.NoError(t, err)
	require.NoError(t, repo.SaveShared(ctx, s))

	loaded, err := repo.GetShared(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, loaded.Date(), "a cleared date stays cleared")
	assert.Equal(t, "Pond A", loaded.Location())
}

func TestToDomainDraft_UnknownVariant(t *testing.T) {
	_, err := persistence.ToDomainDraft(models.Draft{UserID: 1, Variant: "harvest"})
	require.ErrorIs(t, err, formvariant.ErrUnknownVariant)
}

func TestToDomainDraft_RestoresRowIDs(t *testing.T) {
	d, err := persistence.ToDomainDraft(models.Draft{
		UserID:    1,
		Variant:   formvariant.KeyControlCatch,
		Rows:      []models.DraftRow{{ID: 3, Values: map[string]string{rowlist.ValueField: ""}}},
		LastRowID: 5,
	})
	require.NoError(t, err)
	require.NoError(t, d.UpdateRow(3, rowlist.ValueField, "1"))
	assert.Equal(t, 6, d.Rows()[1].ID, "ids continue from the high-water mark")
}

package services

import (
	"context"
	"testing"

	"github.com/corequote/corequote/internal/forms"
	"github.com/corequote/corequote/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemSKURules(t *testing.T) {
	conn := setupTestDB(t)
	a := newFixture(t, conn, "a@test")
	b := newFixture(t, conn, "b@test")
	svc := NewItemService(conn)
	ctx := context.Background()

	_, err := svc.Create(ctx, a.user.ID, forms.ItemInput{SKU: "sku-0", Name: "dup"})
	assert.Equal(t, DuplicateSKU, violations(t, err)["sku"], "case-insensitive clash")

	_, err = svc.Create(ctx, b.user.ID, forms.ItemInput{SKU: "NEW-1", Name: "x"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, a.user.ID, forms.ItemInput{SKU: "new-1", Name: "x"})
	require.NoError(t, err, "other owners do not clash")

	// Keeping its own SKU on edit is fine; taking a sibling's is not.
	_, err = svc.Update(ctx, a.user.ID, a.items[0].ID, forms.ItemInput{SKU: "SKU-0", Name: "renamed", Stock: "1"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, a.user.ID, a.items[0].ID, forms.ItemInput{SKU: "Sku-1", Name: "renamed"})
	assert.Equal(t, DuplicateSKU, violations(t, err)["sku"])

	// Deleted items free their SKU.
	require.NoError(t, svc.Delete(ctx, a.user.ID, a.items[1].ID))
	_, err = svc.Create(ctx, a.user.ID, forms.ItemInput{SKU: "SKU-1", Name: "again"})
	require.NoError(t, err)
}

func TestSKURaceMapsToFieldError(t *testing.T) {
	conn := setupTestDB(t)
	f := newFixture(t, conn, "a@test")
	// Bypass the pre-check to hit the unique index directly.
	err := conn.Create(&models.Item{UserID: f.user.ID, SKU: "sku-0", Name: "race"}).Error
	require.Error(t, err)
	assert.Equal(t, DuplicateSKU, violations(t, skuError(err))["sku"])
}

func TestItemDeleteProtection(t *testing.T) {
	conn := setupTestDB(t)
	f := newFixture(t, conn, "a@test")
	items := NewItemService(conn)
	quotes := newQuoteService(conn, nil)
	ctx := context.Background()

	q, err := quotes.Create(ctx, f.user.ID, quoteInput(f.client.ID, line(f.items[0].ID, "1", "1")))
	require.NoError(t, err)

	assert.ErrorIs(t, items.Delete(ctx, f.user.ID, f.items[0].ID), ErrItemInUse)
	_, err = items.Get(ctx, f.user.ID, f.items[0].ID)
	require.NoError(t, err, "item survives refused delete")

	// Once the quote is deleted the item may go.
	require.NoError(t, quotes.Delete(ctx, f.user.ID, q.ID))
	require.NoError(t, items.Delete(ctx, f.user.ID, f.items[0].ID))

	// The deleted quote still shows the deleted item.
	var stored models.Quote
	require.NoError(t, conn.Unscoped().Preload("Lines.Item", unscoped).First(&stored, q.ID).Error)
	assert.Equal(t, "SKU-0", stored.Lines[0].Item.SKU)
}

func TestItemOwnership(t *testing.T) {
	conn := setupTestDB(t)
	a := newFixture(t, conn, "a@test")
	b := newFixture(t, conn, "b@test")
	svc := NewItemService(conn)
	ctx := context.Background()

	_, err := svc.Get(ctx, b.user.ID, a.items[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(ctx, b.user.ID, a.items[0].ID, forms.ItemInput{SKU: "x", Name: "y"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, b.user.ID, a.items[0].ID), ErrNotFound)

	list, err := svc.List(ctx, a.user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

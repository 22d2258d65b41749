package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/apperrors"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/repository"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/testutil"
)

func createItemParams(founderID uuid.UUID, name string) repository.CreateItemParams {
	return repository.CreateItemParams{
		FounderID:     founderID,
		Name:          name,
		Description:   "Black leather wallet with cards",
		Category:      "wallets",
		FoundLocation: "Central station",
		Reward:        decimal.NewFromFloat(12.50),
	}
}

func Test_ItemRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create and get item", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := ItemRepo{DB: tx}
			founder := insertUser(t, tx)

			item, err := r.CreateItem(t.Context(), createItemParams(founder.ID, "Wallet"))
			require.NoError(t, err)

			assert.Equal(t, models.ItemPendingStorage, item.Status, "new items start pending storage")
			assert.Equal(t, founder.ID, item.FounderID)
			assert.Nil(t, item.BoxID)
			assert.True(t, item.Reward.Equal(decimal.NewFromFloat(12.50)))

			got, err := r.GetItem(t.Context(), item.ID)
			require.NoError(t, err)
			assert.Equal(t, item.ID, got.ID)
			assert.Equal(t, "Wallet", got.Name)
		})
	})

	t.Run("get item not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := ItemRepo{DB: tx}

			_, err := r.GetItem(t.Context(), uuid.New())

			assert.ErrorIs(t, err, apperrors.ErrItemNotFound)
		})
	})

	t.Run("update item keeps omitted fields", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := ItemRepo{DB: tx}
			founder := insertUser(t, tx)
			insertBox(t, tx, "BOX_A1")

			item, err := r.CreateItem(t.Context(), createItemParams(founder.ID, "Wallet"))
			require.NoError(t, err)

			boxID := "BOX_A1"
			status := models.ItemWaiting
			got, err := r.UpdateItem(t.Context(), item.ID, repository.UpdateItemParams{
				BoxID:  &boxID,
				Status: &status,
			})

			require.NoError(t, err)
			require.NotNil(t, got.BoxID)
			assert.Equal(t, "BOX_A1", *got.BoxID)
			assert.Equal(t, models.ItemWaiting, got.Status)
			assert.Equal(t, "Wallet", got.Name, "name stays unchanged when not provided")
		})
	})

	t.Run("list and paginate", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := ItemRepo{DB: tx}
			founder := insertUser(t, tx)

			for _, name := range []string{"Wallet", "Umbrella", "Phone"} {
				_, err := r.CreateItem(t.Context(), createItemParams(founder.ID, name))
				require.NoError(t, err)
			}

			items, err := r.ListItems(t.Context(), 2, 0)
			require.NoError(t, err)
			assert.Len(t, items, 2)

			items, err = r.ListItems(t.Context(), 2, 2)
			require.NoError(t, err)
			assert.Len(t, items, 1)
		})
	})

	t.Run("search matches name description and category", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := ItemRepo{DB: tx}
			founder := insertUser(t, tx)

			_, err := r.CreateItem(t.Context(), createItemParams(founder.ID, "Red umbrella"))
			require.NoError(t, err)
			_, err = r.CreateItem(t.Context(), createItemParams(founder.ID, "Phone"))
			require.NoError(t, err)

			items, err := r.SearchItems(t.Context(), "umbrella", 10, 0)
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, "Red umbrella", items[0].Name)

			// Case insensitive and matches description text too
			items, err = r.SearchItems(t.Context(), "LEATHER", 10, 0)
			require.NoError(t, err)
			assert.Len(t, items, 2)

			items, err = r.SearchItems(t.Context(), "bicycle", 10, 0)
			require.NoError(t, err)
			assert.Empty(t, items)
		})
	})

	t.Run("list by founder", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := ItemRepo{DB: tx}
			u := UserRepo{DB: tx}

			first, err := u.CreateUser(t.Context(), createUserParams("first@example.com"))
			require.NoError(t, err)
			second, err := u.CreateUser(t.Context(), createUserParams("second@example.com"))
			require.NoError(t, err)

			_, err = r.CreateItem(t.Context(), createItemParams(first.ID, "Wallet"))
			require.NoError(t, err)
			_, err = r.CreateItem(t.Context(), createItemParams(second.ID, "Phone"))
			require.NoError(t, err)

			items, err := r.ListItemsByFounder(t.Context(), first.ID)
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, "Wallet", items[0].Name)
		})
	})
}

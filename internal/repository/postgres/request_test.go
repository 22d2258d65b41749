package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/apperrors"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/repository"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/testutil"
)

// newClaim sets up a founder with an item and a finder claiming it
func newClaim(t *testing.T, tx pgx.Tx) (models.Request, models.User, models.User) {
	t.Helper()

	users := UserRepo{DB: tx}
	items := ItemRepo{DB: tx}
	requests := RequestRepo{DB: tx}

	founder, err := users.CreateUser(t.Context(), createUserParams("founder@example.com"))
	require.NoError(t, err)
	finder, err := users.CreateUser(t.Context(), createUserParams("finder@example.com"))
	require.NoError(t, err)

	item, err := items.CreateItem(t.Context(), createItemParams(founder.ID, "Wallet"))
	require.NoError(t, err)

	request, err := requests.CreateRequest(t.Context(), repository.CreateRequestParams{
		ItemID:    item.ID,
		FinderID:  finder.ID,
		FounderID: founder.ID,
		Message:   "That wallet is mine, it has my id card inside",
	})
	require.NoError(t, err)

	return request, founder, finder
}

func Test_RequestRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create starts pending", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			request, founder, finder := newClaim(t, tx)

			assert.Equal(t, models.RequestPending, request.Status)
			assert.Equal(t, founder.ID, request.FounderID)
			assert.Equal(t, finder.ID, request.FinderID)
		})
	})

	t.Run("get not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RequestRepo{DB: tx}

			_, err := r.GetRequest(t.Context(), uuid.New())

			assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
		})
	})

	t.Run("resolve approves once", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RequestRepo{DB: tx}
			request, _, _ := newClaim(t, tx)

			resolved, err := r.Resolve(t.Context(), request.ID, models.RequestApproved)
			require.NoError(t, err)
			assert.Equal(t, models.RequestApproved, resolved.Status)

			// A second resolution loses, whatever it tries to set
			_, err = r.Resolve(t.Context(), request.ID, models.RequestRejected)
			assert.ErrorIs(t, err, apperrors.ErrRequestResolved)

			got, err := r.GetRequest(t.Context(), request.ID)
			require.NoError(t, err)
			assert.Equal(t, models.RequestApproved, got.Status, "first resolution stands")
		})
	})

	t.Run("resolve unknown request", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RequestRepo{DB: tx}

			_, err := r.Resolve(t.Context(), uuid.New(), models.RequestApproved)

			assert.ErrorIs(t, err, apperrors.ErrRequestNotFound,
				"missing request and resolved request are different errors")
		})
	})

	t.Run("lists by founder and finder", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RequestRepo{DB: tx}
			request, founder, finder := newClaim(t, tx)

			byFounder, err := r.ListRequestsByFounder(t.Context(), founder.ID)
			require.NoError(t, err)
			require.Len(t, byFounder, 1)
			assert.Equal(t, request.ID, byFounder[0].ID)

			byFinder, err := r.ListRequestsByFinder(t.Context(), finder.ID)
			require.NoError(t, err)
			require.Len(t, byFinder, 1)
			assert.Equal(t, request.ID, byFinder[0].ID)

			// The two sides don't leak into each other
			byFounder, err = r.ListRequestsByFounder(t.Context(), finder.ID)
			require.NoError(t, err)
			assert.Empty(t, byFounder)
		})
	})
}

func Test_MessageRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("send list and unread lifecycle", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := MessageRepo{DB: tx}
			request, founder, finder := newClaim(t, tx)

			message, err := r.CreateMessage(t.Context(), repository.CreateMessageParams{
				RequestID:   request.ID,
				SenderID:    finder.ID,
				RecipientID: founder.ID,
				Body:        "When can I pick it up?",
			})
			require.NoError(t, err)
			assert.Nil(t, message.ReadAt, "new messages start unread")

			thread, err := r.ListMessagesByRequest(t.Context(), request.ID)
			require.NoError(t, err)
			require.Len(t, thread, 1)

			count, err := r.UnreadCount(t.Context(), founder.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)

			// Only the recipient may mark it read
			marked, err := r.MarkRead(t.Context(), message.ID, finder.ID)
			require.NoError(t, err)
			assert.False(t, marked, "sender must not be able to mark the message")

			marked, err = r.MarkRead(t.Context(), message.ID, founder.ID)
			require.NoError(t, err)
			assert.True(t, marked)

			// Second mark is a no-op
			marked, err = r.MarkRead(t.Context(), message.ID, founder.ID)
			require.NoError(t, err)
			assert.False(t, marked)

			count, err = r.UnreadCount(t.Context(), founder.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(0), count)
		})
	})
}

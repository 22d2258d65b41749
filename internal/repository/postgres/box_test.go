package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/apperrors"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/testutil"
)

func insertBox(t *testing.T, tx pgx.Tx, boxID string) {
	t.Helper()
	_, err := tx.Exec(t.Context(),
		"INSERT INTO boxes (box_id, name, location) VALUES ($1, 'Test box', 'Main hall')", boxID)
	require.NoError(t, err)
}

func insertUser(t *testing.T, tx pgx.Tx) models.User {
	t.Helper()
	r := UserRepo{DB: tx}
	user, err := r.CreateUser(t.Context(), createUserParams("boxowner@example.com"))
	require.NoError(t, err)
	return user
}

func Test_BoxRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("get box", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := BoxRepo{DB: tx}
			insertBox(t, tx, "BOX_A1")

			box, err := r.GetBox(t.Context(), "BOX_A1")

			require.NoError(t, err)
			assert.Equal(t, "BOX_A1", box.ID)
			assert.Equal(t, models.BoxAvailable, box.Status)
			assert.Nil(t, box.Command)
			assert.Nil(t, box.LastPing)
			assert.False(t, box.Online, "box with no pings is offline")
		})
	})

	t.Run("get box not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := BoxRepo{DB: tx}

			_, err := r.GetBox(t.Context(), "BOX_Z9")

			assert.ErrorIs(t, err, apperrors.ErrBoxNotFound)
		})
	})

	t.Run("schema rejects malformed box ids", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			_, err := tx.Exec(t.Context(),
				"INSERT INTO boxes (box_id, name) VALUES ('box-1', 'bad id')")

			assert.Error(t, err, "the id pattern is enforced at the database too")
		})
	})

	t.Run("command lifecycle", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := BoxRepo{DB: tx}
			insertBox(t, tx, "BOX_A1")
			user := insertUser(t, tx)

			// No command yet
			pending, err := r.PendingCommand(t.Context(), "BOX_A1")
			require.NoError(t, err)
			require.Nil(t, pending)

			// Set and read back
			err = r.SetCommand(t.Context(), "BOX_A1", models.CommandUnlock, user.ID)
			require.NoError(t, err)

			pending, err = r.PendingCommand(t.Context(), "BOX_A1")
			require.NoError(t, err)
			require.NotNil(t, pending)
			assert.Equal(t, models.CommandUnlock, pending.Command)
			assert.WithinDuration(t, time.Now(), pending.IssuedAt, time.Second)
			assert.Less(t, pending.Age, time.Second)

			// Overwrite: last writer wins
			err = r.SetCommand(t.Context(), "BOX_A1", models.CommandLock, user.ID)
			require.NoError(t, err)

			pending, err = r.PendingCommand(t.Context(), "BOX_A1")
			require.NoError(t, err)
			require.NotNil(t, pending)
			assert.Equal(t, models.CommandLock, pending.Command)

			// Clear reports presence, second clear is a no-op
			cleared, err := r.ClearCommand(t.Context(), "BOX_A1")
			require.NoError(t, err)
			assert.True(t, cleared)

			cleared, err = r.ClearCommand(t.Context(), "BOX_A1")
			require.NoError(t, err)
			assert.False(t, cleared)
		})
	})

	t.Run("set command on unknown box", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := BoxRepo{DB: tx}
			user := insertUser(t, tx)

			err := r.SetCommand(t.Context(), "BOX_Z9", models.CommandUnlock, user.ID)

			assert.ErrorIs(t, err, apperrors.ErrBoxNotFound)
		})
	})

	t.Run("conditional clear spares a newer command", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := BoxRepo{DB: tx}
			insertBox(t, tx, "BOX_A1")
			user := insertUser(t, tx)

			require.NoError(t, r.SetCommand(t.Context(), "BOX_A1", models.CommandUnlock, user.ID))
			pending, err := r.PendingCommand(t.Context(), "BOX_A1")
			require.NoError(t, err)
			require.NotNil(t, pending)

			// A newer command lands after our read
			_, err = tx.Exec(t.Context(),
				"UPDATE boxes SET command = 'lock', command_issued_at = now() + interval '1 second' WHERE box_id = 'BOX_A1'")
			require.NoError(t, err)

			cleared, err := r.ClearCommandIssuedAt(t.Context(), "BOX_A1", pending.IssuedAt)
			require.NoError(t, err)
			assert.False(t, cleared, "clear keyed to the old issue time must miss")

			pending, err = r.PendingCommand(t.Context(), "BOX_A1")
			require.NoError(t, err)
			require.NotNil(t, pending, "the newer command survived")
			assert.Equal(t, models.CommandLock, pending.Command)
		})
	})

	t.Run("conditional clear removes the matching command", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := BoxRepo{DB: tx}
			insertBox(t, tx, "BOX_A1")
			user := insertUser(t, tx)

			require.NoError(t, r.SetCommand(t.Context(), "BOX_A1", models.CommandUnlock, user.ID))
			pending, err := r.PendingCommand(t.Context(), "BOX_A1")
			require.NoError(t, err)
			require.NotNil(t, pending)

			cleared, err := r.ClearCommandIssuedAt(t.Context(), "BOX_A1", pending.IssuedAt)
			require.NoError(t, err)
			assert.True(t, cleared)

			pending, err = r.PendingCommand(t.Context(), "BOX_A1")
			require.NoError(t, err)
			assert.Nil(t, pending)
		})
	})

	t.Run("heartbeat and derived online", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := BoxRepo{DB: tx}
			insertBox(t, tx, "BOX_A1")

			pingedAt, err := r.Heartbeat(t.Context(), "BOX_A1")
			require.NoError(t, err)
			assert.WithinDuration(t, time.Now(), pingedAt, time.Second)

			box, err := r.GetBox(t.Context(), "BOX_A1")
			require.NoError(t, err)
			assert.True(t, box.Online)

			// Age the ping beyond the online window
			_, err = tx.Exec(t.Context(),
				"UPDATE boxes SET last_ping = now() - interval '3 minutes' WHERE box_id = 'BOX_A1'")
			require.NoError(t, err)

			box, err = r.GetBox(t.Context(), "BOX_A1")
			require.NoError(t, err)
			assert.False(t, box.Online, "online flips purely from the query, no write happened")
		})
	})

	t.Run("heartbeat unknown box", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := BoxRepo{DB: tx}

			_, err := r.Heartbeat(t.Context(), "BOX_Z9")

			assert.ErrorIs(t, err, apperrors.ErrBoxNotFound)
		})
	})

	t.Run("set status", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := BoxRepo{DB: tx}
			insertBox(t, tx, "BOX_A1")

			box, err := r.SetStatus(t.Context(), "BOX_A1", models.BoxOccupied)
			require.NoError(t, err)
			assert.Equal(t, models.BoxOccupied, box.Status)

			boxes, err := r.ListAvailableBoxes(t.Context())
			require.NoError(t, err)
			for _, b := range boxes {
				assert.NotEqual(t, "BOX_A1", b.ID, "occupied box must not be listed as available")
			}
		})
	})

	t.Run("stats", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := BoxRepo{DB: tx}
			user := insertUser(t, tx)

			insertBox(t, tx, "BOX_A1") // online, with pending command
			insertBox(t, tx, "BOX_B2") // offline
			_, err := r.Heartbeat(t.Context(), "BOX_A1")
			require.NoError(t, err)
			require.NoError(t, r.SetCommand(t.Context(), "BOX_A1", models.CommandUnlock, user.ID))

			stats, err := r.Stats(t.Context())

			require.NoError(t, err)
			assert.Equal(t, int64(1), stats.Online)
			assert.Equal(t, int64(1), stats.Offline)
			assert.Equal(t, int64(1), stats.Pending)
		})
	})

	t.Run("liveness and availability queries are indexed", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			rows, err := tx.Query(t.Context(),
				"SELECT indexname FROM pg_indexes WHERE tablename = 'boxes'")
			require.NoError(t, err)
			names, err := pgx.CollectRows(rows, pgx.RowTo[string])
			require.NoError(t, err)

			assert.Contains(t, names, "boxes_last_ping_idx")
			assert.Contains(t, names, "boxes_status_idx")
		})
	})
}

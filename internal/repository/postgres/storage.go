package postgres

import (
	"context"
	"fmt"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/repository"
)

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) repository.Storage {
	return &Storage{db: db}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{DB: s.db}
}

func (s *Storage) Box() repository.BoxRepo {
	return &BoxRepo{DB: s.db}
}

func (s *Storage) Item() repository.ItemRepo {
	return &ItemRepo{DB: s.db}
}

func (s *Storage) Request() repository.RequestRepo {
	return &RequestRepo{DB: s.db}
}

func (s *Storage) Message() repository.MessageRepo {
	return &MessageRepo{DB: s.db}
}

func (s *Storage) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("db ping error: %w", err)
	}
	return nil
}

func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	defer func() {
		switch err {
		case nil:
			err = tx.Commit(ctx)
		default:
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(NewStorage(tx))

	return err
}

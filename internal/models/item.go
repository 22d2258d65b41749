package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ItemStatus string

const (
	ItemPendingStorage ItemStatus = "pending_storage"
	ItemWaiting        ItemStatus = "waiting"
	ItemToCollect      ItemStatus = "to_collect"
	ItemClaimed        ItemStatus = "claimed"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemPendingStorage, ItemWaiting, ItemToCollect, ItemClaimed:
		return true
	}
	return false
}

// Item is a found object registered by a founder, optionally stored in a box
type Item struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time

	FounderID uuid.UUID
	BoxID     *string // nil until the item is placed into a box

	Name          string
	Description   string
	Category      string
	FoundLocation string
	Reward        decimal.Decimal
	Status        ItemStatus
}

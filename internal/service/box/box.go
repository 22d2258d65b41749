package box

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/models"
	"github.com/Yobibbb/Lost-and-Found-IOT/internal/repository"
)

// Commands not picked up within this window are stale: the device was
// offline or slow and the operator's intent has expired
const defaultCommandExpiry = 60 * time.Second

type Config struct {
	// How long an unfetched command stays valid
	// If not set than default is used
	CommandExpiry time.Duration
}

// Service is the per-box command mailbox: at most one pending command per box,
// expiry enforced lazily on fetch, liveness tracked through heartbeats.
type Service struct {
	boxRepo       repository.BoxRepo
	commandExpiry time.Duration
}

func NewService(cfg Config, boxRepo repository.BoxRepo) (*Service, error) {
	if boxRepo == nil {
		return nil, errors.New("box repo must not be nil")
	}

	if cfg.CommandExpiry == 0 {
		cfg.CommandExpiry = defaultCommandExpiry
	}

	return &Service{
		boxRepo:       boxRepo,
		commandExpiry: cfg.CommandExpiry,
	}, nil
}

func (s *Service) ListBoxes(ctx context.Context) ([]models.Box, error) {
	return s.boxRepo.ListBoxes(ctx)
}

func (s *Service) ListAvailableBoxes(ctx context.Context) ([]models.Box, error) {
	return s.boxRepo.ListAvailableBoxes(ctx)
}

func (s *Service) GetBox(ctx context.Context, boxID string) (models.Box, error) {
	return s.boxRepo.GetBox(ctx, boxID)
}

// IssueCommand queues a one-shot command for the device to pick up on its
// next poll. Any command already pending is overwritten: last writer wins,
// there is no queueing of multiple commands.
func (s *Service) IssueCommand(ctx context.Context, boxID string, cmd models.BoxCommand, issuedBy uuid.UUID) error {
	if !cmd.Valid() {
		return fmt.Errorf("unknown box command: %q", cmd)
	}
	return s.boxRepo.SetCommand(ctx, boxID, cmd, issuedBy)
}

// FetchCommand returns the pending command, or nil when the box is idle.
//
// Expiry is enforced here, on read: a command older than the expiry window is
// cleared by this call and reported as absent. The clear is conditional on
// the command's issue time, so a newer command issued while this fetch was in
// flight survives untouched.
func (s *Service) FetchCommand(ctx context.Context, boxID string) (*models.PendingCommand, error) {
	pending, err := s.boxRepo.PendingCommand(ctx, boxID)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, nil
	}

	if pending.Age > s.commandExpiry {
		if _, err := s.boxRepo.ClearCommandIssuedAt(ctx, boxID, pending.IssuedAt); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return pending, nil
}

// ClearCommand acknowledges command execution.
// Idempotent: clearing an idle box returns false, never an error.
func (s *Service) ClearCommand(ctx context.Context, boxID string) (bool, error) {
	return s.boxRepo.ClearCommand(ctx, boxID)
}

// Heartbeat records device liveness and returns the stored ping time
func (s *Service) Heartbeat(ctx context.Context, boxID string) (time.Time, error) {
	return s.boxRepo.Heartbeat(ctx, boxID)
}

// SetLockStatus writes the box status directly, outside the command flow
// Used by the device status push and for manual diagnostics
func (s *Service) SetLockStatus(ctx context.Context, boxID string, status models.BoxStatus) (models.Box, error) {
	if !status.Valid() {
		return models.Box{}, fmt.Errorf("unknown box status: %q", status)
	}
	return s.boxRepo.SetStatus(ctx, boxID, status)
}

// Stats reports aggregate device counters for monitoring
func (s *Service) Stats(ctx context.Context) (models.BoxStats, error) {
	return s.boxRepo.Stats(ctx)
}

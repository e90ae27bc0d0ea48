package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
	"github.com/saeid-a/TrainerScheduleBack/internal/repository"
)

// AvailabilityService manages a trainer's weekly windows, ad-hoc
// blocked slots and per-trainer settings.
type AvailabilityService struct {
	db   *pgxpool.Pool
	repo *repository.AvailabilityRepository
	now  func() time.Time
}

func NewAvailabilityService(db *pgxpool.Pool, repo *repository.AvailabilityRepository) *AvailabilityService {
	return &AvailabilityService{db: db, repo: repo, now: time.Now}
}

func (s *AvailabilityService) ListWindows(
	ctx context.Context,
	trainerID uuid.UUID,
) ([]models.TrainerAvailability, error) {
	return s.repo.ListWindows(ctx, trainerID)
}

// ReplaceWindows swaps the trainer's whole weekly schedule in one
// transaction.
func (s *AvailabilityService) ReplaceWindows(
	ctx context.Context,
	trainerID uuid.UUID,
	windows []repository.AvailabilityWindow,
) ([]models.TrainerAvailability, error) {
	for _, w := range windows {
		if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
			return nil, ErrInvalidInput
		}
		start, err := atClock(s.now(), w.StartTime)
		if err != nil {
			return nil, ErrInvalidInput
		}
		end, err := atClock(s.now(), w.EndTime)
		if err != nil {
			return nil, ErrInvalidInput
		}
		if !end.After(start) {
			return nil, ErrInvalidInput
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	replaced, err := repository.NewAvailabilityRepository(tx).ReplaceWindows(ctx, trainerID, windows)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return replaced, nil
}

// CreateBlockedSlot validates the recurring XOR specific-date shape
// before inserting.
func (s *AvailabilityService) CreateBlockedSlot(
	ctx context.Context,
	trainerID uuid.UUID,
	input repository.CreateBlockedSlotInput,
) (*models.TrainerBlockedSlot, error) {
	if input.IsRecurring {
		if input.DayOfWeek == nil || input.SpecificDate != nil {
			return nil, ErrInvalidInput
		}
		if *input.DayOfWeek < 0 || *input.DayOfWeek > 6 {
			return nil, ErrInvalidInput
		}
	} else {
		if input.SpecificDate == nil || input.DayOfWeek != nil {
			return nil, ErrInvalidInput
		}
	}
	start, err := atClock(s.now(), input.StartTime)
	if err != nil {
		return nil, ErrInvalidInput
	}
	end, err := atClock(s.now(), input.EndTime)
	if err != nil {
		return nil, ErrInvalidInput
	}
	if !end.After(start) {
		return nil, ErrInvalidInput
	}

	input.TrainerID = trainerID
	return s.repo.CreateBlockedSlot(ctx, input)
}

func (s *AvailabilityService) ListBlockedSlots(
	ctx context.Context,
	trainerID uuid.UUID,
) ([]models.TrainerBlockedSlot, error) {
	return s.repo.ListBlockedSlots(ctx, trainerID)
}

func (s *AvailabilityService) DeleteBlockedSlot(ctx context.Context, trainerID, id uuid.UUID) error {
	slot, err := s.repo.GetBlockedSlot(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if slot.TrainerID != trainerID {
		return ErrForbidden
	}
	return s.repo.DeleteBlockedSlot(ctx, id)
}

// Settings returns the trainer's settings, creating the default row on
// first access.
func (s *AvailabilityService) Settings(
	ctx context.Context,
	trainerID uuid.UUID,
) (*models.TrainerSettings, error) {
	return s.repo.CreateDefaultSettings(ctx, trainerID)
}

func (s *AvailabilityService) UpdateSettings(
	ctx context.Context,
	trainerID uuid.UUID,
	input repository.UpdateSettingsInput,
) (*models.TrainerSettings, error) {
	if input.LateCancelPolicy != nil {
		switch *input.LateCancelPolicy {
		case models.LateCancelCharge, models.LateCancelWarn, models.LateCancelBlock:
		default:
			return nil, ErrInvalidInput
		}
	}
	if input.SessionDurationMinutes != nil && *input.SessionDurationMinutes <= 0 {
		return nil, ErrInvalidInput
	}
	if input.SlotIntervalMinutes != nil && *input.SlotIntervalMinutes <= 0 {
		return nil, ErrInvalidInput
	}
	if input.LateCancelWindowHours != nil && *input.LateCancelWindowHours < 0 {
		return nil, ErrInvalidInput
	}
	for _, clock := range []*string{input.DefaultStartTime, input.DefaultEndTime} {
		if clock == nil {
			continue
		}
		if _, err := atClock(s.now(), *clock); err != nil {
			return nil, ErrInvalidInput
		}
	}

	// Make sure the row exists before the partial update.
	if _, err := s.repo.CreateDefaultSettings(ctx, trainerID); err != nil {
		return nil, err
	}
	return s.repo.UpdateSettings(ctx, trainerID, input)
}

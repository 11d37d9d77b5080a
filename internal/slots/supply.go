package slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"appointment-booking-client/internal/models"
)

var ErrInvalidRange = errors.New("end time must be after start time")

// Creator posts a new slot.
type Creator interface {
	CreateSlot(ctx context.Context, req models.SlotRequest) (*models.Slot, error)
}

// Supply adds slots on behalf of an administrator.
type Supply struct {
	api      Creator
	validate *validator.Validate
	log      *zap.Logger
}

func NewSupply(api Creator, log *zap.Logger) *Supply {
	return &Supply{api: api, validate: models.NewValidator(), log: log}
}

// Create validates req locally and posts it. Invalid requests never reach the
// server.
func (s *Supply) Create(ctx context.Context, req models.SlotRequest) (*models.Slot, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid slot: %w", err)
	}
	if models.HHMM(req.EndTime) <= models.HHMM(req.StartTime) {
		return nil, ErrInvalidRange
	}

	slot, err := s.api.CreateSlot(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.Info("slot created",
		zap.Int64("slot_id", slot.ID), zap.Int64("doctor_id", slot.DoctorID),
		zap.String("date", slot.SlotDate), zap.String("start", slot.StartTime))
	return slot, nil
}

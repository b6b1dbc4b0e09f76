// Package services orchestrates records and reports across the session
// guard, SQLite and AMQP.
package services

import (
	"context"
	"fmt"

	"despesas/internal/amqp"
	"despesas/internal/core"
	applog "despesas/internal/log"
	"despesas/internal/session"
	"despesas/internal/storage"
)

// RecordService guards and persists expense records. Every operation
// requires a live session for the user.
type RecordService struct {
	storage    *storage.Repository
	guard      *session.Guard
	amqpClient *amqp.Client
	log        *applog.Logger

	// onChange is called after any mutation, for cache invalidation.
	onChange func(userID string)
}

func NewRecordService(storage *storage.Repository, guard *session.Guard, amqpClient *amqp.Client) *RecordService {
	return &RecordService{
		storage:    storage,
		guard:      guard,
		amqpClient: amqpClient,
		log:        applog.ForComponent(applog.ComponentRecord),
	}
}

// OnChange registers a callback invoked after create, status change and
// delete with the owning user's id.
func (s *RecordService) OnChange(fn func(userID string)) {
	s.onChange = fn
}

// Create validates and saves a record, then publishes a notification.
// A publish failure does not fail the request; the record is stored.
func (s *RecordService) Create(ctx context.Context, userID string, rec core.Record) (int64, error) {
	if err := s.guard.Require(ctx, userID); err != nil {
		return 0, err
	}

	rec.UserID = userID
	rec.Status = core.NormalizeStatus(rec.Status)
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.CreateRecord(ctx, rec)
	if err != nil {
		return 0, fmt.Errorf("save record: %w", err)
	}

	s.notifyChange(userID)

	if s.amqpClient != nil {
		msg := amqp.RecordCreatedMessage{ID: id, UserID: userID}
		if err := s.amqpClient.PublishRecordCreated(ctx, msg); err != nil {
			s.log.ErrorContext(ctx, "Failed to publish record created message",
				"id", id, "error", err)
		}
	}

	return id, nil
}

// Get returns one of the user's records.
func (s *RecordService) Get(ctx context.Context, userID string, id int64) (*core.Record, error) {
	if err := s.guard.Require(ctx, userID); err != nil {
		return nil, err
	}
	return s.storage.GetRecord(ctx, userID, id)
}

// List returns the user's records, optionally for one property.
func (s *RecordService) List(ctx context.Context, userID, property string) ([]core.Record, error) {
	if err := s.guard.Require(ctx, userID); err != nil {
		return nil, err
	}
	return s.storage.ListRecords(ctx, userID, property)
}

// SetStatus flips a record between paid and unpaid.
func (s *RecordService) SetStatus(ctx context.Context, userID string, id int64, status core.Status) error {
	if err := s.guard.Require(ctx, userID); err != nil {
		return err
	}
	if !status.Valid() {
		return core.ErrInvalidStatus
	}

	if err := s.storage.UpdateRecordStatus(ctx, userID, id, status); err != nil {
		return err
	}

	s.notifyChange(userID)
	return nil
}

// Delete removes a record and its amounts.
func (s *RecordService) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.guard.Require(ctx, userID); err != nil {
		return err
	}

	if err := s.storage.DeleteRecord(ctx, userID, id); err != nil {
		return err
	}

	s.notifyChange(userID)
	return nil
}

func (s *RecordService) notifyChange(userID string) {
	if s.onChange != nil {
		s.onChange(userID)
	}
}

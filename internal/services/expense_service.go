package services

import (
	"context"
	"errors"
	"fmt"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// EventPublisher receives an event after each committed mutation.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, event amqp.ExpenseEvent) error
	Close() error
}

// ExpenseService orchestrates expense operations across the record store and AMQP
type ExpenseService struct {
	store     storage.Store
	publisher EventPublisher
	logger    *log.StructuredLogger
}

// NewExpenseService wires a store and an optional publisher. A nil
// publisher disables change notifications.
func NewExpenseService(store storage.Store, publisher EventPublisher, logger *log.Logger) *ExpenseService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExpenseService{
		store:     store,
		publisher: publisher,
		logger:    log.NewStructuredLogger(logger),
	}
}

// List returns every record. An empty store is core.ErrNotFound.
func (s *ExpenseService) List(ctx context.Context) ([]core.Expense, error) {
	expenses, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	if len(expenses) == 0 {
		return nil, fmt.Errorf("no expenses recorded: %w", core.ErrNotFound)
	}
	return expenses, nil
}

// All returns every record, possibly none.
func (s *ExpenseService) All(ctx context.Context) ([]core.Expense, error) {
	expenses, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// Get returns the record with id or core.ErrNotFound.
func (s *ExpenseService) Get(ctx context.Context, id int64) (core.Expense, error) {
	e, found, err := s.store.Get(ctx, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	if !found {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	return e, nil
}

// Create saves a new expense and publishes a created event.
func (s *ExpenseService) Create(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	e, err := s.store.Create(ctx, in)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.logger.LogExpenseChange(ctx, log.OpCreate, e.ID, e.Title, e.Amount.Cents)
	s.publish(ctx, amqp.ActionCreated, e.ID)
	return e, nil
}

// Update overwrites the mutable fields of an existing expense.
func (s *ExpenseService) Update(ctx context.Context, id int64, in core.ExpenseInput) (core.Expense, error) {
	e, err := s.store.Update(ctx, id, in)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", id, err)
	}

	s.logger.LogExpenseChange(ctx, log.OpUpdate, e.ID, e.Title, e.Amount.Cents)
	s.publish(ctx, amqp.ActionUpdated, e.ID)
	return e, nil
}

// Delete removes an expense permanently.
func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}

	s.logger.LogExpenseChange(ctx, log.OpDelete, id, "", 0)
	s.publish(ctx, amqp.ActionDeleted, id)
	return nil
}

// Ready reports whether the record store is reachable.
func (s *ExpenseService) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// publish runs after the mutation committed, so a failure is logged and
// never returned to the caller.
func (s *ExpenseService) publish(ctx context.Context, action amqp.Action, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, amqp.NewExpenseEvent(action, id)); err != nil {
		s.logger.LogError(ctx, "Failed to publish expense event", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithErrorType(log.ErrorTypeNetwork))
	}
}

// Close closes both storage and AMQP connections
func (s *ExpenseService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %w", errors.Join(errs...))
	}

	return nil
}

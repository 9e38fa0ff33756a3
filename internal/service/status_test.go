package service

import (
	"errors"
	"testing"

	"minimall-backend/internal/models"
)

func TestValidateTransition_ForwardPath(t *testing.T) {
	steps := []struct {
		from, to models.OrderStatus
	}{
		{models.OrderStatusPending, models.OrderStatusProcessing},
		{models.OrderStatusProcessing, models.OrderStatusShipped},
		{models.OrderStatusShipped, models.OrderStatusDelivered},
	}
	for _, s := range steps {
		if err := ValidateTransition(s.from, s.to); err != nil {
			t.Errorf("%s -> %s: %v", s.from, s.to, err)
		}
	}
}

func TestValidateTransition_NoSkipping(t *testing.T) {
	var invErr *InvalidTransitionError

	err := ValidateTransition(models.OrderStatusPending, models.OrderStatusDelivered)
	if !errors.As(err, &invErr) {
		t.Errorf("pending -> delivered: err = %v, want InvalidTransitionError", err)
	}

	err = ValidateTransition(models.OrderStatusPending, models.OrderStatusShipped)
	if !errors.As(err, &invErr) {
		t.Errorf("pending -> shipped: err = %v, want InvalidTransitionError", err)
	}
}

func TestValidateTransition_CancelWindow(t *testing.T) {
	if err := ValidateTransition(models.OrderStatusPending, models.OrderStatusCancelled); err != nil {
		t.Errorf("pending -> cancelled: %v", err)
	}
	if err := ValidateTransition(models.OrderStatusProcessing, models.OrderStatusCancelled); err != nil {
		t.Errorf("processing -> cancelled: %v", err)
	}

	var invErr *InvalidTransitionError
	err := ValidateTransition(models.OrderStatusShipped, models.OrderStatusCancelled)
	if !errors.As(err, &invErr) {
		t.Errorf("shipped -> cancelled: err = %v, want InvalidTransitionError", err)
	}
}

func TestValidateTransition_TerminalStates(t *testing.T) {
	var termErr *TerminalStateError

	err := ValidateTransition(models.OrderStatusDelivered, models.OrderStatusCancelled)
	if !errors.As(err, &termErr) {
		t.Errorf("delivered -> cancelled: err = %v, want TerminalStateError", err)
	}

	err = ValidateTransition(models.OrderStatusCancelled, models.OrderStatusPending)
	if !errors.As(err, &termErr) {
		t.Errorf("cancelled -> pending: err = %v, want TerminalStateError", err)
	}
}

func TestValidateTransition_SameStatusNoOp(t *testing.T) {
	for _, s := range []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
	} {
		if err := ValidateTransition(s, s); err != nil {
			t.Errorf("%s -> %s: %v, want nil", s, s, err)
		}
	}

	// в конечных статусах no-op запрещён: повтор отмены не должен
	// второй раз вернуть остатки на склад
	var termErr *TerminalStateError
	for _, s := range []models.OrderStatus{
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
	} {
		err := ValidateTransition(s, s)
		if !errors.As(err, &termErr) {
			t.Errorf("%s -> %s: err = %v, want TerminalStateError", s, s, err)
		}
	}
}

func TestValidateTransition_UnknownStatus(t *testing.T) {
	if err := ValidateTransition(models.OrderStatusPending, models.OrderStatus("archived")); !errors.Is(err, ErrInvalidOrderStatus) {
		t.Errorf("unknown target: err = %v, want ErrInvalidOrderStatus", err)
	}
	if err := ValidateTransition(models.OrderStatus(""), models.OrderStatusPending); !errors.Is(err, ErrInvalidOrderStatus) {
		t.Errorf("unknown source: err = %v, want ErrInvalidOrderStatus", err)
	}
}

func TestIsCancellable(t *testing.T) {
	want := map[models.OrderStatus]bool{
		models.OrderStatusPending:    true,
		models.OrderStatusProcessing: true,
		models.OrderStatusShipped:    false,
		models.OrderStatusDelivered:  false,
		models.OrderStatusCancelled:  false,
	}
	for s, expect := range want {
		if got := IsCancellable(s); got != expect {
			t.Errorf("IsCancellable(%s) = %v, want %v", s, got, expect)
		}
	}
}

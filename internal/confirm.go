package internal

import "context"

// Confirmer asks whoever triggered a destructive operation to confirm it.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Confirmed answers yes to every prompt.
var Confirmed Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })

const DeletePrompt = "¿Eliminar?"

var ErrDeletionNotConfirmed = NewPreconditionError("Eliminación no confirmada", ErrCodeConfirmationRequired)

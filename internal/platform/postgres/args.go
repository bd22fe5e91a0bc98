package postgres

import (
	"time"

	"github.com/google/uuid"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func intArg(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func uuidArg(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

func timeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

package repository

import (
	"errors"

	"github.com/okian/hireflow/internal/domain/model"
)

// Sentinel kinds for session store errors. ErrNotFound also matches
// model.ErrNotFound.
var (
	ErrNotFound  = model.NewKind("session candidate", model.ErrNotFound)
	ErrInvalidID = errors.New("candidate id must not be empty")
	ErrStore     = errors.New("session store failure")
)

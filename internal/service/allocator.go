package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// LocalNumberAllocator issues application references locally. Deployments
// integrated with the central numbering authority replace this with a
// client for that authority.
type LocalNumberAllocator struct{}

// NewLocalNumberAllocator returns a new LocalNumberAllocator.
func NewLocalNumberAllocator() *LocalNumberAllocator {
	return &LocalNumberAllocator{}
}

// Allocate returns a new reference in the XXXXXX-XXXXXX-XXXXXX form.
func (a *LocalNumberAllocator) Allocate(_ context.Context) (string, error) {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[0:6] + "-" + raw[6:12] + "-" + raw[12:18], nil
}

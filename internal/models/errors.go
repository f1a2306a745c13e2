package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced user, group or area id does not
// exist. Repositories translate gorm.ErrRecordNotFound into it so services
// never depend on the persistence library's sentinel.
var ErrNotFound = errors.New("record not found")

// ErrInvalidState is returned when a user has no auto-subscription setting or
// the setting violates the boolean mutual-exclusion rule. Never repaired
// silently.
var ErrInvalidState = errors.New("invalid state")

// PartialTagResolutionError reports a tag-id list that did not fully resolve
// to known tags. The whole update carrying the list is rejected.
type PartialTagResolutionError struct {
	Requested int
	Resolved  int
}

func (e *PartialTagResolutionError) Error() string {
	return fmt.Sprintf("only %d of %d submitted tags exist", e.Resolved, e.Requested)
}

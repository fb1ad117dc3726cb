package part

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingTypeID: the document has no type discriminator.
	ErrMissingTypeID = errors.New("part type id missing")

	// ErrUnknownPartType: the type discriminator is not registered. This is a
	// configuration or data-integrity fault rather than bad user input.
	ErrUnknownPartType = errors.New("unknown part type")

	// ErrMalformedPart: the document does not match its type's shape.
	ErrMalformedPart = errors.New("malformed part")
)

// MalformedPartError carries the type and role being decoded along with the
// underlying decode failure. errors.Is(err, ErrMalformedPart) holds for it.
type MalformedPartError struct {
	TypeID string
	RoleID string
	Err    error
}

func (e *MalformedPartError) Error() string {
	if e.RoleID != "" {
		return fmt.Sprintf("malformed part %s (role %s): %v", e.TypeID, e.RoleID, e.Err)
	}
	return fmt.Sprintf("malformed part %s: %v", e.TypeID, e.Err)
}

func (e *MalformedPartError) Unwrap() error { return e.Err }

func (e *MalformedPartError) Is(target error) bool { return target == ErrMalformedPart }

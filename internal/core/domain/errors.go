package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinels matched with errors.Is by callers and the HTTP error handler.
var (
	ErrEntityInvalid     = errors.New("entity invalid")
	ErrTitleExists       = errors.New("title exists")
	ErrBusinessKeyExists = errors.New("business key exists")
	ErrEntityNotFound    = errors.New("entity not found")
	ErrVersionMissing    = errors.New("version missing")
	ErrVersionMalformed  = errors.New("version malformed")
	ErrVersionStale      = errors.New("version outdated")
	ErrDuplicateKey      = errors.New("duplicate key")

	ErrAuthorizationHeaderMissing = errors.New("authorization header missing")
	ErrTokenExpired               = errors.New("token expired")
	ErrTokenMalformed             = errors.New("token malformed")
	ErrTokenInvalid               = errors.New("token invalid")
	ErrForbidden                  = errors.New("access forbidden")
	ErrInvalidCredentials         = errors.New("invalid credentials")
	ErrUserNotFound               = errors.New("user not found")

	ErrFileNotFound  = errors.New("file not found")
	ErrMultipleFiles = errors.New("multiple files stored for entity")
)

// FieldErrors maps a payload field name to a human readable violation.
type FieldErrors map[string]string

// ValidationError carries every field violation found in a payload.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "entity invalid: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrEntityInvalid }

// TitleConflictError reports a title already used by the entity with ExistingID.
type TitleConflictError struct {
	Title      string
	ExistingID string
}

func (e *TitleConflictError) Error() string {
	return fmt.Sprintf("title %q already exists at id %s", e.Title, e.ExistingID)
}

func (e *TitleConflictError) Is(target error) bool { return target == ErrTitleExists }

// BusinessKeyConflictError reports a business key (ISBN, production number)
// already used by the entity with ExistingID.
type BusinessKeyConflictError struct {
	Field      string
	Value      string
	ExistingID string
}

func (e *BusinessKeyConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists at id %s", e.Field, e.Value, e.ExistingID)
}

func (e *BusinessKeyConflictError) Is(target error) bool { return target == ErrBusinessKeyExists }

// NotFoundError names the kind and id that could not be found.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrEntityNotFound }

// VersionError describes a rejected revision token. Kind is one of
// ErrVersionMissing, ErrVersionMalformed or ErrVersionStale.
type VersionError struct {
	Kind     error
	Token    string
	Current  int
	Provided int
}

func (e *VersionError) Error() string {
	switch e.Kind {
	case ErrVersionMissing:
		return "revision token missing"
	case ErrVersionMalformed:
		return fmt.Sprintf("revision token %q is malformed", e.Token)
	case ErrVersionStale:
		return fmt.Sprintf("revision %d is outdated, current revision is %d", e.Provided, e.Current)
	default:
		return "revision rejected"
	}
}

func (e *VersionError) Is(target error) bool { return target == e.Kind }

// TokenExpiredError keeps the verifier message so it can be echoed in the
// WWW-Authenticate challenge.
type TokenExpiredError struct {
	Message string
}

func (e *TokenExpiredError) Error() string { return e.Message }

func (e *TokenExpiredError) Is(target error) bool { return target == ErrTokenExpired }

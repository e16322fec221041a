package document

import (
	"fmt"

	"envkey/internal/cryptostore"
)

// ParseError reports that the document file is not valid YAML, or its
// shape does not match the schema.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) ExitCode() cryptostore.ExitCode { return cryptostore.ExitDocumentError }

// InvariantError reports a failed invariant check (I1-I6).
type InvariantError struct {
	Which string
	Msg   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant %s violated: %s", e.Which, e.Msg)
}

func (e *InvariantError) ExitCode() cryptostore.ExitCode { return cryptostore.ExitDocumentError }

// NameInUseError reports a duplicate member name or pubkey on member add.
type NameInUseError struct {
	Kind string // "name" or "pubkey"
	Name string
}

func (e *NameInUseError) Error() string {
	return fmt.Sprintf("%s %q already in use", e.Kind, e.Name)
}

func (e *NameInUseError) ExitCode() cryptostore.ExitCode { return cryptostore.ExitOperationError }

// LastAdminError reports an attempt to remove or demote the sole admin.
type LastAdminError struct {
	Name string
}

func (e *LastAdminError) Error() string {
	return fmt.Sprintf("%q is the last admin; the document must always have at least one", e.Name)
}

func (e *LastAdminError) ExitCode() cryptostore.ExitCode { return cryptostore.ExitOperationError }

// NotFoundError reports a missing secret entry.
type NotFoundError struct {
	Env string
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s/%s: not found", e.Env, e.Key)
}

func (e *NotFoundError) ExitCode() cryptostore.ExitCode { return cryptostore.ExitOperationError }

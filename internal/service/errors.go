package service

import (
	"errors"
	"fmt"
)

var (
	ErrFetch    = errors.New("fetch failed")
	ErrWrite    = errors.New("write rejected")
	ErrNotFound = errors.New("task not found")

	ErrSignedOut     = errors.New("no signed-in user")
	ErrOwnerMismatch = errors.New("draft owner differs from current user")
	ErrEmptyPatch    = errors.New("empty patch")

	ErrConcurrentChange = errors.New("collection changed during fetch")
)

// FetchError - не удалось получить список задач (сеть, авторизация).
type FetchError struct {
	OwnerID string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch tasks of %q: %v", e.OwnerID, e.Err)
}

func (e *FetchError) Unwrap() []error { return []error{ErrFetch, e.Err} }

// WriteError - хранилище отклонило create/update/delete.
type WriteError struct {
	Op  string
	ID  string
	Err error
}

func (e *WriteError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s task: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s task %s: %v", e.Op, e.ID, e.Err)
}

func (e *WriteError) Unwrap() []error { return []error{ErrWrite, e.Err} }

// NotFoundError - задачи с таким id у владельца нет. Значит локальное состояние устарело.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

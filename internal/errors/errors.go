// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// ErrNotFound is a sentinel error for a missing campaign, recipient or group.
type ErrNotFound struct {
	Resource string
	Key      any
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.Key)
}

func NewCampaignNotFound(id int) error {
	return &ErrNotFound{Resource: "campaign", Key: id}
}

func NewRecipientNotFound(email string) error {
	return &ErrNotFound{Resource: "recipient", Key: email}
}

func NewGroupNotFound(id int) error {
	return &ErrNotFound{Resource: "group", Key: id}
}

func IsNotFound(err error) bool {
	var nf *ErrNotFound
	return errors.As(err, &nf)
}

// ErrInvalidStateTransition is returned when a dispatch is attempted on a
// campaign whose status does not permit sending.
type ErrInvalidStateTransition struct {
	CampaignID int
	Status     string
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("campaign %d cannot be dispatched in status %q", e.CampaignID, e.Status)
}

func NewInvalidStateTransition(campaignID int, status string) error {
	return &ErrInvalidStateTransition{CampaignID: campaignID, Status: status}
}

func IsInvalidStateTransition(err error) bool {
	var ist *ErrInvalidStateTransition
	return errors.As(err, &ist)
}

// SendFailure records one recipient whose send failed during a dispatch run.
type SendFailure struct {
	Email  string
	Reason string
}

// ErrSendFailed aggregates per-recipient failures; the dispatch job raises it
// once after the whole run instead of erroring per recipient.
type ErrSendFailed struct {
	CampaignID int
	Failures   []SendFailure
}

func (e *ErrSendFailed) Error() string {
	return fmt.Sprintf("campaign %d: %d recipient(s) failed to send", e.CampaignID, len(e.Failures))
}

func IsSendFailed(err error) bool {
	var sf *ErrSendFailed
	return errors.As(err, &sf)
}

// ErrTransientStore wraps a persistence failure that should be retried by the
// queue's redelivery mechanism rather than treated as fatal.
type ErrTransientStore struct {
	Op  string
	Err error
}

func (e *ErrTransientStore) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e *ErrTransientStore) Unwrap() error { return e.Err }

func NewTransientStore(op string, err error) error {
	return &ErrTransientStore{Op: op, Err: err}
}

func IsTransient(err error) bool {
	var ts *ErrTransientStore
	return errors.As(err, &ts)
}

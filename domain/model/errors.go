package model

import "errors"

var (
	ErrProviderNotFound = errors.New("provider not found")
	ErrProviderInvalid  = errors.New("provider invalid")
)

var (
	ErrOperationNotFound = errors.New("operation not found")
	ErrOperationInvalid  = errors.New("operation invalid")
)

var (
	ErrUnknownProviderKind   = errors.New("unknown provider kind")
	ErrCapabilityUnsupported = errors.New("capability not supported by provider")
)

package mongoes

import (
	"errors"

	"github.com/digitalbridge/mongoes/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound      = domain.ErrNotFound
	ErrUnknownEntity = domain.ErrUnknownEntity
	ErrInvalidInput  = domain.ErrInvalidInput
	ErrFormat        = domain.ErrFormat
	ErrTransport     = domain.ErrTransport
	ErrServer        = domain.ErrServer
)

// ErrSearchDisabled is returned by search operations when the client was
// built without WithElasticsearch.
var ErrSearchDisabled = errors.New("mongoes: search is not configured (use WithElasticsearch)")

package funnelwire

import (
	"fmt"

	"github.com/funnelwire/funnelwire-go/record"
	"github.com/funnelwire/funnelwire-go/response"
)

// The error taxonomy, re-exported here so callers only import one package.
// Partial per-action failure inside a successful batch is data, not an
// error; inspect the returned results instead.
type (
	ValidationError       = record.ValidationError
	BadResponseError      = response.BadResponseError
	ResourceNotFoundError = response.ResourceNotFoundError
)

// ConfigurationError means an action was attempted under the wrong
// developer-mode setting. Raised before any transport call.
type ConfigurationError struct {
	Action        string
	DeveloperMode bool
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("action %s is not allowed with developer_mode = %t", e.Action, e.DeveloperMode)
}

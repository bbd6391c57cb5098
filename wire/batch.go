package wire

// DefaultActionsPerRequest caps how many actions ride in one physical
// request. The real limit is a service-side protocol constant, so it stays
// configurable.
const DefaultActionsPerRequest = 50

// Batch is one page of actions, sent in a single request.
type Batch []Action

type BatchOptions struct {
	// ActionsPerRequest overrides DefaultActionsPerRequest when positive.
	ActionsPerRequest int

	// AllowOffline marks track actions as eligible for session-less
	// delivery. Applies to the whole batch, not per record.
	AllowOffline bool

	// ForceAnomalousOverride marks every action to bypass the service's
	// anomaly detection.
	ForceAnomalousOverride bool
}

// Build chunks actions into pages, preserving relative order within and
// across pages, and applies the batch flags in place.
func Build(actions []Action, opts BatchOptions) []Batch {
	if opts.AllowOffline || opts.ForceAnomalousOverride {
		for _, a := range actions {
			applyFlags(a, opts)
		}
	}

	limit := opts.ActionsPerRequest
	if limit <= 0 {
		limit = DefaultActionsPerRequest
	}

	var batches []Batch
	for len(actions) > 0 {
		n := limit
		if n > len(actions) {
			n = len(actions)
		}
		batches = append(batches, Batch(actions[:n]))
		actions = actions[n:]
	}
	return batches
}

func applyFlags(a Action, opts BatchOptions) {
	switch x := a.(type) {
	case *TrackAction:
		if opts.AllowOffline {
			x.AllowOffline = true
		}
		if opts.ForceAnomalousOverride {
			x.ForceAnomalousOverride = true
		}
	case *UserAttributesAction:
		if opts.ForceAnomalousOverride {
			x.ForceAnomalousOverride = true
		}
	case *DeviceAttributesAction:
		if opts.ForceAnomalousOverride {
			x.ForceAnomalousOverride = true
		}
	}
}

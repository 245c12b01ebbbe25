package audithook

import "log/slog"

// Option configures the audit hook extension.
type Option func(*Extension)

// WithLogger sets the logger used for recorder failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extension) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEnabledActions restricts auditing to the listed actions. By default
// every action is audited.
func WithEnabledActions(actions ...string) Option {
	return func(e *Extension) {
		e.enabled = make(map[string]bool, len(actions))
		for _, a := range actions {
			e.enabled[a] = true
		}
	}
}

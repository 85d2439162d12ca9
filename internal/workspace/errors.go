package workspace

import "fmt"

// ConfigurationError reports a target or configuration input that cannot be
// loaded: a missing path, an unsupported file type, or an unreadable
// descriptor. The CLI maps it to a configuration exit code.
type ConfigurationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

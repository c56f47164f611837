package provider

import "fmt"

// ProviderError wraps a raw upstream failure. The raw payload is preserved
// in the error string because upstream errors are not a stable typed
// contract: classification downstream works by substring inspection.
type ProviderError struct {
	Provider ID
	Op       string
	Raw      string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Op, e.Raw)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ConfigError reports a missing or invalid required identifier (credential,
// voice ID) or a provider that is enumerated but not implemented end-to-end.
type ConfigError struct {
	Provider ID
	Msg      string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Msg)
}

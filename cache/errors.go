package cache

import (
	"fmt"

	"github.com/goliatone/go-discord-cache/internal/cacheinfra"
	"github.com/jmgilman/go/errors"
)

var (
	// ErrInvalidConfig is matched by every configuration rejected by New.
	ErrInvalidConfig = errors.New(errors.CodeInvalidConfig, "invalid cache configuration")

	// ErrConfigurationMismatch means a value type was used with a key whose
	// kind is bound to a different entity type.
	ErrConfigurationMismatch = errors.New(errors.CodeInvalidConfig, "entity type does not match key kind")

	// ErrNotFound is returned by fetch functions when the remote object does
	// not exist. A cache miss is never reported through this error.
	ErrNotFound = cacheinfra.ErrNotFound

	// ErrFetchUnavailable means a miss could not fall back to a fetch because
	// no fetch function was supplied.
	ErrFetchUnavailable = errors.New(errors.CodeUnavailable, "no fetch function available")

	// ErrInvalidResultType means the fetch layer returned a value of an
	// unexpected type for the requested entity.
	ErrInvalidResultType = errors.New(errors.CodeInternal, "fetch returned unexpected type")
)

// ConfigError carries the field-level diagnosis of a rejected configuration.
// It matches ErrInvalidConfig and unwraps to the validation errors.
type ConfigError struct {
	Cause error
}

func (e *ConfigError) Error() string {
	return "invalid cache configuration: " + e.Cause.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is support for ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func configurationMismatch(kind Kind, value any) error {
	err := errors.Wrap(ErrConfigurationMismatch, errors.CodeInvalidConfig,
		fmt.Sprintf("%T cannot be cached under kind %q", value, kind))
	return errors.WithContextMap(err, map[string]interface{}{
		"kind":       string(kind),
		"value_type": fmt.Sprintf("%T", value),
	})
}

// IsNotFound reports whether err means the remote object does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.GetCode(err) == errors.CodeNotFound
}

package estimator

import (
	"errors"

	"statarb-lab/internal/domain"
)

// Factory errors
var (
	ErrUnknownMethod = errors.New("unknown estimator method")
	ErrInvalidWindow = errors.New("estimator window must be positive")
)

// FromConfig creates an Estimator from domain.EstimatorConfig. The method
// set is closed; anything else is rejected.
func FromConfig(cfg domain.EstimatorConfig) (Estimator, error) {
	if cfg.Window <= 0 {
		return nil, ErrInvalidWindow
	}

	switch cfg.Method {
	case domain.MethodOLS:
		return NewOLS(cfg.Window), nil
	case domain.MethodKalman:
		return NewKalman(cfg.Window, cfg.Delta, cfg.R), nil
	case domain.MethodRobust:
		return NewRobust(cfg.Window), nil
	default:
		return nil, ErrUnknownMethod
	}
}

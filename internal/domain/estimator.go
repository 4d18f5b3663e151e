package domain

// EstimatorMethod selects one of the hedge-ratio estimation strategies.
// The set is closed: strategies are dispatched by configuration, not
// discovered at runtime.
type EstimatorMethod string

// Estimator method constants.
const (
	MethodOLS    EstimatorMethod = "ols"
	MethodKalman EstimatorMethod = "kalman"
	MethodRobust EstimatorMethod = "robust"
)

// Kalman filter noise defaults. Delta controls how fast beta is allowed to
// drift; R is the assumed measurement noise.
const (
	DefaultKalmanDelta = 1e-4
	DefaultKalmanR     = 1e-3
)

// EstimatorConfig carries the parameters a factory needs to build an
// estimator. Window applies to the rolling strategies; Delta and R only to
// the Kalman filter (zero values fall back to the defaults).
type EstimatorConfig struct {
	Method EstimatorMethod
	Window int
	Delta  float64
	R      float64
}

// AnalyticsParams is the full parameter set of one analytics pass. Owned by
// the external configuration surface; the core only reads it.
type AnalyticsParams struct {
	SymbolX string
	SymbolY string

	Estimator EstimatorConfig

	EntryZ float64
	ExitZ  float64
}

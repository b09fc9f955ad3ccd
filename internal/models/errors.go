package models

import "fmt"

// ErrorType identifies the category of a run failure.
type ErrorType string

const (
	// Policy requested an arm outside the environment's range
	ErrInvalidArm ErrorType = "invalid_arm"

	// Environment failed to draw a reward sample
	ErrEnvironmentSampleFailed ErrorType = "environment_sample_failed"

	// Catch-all
	ErrInternalError ErrorType = "internal_error"
)

// InvalidArmError reports a pull request for an arm outside [0, K).
// It indicates a policy bug and aborts the run.
type InvalidArmError struct {
	Arm int
	K   int
}

func (e *InvalidArmError) Error() string {
	return fmt.Sprintf("invalid arm %d: expected 0 <= arm < %d", e.Arm, e.K)
}

// ConfigurationError reports an invalid experiment configuration. It is
// raised at batch start, before any run executes.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

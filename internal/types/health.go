package types

import "time"

// HealthState classifies the outcome of a connectivity probe.
type HealthState string

const (
	HealthStateHealthy   HealthState = "healthy"
	HealthStateUnhealthy HealthState = "unhealthy"
)

// HealthStatus is the result of one probe against the graph engine. The
// message carries operator-facing detail (the failure cause, or what the
// probe confirmed); CheckedAt records when the probe ran.
type HealthStatus struct {
	State     HealthState `json:"state"`
	Message   string      `json:"message,omitempty"`
	CheckedAt time.Time   `json:"checked_at"`
}

// Healthy reports a passing probe.
func Healthy(message string) HealthStatus {
	return HealthStatus{
		State:     HealthStateHealthy,
		Message:   message,
		CheckedAt: time.Now(),
	}
}

// Unhealthy reports a failing probe.
func Unhealthy(message string) HealthStatus {
	return HealthStatus{
		State:     HealthStateUnhealthy,
		Message:   message,
		CheckedAt: time.Now(),
	}
}

// IsUnhealthy reports whether the probe failed.
func (h HealthStatus) IsUnhealthy() bool {
	return h.State == HealthStateUnhealthy
}

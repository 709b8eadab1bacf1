package domain

import "log/slog"

// SecretString wraps sensitive string values such as passwords and PEM
// key material. It implements slog.LogValuer and fmt.Stringer so the value
// never reaches logs or formatted output by accident.
type SecretString string

// String returns a redacted placeholder, never the actual value.
func (s SecretString) String() string {
	return "[REDACTED]"
}

// LogValue implements slog.LogValuer.
func (s SecretString) LogValue() slog.Value {
	return slog.StringValue("[REDACTED]")
}

// GoString keeps %#v from printing the value.
func (s SecretString) GoString() string {
	return `domain.SecretString("[REDACTED]")`
}

// Expose returns the actual secret value.
// Call only at the point of use (Basic auth header, PEM decode).
func (s SecretString) Expose() string {
	return string(s)
}

// IsEmpty returns true if the secret is empty.
func (s SecretString) IsEmpty() bool {
	return len(s) == 0
}

var _ slog.LogValuer = SecretString("")

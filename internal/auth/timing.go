package auth

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// TimingConfig holds configuration for the login failure delay.
type TimingConfig struct {
	BaseDelayMs   int // fixed delay applied to failed logins
	JitterDelayMs int // upper bound of the random component
}

// TimingDelay pads failed login responses so that "unknown username" and
// "wrong password" take a similar amount of time, keeping timing from
// becoming an enumeration channel.
type TimingDelay struct {
	config TimingConfig
}

// NewTimingDelay creates a TimingDelay with the given configuration.
func NewTimingDelay(config TimingConfig) *TimingDelay {
	return &TimingDelay{config: config}
}

// Wait sleeps for the configured base delay plus random jitter. Call only on
// failure paths; successful logins return immediately.
func (td *TimingDelay) Wait() {
	delay := time.Duration(td.config.BaseDelayMs) * time.Millisecond
	if td.config.JitterDelayMs > 0 {
		if jitter, err := cryptoRandIntn(td.config.JitterDelayMs); err == nil {
			delay += time.Duration(jitter) * time.Millisecond
		}
	}
	if delay > 0 {
		time.Sleep(delay)
	}
}

// cryptoRandIntn returns a random number in [0, max) from crypto/rand.
// math/rand would be observable enough to subtract out.
func cryptoRandIntn(max int) (int, error) {
	if max <= 0 {
		return 0, nil
	}

	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return 0, err
	}

	return int(binary.BigEndian.Uint64(randomBytes) % uint64(max)), nil
}

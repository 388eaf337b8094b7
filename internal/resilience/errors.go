package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// retryClassifier is implemented by structured errors that know whether
// they are worth retrying, such as result.Failure.
type retryClassifier interface {
	Retryable() bool
}

// transportPatterns match wrapped transport errors that lost their type.
var transportPatterns = []string{
	"connection reset by peer",
	"broken pipe",
	"tls handshake timeout",
	"i/o timeout",
	"server closed idle connection",
}

// IsTransient reports whether err is worth another attempt. Errors that
// classify themselves decide; otherwise network timeouts and dropped
// connections count as transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var rc retryClassifier
	if errors.As(err, &rc) {
		return rc.Retryable()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transportPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

package sink

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of sink failure
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error (host unreachable, reset, etc.)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the device did not answer in time
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the bridge refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
	// ErrTypeProtocol indicates a malformed or unexpected reply
	ErrTypeProtocol
	// ErrTypeRejected indicates the device answered but refused the content
	ErrTypeRejected
	// ErrTypeClosed indicates a write on a closed sink
	ErrTypeClosed
	// ErrTypeDevice indicates the device port could not be opened or configured
	ErrTypeDevice
	// ErrTypeUnknown indicates an unknown or unexpected error
	ErrTypeUnknown
)

// NetworkErrorSubtype provides more specific network error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeProtocol:
		return "Protocol Error"
	case ErrTypeRejected:
		return "Rejected"
	case ErrTypeClosed:
		return "Sink Closed"
	case ErrTypeDevice:
		return "Device Error"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error represents a failure while writing to a display device
type Error struct {
	Type           ErrorType           // Category of error
	Message        string              // Human-readable error message
	Device         string              // Device name or address (for context)
	Status         string              // Device-reported status, if any
	Err            error               // Underlying error (if any)
	NetworkSubtype NetworkErrorSubtype // More specific network error type
	Retryable      bool                // Whether a later attempt could succeed
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes an error and returns a more specific error type
func ClassifyNetworkError(err error, device string) *Error {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &Error{
			Type:           ErrTypeTimeout,
			Message:        "Device did not answer in time",
			Device:         device,
			Err:            err,
			NetworkSubtype: NetworkErrorTimeout,
			Retryable:      true,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{
			Type:           ErrTypeDNS,
			Message:        fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Device:         device,
			Err:            err,
			NetworkSubtype: NetworkErrorDNS,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return &Error{
				Type:           ErrTypeConnectionRefused,
				Message:        "Bridge refused connection",
				Device:         device,
				Err:            err,
				NetworkSubtype: NetworkErrorConnectionRefused,
				Retryable:      true,
			}
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return &Error{
				Type:           ErrTypeNetwork,
				Message:        "Host unreachable",
				Device:         device,
				Err:            err,
				NetworkSubtype: NetworkErrorHostUnreachable,
				Retryable:      true,
			}
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return &Error{
				Type:           ErrTypeNetwork,
				Message:        "Network unreachable",
				Device:         device,
				Err:            err,
				NetworkSubtype: NetworkErrorNetworkUnreachable,
				Retryable:      true,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ClassifyNetworkError(urlErr.Err, device)
	}

	return &Error{
		Type:           ErrTypeNetwork,
		Message:        "Network error occurred",
		Device:         device,
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
		Retryable:      true,
	}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(device, message string, err error) *Error {
	classified := ClassifyNetworkError(err, device)
	if classified != nil {
		classified.Message = message
		return classified
	}
	return &Error{
		Type:      ErrTypeNetwork,
		Message:   message,
		Device:    device,
		Retryable: true,
	}
}

// NewProtocolError creates an error for a malformed device reply
func NewProtocolError(device, message string, err error) *Error {
	return &Error{
		Type:    ErrTypeProtocol,
		Message: message,
		Device:  device,
		Err:     err,
	}
}

// NewRejectedError creates an error for content the device refused.
// A busy device is retryable; any other refusal is not.
func NewRejectedError(device, status, detail string) *Error {
	msg := fmt.Sprintf("device answered %q", status)
	if detail != "" {
		msg += ": " + detail
	}
	return &Error{
		Type:      ErrTypeRejected,
		Message:   msg,
		Device:    device,
		Status:    status,
		Retryable: status == "busy",
	}
}

// NewDeviceError creates an error for a port that could not be opened
func NewDeviceError(device, message string, err error) *Error {
	return &Error{
		Type:    ErrTypeDevice,
		Message: message,
		Device:  device,
		Err:     err,
	}
}

// ErrClosed is returned by writes on a closed sink
var ErrClosed = &Error{Type: ErrTypeClosed, Message: "sink is closed"}

// IsNetworkError checks if an error is a network error (including timeout, connection refused, DNS)
func IsNetworkError(err error) bool {
	var sinkErr *Error
	if errors.As(err, &sinkErr) {
		return sinkErr.Type == ErrTypeNetwork ||
			sinkErr.Type == ErrTypeTimeout ||
			sinkErr.Type == ErrTypeConnectionRefused ||
			sinkErr.Type == ErrTypeDNS
	}
	return false
}

// IsRejected checks if the device refused the content
func IsRejected(err error) bool {
	var sinkErr *Error
	return errors.As(err, &sinkErr) && sinkErr.Type == ErrTypeRejected
}

// IsRetryable checks if an error could succeed on a later attempt.
// The dispatcher never retries; this informs the caller only.
func IsRetryable(err error) bool {
	var sinkErr *Error
	if errors.As(err, &sinkErr) {
		return sinkErr.Retryable
	}
	return false
}

// TroubleshootingHint returns user-friendly troubleshooting advice for an error
func TroubleshootingHint(err error) string {
	var sinkErr *Error
	if !errors.As(err, &sinkErr) {
		return "An unexpected error occurred. Please try again."
	}

	switch sinkErr.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The display did not answer in time.",
			"Troubleshooting:",
			"  • Check that the badge is powered on and connected",
			"  • Try increasing the timeout (--timeout or LEDBADGE_TIMEOUT)",
			"  • Long programs take longer to upload; try fewer messages",
		}, "\n")

	case ErrTypeConnectionRefused:
		return strings.Join([]string{
			"The display bridge refused the connection.",
			"Troubleshooting:",
			"  • Check that the bridge service is running",
			"  • Verify the address and port in the device profile",
			"  • Run 'ledbadge devices' to discover bridges on the network",
		}, "\n")

	case ErrTypeDNS:
		return strings.Join([]string{
			"Could not resolve the bridge hostname.",
			"Troubleshooting:",
			"  • Use the IP address instead of hostname",
			"  • Verify you're on the same network as the bridge",
		}, "\n")

	case ErrTypeNetwork:
		hint := []string{"Network communication failed."}
		switch sinkErr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			hint = append(hint, "The bridge is not reachable on the network.",
				"Troubleshooting:",
				"  • Verify the bridge address is correct",
				"  • Try pinging the bridge: ping "+sinkErr.Device)
		case NetworkErrorNetworkUnreachable:
			hint = append(hint, "Your computer cannot reach the bridge's network.",
				"Troubleshooting:",
				"  • Check your network adapter settings")
		default:
			hint = append(hint, "Troubleshooting:",
				"  • Check your network connection",
				"  • Verify the bridge is powered on")
		}
		return strings.Join(hint, "\n")

	case ErrTypeRejected:
		if sinkErr.Retryable {
			return "The display is busy rendering the previous program. Try again shortly."
		}
		return "The display refused the content. Check the text fits the device and uses supported characters."

	case ErrTypeProtocol:
		return strings.Join([]string{
			"The display sent an unexpected reply.",
			"Troubleshooting:",
			"  • Check the serial baud rate in the device profile",
			"  • Reconnect the badge and try again",
		}, "\n")

	case ErrTypeDevice:
		return strings.Join([]string{
			"The display port could not be opened.",
			"Troubleshooting:",
			"  • Check the device path (ls /dev/tty*)",
			"  • Make sure your user can access serial ports (dialout group)",
			"  • Close other programs using the port",
		}, "\n")

	case ErrTypeClosed:
		return "The sink was already closed. This is a bug in the caller."

	default:
		return "An error occurred. Please check the error message for details."
	}
}

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	var sinkErr *Error
	if !errors.As(err, &sinkErr) {
		return err.Error()
	}

	switch sinkErr.Type {
	case ErrTypeTimeout:
		return "Display not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Bridge refused connection"
	case ErrTypeDNS:
		return "Cannot resolve bridge hostname"
	case ErrTypeNetwork:
		switch sinkErr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			return "Bridge unreachable - check network connection"
		case NetworkErrorNetworkUnreachable:
			return "Network unreachable"
		default:
			return "Network error - check connection"
		}
	case ErrTypeRejected:
		return "Display rejected the message: " + sinkErr.Message
	case ErrTypeProtocol:
		return "Unexpected reply from display"
	case ErrTypeDevice:
		return "Cannot open display port"
	default:
		return sinkErr.Message
	}
}

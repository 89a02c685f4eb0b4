package apierr

import "net/http"

// Policy controls how statuses are sanitized before a response is written.
type Policy struct {
	// MaskGateway sends 500 on the wire for 502, 503 and 504. The body keeps
	// the original status.
	MaskGateway bool
	// StrictValidationStatus forces validation statuses missing from the
	// status table to 500 instead of passing them through.
	StrictValidationStatus bool
}

// DefaultPolicy masks gateway statuses and passes unmapped validation
// statuses through.
func DefaultPolicy() Policy {
	return Policy{MaskGateway: true}
}

// BodyStatus returns the status emitted in the JSON body.
func (p Policy) BodyStatus(status int) int {
	if status < 400 || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}

// WireStatus returns the status sent on the HTTP status line.
func (p Policy) WireStatus(status int) int {
	status = p.BodyStatus(status)
	if p.MaskGateway && isGateway(status) {
		return http.StatusInternalServerError
	}
	return status
}

func isGateway(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

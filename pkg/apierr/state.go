package apierr

// State is the per-request slot for an override response.
//
// Upstream code stores a fully built response with SetOverride; the
// normalizer consumes it with TakeOverride, which also clears the slot so the
// override cannot leak into a later error on the same request.
type State struct {
	Override *ErrorResponse
}

// SetOverride stores resp as the response for the next error.
func (s *State) SetOverride(resp *ErrorResponse) {
	if s == nil {
		return
	}
	s.Override = resp
}

// TakeOverride returns the stored override and clears the slot.
func (s *State) TakeOverride() *ErrorResponse {
	if s == nil {
		return nil
	}
	o := s.Override
	s.Override = nil
	return o
}

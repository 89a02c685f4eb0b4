package apierr

import "net/http"

// Normalizer converts raw errors into ErrorResponse values.
// It holds no per-request state and is safe for concurrent use.
type Normalizer struct {
	policy Policy
}

// NewNormalizer creates a Normalizer applying the given policy.
func NewNormalizer(p Policy) *Normalizer {
	return &Normalizer{policy: p}
}

// Policy returns the status policy of n.
func (n *Normalizer) Policy() Policy { return n.policy }

// Normalize classifies raw and builds the response body.
//
// It returns false when raw is not actionable; the override in state is left
// untouched in that case. Otherwise an override stored in state wins over
// classification and is cleared. The returned body status lies in [400, 599].
func (n *Normalizer) Normalize(state *State, raw any) (*ErrorResponse, bool) {
	v := Classify(raw)
	if v == nil {
		return nil, false
	}

	var resp *ErrorResponse
	if o := state.TakeOverride(); o != nil {
		resp = o.clone()
	} else {
		resp = n.resolve(v)
	}
	resp.Success = false
	resp.Status = n.policy.BodyStatus(resp.Status)
	return resp, true
}

// WireStatus returns the HTTP status line value for resp.
func (n *Normalizer) WireStatus(resp *ErrorResponse) int {
	return n.policy.WireStatus(resp.Status)
}

func (n *Normalizer) resolve(v Variant) *ErrorResponse {
	switch v := v.(type) {
	case *ErrorResponse:
		return fromResponse(v)
	case *ValidationError:
		return n.fromValidation(v)
	case *SyntaxError:
		return fromSyntax(v)
	case GenericError:
		return fromGeneric(v)
	default:
		return New(http.StatusInternalServerError, CodeUnknown, MessageUnknown)
	}
}

func (n *Normalizer) fromValidation(v *ValidationError) *ErrorResponse {
	resp := New(v.Status, CodeUnknown, MessageUnknown)
	if resp.Status == 0 {
		resp.Status = http.StatusInternalServerError
	}
	if e, ok := statusTable[v.Status]; ok {
		resp.Code, resp.Message = e.code, e.message
	} else if n.policy.StrictValidationStatus {
		resp.Status = http.StatusInternalServerError
	}
	if v.Message != "" {
		resp.Message = v.Message
	}
	if len(v.Errors) > 0 {
		resp.Errors = append([]Issue(nil), v.Errors...)
	}
	for k, val := range v.Headers {
		resp.WithHeader(k, val)
	}
	return resp
}

func fromResponse(r *ErrorResponse) *ErrorResponse {
	resp := r.clone()
	if resp.Code == "" {
		resp.Code = CodeUnknown
	}
	if resp.Message == "" {
		resp.Message = MessageUnknown
	}
	return resp
}

func fromSyntax(v *SyntaxError) *ErrorResponse {
	resp := New(http.StatusInternalServerError, CodeUnknown, MessageUnknown)
	if e, ok := typeTable[v.Type]; ok {
		resp = New(e.status, e.code, e.message)
	}
	// Status and type are independent inputs; a mismatch passes through.
	if v.Status != 0 {
		resp.Status = v.Status
	}
	return resp
}

func fromGeneric(g GenericError) *ErrorResponse {
	resp := New(http.StatusInternalServerError, CodeUnknown, MessageUnknown)
	if g.Status != nil {
		resp.Status = *g.Status
	}
	if g.Code != nil {
		resp.Code = *g.Code
	}
	switch {
	case g.Message != nil:
		resp.Message = *g.Message
	case g.Native != "":
		resp.Message = g.Native
	}
	return resp
}

// Package apierr turns arbitrary request errors into a uniform API error payload.
//
// The package is framework-free: it classifies a raw error value into one of a
// closed set of variants, maps the variant to a status/code/message triple and
// applies the status policy. Transport adapters (see pkg/ginmw) decide when to
// call it and how to write the result.
//
// Classification order (first match wins):
//
//  1. values that are not objects (nil, numbers, strings, slices, ...) are not
//     actionable and are left to the host framework
//  2. an override stored in the request State is used verbatim
//  3. *ValidationError (and validator.ValidationErrors) map through the status table
//  4. *SyntaxError (and JSON decode / body size errors) map through the type table
//  5. anything else is read as a generic error-like object
//
// Basic usage:
//
//	n := apierr.NewNormalizer(apierr.DefaultPolicy())
//	resp, ok := n.Normalize(state, err)
//	if ok {
//	    w.WriteHeader(n.WireStatus(resp))
//	}
//
// The emitted body status always lies in [400, 599]. With Policy.MaskGateway the
// wire status for 502, 503 and 504 is 500 while the body keeps the original value.
package apierr

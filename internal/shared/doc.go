// Package shared contains the domain error taxonomy used by the service
// layers, free of transport details.
//
// Repositories mark driver errors with a Kind:
//
//	if errors.Is(err, sql.ErrNoRows) {
//	    return shared.MarkKind(err, shared.KindNotFound)
//	}
//
// HTTP adapters map kinds to responses:
//
//	switch shared.KindOf(err) {
//	case shared.KindNotFound:
//	    ginmw.Forward(c, apierr.NotFound())
//	case shared.KindConflict:
//	    ginmw.Forward(c, apierr.New(http.StatusConflict, "CONFLICT", err.Error()))
//	default:
//	    ginmw.Forward(c, err)
//	}
//
// Error messages are lowercase and without punctuation so they compose when
// wrapped.
package shared

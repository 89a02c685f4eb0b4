package apierr

import "net/http"

type statusEntry struct {
	code    string
	message string
}

// statusTable maps validation statuses to codes and default messages.
var statusTable = map[int]statusEntry{
	http.StatusBadRequest:            {CodeBadRequest, "Request validation failed"},
	http.StatusUnauthorized:          {CodeUnauthorized, "You are not authorized to perform this request"},
	http.StatusForbidden:             {CodeForbidden, "Access denied"},
	http.StatusNotFound:              {CodeNotFound, "Not found"},
	http.StatusMethodNotAllowed:      {CodeMethodNotAllowed, "Method not allowed"},
	http.StatusRequestEntityTooLarge: {CodeRequestTooLarge, "Request entity too large"},
	http.StatusUnsupportedMediaType:  {CodeUnsupportedMediaType, "Unsupported media type"},
}

// Parse failure types understood by the syntax path.
const (
	TypeParseFailed         = "entity.parse.failed"
	TypeRequestAborted      = "request.aborted"
	TypeRequestSizeInvalid  = "request.size.invalid"
	TypeEncodingUnsupported = "encoding.unsupported"
	TypeCharsetUnsupported  = "charset.unsupported"
	TypeVerifyFailed        = "entity.verify.failed"
	TypeTooLarge            = "entity.too.large"
	TypeParametersTooMany   = "parameters.too.many"
)

type typeEntry struct {
	status  int
	code    string
	message string
}

var (
	badRequestEntry      = typeEntry{http.StatusBadRequest, CodeBadRequest, "Request validation failed"}
	unsupportedTypeEntry = typeEntry{http.StatusUnsupportedMediaType, CodeUnsupportedMediaType, "Unsupported media type"}
	forbiddenEntry       = typeEntry{http.StatusForbidden, CodeForbidden, "Access denied"}
	tooLargeEntry        = typeEntry{http.StatusRequestEntityTooLarge, CodeRequestTooLarge, "Request entity too large"}
)

// typeTable maps parse failure types to status/code/message triples.
var typeTable = map[string]typeEntry{
	TypeParseFailed:         badRequestEntry,
	TypeRequestAborted:      badRequestEntry,
	TypeRequestSizeInvalid:  badRequestEntry,
	TypeEncodingUnsupported: unsupportedTypeEntry,
	TypeCharsetUnsupported:  unsupportedTypeEntry,
	TypeVerifyFailed:        forbiddenEntry,
	TypeTooLarge:            tooLargeEntry,
	TypeParametersTooMany:   tooLargeEntry,
}

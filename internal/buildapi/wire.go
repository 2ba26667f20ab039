package buildapi

import (
	"github.com/pixil98/go-mudbuild/internal/props"
)

const (
	PathSession = "/build/session"
	PathTables  = "/build/tables"
	PathProps   = "/build/props"
	PathSetProp = "/build/setprop"
	PathAddProp = "/build/addprop"
	PathHealth  = "/build/health"
	PathFeed    = "/build/feed"

	// XSRFName is both the cookie and the form field carrying the
	// anti-forgery token.
	XSRFName = "_xsrf"
)

type sessionResponse struct {
	XSRF string `json:"xsrf"`
}

type tablesResponse struct {
	Tables []props.TableKey `json:"tables"`
}

type propsResponse struct {
	Table props.TableKey `json:"table"`
	Props []props.Record `json:"props"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// APIError is a failure reported by the build server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

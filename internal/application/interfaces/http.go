package interfaces

import "net/http"

// HTTPHandler is the transport entry point the server binary mounts.
type HTTPHandler interface {
	http.Handler
}

package handlers

import (
	"net/http"

	"github.com/rs/cors"
)

var corsHandler = cors.New(cors.Options{AllowedMethods: []string{http.MethodGet, http.MethodHead}})

// CorsHandler allows cross origin GET and HEAD requests unless disabled
func CorsHandler(handler http.Handler, disableCrossOriginRequests bool) http.Handler {
	if !disableCrossOriginRequests {
		handler = corsHandler.Handler(handler)
	}

	return handler
}

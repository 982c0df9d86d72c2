// Package handlers holds the request dispatcher and the handlers wrapping it.
package handlers

//go:generate mockgen -destination mock/mock.go -package mock gitlab.com/gitlab-org/pages-fallback/internal/handlers Resolver,StaticServer

import (
	"net/http"

	"gitlab.com/gitlab-org/pages-fallback/internal/resolver"
)

// Resolver decides what a request path maps to
type Resolver interface {
	Resolve(requestPath string) resolver.Result
}

// StaticServer writes the file at a canonical path to the response
type StaticServer interface {
	ServeFile(w http.ResponseWriter, r *http.Request, fullPath string)
}

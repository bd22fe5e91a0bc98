// Package api handles incoming HTTP requests, request validation and
// response formatting. It adapts HTTP to the application services and maps
// their errors to status codes without leaking internal details.
package api

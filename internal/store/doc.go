// Package store defines the persistence interfaces the services depend on,
// along with the shared error values and the transaction helper. Concrete
// implementations live under internal/platform.
package store

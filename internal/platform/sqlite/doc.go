// Package sqlite is the local store behind guest mode. A guest has no
// account, so every deck, card and study day in the file belongs to
// GuestUserID.
package sqlite

// Package mocks provides shared test doubles for the store and auth
// interfaces.
//
// Store mocks are built on testify/mock. Their WithTx methods return the
// mock itself, so expectations set on a mock also apply inside a
// transaction. Pair them with NewTxDB when the code under test opens
// transactions through store.RunInTransaction.
//
// Auth mocks use function fields with default return values:
//
//	jwtSvc := &mocks.MockJWTService{Token: "access", RefreshToken: "refresh"}
package mocks

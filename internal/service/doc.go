// Package service holds the application services behind the HTTP API:
// decks and cards, study sessions and streaks, friends and messages, and
// user profiles. Services enforce ownership and run multi-step writes in
// transactions; the pure scheduling and streak rules live under
// internal/domain.
package service

// Package domain contains the core study entities: users, decks, cards with
// their review state, friendships and direct messages. Entities validate
// themselves and carry no persistence or transport concerns.
package domain

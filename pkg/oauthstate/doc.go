// Package oauthstate stores the one-time state values of pending OAuth
// authorizations.
//
// Both stores implement auth.StateStore: Save records a state with a TTL,
// Consume returns and removes it atomically so a callback can be redeemed
// once. Memory suits a single process; Redis (SET NX EX and GETDEL) is
// required when callbacks may land on a different instance than the
// redirect.
package oauthstate

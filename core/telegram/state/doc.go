// Package state keeps one conversation session per Telegram user.
//
// Sessions live in a Registry bounded by capacity and idle TTL. Every handler
// that touches a session runs inside the per-user lock taken by WithSession,
// so events of one user are processed strictly one after another while
// different users proceed in parallel. The package is domain-agnostic: the
// session type is supplied by the bot.
package state

package core

import "sort"

// Presence is the in-memory authoritative map of nickname to active
// session. It is owned exclusively by the hub goroutine, which serializes
// every read and write; the at-most-one-session-per-nickname invariant
// holds because check-then-set never interleaves with another join.
type Presence struct {
	entries map[string]*Client
}

// NewPresence constructs an empty presence table.
func NewPresence() *Presence {
	return &Presence{
		entries: make(map[string]*Client),
	}
}

// Contains reports whether the nickname is currently bound to a session.
func (p *Presence) Contains(nickname string) bool {
	_, ok := p.entries[nickname]
	return ok
}

// Get returns the session bound to the nickname, or nil.
func (p *Presence) Get(nickname string) *Client {
	return p.entries[nickname]
}

// Set binds a nickname to a session. Returns false if the nickname was
// already bound.
func (p *Presence) Set(nickname string, c *Client) bool {
	if _, exists := p.entries[nickname]; exists {
		return false
	}
	p.entries[nickname] = c
	return true
}

// Remove unbinds a nickname, but only if it is still bound to the given
// session. Returns true if the entry was removed.
func (p *Presence) Remove(nickname string, c *Client) bool {
	bound, exists := p.entries[nickname]
	if !exists || bound != c {
		return false
	}
	delete(p.entries, nickname)
	return true
}

// Roster returns all present nicknames, sorted for stable output.
func (p *Presence) Roster() []string {
	roster := make([]string, 0, len(p.entries))
	for nickname := range p.entries {
		roster = append(roster, nickname)
	}
	sort.Strings(roster)
	return roster
}

// Len returns the number of present identities.
func (p *Presence) Len() int {
	return len(p.entries)
}

package domain

// EntryKind tells a renderer how to present a conversation entry.
type EntryKind string

const (
	EntryContext  EntryKind = "context"
	EntryMetrics  EntryKind = "metrics"
	EntryAnswer   EntryKind = "answer"
	EntryQuestion EntryKind = "question"
)

// ConversationEntry is one labelled line of session history.
type ConversationEntry struct {
	Kind    EntryKind `json:"kind"`
	Label   string    `json:"label"`
	Message string    `json:"message"`
}

// Conversation is an append-only list of entries owned by a single session.
// Entries are never edited; the whole list may be cleared.
type Conversation struct {
	entries []ConversationEntry
}

// Append adds entries in order.
func (c *Conversation) Append(entries ...ConversationEntry) {
	c.entries = append(c.entries, entries...)
}

// Len returns the number of entries.
func (c *Conversation) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the entries in insertion order.
func (c *Conversation) Entries() []ConversationEntry {
	out := make([]ConversationEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Newest returns a copy of the entries, most recent first.
func (c *Conversation) Newest() []ConversationEntry {
	out := make([]ConversationEntry, len(c.entries))
	for i, entry := range c.entries {
		out[len(c.entries)-1-i] = entry
	}
	return out
}

// Reset drops every entry.
func (c *Conversation) Reset() {
	c.entries = nil
}

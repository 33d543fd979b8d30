// Package memory holds the conversation log for one session: an append-only
// sequence of turns, rehydrated from the transcript store at session start
// and persisted on every append.
package memory

import (
	"sync"

	"github.com/arxa-ai/arxa/internal/logging"
	"github.com/arxa-ai/arxa/internal/pipeline"
)

// Greeting is the single auto-generated assistant turn a fresh session opens with.
const Greeting = "How can I help you?"

// Entry is the persisted shape of one turn.
type Entry struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Store persists the session transcript.
type Store interface {
	// Load returns the previously persisted transcript, oldest first.
	// A missing transcript yields an empty slice, not an error.
	Load() ([]Entry, error)
	// Save replaces the persisted transcript.
	Save(entries []Entry) error
}

// Log is an append-only conversation memory. Sequence indexes strictly
// increase and past turns are never mutated or removed.
type Log struct {
	mu    sync.Mutex
	turns []pipeline.Turn
	store Store
}

// Open rehydrates a Log from the store. An empty transcript starts the
// session with the greeting turn.
func Open(store Store) (*Log, error) {
	entries, err := store.Load()
	if err != nil {
		return nil, err
	}

	l := &Log{store: store}
	for _, entry := range entries {
		role := pipeline.Role(entry.Role)
		if role != pipeline.RoleUser {
			role = pipeline.RoleAssistant
		}
		l.turns = append(l.turns, pipeline.Turn{Role: role, Text: entry.Text, Seq: len(l.turns)})
	}

	if len(l.turns) == 0 {
		l.Append(pipeline.RoleAssistant, Greeting)
	}
	return l, nil
}

// Append records a new turn and persists the transcript. The turn with its
// assigned sequence index is returned.
func (l *Log) Append(role pipeline.Role, text string) pipeline.Turn {
	l.mu.Lock()
	turn := pipeline.Turn{Role: role, Text: text, Seq: len(l.turns)}
	l.turns = append(l.turns, turn)
	entries := l.entriesLocked()
	l.mu.Unlock()

	if err := l.store.Save(entries); err != nil {
		logging.LogEvent("memory: persist transcript: %v", err)
	}
	return turn
}

// History returns a copy of the conversation, oldest first.
func (l *Log) History() []pipeline.Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]pipeline.Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len reports the number of recorded turns.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.turns)
}

func (l *Log) entriesLocked() []Entry {
	entries := make([]Entry, len(l.turns))
	for i, turn := range l.turns {
		entries[i] = Entry{Role: string(turn.Role), Text: turn.Text}
	}
	return entries
}

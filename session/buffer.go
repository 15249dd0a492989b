package session

const defaultUndoLimit = 100

// Buffer is the session's source text with bounded undo/redo history.
// It is not safe for concurrent use; the owning Session serializes access.
type Buffer struct {
	text  string
	undo  []string
	redo  []string
	limit int
}

// NewBuffer creates an empty buffer. A limit <= 0 uses the default bound.
func NewBuffer(limit int) *Buffer {
	if limit <= 0 {
		limit = defaultUndoLimit
	}
	return &Buffer{limit: limit}
}

// Text returns the current content.
func (b *Buffer) Text() string {
	return b.text
}

// SetText replaces the content, pushing the previous text onto the undo
// stack and discarding any redo history. Setting identical text is a no-op.
func (b *Buffer) SetText(text string) {
	if text == b.text {
		return
	}
	b.undo = append(b.undo, b.text)
	if len(b.undo) > b.limit {
		b.undo = b.undo[len(b.undo)-b.limit:]
	}
	b.redo = nil
	b.text = text
}

// Undo steps back one edit. Reports whether anything changed.
func (b *Buffer) Undo() bool {
	if len(b.undo) == 0 {
		return false
	}
	b.redo = append(b.redo, b.text)
	b.text = b.undo[len(b.undo)-1]
	b.undo = b.undo[:len(b.undo)-1]
	return true
}

// Redo re-applies the most recently undone edit.
func (b *Buffer) Redo() bool {
	if len(b.redo) == 0 {
		return false
	}
	b.undo = append(b.undo, b.text)
	b.text = b.redo[len(b.redo)-1]
	b.redo = b.redo[:len(b.redo)-1]
	return true
}

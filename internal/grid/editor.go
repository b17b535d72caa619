package grid

import "unicode/utf8"

// BufferEditor is an EditSurface without a terminal behind it, used by
// headless commands.
type BufferEditor struct {
	value   string
	cursor  int
	focused bool
}

// NewBufferEditor returns an empty, unfocused editor.
func NewBufferEditor() *BufferEditor {
	return &BufferEditor{}
}

// Value returns the current text.
func (b *BufferEditor) Value() string { return b.value }

// SetValue replaces the text and moves the cursor to its end.
func (b *BufferEditor) SetValue(s string) {
	b.value = s
	b.cursor = utf8.RuneCountInString(s)
}

// Focus marks the editor focused.
func (b *BufferEditor) Focus() { b.focused = true }

// Blur marks the editor unfocused.
func (b *BufferEditor) Blur() { b.focused = false }

// Focused reports whether the editor has focus.
func (b *BufferEditor) Focused() bool { return b.focused }

// SetCursor moves the cursor, clamped to the text.
func (b *BufferEditor) SetCursor(pos int) {
	b.cursor = min(max(0, pos), utf8.RuneCountInString(b.value))
}

// Cursor returns the cursor position in runes.
func (b *BufferEditor) Cursor() int { return b.cursor }

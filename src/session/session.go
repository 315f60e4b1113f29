package session

import "sync"

// Image is one captured screenshot: the PNG payload as persisted on disk
// plus the file it was persisted to. Immutable once appended.
type Image struct {
	Data []byte
	Path string
}

// State holds the captures accumulated since the last reset plus the
// multi-capture flag. Exactly one instance exists per process; the
// controller is its only mutator. The mutex serializes mutation against
// overlapping hotkey handling.
type State struct {
	mu           sync.Mutex
	images       []Image
	multiCapture bool
}

func New() *State {
	return &State{}
}

// Append adds a capture. Insertion order is capture order and is meaningful:
// dispatch sends images in exactly this order.
func (s *State) Append(img Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, img)
}

// Arm sets the multi-capture flag and reports whether this call armed it.
func (s *State) Arm() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.multiCapture {
		return false
	}
	s.multiCapture = true
	return true
}

// MultiCapture reports whether the session is accumulating captures.
func (s *State) MultiCapture() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.multiCapture
}

// Images returns a snapshot copy of the accumulated captures in order.
func (s *State) Images() []Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Image, len(s.images))
	copy(out, s.images)
	return out
}

// Len returns the number of accumulated captures.
func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

// Reset clears the sequence and the flag unconditionally. Files already
// written to disk are left alone.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = nil
	s.multiCapture = false
}

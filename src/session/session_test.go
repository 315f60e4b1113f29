package session

import (
	"fmt"
	"testing"
)

func TestAppendPreservesOrder(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		s.Append(Image{Data: []byte{byte(i)}, Path: fmt.Sprintf("shot_%d.png", i)})
	}
	imgs := s.Images()
	if len(imgs) != 5 {
		t.Fatalf("Expected 5 images, got %d", len(imgs))
	}
	for i, img := range imgs {
		if img.Data[0] != byte(i) {
			t.Errorf("Image %d out of order: got payload %v", i, img.Data)
		}
	}
}

func TestArmOnlyFirstTime(t *testing.T) {
	s := New()
	if !s.Arm() {
		t.Error("First Arm should report arming")
	}
	if s.Arm() {
		t.Error("Second Arm should report already armed")
	}
	if !s.MultiCapture() {
		t.Error("Flag should remain set")
	}
}

func TestResetClearsEverything(t *testing.T) {
	s := New()
	s.Append(Image{Data: []byte{1}})
	s.Append(Image{Data: []byte{2}})
	s.Arm()

	s.Reset()

	if s.Len() != 0 {
		t.Errorf("Expected 0 images after reset, got %d", s.Len())
	}
	if s.MultiCapture() {
		t.Error("Expected multi-capture flag unset after reset")
	}

	// Reset of an already-clean state is a no-op, not an error.
	s.Reset()
	if s.Len() != 0 || s.MultiCapture() {
		t.Error("Reset must be idempotent")
	}
}

func TestImagesReturnsCopy(t *testing.T) {
	s := New()
	s.Append(Image{Data: []byte{1}})
	imgs := s.Images()
	imgs[0] = Image{Data: []byte{9}}
	if s.Images()[0].Data[0] != 1 {
		t.Error("Mutating the snapshot must not affect the session")
	}
}

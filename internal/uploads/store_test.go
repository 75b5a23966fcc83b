package uploads

import (
	"errors"
	"io"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	url, err := s.Save("cand_0123456789ab", []byte("%PDF-1.4 test"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if url != "/api/uploads/cand_0123456789ab.pdf" {
		t.Fatalf("unexpected url %q", url)
	}

	f, err := s.Open("cand_0123456789ab.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(f)
	f.Close()
	if string(data) != "%PDF-1.4 test" {
		t.Fatalf("unexpected content %q", data)
	}

	files, err := s.List()
	if err != nil || len(files) != 1 || files[0].CandidateID != "cand_0123456789ab" {
		t.Fatalf("unexpected list %+v %v", files, err)
	}

	if err := s.Remove("cand_0123456789ab.pdf"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove("cand_0123456789ab.pdf"); err != nil {
		t.Fatalf("removing a missing file is not an error: %v", err)
	}
}

func TestStoreRejectsTraversal(t *testing.T) {
	s, _ := NewStore(t.TempDir())
	for _, name := range []string{"../secret.pdf", "..", "a/b.pdf", `a\b.pdf`, ".hidden.pdf", "notes.txt", ""} {
		if _, err := s.Open(name); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("%q: expected ErrInvalidName, got %v", name, err)
		}
	}
}

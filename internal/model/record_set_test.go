package model

import (
	"testing"
)

func TestRecordIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		record Record
		want   string
	}{
		{
			name:   "internal identifier wins",
			record: Record{ID: "123", Number: "2024.01.0001234/2024-01"},
			want:   "123",
		},
		{
			name:   "falls back to process number",
			record: Record{Number: "2024.01.0001234/2024-01"},
			want:   "2024.01.0001234/2024-01",
		},
		{
			name:   "empty record",
			record: Record{},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.record.Identity(); got != tt.want {
				t.Errorf("Identity() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecordSet(t *testing.T) {
	t.Parallel()

	t.Run("keeps the first record for a repeated identity", func(t *testing.T) {
		t.Parallel()

		set := NewRecordSet()
		first := Record{ID: "X", Number: "1111.11.1111111/1111-11", Category: CategoryReceived, Title: "first"}
		second := Record{ID: "X", Number: "2222.22.2222222/2222-22", Category: CategoryGenerated, Title: "second"}

		if !set.Add(first) {
			t.Fatal("expected first record to be added")
		}
		if set.Add(second) {
			t.Fatal("expected duplicate identity to be rejected")
		}
		if set.Len() != 1 {
			t.Fatalf("Len() = %d, want 1", set.Len())
		}
		got, ok := set.Get("X")
		if !ok {
			t.Fatal("expected record X")
		}
		if got.Title != "first" {
			t.Errorf("kept %q, want first", got.Title)
		}
	})

	t.Run("identity by number matches across groups", func(t *testing.T) {
		t.Parallel()

		set := NewRecordSet()
		added := set.AddAll([]Record{
			{Number: "2024.01.0000001/2024-01", Category: CategoryReceived},
			{Number: "2024.01.0000002/2024-01", Category: CategoryReceived},
			{Number: "2024.01.0000001/2024-01", Category: CategoryGenerated},
		})

		if added != 2 {
			t.Errorf("AddAll() = %d, want 2", added)
		}
		if n := set.CountByCategory(CategoryGenerated); n != 0 {
			t.Errorf("CountByCategory(Gerados) = %d, want 0", n)
		}
	})

	t.Run("rejects records without identity", func(t *testing.T) {
		t.Parallel()

		set := NewRecordSet()
		if set.Add(Record{Title: "nothing"}) {
			t.Error("expected record without identity to be rejected")
		}
	})

	t.Run("records keep insertion order and are copied", func(t *testing.T) {
		t.Parallel()

		set := NewRecordSet()
		set.Add(Record{ID: "b"})
		set.Add(Record{ID: "a"})

		records := set.Records()
		if records[0].ID != "b" || records[1].ID != "a" {
			t.Errorf("unexpected order: %v", records)
		}
		records[0].ID = "changed"
		if _, ok := set.Get("b"); !ok {
			t.Error("mutating the returned slice must not affect the set")
		}
	})
}

func TestRecordFingerprint(t *testing.T) {
	t.Parallel()

	base := Record{
		Number:   "2024.01.0001234/2024-01",
		Category: CategoryReceived,
		ID:       "42",
		Markers:  []string{"Urgente"},
		Hash:     "abc",
		URL:      "https://example.test/a",
	}

	t.Run("ignores rotating hash and url", func(t *testing.T) {
		t.Parallel()

		other := base
		other.Hash = "def"
		other.URL = "https://example.test/b"
		if base.Fingerprint() != other.Fingerprint() {
			t.Error("fingerprint must not depend on hash or url")
		}
	})

	t.Run("changes with listed fields", func(t *testing.T) {
		t.Parallel()

		other := base
		other.Viewed = true
		if base.Fingerprint() == other.Fingerprint() {
			t.Error("fingerprint must change when viewed flag changes")
		}
		if len(base.Fingerprint()) != 64 {
			t.Errorf("fingerprint length = %d, want 64", len(base.Fingerprint()))
		}
	})
}

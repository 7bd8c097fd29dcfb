package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"smartmail-backend/internal/email"
)

func record(id string, at time.Time) Record {
	return Record{
		ID:            id,
		OriginalText:  "original " + id,
		GeneratedText: "generated " + id,
		Tone:          email.ToneProfessional,
		Mode:          email.ModeRewrite,
		Provider:      "local",
		CreatedAt:     at,
	}
}

func TestMemoryRepoListsNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if _, err := repo.Insert(ctx, record(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	// Same timestamp as "c": insertion order decides.
	if _, err := repo.Insert(ctx, record("d", base.Add(2*time.Minute))); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.ListAll(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"d", "c", "b"}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestMemoryRepoDelete(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	now := time.Now().UTC()
	_, _ = repo.Insert(ctx, record("a", now))
	_, _ = repo.Insert(ctx, record("b", now))

	if err := repo.DeleteOne(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteOne(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	n, err := repo.DeleteAll(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 deleted, got %d (%v)", n, err)
	}
	if got, _ := repo.ListAll(ctx, 0); len(got) != 0 {
		t.Fatalf("expected empty history, got %d", len(got))
	}
}

func TestMemoryRepoRejectsMissingID(t *testing.T) {
	if _, err := NewMemoryRepo().Insert(context.Background(), Record{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFilter(t *testing.T) {
	records := []Record{
		{ID: "1", OriginalText: "Quarterly REPORT due", GeneratedText: "x", Tone: email.ToneFormal},
		{ID: "2", OriginalText: "lunch?", GeneratedText: "Shall we grab lunch", Tone: email.ToneCasual},
		{ID: "3", OriginalText: "sorry", GeneratedText: "I apologize", Tone: email.ToneApologetic},
	}
	tests := []struct {
		q    string
		want []string
	}{
		{"", []string{"1", "2", "3"}},
		{"report", []string{"1"}},
		{"LUNCH", []string{"2"}},
		{"apologetic", []string{"3"}},
		{"Formal", []string{"1"}},
		{"nothing here", nil},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			got := Filter(records, tt.q)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %d records", tt.want, len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("expected %s at %d, got %s", id, i, got[i].ID)
				}
			}
		})
	}
}

func TestServiceListFiltersBeforeLimiting(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		rec := record(string(rune('a'+i)), base.Add(time.Duration(i)*time.Second))
		if i%2 == 0 {
			rec.OriginalText = "invoice " + rec.ID
		}
		_, _ = repo.Insert(ctx, rec)
	}

	svc := NewService(repo)
	got, err := svc.List(ctx, "invoice", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "e" || got[1].ID != "c" {
		t.Fatalf("unexpected records %+v", got)
	}
}

func TestNewRecordCopiesRequest(t *testing.T) {
	req, err := email.NewRequest("  please send the slides  ", email.ToneConcise, email.ModeWrite, true)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rec := NewRecord(req, email.Result{GeneratedText: "Hi,\n\nSlides?", Provider: "groq", Timestamp: ts})
	if rec.ID == "" || rec.OriginalText != "please send the slides" || rec.Tone != email.ToneConcise || !rec.CreatedAt.Equal(ts) {
		t.Fatalf("unexpected record %+v", rec)
	}
}

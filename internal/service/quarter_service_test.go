package service

import (
	"context"
	"errors"
	"testing"

	"school_lms_backend/internal/model"
	"school_lms_backend/internal/util"
)

type fakeQuarterStore struct {
	values map[string]string
}

func (s *fakeQuarterStore) Get(key string) (string, error) {
	return s.values[key], nil
}

func (s *fakeQuarterStore) Set(key, value string) error {
	s.values[key] = value
	return nil
}

func TestGetActiveReadsStoredQuarter(t *testing.T) {
	store := &fakeQuarterStore{values: map[string]string{model.ActiveQuarterKey: "Q3"}}
	svc := NewQuarterService(store, nil)

	got, err := svc.GetActive(context.Background())
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if got != "Q3" {
		t.Errorf("quarter = %s, want Q3", got)
	}
}

func TestGetActiveFallsBackToDefault(t *testing.T) {
	for _, stored := range []string{"", "Q5", "winter"} {
		store := &fakeQuarterStore{values: map[string]string{model.ActiveQuarterKey: stored}}
		svc := NewQuarterService(store, nil)

		got, err := svc.GetActive(context.Background())
		if err != nil {
			t.Fatalf("GetActive(%q): %v", stored, err)
		}
		if got != model.DefaultQuarter {
			t.Errorf("quarter for stored %q = %s, want %s", stored, got, model.DefaultQuarter)
		}
		// The fallback is read-only; the bad row stays as it was.
		if store.values[model.ActiveQuarterKey] != stored {
			t.Errorf("fallback wrote %q over stored %q", store.values[model.ActiveQuarterKey], stored)
		}
	}
}

func TestSetActiveValidatesQuarter(t *testing.T) {
	store := &fakeQuarterStore{values: map[string]string{model.ActiveQuarterKey: "Q1"}}
	svc := NewQuarterService(store, nil)
	ctx := context.Background()

	for _, bad := range []string{"", "Q0", "Q5", "q2", "Semester1"} {
		if err := svc.SetActive(ctx, bad); !errors.Is(err, util.ErrInvalidQuarter) {
			t.Errorf("SetActive(%q) err = %v, want ErrInvalidQuarter", bad, err)
		}
	}

	if err := svc.SetActive(ctx, "Q4"); err != nil {
		t.Fatalf("SetActive(Q4): %v", err)
	}
	got, _ := svc.GetActive(ctx)
	if got != "Q4" {
		t.Errorf("quarter after switch = %s, want Q4", got)
	}
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/annabbc1804/vitamin-bot/internal/domain"
)

// JSONRepo implements Repo over a single JSON document:
//
//	{"states": {"<user_id>": {...}}, "registered_users": [...]}
type JSONRepo struct {
	path string
	mu   sync.Mutex
}

type jsonDoc struct {
	States          map[string]jsonState `json:"states"`
	RegisteredUsers []int64              `json:"registered_users"`
}

type jsonState struct {
	MorningTaken         bool   `json:"morning_taken"`
	LunchTaken           bool   `json:"lunch_taken"`
	MorningReminderCount int    `json:"morning_reminder_count"`
	LunchReminderCount   int    `json:"lunch_reminder_count"`
	LastReset            string `json:"last_reset"`
}

// OpenJSON returns a repository backed by the file at path. The file need not exist.
func OpenJSON(path string) (*JSONRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &JSONRepo{path: path}, nil
}

// Load reads the document; a missing file yields an empty snapshot.
func (r *JSONRepo) Load(_ context.Context) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{States: make(map[int64]domain.DoseState)}
	b, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return snap, nil
	}
	if err != nil {
		return snap, err
	}

	var doc jsonDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return snap, fmt.Errorf("decode %s: %w", r.path, err)
	}
	for key, st := range doc.States {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return snap, fmt.Errorf("user id %q: %w", key, err)
		}
		snap.States[id] = domain.DoseState{
			MorningTaken:         st.MorningTaken,
			LunchTaken:           st.LunchTaken,
			MorningReminderCount: st.MorningReminderCount,
			LunchReminderCount:   st.LunchReminderCount,
			LastResetDate:        st.LastReset,
		}
	}
	snap.Registered = append(snap.Registered, doc.RegisteredUsers...)
	sort.Slice(snap.Registered, func(i, j int) bool { return snap.Registered[i] < snap.Registered[j] })
	return snap, nil
}

// Save rewrites the document via a temp file and rename.
func (r *JSONRepo) Save(_ context.Context, snap Snapshot) error {
	doc := jsonDoc{
		States:          make(map[string]jsonState, len(snap.States)),
		RegisteredUsers: append([]int64{}, snap.Registered...),
	}
	for id, st := range snap.States {
		doc.States[strconv.FormatInt(id, 10)] = jsonState{
			MorningTaken:         st.MorningTaken,
			LunchTaken:           st.LunchTaken,
			MorningReminderCount: st.MorningReminderCount,
			LunchReminderCount:   st.LunchReminderCount,
			LastReset:            st.LastResetDate,
		}
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}

// Close is a no-op; every Save is already on disk.
func (r *JSONRepo) Close() error { return nil }

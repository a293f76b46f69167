package reminder

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/annabbc1804/vitamin-bot/internal/domain"
	"github.com/annabbc1804/vitamin-bot/internal/store"
)

type sentMessage struct {
	chatID int64
	text   string
	opts   ReplyOptions
}

type fakeNotifier struct {
	mu   sync.Mutex
	fail bool
	sent []sentMessage
}

func (f *fakeNotifier) Notify(chatID int64, text string, opts ReplyOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("telegram: 502 bad gateway")
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, opts: opts})
	return nil
}

func (f *fakeNotifier) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fakeInstaller struct {
	mu    sync.Mutex
	calls []int64
}

func (f *fakeInstaller) Install(userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userID)
	return nil
}

type fixture struct {
	svc       *Service
	states    *store.States
	repo      *store.JSONRepo
	clock     *clockwork.FakeClock
	notifier  *fakeNotifier
	installer *fakeInstaller
}

// newFixture builds a Service over a JSON-backed store at a Moscow wall time.
func newFixture(t *testing.T, y int, m time.Month, d, hh, mm int) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	repo, err := store.OpenJSON(filepath.Join(t.TempDir(), "vitamin_data.json"))
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	clock := clockwork.NewFakeClockAt(time.Date(y, m, d, hh, mm, 0, 0, loc))
	states := store.Open(context.Background(), repo, clock, loc, log, nil)

	f := &fixture{
		states:    states,
		repo:      repo,
		clock:     clock,
		notifier:  &fakeNotifier{},
		installer: &fakeInstaller{},
	}
	f.svc = New(states, f.notifier, domain.DefaultTable(), log, nil)
	f.svc.SetInstaller(f.installer)
	return f
}

// seed overwrites a user's state for today.
func (f *fixture) seed(userID int64, morning, lunch bool) {
	f.states.Update(context.Background(), userID, func(st *domain.DoseState) {
		st.MorningTaken = morning
		st.LunchTaken = lunch
	})
}

// persisted reads the user's state back from disk.
func (f *fixture) persisted(t *testing.T, userID int64) domain.DoseState {
	t.Helper()
	snap, err := f.repo.Load(context.Background())
	require.NoError(t, err)
	return snap.States[userID]
}

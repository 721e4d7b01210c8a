package session

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

type StoreConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
	Location      *time.Location
}

func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		TTL:           30 * time.Minute,
		SweepInterval: time.Minute,
		Location:      time.UTC,
	}
}

// Store keeps sessions in memory. Sessions idle for longer than the TTL are
// removed by the sweeper.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      StoreConfig

	scheduler gocron.Scheduler
}

func NewStore(cfg StoreConfig) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultStoreConfig().TTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultStoreConfig().SweepInterval
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Store{
		sessions: make(map[string]*Session),
		cfg:      cfg,
	}
}

func (st *Store) Create() *Session {
	s := New(uuid.NewString(), st.cfg.Location)

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	return s
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions idle since before now minus the TTL and returns how
// many were removed.
func (st *Store) Sweep(now time.Time) int {
	cutoff := now.Add(-st.cfg.TTL)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every SweepInterval until Shutdown.
func (st *Store) StartSweeper() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(st.cfg.SweepInterval),
		gocron.NewTask(func() {
			if n := st.Sweep(time.Now()); n > 0 {
				log.Infof("session: swept %d expired sessions, %d left", n, st.Len())
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return err
	}

	sched.Start()
	st.scheduler = sched
	return nil
}

func (st *Store) Shutdown() error {
	if st.scheduler == nil {
		return nil
	}
	return st.scheduler.Shutdown()
}

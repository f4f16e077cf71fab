package orientation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"

	"orientd/internal/sensor"
)

// Mode selects which sources the pump may use.
type Mode string

const (
	// ModeAuto prefers relative orientation with a one-shot absolute
	// fallback.
	ModeAuto Mode = "auto"
	// ModeAbsolute uses the absolute-orientation source only.
	ModeAbsolute Mode = "absolute"
)

const defaultInterval = 16 * time.Millisecond // ~60 Hz

type Config struct {
	Mode     Mode
	Interval time.Duration
	Provider sensor.Provider

	// Clock is swappable for tests; nil means the real clock.
	Clock clock.Clock
}

// Snapshot is a point-in-time view of the service for status surfaces.
type Snapshot struct {
	Mode          string `json:"mode"`
	Running       bool   `json:"running"`
	Ready         bool   `json:"ready"`
	Subscribers   int    `json:"subscribers"`
	RelativeState string `json:"relative_state"`
	AbsoluteState string `json:"absolute_state"`
	Fallback      string `json:"fallback"`
	Ticks         uint64 `json:"ticks"`
	Events        uint64 `json:"events"`
	LogicErrors   uint64 `json:"logic_errors"`
	Last          Sample `json:"last"`
	LastEventUTC  string `json:"last_event_utc,omitempty"`
}

// Service owns a Pump and the polling schedule around it. The pump runs
// while at least one subscriber is attached: the first Subscribe starts it,
// the last Unsubscribe stops it. All pump access happens on the run-loop
// goroutine, which is what lets the pump itself stay lock-free.
type Service struct {
	cfg Config
	clk clock.Clock

	pump     *Pump
	listener Listener

	// Loop-owned state; only the run goroutine touches these.
	subscribers int
	wantRunning bool
	pumpReady   bool

	subCh chan int

	mu   sync.RWMutex
	snap Snapshot

	started  bool
	stopOnce sync.Once
	stopCh   chan struct{}

	log *log.Entry
}

// New builds the service. listener receives every delivered sample on the
// run-loop goroutine and must not block; use Listeners to fan out.
func New(cfg Config, listener Listener) *Service {
	if cfg.Mode == "" {
		cfg.Mode = ModeAuto
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	s := &Service{
		cfg:      cfg,
		clk:      clk,
		listener: listener,
		subCh:    make(chan int, 16),
		stopCh:   make(chan struct{}),
		log:      log.WithField("component", "orientation-service"),
	}
	s.pump = NewPump(cfg.Mode == ModeAbsolute, cfg.Provider, ListenerFunc(s.onDelivered), s.onPumpReady)
	s.snap = Snapshot{
		Mode:          string(cfg.Mode),
		RelativeState: s.pump.RelativeState().String(),
		AbsoluteState: s.pump.AbsoluteState().String(),
		Fallback:      s.pump.Fallback(),
	}
	return s
}

// Start launches the run loop. The loop exits when ctx is done or Close is
// called.
func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("orientation: service is nil")
	}
	if s.cfg.Provider == nil {
		return fmt.Errorf("orientation: provider is required")
	}
	if s.started {
		return fmt.Errorf("orientation: already started")
	}
	s.started = true
	go s.run(ctx)
	return nil
}

func (s *Service) Close() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers interest in orientation events. The first subscriber
// starts the pump.
func (s *Service) Subscribe() {
	if s == nil {
		return
	}
	select {
	case s.subCh <- 1:
	case <-s.stopCh:
	}
}

// Unsubscribe drops one registration. The last one stops the pump.
func (s *Service) Unsubscribe() {
	if s == nil {
		return
	}
	select {
	case s.subCh <- -1:
	case <-s.stopCh:
	}
}

func (s *Service) run(ctx context.Context) {
	ticker := s.clk.Ticker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case d := <-s.subCh:
			before := s.subscribers
			s.subscribers += d
			if s.subscribers < 0 {
				s.subscribers = 0
			}
			if before == 0 && s.subscribers > 0 {
				s.wantRunning = true
				s.log.WithField("mode", s.cfg.Mode).Info("starting orientation pump")
				s.pump.Start()
			} else if before > 0 && s.subscribers == 0 {
				s.wantRunning = false
				s.pumpReady = false
				s.log.Info("stopping orientation pump")
				s.pump.Stop()
			}
			s.publishSnapshot(func(sn *Snapshot) {
				sn.Subscribers = s.subscribers
			})
		case <-ticker.C:
			if !s.wantRunning || !s.pumpReady {
				continue
			}
			s.pump.Tick()
			s.publishSnapshot(func(sn *Snapshot) {
				sn.Ticks++
			})
		}
	}
}

// onPumpReady is the pump's default became-ready path. It only matters
// while a start is pending; a late resolution after the owner unsubscribed
// must not begin ticking.
func (s *Service) onPumpReady() {
	if !s.wantRunning {
		return
	}
	s.pumpReady = true
	s.publishSnapshot(nil)
}

// onDelivered runs on the loop goroutine for every delivered sample.
func (s *Service) onDelivered(sm Sample) {
	s.publishSnapshot(func(sn *Snapshot) {
		sn.Events++
		sn.Last = sm
		sn.LastEventUTC = s.clk.Now().UTC().Format(time.RFC3339Nano)
	})
	if s.listener != nil {
		s.listener.OrientationChanged(sm)
	}
}

// publishSnapshot refreshes the pump-derived fields and applies mutate (if
// any) under the snapshot lock.
func (s *Service) publishSnapshot(mutate func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Running = s.wantRunning
	s.snap.Ready = s.pumpReady
	s.snap.RelativeState = s.pump.RelativeState().String()
	s.snap.AbsoluteState = s.pump.AbsoluteState().String()
	s.snap.Fallback = s.pump.Fallback()
	s.snap.LogicErrors = s.pump.LogicErrors()
	if mutate != nil {
		mutate(&s.snap)
	}
}

package daemon

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler retunes to a station on a cron schedule (the clock-radio "wake
// up to France Info at 7" feature). At most one schedule is active; setting
// a new one replaces it.
type Scheduler struct {
	dispatcher *Dispatcher

	parser cron.Parser

	mu       sync.Mutex
	schedule cron.Schedule
	spec     string
	station  string
	nextRun  time.Time
	running  bool

	controlCh chan struct{} // schedule changed, timer needs recalculation
	stopCh    chan struct{}
}

// ScheduleStatus is the JSON shape of GET /schedule.
type ScheduleStatus struct {
	Active  bool      `json:"active"`
	Cron    string    `json:"cron,omitempty"`
	Station string    `json:"station,omitempty"`
	NextRun time.Time `json:"nextRun,omitempty"`
}

func NewScheduler(d *Dispatcher) *Scheduler {
	return &Scheduler{
		dispatcher: d,
		parser:     cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		controlCh:  make(chan struct{}, 4),
		stopCh:     make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	go s.run()
}

func (s *Scheduler) Stop() {
	select {
	case <-s.stopCh: // already closed
	default:
		close(s.stopCh)
	}
}

// Schedule installs a cron expression and the station to tune when it fires.
func (s *Scheduler) Schedule(cronExpr, station string) error {
	sh, err := s.parser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("bad cron expression %q: %v", cronExpr, err)
	}

	s.mu.Lock()
	s.schedule = sh
	s.spec = cronExpr
	s.station = station
	s.nextRun = sh.Next(time.Now())
	s.mu.Unlock()

	s.poke()
	return nil
}

// Clear removes the active schedule.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	s.schedule = nil
	s.spec = ""
	s.station = ""
	s.nextRun = time.Time{}
	s.mu.Unlock()

	s.poke()
}

// Postpone pushes the next run back by d without touching the cron spec.
func (s *Scheduler) Postpone(d time.Duration) error {
	s.mu.Lock()
	if s.schedule == nil || s.nextRun.IsZero() {
		s.mu.Unlock()
		return fmt.Errorf("no active schedule to postpone")
	}
	s.nextRun = s.nextRun.Add(d)
	s.mu.Unlock()

	s.poke()
	return nil
}

// Skip moves the next run one schedule interval forward.
func (s *Scheduler) Skip() error {
	s.mu.Lock()
	if s.schedule == nil || s.nextRun.IsZero() {
		s.mu.Unlock()
		return fmt.Errorf("no active schedule to skip")
	}
	s.nextRun = s.schedule.Next(s.nextRun)
	s.mu.Unlock()

	s.poke()
	return nil
}

func (s *Scheduler) Status() ScheduleStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return ScheduleStatus{
		Active:  s.schedule != nil,
		Cron:    s.spec,
		Station: s.station,
		NextRun: s.nextRun,
	}
}

func (s *Scheduler) poke() {
	select {
	case s.controlCh <- struct{}{}:
	default:
	}
}

func (s *Scheduler) snapshot() (time.Time, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schedule == nil {
		return time.Time{}, ""
	}
	return s.nextRun, s.station
}

func (s *Scheduler) run() {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		logrus.Debug("scheduler stopped")
	}()

	logrus.Debug("scheduler started")

	for {
		nextRun, station := s.snapshot()

		var timer *time.Timer
		if nextRun.IsZero() {
			timer = time.NewTimer(time.Hour * 10000) // parked until a schedule arrives
		} else {
			wait := time.Until(nextRun)
			if wait < 0 {
				wait = 0
			}
			timer = time.NewTimer(wait)
		}

		select {
		case <-s.stopCh:
			timer.Stop()
			return

		case <-s.controlCh:
			timer.Stop()
			continue

		case <-timer.C:
			if nextRun.IsZero() {
				continue
			}

			logrus.WithFields(logrus.Fields{
				"station": station,
			}).Info("running scheduled retune")

			// Under the drop policy a retune colliding with an in-flight
			// search loses; the next schedule slot will try again.
			if _, err := s.dispatcher.Submit(CommandEvent{Kind: TuneStation, StationID: station}); err != nil {
				logrus.WithError(err).Warn("scheduled retune failed")
			}

			s.mu.Lock()
			if s.schedule != nil {
				s.nextRun = s.schedule.Next(time.Now())
			}
			s.mu.Unlock()
		}
	}
}

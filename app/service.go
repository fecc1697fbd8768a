package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apicar "github.com/kilianp07/lift/api/car"
	apievents "github.com/kilianp07/lift/api/events"
	apirecords "github.com/kilianp07/lift/api/records"
	"github.com/kilianp07/lift/app/plugins"
	"github.com/kilianp07/lift/config"
	"github.com/kilianp07/lift/core/elevator"
	"github.com/kilianp07/lift/core/events"
	"github.com/kilianp07/lift/core/journal"
	coremetrics "github.com/kilianp07/lift/core/metrics"
	coremon "github.com/kilianp07/lift/core/monitoring"
	coremqtt "github.com/kilianp07/lift/core/mqtt"
	"github.com/kilianp07/lift/infra/logger"
	"github.com/kilianp07/lift/infra/metrics"
	"github.com/kilianp07/lift/infra/monitoring"
	"github.com/kilianp07/lift/infra/mqtt"
	"github.com/kilianp07/lift/internal/eventbus"
)

const shutdownTimeout = 5 * time.Second

// Service wires the car, its stores and every outer surface.
type Service struct {
	cfg     *config.Config
	log     logger.Logger
	Car     *elevator.Guard
	Bus     *eventbus.Bus[events.Event]
	journal journal.Store
	stores  *plugins.Stores
	queues  Queues
	sink    coremetrics.MetricsSink
	pub     coremqtt.Publisher
	handler http.Handler
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry, "lift")
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	svc := &Service{cfg: cfg, log: logg, sink: sink, pub: coremqtt.NopPublisher{}}
	ok := false
	defer func() {
		if !ok {
			_ = svc.Close()
		}
	}()

	if svc.journal, err = plugins.NewJournal(cfg.Journal); err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	if svc.stores, err = plugins.NewRecordStores(cfg.Store); err != nil {
		return nil, fmt.Errorf("record store: %w", err)
	}
	if svc.queues, err = NewQueues(cfg, svc.stores, logger.New("recordclient")); err != nil {
		return nil, fmt.Errorf("queues: %w", err)
	}
	if cfg.MQTT.Enabled() {
		pub, err := mqtt.NewPahoPublisher(cfg.MQTT, logger.New("mqtt"))
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.pub = pub
	}

	svc.Bus = eventbus.New[events.Event](eventbus.DefaultBuffer)
	car := elevator.New(
		elevator.WithQueues(svc.queues.Pending, svc.queues.Aboard),
		elevator.WithStartFloor(cfg.Car.StartFloor),
		elevator.WithLogger(logger.New("elevator")),
		elevator.WithMetrics(sink),
	)
	car.OnEvent(events.Multi(journal.Observer(svc.journal, logger.New("journal")), svc.Bus.Publish))
	svc.Car = elevator.NewGuard(car)

	strategy, err := elevator.ParseStrategy(cfg.Car.Strategy)
	if err != nil {
		return nil, err
	}
	svc.handler = svc.routes(apicar.Defaults{Strategy: strategy, IdleTime: cfg.Car.IdleTime})
	ok = true
	return svc, nil
}

func (s *Service) routes(defaults apicar.Defaults) http.Handler {
	mux := http.NewServeMux()
	carH := apicar.NewHandler(s.Car, defaults, logger.New("api-car"))
	mux.Handle("/api/car", carH)
	mux.Handle("/api/car/", carH)
	mux.Handle("/api/events", apievents.NewHandler(s.journal, s.cfg.Journal.Token))
	if s.cfg.Metrics.PrometheusAddr == "" {
		mux.Handle("/metrics", metrics.Handler(prometheus.DefaultGatherer))
	}
	mux.Handle("/", apirecords.NewHandler(s.stores.ByCollection(), logger.New("api-records")))
	return mux
}

// Handler returns the HTTP surface of the service.
func (s *Service) Handler() http.Handler { return s.handler }

// State returns the car snapshot under the guard.
func (s *Service) State(ctx context.Context) (any, error) {
	var snap elevator.Snapshot
	err := s.Car.Do(func(e *elevator.Elevator) error {
		var err error
		snap, err = e.Snapshot(ctx)
		return err
	})
	return snap, err
}

// subscribeState snapshots the car and subscribes to its events in one guarded
// step, so the relay starts from a state that no later event has touched.
func (s *Service) subscribeState(ctx context.Context) (*mqtt.CarState, <-chan events.Event, error) {
	var (
		seed *mqtt.CarState
		sub  <-chan events.Event
	)
	err := s.Car.Do(func(e *elevator.Elevator) error {
		snap, err := e.Snapshot(ctx)
		if err != nil {
			return err
		}
		seed = &mqtt.CarState{
			Floor:                snap.Floor,
			TotalFloorsTraversed: snap.TotalFloorsTraversed,
			TotalStops:           snap.TotalStops,
			Requests:             snap.Requests,
			Riders:               snap.Riders,
		}
		sub = s.Bus.SubscribeUnbounded()
		return nil
	})
	return seed, sub, err
}

// Run serves HTTP and relays events until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if _, isNop := s.pub.(coremqtt.NopPublisher); !isNop {
		seed, sub, err := s.subscribeState(ctx)
		if err != nil {
			return fmt.Errorf("relay: %w", err)
		}
		coremon.Go(func() {
			defer s.Bus.Unsubscribe(sub)
			mqtt.Relay(ctx, sub, s.pub, seed, logger.New("relay"))
		})
	}

	servers := []*http.Server{{Addr: s.cfg.Store.Addr, Handler: s.handler, ReadHeaderTimeout: 10 * time.Second}}
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(prometheus.DefaultGatherer))
		servers = append(servers, &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second})
	}

	errc := make(chan error, len(servers))
	for _, srv := range servers {
		srv := srv
		s.log.Infof("listening on %s", srv.Addr)
		coremon.Go(func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- fmt.Errorf("http %s: %w", srv.Addr, err)
			}
		})
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errc:
		coremon.CaptureException(runErr, map[string]string{"module": "service"})
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warnf("shutdown %s: %v", srv.Addr, err)
		}
	}
	return runErr
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var errs []error
	if s.Bus != nil {
		s.Bus.Close()
		if n := s.Bus.Dropped(); n > 0 {
			s.log.Warnf("event bus dropped %d events", n)
		}
	}
	if s.pub != nil {
		s.pub.Disconnect()
	}
	errs = append(errs, s.queues.Close())
	if s.stores != nil {
		errs = append(errs, s.stores.Close())
	}
	if s.journal != nil {
		errs = append(errs, s.journal.Close())
	}
	closeSink(s.sink)
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}

func closeSink(sink coremetrics.MetricsSink) {
	switch v := sink.(type) {
	case *coremetrics.MultiSink:
		for _, s := range v.Sinks {
			closeSink(s)
		}
	case interface{ Close() }:
		v.Close()
	}
}

package main

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/BearBump/CourierDesk/config"
	consoleapi "github.com/BearBump/CourierDesk/internal/api/console_api"
	"github.com/BearBump/CourierDesk/internal/broker/kafka"
	"github.com/BearBump/CourierDesk/internal/cache"
	"github.com/BearBump/CourierDesk/internal/cache/rediscache"
	"github.com/BearBump/CourierDesk/internal/events"
	"github.com/BearBump/CourierDesk/internal/integrations/backend"
	"github.com/BearBump/CourierDesk/internal/integrations/backend/backendhttp"
	"github.com/BearBump/CourierDesk/internal/integrations/backend/fake"
	"github.com/BearBump/CourierDesk/internal/projection"
	"github.com/BearBump/CourierDesk/internal/services/broadcast"
	"github.com/BearBump/CourierDesk/internal/services/customers"
	"github.com/BearBump/CourierDesk/internal/services/dashboard"
	"github.com/BearBump/CourierDesk/internal/services/fleet"
	"github.com/BearBump/CourierDesk/internal/services/refresher"
	"github.com/BearBump/CourierDesk/internal/services/reports"
	"github.com/BearBump/CourierDesk/internal/services/session"
	"github.com/BearBump/CourierDesk/internal/services/shipments"
	"github.com/BearBump/CourierDesk/internal/services/transitions"
	"github.com/BearBump/CourierDesk/internal/storage/pgconsole"
)

// consoleStore is what the console keeps locally: the session key/value
// pairs and the transition journal.
type consoleStore interface {
	session.Store
	transitions.Journal
	consoleapi.JournalReader
}

type consoleFactories struct {
	newStorage     func(cfg *config.Config) (store consoleStore, closeFn func(), err error)
	newCache       func(cfg *config.Config) cache.BytesCache
	newRateLimiter func(cfg *config.Config) session.RateLimiter
	newProducer    func(cfg *config.Config) broadcast.Producer
	newConsumer    func(cfg *config.Config, topic, groupID string) broadcast.Consumer
	newBackend     func(s config.Settings, tokens backend.TokenSource) backend.Client
}

func defaultConsoleFactories() consoleFactories {
	return consoleFactories{
		newStorage: func(cfg *config.Config) (consoleStore, func(), error) {
			st, err := pgconsole.New(cfg.PostgresConnString())
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newCache: func(cfg *config.Config) cache.BytesCache {
			return rediscache.New(cfg.RedisAddr())
		},
		newRateLimiter: func(cfg *config.Config) session.RateLimiter {
			return rediscache.NewRateLimiter(cfg.RedisAddr())
		},
		newProducer: func(cfg *config.Config) broadcast.Producer {
			return kafka.NewProducer(cfg.KafkaBrokers())
		},
		newConsumer: func(cfg *config.Config, topic, groupID string) broadcast.Consumer {
			return kafka.NewConsumer(cfg.KafkaBrokers(), topic, groupID)
		},
		newBackend: func(s config.Settings, tokens backend.TokenSource) backend.Client {
			// fake нужен для демо без живого бэкенда
			if s.BackendMode == "fake" {
				return fake.New()
			}
			return backendhttp.New(s.BackendBaseURL, s.BackendTimeout, tokens)
		},
	}
}

// sessionTokens hands the stored session token to the backend client; the
// session itself is built after the client.
type sessionTokens struct {
	s *session.Service
}

func (t *sessionTokens) Token(ctx context.Context) (string, error) {
	if t.s == nil {
		return "", nil
	}
	return t.s.Token(ctx)
}

type consoleRuntime struct {
	api        *consoleapi.ConsoleAPI
	workspace  *shipments.Workspace
	broadcast  *broadcast.Broadcaster
	refreshers []*refresher.Refresher
}

func (rt *consoleRuntime) stats() map[string]any {
	refs := make([]refresher.Stats, 0, len(rt.refreshers))
	for _, r := range rt.refreshers {
		refs = append(refs, r.Stats())
	}
	return map[string]any{
		"workspace":  rt.workspace.Stats(),
		"broadcast":  rt.broadcast.Stats(),
		"refreshers": refs,
	}
}

// RunConsoleAPI wires the console and serves it until ctx ends.
func RunConsoleAPI(ctx context.Context, cfg *config.Config, opts httpOpts, f consoleFactories) error {
	s := cfg.ConsoleSettings()
	if opts.httpAddr == "" {
		opts.httpAddr = s.HTTPAddr
	}

	store, closeFn, err := f.newStorage(cfg)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	tokens := &sessionTokens{}
	be := f.newBackend(s, tokens)
	sess := session.New(be, store).WithRateLimiter(f.newRateLimiter(cfg), s.LoginRateLimit)
	tokens.s = sess

	projector := projection.NewProjector(s.FeeDivisor, s.CurrencySymbol)
	bus := events.NewBus()

	refCache := f.newCache(cfg)
	if c, ok := refCache.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}
	fl := fleet.New(be, refCache, s.ReferenceTTL).WithPublisher(bus)
	ws := shipments.New(be, fl, projector).WithPageSize(s.PageSize)
	shipRef := refresher.New("shipments", ws.Reload).WithInterval(s.ShipmentsPoll)
	detach := ws.Attach(ctx, bus, s.Debounce, shipRef.Trigger)
	defer detach()
	offAgents := bus.Subscribe(events.AgentsRefresh, func(events.Event) { fl.Invalidate(ctx) })
	defer offAgents()

	producer := f.newProducer(cfg)
	if c, ok := producer.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}
	bc := broadcast.New(bus, producer, s.Topic)
	defer bc.Wait()
	tc := transitions.New(be, ws).
		WithBroadcaster(bc).
		WithJournal(store).
		WithFleet(fl).
		WithPickupLead(s.PickupLead)

	dash := dashboard.New(be, projector)
	dashRef := refresher.New("dashboard", dash.Refresh).WithInterval(s.DashboardPoll)
	offDash := events.SubscribeDebounced(bus, events.ShipmentUpdated, s.Debounce, dashRef.Trigger)
	defer offDash()
	cust := customers.New(be)
	custRef := refresher.New("customers", cust.Reload)

	rt := &consoleRuntime{
		api: consoleapi.New(ws, tc, fl).
			WithJournal(store).
			WithCustomers(cust).
			WithDashboard(dash).
			WithReports(reports.New(be)).
			WithSession(sess).
			WithReload(shipRef.Trigger),
		workspace:  ws,
		broadcast:  bc,
		refreshers: []*refresher.Refresher{shipRef, dashRef, custRef},
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	for _, r := range rt.refreshers {
		wg.Add(1)
		go func(r *refresher.Refresher) {
			defer wg.Done()
			_ = r.Run(runCtx)
		}(r)
	}
	// своя группа на инстанс: иначе сообщение получит только один из них
	group := kafka.InstanceGroup(s.KafkaConsumerGroup, bc.Origin())
	if consumer := f.newConsumer(cfg, s.Topic, group); consumer != nil {
		if c, ok := consumer.(io.Closer); ok {
			defer func() { _ = c.Close() }()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := bc.Run(runCtx, consumer); err != nil && runCtx.Err() == nil {
				slog.Error("shipment broadcast consumer stopped", "error", err.Error())
			}
		}()
	}

	err = runHTTPServer(runCtx, opts, rt)
	cancel()
	wg.Wait()
	return err
}

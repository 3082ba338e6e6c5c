// Command commerce wires the commerce modules together and runs a
// demonstration signup flow against a BoltDB data-store.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/linger"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/quayside/commerce/dispatch"
	"github.com/quayside/commerce/envelope"
	"github.com/quayside/commerce/eventbus"
	"github.com/quayside/commerce/handler"
	"github.com/quayside/commerce/identity"
	"github.com/quayside/commerce/locking"
	"github.com/quayside/commerce/message"
	"github.com/quayside/commerce/persistence"
	"github.com/quayside/commerce/persistence/boltpersistence"
	"github.com/quayside/commerce/process"
	"github.com/quayside/commerce/saga/signup"
	"github.com/quayside/commerce/saga/usersync"
	"github.com/quayside/commerce/semaphore"
)

type config struct {
	DBPath      string        `env:"COMMERCE_DB_PATH" envDefault:"commerce.boltdb"`
	Workers     int           `env:"COMMERCE_WORKERS" envDefault:"4"`
	LockTimeout time.Duration `env:"COMMERCE_LOCK_TIMEOUT" envDefault:"30s"`
	Debug       bool          `env:"COMMERCE_DEBUG" envDefault:"false"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) (err error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return err
	}

	logger := logging.DefaultLogger
	if cfg.Debug {
		logger = logging.DebugLogger
	}

	p := &boltpersistence.FileProvider{
		Path: cfg.DBPath,
	}

	ds, err := p.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, ds.Close())
	}()

	queue := &dispatch.Queue{}
	registry := &eventbus.Registry{}

	exec := &handler.EntryPoint{
		Persister: ds,
		Logger:    logger,
	}

	bus := &eventbus.Bus{
		Routes:   registry,
		Exec:     exec,
		Enqueuer: queue,
	}

	// Events recorded by the sagas are published back through the bus.
	exec.Publisher = bus

	register(registry, ds, cfg, logger)

	consumer := &dispatch.Consumer{
		Queue: queue,
		Runner: &dispatch.Runner{
			Routes: registry,
			Exec:   exec,
		},
		Semaphore: semaphore.New(cfg.Workers),
		Logger:    logger,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := consumer.Run(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	g.Go(func() error {
		defer cancel()
		return demo(ctx, bus, ds, logger)
	})

	return g.Wait()
}

// register binds the sagas and an audit logger to the event types they
// consume.
func register(
	registry *eventbus.Registry,
	ds persistence.DataStore,
	cfg config,
	logger logging.Logger,
) {
	marshaler := newMarshaler()
	locks := &locking.Namespace{}
	packer := &envelope.Packer{}

	shop := &shopFacade{logger}
	inventory := &inventoryFacade{logger}
	identities := &identityFacade{logger}

	sagas := []*process.Adaptor{
		{
			Key: usersync.HandlerKey,
			Handler: &usersync.Manager{
				Shop:      shop,
				Inventory: inventory,
			},
		},
		{
			Key: signup.HandlerKey,
			Handler: &signup.Manager{
				Identity:  identities,
				Shop:      shop,
				Inventory: inventory,
			},
		},
	}

	for _, a := range sagas {
		a.Loader = &process.Loader{
			Repository: ds,
			Marshaler:  marshaler,
		}
		a.Marshaler = marshaler
		a.Locks = locks
		a.LockTimeout = cfg.LockTimeout
		a.Packer = packer
		a.Logger = logger
	}

	registry.RegisterAsync(
		message.TypeFor[identity.UserDataEmitted](),
		usersync.HandlerKey,
		sagas[0],
	)

	for _, t := range []message.Type{
		message.TypeFor[identity.RegistrationStarted](),
		message.TypeFor[identity.RegistrationConfirmed](),
		message.TypeFor[identity.UserAccountCreated](),
	} {
		registry.RegisterAsync(t, signup.HandlerKey, sagas[1])
	}

	// The audit log sees every registration event as it is published.
	audit := handler.HandlerFunc(func(
		_ context.Context,
		_ *handler.UnitOfWork,
		env *envelope.Envelope,
	) error {
		logging.Log(logger, "audit: %s", env.Message.MessageDescription())
		return nil
	})

	for _, t := range []message.Type{
		message.TypeFor[identity.RegistrationStarted](),
		message.TypeFor[identity.RegistrationConfirmed](),
		message.TypeFor[identity.UserAccountCreated](),
	} {
		registry.RegisterSync(t, "audit", audit)
	}
}

// demo publishes a signup flow and waits for the saga to complete it.
func demo(
	ctx context.Context,
	bus *eventbus.Bus,
	ds persistence.DataStore,
	logger logging.Logger,
) error {
	packer := &envelope.Packer{}
	regID := "reg-1"

	events := []message.Event{
		identity.RegistrationStarted{
			RegistrationID: regID,
			Email:          "jo@example.org",
			Mobile:         "555-0100",
		},
		identity.RegistrationConfirmed{
			RegistrationID: regID,
		},
	}

	for _, ev := range events {
		if err := bus.Publish(ctx, packer.Pack(ev)); err != nil {
			return err
		}
	}

	// The saga runs on the consumer's workers; poll until it reaches its
	// terminal status.
	for {
		inst, err := ds.LoadProcessInstanceByTag(ctx, signup.HandlerKey, regID)
		if err == nil && inst.Revision >= 3 {
			logging.Log(logger, "registration %s completed", regID)
			return nil
		}

		if err := linger.Sleep(ctx, 100*time.Millisecond); err != nil {
			return err
		}
	}
}

package eventbus_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/quayside/commerce/envelope"
	. "github.com/quayside/commerce/eventbus"
	. "github.com/quayside/commerce/fixtures"
	"github.com/quayside/commerce/handler"
	"github.com/quayside/commerce/message"
)

// enqueuerStub records the envelopes that are enqueued.
type enqueuerStub struct {
	EnqueueFunc func(context.Context, string, *envelope.Envelope) error
	Enqueued    []string
}

func (e *enqueuerStub) Enqueue(
	ctx context.Context,
	key string,
	env *envelope.Envelope,
) error {
	if e.EnqueueFunc != nil {
		if err := e.EnqueueFunc(ctx, key, env); err != nil {
			return err
		}
	}

	e.Enqueued = append(e.Enqueued, key)

	return nil
}

var _ = Describe("type Bus", func() {
	var (
		ctx      context.Context
		cancel   context.CancelFunc
		registry *Registry
		enqueuer *enqueuerStub
		bus      *Bus
		env      *envelope.Envelope
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 1*time.Second)

		registry = &Registry{}
		enqueuer = &enqueuerStub{}

		bus = &Bus{
			Routes: registry,
			Exec: &handler.EntryPoint{
				Persister: &PersisterStub{},
			},
			Enqueuer: enqueuer,
		}

		env = NewEnvelope("<id>", EventA{Value: "<value>"})
	})

	AfterEach(func() {
		cancel()
	})

	Describe("func Publish()", func() {
		It("does nothing if no handlers are registered for the event type", func() {
			err := bus.Publish(ctx, env)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(enqueuer.Enqueued).To(BeEmpty())
		})

		It("invokes sync handlers inline, in registration order", func() {
			var order []string

			for _, key := range []string{"<key-1>", "<key-2>"} {
				key := key
				registry.RegisterSync(
					message.TypeFor[EventA](),
					key,
					&HandlerStub{
						HandleMessageFunc: func(
							_ context.Context,
							_ *handler.UnitOfWork,
							e *envelope.Envelope,
						) error {
							Expect(e).To(BeIdenticalTo(env))
							order = append(order, key)
							return nil
						},
					},
				)
			}

			err := bus.Publish(ctx, env)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(order).To(Equal([]string{"<key-1>", "<key-2>"}))
		})

		It("does not invoke handlers registered for other event types", func() {
			registry.RegisterSync(
				message.TypeFor[EventB](),
				"<key>",
				&HandlerStub{
					HandleMessageFunc: func(
						context.Context,
						*handler.UnitOfWork,
						*envelope.Envelope,
					) error {
						Fail("unexpected call to HandleMessage()")
						return nil
					},
				},
			)

			err := bus.Publish(ctx, env)
			Expect(err).ShouldNot(HaveOccurred())
		})

		It("propagates a sync handler's error and stops publishing", func() {
			registry.RegisterSync(
				message.TypeFor[EventA](),
				"<key-1>",
				&HandlerStub{
					HandleMessageFunc: func(
						context.Context,
						*handler.UnitOfWork,
						*envelope.Envelope,
					) error {
						return errors.New("<error>")
					},
				},
			)

			registry.RegisterSync(
				message.TypeFor[EventA](),
				"<key-2>",
				&HandlerStub{
					HandleMessageFunc: func(
						context.Context,
						*handler.UnitOfWork,
						*envelope.Envelope,
					) error {
						Fail("unexpected call to HandleMessage()")
						return nil
					},
				},
			)

			err := bus.Publish(ctx, env)
			Expect(err).To(MatchError("<error>"))
		})

		It("enqueues the event for each async handler", func() {
			registry.RegisterAsync(message.TypeFor[EventA](), "<key-1>", &HandlerStub{})
			registry.RegisterAsync(message.TypeFor[EventA](), "<key-2>", &HandlerStub{})

			err := bus.Publish(ctx, env)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(enqueuer.Enqueued).To(Equal([]string{"<key-1>", "<key-2>"}))
		})

		It("does not invoke async handlers inline", func() {
			registry.RegisterAsync(
				message.TypeFor[EventA](),
				"<key>",
				&HandlerStub{
					HandleMessageFunc: func(
						context.Context,
						*handler.UnitOfWork,
						*envelope.Envelope,
					) error {
						Fail("unexpected call to HandleMessage()")
						return nil
					},
				},
			)

			err := bus.Publish(ctx, env)
			Expect(err).ShouldNot(HaveOccurred())
		})

		It("propagates enqueue failures", func() {
			registry.RegisterAsync(message.TypeFor[EventA](), "<key>", &HandlerStub{})

			enqueuer.EnqueueFunc = func(
				context.Context,
				string,
				*envelope.Envelope,
			) error {
				return errors.New("<enqueue error>")
			}

			err := bus.Publish(ctx, env)
			Expect(err).To(MatchError("<enqueue error>"))
		})
	})
})

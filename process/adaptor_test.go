package process_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/quayside/commerce/envelope"
	. "github.com/quayside/commerce/fixtures"
	"github.com/quayside/commerce/handler"
	"github.com/quayside/commerce/locking"
	"github.com/quayside/commerce/message"
	"github.com/quayside/commerce/persistence"
	. "github.com/quayside/commerce/process"
)

var _ = Describe("type Adaptor", func() {
	var (
		ctx       context.Context
		cancel    context.CancelFunc
		dataStore *DataStoreStub
		manager   *ManagerStub
		adaptor   *Adaptor
		ep        *handler.EntryPoint
		env       *envelope.Envelope
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 3*time.Second)

		dataStore = NewDataStoreStub()

		manager = &ManagerStub{
			RouteEventToInstanceFunc: func(
				_ context.Context,
				_ message.Event,
			) (Route, bool, error) {
				return Route{Tag: "<tag>", Start: true}, true, nil
			},
		}

		adaptor = &Adaptor{
			Key:     "<handler-key>",
			Handler: manager,
			Loader: &Loader{
				Repository: dataStore,
				Marshaler:  Marshaler,
			},
			Marshaler: Marshaler,
			Locks:     &locking.Namespace{},
			Packer: &envelope.Packer{
				GenerateID: func() string {
					return "<packed-id>"
				},
			},
			GenerateID: func() string {
				return "<instance>"
			},
		}

		ep = &handler.EntryPoint{
			Persister: dataStore,
		}

		env = NewEnvelope("<id>", EventA{Value: "<value>"})
	})

	AfterEach(func() {
		dataStore.Close()
		cancel()
	})

	Describe("func HandleMessage()", func() {
		It("does nothing if the manager does not route the event", func() {
			manager.RouteEventToInstanceFunc = func(
				context.Context,
				message.Event,
			) (Route, bool, error) {
				return Route{}, false, nil
			}

			manager.HandleEventFunc = func(
				context.Context,
				Root,
				Scope,
				message.Event,
			) error {
				Fail("unexpected call to HandleEvent()")
				return nil
			}

			err := ep.HandleMessage(ctx, adaptor, env)
			Expect(err).ShouldNot(HaveOccurred())
		})

		It("returns the error produced while routing", func() {
			manager.RouteEventToInstanceFunc = func(
				context.Context,
				message.Event,
			) (Route, bool, error) {
				return Route{}, false, errors.New("<route error>")
			}

			err := ep.HandleMessage(ctx, adaptor, env)
			Expect(err).To(MatchError("<route error>"))
		})

		It("panics if the route has no instance ID or tag", func() {
			manager.RouteEventToInstanceFunc = func(
				context.Context,
				message.Event,
			) (Route, bool, error) {
				return Route{}, true, nil
			}

			Expect(func() {
				ep.HandleMessage(ctx, adaptor, env)
			}).To(Panic())
		})

		When("the route may start a new instance", func() {
			It("creates the instance with the generated ID and the route's tag", func() {
				var instanceID string
				manager.HandleEventFunc = func(
					_ context.Context,
					_ Root,
					s Scope,
					_ message.Event,
				) error {
					instanceID = s.InstanceID()
					return nil
				}

				err := ep.HandleMessage(ctx, adaptor, env)
				Expect(err).ShouldNot(HaveOccurred())
				Expect(instanceID).To(Equal("<instance>"))

				inst, err := dataStore.LoadProcessInstanceByTag(ctx, "<handler-key>", "<tag>")
				Expect(err).ShouldNot(HaveOccurred())
				Expect(inst.InstanceID).To(Equal("<instance>"))
				Expect(inst.Revision).To(BeEquivalentTo(1))
			})

			It("reuses the existing instance when one already has the tag", func() {
				err := ep.HandleMessage(ctx, adaptor, env)
				Expect(err).ShouldNot(HaveOccurred())

				adaptor.GenerateID = func() string {
					Fail("unexpected call to GenerateID()")
					return ""
				}

				err = ep.HandleMessage(ctx, adaptor, env)
				Expect(err).ShouldNot(HaveOccurred())

				inst, err := dataStore.LoadProcessInstanceByTag(ctx, "<handler-key>", "<tag>")
				Expect(err).ShouldNot(HaveOccurred())
				Expect(inst.InstanceID).To(Equal("<instance>"))
				Expect(inst.Revision).To(BeEquivalentTo(2))
			})

			It("persists the state mutated by the manager", func() {
				manager.HandleEventFunc = func(
					_ context.Context,
					r Root,
					_ Scope,
					_ message.Event,
				) error {
					r.(*ProcessRoot).Value = "<mutated>"
					return nil
				}

				err := ep.HandleMessage(ctx, adaptor, env)
				Expect(err).ShouldNot(HaveOccurred())

				inst, err := adaptor.Loader.Load(ctx, "<handler-key>", "<instance>", &ProcessRoot{})
				Expect(err).ShouldNot(HaveOccurred())
				Expect(inst.Root).To(Equal(&ProcessRoot{Value: "<mutated>"}))
			})
		})

		When("the route may not start a new instance", func() {
			BeforeEach(func() {
				manager.RouteEventToInstanceFunc = func(
					context.Context,
					message.Event,
				) (Route, bool, error) {
					return Route{Tag: "<tag>"}, true, nil
				}
			})

			It("returns an OrderingError if no instance has the tag", func() {
				err := ep.HandleMessage(ctx, adaptor, env)
				Expect(err).To(BeAssignableToTypeOf(OrderingError{}))
			})

			It("returns an OrderingError if an instance with the given ID does not exist", func() {
				manager.RouteEventToInstanceFunc = func(
					context.Context,
					message.Event,
				) (Route, bool, error) {
					return Route{InstanceID: "<unknown>"}, true, nil
				}

				err := ep.HandleMessage(ctx, adaptor, env)
				Expect(err).To(BeAssignableToTypeOf(OrderingError{}))
			})
		})

		When("the event is routed by instance ID", func() {
			BeforeEach(func() {
				err := ep.HandleMessage(ctx, adaptor, env)
				Expect(err).ShouldNot(HaveOccurred())

				manager.RouteEventToInstanceFunc = func(
					context.Context,
					message.Event,
				) (Route, bool, error) {
					return Route{InstanceID: "<instance>"}, true, nil
				}
			})

			It("loads the existing state", func() {
				var loaded Root
				manager.HandleEventFunc = func(
					_ context.Context,
					r Root,
					_ Scope,
					_ message.Event,
				) error {
					loaded = r
					return nil
				}

				err := ep.HandleMessage(ctx, adaptor, env)
				Expect(err).ShouldNot(HaveOccurred())
				Expect(loaded).To(Equal(&ProcessRoot{}))
			})
		})

		When("the manager records events", func() {
			It("publishes them as children of the cause after the state is persisted", func() {
				manager.HandleEventFunc = func(
					_ context.Context,
					_ Root,
					s Scope,
					_ message.Event,
				) error {
					s.RecordEvent(EventB{Value: "<child>"})
					return nil
				}

				var published []*envelope.Envelope
				ep.Observers = []handler.Observer{
					func(res handler.Result, err error) {
						Expect(err).ShouldNot(HaveOccurred())
						published = res.Events
					},
				}

				err := ep.HandleMessage(ctx, adaptor, env)
				Expect(err).ShouldNot(HaveOccurred())

				Expect(published).To(HaveLen(1))
				Expect(published[0].Message).To(Equal(EventB{Value: "<child>"}))
				Expect(published[0].CausationID).To(Equal(env.MessageID))
				Expect(published[0].CorrelationID).To(Equal(env.CorrelationID))
			})
		})

		When("the manager fails", func() {
			BeforeEach(func() {
				manager.HandleEventFunc = func(
					context.Context,
					Root,
					Scope,
					message.Event,
				) error {
					return errors.New("<handler error>")
				}
			})

			It("returns the manager's error without persisting any state", func() {
				err := ep.HandleMessage(ctx, adaptor, env)
				Expect(err).To(MatchError("<handler error>"))

				_, err = dataStore.LoadProcessInstanceByTag(ctx, "<handler-key>", "<tag>")
				Expect(err).To(BeAssignableToTypeOf(persistence.UnknownTagError{}))
			})

			It("releases the instance's lock", func() {
				ep.HandleMessage(ctx, adaptor, env)

				k := locking.Key{
					Saga:       "<handler-key>",
					InstanceID: "<tag>",
					Step:       "handle",
				}

				lockCtx, lockCancel := context.WithTimeout(ctx, 50*time.Millisecond)
				defer lockCancel()

				u, err := adaptor.Locks.Lock(lockCtx, k)
				Expect(err).ShouldNot(HaveOccurred())
				u()
			})
		})

		When("the same event is delivered concurrently", func() {
			It("serializes handling and persists exactly one instance", func() {
				var (
					active  int32
					overlap int32
					ids     sync.Map
				)

				seq := int32(0)
				adaptor.GenerateID = func() string {
					n := atomic.AddInt32(&seq, 1)
					return fmt.Sprintf("<instance-%d>", n)
				}

				manager.HandleEventFunc = func(
					_ context.Context,
					_ Root,
					s Scope,
					_ message.Event,
				) error {
					if atomic.AddInt32(&active, 1) > 1 {
						atomic.StoreInt32(&overlap, 1)
					}
					defer atomic.AddInt32(&active, -1)

					time.Sleep(10 * time.Millisecond)
					ids.Store(s.InstanceID(), struct{}{})

					return nil
				}

				var g sync.WaitGroup
				g.Add(2)

				for i := 0; i < 2; i++ {
					go func() {
						defer GinkgoRecover()
						defer g.Done()

						err := ep.HandleMessage(ctx, adaptor, env)
						Expect(err).ShouldNot(HaveOccurred())
					}()
				}

				g.Wait()

				Expect(atomic.LoadInt32(&overlap)).To(
					BeZero(),
					"two deliveries executed the manager concurrently",
				)

				var distinct []string
				ids.Range(func(k, _ interface{}) bool {
					distinct = append(distinct, k.(string))
					return true
				})
				Expect(distinct).To(HaveLen(1))

				inst, err := dataStore.LoadProcessInstanceByTag(ctx, "<handler-key>", "<tag>")
				Expect(err).ShouldNot(HaveOccurred())
				Expect(inst.Revision).To(BeEquivalentTo(2))
			})
		})

		When("the same instance is addressed by tag and by instance ID concurrently", func() {
			It("serializes handling", func() {
				manager.RouteEventToInstanceFunc = func(
					_ context.Context,
					ev message.Event,
				) (Route, bool, error) {
					switch ev.(type) {
					case EventA:
						return Route{Tag: "<tag>", Start: true}, true, nil
					case EventB:
						return Route{InstanceID: "<instance>"}, true, nil
					default:
						return Route{}, false, nil
					}
				}

				err := ep.HandleMessage(ctx, adaptor, env)
				Expect(err).ShouldNot(HaveOccurred())

				var (
					active  int32
					overlap int32
				)

				manager.HandleEventFunc = func(
					context.Context,
					Root,
					Scope,
					message.Event,
				) error {
					if atomic.AddInt32(&active, 1) > 1 {
						atomic.StoreInt32(&overlap, 1)
					}
					defer atomic.AddInt32(&active, -1)

					time.Sleep(10 * time.Millisecond)

					return nil
				}

				events := []*envelope.Envelope{
					NewEnvelope("<id-a>", EventA{Value: "<value>"}),
					NewEnvelope("<id-b>", EventB{Value: "<value>"}),
				}

				var g sync.WaitGroup
				g.Add(len(events))

				for _, env := range events {
					env := env

					go func() {
						defer GinkgoRecover()
						defer g.Done()

						err := ep.HandleMessage(ctx, adaptor, env)
						Expect(err).ShouldNot(HaveOccurred())
					}()
				}

				g.Wait()

				Expect(atomic.LoadInt32(&overlap)).To(
					BeZero(),
					"two deliveries executed the manager concurrently",
				)

				inst, err := dataStore.LoadProcessInstanceByTag(ctx, "<handler-key>", "<tag>")
				Expect(err).ShouldNot(HaveOccurred())
				Expect(inst.Revision).To(BeEquivalentTo(3))
			})
		})

		When("the lock can not be acquired within the timeout", func() {
			It("returns an error", func() {
				adaptor.LockTimeout = 20 * time.Millisecond

				unlock, err := adaptor.Locks.Lock(ctx, locking.Key{
					Saga:       "<handler-key>",
					InstanceID: "<tag>",
					Step:       "handle",
				})
				Expect(err).ShouldNot(HaveOccurred())
				defer unlock()

				err = ep.HandleMessage(ctx, adaptor, env)
				Expect(err).To(Equal(context.DeadlineExceeded))
			})
		})
	})
})

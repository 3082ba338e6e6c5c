package handler_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/quayside/commerce/envelope"
	. "github.com/quayside/commerce/fixtures"
	. "github.com/quayside/commerce/handler"
	"github.com/quayside/commerce/persistence"
)

// publisherStub records the envelopes that are published to it.
type publisherStub struct {
	PublishFunc func(context.Context, *envelope.Envelope) error
	Published   []*envelope.Envelope
}

func (p *publisherStub) Publish(ctx context.Context, env *envelope.Envelope) error {
	if p.PublishFunc != nil {
		if err := p.PublishFunc(ctx, env); err != nil {
			return err
		}
	}

	p.Published = append(p.Published, env)

	return nil
}

var _ = Describe("type EntryPoint", func() {
	var (
		ctx       context.Context
		cancel    context.CancelFunc
		persister *PersisterStub
		publisher *publisherStub
		hand      *HandlerStub
		env       *envelope.Envelope
		ep        *EntryPoint
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 1*time.Second)

		persister = &PersisterStub{}
		publisher = &publisherStub{}
		hand = &HandlerStub{}
		env = NewEnvelope("<id>", EventA{Value: "<value>"})

		ep = &EntryPoint{
			Persister: persister,
			Publisher: publisher,
		}
	})

	AfterEach(func() {
		cancel()
	})

	Describe("func HandleMessage()", func() {
		It("persists the operations staged by the handler", func() {
			op := persistence.SaveProcessInstance{
				Instance: persistence.ProcessInstance{
					HandlerKey: "<handler-key>",
					InstanceID: "<instance>",
				},
			}

			hand.HandleMessageFunc = func(
				_ context.Context,
				w *UnitOfWork,
				_ *envelope.Envelope,
			) error {
				w.Do(op)
				return nil
			}

			called := false
			persister.PersistFunc = func(
				_ context.Context,
				b persistence.Batch,
			) error {
				called = true
				Expect(b).To(Equal(persistence.Batch{op}))
				return nil
			}

			err := ep.HandleMessage(ctx, hand, env)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(called).To(BeTrue())
		})

		It("publishes recorded events after the unit-of-work is persisted, in the order they were recorded", func() {
			first := NewEnvelope("<first>", EventA{Value: "<first>"})
			second := NewEnvelope("<second>", EventB{Value: "<second>"})

			hand.HandleMessageFunc = func(
				_ context.Context,
				w *UnitOfWork,
				_ *envelope.Envelope,
			) error {
				w.RecordEvent(first)
				w.RecordEvent(second)
				return nil
			}

			persisted := false
			persister.PersistFunc = func(
				context.Context,
				persistence.Batch,
			) error {
				persisted = true
				Expect(publisher.Published).To(BeEmpty())
				return nil
			}

			err := ep.HandleMessage(ctx, hand, env)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(persisted).To(BeTrue())
			Expect(publisher.Published).To(Equal(
				[]*envelope.Envelope{first, second},
			))
		})

		It("notifies the observers of a successful result", func() {
			recorded := NewEnvelope("<recorded>", EventA{})

			hand.HandleMessageFunc = func(
				_ context.Context,
				w *UnitOfWork,
				_ *envelope.Envelope,
			) error {
				w.RecordEvent(recorded)
				return nil
			}

			var results []Result
			ep.Observers = []Observer{
				func(res Result, err error) {
					Expect(err).ShouldNot(HaveOccurred())
					results = append(results, res)
				},
			}

			err := ep.HandleMessage(ctx, hand, env)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Events).To(Equal(
				[]*envelope.Envelope{recorded},
			))
		})

		It("notifies observers registered by the handler itself", func() {
			notified := false

			hand.HandleMessageFunc = func(
				_ context.Context,
				w *UnitOfWork,
				_ *envelope.Envelope,
			) error {
				w.Observe(func(Result, error) {
					notified = true
				})
				return nil
			}

			err := ep.HandleMessage(ctx, hand, env)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(notified).To(BeTrue())
		})

		When("the handler fails", func() {
			BeforeEach(func() {
				hand.HandleMessageFunc = func(
					_ context.Context,
					w *UnitOfWork,
					_ *envelope.Envelope,
				) error {
					w.RecordEvent(NewEnvelope("<recorded>", EventA{}))
					return errors.New("<error>")
				}
			})

			It("returns the handler's error without persisting", func() {
				persister.PersistFunc = func(
					context.Context,
					persistence.Batch,
				) error {
					Fail("unexpected call to Persist()")
					return nil
				}

				err := ep.HandleMessage(ctx, hand, env)
				Expect(err).To(MatchError("<error>"))
			})

			It("does not publish any events", func() {
				ep.HandleMessage(ctx, hand, env)
				Expect(publisher.Published).To(BeEmpty())
			})

			It("notifies the observers of the failure", func() {
				var errs []error
				ep.Observers = []Observer{
					func(_ Result, err error) {
						errs = append(errs, err)
					},
				}

				ep.HandleMessage(ctx, hand, env)
				Expect(errs).To(HaveLen(1))
				Expect(errs[0]).To(MatchError("<error>"))
			})
		})

		When("the unit-of-work can not be persisted", func() {
			BeforeEach(func() {
				hand.HandleMessageFunc = func(
					_ context.Context,
					w *UnitOfWork,
					_ *envelope.Envelope,
				) error {
					w.RecordEvent(NewEnvelope("<recorded>", EventA{}))
					return nil
				}

				persister.PersistFunc = func(
					context.Context,
					persistence.Batch,
				) error {
					return errors.New("<persist error>")
				}
			})

			It("returns the persister's error", func() {
				err := ep.HandleMessage(ctx, hand, env)
				Expect(err).To(MatchError("<persist error>"))
			})

			It("does not publish any events", func() {
				ep.HandleMessage(ctx, hand, env)
				Expect(publisher.Published).To(BeEmpty())
			})

			It("notifies the observers of the failure", func() {
				var errs []error
				ep.Observers = []Observer{
					func(_ Result, err error) {
						errs = append(errs, err)
					},
				}

				ep.HandleMessage(ctx, hand, env)
				Expect(errs).To(HaveLen(1))
				Expect(errs[0]).To(MatchError("<persist error>"))
			})
		})

		When("publishing fails", func() {
			It("returns the publisher's error", func() {
				hand.HandleMessageFunc = func(
					_ context.Context,
					w *UnitOfWork,
					_ *envelope.Envelope,
				) error {
					w.RecordEvent(NewEnvelope("<recorded>", EventA{}))
					return nil
				}

				publisher.PublishFunc = func(
					context.Context,
					*envelope.Envelope,
				) error {
					return errors.New("<publish error>")
				}

				err := ep.HandleMessage(ctx, hand, env)
				Expect(err).To(MatchError("<publish error>"))
			})
		})
	})
})

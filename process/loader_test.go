package process_test

import (
	"context"
	"errors"
	"time"

	"github.com/dogmatiq/marshalkit"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/quayside/commerce/fixtures"
	"github.com/quayside/commerce/persistence"
	. "github.com/quayside/commerce/process"
)

var _ = Describe("type Loader", func() {
	var (
		ctx       context.Context
		cancel    context.CancelFunc
		dataStore *DataStoreStub
		loader    *Loader
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 3*time.Second)

		dataStore = NewDataStoreStub()

		loader = &Loader{
			Repository: dataStore,
			Marshaler:  Marshaler,
		}
	})

	AfterEach(func() {
		dataStore.Close()
		cancel()
	})

	Describe("func Load()", func() {
		It("returns the base root if the instance has never been persisted", func() {
			base := &ProcessRoot{}

			inst, err := loader.Load(ctx, "<handler-key>", "<instance>", base)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(inst.Revision).To(BeEquivalentTo(0))
			Expect(inst.Root).To(BeIdenticalTo(base))
		})

		It("unmarshals the persisted root", func() {
			err := dataStore.Persist(
				ctx,
				persistence.Batch{
					persistence.SaveProcessInstance{
						Instance: persistence.ProcessInstance{
							HandlerKey: "<handler-key>",
							InstanceID: "<instance>",
							Packet: marshalkit.MustMarshal(
								Marshaler,
								&ProcessRoot{Value: "<value>"},
							),
						},
					},
				},
			)
			Expect(err).ShouldNot(HaveOccurred())

			inst, err := loader.Load(ctx, "<handler-key>", "<instance>", &ProcessRoot{})
			Expect(err).ShouldNot(HaveOccurred())
			Expect(inst.Revision).To(BeEquivalentTo(1))
			Expect(inst.Root).To(Equal(&ProcessRoot{Value: "<value>"}))
		})

		It("returns an error if the repository fails", func() {
			dataStore.LoadProcessInstanceFunc = func(
				context.Context,
				string, string,
			) (persistence.ProcessInstance, error) {
				return persistence.ProcessInstance{}, errors.New("<error>")
			}

			_, err := loader.Load(ctx, "<handler-key>", "<instance>", &ProcessRoot{})
			Expect(err).To(MatchError("<error>"))
		})
	})

	Describe("func LoadByTag()", func() {
		It("reports that no instance has the tag", func() {
			_, ok, err := loader.LoadByTag(ctx, "<handler-key>", "<tag>")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("returns the instance that has the tag", func() {
			err := dataStore.Persist(
				ctx,
				persistence.Batch{
					persistence.SaveProcessInstance{
						Instance: persistence.ProcessInstance{
							HandlerKey: "<handler-key>",
							InstanceID: "<instance>",
							Tag:        "<tag>",
							Packet: marshalkit.MustMarshal(
								Marshaler,
								&ProcessRoot{Value: "<value>"},
							),
						},
					},
				},
			)
			Expect(err).ShouldNot(HaveOccurred())

			inst, ok, err := loader.LoadByTag(ctx, "<handler-key>", "<tag>")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(inst.InstanceID).To(Equal("<instance>"))
			Expect(inst.Root).To(Equal(&ProcessRoot{Value: "<value>"}))
		})

		It("returns an error if the tag is ambiguous", func() {
			dataStore.LoadProcessInstanceByTagFunc = func(
				context.Context,
				string, string,
			) (persistence.ProcessInstance, error) {
				return persistence.ProcessInstance{}, persistence.AmbiguousTagError{
					HandlerKey:  "<handler-key>",
					Tag:         "<tag>",
					InstanceIDs: []string{"<instance-a>", "<instance-b>"},
				}
			}

			_, _, err := loader.LoadByTag(ctx, "<handler-key>", "<tag>")
			Expect(err).To(BeAssignableToTypeOf(persistence.AmbiguousTagError{}))
		})
	})
})

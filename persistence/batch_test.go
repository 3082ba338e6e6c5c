package persistence_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/quayside/commerce/persistence"
)

// visitorStub records the operations it visits.
type visitorStub struct {
	VisitSaveProcessInstanceFunc func(context.Context, SaveProcessInstance) error
	Visited                      []Operation
}

func (v *visitorStub) VisitSaveProcessInstance(
	ctx context.Context,
	op SaveProcessInstance,
) error {
	v.Visited = append(v.Visited, op)

	if v.VisitSaveProcessInstanceFunc != nil {
		return v.VisitSaveProcessInstanceFunc(ctx, op)
	}

	return nil
}

var _ = Describe("type Batch", func() {
	Describe("func MustValidate()", func() {
		It("does not panic if the batch contains operations on distinct entities", func() {
			b := Batch{
				SaveProcessInstance{
					Instance: ProcessInstance{
						HandlerKey: "<handler-key>",
						InstanceID: "<instance-a>",
					},
				},
				SaveProcessInstance{
					Instance: ProcessInstance{
						HandlerKey: "<handler-key>",
						InstanceID: "<instance-b>",
					},
				},
			}

			Expect(b.MustValidate).NotTo(Panic())
		})

		It("panics if the batch contains multiple operations on the same entity", func() {
			b := Batch{
				SaveProcessInstance{
					Instance: ProcessInstance{
						HandlerKey: "<handler-key>",
						InstanceID: "<instance>",
					},
				},
				SaveProcessInstance{
					Instance: ProcessInstance{
						HandlerKey: "<handler-key>",
						InstanceID: "<instance>",
						Revision:   1,
					},
				},
			}

			Expect(b.MustValidate).To(Panic())
		})
	})

	Describe("func AcceptVisitor()", func() {
		It("visits each operation in order", func() {
			b := Batch{
				SaveProcessInstance{
					Instance: ProcessInstance{
						HandlerKey: "<handler-key>",
						InstanceID: "<instance-a>",
					},
				},
				SaveProcessInstance{
					Instance: ProcessInstance{
						HandlerKey: "<handler-key>",
						InstanceID: "<instance-b>",
					},
				},
			}

			v := &visitorStub{}

			err := b.AcceptVisitor(context.Background(), v)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(v.Visited).To(Equal([]Operation{b[0], b[1]}))
		})

		It("stops visiting on the first failure", func() {
			b := Batch{
				SaveProcessInstance{
					Instance: ProcessInstance{
						HandlerKey: "<handler-key>",
						InstanceID: "<instance-a>",
					},
				},
				SaveProcessInstance{
					Instance: ProcessInstance{
						HandlerKey: "<handler-key>",
						InstanceID: "<instance-b>",
					},
				},
			}

			v := &visitorStub{
				VisitSaveProcessInstanceFunc: func(
					_ context.Context,
					op SaveProcessInstance,
				) error {
					return errors.New("<error>")
				},
			}

			err := b.AcceptVisitor(context.Background(), v)
			Expect(err).To(MatchError("<error>"))
			Expect(v.Visited).To(HaveLen(1))
		})
	})
})

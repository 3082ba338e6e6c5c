package providertest

import (
	"context"

	"github.com/onsi/gomega"

	"github.com/quayside/commerce/persistence"
)

// persist persists a batch of operations and asserts that it succeeds.
func persist(
	ctx context.Context,
	p persistence.Persister,
	ops ...persistence.Operation,
) {
	err := p.Persist(ctx, persistence.Batch(ops))
	gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
}

// loadProcessInstance loads a process instance and asserts that it succeeds.
func loadProcessInstance(
	ctx context.Context,
	r persistence.ProcessRepository,
	hk, id string,
) persistence.ProcessInstance {
	inst, err := r.LoadProcessInstance(ctx, hk, id)
	gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
	return inst
}

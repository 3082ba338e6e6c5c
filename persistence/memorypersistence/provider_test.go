package memorypersistence_test

import (
	"context"

	. "github.com/onsi/ginkgo"

	"github.com/quayside/commerce/persistence"
	"github.com/quayside/commerce/persistence/internal/providertest"

	. "github.com/quayside/commerce/persistence/memorypersistence"
)

var _ = Describe("type Provider", func() {
	providertest.Declare(
		func(ctx context.Context, in providertest.In) providertest.Out {
			return providertest.Out{
				NewProvider: func() (persistence.Provider, func()) {
					return &Provider{}, nil
				},
			}
		},
		nil,
	)
})

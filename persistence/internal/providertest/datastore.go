package providertest

import (
	"github.com/onsi/ginkgo"
	"github.com/onsi/gomega"

	"github.com/quayside/commerce/persistence"
)

// declareDataStoreTests declares a functional test-suite for a specific
// persistence.DataStore implementation.
func declareDataStoreTests(tc *TestContext) {
	ginkgo.Describe("type persistence.DataStore", func() {
		var (
			dataStore persistence.DataStore
			tearDown  func()
		)

		ginkgo.BeforeEach(func() {
			dataStore, tearDown = tc.SetupDataStore()
		})

		ginkgo.AfterEach(func() {
			tearDown()
		})

		ginkgo.Describe("func Close()", func() {
			ginkgo.It("returns an error if the data-store is already closed", func() {
				err := dataStore.Close()
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())

				err = dataStore.Close()
				gomega.Expect(err).To(gomega.Equal(persistence.ErrDataStoreClosed))
			})

			ginkgo.It("prevents further reads", func() {
				dataStore.Close()

				_, err := dataStore.LoadProcessInstance(tc.Context, "<handler-key>", "<instance>")
				gomega.Expect(err).To(gomega.Equal(persistence.ErrDataStoreClosed))

				_, err = dataStore.LoadProcessInstanceByTag(tc.Context, "<handler-key>", "<tag>")
				gomega.Expect(err).To(gomega.Equal(persistence.ErrDataStoreClosed))
			})

			ginkgo.It("prevents further writes", func() {
				dataStore.Close()

				err := dataStore.Persist(
					tc.Context,
					persistence.Batch{
						persistence.SaveProcessInstance{
							Instance: persistence.ProcessInstance{
								HandlerKey: "<handler-key>",
								InstanceID: "<instance>",
							},
						},
					},
				)
				gomega.Expect(err).To(gomega.Equal(persistence.ErrDataStoreClosed))
			})
		})
	})
}

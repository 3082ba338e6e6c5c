package providertest

import (
	"sync"

	"github.com/dogmatiq/marshalkit"
	"github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	"github.com/onsi/gomega"

	"github.com/quayside/commerce/internal/x/gomegax"
	"github.com/quayside/commerce/persistence"
)

// declareProcessOperationTests declares a functional test-suite for
// persistence operations related to processes.
func declareProcessOperationTests(tc *TestContext) {
	ginkgo.Context("process operations", func() {
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

		ginkgo.Describe("type persistence.SaveProcessInstance", func() {
			ginkgo.When("the instance does not exist", func() {
				ginkgo.It("saves the instance with a revision of 1", func() {
					persist(
						tc.Context,
						dataStore,
						persistence.SaveProcessInstance{
							Instance: persistence.ProcessInstance{
								HandlerKey: "<handler-key>",
								InstanceID: "<instance>",
							},
						},
					)

					inst := loadProcessInstance(tc.Context, dataStore, "<handler-key>", "<instance>")
					gomega.Expect(inst.Revision).To(gomega.BeEquivalentTo(1))
				})

				ginkgo.It("does not save the instance when a conflict occurs", func() {
					op := persistence.SaveProcessInstance{
						Instance: persistence.ProcessInstance{
							HandlerKey: "<handler-key>",
							InstanceID: "<instance>",
							Revision:   123,
						},
					}

					err := dataStore.Persist(
						tc.Context,
						persistence.Batch{op},
					)
					gomega.Expect(err).To(gomega.Equal(
						persistence.ConflictError{
							Cause: op,
						},
					))

					inst := loadProcessInstance(tc.Context, dataStore, "<handler-key>", "<instance>")
					gomega.Expect(inst).To(gomegax.EqualX(
						persistence.ProcessInstance{
							HandlerKey: "<handler-key>",
							InstanceID: "<instance>",
							Revision:   0,
						},
					))
				})
			})

			ginkgo.When("the instance exists", func() {
				ginkgo.BeforeEach(func() {
					persist(
						tc.Context,
						dataStore,
						persistence.SaveProcessInstance{
							Instance: persistence.ProcessInstance{
								HandlerKey: "<handler-key>",
								InstanceID: "<instance>",
							},
						},
					)
				})

				ginkgo.It("increments the revision even if nothing else has changed", func() {
					persist(
						tc.Context,
						dataStore,
						persistence.SaveProcessInstance{
							Instance: persistence.ProcessInstance{
								HandlerKey: "<handler-key>",
								InstanceID: "<instance>",
								Revision:   1,
							},
						},
					)

					inst := loadProcessInstance(tc.Context, dataStore, "<handler-key>", "<instance>")
					gomega.Expect(inst.Revision).To(gomega.BeEquivalentTo(2))
				})

				table.DescribeTable(
					"it does not save the instance when a conflict occurs",
					func(conflictingRevision int) {
						// Increment the instance once more so that it's up to
						// revision 2. Otherwise we can't test for 1 as a
						// too-low value.
						persist(
							tc.Context,
							dataStore,
							persistence.SaveProcessInstance{
								Instance: persistence.ProcessInstance{
									HandlerKey: "<handler-key>",
									InstanceID: "<instance>",
									Revision:   1,
								},
							},
						)

						op := persistence.SaveProcessInstance{
							Instance: persistence.ProcessInstance{
								HandlerKey: "<handler-key>",
								InstanceID: "<instance>",
								Revision:   uint64(conflictingRevision),
							},
						}

						err := dataStore.Persist(
							tc.Context,
							persistence.Batch{op},
						)
						gomega.Expect(err).To(gomega.Equal(
							persistence.ConflictError{
								Cause: op,
							},
						))

						inst := loadProcessInstance(tc.Context, dataStore, "<handler-key>", "<instance>")
						gomega.Expect(inst.Revision).To(gomega.BeEquivalentTo(2))
					},
					table.Entry("zero", 0),
					table.Entry("too low", 1),
					table.Entry("too high", 100),
				)

				ginkgo.It("updates the tag index when the tag changes", func() {
					persist(
						tc.Context,
						dataStore,
						persistence.SaveProcessInstance{
							Instance: persistence.ProcessInstance{
								HandlerKey: "<handler-key>",
								InstanceID: "<instance>",
								Tag:        "<tag-1>",
								Revision:   1,
							},
						},
					)

					persist(
						tc.Context,
						dataStore,
						persistence.SaveProcessInstance{
							Instance: persistence.ProcessInstance{
								HandlerKey: "<handler-key>",
								InstanceID: "<instance>",
								Tag:        "<tag-2>",
								Revision:   2,
							},
						},
					)

					_, err := dataStore.LoadProcessInstanceByTag(tc.Context, "<handler-key>", "<tag-1>")
					gomega.Expect(err).To(gomega.Equal(
						persistence.UnknownTagError{
							HandlerKey: "<handler-key>",
							Tag:        "<tag-1>",
						},
					))

					inst, err := dataStore.LoadProcessInstanceByTag(tc.Context, "<handler-key>", "<tag-2>")
					gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
					gomega.Expect(inst.InstanceID).To(gomega.Equal("<instance>"))
				})
			})

			ginkgo.It("serializes operations from concurrent persist calls", func() {
				var g sync.WaitGroup

				fn := func(id string) {
					defer ginkgo.GinkgoRecover()
					defer g.Done()

					persist(
						tc.Context,
						dataStore,
						persistence.SaveProcessInstance{
							Instance: persistence.ProcessInstance{
								HandlerKey: "<handler-key>",
								InstanceID: id,
							},
						},
					)
				}

				g.Add(3)
				go fn("<instance-a>")
				go fn("<instance-b>")
				go fn("<instance-c>")
				g.Wait()

				for _, id := range []string{"<instance-a>", "<instance-b>", "<instance-c>"} {
					inst := loadProcessInstance(tc.Context, dataStore, "<handler-key>", id)
					gomega.Expect(inst.Revision).To(gomega.BeEquivalentTo(1))
				}
			})
		})
	})
}

// declareProcessRepositoryTests declares a functional test-suite for a
// specific persistence.ProcessRepository implementation.
func declareProcessRepositoryTests(tc *TestContext) {
	ginkgo.Describe("type persistence.ProcessRepository", func() {
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

		ginkgo.Describe("func LoadProcessInstance()", func() {
			ginkgo.It("returns an instance with a revision of zero if the instance does not exist", func() {
				inst := loadProcessInstance(tc.Context, dataStore, "<handler-key>", "<instance>")
				gomega.Expect(inst).To(gomegax.EqualX(
					persistence.ProcessInstance{
						HandlerKey: "<handler-key>",
						InstanceID: "<instance>",
					},
				))
			})

			ginkgo.It("returns the current persisted instance", func() {
				expect := persistence.ProcessInstance{
					HandlerKey: "<handler-key>",
					InstanceID: "<instance>",
					Tag:        "<tag>",
					Packet: marshalkit.Packet{
						MediaType: "<media-type>",
						Data:      []byte("<data>"),
					},
				}
				persist(
					tc.Context,
					dataStore,
					persistence.SaveProcessInstance{
						Instance: expect,
					},
				)
				expect.Revision++

				inst := loadProcessInstance(tc.Context, dataStore, "<handler-key>", "<instance>")
				gomega.Expect(inst).To(gomegax.EqualX(expect))
			})
		})

		ginkgo.Describe("func LoadProcessInstanceByTag()", func() {
			ginkgo.It("returns an UnknownTagError if no instance has the tag", func() {
				_, err := dataStore.LoadProcessInstanceByTag(tc.Context, "<handler-key>", "<tag>")
				gomega.Expect(err).To(gomega.Equal(
					persistence.UnknownTagError{
						HandlerKey: "<handler-key>",
						Tag:        "<tag>",
					},
				))
			})

			ginkgo.It("returns the instance that has the tag", func() {
				expect := persistence.ProcessInstance{
					HandlerKey: "<handler-key>",
					InstanceID: "<instance>",
					Tag:        "<tag>",
					Packet: marshalkit.Packet{
						MediaType: "<media-type>",
						Data:      []byte("<data>"),
					},
				}
				persist(
					tc.Context,
					dataStore,
					persistence.SaveProcessInstance{
						Instance: expect,
					},
				)
				expect.Revision++

				inst, err := dataStore.LoadProcessInstanceByTag(tc.Context, "<handler-key>", "<tag>")
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(inst).To(gomegax.EqualX(expect))
			})

			ginkgo.It("does not match instances of other sagas", func() {
				persist(
					tc.Context,
					dataStore,
					persistence.SaveProcessInstance{
						Instance: persistence.ProcessInstance{
							HandlerKey: "<other-handler-key>",
							InstanceID: "<instance>",
							Tag:        "<tag>",
						},
					},
				)

				_, err := dataStore.LoadProcessInstanceByTag(tc.Context, "<handler-key>", "<tag>")
				gomega.Expect(err).To(gomega.Equal(
					persistence.UnknownTagError{
						HandlerKey: "<handler-key>",
						Tag:        "<tag>",
					},
				))
			})

			ginkgo.It("returns an AmbiguousTagError if multiple instances have the tag", func() {
				for _, id := range []string{"<instance-a>", "<instance-b>"} {
					persist(
						tc.Context,
						dataStore,
						persistence.SaveProcessInstance{
							Instance: persistence.ProcessInstance{
								HandlerKey: "<handler-key>",
								InstanceID: id,
								Tag:        "<tag>",
							},
						},
					)
				}

				_, err := dataStore.LoadProcessInstanceByTag(tc.Context, "<handler-key>", "<tag>")
				gomega.Expect(err).To(gomega.Equal(
					persistence.AmbiguousTagError{
						HandlerKey:  "<handler-key>",
						Tag:         "<tag>",
						InstanceIDs: []string{"<instance-a>", "<instance-b>"},
					},
				))
			})
		})
	})
}

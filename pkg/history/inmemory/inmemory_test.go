package inmemory_test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/legalqa/pkg/history"
	"github.com/papercomputeco/legalqa/pkg/history/inmemory"
)

var _ history.Driver = (*inmemory.Driver)(nil)

var _ = Describe("Driver", func() {
	var (
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		driver = inmemory.NewDriver()
		ctx = context.Background()
	})

	It("returns all appended entries oldest first with ids 1..m", func() {
		for i := range 5 {
			_, err := driver.Append(ctx, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
			Expect(err).NotTo(HaveOccurred())
		}

		entries, err := driver.List(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(5))
		for i, e := range entries {
			Expect(e.ID).To(Equal(int64(i + 1)))
			Expect(e.Question).To(Equal(fmt.Sprintf("q%d", i)))
			Expect(e.Timestamp.IsZero()).To(BeFalse())
		}
	})

	It("returns the most recent window in chronological order", func() {
		for i := range 5 {
			_, err := driver.Append(ctx, fmt.Sprintf("q%d", i), "a")
			Expect(err).NotTo(HaveOccurred())
		}

		entries, err := driver.List(ctx, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].ID).To(Equal(int64(4)))
		Expect(entries[1].ID).To(Equal(int64(5)))
	})

	It("returns an empty slice for a non-positive limit", func() {
		_, err := driver.Append(ctx, "q", "a")
		Expect(err).NotTo(HaveOccurred())

		entries, err := driver.List(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})

	It("empties the log on Clear without reusing ids", func() {
		_, err := driver.Append(ctx, "q1", "a1")
		Expect(err).NotTo(HaveOccurred())
		Expect(driver.Clear(ctx)).To(Succeed())

		entries, err := driver.List(ctx, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())

		n, err := driver.Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(0))

		e, err := driver.Append(ctx, "q2", "a2")
		Expect(err).NotTo(HaveOccurred())
		Expect(e.ID).To(Equal(int64(2)))
	})

	It("returns copies that callers cannot mutate", func() {
		_, err := driver.Append(ctx, "q", "a")
		Expect(err).NotTo(HaveOccurred())

		entries, _ := driver.List(ctx, 1)
		entries[0].Answer = "changed"

		again, _ := driver.List(ctx, 1)
		Expect(again[0].Answer).To(Equal("a"))
	})

	It("assigns gap-free ids under concurrent appends", func() {
		const writers = 64

		var wg sync.WaitGroup
		ids := make(chan int64, writers)
		for i := range writers {
			wg.Add(2)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				e, err := driver.Append(ctx, fmt.Sprintf("q%d", i), "a")
				Expect(err).NotTo(HaveOccurred())
				ids <- e.ID
			}()
			go func() {
				defer wg.Done()
				_, _ = driver.List(ctx, 10)
			}()
		}
		wg.Wait()
		close(ids)

		got := make([]int, 0, writers)
		for id := range ids {
			got = append(got, int(id))
		}
		sort.Ints(got)
		for i, id := range got {
			Expect(id).To(Equal(i + 1))
		}

		entries, err := driver.List(ctx, writers)
		Expect(err).NotTo(HaveOccurred())
		for i := 1; i < len(entries); i++ {
			Expect(entries[i].ID).To(BeNumerically(">", entries[i-1].ID))
		}
	})
})

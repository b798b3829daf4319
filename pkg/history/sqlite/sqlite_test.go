package sqlite_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/legalqa/pkg/history"
	"github.com/papercomputeco/legalqa/pkg/history/sqlite"
)

var _ history.Driver = (*sqlite.Driver)(nil)

var _ = Describe("Driver", func() {
	var (
		driver *sqlite.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		driver, err = sqlite.NewDriver(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if driver != nil {
			driver.Close()
		}
	})

	Describe("NewDriver", func() {
		It("creates a driver with file database", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "history.db")

			d, err := sqlite.NewDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer d.Close()

			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps entries across reopen", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "history.db")

			d, err := sqlite.NewDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			_, err = d.Append(ctx, "q", "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Close()).To(Succeed())

			d, err = sqlite.NewDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer d.Close()

			entries, err := d.List(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Question).To(Equal("q"))
		})
	})

	It("round-trips appended entries oldest first with ids 1..m", func() {
		for i := range 3 {
			e, err := driver.Append(ctx, fmt.Sprintf("q%d", i), fmt.Sprintf("réponse %d", i))
			Expect(err).NotTo(HaveOccurred())
			Expect(e.ID).To(Equal(int64(i + 1)))
		}

		entries, err := driver.List(ctx, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(3))
		for i, e := range entries {
			Expect(e.ID).To(Equal(int64(i + 1)))
			Expect(e.Answer).To(Equal(fmt.Sprintf("réponse %d", i)))
			Expect(e.Timestamp.IsZero()).To(BeFalse())
		}
	})

	It("returns the tail window in ascending order", func() {
		for i := range 4 {
			_, err := driver.Append(ctx, fmt.Sprintf("q%d", i), "a")
			Expect(err).NotTo(HaveOccurred())
		}

		entries, err := driver.List(ctx, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].Question).To(Equal("q2"))
		Expect(entries[1].Question).To(Equal("q3"))
	})

	It("preserves the append timestamp", func() {
		e, err := driver.Append(ctx, "q", "a")
		Expect(err).NotTo(HaveOccurred())

		entries, err := driver.List(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries[0].Timestamp.Equal(e.Timestamp)).To(BeTrue())
	})

	It("clears the log and keeps counting ids", func() {
		_, err := driver.Append(ctx, "q1", "a1")
		Expect(err).NotTo(HaveOccurred())
		Expect(driver.Clear(ctx)).To(Succeed())

		n, err := driver.Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(0))

		entries, err := driver.List(ctx, 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())

		e, err := driver.Append(ctx, "q2", "a2")
		Expect(err).NotTo(HaveOccurred())
		Expect(e.ID).To(Equal(int64(2)))
	})

	It("returns an empty slice for a non-positive limit", func() {
		entries, err := driver.List(ctx, -1)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})
})

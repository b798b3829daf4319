package historyutils_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/legalqa/pkg/history/inmemory"
	"github.com/papercomputeco/legalqa/pkg/history/sqlite"
	historyutils "github.com/papercomputeco/legalqa/pkg/history/utils"
)

var _ = Describe("NewDriver", func() {
	ctx := context.Background()

	It("defaults to the in-memory driver", func() {
		d, err := historyutils.NewDriver(ctx, &historyutils.NewDriverOpts{})
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeAssignableToTypeOf(&inmemory.Driver{}))
	})

	It("builds a sqlite driver", func() {
		d, err := historyutils.NewDriver(ctx, &historyutils.NewDriverOpts{
			ProviderType: "sqlite",
			SQLitePath:   filepath.Join(GinkgoT().TempDir(), "history.db"),
		})
		Expect(err).NotTo(HaveOccurred())
		defer d.Close()
		Expect(d).To(BeAssignableToTypeOf(&sqlite.Driver{}))
	})

	It("requires a path for sqlite and a DSN for postgres", func() {
		_, err := historyutils.NewDriver(ctx, &historyutils.NewDriverOpts{ProviderType: "sqlite"})
		Expect(err).To(MatchError(ContainSubstring("requires a database path")))

		_, err = historyutils.NewDriver(ctx, &historyutils.NewDriverOpts{ProviderType: "postgres"})
		Expect(err).To(MatchError(ContainSubstring("requires a connection string")))
	})

	It("rejects unknown providers", func() {
		_, err := historyutils.NewDriver(ctx, &historyutils.NewDriverOpts{ProviderType: "redis"})
		Expect(err).To(MatchError("unsupported history provider: redis"))
	})
})

package postgres_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aircode610/MouseTron/pkg/storage"
	"github.com/aircode610/MouseTron/pkg/storage/postgres"
	testutils "github.com/aircode610/MouseTron/pkg/utils/test"
)

// connStr returns the PostgreSQL connection string from environment or skips the test.
func connStr() string {
	dsn := os.Getenv("MOUSETRON_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("MOUSETRON_TEST_POSTGRES_DSN not set, skipping PostgreSQL tests")
	}
	return dsn
}

var _ = Describe("Driver", func() {
	testutils.StorageDriverSpecs(func() storage.Driver {
		ctx := context.Background()

		d, err := postgres.NewDriver(ctx, connStr())
		Expect(err).NotTo(HaveOccurred())

		// Clean all executions before each spec for isolation.
		_, err = d.DB.ExecContext(ctx, "TRUNCATE tool_executions RESTART IDENTITY")
		Expect(err).NotTo(HaveOccurred())
		return d
	})
})

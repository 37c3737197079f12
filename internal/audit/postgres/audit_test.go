package postgres_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/saas-admin/internal/audit"
	"github.com/frahmantamala/saas-admin/internal/audit/postgres"
	auditDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/audit"
	"github.com/frahmantamala/saas-admin/internal/core/events"
)

var _ = Describe("AuditRepository", func() {
	var (
		ctx  context.Context
		db   *gorm.DB
		repo audit.RepositoryAPI
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&auditDatamodel.AuditLog{})).To(Succeed())
		repo = postgres.NewAuditRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	It("round-trips the JSON diff and filters by record", func() {
		first := audit.FromEvent(events.NewRecordEvent(events.ExpenseAdvanced, "expenses", "e1", events.ActionUpdate, "admin-1",
			map[string]events.Change{"status": {Old: "approved", New: "reimbursed"}}))
		first.CreatedAt = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
		second := audit.FromEvent(events.NewRecordEvent(events.ExpenseDeleted, "expenses", "e1", events.ActionDelete, "admin-1", nil))
		second.CreatedAt = time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
		other := audit.FromEvent(events.NewRecordEvent(events.PromoCreated, "promo_codes", "p1", events.ActionCreate, "admin-1", nil))

		Expect(repo.Create(ctx, first)).To(Succeed())
		Expect(repo.Create(ctx, second)).To(Succeed())
		Expect(repo.Create(ctx, other)).To(Succeed())

		rows, err := repo.List(ctx, "e1", audit.DefaultLimit)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[0].Action).To(Equal("DELETE"))
		Expect(rows[1].Diff).To(HaveKeyWithValue("status", HaveKeyWithValue("new", "reimbursed")))

		all, err := repo.List(ctx, "", audit.DefaultLimit)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(3))
	})
})

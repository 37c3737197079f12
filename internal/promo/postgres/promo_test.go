package postgres_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/saas-admin/internal"
	customerDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/customer"
	promoDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/promo"
	"github.com/frahmantamala/saas-admin/internal/promo"
	"github.com/frahmantamala/saas-admin/internal/promo/postgres"
)

var _ = Describe("PromoRepository", func() {
	var (
		ctx  context.Context
		db   *gorm.DB
		repo promo.RepositoryAPI
	)

	newRow := func(id, code string, usage, maxUses int) *promoDatamodel.PromoCode {
		return &promoDatamodel.PromoCode{
			ID:           id,
			Code:         code,
			DiscountType: "flat",
			Value:        decimal.RequireFromString("12.50"),
			ExpiryDate:   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
			UsageCount:   usage,
			MaxUses:      maxUses,
		}
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		// a single connection keeps every goroutine on the same in-memory database
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(db.AutoMigrate(&promoDatamodel.PromoCode{}, &customerDatamodel.Customer{})).To(Succeed())
		repo = postgres.NewPromoRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Create and lookup", func() {
		It("finds codes regardless of case", func() {
			Expect(repo.Create(ctx, newRow("p-1", "WELCOME", 0, 3))).To(Succeed())

			row, err := repo.GetByCode(ctx, "welcome")
			Expect(err).NotTo(HaveOccurred())
			Expect(row.ID).To(Equal("p-1"))
			Expect(row.Value.Equal(decimal.RequireFromString("12.5"))).To(BeTrue())
		})

		It("maps duplicate codes to ErrPromoCodeTaken", func() {
			Expect(repo.Create(ctx, newRow("p-1", "DUP", 0, 1))).To(Succeed())
			err := repo.Create(ctx, newRow("p-2", "DUP", 0, 1))
			Expect(errors.Is(err, internal.ErrPromoCodeTaken)).To(BeTrue())
		})

		It("reports missing rows as not found", func() {
			_, err := repo.GetByID(ctx, "missing")
			Expect(errors.Is(err, internal.ErrPromoNotFound)).To(BeTrue())
			_, err = repo.GetByCode(ctx, "MISSING")
			Expect(errors.Is(err, internal.ErrPromoNotFound)).To(BeTrue())
		})
	})

	Describe("IncrementUsage", func() {
		It("increments while uses remain and refuses afterwards", func() {
			Expect(repo.Create(ctx, newRow("p-1", "ONCE", 0, 1))).To(Succeed())

			res, err := repo.IncrementUsage(ctx, "p-1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Applied).To(BeTrue())
			Expect(res.Linked).To(BeFalse())

			res, err = repo.IncrementUsage(ctx, "p-1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Applied).To(BeFalse())

			row, err := repo.GetByID(ctx, "p-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(row.UsageCount).To(Equal(1))
		})

		It("links the redeeming user to the code", func() {
			Expect(repo.Create(ctx, newRow("p-1", "LINK", 0, 2))).To(Succeed())
			Expect(db.Create(&customerDatamodel.Customer{
				ID:       "u-1",
				Username: "jane",
				Email:    "jane@example.com",
				Package:  "pro",
			}).Error).To(Succeed())

			res, err := repo.IncrementUsage(ctx, "p-1", "u-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Applied).To(BeTrue())
			Expect(res.Linked).To(BeTrue())
			Expect(res.PreviousPromoID).To(BeNil())

			var c customerDatamodel.Customer
			Expect(db.First(&c, "id = ?", "u-1").Error).To(Succeed())
			Expect(c.PromoCodeID).NotTo(BeNil())
			Expect(*c.PromoCodeID).To(Equal("p-1"))
		})

		It("reports the previously linked code when a user redeems another", func() {
			// Given a user already linked to one code
			Expect(repo.Create(ctx, newRow("p-1", "FIRST", 0, 2))).To(Succeed())
			Expect(repo.Create(ctx, newRow("p-2", "SECOND", 0, 2))).To(Succeed())
			Expect(db.Create(&customerDatamodel.Customer{
				ID:       "u-1",
				Username: "jane",
				Email:    "jane@example.com",
				Package:  "pro",
			}).Error).To(Succeed())
			_, err := repo.IncrementUsage(ctx, "p-1", "u-1")
			Expect(err).NotTo(HaveOccurred())

			// When the user redeems a second code
			res, err := repo.IncrementUsage(ctx, "p-2", "u-1")

			// Then the old link is reported and the new one stored
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Linked).To(BeTrue())
			Expect(res.PreviousPromoID).NotTo(BeNil())
			Expect(*res.PreviousPromoID).To(Equal("p-1"))

			var c customerDatamodel.Customer
			Expect(db.First(&c, "id = ?", "u-1").Error).To(Succeed())
			Expect(*c.PromoCodeID).To(Equal("p-2"))
		})

		It("ignores soft-deleted codes", func() {
			Expect(repo.Create(ctx, newRow("p-1", "DEAD", 0, 5))).To(Succeed())
			Expect(repo.SoftDelete(ctx, "p-1")).To(Succeed())

			res, err := repo.IncrementUsage(ctx, "p-1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Applied).To(BeFalse())
		})

		It("counts the use but skips linking an unknown user", func() {
			Expect(repo.Create(ctx, newRow("p-1", "GHOST", 0, 2))).To(Succeed())

			res, err := repo.IncrementUsage(ctx, "p-1", "nobody")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Applied).To(BeTrue())
			Expect(res.Linked).To(BeFalse())
		})

		It("never exceeds max uses under concurrent callers", func() {
			// Given a code with three uses left
			Expect(repo.Create(ctx, newRow("p-1", "RACE", 0, 3))).To(Succeed())

			// When twenty callers race to increment it
			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				applied int
			)
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					res, err := repo.IncrementUsage(ctx, "p-1", "")
					Expect(err).NotTo(HaveOccurred())
					if res.Applied {
						mu.Lock()
						applied++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			// Then exactly three increments are applied
			Expect(applied).To(Equal(3))
			row, err := repo.GetByID(ctx, "p-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(row.UsageCount).To(Equal(3))
		})
	})

	Describe("List and SoftDelete", func() {
		It("hides deleted codes and reports repeated deletes as not found", func() {
			Expect(repo.Create(ctx, newRow("p-1", "KEEP", 0, 1))).To(Succeed())
			Expect(repo.Create(ctx, newRow("p-2", "DROP", 0, 1))).To(Succeed())

			Expect(repo.SoftDelete(ctx, "p-2")).To(Succeed())
			Expect(errors.Is(repo.SoftDelete(ctx, "p-2"), internal.ErrPromoNotFound)).To(BeTrue())

			rows, err := repo.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Code).To(Equal("KEEP"))
		})
	})
})

package postgres_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/saas-admin/internal"
	customerDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/customer"
	salesDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/salesperson"
	"github.com/frahmantamala/saas-admin/internal/salesperson"
	"github.com/frahmantamala/saas-admin/internal/salesperson/postgres"
)

var _ = Describe("SalesPersonRepository", func() {
	var (
		ctx  context.Context
		db   *gorm.DB
		repo salesperson.RepositoryAPI
	)

	person := func(id, name, email string) *salesDatamodel.SalesPerson {
		return &salesDatamodel.SalesPerson{ID: id, Name: name, Email: email, Active: true, JoinedOn: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	}

	customer := func(id string, salesID *string) *customerDatamodel.Customer {
		return &customerDatamodel.Customer{ID: id, Username: id, Email: id + "@example.com", Package: "free", OnboardingSalesID: salesID}
	}

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
		Expect(db.AutoMigrate(&salesDatamodel.SalesPerson{}, &customerDatamodel.Customer{})).To(Succeed())
		repo = postgres.NewSalesPersonRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	It("rejects duplicate emails", func() {
		Expect(repo.Create(ctx, person("s1", "Rina", "rina@example.com"))).To(Succeed())
		err := repo.Create(ctx, person("s2", "Rina B", "rina@example.com"))
		Expect(errors.Is(err, internal.ErrSalesEmailTaken)).To(BeTrue())
	})

	It("lists live people by name with live onboarded counts", func() {
		s1, s2, s3 := "s1", "s2", "s3"
		Expect(repo.Create(ctx, person(s1, "Wulan", "w@example.com"))).To(Succeed())
		Expect(repo.Create(ctx, person(s2, "Agus", "a@example.com"))).To(Succeed())
		Expect(repo.Create(ctx, person(s3, "Gone", "g@example.com"))).To(Succeed())
		Expect(repo.SoftDelete(ctx, s3)).To(Succeed())

		Expect(db.Create(customer("u1", &s1)).Error).To(Succeed())
		Expect(db.Create(customer("u2", &s1)).Error).To(Succeed())
		deleted := customer("u3", &s1)
		Expect(db.Create(deleted).Error).To(Succeed())
		Expect(db.Delete(deleted).Error).To(Succeed())

		rows, err := repo.ListWithCounts(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[0].Name).To(Equal("Agus"))
		Expect(rows[0].OnboardedCount).To(Equal(int64(0)))
		Expect(rows[1].Name).To(Equal("Wulan"))
		Expect(rows[1].OnboardedCount).To(Equal(int64(2)))
	})

	It("reports missing and deleted people as not found", func() {
		Expect(repo.Create(ctx, person("s1", "Rina", "rina@example.com"))).To(Succeed())
		Expect(repo.SoftDelete(ctx, "s1")).To(Succeed())

		_, err := repo.GetByID(ctx, "s1")
		Expect(errors.Is(err, internal.ErrSalesPersonNotFound)).To(BeTrue())
		Expect(errors.Is(repo.SoftDelete(ctx, "s1"), internal.ErrSalesPersonNotFound)).To(BeTrue())
	})
})

package analytics_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"github.com/frahmantamala/saas-admin/internal"
	"github.com/frahmantamala/saas-admin/internal/analytics"
	"github.com/frahmantamala/saas-admin/internal/core/events"
	"github.com/frahmantamala/saas-admin/pkg/logger"
)

func ptr(s string) *string { return &s }

var _ = Describe("Aggregate", func() {
	It("returns zeroes for no rows", func() {
		r := analytics.Aggregate(nil, nil)
		Expect(r.TotalUsers).To(Equal(0))
		Expect(r.TotalAutomations).To(Equal(0))
		Expect(r.AffiliateCount).To(Equal(0))
		Expect(r.TopSalesPerformance).To(BeEmpty())
		Expect(r.PackageDistribution).To(BeEmpty())
	})

	It("counts only live rows", func() {
		users := []analytics.UserRow{
			{ID: "u1", Package: "pro", AutomationsCount: 3, IsAffiliate: true, OnboardingSalesID: ptr("s1")},
			{ID: "u2", Package: "free", AutomationsCount: 1, OnboardingSalesID: ptr("s1")},
			{ID: "u3", Package: "pro", AutomationsCount: 7, IsAffiliate: true, Deleted: true, OnboardingSalesID: ptr("s1")},
			{ID: "u4", Package: "business", AutomationsCount: 0, OnboardingSalesID: ptr("s2")},
		}
		salesPeople := []analytics.SalesPersonRow{
			{ID: "s1", Name: "Rina"},
			{ID: "s2", Name: "Budi", Deleted: true},
		}

		r := analytics.Aggregate(users, salesPeople)
		Expect(r.TotalUsers).To(Equal(3))
		Expect(r.TotalAutomations).To(Equal(4))
		Expect(r.AffiliateCount).To(Equal(1))
		Expect(r.PackageDistribution).To(Equal(map[string]int{"pro": 1, "free": 1, "business": 1}))
		Expect(r.TopSalesPerformance).To(Equal([]analytics.SalesCount{{Name: "Rina", Count: 2}}))
	})

	It("keeps the top five by count with ties broken by name", func() {
		var users []analytics.UserRow
		var salesPeople []analytics.SalesPersonRow
		counts := map[string]int{"s1": 1, "s2": 3, "s3": 3, "s4": 2, "s5": 5, "s6": 1, "s7": 0}
		names := map[string]string{"s1": "Fajar", "s2": "Citra", "s3": "Andi", "s4": "Dewi", "s5": "Eka", "s6": "Bayu", "s7": "Gita"}
		for id, n := range counts {
			salesPeople = append(salesPeople, analytics.SalesPersonRow{ID: id, Name: names[id]})
			for i := 0; i < n; i++ {
				users = append(users, analytics.UserRow{ID: fmt.Sprintf("%s-%d", id, i), Package: "free", OnboardingSalesID: ptr(id)})
			}
		}

		r := analytics.Aggregate(users, salesPeople)
		Expect(r.TopSalesPerformance).To(Equal([]analytics.SalesCount{
			{Name: "Eka", Count: 5},
			{Name: "Andi", Count: 3},
			{Name: "Citra", Count: 3},
			{Name: "Dewi", Count: 2},
			{Name: "Bayu", Count: 1},
		}))
	})
})

type countingRepo struct {
	calls atomic.Int32
	users []analytics.UserRow
	err   error
}

func (r *countingRepo) LoadInputs(context.Context) ([]analytics.UserRow, []analytics.SalesPersonRow, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, nil, r.err
	}
	return r.users, nil, nil
}

var _ = Describe("Service", func() {
	var (
		ctx  context.Context
		mr   *miniredis.Miniredis
		rdb  *redis.Client
		repo *countingRepo
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		mr, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		repo = &countingRepo{users: []analytics.UserRow{{ID: "u1", Package: "pro", AutomationsCount: 2}}}
	})

	AfterEach(func() {
		Expect(rdb.Close()).To(Succeed())
		mr.Close()
	})

	It("serves repeated reads from the cache", func() {
		svc := analytics.NewService(repo, analytics.NewCache(rdb, time.Minute), logger.Discard())

		first, err := svc.Rollup(ctx)
		Expect(err).NotTo(HaveOccurred())
		second, err := svc.Rollup(ctx)
		Expect(err).NotTo(HaveOccurred())

		Expect(second).To(Equal(first))
		Expect(repo.calls.Load()).To(Equal(int32(1)))
	})

	It("recomputes after a roster event bumps the version", func() {
		// Given a warm cache and a bus wired to invalidate it
		svc := analytics.NewService(repo, analytics.NewCache(rdb, time.Minute), logger.Discard())
		bus := events.NewEventBus(logger.Discard())
		svc.Subscribe(bus)
		_, err := svc.Rollup(ctx)
		Expect(err).NotTo(HaveOccurred())

		// When a new end user is recorded
		repo.users = append(repo.users, analytics.UserRow{ID: "u2", Package: "free"})
		Expect(bus.Publish(ctx, events.NewRecordEvent(events.CustomerCreated, "users", "u2", events.ActionCreate, "admin", nil))).To(Succeed())
		bus.Wait()

		// Then the next read reflects it
		r, err := svc.Rollup(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.TotalUsers).To(Equal(2))
		Expect(repo.calls.Load()).To(Equal(int32(2)))
	})

	It("passes through without redis", func() {
		svc := analytics.NewService(repo, analytics.NewCache(nil, time.Minute), logger.Discard())
		_, err := svc.Rollup(ctx)
		Expect(err).NotTo(HaveOccurred())
		_, err = svc.Rollup(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.calls.Load()).To(Equal(int32(2)))
	})

	It("falls back to direct computation when redis is down", func() {
		down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
		defer down.Close()
		svc := analytics.NewService(repo, analytics.NewCache(down, time.Minute), logger.Discard())

		r, err := svc.Rollup(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.TotalUsers).To(Equal(1))
	})

	It("reports repository failures as internal errors", func() {
		repo.err = errors.New("relation does not exist")
		svc := analytics.NewService(repo, analytics.NewCache(rdb, time.Minute), logger.Discard())

		_, err := svc.Rollup(ctx)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		Expect(repo.calls.Load()).To(Equal(int32(1)))
	})
})

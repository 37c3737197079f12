package promo_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/saas-admin/internal"
	"github.com/frahmantamala/saas-admin/internal/core/common/dates"
	promoDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/promo"
	"github.com/frahmantamala/saas-admin/internal/core/events"
	"github.com/frahmantamala/saas-admin/internal/promo"
	"github.com/frahmantamala/saas-admin/pkg/logger"
)

// mockPromoRepository keeps rows in memory and applies the same guarded
// increment the database does.
type mockPromoRepository struct {
	mu          sync.Mutex
	rows        map[string]*promoDatamodel.PromoCode
	linked      map[string]string
	createError error
	listError   error
}

func newMockPromoRepository() *mockPromoRepository {
	return &mockPromoRepository{
		rows:   make(map[string]*promoDatamodel.PromoCode),
		linked: make(map[string]string),
	}
}

func (m *mockPromoRepository) Create(_ context.Context, p *promoDatamodel.PromoCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	for _, row := range m.rows {
		if row.Code == p.Code {
			return internal.ErrPromoCodeTaken
		}
	}
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *mockPromoRepository) GetByID(_ context.Context, id string) (*promoDatamodel.PromoCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, internal.ErrPromoNotFound
	}
	cp := *row
	return &cp, nil
}

func (m *mockPromoRepository) GetByCode(_ context.Context, code string) (*promoDatamodel.PromoCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if strings.EqualFold(row.Code, code) {
			cp := *row
			return &cp, nil
		}
	}
	return nil, internal.ErrPromoNotFound
}

func (m *mockPromoRepository) List(_ context.Context) ([]*promoDatamodel.PromoCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listError != nil {
		return nil, m.listError
	}
	out := make([]*promoDatamodel.PromoCode, 0, len(m.rows))
	for _, row := range m.rows {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockPromoRepository) IncrementUsage(_ context.Context, id, userID string) (promo.Redemption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.UsageCount >= row.MaxUses {
		return promo.Redemption{}, nil
	}
	row.UsageCount++
	if userID == "" {
		return promo.Redemption{Applied: true}, nil
	}
	var previous *string
	if prev, ok := m.linked[userID]; ok {
		previous = &prev
	}
	m.linked[userID] = id
	return promo.Redemption{Applied: true, Linked: true, PreviousPromoID: previous}, nil
}

func (m *mockPromoRepository) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return internal.ErrPromoNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *mockPromoRepository) usage(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id].UsageCount
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		repo      *mockPromoRepository
		publisher *recordingPublisher
		service   *promo.Service
		now       time.Time
		admin     internal.AuthContext
		sales     internal.AuthContext
	)

	seed := func(code string, usage, maxUses int, expiry time.Time, assigned *string) *promoDatamodel.PromoCode {
		row := &promoDatamodel.PromoCode{
			ID:             "promo-" + strings.ToLower(code),
			Code:           code,
			DiscountType:   string(promo.DiscountFlat),
			Value:          decimal.NewFromInt(10),
			ExpiryDate:     expiry,
			UsageCount:     usage,
			MaxUses:        maxUses,
			AssignedUserID: assigned,
			CreatedAt:      now,
		}
		Expect(repo.Create(ctx, row)).To(Succeed())
		return row
	}

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockPromoRepository()
		publisher = &recordingPublisher{}
		now = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
		service = promo.NewService(repo, publisher, logger.Discard()).WithClock(func() time.Time { return now })
		admin = internal.AuthContext{Identity: "11111111-1111-1111-1111-111111111111", Role: internal.RoleAdmin, Name: "Ada"}
		sales = internal.AuthContext{Identity: "22222222-2222-2222-2222-222222222222", Role: internal.RoleSales, Name: "Sam"}
	})

	Describe("Create", func() {
		var dto promo.CreatePromoDTO

		BeforeEach(func() {
			dto = promo.CreatePromoDTO{
				Code:         "launch",
				DiscountType: promo.DiscountPercentage,
				Value:        decimal.NewFromInt(15),
				ExpiryDate:   dates.New(now.AddDate(0, 1, 0)),
			}
		})

		It("stores an uppercase single-use code approved by the creator", func() {
			// Given an admin creating a code without max uses
			// When the code is created
			result, err := service.Create(ctx, admin, dto)

			// Then it is normalized and defaults to one use
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Promo.Code).To(Equal("LAUNCH"))
			Expect(result.Promo.MaxUses).To(Equal(1))
			Expect(result.Promo.UsageCount).To(Equal(0))
			Expect(result.Promo.Status).To(Equal(promo.StatusActive))
			Expect(*result.Promo.CreatedBy).To(Equal(admin.Identity))
			Expect(*result.Promo.ApprovedBy).To(Equal(admin.Identity))
			Expect(result.Warnings).To(BeEmpty())
			Expect(publisher.types()).To(ConsistOf(events.PromoCreated))
		})

		It("rejects sales users", func() {
			_, err := service.Create(ctx, sales, dto)
			Expect(errors.Is(err, internal.ErrAdminRequired)).To(BeTrue())
			Expect(publisher.types()).To(BeEmpty())
		})

		It("rejects a code that differs only by case", func() {
			seed("LAUNCH", 0, 1, now.AddDate(0, 0, 10), nil)

			_, err := service.Create(ctx, admin, dto)
			Expect(errors.Is(err, internal.ErrPromoCodeTaken)).To(BeTrue())
		})

		It("warns but accepts percentage values above 100", func() {
			dto.Value = decimal.NewFromInt(150)

			result, err := service.Create(ctx, admin, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Warnings).To(HaveLen(1))
		})

		It("creates already expired codes", func() {
			dto.ExpiryDate = dates.New(now.AddDate(0, 0, -3))

			result, err := service.Create(ctx, admin, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Promo.Status).To(Equal(promo.StatusExpired))
		})

		It("returns a validation error for missing fields", func() {
			_, err := service.Create(ctx, admin, promo.CreatePromoDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("wraps storage failures as internal errors", func() {
			repo.createError = errors.New("disk full")

			_, err := service.Create(ctx, admin, dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})
	})

	Describe("Redeem", func() {
		It("walks SUMMER24 from its last use to limit_reached", func() {
			// Given a code with one use left
			row := seed("SUMMER24", 99, 100, now.AddDate(0, 2, 0), nil)
			view, err := service.Get(ctx, row.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Status).To(Equal(promo.StatusActive))

			// When it is redeemed
			view, err = service.Redeem(ctx, sales, promo.RedeemPromoDTO{Code: "summer24"})

			// Then the limit is reached and further redemptions fail
			Expect(err).NotTo(HaveOccurred())
			Expect(view.UsageCount).To(Equal(100))
			Expect(view.Status).To(Equal(promo.StatusLimitReached))

			_, err = service.Redeem(ctx, sales, promo.RedeemPromoDTO{Code: "SUMMER24"})
			Expect(errors.Is(err, internal.ErrPromoLimitReached)).To(BeTrue())
			Expect(repo.usage(row.ID)).To(Equal(100))
		})

		It("rejects expired codes without consuming a use", func() {
			row := seed("OLD", 0, 5, now.AddDate(0, 0, -1), nil)

			_, err := service.Redeem(ctx, sales, promo.RedeemPromoDTO{Code: "OLD"})
			Expect(errors.Is(err, internal.ErrPromoExpired)).To(BeTrue())
			Expect(repo.usage(row.ID)).To(Equal(0))
		})

		It("restricts assigned codes to their user", func() {
			assigned := "33333333-3333-3333-3333-333333333333"
			row := seed("VIP", 0, 5, now.AddDate(0, 0, 30), &assigned)

			_, err := service.Redeem(ctx, sales, promo.RedeemPromoDTO{Code: "VIP", UserID: "44444444-4444-4444-4444-444444444444"})
			Expect(errors.Is(err, internal.ErrPromoNotAssigned)).To(BeTrue())

			_, err = service.Redeem(ctx, sales, promo.RedeemPromoDTO{Code: "VIP", UserID: assigned})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.usage(row.ID)).To(Equal(1))
			Expect(repo.linked).To(HaveKeyWithValue(assigned, row.ID))
			Expect(publisher.types()).To(ContainElements(events.PromoRedeemed, events.CustomerPromoLinked))
		})

		It("reports unknown codes as not found", func() {
			_, err := service.Redeem(ctx, sales, promo.RedeemPromoDTO{Code: "NOPE"})
			Expect(errors.Is(err, internal.ErrPromoNotFound)).To(BeTrue())
		})

		It("never lets concurrent redemptions exceed max uses", func() {
			// Given a code with five uses and fifty concurrent redeemers
			row := seed("RUSH", 0, 5, now.AddDate(0, 0, 7), nil)

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				succeeded int
				failures  []error
			)
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := service.Redeem(ctx, sales, promo.RedeemPromoDTO{Code: "RUSH"})
					mu.Lock()
					defer mu.Unlock()
					if err == nil {
						succeeded++
						return
					}
					failures = append(failures, err)
				}()
			}
			wg.Wait()

			// Then exactly five succeed and the rest are told why
			Expect(succeeded).To(Equal(5))
			Expect(repo.usage(row.ID)).To(Equal(5))
			for _, err := range failures {
				Expect(errors.Is(err, internal.ErrPromoLimitReached) || errors.Is(err, internal.ErrRedemptionConflict)).To(BeTrue())
			}
		})
	})

	Describe("List", func() {
		It("computes status for every code", func() {
			seed("A", 0, 1, now.AddDate(0, 0, 1), nil)
			seed("B", 1, 1, now.AddDate(0, 0, 1), nil)
			seed("C", 0, 1, now.AddDate(0, 0, -1), nil)

			views, err := service.List(ctx)
			Expect(err).NotTo(HaveOccurred())

			statuses := map[string]promo.Status{}
			for _, v := range views {
				statuses[v.Code] = v.Status
			}
			Expect(statuses).To(Equal(map[string]promo.Status{
				"A": promo.StatusActive,
				"B": promo.StatusLimitReached,
				"C": promo.StatusExpired,
			}))
		})

		It("wraps repository errors", func() {
			repo.listError = errors.New("connection reset")
			_, err := service.List(ctx)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Delete", func() {
		It("soft deletes for admins", func() {
			row := seed("GONE", 0, 1, now.AddDate(0, 0, 1), nil)

			Expect(service.Delete(ctx, admin, row.ID)).To(Succeed())
			_, err := service.Get(ctx, row.ID)
			Expect(errors.Is(err, internal.ErrPromoNotFound)).To(BeTrue())
			Expect(publisher.types()).To(ContainElement(events.PromoDeleted))
		})

		It("is forbidden for sales", func() {
			row := seed("KEEP", 0, 1, now.AddDate(0, 0, 1), nil)
			Expect(errors.Is(service.Delete(ctx, sales, row.ID), internal.ErrAdminRequired)).To(BeTrue())
		})
	})
})

package promo_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/saas-admin/internal"
	"github.com/frahmantamala/saas-admin/internal/core/common/dates"
	"github.com/frahmantamala/saas-admin/internal/promo"
)

var _ = Describe("PromoCode", func() {
	var now time.Time

	BeforeEach(func() {
		now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	})

	Describe("ComputeStatus", func() {
		It("is active before expiry with uses left", func() {
			p := &promo.PromoCode{ExpiryDate: now.AddDate(0, 0, 5), UsageCount: 0, MaxUses: 1}
			Expect(promo.ComputeStatus(p, now)).To(Equal(promo.StatusActive))
		})

		It("is limit_reached once usage reaches max uses", func() {
			p := &promo.PromoCode{ExpiryDate: now.AddDate(0, 0, 5), UsageCount: 3, MaxUses: 3}
			Expect(promo.ComputeStatus(p, now)).To(Equal(promo.StatusLimitReached))
		})

		It("is expired when now is past the expiry date", func() {
			p := &promo.PromoCode{ExpiryDate: now.AddDate(0, 0, -1), UsageCount: 0, MaxUses: 10}
			Expect(promo.ComputeStatus(p, now)).To(Equal(promo.StatusExpired))
		})

		It("reports expired over limit_reached when both hold", func() {
			p := &promo.PromoCode{ExpiryDate: now.AddDate(0, 0, -1), UsageCount: 10, MaxUses: 10}
			Expect(promo.ComputeStatus(p, now)).To(Equal(promo.StatusExpired))
		})

		It("is not expired at the exact expiry instant", func() {
			p := &promo.PromoCode{ExpiryDate: now, UsageCount: 0, MaxUses: 1}
			Expect(promo.ComputeStatus(p, now)).To(Equal(promo.StatusActive))
		})

		It("stays active through the whole expiry day", func() {
			// Given a code whose expiry date is today
			today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
			p := &promo.PromoCode{ExpiryDate: today, MaxUses: 1}

			// Then it is active until the day ends and expired the next day
			Expect(promo.ComputeStatus(p, now)).To(Equal(promo.StatusActive))
			Expect(promo.ComputeStatus(p, today.Add(24*time.Hour-time.Second))).To(Equal(promo.StatusActive))
			Expect(promo.ComputeStatus(p, today.AddDate(0, 0, 1))).To(Equal(promo.StatusExpired))
			Expect(p.CheckRedeemable("", now)).To(Succeed())
		})

		It("returns the same status on repeated calls", func() {
			p := &promo.PromoCode{ExpiryDate: now.AddDate(0, 0, 1), UsageCount: 1, MaxUses: 2}
			first := promo.ComputeStatus(p, now)
			for i := 0; i < 5; i++ {
				Expect(promo.ComputeStatus(p, now)).To(Equal(first))
			}
		})
	})

	Describe("CheckRedeemable", func() {
		It("rejects expired codes", func() {
			p := &promo.PromoCode{ExpiryDate: now.AddDate(0, 0, -2), MaxUses: 5}
			err := p.CheckRedeemable("", now)
			Expect(errors.Is(err, internal.ErrPromoExpired)).To(BeTrue())
			Expect(internal.IsPromoInvalid(err)).To(BeTrue())
		})

		It("rejects exhausted codes", func() {
			p := &promo.PromoCode{ExpiryDate: now.AddDate(0, 0, 2), UsageCount: 5, MaxUses: 5}
			Expect(errors.Is(p.CheckRedeemable("", now), internal.ErrPromoLimitReached)).To(BeTrue())
		})

		It("rejects users other than the assigned one", func() {
			assigned := "b3f1c7a2-4a4e-4e1f-9d7a-0a0b0c0d0e0f"
			p := &promo.PromoCode{ExpiryDate: now.AddDate(0, 0, 2), MaxUses: 5, AssignedUserID: &assigned}

			Expect(errors.Is(p.CheckRedeemable("someone-else", now), internal.ErrPromoNotAssigned)).To(BeTrue())
			Expect(errors.Is(p.CheckRedeemable("", now), internal.ErrPromoNotAssigned)).To(BeTrue())
			Expect(p.CheckRedeemable(assigned, now)).To(Succeed())
		})

		It("accepts globally usable active codes for anyone", func() {
			p := &promo.PromoCode{ExpiryDate: now.AddDate(0, 0, 2), MaxUses: 5}
			Expect(p.CheckRedeemable("", now)).To(Succeed())
			Expect(p.CheckRedeemable("any-user", now)).To(Succeed())
		})
	})
})

var _ = Describe("CreatePromoDTO", func() {
	validDTO := func() promo.CreatePromoDTO {
		return promo.CreatePromoDTO{
			Code:         " summer24 ",
			DiscountType: promo.DiscountPercentage,
			Value:        decimal.NewFromInt(20),
			ExpiryDate:   dates.New(time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)),
		}
	}

	It("accepts a complete request", func() {
		Expect(validDTO().Validate()).To(Succeed())
	})

	It("normalizes the code to uppercase", func() {
		Expect(validDTO().NormalizedCode()).To(Equal("SUMMER24"))
	})

	It("defaults max uses to single use", func() {
		Expect(validDTO().MaxUsesOrDefault()).To(Equal(promo.DefaultMaxUses))
	})

	It("rejects an explicit zero max uses", func() {
		dto := validDTO()
		zero := 0
		dto.MaxUses = &zero

		err := dto.Validate()
		Expect(err).To(HaveOccurred())
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
	})

	It("rejects negative values", func() {
		dto := validDTO()
		dto.Value = decimal.NewFromInt(-1)
		Expect(dto.Validate()).NotTo(Succeed())
	})

	It("rejects unknown discount types", func() {
		dto := validDTO()
		dto.DiscountType = "bogus"
		Expect(dto.Validate()).NotTo(Succeed())
	})

	It("requires the expiry date", func() {
		dto := validDTO()
		dto.ExpiryDate = dates.Date{}
		Expect(dto.Validate()).NotTo(Succeed())
	})

	It("accepts a past expiry date", func() {
		dto := validDTO()
		dto.ExpiryDate = dates.New(time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC))
		Expect(dto.Validate()).To(Succeed())
	})
})

package events_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/saas-admin/internal/core/events"
	"github.com/frahmantamala/saas-admin/pkg/logger"
)

var _ = Describe("EventBus", func() {
	var (
		ctx context.Context
		bus *events.EventBus
	)

	BeforeEach(func() {
		ctx = context.Background()
		bus = events.NewEventBus(logger.Discard())
	})

	It("delivers to every subscriber of the type", func() {
		var calls atomic.Int32
		for i := 0; i < 3; i++ {
			bus.Subscribe(events.PromoCreated, func(context.Context, events.Event) error {
				calls.Add(1)
				return nil
			})
		}
		bus.Subscribe(events.PromoDeleted, func(context.Context, events.Event) error {
			calls.Add(100)
			return nil
		})

		Expect(bus.Publish(ctx, events.NewRecordEvent(events.PromoCreated, "promo_codes", "p-1", events.ActionCreate, "u-1", nil))).To(Succeed())
		bus.Wait()
		Expect(calls.Load()).To(Equal(int32(3)))
	})

	It("ignores events nobody listens to", func() {
		Expect(bus.Publish(ctx, events.NewRecordEvent(events.ExpenseDeleted, "expenses", "e-1", events.ActionDelete, "u-1", nil))).To(Succeed())
		bus.Wait()
	})

	It("runs handlers after the publishing request is cancelled", func() {
		// Given a handler that records its context error
		var (
			mu     sync.Mutex
			ctxErr error
		)
		bus.Subscribe(events.CustomerCreated, func(hctx context.Context, _ events.Event) error {
			mu.Lock()
			defer mu.Unlock()
			ctxErr = hctx.Err()
			return nil
		})

		// When the event is published on an already cancelled request context
		reqCtx, cancel := context.WithCancel(ctx)
		cancel()
		Expect(bus.Publish(reqCtx, events.NewRecordEvent(events.CustomerCreated, "users", "u-9", events.ActionCreate, "u-1", nil))).To(Succeed())
		bus.Wait()

		// Then the handler still sees a live context
		mu.Lock()
		defer mu.Unlock()
		Expect(ctxErr).NotTo(HaveOccurred())
	})

	It("keeps async handler failures away from the publisher", func() {
		bus.Subscribe(events.SalesPersonCreated, func(context.Context, events.Event) error {
			return errors.New("disk full")
		})
		Expect(bus.Publish(ctx, events.NewRecordEvent(events.SalesPersonCreated, "sales_people", "s-1", events.ActionCreate, "u-1", nil))).To(Succeed())
		bus.Wait()
	})

	It("surfaces failures from synchronous publishing", func() {
		bus.Subscribe(events.SalesPersonCreated, func(context.Context, events.Event) error {
			return errors.New("disk full")
		})
		err := bus.PublishSync(ctx, events.NewRecordEvent(events.SalesPersonCreated, "sales_people", "s-1", events.ActionCreate, "u-1", nil))
		Expect(err).To(MatchError(ContainSubstring("disk full")))
	})
})

var _ = Describe("RecordEvent", func() {
	It("carries the row mutation", func() {
		diff := map[string]events.Change{"status": {Old: "approved", New: "reimbursed"}}
		e := events.NewRecordEvent(events.ExpenseAdvanced, "expenses", "e-1", events.ActionUpdate, "u-1", diff)

		Expect(e.EventID()).To(HaveLen(36))
		Expect(e.EventType()).To(Equal(events.ExpenseAdvanced))
		Expect(e.OccurredAt()).NotTo(BeZero())
		Expect(e.Payload()).To(Equal(e))
		Expect(events.RecordEventTypes).To(ContainElement(events.ExpenseAdvanced))
	})
})

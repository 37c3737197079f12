package worker_test

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/saas-admin/internal/notification"
	"github.com/frahmantamala/saas-admin/internal/worker"
	"github.com/frahmantamala/saas-admin/pkg/logger"
)

type zeroSummary struct{}

func (zeroSummary) Summary(context.Context, time.Time) (notification.Summary, error) {
	return notification.Summary{}, nil
}

var _ = Describe("Worker", func() {
	redisOpts := asynq.RedisClientOpt{Addr: "127.0.0.1:1"}

	It("rejects a malformed cron spec", func() {
		task, err := notification.NewDigestTask(notification.DigestPayload{})
		Expect(err).NotTo(HaveOccurred())

		_, err = worker.New(worker.Config{
			RedisOpts: redisOpts,
			Logger:    logger.Discard(),
			Cron:      []worker.CronRegistration{{Spec: "every morning", Task: task}},
		})
		Expect(err).To(HaveOccurred())
	})

	It("builds with the digest handler and schedule", func() {
		task, err := notification.NewDigestTask(notification.DigestPayload{})
		Expect(err).NotTo(HaveOccurred())
		job := notification.NewDigestJob(zeroSummary{}, logger.Discard())

		w, err := worker.New(worker.Config{
			RedisOpts: redisOpts,
			Logger:    logger.Discard(),
			Handlers:  []worker.TaskHandler{{Type: notification.TaskExpiryDigest, Handler: job.Handle}},
			Cron:      []worker.CronRegistration{{Spec: "0 8 * * *", Task: task}},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(w).NotTo(BeNil())
	})

	It("refuses to run when unconfigured", func() {
		var w *worker.Worker
		Expect(w.Run(context.Background())).To(MatchError(ContainSubstring("not configured")))
	})
})

package mailer_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	mailDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/maildelivery"
	"github.com/frahmantamala/mastersight/internal/core/events"
	"github.com/frahmantamala/mastersight/internal/mailer"
	mailerPostgres "github.com/frahmantamala/mastersight/internal/mailer/postgres"
	"github.com/frahmantamala/mastersight/internal/metrics"
	"github.com/frahmantamala/mastersight/internal/testutil"
	"github.com/frahmantamala/mastersight/pkg/logger"
)

var _ = Describe("Mail delivery", func() {
	var (
		ctx      context.Context
		db       *gorm.DB
		repo     mailer.RepositoryAPI
		renderer *mailer.Renderer
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = testutil.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())
		repo = mailerPostgres.NewDeliveryRepository(db)
		renderer, err = mailer.NewRenderer()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		testutil.Close(db)
	})

	delivery := func(id int64) *mailDatamodel.Delivery {
		d, err := repo.Find(ctx, id)
		Expect(err).NotTo(HaveOccurred())
		Expect(d).NotTo(BeNil())
		return d
	}

	Describe("EventHandler", func() {
		var queue *recordingQueue

		BeforeEach(func() {
			queue = &recordingQueue{}
		})

		handler := func() *mailer.EventHandler {
			return mailer.NewEventHandler(renderer, repo, queue, "https://app.mastersight.com/", logger.Discard())
		}

		It("persists a password reset mail with the reset link and queues it", func() {
			event := events.NewPasswordResetRequestedEvent("ana@example.com", "abc123", time.Now().Add(time.Hour))
			Expect(handler().HandlePasswordResetRequested(ctx, event)).To(Succeed())

			jobs := queue.Jobs()
			Expect(jobs).To(HaveLen(1))
			d := delivery(jobs[0].DeliveryID)
			Expect(d.Kind).To(Equal("password_reset"))
			Expect(d.Recipient).To(Equal("ana@example.com"))
			Expect(d.Status).To(Equal(mailDatamodel.StatusPending))
			Expect(d.Body).To(ContainSubstring("https://app.mastersight.com/auth/reset?token=abc123"))
			Expect(d.Body).To(ContainSubstring("1 hora"))
		})

		It("includes the temporary password for created accounts", func() {
			event := events.NewMemberCreatedEvent(1, "bia@acme.com", "Bia", "Xy7!abcd")
			Expect(handler().HandleMemberCreated(ctx, event)).To(Succeed())

			d := delivery(queue.Jobs()[0].DeliveryID)
			Expect(d.Kind).To(Equal("account_created"))
			Expect(d.Body).To(ContainSubstring("Xy7!abcd"))
		})

		It("names the inviter and company in invitations", func() {
			event := events.NewMemberInvitedEvent(1, "Acme", "caio@example.com", "Caio", "Olivia")
			Expect(handler().HandleMemberInvited(ctx, event)).To(Succeed())

			d := delivery(queue.Jobs()[0].DeliveryID)
			Expect(d.Subject).To(Equal("Você foi convidado para uma empresa"))
			Expect(d.Body).To(ContainSubstring("Olivia"))
			Expect(d.Body).To(ContainSubstring("Acme"))
		})

		It("keeps the row pending when the queue is full", func() {
			queue.full = true
			event := events.NewMemberInvitedEvent(1, "Acme", "caio@example.com", "Caio", "Olivia")
			Expect(handler().HandleMemberInvited(ctx, event)).To(Succeed())

			var rows []mailDatamodel.Delivery
			Expect(db.Find(&rows).Error).To(Succeed())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Status).To(Equal(mailDatamodel.StatusPending))
		})

		It("rejects events of the wrong type", func() {
			event := events.NewMemberInvitedEvent(1, "Acme", "caio@example.com", "Caio", "Olivia")
			Expect(handler().HandleMemberCreated(ctx, event)).To(HaveOccurred())
		})

		It("runs from the event bus", func() {
			bus := events.NewEventBus(logger.Discard())
			handler().RegisterEventHandlers(bus)

			Expect(bus.PublishSync(ctx, events.NewMemberCreatedEvent(1, "d@acme.com", "Duda", "pw"))).To(Succeed())
			Expect(queue.Jobs()).To(HaveLen(1))
		})
	})

	Describe("Dispatcher", func() {
		var (
			sender     *fakeSender
			dispatcher *mailer.Dispatcher
		)

		create := func() int64 {
			d := &mailDatamodel.Delivery{Kind: "password_reset", Recipient: "ana@example.com", Subject: "s", Body: "b", Status: mailDatamodel.StatusPending}
			Expect(repo.Create(ctx, d)).To(Succeed())
			return d.ID
		}

		start := func(failures int) {
			sender = &fakeSender{failures: failures}
			dispatcher = mailer.NewDispatcher(sender, repo, metrics.Nop{}, mailer.DispatcherConfig{
				Workers:      2,
				QueueSize:    4,
				MaxAttempts:  3,
				RetryBackoff: time.Millisecond,
			}, logger.Discard())
			dispatcher.Start()
			DeferCleanup(dispatcher.Shutdown)
		}

		It("sends and marks the delivery sent", func() {
			start(0)
			id := create()
			Expect(dispatcher.Enqueue(mailer.JobFromDelivery(delivery(id)))).To(BeTrue())

			Eventually(func() string { return delivery(id).Status }).Should(Equal(mailDatamodel.StatusSent))
			d := delivery(id)
			Expect(d.Attempts).To(Equal(1))
			Expect(d.SentAt).NotTo(BeNil())
			Expect(sender.Sent()).To(HaveLen(1))
		})

		It("clears the stored body of a sent temporary password mail", func() {
			start(0)
			queue := &recordingQueue{}
			handler := mailer.NewEventHandler(renderer, repo, queue, "https://app.mastersight.com", logger.Discard())
			Expect(handler.HandleMemberCreated(ctx, events.NewMemberCreatedEvent(1, "bia@acme.com", "Bia", "tmpPW123"))).To(Succeed())

			id := queue.Jobs()[0].DeliveryID
			Expect(dispatcher.Enqueue(queue.Jobs()[0])).To(BeTrue())

			Eventually(func() string { return delivery(id).Status }).Should(Equal(mailDatamodel.StatusSent))
			Expect(sender.Sent()[0].Body).To(ContainSubstring("tmpPW123"))
			Expect(delivery(id).Body).To(BeEmpty())
		})

		It("drops a job whose delivery was already sent", func() {
			start(0)
			id := create()
			job := mailer.JobFromDelivery(delivery(id))
			Expect(repo.MarkSent(ctx, id, 1, time.Now())).To(Succeed())

			Expect(dispatcher.Enqueue(job)).To(BeTrue())
			Consistently(sender.Calls, 50*time.Millisecond).Should(BeZero())
		})

		It("sends each delivery once when a sweep runs during a backlog", func() {
			slow := newSlowSender(100 * time.Millisecond)
			pool := mailer.NewDispatcher(slow, repo, metrics.Nop{}, mailer.DispatcherConfig{
				Workers:      1,
				QueueSize:    4,
				MaxAttempts:  3,
				RetryBackoff: time.Millisecond,
			}, logger.Discard())
			pool.Start()
			DeferCleanup(pool.Shutdown)

			ids := []int64{}
			for _, to := range []string{"a@x.com", "b@x.com"} {
				d := &mailDatamodel.Delivery{Kind: "member_invited", Recipient: to, Subject: "s", Body: "b", Status: mailDatamodel.StatusPending}
				Expect(repo.Create(ctx, d)).To(Succeed())
				Expect(pool.Enqueue(mailer.JobFromDelivery(d))).To(BeTrue())
				ids = append(ids, d.ID)
			}
			Eventually(slow.Calls).Should(BeNumerically(">=", 1))

			n, err := mailer.NewRedeliverer(repo, pool, time.Minute, 3, logger.Discard()).WithGrace(-time.Second).Sweep(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeNumerically("<=", 1))

			for _, id := range ids {
				id := id
				Eventually(func() string { return delivery(id).Status }).Should(Equal(mailDatamodel.StatusSent))
			}
			Consistently(slow.Sends, 300*time.Millisecond).Should(Equal(map[string]int{"a@x.com": 1, "b@x.com": 1}))
		})

		It("retries transient failures", func() {
			start(2)
			id := create()
			Expect(dispatcher.Enqueue(mailer.JobFromDelivery(delivery(id)))).To(BeTrue())

			Eventually(func() string { return delivery(id).Status }).Should(Equal(mailDatamodel.StatusSent))
			Expect(delivery(id).Attempts).To(Equal(3))
			Expect(sender.Calls()).To(Equal(3))
		})

		It("gives up after the attempt limit", func() {
			start(10)
			id := create()
			Expect(dispatcher.Enqueue(mailer.JobFromDelivery(delivery(id)))).To(BeTrue())

			Eventually(func() string { return delivery(id).Status }).Should(Equal(mailDatamodel.StatusFailed))
			d := delivery(id)
			Expect(d.Attempts).To(Equal(3))
			Expect(d.LastError).To(ContainSubstring("421"))
			Expect(d.Body).To(BeEmpty())
			Consistently(sender.Calls, 50*time.Millisecond).Should(Equal(3))
		})

		It("continues counting from attempts already made", func() {
			start(10)
			id := create()
			Expect(db.Model(&mailDatamodel.Delivery{}).Where("id = ?", id).
				UpdateColumns(map[string]interface{}{"status": mailDatamodel.StatusFailed, "attempts": 2}).Error).To(Succeed())
			Expect(dispatcher.Enqueue(mailer.JobFromDelivery(delivery(id)))).To(BeTrue())

			Eventually(func() string { return delivery(id).Status }).Should(Equal(mailDatamodel.StatusFailed))
			Expect(sender.Calls()).To(Equal(1))
		})
	})

	Describe("Redeliverer", func() {
		It("queues pending and failed rows below the limit", func() {
			rows := []*mailDatamodel.Delivery{
				{Kind: "password_reset", Recipient: "a@x.com", Subject: "s", Body: "b", Status: mailDatamodel.StatusPending},
				{Kind: "password_reset", Recipient: "b@x.com", Subject: "s", Body: "b", Status: mailDatamodel.StatusFailed, Attempts: 1},
				{Kind: "password_reset", Recipient: "c@x.com", Subject: "s", Body: "b", Status: mailDatamodel.StatusFailed, Attempts: 5},
				{Kind: "password_reset", Recipient: "d@x.com", Subject: "s", Body: "b", Status: mailDatamodel.StatusSent, Attempts: 1},
			}
			for _, d := range rows {
				Expect(repo.Create(ctx, d)).To(Succeed())
			}

			queue := &recordingQueue{}
			r := mailer.NewRedeliverer(repo, queue, time.Minute, 5, logger.Discard()).WithGrace(-time.Second)
			n, err := r.Sweep(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))

			recipients := []string{}
			for _, j := range queue.Jobs() {
				recipients = append(recipients, j.Recipient)
			}
			Expect(recipients).To(ConsistOf("a@x.com", "b@x.com"))
		})

		It("requeues a sending row only after its lease ran out", func() {
			stale := &mailDatamodel.Delivery{Kind: "password_reset", Recipient: "stale@x.com", Subject: "s", Body: "b"}
			fresh := &mailDatamodel.Delivery{Kind: "password_reset", Recipient: "fresh@x.com", Subject: "s", Body: "b"}
			Expect(repo.Create(ctx, stale)).To(Succeed())
			Expect(repo.Create(ctx, fresh)).To(Succeed())
			Expect(db.Model(&mailDatamodel.Delivery{}).Where("id = ?", stale.ID).
				UpdateColumns(map[string]interface{}{"status": mailDatamodel.StatusSending, "updated_at": time.Now().Add(-10 * time.Minute)}).Error).To(Succeed())
			Expect(db.Model(&mailDatamodel.Delivery{}).Where("id = ?", fresh.ID).
				UpdateColumns(map[string]interface{}{"status": mailDatamodel.StatusSending, "updated_at": time.Now()}).Error).To(Succeed())

			queue := &recordingQueue{}
			r := mailer.NewRedeliverer(repo, queue, time.Minute, 5, logger.Discard()).WithGrace(-time.Second).WithLease(time.Minute)
			n, err := r.Sweep(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))
			Expect(queue.Jobs()[0].Recipient).To(Equal("stale@x.com"))
		})

		It("skips rows whose body was cleared", func() {
			d := &mailDatamodel.Delivery{Kind: "account_created", Recipient: "a@x.com", Subject: "s", Body: "b"}
			Expect(repo.Create(ctx, d)).To(Succeed())
			Expect(repo.MarkFailed(ctx, d.ID, 1, "550 mailbox unavailable")).To(Succeed())

			queue := &recordingQueue{}
			n, err := mailer.NewRedeliverer(repo, queue, time.Minute, 5, logger.Discard()).WithGrace(-time.Second).Sweep(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})

		It("leaves rows that were just touched alone", func() {
			Expect(repo.Create(ctx, &mailDatamodel.Delivery{Kind: "password_reset", Recipient: "a@x.com", Subject: "s", Body: "b"})).To(Succeed())

			queue := &recordingQueue{}
			n, err := mailer.NewRedeliverer(repo, queue, time.Minute, 5, logger.Discard()).Sweep(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})
	})
})

package team_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/mastersight/internal"
	departmentDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/department"
	feedbackDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/feedback"
	membershipDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/membership"
	roleDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/role"
	taskDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/user"
	"github.com/frahmantamala/mastersight/internal/core/events"
	"github.com/frahmantamala/mastersight/internal/team"
	teamPostgres "github.com/frahmantamala/mastersight/internal/team/postgres"
	"github.com/frahmantamala/mastersight/internal/tenancy"
	tenancyPostgres "github.com/frahmantamala/mastersight/internal/tenancy/postgres"
	"github.com/frahmantamala/mastersight/internal/testutil"
	"github.com/frahmantamala/mastersight/internal/transport"
	"github.com/frahmantamala/mastersight/pkg/logger"
)

var _ = Describe("Team Handler Integration", func() {
	var (
		db        *gorm.DB
		handler   *team.Handler
		publisher *recordingPublisher
		owner     internal.Identity
		employee  internal.Identity
		company   int64
		dept      *departmentDatamodel.Department
		role      *roleDatamodel.Role
	)

	BeforeEach(func() {
		var err error
		db, err = testutil.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())

		publisher = &recordingPublisher{}
		authorizer := tenancy.NewAuthorizer(tenancyPostgres.NewMembershipRepository(db), logger.Discard())
		service := team.NewService(teamPostgres.NewTeamRepository(db), authorizer, publisher, bcrypt.MinCost, logger.Discard())
		handler = team.NewHandler(transport.NewBaseHandler(logger.Discard()), service)

		c, err := testutil.SeedCompany(db, "Acme", "acme.com")
		Expect(err).NotTo(HaveOccurred())
		company = c.ID

		dept = &departmentDatamodel.Department{CompanyID: company, Name: "Eng"}
		Expect(db.Create(dept).Error).To(Succeed())
		role = &roleDatamodel.Role{CompanyID: company, DepartmentID: dept.ID, Name: "Dev"}
		Expect(db.Create(role).Error).To(Succeed())

		u, err := testutil.SeedUser(db, "Olivia Owner")
		Expect(err).NotTo(HaveOccurred())
		flags, _ := tenancy.PresetFlags(tenancy.PresetOwner)
		_, err = testutil.SeedMember(db, company, u.ID, flags...)
		Expect(err).NotTo(HaveOccurred())
		owner = internal.Identity{ID: u.ID}

		e, err := testutil.SeedUser(db, "Eve Employee")
		Expect(err).NotTo(HaveOccurred())
		_, err = testutil.SeedMember(db, company, e.ID)
		Expect(err).NotTo(HaveOccurred())
		employee = internal.Identity{ID: e.ID}
	})

	AfterEach(func() {
		testutil.Close(db)
	})

	serve := func(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec
	}

	addBody := func(email, name string, perms string) string {
		return `{"companyId":` + itoa(company) + `,"email":"` + email + `","name":"` + name +
			`","department":` + itoa(dept.ID) + `,"role":` + itoa(role.ID) + `,"permissions":` + perms + `}`
	}

	Describe("GetTeam", func() {
		It("joins the user profile and the admin flag", func() {
			Expect(db.Create(&userDatamodel.Admin{Email: "olivia.owner@example.com", Name: "Olivia", PasswordHash: "x"}).Error).To(Succeed())

			rec := serve(handler.GetTeam, testutil.NewRequest(http.MethodGet, "/?companyId="+itoa(company), "", &employee))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp team.TeamResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Team).To(HaveLen(2))
			Expect(resp.Team[0].Name).To(Equal("Olivia Owner"))
			Expect(resp.Team[0].Admin).To(BeTrue())
			Expect(resp.Team[1].Admin).To(BeFalse())
			Expect(resp.Team[1].CPF).To(Equal("CPF indisponível"))
		})
	})

	Describe("AddMember", func() {
		It("creates an account for an unknown email on the company domain", func() {
			rec := serve(handler.AddMember, testutil.NewRequest(http.MethodPost, "/", addBody("new@acme.com", "Newton", `["viewUsers"]`), &owner))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"message":"user-created-and-added"}`))

			var u userDatamodel.User
			Expect(db.Where("email = ?", "new@acme.com").First(&u).Error).To(Succeed())
			Expect(u.CPF).To(BeNil())

			var m membershipDatamodel.Membership
			Expect(db.Where("company_id = ? AND user_id = ?", company, u.ID).First(&m).Error).To(Succeed())
			Expect(m.Status).To(Equal(membershipDatamodel.StatusActive))
			Expect(m.Permissions).To(Equal([]string{"viewUsers"}))

			published := publisher.All()
			Expect(published).To(HaveLen(1))
			created, ok := published[0].(*events.MemberCreatedEvent)
			Expect(ok).To(BeTrue())
			Expect(created.TemporaryPassword).To(HaveLen(8))
			Expect(bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(created.TemporaryPassword))).To(Succeed())
		})

		It("rejects an unknown email outside the domain", func() {
			rec := serve(handler.AddMember, testutil.NewRequest(http.MethodPost, "/", addBody("stranger@gmail.com", "Stranger", `[]`), &owner))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"user-not-exists"}`))
		})

		It("invites an existing user", func() {
			guest, err := testutil.SeedUser(db, "Guest")
			Expect(err).NotTo(HaveOccurred())

			rec := serve(handler.AddMember, testutil.NewRequest(http.MethodPost, "/", addBody(guest.Email, "Guest", `[]`), &owner))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"message":"user-invited"}`))

			var m membershipDatamodel.Membership
			Expect(db.Where("company_id = ? AND user_id = ?", company, guest.ID).First(&m).Error).To(Succeed())
			Expect(m.Status).To(Equal(membershipDatamodel.StatusInvited))

			invited, ok := publisher.All()[0].(*events.MemberInvitedEvent)
			Expect(ok).To(BeTrue())
			Expect(invited.InviterName).To(Equal("Olivia Owner"))
			Expect(invited.CompanyName).To(Equal("Acme"))
		})

		It("rejects someone already on the team", func() {
			rec := serve(handler.AddMember, testutil.NewRequest(http.MethodPost, "/", addBody("eve.employee@example.com", "Eve Employee", `[]`), &owner))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"user-already-in-company"}`))
		})

		It("applies a preset when no flags are sent", func() {
			body := `{"companyId":` + itoa(company) + `,"email":"boss@acme.com","name":"Boss","department":` + itoa(dept.ID) +
				`,"role":` + itoa(role.ID) + `,"preset":"manager"}`
			rec := serve(handler.AddMember, testutil.NewRequest(http.MethodPost, "/", body, &owner))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var m membershipDatamodel.Membership
			Expect(db.Joins("JOIN users ON users.id = company_users.user_id").Where("users.email = ?", "boss@acme.com").First(&m).Error).To(Succeed())
			Expect(m.Permissions).To(ContainElement(string(tenancy.EditUsers)))
		})

		DescribeTable("validation",
			func(mutate func() string, code string) {
				rec := serve(handler.AddMember, testutil.NewRequest(http.MethodPost, "/", mutate(), &owner))
				Expect(rec.Code).To(Equal(http.StatusBadRequest))
				Expect(rec.Body.String()).To(MatchJSON(`{"error":"` + code + `"}`))
			},
			Entry("bad email", func() string { return addBody("not-an-email", "Name", `[]`) }, "invalid-email"),
			Entry("short name", func() string { return addBody("x@acme.com", "Al", `[]`) }, "invalid-name"),
			Entry("unknown flag", func() string { return addBody("x@acme.com", "Name", `["launchRockets"]`) }, "invalid-permissions"),
			Entry("department of another tenant", func() string {
				return `{"companyId":` + itoa(company) + `,"email":"x@acme.com","name":"Name","department":9999,"role":` + itoa(role.ID) + `}`
			}, "invalid-department-id"),
		)

		It("requires addUsers", func() {
			rec := serve(handler.AddMember, testutil.NewRequest(http.MethodPost, "/", addBody("new@acme.com", "Newton", `[]`), &employee))
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(publisher.All()).To(BeEmpty())
		})
	})

	Describe("RemoveMember", func() {
		var target *membershipDatamodel.Membership

		BeforeEach(func() {
			var m membershipDatamodel.Membership
			Expect(db.Where("user_id = ?", employee.ID).First(&m).Error).To(Succeed())
			target = &m

			Expect(db.Create(&taskDatamodel.Task{CompanyID: company, UserID: employee.ID, Title: "Ship it"}).Error).To(Succeed())
			Expect(db.Create(&feedbackDatamodel.Feedback{CompanyID: company, UserID: employee.ID, CreatorID: owner.ID, Score: 9}).Error).To(Succeed())
			Expect(db.Create(&taskDatamodel.Task{CompanyID: company + 1, UserID: employee.ID, Title: "Elsewhere"}).Error).To(Succeed())
		})

		countFor := func(model interface{}, companyID, userID int64) int64 {
			var n int64
			Expect(db.Model(model).Where("company_id = ? AND user_id = ?", companyID, userID).Count(&n).Error).To(Succeed())
			return n
		}

		It("removes the membership with its tasks and feedbacks", func() {
			body := `{"companyId":` + itoa(company) + `,"userId":` + itoa(target.ID) + `}`
			rec := serve(handler.RemoveMember, testutil.NewRequest(http.MethodPost, "/", body, &owner))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"success":true}`))

			Expect(countFor(&membershipDatamodel.Membership{}, company, employee.ID)).To(BeZero())
			Expect(countFor(&taskDatamodel.Task{}, company, employee.ID)).To(BeZero())
			Expect(countFor(&feedbackDatamodel.Feedback{}, company, employee.ID)).To(BeZero())
			Expect(countFor(&taskDatamodel.Task{}, company+1, employee.ID)).To(Equal(int64(1)))
		})

		It("deletes nothing when a step fails", func() {
			Expect(db.Migrator().DropTable(&feedbackDatamodel.Feedback{})).To(Succeed())

			body := `{"companyId":` + itoa(company) + `,"memberId":` + itoa(target.ID) + `}`
			rec := serve(handler.RemoveMember, testutil.NewRequest(http.MethodPost, "/", body, &owner))
			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"internal-server-error"}`))

			Expect(countFor(&membershipDatamodel.Membership{}, company, employee.ID)).To(Equal(int64(1)))
			Expect(countFor(&taskDatamodel.Task{}, company, employee.ID)).To(Equal(int64(1)))
		})

		It("answers member-not-found for unknown ids", func() {
			body := `{"companyId":` + itoa(company) + `,"memberId":99999}`
			rec := serve(handler.RemoveMember, testutil.NewRequest(http.MethodPost, "/", body, &owner))
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"member-not-found"}`))
		})

		It("answers invalid-member-id without an id", func() {
			rec := serve(handler.RemoveMember, testutil.NewRequest(http.MethodPost, "/", `{"companyId":`+itoa(company)+`}`, &owner))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"invalid-member-id"}`))
		})
	})

	Describe("EditMember", func() {
		It("stores the masked salary as cents and the new flags", func() {
			var m membershipDatamodel.Membership
			Expect(db.Where("user_id = ?", employee.ID).First(&m).Error).To(Succeed())

			body := `{"companyId":` + itoa(company) + `,"userId":` + itoa(m.ID) + `,"department":` + itoa(dept.ID) +
				`,"role":` + itoa(role.ID) + `,"salary":"R$ 3.250,75","permissions":["viewRoles"]}`
			rec := serve(handler.EditMember, testutil.NewRequest(http.MethodPost, "/", body, &owner))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"message":"user-edited"}`))

			Expect(db.First(&m, m.ID).Error).To(Succeed())
			Expect(m.Salary).To(BeNumerically("~", 3250.75, 1e-9))
			Expect(m.Permissions).To(Equal([]string{"viewRoles"}))
			Expect(m.RoleID).To(Equal(role.ID))
		})

		It("answers member-not-found", func() {
			body := `{"companyId":` + itoa(company) + `,"memberId":4242,"salary":"1,00"}`
			rec := serve(handler.EditMember, testutil.NewRequest(http.MethodPost, "/", body, &owner))
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})
})

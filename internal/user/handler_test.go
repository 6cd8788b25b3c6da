package user_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/internal/auth"
	membershipDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/membership"
	userDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/user"
	"github.com/frahmantamala/mastersight/internal/storage"
	"github.com/frahmantamala/mastersight/internal/testutil"
	"github.com/frahmantamala/mastersight/internal/transport"
	"github.com/frahmantamala/mastersight/internal/user"
	userPostgres "github.com/frahmantamala/mastersight/internal/user/postgres"
	"github.com/frahmantamala/mastersight/pkg/logger"
)

var _ = Describe("User Handler Integration", func() {
	var (
		db      *gorm.DB
		handler *user.Handler
		issuer  *stubIssuer
		me      internal.Identity
	)

	BeforeEach(func() {
		var err error
		db, err = testutil.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())

		issuer = &stubIssuer{}
		sessions := auth.NewSessionResolver(auth.NewJWTTokenGenerator("secret", time.Hour), auth.DefaultCookieName, false)
		uploader := storage.NewUploader(storage.NewLocalBackend(GinkgoT().TempDir()), 0, logger.Discard())
		service := user.NewService(userPostgres.NewUserRepository(db), issuer, bcrypt.MinCost, logger.Discard())
		handler = user.NewHandler(transport.NewBaseHandler(logger.Discard()), service, sessions, uploader)

		u, err := testutil.SeedUser(db, "Maria Silva")
		Expect(err).NotTo(HaveOccurred())
		me = internal.Identity{ID: u.ID}
	})

	AfterEach(func() {
		testutil.Close(db)
	})

	serve := func(h http.HandlerFunc, method, body string, id *internal.Identity) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h(rec, testutil.NewRequest(method, "/", body, id))
		return rec
	}

	Describe("GetCurrentUser", func() {
		It("returns the user profile", func() {
			rec := serve(handler.GetCurrentUser, http.MethodGet, "", &me)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp user.UserResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.User.Email).To(Equal("maria.silva@example.com"))
			Expect(resp.User.Admin).To(BeFalse())
		})

		It("reads admins from their own table", func() {
			a := &userDatamodel.Admin{Email: "root@mastersight.com", Name: "Root", PasswordHash: "x", Master: true}
			Expect(db.Create(a).Error).To(Succeed())

			rec := serve(handler.GetCurrentUser, http.MethodGet, "", &internal.Identity{ID: a.ID, Admin: true})
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp user.UserResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.User.Admin).To(BeTrue())
			Expect(resp.User.Email).To(Equal("root@mastersight.com"))
		})

		It("answers 404 for a deleted account", func() {
			rec := serve(handler.GetCurrentUser, http.MethodGet, "", &internal.Identity{ID: 9999})
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"user-not-found"}`))
		})
	})

	Describe("CreateUser", func() {
		const valid = `{"name":"Joao Souza","email":"Joao@Example.com","cpf":"111.222.333-44","password":"Str0ng!pass"}`

		It("registers the account and sets the session cookie", func() {
			rec := serve(handler.CreateUser, http.MethodPost, valid, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp user.UserResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.User.Email).To(Equal("joao@example.com"))
			Expect(*resp.User.CPF).To(Equal("11122233344"))

			Expect(issuer.issued).To(ConsistOf(internal.Identity{ID: resp.User.ID}))
			cookies := rec.Result().Cookies()
			Expect(cookies).To(HaveLen(1))
			Expect(cookies[0].Name).To(Equal(auth.DefaultCookieName))
			Expect(cookies[0].Value).To(Equal("signed-token"))
			Expect(cookies[0].HttpOnly).To(BeTrue())

			var stored userDatamodel.User
			Expect(db.First(&stored, resp.User.ID).Error).To(Succeed())
			Expect(bcrypt.CompareHashAndPassword([]byte(*stored.PasswordHash), []byte("Str0ng!pass"))).To(Succeed())
		})

		DescribeTable("rejections",
			func(body, code string) {
				rec := serve(handler.CreateUser, http.MethodPost, body, nil)
				Expect(rec.Code).To(Equal(http.StatusBadRequest))
				Expect(rec.Body.String()).To(MatchJSON(`{"error":"` + code + `"}`))
				Expect(rec.Result().Cookies()).To(BeEmpty())
			},
			Entry("bad email", `{"name":"Joao","email":"nope","cpf":"11122233344","password":"Str0ng!pass"}`, "invalid-email"),
			Entry("weak password", `{"name":"Joao","email":"j@example.com","cpf":"11122233344","password":"password"}`, "weak-password"),
			Entry("short name", `{"name":"Jo","email":"j@example.com","cpf":"11122233344","password":"Str0ng!pass"}`, "invalid-name"),
			Entry("malformed cpf", `{"name":"Joao","email":"j@example.com","cpf":"123","password":"Str0ng!pass"}`, "invalid-cpf"),
			Entry("taken email", `{"name":"Maria","email":"MARIA.SILVA@example.com","cpf":"11122233344","password":"Str0ng!pass"}`, "email-already-registered"),
		)

		It("rejects a cpf already in use", func() {
			cpf := "11122233344"
			Expect(db.Model(&userDatamodel.User{}).Where("id = ?", me.ID).Update("cpf", cpf).Error).To(Succeed())

			rec := serve(handler.CreateUser, http.MethodPost, valid, nil)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"cpf-already-registered"}`))
		})
	})

	Describe("UpdateUser", func() {
		It("applies only the fields that were sent", func() {
			rec := serve(handler.UpdateUser, http.MethodPost, `{"birthday":"1990-05-17","description":"<p>Hello</p>"}`, &me)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp user.UserResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.User.Name).To(Equal("Maria Silva"))
			Expect(resp.User.Description).To(Equal("Hello"))
			Expect(resp.User.Birthday).NotTo(BeNil())
			Expect(resp.User.Birthday.Year()).To(Equal(1990))
		})

		It("rejects a birthday in the future", func() {
			future := time.Now().AddDate(1, 0, 0).Format("2006-01-02")
			rec := serve(handler.UpdateUser, http.MethodPost, `{"birthday":"`+future+`"}`, &me)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"invalid-birthday"}`))
		})

		It("rejects another user's cpf", func() {
			cpf := "99988877766"
			other := &userDatamodel.User{Email: "other@example.com", Name: "Other", CPF: &cpf}
			Expect(db.Create(other).Error).To(Succeed())

			rec := serve(handler.UpdateUser, http.MethodPost, `{"cpf":"999.888.777-66"}`, &me)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"cpf-already-registered"}`))
		})

		It("requires a session", func() {
			Expect(serve(handler.UpdateUser, http.MethodPost, `{"name":"X"}`, nil).Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("UpdatePassword", func() {
		It("stores a new hash", func() {
			rec := serve(handler.UpdatePassword, http.MethodPost, `{"password":"N3w!password"}`, &me)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"success":true}`))

			var stored userDatamodel.User
			Expect(db.First(&stored, me.ID).Error).To(Succeed())
			Expect(bcrypt.CompareHashAndPassword([]byte(*stored.PasswordHash), []byte("N3w!password"))).To(Succeed())
		})

		It("rejects a weak password", func() {
			rec := serve(handler.UpdatePassword, http.MethodPost, `{"password":"short"}`, &me)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"weak-password"}`))
		})
	})

	Describe("companies and invites", func() {
		var active, invited int64

		BeforeEach(func() {
			a, err := testutil.SeedCompany(db, "Acme", "acme.com")
			Expect(err).NotTo(HaveOccurred())
			active = a.ID
			_, err = testutil.SeedMember(db, active, me.ID, "viewUsers")
			Expect(err).NotTo(HaveOccurred())

			b, err := testutil.SeedCompany(db, "Globex", "globex.com")
			Expect(err).NotTo(HaveOccurred())
			invited = b.ID
			m, err := testutil.SeedMember(db, invited, me.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(db.Model(m).Update("status", membershipDatamodel.StatusInvited).Error).To(Succeed())
		})

		companies := func() []user.CompanyAccess {
			rec := serve(handler.GetCompanies, http.MethodGet, "", &me)
			Expect(rec.Code).To(Equal(http.StatusOK))
			var resp user.CompaniesResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			return resp.Companies
		}

		It("lists active companies with permissions and no last access yet", func() {
			list := companies()
			Expect(list).To(HaveLen(1))
			Expect(list[0].Name).To(Equal("Acme"))
			Expect(list[0].Permissions).To(ConsistOf("viewUsers"))
			Expect(list[0].LastAccess).To(BeNil())
		})

		It("records last access in milliseconds", func() {
			before := time.Now().UnixMilli()
			rec := serve(handler.TouchLastAccess, http.MethodPost, fmt.Sprintf(`{"companyId":%d}`, active), &me)
			Expect(rec.Code).To(Equal(http.StatusOK))

			list := companies()
			Expect(list[0].LastAccess).NotTo(BeNil())
			Expect(*list[0].LastAccess).To(BeNumerically(">=", before-1000))
		})

		It("rejects last access for a company the user is not in", func() {
			rec := serve(handler.TouchLastAccess, http.MethodPost, `{"companyId":9999}`, &me)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"user-not-in-company"}`))
		})

		It("rejects last access without a company", func() {
			rec := serve(handler.TouchLastAccess, http.MethodPost, `{}`, &me)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"invalid-company"}`))
		})

		It("lists and accepts invites", func() {
			rec := serve(handler.GetInvites, http.MethodGet, "", &me)
			Expect(rec.Code).To(Equal(http.StatusOK))
			var resp user.InvitesResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Invites).To(HaveLen(1))
			Expect(resp.Invites[0].CompanyName).To(Equal("Globex"))

			rec = serve(handler.AcceptInvite, http.MethodPost, fmt.Sprintf(`{"companyId":%d}`, invited), &me)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(companies()).To(HaveLen(2))

			rec = serve(handler.AcceptInvite, http.MethodPost, fmt.Sprintf(`{"companyId":%d}`, invited), &me)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"invite-not-found"}`))
		})

		It("declines an invite by removing the membership", func() {
			rec := serve(handler.DeclineInvite, http.MethodPost, fmt.Sprintf(`{"companyId":%d}`, invited), &me)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var n int64
			Expect(db.Model(&membershipDatamodel.Membership{}).Where("company_id = ?", invited).Count(&n).Error).To(Succeed())
			Expect(n).To(BeZero())
		})

		It("does not decline an active membership", func() {
			rec := serve(handler.DeclineInvite, http.MethodPost, fmt.Sprintf(`{"companyId":%d}`, active), &me)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(companies()).To(HaveLen(1))
		})
	})
})

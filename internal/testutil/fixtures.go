package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"gorm.io/gorm"

	"github.com/frahmantamala/mastersight/internal"
	companyDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/company"
	membershipDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/membership"
	userDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/user"
)

// SeedCompany inserts a company and returns it.
func SeedCompany(db *gorm.DB, name, domain string) (*companyDatamodel.Company, error) {
	c := &companyDatamodel.Company{Name: name, Domain: domain}
	return c, db.Create(c).Error
}

// SeedUser inserts a user with a unique email derived from name.
func SeedUser(db *gorm.DB, name string) (*userDatamodel.User, error) {
	u := &userDatamodel.User{
		Name:  name,
		Email: fmt.Sprintf("%s@example.com", strings.ToLower(strings.ReplaceAll(name, " ", "."))),
	}
	return u, db.Create(u).Error
}

// SeedMember adds userID to companyID holding perms.
func SeedMember(db *gorm.DB, companyID, userID int64, perms ...string) (*membershipDatamodel.Membership, error) {
	if perms == nil {
		perms = []string{}
	}
	m := &membershipDatamodel.Membership{
		CompanyID:   companyID,
		UserID:      userID,
		Permissions: perms,
		Status:      membershipDatamodel.StatusActive,
		Competences: []membershipDatamodel.Competence{},
	}
	return m, db.Create(m).Error
}

// NewRequest builds a request carrying id in its context, the way the session
// middleware leaves it. A nil id yields an anonymous request.
func NewRequest(method, target, body string, id *internal.Identity) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if id != nil {
		req = req.WithContext(internal.ContextWithIdentity(req.Context(), *id))
	}
	return req
}

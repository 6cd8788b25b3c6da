package competence

// MemberRef is shared by every body. userId is the name older clients use for
// the membership id.
type MemberRef struct {
	CompanyID int64 `json:"companyId"`
	MemberID  int64 `json:"memberId"`
	UserID    int64 `json:"userId"`
	// Version, when sent, must match the stored competences version.
	Version *int64 `json:"version,omitempty"`
}

func (r MemberRef) Member() int64 {
	if r.MemberID > 0 {
		return r.MemberID
	}
	return r.UserID
}

type AddCompetenceDTO struct {
	MemberRef
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Documents   []string `json:"documents"`
}

type UpdateCompetenceDTO struct {
	MemberRef
	CompetenceID    string   `json:"competenceId"`
	CompetenceIndex *int     `json:"competenceIndex"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Documents       []string `json:"documents"`
}

type DeleteCompetenceDTO struct {
	MemberRef
	CompetenceID    string `json:"competenceId"`
	CompetenceIndex *int   `json:"competenceIndex"`
}

type AddedResponse struct {
	Message    string     `json:"message"`
	Competence Competence `json:"competence"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

package feedback

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Score accepts 7 as well as "7"; the web client posts the select value as a string.
type Score struct {
	Value int
	Set   bool
	Valid bool
}

func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = Score{}
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	*s = Score{Value: v, Set: true, Valid: err == nil}
	return nil
}

type AddFeedbackDTO struct {
	CompanyID int64  `json:"companyId"`
	UserID    int64  `json:"userId"`
	Score     Score  `json:"score"`
	Content   string `json:"content"`
}

type DeleteFeedbackDTO struct {
	FeedbackID int64 `json:"feedbackId"`
}

type FeedbacksResponse struct {
	Feedbacks []Feedback `json:"feedbacks"`
}

type AddedResponse struct {
	Message  string    `json:"message"`
	Feedback *Feedback `json:"feedback"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

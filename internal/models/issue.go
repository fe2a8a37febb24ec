package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Issue struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title" validate:"notblank,max=128"`
	Volume      int       `json:"volume" validate:"gt=0"`
	IssueNumber int       `json:"issue_number" validate:"gt=0"`
}

func (i *Issue) String() string {
	return fmt.Sprintf("%d, %d: %s", i.Volume, i.IssueNumber, i.Title)
}

func (i *Issue) Validate() error {
	i.Title = strings.TrimSpace(i.Title)
	return check(i)
}

package dto

import (
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
)

// PostRequest is the input to a posting: two or more signed legs under one
// voucher slug, posted as of a date on behalf of a user.
type PostRequest struct {
	Slug    string             `json:"slug" validate:"required,max=64"`
	AsOf    time.Time          `json:"asOf" validate:"required"`
	Entries []domain.EntryLine `json:"entries" validate:"dive"`
	UserID  int64              `json:"userID" validate:"required,gt=0"`
	Memo    string             `json:"memo" validate:"max=500"`
}

// ReverseRequest asks for a reversing transaction of Reference.
type ReverseRequest struct {
	Reference string    `json:"reference" validate:"required"`
	AsOf      time.Time `json:"asOf" validate:"required"`
	UserID    int64     `json:"userID" validate:"required,gt=0"`
	Memo      string    `json:"memo" validate:"max=500"`
}

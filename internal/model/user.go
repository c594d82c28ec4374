// Package model defines domain entities for the application.
package model

import (
	"strings"
	"time"
)

// FirstPosition is the position reported to the first submitter.
const FirstPosition int64 = 1

// User is a single form submission. Email is unique across all rows.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

// SubmitResult reports where a new submission landed.
type SubmitResult struct {
	IsFirst  bool  `json:"isFirst"`
	Position int64 `json:"position"`
}

// IsBlank reports whether a submitted value is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

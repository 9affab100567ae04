package models

import (
	"fmt"
	"strings"
)

// QueryFamily identifies the query-construction pipeline that produced a query.
type QueryFamily string

// QueryVariant distinguishes the plain bug-report query from the
// attachment-extended one.
type QueryVariant string

const (
	FamilyBasic   QueryFamily = "basic"
	FamilyKeybert QueryFamily = "keybert"
	FamilyReason  QueryFamily = "reason"

	VariantBaseline QueryVariant = "baseline"
	VariantExtended QueryVariant = "extended"
)

// Families lists all query families in a fixed order.
func Families() []QueryFamily {
	return []QueryFamily{FamilyBasic, FamilyKeybert, FamilyReason}
}

// ParseFamily normalizes a family name, accepting the aliases used by the
// query-construction pipelines ("keyBERT", "reasoning").
func ParseFamily(s string) (QueryFamily, error) {
	switch strings.ToLower(s) {
	case "basic":
		return FamilyBasic, nil
	case "keybert":
		return FamilyKeybert, nil
	case "reason", "reasoning":
		return FamilyReason, nil
	}
	return "", fmt.Errorf("unknown query family %q", s)
}

// ParseVariant normalizes a variant name.
func ParseVariant(s string) (QueryVariant, error) {
	switch strings.ToLower(s) {
	case "baseline":
		return VariantBaseline, nil
	case "extended":
		return VariantExtended, nil
	}
	return "", fmt.Errorf("unknown query variant %q", s)
}

// Query is an opaque query string with identifying metadata. The text is
// produced by external collaborators and consumed read-only.
type Query struct {
	BugID   string       `json:"bug_id"`
	Family  QueryFamily  `json:"family"`
	Variant QueryVariant `json:"variant"`
	Text    string       `json:"text"`
}

// Validate checks that the query carries the fields ranking needs.
func (q *Query) Validate() error {
	if q.BugID == "" {
		return fmt.Errorf("query bug_id cannot be empty")
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("query text cannot be empty")
	}
	if _, err := ParseFamily(string(q.Family)); err != nil {
		return err
	}
	if _, err := ParseVariant(string(q.Variant)); err != nil {
		return err
	}
	return nil
}

// Key identifies the ranked list this query produces.
func (q *Query) Key() QueryKey {
	return QueryKey{BugID: q.BugID, Family: q.Family, Variant: q.Variant}
}

// QueryKey identifies one (bug, family, variant) ranked list.
type QueryKey struct {
	BugID   string       `json:"bug_id"`
	Family  QueryFamily  `json:"family"`
	Variant QueryVariant `json:"variant"`
}

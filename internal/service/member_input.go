package service

import (
	"net/url"

	"familyregistry/internal/models"
	"familyregistry/internal/validation"
)

// Form field names for household members. Each may also arrive with a "[]" suffix.
const (
	FieldMemberName       = "memberName"
	FieldRelation         = "relation"
	FieldAge              = "age"
	FieldMaritalStatus    = "maritalStatus"
	FieldMemberBloodGroup = "memberBloodGroup"
	FieldQualification    = "qualification"
	FieldMemberOccupation = "memberOccupation"
)

var memberFields = []string{
	FieldMemberName,
	FieldRelation,
	FieldAge,
	FieldMaritalStatus,
	FieldMemberBloodGroup,
	FieldQualification,
	FieldMemberOccupation,
}

// MemberInput is the household member part of a submission. It is either a
// SingleMember or a MemberList; ClassifyMembers picks one from the raw form.
type MemberInput interface {
	members() []models.MemberRecord
}

// SingleMember is one member sent as scalar form fields
type SingleMember struct {
	Name          string
	Relation      string
	Age           string
	MaritalStatus string
	BloodGroup    string
	Qualification string
	Occupation    string
}

// MemberList is several members sent as parallel field sequences.
// Names decides the member count.
type MemberList struct {
	Names          []string
	Relations      []string
	Ages           []string
	MaritalStatus  []string
	BloodGroups    []string
	Qualifications []string
	Occupations    []string
}

func (m SingleMember) members() []models.MemberRecord {
	if m.Name == "" {
		return []models.MemberRecord{}
	}
	return []models.MemberRecord{{
		Name:          m.Name,
		Relation:      m.Relation,
		Age:           validation.ParseAge(m.Age),
		MaritalStatus: m.MaritalStatus,
		BloodGroup:    m.BloodGroup,
		Qualification: m.Qualification,
		Occupation:    m.Occupation,
	}}
}

func (m MemberList) members() []models.MemberRecord {
	out := make([]models.MemberRecord, 0, len(m.Names))
	for i, name := range m.Names {
		out = append(out, models.MemberRecord{
			Name:          name,
			Relation:      at(m.Relations, i),
			Age:           validation.ParseAge(at(m.Ages, i)),
			MaritalStatus: at(m.MaritalStatus, i),
			BloodGroup:    at(m.BloodGroups, i),
			Qualification: at(m.Qualifications, i),
			Occupation:    at(m.Occupations, i),
		})
	}
	return out
}

// NormalizeMembers turns either member shape into an ordered member list.
// A nil input yields no members.
func NormalizeMembers(input MemberInput) []models.MemberRecord {
	if input == nil {
		return []models.MemberRecord{}
	}
	return input.members()
}

// ClassifyMembers decides the member shape of a parsed form. The names field
// selects the shape: a "[]" key or more than one value means a sequence,
// otherwise the scalar fields describe a single member.
func ClassifyMembers(form url.Values) MemberInput {
	names, bracketed := lookup(form, FieldMemberName)
	if bracketed || len(names) > 1 {
		return MemberList{
			Names:          names,
			Relations:      values(form, FieldRelation),
			Ages:           values(form, FieldAge),
			MaritalStatus:  values(form, FieldMaritalStatus),
			BloodGroups:    values(form, FieldMemberBloodGroup),
			Qualifications: values(form, FieldQualification),
			Occupations:    values(form, FieldMemberOccupation),
		}
	}
	return SingleMember{
		Name:          first(form, FieldMemberName),
		Relation:      first(form, FieldRelation),
		Age:           first(form, FieldAge),
		MaritalStatus: first(form, FieldMaritalStatus),
		BloodGroup:    first(form, FieldMemberBloodGroup),
		Qualification: first(form, FieldQualification),
		Occupation:    first(form, FieldMemberOccupation),
	}
}

// lookup returns the values for field, preferring the "[]" form of the key
func lookup(form url.Values, field string) ([]string, bool) {
	if v, ok := form[field+"[]"]; ok {
		return v, true
	}
	return form[field], false
}

func values(form url.Values, field string) []string {
	v, _ := lookup(form, field)
	return v
}

func first(form url.Values, field string) string {
	v, _ := lookup(form, field)
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func at(list []string, i int) string {
	if i < len(list) {
		return list[i]
	}
	return ""
}

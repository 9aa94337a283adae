package domain

import (
	"regexp"
	"strconv"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Attribute is one named attribute of an exported directory record.
// Values is always a sequence; single-valued attributes hold one element.
type Attribute struct {
	Name   string
	Values []string
}

// RawRecord is one entry of a directory export, in export order.
// It is the exporter's output before a User is built from it.
type RawRecord struct {
	// DN is the entry's distinguished name.
	DN string

	// Attributes in the order the decoder returned them. go-ldap/ldif sorts
	// them by name, so lookups must not depend on position.
	Attributes []Attribute
}

// Values returns all values of the named attribute.
// Attribute names compare case-insensitively, as in LDAP.
func (r RawRecord) Values(name string) []string {
	for _, attr := range r.Attributes {
		if strings.EqualFold(attr.Name, name) {
			return attr.Values
		}
	}
	return nil
}

// Value returns the first value of the named attribute, or "".
func (r RawRecord) Value(name string) string {
	values := r.Values(name)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Has reports whether the named attribute has at least one non-empty value.
func (r RawRecord) Has(name string) bool {
	for _, v := range r.Values(name) {
		if v != "" {
			return true
		}
	}
	return false
}

// Check applies the required-field rules for user records.
// It returns ErrSelfManaged or ErrMalformedRecord when the record must be dropped.
func (r RawRecord) Check() error {
	if manager := r.Value(AttrManager); manager != "" && r.DN == manager {
		return ErrSelfManaged
	}
	if r.DN == "" || !r.Has(AttrUserPrincipalName) {
		return ErrMalformedRecord
	}
	return nil
}

// Group is one entry of the top-level group list export.
type Group struct {
	// DN is the search base used when exporting the group's members.
	DN string

	// OU is the organisational unit name.
	OU string

	// Index tells apart groups whose export names collide. Values above 1
	// are appended to the file name.
	Index int
}

// GroupFromRecord builds a Group from a group-list record.
func GroupFromRecord(r RawRecord) Group {
	return Group{DN: r.DN, OU: r.Value("ou")}
}

// ExportName is the file name of the group's member export.
// Whitespace runs in the OU name become underscores.
func (g Group) ExportName() string {
	name := whitespaceRun.ReplaceAllString(g.OU, "_")
	if name == "" {
		name = "group"
	}
	if g.Index > 1 {
		name += "_" + strconv.Itoa(g.Index)
	}
	return name + ".ldif"
}

// NumberExportNames sets Index on groups so that every export name is
// unique. The first group with a name keeps it unchanged.
func NumberExportNames(groups []Group) {
	used := make(map[string]bool, len(groups))
	for i := range groups {
		groups[i].Index = 0
		for n := 2; used[groups[i].ExportName()]; n++ {
			groups[i].Index = n
		}
		used[groups[i].ExportName()] = true
	}
}

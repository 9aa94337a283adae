package domain

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Directory attribute names read into User fields.
const (
	AttrDistinguishedName = "distinguishedName"
	AttrUserPrincipalName = "userPrincipalName"
	AttrMail              = "mail"
	AttrMailNickname      = "mailNickname"
	AttrDisplayName       = "displayName"
	AttrTitle             = "title"
	AttrWhenCreated       = "whenCreated"
	AttrManager           = "manager"
	AttrDirectReports     = "directReports"
)

// DocumentTypePerson tags every document produced from a User.
const DocumentTypePerson = "activedirperson"

// ISODateLayout is the millisecond-precision UTC layout of derived dates.
const ISODateLayout = "2006-01-02T15:04:05.000Z"

// VolatileAttributePrefixes name photo blobs and exchange/messaging
// housekeeping attributes that are never published.
var VolatileAttributePrefixes = []string{"thumbnailPhoto", "mSMQ", "msExch", "msRTC"}

var (
	createdPattern   = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})(\d{2})(\d{2})(\d{2})`)
	nonWordCharacter = regexp.MustCompile(`[^\w]`)
)

var knownAttributes = []string{
	"dn",
	AttrDistinguishedName,
	AttrUserPrincipalName,
	AttrMail,
	AttrMailNickname,
	AttrDisplayName,
	AttrTitle,
	AttrWhenCreated,
	AttrManager,
	AttrDirectReports,
}

// Values holds the values of a passthrough attribute.
// A single value is written to JSON as a bare string, several as an array,
// matching the shape the directory exporter produces.
type Values []string

// MarshalJSON implements json.Marshaler.
func (v Values) MarshalJSON() ([]byte, error) {
	if len(v) == 1 {
		return json.Marshal(v[0])
	}
	return json.Marshal([]string(v))
}

// UnmarshalJSON accepts either a bare string or an array of strings.
func (v *Values) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*v = Values{single}
		return nil
	}
	var multi []string
	if err := json.Unmarshal(data, &multi); err != nil {
		return err
	}
	*v = Values(multi)
	return nil
}

// Derived holds fields computed during hierarchy resolution.
type Derived struct {
	// CreatedDateISO is whenCreated as ISO-8601; empty when the source did not match.
	CreatedDateISO string `json:"createdDate,omitempty"`

	// ManagerDisplayName is the display name of the nearest resolved manager.
	ManagerDisplayName string `json:"admanagername,omitempty"`

	// DocumentType is the output document kind.
	DocumentType string `json:"filetype,omitempty"`
}

// User is the normalised representation of one directory principal.
type User struct {
	// DistinguishedName is the primary structural key.
	DistinguishedName string `json:"dn"`

	// AlternateDistinguishedName is the distinguishedName attribute when present.
	AlternateDistinguishedName string `json:"distinguishedName,omitempty"`

	// PrimaryEmail is the userPrincipalName.
	PrimaryEmail string `json:"userPrincipalName"`

	// SecondaryEmail is the mail attribute. It may equal PrimaryEmail.
	SecondaryEmail string `json:"mail,omitempty"`

	// MailNickname qualifies the user for publishing.
	MailNickname string `json:"mailNickname,omitempty"`

	DisplayName      string `json:"displayName,omitempty"`
	JobTitle         string `json:"title,omitempty"`
	CreatedTimestamp string `json:"whenCreated,omitempty"`

	// Managers holds raw manager references until resolution replaces
	// them with canonical keys.
	Managers []string `json:"managers,omitempty"`

	// DirectReports holds raw report references until resolution.
	DirectReports []string `json:"directReports,omitempty"`

	// Attributes carries every other exported attribute.
	Attributes map[string]Values `json:"attributes,omitempty"`

	Derived Derived `json:"derived"`
}

// NewUser builds a User from an exported record.
// Single and multi-valued references are both stored as sequences.
func NewUser(r RawRecord) *User {
	u := &User{
		DistinguishedName:          r.DN,
		AlternateDistinguishedName: r.Value(AttrDistinguishedName),
		PrimaryEmail:               r.Value(AttrUserPrincipalName),
		SecondaryEmail:             r.Value(AttrMail),
		MailNickname:               r.Value(AttrMailNickname),
		DisplayName:                r.Value(AttrDisplayName),
		JobTitle:                   r.Value(AttrTitle),
		CreatedTimestamp:           r.Value(AttrWhenCreated),
		Managers:                   nonEmpty(r.Values(AttrManager)),
		DirectReports:              nonEmpty(r.Values(AttrDirectReports)),
		Attributes:                 make(map[string]Values),
	}

	for _, attr := range r.Attributes {
		if isKnownAttribute(attr.Name) {
			continue
		}
		u.Attributes[attr.Name] = append(u.Attributes[attr.Name], attr.Values...)
	}

	return u
}

// Email returns the primary email, falling back to the secondary one.
func (u *User) Email() string {
	if u.PrimaryEmail != "" {
		return u.PrimaryEmail
	}
	return u.SecondaryEmail
}

// EmailKeys returns the non-empty, distinct email identity keys.
func (u *User) EmailKeys() []string {
	return distinct(u.PrimaryEmail, u.SecondaryEmail)
}

// StructuralKeys returns the non-empty, distinct structural identity keys.
func (u *User) StructuralKeys() []string {
	return distinct(u.DistinguishedName, u.AlternateDistinguishedName)
}

// IdentityKeys returns every non-empty key the user can be looked up by.
func (u *User) IdentityKeys() []string {
	return append(u.EmailKeys(), u.StructuralKeys()...)
}

// Ref identifies the user in logs and reports.
func (u *User) Ref() string {
	if u.DistinguishedName != "" {
		return u.DistinguishedName
	}
	return u.Email()
}

// PurgeAttributes removes passthrough attributes whose name starts with
// any of the prefixes. It returns the number of attributes removed.
func (u *User) PurgeAttributes(prefixes []string) int {
	removed := 0
	for name := range u.Attributes {
		for _, prefix := range prefixes {
			if strings.HasPrefix(name, prefix) {
				delete(u.Attributes, name)
				removed++
				break
			}
		}
	}
	return removed
}

// FileName is a filesystem-safe name for the user's artifact file.
// Every non-word character of the primary email becomes an underscore.
func (u *User) FileName() string {
	return nonWordCharacter.ReplaceAllString(u.PrimaryEmail, "_") + ".json"
}

// ParseCreatedTimestamp converts a directory timestamp (YYYYMMDDHHMMSS, UTC,
// optionally followed by a fraction and zone suffix) into ISO-8601.
// It returns false when the value does not start with 14 digits.
func ParseCreatedTimestamp(value string) (string, bool) {
	m := createdPattern.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}

	parts := make([]int, 6)
	for i := range parts {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return "", false
		}
		parts[i] = n
	}

	t := time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], 0, time.UTC)
	return t.Format(ISODateLayout), true
}

// UserMapEntry is one line of the identity map artifact.
type UserMapEntry struct {
	DisplayName string `json:"displayName"`
	DN          string `json:"dn"`
	Key         string `json:"key"`
}

func isKnownAttribute(name string) bool {
	for _, known := range knownAttributes {
		if strings.EqualFold(known, name) {
			return true
		}
	}
	return false
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func distinct(keys ...string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen == k {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, k)
		}
	}
	return out
}

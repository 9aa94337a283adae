package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRecord(dn string, attrs ...Attribute) RawRecord {
	return RawRecord{DN: dn, Attributes: attrs}
}

func attr(name string, values ...string) Attribute {
	return Attribute{Name: name, Values: values}
}

func TestRawRecord_Values_CaseInsensitive(t *testing.T) {
	r := testRecord("CN=A,DC=corp", attr("userPrincipalName", "a@corp.com"))

	assert.Equal(t, []string{"a@corp.com"}, r.Values("userprincipalname"))
	assert.Equal(t, "a@corp.com", r.Value("USERPRINCIPALNAME"))
	assert.Nil(t, r.Values("mail"))
	assert.Equal(t, "", r.Value("mail"))
}

func TestRawRecord_Has(t *testing.T) {
	r := testRecord("CN=A", attr("mail", ""), attr("title", "Engineer"))

	assert.False(t, r.Has("mail"))
	assert.True(t, r.Has("title"))
	assert.False(t, r.Has("missing"))
}

func TestRawRecord_Check(t *testing.T) {
	tests := []struct {
		name   string
		record RawRecord
		want   error
	}{
		{
			name:   "valid",
			record: testRecord("CN=A", attr("userPrincipalName", "a@corp.com"), attr("manager", "CN=B")),
			want:   nil,
		},
		{
			name:   "self managed",
			record: testRecord("CN=A", attr("userPrincipalName", "a@corp.com"), attr("manager", "CN=A")),
			want:   ErrSelfManaged,
		},
		{
			name:   "missing principal name",
			record: testRecord("CN=A", attr("mail", "a@corp.com")),
			want:   ErrMalformedRecord,
		},
		{
			name:   "missing dn",
			record: testRecord("", attr("userPrincipalName", "a@corp.com")),
			want:   ErrMalformedRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.record.Check(), tt.want)
		})
	}
}

func TestGroup_ExportName(t *testing.T) {
	tests := []struct {
		ou   string
		want string
	}{
		{"US Users", "US_Users.ldif"},
		{"Europe   Users", "Europe_Users.ldif"},
		{"Canada\tUsers", "Canada_Users.ldif"},
		{"", "group.ldif"},
	}

	for _, tt := range tests {
		t.Run(tt.ou, func(t *testing.T) {
			assert.Equal(t, tt.want, Group{OU: tt.ou}.ExportName())
		})
	}
}

func TestGroupFromRecord(t *testing.T) {
	g := GroupFromRecord(testRecord("OU=US Users,DC=corp", attr("ou", "US Users")))

	assert.Equal(t, "OU=US Users,DC=corp", g.DN)
	assert.Equal(t, "US Users", g.OU)
}

func TestGroup_ExportName_Index(t *testing.T) {
	assert.Equal(t, "US_Users.ldif", Group{OU: "US Users", Index: 1}.ExportName())
	assert.Equal(t, "US_Users_3.ldif", Group{OU: "US Users", Index: 3}.ExportName())
}

func TestNumberExportNames(t *testing.T) {
	groups := []Group{
		{DN: "OU=Sales Users,OU=US,DC=corp", OU: "Sales Users"},
		{DN: "OU=Sales Users,OU=EU,DC=corp", OU: "Sales Users"},
		{DN: "OU=Sales  Users,OU=CA,DC=corp", OU: "Sales  Users"},
		{DN: "OU=Sales Users 2,DC=corp", OU: "Sales Users 2"},
		{DN: "OU=IT Users,DC=corp", OU: "IT Users"},
	}

	NumberExportNames(groups)

	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.ExportName()
	}
	assert.Equal(t, []string{
		"Sales_Users.ldif",
		"Sales_Users_2.ldif",
		"Sales_Users_3.ldif",
		"Sales_Users_2_2.ldif",
		"IT_Users.ldif",
	}, names)
}

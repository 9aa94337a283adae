package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentID(t *testing.T) {
	assert.Equal(t, "LDAP://ldap.corp.com/CN=A,DC=corp", NewDocumentID("ldap.corp.com", "CN=A,DC=corp"))
}

func TestBatchDocument_MarshalJSON(t *testing.T) {
	doc := BatchDocument{
		DocumentID: "LDAP://host/CN=A",
		Title:      "Alice",
		Mail:       "a@corp.com",
		Date:       "2023-06-15T14:30:00.000Z",
		JobTitle:   "Engineer",
		FileType:   DocumentTypePerson,
		Fields: map[string]any{
			"department": "R&D",
			"title":      "overridden",
		},
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "LDAP://host/CN=A", out["DocumentId"])
	assert.Equal(t, "Alice", out["title"])
	assert.Equal(t, "a@corp.com", out["mail"])
	assert.Equal(t, "2023-06-15T14:30:00.000Z", out["date"])
	assert.Equal(t, "Engineer", out["jobTitle"])
	assert.Equal(t, "activedirperson", out["filetype"])
	assert.Equal(t, "R&D", out["department"])
}

func TestBatchDocument_MarshalJSON_OmitsEmptyDate(t *testing.T) {
	doc := BatchDocument{
		DocumentID: "LDAP://host/CN=A",
		Fields:     map[string]any{"date": "stale"},
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	_, ok := out["date"]
	assert.False(t, ok)
}

func TestBatch_Encode(t *testing.T) {
	data, err := Batch{}.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"AddOrUpdate":[]}`, string(data))

	data, err = Batch{AddOrUpdate: []BatchDocument{{DocumentID: "LDAP://h/CN=A"}}}.Encode()
	require.NoError(t, err)

	var out struct {
		AddOrUpdate []map[string]any `json:"AddOrUpdate"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out.AddOrUpdate, 1)
	assert.Equal(t, "LDAP://h/CN=A", out.AddOrUpdate[0]["DocumentId"])
}

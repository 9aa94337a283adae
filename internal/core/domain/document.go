package domain

import (
	"encoding/json"
	"fmt"
)

// DocumentIDTemplate builds a DocumentId from the directory host and a DN.
const DocumentIDTemplate = "LDAP://%s/%s"

// Wire field names set by the batch builder. They take precedence over
// passthrough attributes of the same name.
const (
	FieldDocumentID = "DocumentId"
	FieldTitle      = "title"
	FieldMail       = "mail"
	FieldDate       = "date"
	FieldJobTitle   = "jobTitle"
	FieldFileType   = "filetype"
)

// BatchDocument is the wire shape of one user pushed to the remote source.
type BatchDocument struct {
	DocumentID string
	Title      string
	Mail       string
	Date       string
	JobTitle   string
	FileType   string

	// Fields holds every other published value.
	Fields map[string]any
}

// NewDocumentID formats the DocumentId of a directory entry.
func NewDocumentID(host, dn string) string {
	return fmt.Sprintf(DocumentIDTemplate, host, dn)
}

// MarshalJSON flattens Fields and the selected fields into one object.
// An empty Date is omitted.
func (d BatchDocument) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Fields)+6)
	for k, v := range d.Fields {
		out[k] = v
	}
	out[FieldDocumentID] = d.DocumentID
	out[FieldTitle] = d.Title
	out[FieldMail] = d.Mail
	out[FieldJobTitle] = d.JobTitle
	out[FieldFileType] = d.FileType
	if d.Date != "" {
		out[FieldDate] = d.Date
	} else {
		delete(out, FieldDate)
	}
	return json.Marshal(out)
}

// Batch is the payload uploaded to the file container.
type Batch struct {
	AddOrUpdate []BatchDocument `json:"AddOrUpdate"`
}

// Encode serialises the batch for upload.
func (b Batch) Encode() ([]byte, error) {
	if b.AddOrUpdate == nil {
		b.AddOrUpdate = []BatchDocument{}
	}
	return json.Marshal(b)
}

// Package ldif decodes directory export files into raw records.
package ldif

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"strings"

	goldif "github.com/go-ldap/ldif"

	"github.com/custodia-labs/adpush/internal/core/domain"
	"github.com/custodia-labs/adpush/internal/core/ports/driven"
	"github.com/custodia-labs/adpush/internal/logger"
)

// Ensure Parser implements the interface.
var _ driven.RecordParser = (*Parser)(nil)

// Parser reads LDIF files as produced by ldapsearch -LLL.
// Continuation lines and base64 values are decoded by go-ldap/ldif.
type Parser struct{}

// NewParser creates an LDIF parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse yields the records of path. The file is read when iteration
// starts; failures are logged and yield nothing.
func (p *Parser) Parse(path string) iter.Seq[domain.RawRecord] {
	return func(yield func(domain.RawRecord) bool) {
		records, err := p.Load(path)
		if err != nil {
			logger.Warn("read %s: %v", path, err)
			return
		}
		for _, record := range records {
			if !yield(record) {
				return
			}
		}
	}
}

// Load reads every content record of path. Change records are ignored.
// A missing file wraps domain.ErrNotFound.
func (p *Parser) Load(path string) ([]domain.RawRecord, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var l goldif.LDIF
	if err := goldif.Unmarshal(bytes.NewReader(data), &l); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedRecord, path, err)
	}

	records := make([]domain.RawRecord, 0, len(l.Entries))
	for _, e := range l.Entries {
		if e == nil || e.Entry == nil {
			continue
		}
		record := domain.RawRecord{DN: e.Entry.DN}
		for _, attr := range e.Entry.Attributes {
			record.Attributes = appendValues(record.Attributes, attr.Name, attr.Values)
		}
		records = append(records, record)
	}
	return records, nil
}

// appendValues merges repeated attribute lines into one attribute,
// preserving first-seen order.
func appendValues(attrs []domain.Attribute, name string, values []string) []domain.Attribute {
	for i := range attrs {
		if strings.EqualFold(attrs[i].Name, name) {
			attrs[i].Values = append(attrs[i].Values, values...)
			return attrs
		}
	}
	return append(attrs, domain.Attribute{Name: name, Values: append([]string(nil), values...)})
}

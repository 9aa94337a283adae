package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	stdsync "sync"
	"time"

	"github.com/custodia-labs/adpush/internal/core/domain"
)

// record builds a raw record from name/value pairs. Repeated names
// accumulate values.
func record(dn string, pairs ...string) domain.RawRecord {
	r := domain.RawRecord{DN: dn}
	for i := 0; i+1 < len(pairs); i += 2 {
		name, value := pairs[i], pairs[i+1]
		found := false
		for j := range r.Attributes {
			if r.Attributes[j].Name == name {
				r.Attributes[j].Values = append(r.Attributes[j].Values, value)
				found = true
			}
		}
		if !found {
			r.Attributes = append(r.Attributes, domain.Attribute{Name: name, Values: []string{value}})
		}
	}
	return r
}

func seqOf(records ...domain.RawRecord) iter.Seq[domain.RawRecord] {
	return func(yield func(domain.RawRecord) bool) {
		for _, r := range records {
			if !yield(r) {
				return
			}
		}
	}
}

// mockExporter implements driven.DirectoryExporter over fixed paths.
type mockExporter struct {
	mu         stdsync.Mutex
	groupsPath string
	groupsErr  error
	memberErrs map[string]error
	exported   []string
	inFlight   int
	maxFlight  int
	delay      time.Duration
}

func (m *mockExporter) ExportGroups(_ context.Context) (string, error) {
	if m.groupsErr != nil {
		return "", m.groupsErr
	}
	return m.groupsPath, nil
}

func (m *mockExporter) ExportMembers(_ context.Context, group domain.Group) (string, error) {
	m.mu.Lock()
	m.exported = append(m.exported, group.OU)
	m.inFlight++
	if m.inFlight > m.maxFlight {
		m.maxFlight = m.inFlight
	}
	m.mu.Unlock()

	time.Sleep(m.delay)

	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()

	if err := m.memberErrs[group.OU]; err != nil {
		return "", err
	}
	return group.ExportName(), nil
}

// mockParser implements driven.RecordParser over in-memory files.
type mockParser struct {
	files map[string][]domain.RawRecord
}

func (m *mockParser) Parse(path string) iter.Seq[domain.RawRecord] {
	return seqOf(m.files[path]...)
}

func (m *mockParser) Load(path string) ([]domain.RawRecord, error) {
	records, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, domain.ErrNotFound)
	}
	return records, nil
}

// pushCall records one call made to mockPushClient.
type pushCall struct {
	Method     string
	Status     domain.SourceStatus
	FileID     string
	OrderingID int64
	Threshold  int64
	Payload    []byte
}

// mockPushClient implements driven.PushClient, recording every call.
type mockPushClient struct {
	calls     []pushCall
	container *domain.FileContainer
	failOn    string
}

func newMockPushClient() *mockPushClient {
	return &mockPushClient{
		container: &domain.FileContainer{UploadURI: "https://bucket.example/upload", FileID: "file-1"},
	}
}

var errMockPush = errors.New("push failed")

func (m *mockPushClient) fail(method string) error {
	if m.failOn == method {
		return errMockPush
	}
	return nil
}

func (m *mockPushClient) SetStatus(_ context.Context, status domain.SourceStatus) error {
	m.calls = append(m.calls, pushCall{Method: "SetStatus", Status: status})
	return m.fail("SetStatus:" + status.String())
}

func (m *mockPushClient) CreateFileContainer(_ context.Context) (*domain.FileContainer, error) {
	m.calls = append(m.calls, pushCall{Method: "CreateFileContainer"})
	if err := m.fail("CreateFileContainer"); err != nil {
		return nil, err
	}
	return m.container, nil
}

func (m *mockPushClient) Upload(_ context.Context, container *domain.FileContainer, payload []byte) error {
	m.calls = append(m.calls, pushCall{Method: "Upload", FileID: container.FileID, Payload: payload})
	return m.fail("Upload")
}

func (m *mockPushClient) CommitBatch(_ context.Context, fileID string, orderingID int64) error {
	m.calls = append(m.calls, pushCall{Method: "CommitBatch", FileID: fileID, OrderingID: orderingID})
	return m.fail("CommitBatch")
}

func (m *mockPushClient) DeleteOlderThan(_ context.Context, threshold int64) error {
	m.calls = append(m.calls, pushCall{Method: "DeleteOlderThan", Threshold: threshold})
	return m.fail("DeleteOlderThan")
}

func (m *mockPushClient) methods() []string {
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.Method
		if c.Method == "SetStatus" {
			out[i] += ":" + c.Status.String()
		}
	}
	return out
}

// mockMetrics implements driven.MetricsRecorder.
type mockMetrics struct {
	mu        stdsync.Mutex
	issues    map[domain.IssueKind]int
	users     int
	documents int
	steps     []domain.PublishStep
	failed    []domain.PublishStep
	runs      []domain.PublishRun
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{issues: make(map[domain.IssueKind]int)}
}

func (m *mockMetrics) RecordIssue(kind domain.IssueKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issues[kind]++
}

func (m *mockMetrics) RecordUsers(n int)     { m.users = n }
func (m *mockMetrics) RecordDocuments(n int) { m.documents = n }

func (m *mockMetrics) RecordStep(step domain.PublishStep, _ time.Duration, err error) {
	m.steps = append(m.steps, step)
	if err != nil {
		m.failed = append(m.failed, step)
	}
}

func (m *mockMetrics) RecordRun(run domain.PublishRun) {
	m.runs = append(m.runs, run)
}

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/custodia-labs/adpush/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/adpush/internal/core/domain"
	"github.com/custodia-labs/adpush/internal/core/ports/driving"
	"github.com/custodia-labs/adpush/internal/core/services"
)

// mockCrawler implements driving.Crawler for testing.
type mockCrawler struct {
	result *driving.CrawlResult
	err    error
	opts   driving.CrawlOptions
	calls  int
}

func (m *mockCrawler) Crawl(_ context.Context, opts driving.CrawlOptions) (*driving.CrawlResult, error) {
	m.calls++
	m.opts = opts
	return m.result, m.err
}

// mockPublisher implements driving.Publisher for testing.
type mockPublisher struct {
	result    *driving.PublishResult
	err       error
	published []*domain.User
	calls     int
}

func (m *mockPublisher) Publish(_ context.Context) (*driving.PublishResult, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockPublisher) PublishUsers(_ context.Context, users []*domain.User) (*driving.PublishResult, error) {
	m.calls++
	m.published = users
	return m.result, m.err
}

// mockRunHistory implements driving.RunHistory for testing.
type mockRunHistory struct {
	runs  []domain.PublishRun
	err   error
	limit int
	id    string
}

func (m *mockRunHistory) Runs(_ context.Context, limit int) ([]domain.PublishRun, error) {
	m.limit = limit
	return m.runs, m.err
}

func (m *mockRunHistory) Run(_ context.Context, id string) (*domain.PublishRun, error) {
	m.id = id
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// configuredSettings returns a settings service with everything a crawl and
// a publish need.
func configuredSettings(t *testing.T) *services.SettingsService {
	t.Helper()
	s := services.NewSettingsService(memory.NewConfigStore())
	for key, value := range map[string]string{
		"push.org":        "myorg",
		"push.source":     "mysource",
		"push.api_key":    "xx-secret-key-1234",
		"ldap.host":       "ldaphost.company.com",
		"ldap.main_group": "OU=Company,DC=corp,DC=com",
	} {
		if err := s.Set(key, value); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	return s
}

// setupCLITest installs services and resets global command state.
func setupCLITest(t *testing.T, s *Services) {
	t.Helper()
	SetServices(s)
	crawlGroupsFile = ""
	runsLimit = 10
	t.Cleanup(func() {
		SetServices(&Services{})
		crawlGroupsFile = ""
		runsLimit = 10
	})
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(args ...string) (string, error) {
	return executeCommandWithInput("", args...)
}

func executeCommandWithInput(input string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func testUser(dn, upn string) *domain.User {
	return &domain.User{DistinguishedName: dn, PrimaryEmail: upn}
}

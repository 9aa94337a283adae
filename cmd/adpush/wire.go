package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	configfile "github.com/custodia-labs/adpush/internal/adapters/driven/config/file"
	"github.com/custodia-labs/adpush/internal/adapters/driven/exporter/ldapsearch"
	"github.com/custodia-labs/adpush/internal/adapters/driven/ldif"
	"github.com/custodia-labs/adpush/internal/adapters/driven/push"
	artifactfile "github.com/custodia-labs/adpush/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/adpush/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/adpush/internal/adapters/driving/cli"
	"github.com/custodia-labs/adpush/internal/core/services"
	"github.com/custodia-labs/adpush/internal/logger"
	"github.com/custodia-labs/adpush/internal/metrics"
)

// wire builds the adapters and services from the configuration in configDir.
func wire(configDir string) (*cli.Services, error) {
	configStore, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}

	store, err := sqlite.NewStore(filepath.Join(filepath.Dir(configStore.Path()), "data"))
	if err != nil {
		return nil, err
	}
	logger.Debug("Run history: %s", store.Path())

	collector := metrics.NewCollector()
	artifacts := artifactfile.NewArtifactStore(settings.WorkDir)

	// Crawl
	exporter := ldapsearch.NewExporter(ldapsearch.Config{
		Command:      settings.LDAP.Command,
		Host:         settings.LDAP.Host,
		BindUser:     settings.LDAP.BindUser,
		PasswordFile: settings.LDAP.PasswordFile,
		MainGroup:    settings.LDAP.MainGroup,
		GroupFilter:  settings.LDAP.GroupFilter,
		UsersFilter:  settings.LDAP.UsersFilter,
		OutputDir:    settings.WorkDir,
	})
	crawler := services.NewCrawlService(
		exporter,
		ldif.NewParser(),
		artifacts,
		collector,
		settings.LDAP.MaxParallelExports,
	)

	// Publish
	client := push.NewClient(context.Background(), push.Config{
		Platform:          settings.Push.Platform,
		Org:               settings.Push.Org,
		Source:            settings.Push.Source,
		APIKey:            settings.Push.APIKey,
		RequestsPerSecond: settings.Push.RequestsPerSecond,
	})
	publisher := services.NewPublishService(
		artifacts,
		store.RunStore(),
		collector,
		services.NewBatchBuilder(settings.LDAP.Host),
		services.NewUploadOrchestrator(client, collector, settings.Push.StaleAfter),
	)

	closeAll := func() error {
		var errs []error
		if settings.MetricsTextfile != "" {
			if err := collector.WriteTextfile(settings.MetricsTextfile); err != nil {
				errs = append(errs, fmt.Errorf("writing metrics: %w", err))
			}
		}
		errs = append(errs, store.Close())
		return errors.Join(errs...)
	}

	return &cli.Services{
		Settings:  settingsService,
		Crawler:   crawler,
		Publisher: publisher,
		Runs:      publisher,
		Close:     closeAll,
	}, nil
}

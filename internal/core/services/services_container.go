package services

import (
	portsremote "github.com/finbooks/finbooks_backend/internal/core/ports/remote"
	portsrepo "github.com/finbooks/finbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_backend/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, apiClient portsremote.AccountingAPIClient) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Entry = NewEntryService(repos.EntryRepo, apiClient)
	container.Bulk = NewBulkService(repos.EntryRepo, apiClient)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.EntrySvcFacade = (*entryService)(nil)
	_ portssvc.BulkSvcFacade  = (*bulkService)(nil)
)

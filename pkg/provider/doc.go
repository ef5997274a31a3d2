// Package provider defines the read-only data contract for listed Deno modules.
//
// # Overview
//
// A Provider answers a single question: which modules are currently active,
// in name order. Records carry only the two fields the site publishes, the
// module name and its short description.
//
// # Implementations
//
//   - pkg/provider/airtable: the Airtable table backing the community form
//   - pkg/provider/sqlsource: a modules table in PostgreSQL or SQLite
//   - FileProvider (this package): a YAML list, for local development
//
// # Usage Example
//
//	p := provider.NewFileProvider("modules.yaml")
//	modules, err := p.ListModules(ctx, provider.DefaultQuery())
//	if err != nil {
//		return err
//	}
//
// # Related Packages
//
//   - pkg/snapshot: freezes provider results into snapshots
//   - pkg/search: filters snapshot records
package provider

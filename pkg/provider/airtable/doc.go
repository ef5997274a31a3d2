// Package airtable implements provider.Provider on top of the Airtable REST API.
//
// The community submission form writes into an Airtable base; this client
// reads the modules table with the same selection the public listing has
// always used: the name and desc fields, the {active} = 1 formula, and an
// ascending sort on name. Results are paged through with the offset token
// until the table is exhausted. The client never writes.
//
//	client, err := airtable.NewClient(airtable.Config{
//		Token:  os.Getenv("DENOID_AIRTABLE_TOKEN"),
//		BaseID: "appXXXXXXXXXXXXXX",
//		Table:  "modules",
//	})
//	modules, err := client.ListModules(ctx, provider.DefaultQuery())
package airtable

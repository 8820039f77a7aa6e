// Package formats registers the supported contact export layouts with the
// core registry. Import it for its side effects before detecting a file.
package formats

// Detection order follows Order: the original prospect export is checked
// before the CRM contacts export.
const (
	orderOriginal       = 10
	orderExportContacts = 20
)

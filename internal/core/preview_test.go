package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/leadsync/internal/core"
)

func TestPreview(t *testing.T) {
	ds := mustParseCSV(t, acmeCSV+"Globex,globex.com,Hank,Scorpio,Founder,\n")

	p := core.Preview(ds, 2)
	assert.Equal(t, "contacts.csv", p.FileName)
	assert.Equal(t, core.FormatOriginal, p.Format)
	assert.Equal(t, "Prospect export", p.FormatLabel)
	assert.Equal(t, 3, p.RowCount)
	assert.Equal(t, 2, p.CompanyCount)
	require.Len(t, p.Rows, 2)
	assert.Equal(t, 2, p.Rows[0].LineNumber)
	assert.Equal(t, "Jane", p.Rows[0].Values["First Name"])
	assert.Empty(t, p.Error)
}

func TestPreview_Unknown(t *testing.T) {
	ds := mustParseCSV(t, "Company Name,First Name,Last Name,Job Title\nAcme,Jane,Doe,CEO\n")

	p := core.Preview(ds, 0)
	assert.Equal(t, core.FormatUnknown, p.Format)
	assert.Equal(t, 1, p.RowCount)
	assert.Zero(t, p.CompanyCount)
	assert.Len(t, p.Rows, 1)
	assert.NotEmpty(t, p.Detection.Candidates)
}

func TestPreview_NormalizeError(t *testing.T) {
	ds := mustParseCSV(t, "Company name,First name,Last name,Job title\n,Jane,Doe,CEO\n")

	p := core.Preview(ds, 5)
	assert.Equal(t, core.FormatExportContacts, p.Format)
	assert.Contains(t, p.Error, "empty company name")
}

func TestPreview_IgnoredColumns(t *testing.T) {
	ds := mustParseCSV(t, "Notes,Company Name,First Name,Last Name,Prospect Job Title,Email,Owner\n"+
		"hot lead,Acme,Jane,Doe,CEO,jane@acme.io,sam\n")

	p := core.Preview(ds, 1)
	assert.Equal(t, core.FormatOriginal, p.Format)
	assert.Equal(t, []string{"Notes", "Owner"}, p.Ignored)
}

func TestPreview_UnknownHasNoIgnored(t *testing.T) {
	ds := mustParseCSV(t, "Name,Phone\nAcme,555\n")
	assert.Empty(t, core.Preview(ds, 1).Ignored)
}

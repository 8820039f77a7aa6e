package formats

import "github.com/JonMunkholm/leadsync/internal/core"

func init() {
	registerExportContacts()
}

// CRM "export contacts" columns. Only the first letter is capitalised,
// which is what tells this layout apart from the prospect export.
const (
	colExCompany        = "Company name"
	colExFirstName      = "First name"
	colExLastName       = "Last name"
	colExJobTitle       = "Job title"
	colExWebsite        = "Website"
	colExIndustry       = "Industry"
	colExEmployees      = "# Employees"
	colExAnnualRevenue  = "Annual revenue"
	colExCompanyLinkIn  = "Company LinkedIn URL"
	colExCompanyPhone   = "Company phone"
	colExCompanyCity    = "Company city"
	colExCompanyState   = "Company state"
	colExCompanyCountry = "Company country"
	colExSeniority      = "Seniority"
	colExDepartment     = "Department"
	colExEmail          = "Email"
	colExPhone          = "Phone"
	colExLinkedIn       = "LinkedIn URL"
	colExCity           = "City"
	colExState          = "State"
	colExCountry        = "Country"
)

func registerExportContacts() {
	core.Register(core.FormatDefinition{
		Format:   core.FormatExportContacts,
		Label:    "CRM contacts export",
		Order:    orderExportContacts,
		Required: []string{colExCompany, colExFirstName, colExLastName, colExJobTitle},
		Optional: []string{
			colExWebsite, colExIndustry, colExEmployees, colExAnnualRevenue, colExCompanyLinkIn,
			colExCompanyPhone, colExCompanyCity, colExCompanyState, colExCompanyCountry,
			colExSeniority, colExDepartment, colExEmail, colExPhone, colExLinkedIn,
			colExCity, colExState, colExCountry,
		},
		Build: buildExportContacts,
	})
}

func buildExportContacts(row []string, idx core.HeaderIndex) (core.Record, error) {
	var rec core.ExportContactsRecord
	var err error

	if rec.Company, err = core.RequiredCell(row, idx, colExCompany); err != nil {
		return nil, err
	}
	if rec.FirstName, err = core.RequiredCell(row, idx, colExFirstName); err != nil {
		return nil, err
	}
	if rec.LastName, err = core.RequiredCell(row, idx, colExLastName); err != nil {
		return nil, err
	}
	if rec.JobTitle, err = core.RequiredCell(row, idx, colExJobTitle); err != nil {
		return nil, err
	}

	rec.Website = core.Cell(row, idx, colExWebsite)
	rec.Industry = core.Cell(row, idx, colExIndustry)
	rec.Employees = core.Cell(row, idx, colExEmployees)
	rec.AnnualRevenue = core.Cell(row, idx, colExAnnualRevenue)
	rec.LinkedIn = core.Cell(row, idx, colExCompanyLinkIn)
	rec.CompanyPhone = core.Cell(row, idx, colExCompanyPhone)
	rec.CompanyCity = core.Cell(row, idx, colExCompanyCity)
	rec.CompanyState = core.Cell(row, idx, colExCompanyState)
	rec.CompanyCountry = core.Cell(row, idx, colExCompanyCountry)

	rec.Seniority = core.Cell(row, idx, colExSeniority)
	rec.Department = core.Cell(row, idx, colExDepartment)
	rec.Email = core.Cell(row, idx, colExEmail)
	rec.Phone = core.Cell(row, idx, colExPhone)
	rec.ProfileLinkedIn = core.Cell(row, idx, colExLinkedIn)
	rec.City = core.Cell(row, idx, colExCity)
	rec.State = core.Cell(row, idx, colExState)
	rec.Country = core.Cell(row, idx, colExCountry)
	return rec, nil
}

package formats

import "github.com/JonMunkholm/leadsync/internal/core"

func init() {
	registerOriginal()
}

// Original prospect export columns.
const (
	colCompanyName     = "Company Name"
	colFirstName       = "First Name"
	colLastName        = "Last Name"
	colProspectTitle   = "Prospect Job Title"
	colDomain          = "Company Domain Name"
	colCompanyLinkedIn = "Company Linkedin Page"
	colRevenue         = "Company Revenue"
	colYearFounded     = "Company Year Founded"
	colSummary         = "Company Telescope Summary"
	colTags            = "Company Telescope Tags"
	colEmail           = "Email"
	colPhoneNumbers    = "Phone Numbers"
	colProfileLinkedIn = "Linkedin Profile"
	colCity            = "City"
	colState           = "State"
	colCountry         = "Country"
)

func registerOriginal() {
	core.Register(core.FormatDefinition{
		Format:   core.FormatOriginal,
		Label:    "Prospect export",
		Order:    orderOriginal,
		Required: []string{colCompanyName, colFirstName, colLastName, colProspectTitle},
		Optional: []string{
			colDomain, colCompanyLinkedIn, colRevenue, colYearFounded, colSummary, colTags,
			colEmail, colPhoneNumbers, colProfileLinkedIn, colCity, colState, colCountry,
		},
		Build: buildOriginal,
	})
}

func buildOriginal(row []string, idx core.HeaderIndex) (core.Record, error) {
	var rec core.OriginalRecord
	var err error

	if rec.Company, err = core.RequiredCell(row, idx, colCompanyName); err != nil {
		return nil, err
	}
	if rec.FirstName, err = core.RequiredCell(row, idx, colFirstName); err != nil {
		return nil, err
	}
	if rec.LastName, err = core.RequiredCell(row, idx, colLastName); err != nil {
		return nil, err
	}
	if rec.JobTitle, err = core.RequiredCell(row, idx, colProspectTitle); err != nil {
		return nil, err
	}

	rec.Domain = core.Cell(row, idx, colDomain)
	rec.LinkedIn = core.Cell(row, idx, colCompanyLinkedIn)
	rec.Revenue = core.Cell(row, idx, colRevenue)
	rec.YearFounded = core.Cell(row, idx, colYearFounded)
	rec.TelescopeSummary = core.Cell(row, idx, colSummary)
	rec.TelescopeTags = core.Cell(row, idx, colTags)

	rec.Email = core.Cell(row, idx, colEmail)
	rec.Phone = core.Cell(row, idx, colPhoneNumbers)
	rec.ProfileLinkedIn = core.Cell(row, idx, colProfileLinkedIn)
	rec.Location = core.JoinNonEmpty(", ",
		core.Cell(row, idx, colCity),
		core.Cell(row, idx, colState),
		core.Cell(row, idx, colCountry),
	)
	return rec, nil
}

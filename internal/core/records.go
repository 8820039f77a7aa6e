package core

// IndividualTitle builds the tracker title for a contact.
// Empty parts are kept as empty segments.
func IndividualTitle(firstName, lastName, jobTitle string) string {
	return firstName + " " + lastName + " - " + jobTitle
}

// OriginalRecord is a row of the original prospect export.
type OriginalRecord struct {
	Company          string
	Domain           string
	LinkedIn         string
	Revenue          string
	YearFounded      string
	TelescopeSummary string
	TelescopeTags    string

	FirstName       string
	LastName        string
	JobTitle        string
	Email           string
	Phone           string
	ProfileLinkedIn string
	Location        string
}

func (r OriginalRecord) Format() Format          { return FormatOriginal }
func (r OriginalRecord) CompanyName() string     { return r.Company }
func (r OriginalRecord) IndividualTitle() string { return IndividualTitle(r.FirstName, r.LastName, r.JobTitle) }

func (r OriginalRecord) Summary() CompanySummary {
	return CompanySummary{Name: r.Company, Domain: r.Domain}
}

func (r OriginalRecord) CompanyFields() Fields {
	return Fields{
		{Key: "company_name", Value: r.Company},
		{Key: "domain", Value: r.Domain},
		{Key: "linkedin", Value: r.LinkedIn},
		{Key: "revenue", Value: r.Revenue},
		{Key: "year_founded", Value: r.YearFounded},
		{Key: "summary", Value: r.TelescopeSummary},
		{Key: "tags", Value: r.TelescopeTags},
	}
}

func (r OriginalRecord) IndividualFields() Fields {
	return Fields{
		{Key: "first_name", Value: r.FirstName},
		{Key: "last_name", Value: r.LastName},
		{Key: "job_title", Value: r.JobTitle},
		{Key: "email", Value: r.Email},
		{Key: "phone", Value: r.Phone},
		{Key: "linkedin", Value: r.ProfileLinkedIn},
		{Key: "location", Value: r.Location},
	}
}

// ExportContactsRecord is a row of a CRM "export contacts" file.
type ExportContactsRecord struct {
	Company        string
	Website        string
	Industry       string
	Employees      string
	AnnualRevenue  string
	LinkedIn       string
	CompanyPhone   string
	CompanyCity    string
	CompanyState   string
	CompanyCountry string

	FirstName       string
	LastName        string
	JobTitle        string
	Seniority       string
	Department      string
	Email           string
	Phone           string
	ProfileLinkedIn string
	City            string
	State           string
	Country         string
}

func (r ExportContactsRecord) Format() Format      { return FormatExportContacts }
func (r ExportContactsRecord) CompanyName() string { return r.Company }
func (r ExportContactsRecord) IndividualTitle() string {
	return IndividualTitle(r.FirstName, r.LastName, r.JobTitle)
}

func (r ExportContactsRecord) Summary() CompanySummary {
	return CompanySummary{Name: r.Company, Domain: r.Website, Industry: r.Industry}
}

func (r ExportContactsRecord) CompanyFields() Fields {
	return Fields{
		{Key: "company_name", Value: r.Company},
		{Key: "website", Value: r.Website},
		{Key: "industry", Value: r.Industry},
		{Key: "employees", Value: r.Employees},
		{Key: "annual_revenue", Value: r.AnnualRevenue},
		{Key: "linkedin", Value: r.LinkedIn},
		{Key: "phone", Value: r.CompanyPhone},
		{Key: "city", Value: r.CompanyCity},
		{Key: "state", Value: r.CompanyState},
		{Key: "country", Value: r.CompanyCountry},
	}
}

func (r ExportContactsRecord) IndividualFields() Fields {
	return Fields{
		{Key: "first_name", Value: r.FirstName},
		{Key: "last_name", Value: r.LastName},
		{Key: "job_title", Value: r.JobTitle},
		{Key: "seniority", Value: r.Seniority},
		{Key: "department", Value: r.Department},
		{Key: "email", Value: r.Email},
		{Key: "phone", Value: r.Phone},
		{Key: "linkedin", Value: r.ProfileLinkedIn},
		{Key: "city", Value: r.City},
		{Key: "state", Value: r.State},
		{Key: "country", Value: r.Country},
	}
}

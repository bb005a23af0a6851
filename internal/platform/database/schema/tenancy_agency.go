package schema

// TenancyAgencyTable represents the 'tenancy.agency' table
type TenancyAgencyTable struct {
	Table             string
	ID                string
	Slug              string
	Name              string
	OwnerEmail        string
	Status            string
	AuthorizedEmails  string
	AuthorizedDomains string
	LastActiveAt      string
	CreatedAt         string
	UpdatedAt         string
}

var TenancyAgency = TenancyAgencyTable{
	Table:             "tenancy.agency",
	ID:                "id",
	Slug:              "slug",
	Name:              "name",
	OwnerEmail:        "owneremail",
	Status:            "status",
	AuthorizedEmails:  "authorizedemails",
	AuthorizedDomains: "authorizeddomains",
	LastActiveAt:      "lastactiveat",
	CreatedAt:         "createdat",
	UpdatedAt:         "updatedat",
}

// Columns returns all standard column names
func (t TenancyAgencyTable) Columns() []string {
	return []string{
		t.ID, t.Slug, t.Name, t.OwnerEmail, t.Status, t.AuthorizedEmails, t.AuthorizedDomains, t.LastActiveAt, t.CreatedAt, t.UpdatedAt,
	}
}

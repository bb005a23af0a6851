package schema

// IntakeReferralTable represents the 'intake.referral' table
type IntakeReferralTable struct {
	Table       string
	ID          string
	AgencyID    string
	ClientName  string
	ClientEmail string
	ClientPhone string
	Summary     string
	Status      string
	Note        string
	CreatedAt   string
	UpdatedAt   string
}

var IntakeReferral = IntakeReferralTable{
	Table:       "intake.referral",
	ID:          "id",
	AgencyID:    "agencyid",
	ClientName:  "clientname",
	ClientEmail: "clientemail",
	ClientPhone: "clientphone",
	Summary:     "summary",
	Status:      "status",
	Note:        "note",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// Columns returns all standard column names
func (t IntakeReferralTable) Columns() []string {
	return []string{
		t.ID, t.AgencyID, t.ClientName, t.ClientEmail, t.ClientPhone, t.Summary, t.Status, t.Note, t.CreatedAt, t.UpdatedAt,
	}
}

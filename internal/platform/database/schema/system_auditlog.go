package schema

// SystemAuditLogTable represents the 'system.auditlog' table
type SystemAuditLogTable struct {
	Table      string
	ID         string
	Action     string
	ActorID    string
	TenantID   string
	ResourceID string
	Detail     string
	CreatedAt  string
}

var SystemAuditLog = SystemAuditLogTable{
	Table:      "system.auditlog",
	ID:         "id",
	Action:     "action",
	ActorID:    "actorid",
	TenantID:   "tenantid",
	ResourceID: "resourceid",
	Detail:     "detail",
	CreatedAt:  "createdat",
}

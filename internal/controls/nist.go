package controls

// NISTCSF20Name is the registry name of the built-in NIST CSF 2.0 catalog.
const NISTCSF20Name = "nist-csf-2.0"

const nistFramework = "NIST CSF 2.0"

// NISTCSF20 returns a fresh copy of the built-in NIST CSF 2.0 seed catalog.
func NISTCSF20() *Catalog {
	entries := []Entry{
		{Function: "IDENTIFY", Category: "GV", ControlID: "ID.GV-01", Title: "Governance program established", Description: "Roles, responsibilities, and authorities established and communicated."},
		{Function: "IDENTIFY", Category: "AM", ControlID: "ID.AM-01", Title: "Hardware inventory", Description: "Inventories of hardware managed by the organization are maintained."},
		{Function: "IDENTIFY", Category: "RA", ControlID: "ID.RA-01", Title: "Vulnerabilities identified", Description: "Vulnerabilities in assets are identified, validated, and recorded."},
		{Function: "PROTECT", Category: "PR", ControlID: "PR.AC-01", Title: "Identity management", Description: "Identities are issued, managed, verified, revoked for users and services."},
		{Function: "PROTECT", Category: "AT", ControlID: "PR.AT-01", Title: "Awareness and training", Description: "Personnel are provided with awareness and training for general tasks."},
		{Function: "PROTECT", Category: "DS", ControlID: "PR.DS-01", Title: "Data at rest protected", Description: "The confidentiality, integrity, and availability of data at rest are protected."},
		{Function: "DETECT", Category: "DE", ControlID: "DE.AE-01", Title: "Anomalies detected", Description: "Potential cybersecurity events are detected in a timely manner."},
		{Function: "DETECT", Category: "CM", ControlID: "DE.CM-01", Title: "Networks monitored", Description: "Networks and network services are monitored to find potentially adverse events."},
		{Function: "RESPOND", Category: "RS", ControlID: "RS.MA-01", Title: "Incident response plan", Description: "Documented IR plan with roles, communications, and procedures."},
		{Function: "RESPOND", Category: "CO", ControlID: "RS.CO-02", Title: "Incidents reported", Description: "Internal and external stakeholders are notified of incidents."},
		{Function: "RECOVER", Category: "RC", ControlID: "RC.CO-01", Title: "Recovery planning", Description: "Documented recovery plans are maintained and tested."},
		{Function: "RECOVER", Category: "RP", ControlID: "RC.RP-01", Title: "Recovery plan executed", Description: "The recovery portion of the incident response plan is executed once initiated."},
	}
	for i := range entries {
		entries[i].Framework = nistFramework
	}
	return &Catalog{
		Name:      NISTCSF20Name,
		Framework: nistFramework,
		Source:    "builtin:" + NISTCSF20Name,
		Entries:   entries,
	}
}

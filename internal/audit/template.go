package audit

type programStep struct {
	code     string
	title    string
	category string
}

const (
	categoryPartner    = "Partner Checklists"
	categoryPlanning   = "Planning"
	categoryCompletion = "Completion & Financials"
)

// standardProgram is the audit program applied by ApplyTemplate.
var standardProgram = []programStep{
	{"10-1", "Engagement Acceptance and Continuance", categoryPartner},
	{"10-2", "Supervision, review and final approval", categoryPartner},
	{"10-3", "Partner rotation documentation form", categoryPartner},
	{"10-4", "Engagement letter", categoryPartner},
	{"10-5", "Document completion date calculator", categoryPartner},

	{"20-1", "Understanding the company and identifying risk", categoryPlanning},
	{"20-2", "Organizational chart", categoryPlanning},
	{"20-3", "Flowchart of consolidated group", categoryPlanning},
	{"20-4", "Engagement independence & compliance form", categoryPlanning},
	{"20-4a", "Engagement independence letter", categoryPlanning},
	{"20-4b", "Engagement independence sign-off sheet", categoryPlanning},
	{"20-5", "Understanding internal control (design & implementation)", categoryPlanning},
	{"20-6a", "Risk assessment summary form", categoryPlanning},
	{"20-7", "Materiality worksheet", categoryPlanning},
	{"20-8", "Engagement team discussion", categoryPlanning},
	{"20-9", "Planning memorandum", categoryPlanning},
	{"20-10", "Time summary and engagement status report", categoryPlanning},
	{"20-11", "Confirmation control", categoryPlanning},
	{"20-12", "Preliminary analytics (consolidated)", categoryPlanning},
	{"20-13", "Tests of transactions and journal entry testing", categoryPlanning},
	{"20-14", "Press release and board of directors' minutes", categoryPlanning},
	{"20-15", "Communication with governance at planning", categoryPlanning},
	{"20-16", "Fraud risk inquiry forms", categoryPlanning},
	{"20-18a", "General planning procedures", categoryPlanning},
	{"20-18b", "Other planning procedures", categoryPlanning},

	{"30-1", "Final analytics (consolidated level only)", categoryCompletion},
	{"30-2", "Audited financial statements", categoryCompletion},
	{"30-3", "Disclosure checklist", categoryCompletion},
	{"30-4", "Going concern checklist and support", categoryCompletion},
	{"30-5", "Concentration checklist", categoryCompletion},
	{"30-6", "Significant estimates checklist", categoryCompletion},
	{"30-7", "Commitments and contingencies", categoryCompletion},
	{"30-8", "Related parties form", categoryCompletion},
	{"30-9", "Subsequent events", categoryCompletion},
	{"30-10", "Audit adjustment form", categoryCompletion},
	{"30-11", "Audit difference evaluation form", categoryCompletion},
	{"30-12", "Engagement completion memo", categoryCompletion},
	{"30-13", "Management representation letter", categoryCompletion},
	{"30-14", "Internal control communication letter", categoryCompletion},
	{"30-15", "General auditing and completion procedures", categoryCompletion},
	{"30-16", "Other general auditing and completion procedures", categoryCompletion},
	{"30-17", "Communication with governance at audit conclusion", categoryCompletion},
}

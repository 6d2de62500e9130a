package workflow

import "github.com/AweemRizwan/smm-optimize-sub001/pkg/models"

// Action is a button the UI may present while a task sits in a stage.
type Action struct {
	Label  string
	Result models.ResultStatus
}

// Stage is one step of the approval workflow. Next is the stage entered on an
// approve outcome; empty Next means the happy path ends here. Non-approve
// outcomes are routed server-side and have no client-visible target.
type Stage struct {
	ID           string
	StatusLabel  string
	Next         string
	Actions      []Action
	AllowedRoles []models.Role
}

// Stage ids. The server assigns one of these as a task's task_type.
const (
	StageOnboarding          = "onboarding"
	StageApproveProposal     = "approve_proposal"
	StageInvoiceSubmission   = "invoice_submission"
	StageInvoiceVerification = "invoice_verification"
	StageCreateStrategy      = "create_strategy"
	StageApproveStrategy     = "approve_strategy"
	StageContentWriting      = "content_writing"
	StageApproveContent      = "approve_content"
	StageCreativesDesign     = "creatives_design"
	StageApproveCreatives    = "approve_creatives"
	StageSMOScheduling       = "smo_scheduling"
	StageMonthlyReporting    = "monthly_reporting"
)

// approvalActions is the three-way choice presented on review stages.
var approvalActions = []Action{
	{Label: "Done", Result: models.ResultApprove},
	{Label: "Changes Required", Result: models.ResultChangesRequired},
	{Label: "Decline", Result: models.ResultDeclined},
}

// doneAction is the single forward action on execution stages.
var doneAction = []Action{{Label: "Done", Result: models.ResultApprove}}

// stages is the workflow table: a flat lookup from stage id to stage record.
// monthly_reporting pointing back to invoice_submission is the designed
// monthly billing loop, not a terminus.
var stages = map[string]Stage{
	StageOnboarding: {
		ID:           StageOnboarding,
		StatusLabel:  "Client Onboarding",
		Next:         StageApproveProposal,
		Actions:      doneAction,
		AllowedRoles: []models.Role{models.RoleAccountManager},
	},
	StageApproveProposal: {
		ID:           StageApproveProposal,
		StatusLabel:  "Proposal Approval",
		Next:         StageInvoiceSubmission,
		Actions:      approvalActions,
		AllowedRoles: []models.Role{models.RoleAccountManager},
	},
	StageInvoiceSubmission: {
		ID:           StageInvoiceSubmission,
		StatusLabel:  "Invoice Submission",
		Next:         StageInvoiceVerification,
		Actions:      doneAction,
		AllowedRoles: []models.Role{models.RoleAccountant},
	},
	StageInvoiceVerification: {
		ID:          StageInvoiceVerification,
		StatusLabel: "Invoice Verification",
		Next:        StageCreateStrategy,
		Actions: []Action{
			{Label: "Verified", Result: models.ResultApprove},
			{Label: "Decline", Result: models.ResultDeclined},
		},
		AllowedRoles: []models.Role{models.RoleAccountManager},
	},
	StageCreateStrategy: {
		ID:           StageCreateStrategy,
		StatusLabel:  "Strategy Creation",
		Next:         StageApproveStrategy,
		Actions:      doneAction,
		AllowedRoles: []models.Role{models.RoleMarketingManager},
	},
	StageApproveStrategy: {
		ID:           StageApproveStrategy,
		StatusLabel:  "Strategy Approval",
		Next:         StageContentWriting,
		Actions:      approvalActions,
		AllowedRoles: []models.Role{models.RoleAccountManager},
	},
	StageContentWriting: {
		ID:           StageContentWriting,
		StatusLabel:  "Content Writing",
		Next:         StageApproveContent,
		Actions:      doneAction,
		AllowedRoles: []models.Role{models.RoleContentWriter},
	},
	StageApproveContent: {
		ID:           StageApproveContent,
		StatusLabel:  "Content Approval",
		Next:         StageCreativesDesign,
		Actions:      approvalActions,
		AllowedRoles: []models.Role{models.RoleMarketingManager},
	},
	StageCreativesDesign: {
		ID:           StageCreativesDesign,
		StatusLabel:  "Creatives Design",
		Next:         StageApproveCreatives,
		Actions:      doneAction,
		AllowedRoles: []models.Role{models.RoleGraphicsDesigner},
	},
	StageApproveCreatives: {
		ID:           StageApproveCreatives,
		StatusLabel:  "Creatives Approval",
		Next:         StageSMOScheduling,
		Actions:      approvalActions,
		AllowedRoles: []models.Role{models.RoleAccountManager},
	},
	StageSMOScheduling: {
		ID:           StageSMOScheduling,
		StatusLabel:  "SMO Scheduling",
		Next:         StageMonthlyReporting,
		Actions:      doneAction,
		AllowedRoles: []models.Role{models.RoleMarketingManager},
	},
	StageMonthlyReporting: {
		ID:           StageMonthlyReporting,
		StatusLabel:  "Monthly Reporting",
		Next:         StageInvoiceSubmission,
		Actions:      doneAction,
		AllowedRoles: []models.Role{models.RoleAccountManager},
	},
}

// Side-selection requirement maps: task type -> role that must pick the
// resource before submitting a transition from that stage. The three maps are
// independent and are checked independently; smo_scheduling legitimately
// appears in two of them with different roles.
var (
	invoiceRoleByStage = map[string]models.Role{
		StageInvoiceVerification: models.RoleAccountManager,
	}
	calendarRoleByStage = map[string]models.Role{
		StageCreateStrategy: models.RoleMarketingManager,
		StageSMOScheduling:  models.RoleMarketingManager,
	}
	meetingRoleByStage = map[string]models.Role{
		StageOnboarding:    models.RoleAccountManager,
		StageSMOScheduling: models.RoleAccountManager,
	}
)

// StageIDs returns every stage id in the table, in no particular order.
func StageIDs() []string {
	ids := make([]string, 0, len(stages))
	for id := range stages {
		ids = append(ids, id)
	}
	return ids
}

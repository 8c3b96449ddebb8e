package models

// TenantType distinguishes regional centers from the supervising ministry.
type TenantType string

const (
	TenantTypeCrou      TenantType = "crou"
	TenantTypeMinistere TenantType = "ministere"
)

// AccessScope is the breadth of tenant visibility a request carries.
type AccessScope string

const (
	AccessScopeSingle    AccessScope = "single"
	AccessScopeMulti     AccessScope = "multi"
	AccessScopeMinistere AccessScope = "ministere"
)

type UserRole string

const (
	UserRoleMinistereAdmin UserRole = "ministere_admin"
	UserRoleDirecteur      UserRole = "directeur"
	UserRoleChefFinancier  UserRole = "chef_financier"
	UserRoleChefHebergmt   UserRole = "chef_hebergement"
	UserRoleAgent          UserRole = "agent"
)

// MinistryRoles are roles that resolve to ministere access scope.
var MinistryRoles = map[UserRole]bool{
	UserRoleMinistereAdmin: true,
}

type AllocationType string

const (
	AllocationTypeBudget AllocationType = "Budget"
	AllocationTypeStock  AllocationType = "Stock"
)

type AllocationStatus string

const (
	AllocationStatusDraft     AllocationStatus = "Draft"
	AllocationStatusSubmitted AllocationStatus = "Submitted"
	// Pending is a legacy alias of Submitted kept for rows imported from the
	// previous system; it validates the same way.
	AllocationStatusPending   AllocationStatus = "Pending"
	AllocationStatusApproved  AllocationStatus = "Approved"
	AllocationStatusRejected  AllocationStatus = "Rejected"
	AllocationStatusExecuted  AllocationStatus = "Executed"
	AllocationStatusCancelled AllocationStatus = "Cancelled"
)

func (s AllocationStatus) IsTerminal() bool {
	switch s {
	case AllocationStatusRejected, AllocationStatusExecuted, AllocationStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status machine permits s -> next.
// Draft -> Submitted -> {Approved, Rejected}; Approved -> {Executed, Cancelled};
// any non-terminal -> Cancelled.
func (s AllocationStatus) CanTransitionTo(next AllocationStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == AllocationStatusCancelled {
		return true
	}
	switch s {
	case AllocationStatusDraft:
		return next == AllocationStatusSubmitted
	case AllocationStatusSubmitted, AllocationStatusPending:
		return next == AllocationStatusApproved || next == AllocationStatusRejected
	case AllocationStatusApproved:
		return next == AllocationStatusExecuted
	}
	return false
}

type ValidationAction string

const (
	ValidationActionApprove ValidationAction = "approve"
	ValidationActionReject  ValidationAction = "reject"
)

type TenantLevel string

const (
	TenantLevelNational TenantLevel = "national"
	TenantLevelRegional TenantLevel = "regional"
)

type NotificationType string

const (
	NotificationTypeAllocation NotificationType = "Allocation"
	NotificationTypeHousing    NotificationType = "Housing"
	NotificationTypeSystem     NotificationType = "System"
)

type AuditAction string

const (
	AuditActionCreate    AuditAction = "CREATE"
	AuditActionUpdate    AuditAction = "UPDATE"
	AuditActionDelete    AuditAction = "DELETE"
	AuditActionAuthorize AuditAction = "AUTHORIZE"
)

package tenancy

import (
	"context"

	"github.com/roufai-ne/crou-management-system-sub011/config"
	"github.com/roufai-ne/crou-management-system-sub011/models"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
	"github.com/sirupsen/logrus"
)

// FilterOptions configures one authorization decision. Supplied inline by
// each call site so a route's isolation policy is readable where it is used.
type FilterOptions struct {
	// StrictMode rejects records that carry no tenant id. Off by default:
	// legacy rows without a crou_id pass through.
	StrictMode bool
	// AllowCrossTenant opens the cross-tenant path, subject to Rules.
	AllowCrossTenant bool
	// BypassForExtendedAccess lets ministere contexts through unfiltered.
	BypassForExtendedAccess bool
	// Rules applies to the cross-tenant path only.
	Rules CrossTenantRules
	// Resource names what is being touched, for the audit entry.
	Resource string
}

// Decision is the outcome of an isolation check.
type Decision struct {
	Allowed bool
	Reason  string
	// Unfiltered is true when the caller may skip the tenant predicate
	// entirely (ministry bypass).
	Unfiltered bool
}

// Authorize decides whether the context may operate on requestedTenantId.
// Precedence is fixed: explicit restriction lists always win, then ministry
// bypass, then same-tenant, then the cross-tenant path, then default deny.
// The decision is audit-logged; audit failures never affect the verdict.
func Authorize(ctx context.Context, tc *TenantContext, requestedTenantId string, opts FilterOptions) Decision {
	decision := authorize(tc, requestedTenantId, opts)
	logDecision(ctx, tc, requestedTenantId, opts.Resource, decision)
	return decision
}

func authorize(tc *TenantContext, requestedTenantId string, opts FilterOptions) Decision {
	if tc == nil {
		return Decision{Allowed: false, Reason: "no tenant context"}
	}

	// Restriction lists outrank everything, including the ministry bypass.
	if opts.Rules.RestrictedTenants[requestedTenantId] {
		return Decision{Allowed: false, Reason: "tenant is explicitly restricted"}
	}

	if opts.BypassForExtendedAccess && tc.TenantType == models.TenantTypeMinistere {
		return Decision{Allowed: true, Unfiltered: true}
	}

	if requestedTenantId == "" {
		strict := opts.StrictMode || config.StrictTenantMode()
		if strict {
			return Decision{Allowed: false, Reason: "record has no tenant id"}
		}
		return Decision{Allowed: true}
	}

	if requestedTenantId == tc.TenantId {
		return Decision{Allowed: true}
	}

	if !opts.AllowCrossTenant {
		return Decision{Allowed: false, Reason: "cross-tenant access refused"}
	}

	verdict := ValidateCrossTenant(tc, requestedTenantId, opts.Rules)
	if !verdict.Allowed {
		return Decision{Allowed: false, Reason: verdict.Reason}
	}
	return Decision{Allowed: true}
}

// logDecision records the outcome for audit. Best effort only: the async
// audit writer swallows its own failures, and the structured log below cannot
// fail the request either.
func logDecision(ctx context.Context, tc *TenantContext, requestedTenantId string, resource string, decision Decision) {
	defer func() {
		// a panic in logging must never surface as an authorization failure
		_ = recover()
	}()

	if resource == "" {
		resource = "unspecified"
	}
	models.RecordAudit(ctx, models.AuditActionAuthorize, resource, requestedTenantId, nil, nil, decision.Allowed, decision.Reason)

	logger := config.GetLogger()
	fields := logrus.Fields{
		"module":    "tenancy",
		"resource":  resource,
		"requested": requestedTenantId,
		"allowed":   decision.Allowed,
	}
	if tc != nil {
		fields["tenant_id"] = tc.TenantId
		fields["user_id"] = tc.UserId
	}
	if decision.Allowed {
		logger.WithFields(fields).Debug("tenant access allowed")
	} else {
		fields["reason"] = decision.Reason
		logger.WithFields(fields).Warn("tenant access denied")
	}
}

// RequireAccess is the error-returning form used by workflows: Deny becomes
// a DeniedError carrying the reason.
func RequireAccess(ctx context.Context, tc *TenantContext, requestedTenantId string, opts FilterOptions) error {
	decision := Authorize(ctx, tc, requestedTenantId, opts)
	if !decision.Allowed {
		return utils.Denied(decision.Reason)
	}
	return nil
}

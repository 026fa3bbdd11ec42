// Package provision implements the tenant provisioning workflow: turning a
// validated new-store form into a working, loggable-into tenant. The
// workflow is a linear best-effort saga with no compensating transactions.
// Each step records its outcome so partial states stay diagnosable; only
// validation and the tenant insert itself are fatal. Whatever happens after
// the tenant row exists, the caller always ends up with a local credential
// they can sign in with.
package provision

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/GustaavooC/mooda-sub000/internal/contract"
	"github.com/GustaavooC/mooda-sub000/internal/credstore"
	"github.com/GustaavooC/mooda-sub000/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Step names, in execution order
const (
	StepValidate           = "validate"
	StepCreateAdminUser    = "create_admin_user"
	StepCreateTenant       = "create_tenant"
	StepCreateDependents   = "create_dependents"
	StepRegisterCredential = "register_credential"
)

// Step outcomes
const (
	OutcomeSucceeded = "succeeded"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// MinPasswordLength is the minimum admin password length accepted
const MinPasswordLength = 6

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidationError is a user-input error surfaced before anything is mutated
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TenantStore is the tenant persistence surface the workflow depends on
type TenantStore interface {
	SlugExists(slug string) (bool, error)
	Create(t *model.Tenant) error
	AttachUser(tenantID, userID uuid.UUID, role string) error
}

// UserDirectory is the privileged user-creation API. It may be entirely
// unavailable (nil directory), which demotes the run to demo mode rather
// than failing it.
type UserDirectory interface {
	CreateConfirmed(email, name, password string) (uuid.UUID, error)
}

// CustomizationStore creates the default storefront customization row
type CustomizationStore interface {
	CreateDefault(tenantID uuid.UUID) error
}

// Request is the validated new-tenant form
type Request struct {
	Name                 string `json:"name"`
	Slug                 string `json:"slug"`
	Description          string `json:"description"`
	AdminEmail           string `json:"admin_email"`
	AdminName            string `json:"admin_name"`
	AdminPassword        string `json:"admin_password"`
	ContractDurationDays int    `json:"contract_duration_days"`
}

// StepResult records the outcome of a single workflow step
type StepResult struct {
	Name    string `json:"name"`
	Outcome string `json:"outcome"`
	Message string `json:"message,omitempty"`
}

// Result is what the workflow reports back to the admin console
type Result struct {
	Success         bool         `json:"success"`
	Message         string       `json:"message"`
	TenantID        uuid.UUID    `json:"tenant_id"`
	UserID          uuid.UUID    `json:"user_id"`
	RealUserCreated bool         `json:"real_user_created"`
	RegistrationURL string       `json:"registration_url"`
	Steps           []StepResult `json:"steps"`
}

// Workflow runs tenant provisioning against injected stores
type Workflow struct {
	tenants        TenantStore
	users          UserDirectory
	customizations CustomizationStore
	credentials    credstore.Store
	log            *zap.Logger

	defaultDurationDays int
	signinPath          string
}

// New creates a provisioning workflow. users may be nil when no privileged
// user-creation API is available.
func New(tenants TenantStore, users UserDirectory, customizations CustomizationStore, credentials credstore.Store, log *zap.Logger, defaultDurationDays int, signinPath string) *Workflow {
	if log == nil {
		log = zap.NewNop()
	}
	if defaultDurationDays <= 0 {
		defaultDurationDays = 30
	}
	if signinPath == "" {
		signinPath = "/auth/signin"
	}
	return &Workflow{
		tenants:             tenants,
		users:               users,
		customizations:      customizations,
		credentials:         credentials,
		log:                 log,
		defaultDurationDays: defaultDurationDays,
		signinPath:          signinPath,
	}
}

// Run executes the workflow. A non-nil error means nothing beyond the
// failing step was attempted: either validation failed (*ValidationError)
// or the tenant insert itself failed. Every other failure is recorded in
// the step list and the run continues in degraded mode.
func (w *Workflow) Run(req Request) (*Result, error) {
	res := &Result{}
	record := func(name, outcome, message string) {
		res.Steps = append(res.Steps, StepResult{Name: name, Outcome: outcome, Message: message})
	}

	// Step 1: validate. Nothing is mutated before this passes.
	if err := w.validate(req); err != nil {
		record(StepValidate, OutcomeFailed, err.Error())
		return res, err
	}
	record(StepValidate, OutcomeSucceeded, "")

	if req.ContractDurationDays <= 0 {
		req.ContractDurationDays = w.defaultDurationDays
	}
	email := credstore.NormalizeEmail(req.AdminEmail)

	// Step 2: attempt privileged user creation. Failure demotes the rest
	// of the run to demo mode instead of aborting.
	var ownerID uuid.UUID
	realUser := false
	if w.users == nil {
		record(StepCreateAdminUser, OutcomeSkipped, "no privileged user-creation API configured")
	} else if id, err := w.users.CreateConfirmed(email, req.AdminName, req.AdminPassword); err != nil {
		w.log.Warn("privileged user creation failed, continuing in demo mode",
			zap.String("email", email), zap.Error(err))
		record(StepCreateAdminUser, OutcomeFailed, err.Error())
	} else {
		ownerID = id
		realUser = true
		record(StepCreateAdminUser, OutcomeSucceeded, "")
	}
	if !realUser {
		// Locally generated placeholder so the tenant still has an owner id
		// to hang the credential profile on
		ownerID = uuid.New()
	}

	// Step 3: create the tenant record. This is the only fatal remote step.
	now := time.Now()
	tenant := &model.Tenant{
		Slug:                 strings.ToLower(req.Slug),
		Name:                 req.Name,
		Description:          req.Description,
		Status:               model.TenantStatusActive,
		ContractStartDate:    now,
		ContractDurationDays: req.ContractDurationDays,
		ContractEndDate:      contract.EndDate(now, req.ContractDurationDays),
	}
	if realUser {
		owner := ownerID
		tenant.OwnerID = &owner
	}
	if err := w.tenants.Create(tenant); err != nil {
		record(StepCreateTenant, OutcomeFailed, err.Error())
		w.log.Error("tenant creation failed", zap.String("slug", tenant.Slug), zap.Error(err))
		return res, fmt.Errorf("tenant creation failed: %w", err)
	}
	record(StepCreateTenant, OutcomeSucceeded, "")
	res.TenantID = tenant.ID
	res.UserID = ownerID
	res.RealUserCreated = realUser

	// Step 4: dependent records, best-effort. The tenant-user association
	// only makes sense for a real account.
	dependentsOutcome := OutcomeSucceeded
	var dependentsMsg []string
	if realUser {
		if err := w.tenants.AttachUser(tenant.ID, ownerID, model.RoleOwner); err != nil {
			w.log.Warn("tenant-user association failed", zap.Error(err))
			dependentsOutcome = OutcomeFailed
			dependentsMsg = append(dependentsMsg, "tenant-user association: "+err.Error())
		}
	} else {
		dependentsMsg = append(dependentsMsg, "tenant-user association skipped (demo mode)")
	}
	if err := w.customizations.CreateDefault(tenant.ID); err != nil {
		w.log.Warn("default customization creation failed", zap.Error(err))
		dependentsOutcome = OutcomeFailed
		dependentsMsg = append(dependentsMsg, "store customization: "+err.Error())
	}
	record(StepCreateDependents, dependentsOutcome, strings.Join(dependentsMsg, "; "))

	// Step 5: register the local credential. Always attempted; this is the
	// guarantee that the new admin can sign in immediately.
	entry := credstore.Entry{
		Email:    email,
		Password: req.AdminPassword,
		Profile: credstore.Profile{
			UserID:     ownerID,
			Name:       req.AdminName,
			TenantID:   tenant.ID,
			TenantSlug: tenant.Slug,
			TenantName: tenant.Name,
			IsAdmin:    true,
		},
	}
	if err := w.credentials.Upsert(entry); err != nil {
		w.log.Error("local credential registration failed", zap.Error(err))
		record(StepRegisterCredential, OutcomeFailed, err.Error())
	} else {
		record(StepRegisterCredential, OutcomeSucceeded, "")
	}

	// Step 6: report
	res.Success = true
	res.RegistrationURL = fmt.Sprintf("%s?email=%s&password=%s",
		w.signinPath, url.QueryEscape(email), url.QueryEscape(req.AdminPassword))
	if realUser {
		res.Message = fmt.Sprintf("Store %q created with a confirmed admin account", tenant.Name)
	} else {
		res.Message = fmt.Sprintf("Store %q created in demo mode; sign in with the local credential", tenant.Name)
	}

	w.log.Info("tenant provisioned",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", tenant.Slug),
		zap.Bool("real_user_created", realUser))

	return res, nil
}

func (w *Workflow) validate(req Request) error {
	if strings.TrimSpace(req.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if slug == "" {
		return &ValidationError{Field: "slug", Message: "slug is required"}
	}
	if !slugPattern.MatchString(slug) {
		return &ValidationError{Field: "slug", Message: "slug must contain only lowercase letters, digits and hyphens"}
	}
	if strings.TrimSpace(req.AdminEmail) == "" {
		return &ValidationError{Field: "admin_email", Message: "admin email is required"}
	}
	if len(req.AdminPassword) < MinPasswordLength {
		return &ValidationError{Field: "admin_password", Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}

	exists, err := w.tenants.SlugExists(slug)
	if err != nil {
		return fmt.Errorf("slug availability check failed: %w", err)
	}
	if exists {
		return &ValidationError{Field: "slug", Message: fmt.Sprintf("slug %q is already in use", slug)}
	}
	return nil
}

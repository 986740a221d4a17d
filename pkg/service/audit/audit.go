package audit

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/grclab/riskflow/pkg/domain/interfaces"
	"github.com/grclab/riskflow/pkg/domain/model"
	"github.com/grclab/riskflow/pkg/domain/types"
)

// Recorder appends audit entries for workflow mutations. Writes are invoked
// fire-and-forget from the use case layer; a failed audit write never rolls
// back the mutation that produced it.
type Recorder struct {
	repo interfaces.Repository
}

// New creates an audit recorder backed by the repository
func New(repo interfaces.Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record appends one audit entry
func (r *Recorder) Record(ctx context.Context, entry *model.AuditEntry) error {
	if entry.OrgID == "" {
		return goerr.New("audit entry requires an organization")
	}
	if err := r.repo.Audit().Add(ctx, entry); err != nil {
		return goerr.Wrap(err, "failed to append audit entry",
			goerr.V("action", entry.Action),
			goerr.V("entity", entry.EntityID))
	}
	return nil
}

// List returns the audit trail of an organization, newest first
func (r *Recorder) List(ctx context.Context, orgID types.OrgID) ([]*model.AuditEntry, error) {
	entries, err := r.repo.Audit().ListByOrg(ctx, orgID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list audit entries", goerr.V("org", orgID))
	}
	return entries, nil
}

package service

import (
	"context"

	"kycreview/internal/submission/models"
	"kycreview/pkg/platform/audit"
	"kycreview/pkg/requestcontext"
)

// changeEntries describes a write as one status entry plus one entry per
// mutated field. A nil before is a creation: every non-empty form value
// is logged as set.
func changeEntries(ctx context.Context, actor requestcontext.ActorInfo, action audit.Action, before, after *models.Submission, comment string) []audit.Entry {
	base := audit.NewEntry(ctx, after.ID, action, actor)

	if before == nil {
		status := base
		status.Field = "status"
		status.NewValue = string(after.Status)
		entries := []audit.Entry{status}
		for _, f := range after.Form.Fields() {
			if f.Value != "" {
				entries = append(entries, base.FieldChange(f.Name, "", f.Value))
			}
		}
		return entries
	}

	var entries []audit.Entry
	if before.Status != after.Status || action != audit.ActionStatusChanged {
		status := base
		status.Field = "status"
		status.OldValue = string(before.Status)
		status.NewValue = string(after.Status)
		status.Comment = comment
		entries = append(entries, status)
	}
	for _, c := range models.DiffForms(before.Form, after.Form) {
		entries = append(entries, base.FieldChange(c.Field, c.OldValue, c.NewValue))
	}
	for _, c := range models.ReviewChanges(before, after) {
		entries = append(entries, base.FieldChange(c.Field, c.OldValue, c.NewValue))
	}
	return entries
}

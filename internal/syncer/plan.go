package syncer

import (
	"sort"

	"github.com/virtualxperience/n8nsync/internal/record"
)

// Plan partitions the local records of one kind against a fresh snapshot of
// the remote catalog: ids unknown remotely are created, known ids are
// updated. A plan is ephemeral; it lives for one invocation and is exactly
// what the dry-run report prints.
type Plan struct {
	Kind     record.Kind
	ToCreate []record.Record
	ToUpdate []record.Record
}

// BuildPlan classifies local records against the remote summaries. Records
// without an id (the remote will assign one) always go to ToCreate. Both
// partitions are sorted ascending by id, so processing order and reports are
// reproducible. The dry-run and real import share this single code path.
func BuildPlan(kind record.Kind, local []record.Record, remote []record.Summary) Plan {
	remoteIDs := make(map[string]bool, len(remote))
	for _, s := range remote {
		remoteIDs[s.ID] = true
	}

	plan := Plan{Kind: kind}
	for _, rec := range local {
		if rec.ID != "" && remoteIDs[rec.ID] {
			plan.ToUpdate = append(plan.ToUpdate, rec)
		} else {
			plan.ToCreate = append(plan.ToCreate, rec)
		}
	}

	sortRecords(plan.ToCreate)
	sortRecords(plan.ToUpdate)
	return plan
}

// Size is the number of records the plan would import.
func (p Plan) Size() int {
	return len(p.ToCreate) + len(p.ToUpdate)
}

// Labels returns a human-readable identifier per planned record: the id
// when present, otherwise the source file the record came from.
func Labels(records []record.Record) []string {
	labels := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.ID != "" {
			labels = append(labels, rec.ID)
		} else {
			labels = append(labels, rec.Source)
		}
	}
	return labels
}

func sortRecords(records []record.Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].ID != records[j].ID {
			return records[i].ID < records[j].ID
		}
		return records[i].Source < records[j].Source
	})
}

package versioning

import (
	"time"

	"github.com/fyrsmithlabs/acrd/internal/acr"
)

// Change is one changelog entry: a field that differs between the previous
// snapshot and this one. Absent fields diff as nil, never as a fault.
type Change struct {
	Field    string `json:"field"`
	Previous any    `json:"previous_value"`
	New      any    `json:"new_value"`
	Reason   string `json:"reason,omitempty"`
}

// Version is one immutable history record. The snapshot is fully
// self-contained: restoring it requires no other version.
type Version struct {
	ID        string       `json:"id"`
	AcrID     string       `json:"acr_id"`
	Version   int          `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	CreatedBy string       `json:"created_by"`
	ChangeLog []Change     `json:"change_log"`
	Snapshot  acr.Document `json:"snapshot"`
}

// Summary condenses a comparison between two versions.
type Summary struct {
	FieldsChanged   int  `json:"fields_changed"`
	CriteriaTouched int  `json:"criteria_touched"`
	StatusChanged   bool `json:"status_changed"`
}

// Comparison is the diff between two stored versions, not necessarily
// adjacent ones.
type Comparison struct {
	AcrID    string   `json:"acr_id"`
	VersionA int      `json:"version_a"`
	VersionB int      `json:"version_b"`
	Changes  []Change `json:"changes"`
	Summary  Summary  `json:"summary"`
}

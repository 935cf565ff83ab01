package prepare

import "fmt"

// CleaningOp records one lossy local recovery applied to the raw data:
// a dropped incomplete row or a free-text field defaulted after failing
// to parse. The ops are the audit trail required for the drop policy.
type CleaningOp struct {
	Table    string `json:"table"`
	RowID    string `json:"row_id"`
	Column   string `json:"column,omitempty"`
	Original string `json:"original,omitempty"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
}

// Audit accumulates cleaning operations during a pipeline run.
type Audit struct {
	Ops      []CleaningOp
	Dropped  int // incomplete observation rows discarded
	Excluded int // observation rows removed by the exclusion list
}

func (a *Audit) drop(table, rowID, reason string) {
	a.Dropped++
	a.Ops = append(a.Ops, CleaningOp{
		Table: table, RowID: rowID, Action: "drop_row", Reason: reason,
	})
}

func (a *Audit) exclude(table, rowID string) {
	a.Excluded++
	a.Ops = append(a.Ops, CleaningOp{
		Table: table, RowID: rowID, Action: "exclude_row", Reason: "participant on exclusion list",
	})
}

func (a *Audit) defaulted(table, rowID, column, original, reason string) {
	a.Ops = append(a.Ops, CleaningOp{
		Table: table, RowID: rowID, Column: column,
		Original: original, Action: "default_value", Reason: reason,
	})
}

// Defaulted counts the fields that fell back to a default value.
func (a *Audit) Defaulted() int {
	n := 0
	for _, op := range a.Ops {
		if op.Action == "default_value" {
			n++
		}
	}
	return n
}

// Summary renders the audit counters for logging.
func (a *Audit) Summary() string {
	return fmt.Sprintf("dropped=%d excluded=%d defaulted=%d", a.Dropped, a.Excluded, a.Defaulted())
}

package models

// LedgerRow is the editable per-student projection of academic marks,
// grouped by (student name, class) rather than by roster id. It is a
// rebuildable view; the AcademicRecord collection stays the source of
// truth whenever discrete records exist.
type LedgerRow struct {
	ID          string      `json:"id"`
	StudentName string      `json:"studentName"`
	Class       string      `json:"class"`
	Assignments map[int]int `json:"assignments"`
	TermTests   map[int]int `json:"termTests"`
	IsNew       bool        `json:"isNew,omitempty"`
}

// Clone returns a deep copy of the row.
func (r LedgerRow) Clone() LedgerRow {
	out := r
	out.Assignments = make(map[int]int, len(r.Assignments))
	for k, v := range r.Assignments {
		out.Assignments[k] = v
	}
	out.TermTests = make(map[int]int, len(r.TermTests))
	for k, v := range r.TermTests {
		out.TermTests[k] = v
	}
	return out
}

// LedgerFieldKind partitions the editable fields of a ledger row.
type LedgerFieldKind string

const (
	LedgerFieldName       LedgerFieldKind = "studentName"
	LedgerFieldClass      LedgerFieldKind = "class"
	LedgerFieldAssignment LedgerFieldKind = "assignment"
	LedgerFieldTermTest   LedgerFieldKind = "termTest"
)

// LedgerField addresses one editable cell within a row. Slot is the
// 1-based ordinal for assignment (1-5) and term test (1-3) fields and is
// zero for the name and class fields.
type LedgerField struct {
	Kind LedgerFieldKind `json:"kind"`
	Slot int             `json:"slot,omitempty"`
}

// MaxMarks returns the ceiling for a mark-bearing field, 0 for text fields.
func (f LedgerField) MaxMarks() int {
	switch f.Kind {
	case LedgerFieldAssignment:
		return MaxAssignmentMarks
	case LedgerFieldTermTest:
		return MaxTermTestMarks
	default:
		return 0
	}
}

// Valid reports whether the field addresses an editable cell.
func (f LedgerField) Valid() bool {
	switch f.Kind {
	case LedgerFieldName, LedgerFieldClass:
		return f.Slot == 0
	case LedgerFieldAssignment:
		return f.Slot >= 1 && f.Slot <= AssignmentSlots
	case LedgerFieldTermTest:
		return f.Slot >= 1 && f.Slot <= TermTestSlots
	default:
		return false
	}
}

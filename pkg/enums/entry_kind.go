package enums

import "fmt"

// EntryKind tags a balance entry as a credit or a debit.
type EntryKind string

const (
	EntryKindCredit EntryKind = "credit"
	EntryKindDebit  EntryKind = "debit"
)

// IsValid reports whether the value matches the canonical entry kind enum.
func (k EntryKind) IsValid() bool {
	return k == EntryKindCredit || k == EntryKindDebit
}

// ParseEntryKind converts raw input into EntryKind.
func ParseEntryKind(value string) (EntryKind, error) {
	switch EntryKind(value) {
	case EntryKindCredit:
		return EntryKindCredit, nil
	case EntryKindDebit:
		return EntryKindDebit, nil
	}
	return "", fmt.Errorf("invalid entry kind %q", value)
}

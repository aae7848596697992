package models

import (
	"database/sql/driver"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// TrashType enum. The zero value is not a valid trash type.
type TrashType uint8

const (
	Plastic TrashType = iota + 1
	Paper
	Metal
	Organic
	Electronic
	Mixed
	LargeItem
	UnknownTrash
)

var trashTypeNames = map[TrashType]string{
	Plastic:      "Plastic",
	Paper:        "Paper",
	Metal:        "Metal",
	Organic:      "Organic",
	Electronic:   "Electronic",
	Mixed:        "Mixed",
	LargeItem:    "Large Item",
	UnknownTrash: "Unknown",
}

// TrashTypes lists every trash type in display order.
var TrashTypes = []TrashType{Plastic, Paper, Metal, Organic, Electronic, Mixed, LargeItem, UnknownTrash}

// ParseTrashType maps a display name onto its TrashType.
func ParseTrashType(s string) (TrashType, error) {
	for t, name := range trashTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("invalid trash type %q", s)
}

func (t TrashType) Valid() bool {
	_, ok := trashTypeNames[t]
	return ok
}

func (t TrashType) String() string {
	if name, ok := trashTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TrashType(%d)", uint8(t))
}

func (t TrashType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid trash type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *TrashType) UnmarshalText(b []byte) error {
	v, err := ParseTrashType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t TrashType) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !t.Valid() {
		return 0, nil, fmt.Errorf("invalid trash type %d", uint8(t))
	}
	return bson.MarshalValue(t.String())
}

func (t *TrashType) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	s, ok := bson.RawValue{Type: bt, Value: data}.StringValueOK()
	if !ok {
		return fmt.Errorf("trash type: expected string, got %s", bt)
	}
	return t.UnmarshalText([]byte(s))
}

// Value implements driver.Valuer.
func (t TrashType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid trash type %d", uint8(t))
	}
	return t.String(), nil
}

// Scan implements sql.Scanner.
func (t *TrashType) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return t.UnmarshalText([]byte(v))
	case []byte:
		return t.UnmarshalText(v)
	default:
		return fmt.Errorf("trash type: cannot scan %T", src)
	}
}

// Severity enum. The zero value is not a valid severity.
type Severity uint8

const (
	Low Severity = iota + 1
	Medium
	High
	Critical
)

var severityNames = map[Severity]string{
	Low:      "Low",
	Medium:   "Medium",
	High:     "High",
	Critical: "Critical",
}

// Severities lists every severity from least to most severe.
var Severities = []Severity{Low, Medium, High, Critical}

// ParseSeverity maps a display name onto its Severity.
func ParseSeverity(s string) (Severity, error) {
	for sev, name := range severityNames {
		if name == s {
			return sev, nil
		}
	}
	return 0, fmt.Errorf("invalid severity %q", s)
}

func (s Severity) Valid() bool {
	_, ok := severityNames[s]
	return ok
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", uint8(s))
}

func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid severity %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Severity) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !s.Valid() {
		return 0, nil, fmt.Errorf("invalid severity %d", uint8(s))
	}
	return bson.MarshalValue(s.String())
}

func (s *Severity) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	str, ok := bson.RawValue{Type: bt, Value: data}.StringValueOK()
	if !ok {
		return fmt.Errorf("severity: expected string, got %s", bt)
	}
	return s.UnmarshalText([]byte(str))
}

// Value implements driver.Valuer.
func (s Severity) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid severity %d", uint8(s))
	}
	return s.String(), nil
}

// Scan implements sql.Scanner.
func (s *Severity) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	default:
		return fmt.Errorf("severity: cannot scan %T", src)
	}
}

// AtLeastHigh reports whether the severity is High or Critical.
func (s Severity) AtLeastHigh() bool {
	return s == High || s == Critical
}

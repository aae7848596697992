package models

// Analysis is the structured result returned by the classification service
type Analysis struct {
	IsGarbage             bool      `json:"isGarbage"`
	TrashType             TrashType `json:"trashType"`
	Severity              Severity  `json:"severity"`
	Description           string    `json:"description"`
	SuggestedLocationType string    `json:"suggestedLocationType"`
}

// Usable reports whether the analysis can back a stored report.
func (a Analysis) Usable() bool {
	return a.IsGarbage && a.TrashType.Valid() && a.Severity.Valid()
}

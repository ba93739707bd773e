package domain

// Auto-tag rule constants.
const (
	AutoTagRuleTypeSelector     = "SELECTOR"
	AutoTagValueNormalization   = "Leave text as-is"
	AutoTagNamePrefix           = "Maintenance — "
	AutoTagValueTimestampLayout = "2006-01-02 15:04:05"
)

// AutoTagRule is one rule of an auto-tagging settings object.
type AutoTagRule struct {
	Type               string `json:"type"`
	Enabled            bool   `json:"enabled"`
	EntitySelector     string `json:"entitySelector"`
	ValueFormat        string `json:"valueFormat"`
	ValueNormalization string `json:"valueNormalization"`
}

// AutoTagValue is the settings value of an auto-tagging object.
type AutoTagValue struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Rules       []AutoTagRule `json:"rules"`
}

// CleanupReport summarizes one expired auto-tag cleanup pass.
type CleanupReport struct {
	Scanned    int      `json:"scanned"`
	Expired    []string `json:"expired"`
	Deleted    []string `json:"deleted"`
	Failed     []string `json:"failed,omitempty"`
	ScanFailed bool     `json:"scanFailed,omitempty"`
}

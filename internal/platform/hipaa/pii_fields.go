package hipaa

// DefaultPIIFields is the allow-list of JSON keys the Boundary encrypts.
// Matching is exact and case-sensitive.
func DefaultPIIFields() []string {
	return []string{
		"name",
		"first_name",
		"last_name",
		"cnp",
		"email",
		"phone",
		"address",
		"allergies",
		"medications",
		"representative_name",
	}
}

// PIIFieldSet returns DefaultPIIFields as a set for fast look-up.
func PIIFieldSet() map[string]bool {
	fields := DefaultPIIFields()
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

package autosign

type Completion struct {
	FilledCount       int      `json:"filledCount"`
	TotalCount        int      `json:"totalCount"`
	RequiredSatisfied bool     `json:"requiredSatisfied"`
	MissingRequired   []string `json:"missingRequired,omitempty"`
}

// ComputeCompletion counts over the fields a session can see. Pass only
// visible fields; values for other fields are ignored.
func ComputeCompletion(visible []Field, values Values) Completion {
	c := Completion{TotalCount: len(visible)}

	for _, f := range visible {
		if values.Filled(f) {
			c.FilledCount++
			continue
		}
		if f.Required {
			c.MissingRequired = append(c.MissingRequired, f.ID)
		}
	}
	c.RequiredSatisfied = len(c.MissingRequired) == 0

	return c
}

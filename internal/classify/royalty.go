package classify

import "fmt"

type royaltyBand struct {
	min       int64
	text      string
	corrected string
}

// Bands in descending order. text is the historical wording, typos
// included; corrected drops the stray zeros.
var royaltyBands = []royaltyBand{
	{30000, "$30,000 - $85,000", "$30,000 - $85,000"},
	{25000, "$25,000 - $75,0000", "$25,000 - $75,000"},
	{20000, "$20,000 - $65,000+", "$20,000 - $65,000+"},
	{15000, "$15,000 - $50,0000+", "$15,000 - $50,000+"},
	{10000, "$10,000 to $30,000+", "$10,000 - $30,000+"},
	{5000, "$5000 - $10000+", "$5,000 - $10,000+"},
	{2500, "$2500 - $5000+", "$2,500 - $5,000+"},
	{1000, "$1000+", "$1,000+"},
}

// NotApplicable is the estimate for songs under 1000 comments
const NotApplicable = "N/A"

// EstimateRoyalty maps a comment count to a royalty range. From 35000
// comments the range is computed: the minimum is the count itself and the
// maximum grows by $10,000 per 5000 comments above 20000, on top of $65,000.
// Below that a fixed band applies.
func EstimateRoyalty(comments int64, corrected bool) string {
	if comments < 1000 {
		return NotApplicable
	}

	if comments >= 35000 {
		level := (comments / 5000) * 5000
		steps := (level - 20000) / 5000
		maxEstimate := steps*10000 + 65000
		return fmt.Sprintf("$%d - $%d", comments, maxEstimate)
	}

	for _, b := range royaltyBands {
		if comments >= b.min {
			if corrected {
				return b.corrected
			}
			return b.text
		}
	}
	return NotApplicable
}

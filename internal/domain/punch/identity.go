package punch

import "strings"

// CanonicalEmployeeID canonicalizes an identifier: trim, strip all internal
// whitespace, uppercase, then apply the known scanner-misread corrections.
// Every place an ID is compared, grouped, or looked up must go through this,
// ingestion and query side alike, so two spellings of the same badge never
// split one employee into two.
func CanonicalEmployeeID(raw string, corrections map[string]string) string {
	id := strings.Join(strings.Fields(raw), "")
	id = strings.ToUpper(id)
	for from, to := range corrections {
		if strings.HasPrefix(id, from) {
			id = to + id[len(from):]
			break
		}
	}
	return id
}

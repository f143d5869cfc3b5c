package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Tables that allocate sequential ids, with their id column and prefix.
// Ids look like agent_001; the numeric part is max+1 over existing
// rows, zero-padded to three digits until it overflows.
var idTables = map[string]struct {
	Column string
	Prefix string
}{
	"agents":             {"agent_id", "agent"},
	"isv_details":        {"isv_id", "isv"},
	"reseller_details":   {"reseller_id", "reseller"},
	"client_details":     {"client_id", "client"},
	"auth":               {"auth_id", "auth"},
	"enquiries":          {"enquiry_id", "enquiry"},
	"agent_requirements": {"requirement_id", "req"},
	"demo_assets":        {"demo_asset_id", "asset"},
}

// IDColumn returns the id column for table, or "" when the table does
// not allocate ids.
func IDColumn(table string) string {
	return idTables[table].Column
}

// NextSequentialID computes the next id for table given the ids already
// in use. Malformed ids are ignored.
func NextSequentialID(table string, existing []string) (string, error) {
	t, ok := idTables[table]
	if !ok {
		return "", fmt.Errorf("store: table %q has no id sequence", table)
	}
	max := 0
	for _, id := range existing {
		rest, ok := strings.CutPrefix(id, t.Prefix+"_")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n <= max {
			continue
		}
		max = n
	}
	return fmt.Sprintf("%s_%03d", t.Prefix, max+1), nil
}

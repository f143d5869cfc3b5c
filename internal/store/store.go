// Package store defines the persistence interface for the marketplace
// tables plus the row codec and id sequences shared by the CSV and
// PostgreSQL backends.
package store

import (
	"errors"
	"time"
)

// ErrInvalidCredentials is returned by Authenticate for a bad email,
// password, or inactive account. Callers must not distinguish which.
var ErrInvalidCredentials = errors.New("store: invalid credentials")

// TimeFormat is the layout stamped into created_at/updated_at cells.
const TimeFormat = time.RFC3339

// Now returns the current UTC timestamp in the store layout.
func Now() string {
	return time.Now().UTC().Format(TimeFormat)
}

// Tables lists every marketplace table in a stable order.
var Tables = []string{
	"agents",
	"capabilities_mapping",
	"deployments",
	"demo_assets",
	"docs",
	"isv_details",
	"reseller_details",
	"client_details",
	"auth",
	"enquiries",
	"agent_requirements",
	"chat_history",
}

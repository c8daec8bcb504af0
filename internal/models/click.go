package models

import "time"

// ReferrerDirect is stored when a click arrives without a Referer header.
const ReferrerDirect = "direct"

// Click represents a click event on a shortened URL stored in the database.
// Clicks are keyed by the short code string itself, not by a foreign key:
// the click ledger is append-only and never validates a code against the
// links table.
type Click struct {
	// ID is the primary key with auto-increment functionality.
	// Insertion order (and therefore "most recent N") follows this ID.
	ID uint `gorm:"primaryKey"`

	// ShortCode identifies which shortened link was clicked.
	// - index: efficient per-code counting and recent-clicks queries.
	ShortCode string `gorm:"index;size:16;not null"`

	// Timestamp records the exact moment when the click occurred.
	// Indexed for the today/weekly aggregation windows.
	Timestamp time.Time `gorm:"index"`

	// UserAgent stores the browser/client information from the HTTP request.
	UserAgent string `gorm:"size:255"`

	// IPAddress is the client key of the visitor (IPv4 or IPv6).
	IPAddress string `gorm:"size:50"`

	// Referrer is the Referer header of the request, or ReferrerDirect when
	// the header was absent.
	Referrer string `gorm:"size:255"`
}

// ClickEvent represents a raw click event intended to be passed through channels.
// This lightweight struct is used for asynchronous processing between goroutines.
// It contains only the essential data needed to create a Click record later.
type ClickEvent struct {
	ShortCode string    // The code of the link that was clicked
	Timestamp time.Time // When the click occurred
	UserAgent string    // Browser/client information
	IPAddress string    // Visitor's IP address
	Referrer  string    // Referer header, or "direct"
}

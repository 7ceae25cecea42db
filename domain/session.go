package domain

// SessionMeta carries the identity context of one visitor session, attached
// to every event the capture layer emits. Every field except SessionID is
// optional: an unidentified visitor degrades to anonymous-only tracking.
type SessionMeta struct {
	SessionID          string
	CustomerID         *uint64
	Email              string
	IPHash             string
	BrowserFingerprint string
	UserAgent          string
	GeoCountry         string
	GeoCity            string
}

package domain

import "time"

// CREATE TABLE public.device_records (
//     id                  BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     email               TEXT NOT NULL,
//     ip_hash             TEXT NOT NULL,
//     browser_fingerprint TEXT NOT NULL DEFAULT '',
//     customer_id         BIGINT,
//     first_seen          TIMESTAMPTZ,
//     last_seen           TIMESTAMPTZ,
//     visit_count         INT DEFAULT 1,
//     user_agent          TEXT,
//     geo_country         TEXT,
//     geo_city            TEXT,
//     UNIQUE (email, ip_hash, browser_fingerprint)
// );

type DeviceRecord struct {
	ID                 uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email              string     `gorm:"column:email;not null;uniqueIndex:idx_device_identity" json:"email"`
	IPHash             string     `gorm:"column:ip_hash;not null;uniqueIndex:idx_device_identity" json:"ip_hash"`
	BrowserFingerprint string     `gorm:"column:browser_fingerprint;not null;default:'';uniqueIndex:idx_device_identity" json:"browser_fingerprint"`
	CustomerID         *uint64    `gorm:"column:customer_id" json:"customer_id"`
	FirstSeen          time.Time  `gorm:"column:first_seen" json:"first_seen"`
	LastSeen           time.Time  `gorm:"column:last_seen" json:"last_seen"`
	VisitCount         int        `gorm:"column:visit_count;default:1" json:"visit_count"`
	UserAgent          string     `gorm:"column:user_agent;type:text" json:"user_agent"`
	GeoCountry         string     `gorm:"column:geo_country" json:"geo_country"`
	GeoCity            string     `gorm:"column:geo_city" json:"geo_city"`
}

func (DeviceRecord) TableName() string {
	return "device_records"
}

// DeviceIdentity is the upsert key plus the mutable attributes observed on a visit.
type DeviceIdentity struct {
	Email              string
	IPHash             string
	BrowserFingerprint string
	CustomerID         *uint64
	UserAgent          string
	GeoCountry         string
	GeoCity            string
}

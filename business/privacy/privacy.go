package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"wasgeurtjeInsights/domain"
)

// HashField lower-cases and trims a value, then applies SHA-256, returning
// a hex string. Empty (or whitespace-only) input returns "" so blank
// placeholders are never hashed. Normalization must stay byte-for-byte in
// line with what the ad platforms hash on their side, otherwise one
// physical customer fragments into multiple unmatched identities and
// conversions silently under-count.
func HashField(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return ""
	}

	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// NormalizePhone strips whitespace and punctuation and converts a leading
// international prefix to the local leading-zero form ("+31..." and
// "0031..." both become "0..."). Best-effort: malformed input comes back
// as whatever could be salvaged, never an error, since this feeds ad
// matching rather than billing.
func NormalizePhone(raw, countryPrefix string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && b.Len() == 0 {
			b.WriteRune(r)
		}
	}
	phone := b.String()
	if phone == "" {
		return ""
	}

	if countryPrefix != "" {
		if strings.HasPrefix(phone, "+"+countryPrefix) {
			return "0" + phone[len(countryPrefix)+1:]
		}
		if strings.HasPrefix(phone, "00"+countryPrefix) {
			return "0" + phone[len(countryPrefix)+2:]
		}
	}

	phone = strings.TrimPrefix(phone, "+")

	return phone
}

// HashTraits applies the privacy transform to every identity field that is
// present. Phone numbers are canonicalized first so the same subscriber
// hashes identically regardless of how the number was typed.
func HashTraits(traits domain.UserTraits, countryPrefix string) domain.HashedTraits {
	return domain.HashedTraits{
		Email:      HashField(traits.Email),
		Phone:      HashField(NormalizePhone(traits.Phone, countryPrefix)),
		FirstName:  HashField(traits.FirstName),
		LastName:   HashField(traits.LastName),
		City:       HashField(traits.City),
		Country:    HashField(traits.Country),
		PostalCode: HashField(traits.PostalCode),
	}
}

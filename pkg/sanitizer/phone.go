package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var (
	supportedRegions = []string{
		"US",
		"GB",
	}
)

// NormalizePhone parses the input against the supported regions and returns
// it in E.164. Numbers that already carry a country code parse the same
// under any region. Input that is not a valid number for any supported
// region normalizes to empty.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	for _, region := range supportedRegions {
		parsedNumber, err := phonenumbers.Parse(phone, region)
		if err != nil {
			continue
		}
		if phonenumbers.IsValidNumber(parsedNumber) {
			return phonenumbers.Format(parsedNumber, phonenumbers.E164)
		}
	}
	return ""
}

func IsValidE164(phone string) bool {
	// An empty region forces the country code to come from the number itself.
	parsedNumber, err := phonenumbers.Parse(phone, "")
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(parsedNumber)
}

// Package webhooks ingests Clerk identity events and mirrors them into the
// Users collection. The webhook endpoint is the only writer for the
// identity fields; profile edits go through the users API.
package webhooks

// Clerk event types this service handles. Anything else is acknowledged
// and skipped so Clerk does not retry forever.
const (
	EventUserCreated    = "user.created"
	EventUserUpdated    = "user.updated"
	EventUserDeleted    = "user.deleted"
	EventSessionCreated = "session.created"
)

// ClerkEvent is the envelope Clerk posts: a type discriminator and the
// user object snapshot.
type ClerkEvent struct {
	Type string    `json:"type"`
	Data ClerkUser `json:"data"`
}

// ClerkUser covers both user.* payloads (a user snapshot) and
// session.created payloads, where only UserID is set.
type ClerkUser struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Username       string          `json:"username"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	ImageURL       string          `json:"image_url"`
	Deleted        bool            `json:"deleted"`
	EmailAddresses []ClerkEmail    `json:"email_addresses"`
	PrimaryEmailID string          `json:"primary_email_address_id"`
	PhoneNumbers   []ClerkPhone    `json:"phone_numbers"`
	PublicMetadata ClerkPublicMeta `json:"public_metadata"`
}

type ClerkEmail struct {
	ID           string            `json:"id"`
	EmailAddress string            `json:"email_address"`
	Verification ClerkVerification `json:"verification"`
}

type ClerkPhone struct {
	PhoneNumber string `json:"phone_number"`
}

type ClerkVerification struct {
	Status string `json:"status"`
}

type ClerkPublicMeta struct {
	Role string `json:"role"`
}

// PrimaryEmail resolves the primary address, falling back to the first one
// when the primary pointer is stale.
func (u *ClerkUser) PrimaryEmail() (address string, verified bool) {
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailID {
			return e.EmailAddress, e.Verification.Status == "verified"
		}
	}
	if len(u.EmailAddresses) > 0 {
		first := u.EmailAddresses[0]
		return first.EmailAddress, first.Verification.Status == "verified"
	}
	return "", false
}

func (u *ClerkUser) Phone() string {
	if len(u.PhoneNumbers) > 0 {
		return u.PhoneNumbers[0].PhoneNumber
	}
	return ""
}

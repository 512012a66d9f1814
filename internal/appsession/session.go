package appsession

import "time"

// SourceOfTrust records which proof type backed a session. Fixed at creation.
type SourceOfTrust string

const (
	SourceHashedGuid SourceOfTrust = "HASHED_GUID"
	SourceTeleTan    SourceOfTrust = "TELETAN"
)

// Session is the persisted record binding a registration token to the proof
// that produced it. Only digests are stored; exactly one of HashedGuid /
// TeleTanHash is set, matching SourceOfTrust.
type Session struct {
	ID                    string        `bson:"_id,omitempty" json:"id"`
	RegistrationTokenHash string        `bson:"registrationTokenHash" json:"registrationTokenHash"`
	HashedGuid            string        `bson:"hashedGuid,omitempty" json:"hashedGuid,omitempty"`
	TeleTanHash           string        `bson:"teleTanHash,omitempty" json:"teleTanHash,omitempty"`
	SourceOfTrust         SourceOfTrust `bson:"sourceOfTrust" json:"sourceOfTrust"`
	TanCounter            int           `bson:"tanCounter" json:"tanCounter"`
	CreatedAt             time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time     `bson:"updatedAt" json:"updatedAt"`
}

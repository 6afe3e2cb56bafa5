package domain

import (
	"time"
)

// ClubRole is a member's role within a club.
type ClubRole string

const (
	ClubRoleOwner     ClubRole = "owner"
	ClubRoleAdmin     ClubRole = "admin"
	ClubRoleModerator ClubRole = "moderator"
	ClubRoleMember    ClubRole = "member"
)

func (r ClubRole) Valid() bool {
	switch r {
	case ClubRoleOwner, ClubRoleAdmin, ClubRoleModerator, ClubRoleMember:
		return true
	}
	return false
}

// IsAdmin reports whether the role may manage members and club settings.
func (r ClubRole) IsAdmin() bool {
	return r == ClubRoleOwner || r == ClubRoleAdmin
}

// CanModerate reports whether the role may moderate content (pin, delete
// other members' posts and messages, manage events).
func (r ClubRole) CanModerate() bool {
	return r.IsAdmin() || r == ClubRoleModerator
}

// MemberStatus is the state of a club membership.
type MemberStatus string

const (
	MemberActive  MemberStatus = "active"
	MemberPending MemberStatus = "pending"
	MemberBanned  MemberStatus = "banned"
)

// MembershipType decides whether joining needs a subscription.
type MembershipType string

const (
	MembershipFree    MembershipType = "free"
	MembershipPremium MembershipType = "premium"
)

type Club struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	ClubType       string         `json:"clubType"`
	CreatorID      string         `json:"creatorId"`
	MembershipType MembershipType `json:"membershipType"`
	PremiumPrice   float64        `json:"premiumPrice"`
	BannerURL      string         `json:"bannerUrl,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

type NewClub struct {
	Name           string         `json:"name" validate:"required,min=2,max=120"`
	Description    string         `json:"description" validate:"max=4000"`
	ClubType       string         `json:"clubType" validate:"max=60"`
	MembershipType MembershipType `json:"membershipType" validate:"omitempty,oneof=free premium"`
	PremiumPrice   float64        `json:"premiumPrice" validate:"gte=0"`
	BannerURL      string         `json:"bannerUrl" validate:"omitempty,url"`
}

type ClubPatch struct {
	Name           *string         `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Description    *string         `json:"description,omitempty" validate:"omitempty,max=4000"`
	ClubType       *string         `json:"clubType,omitempty"`
	MembershipType *MembershipType `json:"membershipType,omitempty" validate:"omitempty,oneof=free premium"`
	PremiumPrice   *float64        `json:"premiumPrice,omitempty" validate:"omitempty,gte=0"`
	BannerURL      *string         `json:"bannerUrl,omitempty" validate:"omitempty,url"`
}

func (p ClubPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.ClubType == nil &&
		p.MembershipType == nil && p.PremiumPrice == nil && p.BannerURL == nil
}

type ClubMember struct {
	ClubID   string       `json:"clubId"`
	UserID   string       `json:"userId"`
	Role     ClubRole     `json:"role"`
	Status   MemberStatus `json:"status"`
	JoinedAt time.Time    `json:"joinedAt"`
}

type ClubEvent struct {
	ID          string    `json:"id"`
	ClubID      string    `json:"clubId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type NewClubEvent struct {
	Name        string    `json:"name" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=4000"`
	Location    string    `json:"location" validate:"max=200"`
	StartTime   time.Time `json:"startTime" validate:"required"`
	EndTime     time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
}

// RSVPStatus is a member's answer to an event.
type RSVPStatus string

const (
	RSVPGoing    RSVPStatus = "going"
	RSVPMaybe    RSVPStatus = "maybe"
	RSVPNotGoing RSVPStatus = "not_going"
)

type EventParticipant struct {
	EventID   string     `json:"eventId"`
	UserID    string     `json:"userId"`
	Status    RSVPStatus `json:"status"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type ClubPost struct {
	ID          string    `json:"id"`
	ClubID      string    `json:"clubId"`
	UserID      string    `json:"userId"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"contentHtml"`
	WorkoutID   string    `json:"workoutId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ClubMessage struct {
	ID        string    `json:"id"`
	ClubID    string    `json:"clubId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	IsPinned  bool      `json:"isPinned"`
	CreatedAt time.Time `json:"createdAt"`
}

type ClubProduct struct {
	ID          string    `json:"id"`
	ClubID      string    `json:"clubId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ProductType string    `json:"productType"`
	CreatedAt   time.Time `json:"createdAt"`
}

type NewClubProduct struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=4000"`
	Price       float64 `json:"price" validate:"gte=0"`
	ProductType string  `json:"productType" validate:"max=60"`
}

type ClubProductPurchase struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"productId"`
	UserID     string    `json:"userId"`
	AmountPaid float64   `json:"amountPaid"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SubscriptionStatus is the state of a premium club subscription.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

type ClubSubscription struct {
	ID         string             `json:"id"`
	ClubID     string             `json:"clubId"`
	UserID     string             `json:"userId"`
	Status     SubscriptionStatus `json:"status"`
	StartedAt  time.Time          `json:"startedAt"`
	CanceledAt *time.Time         `json:"canceledAt,omitempty"`
}

// ClubShare links a workout or program to a club.
type ClubShare struct {
	ClubID      string      `json:"clubId"`
	ContentType ContentType `json:"contentType"`
	ContentID   string      `json:"contentId"`
	SharedBy    string      `json:"sharedBy"`
	CreatedAt   time.Time   `json:"createdAt"`
}

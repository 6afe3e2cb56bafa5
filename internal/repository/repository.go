package repository

import (
	"context"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrInvalidID    = RepositoryError("invalid id")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Transactor runs fn inside a backend transaction when the backend supports
// one. Repositories called with the ctx handed to fn join the transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Pricing is the publish state shared by programs and workouts.
type Pricing struct {
	Price         float64
	IsPurchasable bool
	Slug          string
}

// ProgramFilter narrows program listings. Zero values do not filter.
type ProgramFilter struct {
	CreatorID       string
	PublicOnly      bool
	SavedOnly       bool
	IncludeWrappers bool
}

// ProgramRepository stores program headers. Weeks, workouts and the rest of
// the tree live in their own repositories.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.WorkoutProgram) (string, error)
	GetByID(ctx context.Context, id string) (*domain.WorkoutProgram, error)
	List(ctx context.Context, filter ProgramFilter) ([]domain.WorkoutProgram, error)
	Update(ctx context.Context, id string, patch domain.ProgramPatch) error
	UpdatePricing(ctx context.Context, id string, pricing Pricing) error
	Delete(ctx context.Context, id string) error
}

type WeekRepository interface {
	Create(ctx context.Context, week *domain.WorkoutWeek) (string, error)
	GetByID(ctx context.Context, id string) (*domain.WorkoutWeek, error)
	// ListByProgram returns weeks sorted by order index, then creation time.
	ListByProgram(ctx context.Context, programID string) ([]domain.WorkoutWeek, error)
	Update(ctx context.Context, id string, patch domain.WeekPatch) error
	DeleteMany(ctx context.Context, ids []string) error
}

type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Workout, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Workout, error)
	ListByProgram(ctx context.Context, programID string) ([]domain.Workout, error)
	Update(ctx context.Context, id string, patch domain.WorkoutPatch) error
	UpdatePricing(ctx context.Context, id string, pricing Pricing) error
	DeleteMany(ctx context.Context, ids []string) error
}

type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Exercise, error)
	ListByWorkouts(ctx context.Context, workoutIDs []string) ([]domain.Exercise, error)
	Update(ctx context.Context, id string, patch domain.ExercisePatch) error
	SetOrder(ctx context.Context, id string, orderIndex int) error
	// ClearGroup detaches every member of the given group header.
	ClearGroup(ctx context.Context, groupID string) error
	DeleteMany(ctx context.Context, ids []string) error
}

type SetRepository interface {
	Create(ctx context.Context, set *domain.Set) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Set, error)
	ListByExercises(ctx context.Context, exerciseIDs []string) ([]domain.Set, error)
	Update(ctx context.Context, id string, patch domain.SetPatch) error
	DeleteMany(ctx context.Context, ids []string) error
}

// CircuitRepository stores circuits and their membership rows. The rows are
// the only record of which exercise belongs to which circuit.
type CircuitRepository interface {
	Create(ctx context.Context, circuit *domain.Circuit) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Circuit, error)
	ListByWorkouts(ctx context.Context, workoutIDs []string) ([]domain.Circuit, error)
	Update(ctx context.Context, id string, patch domain.CircuitPatch) error
	DeleteMany(ctx context.Context, ids []string) error

	// AddMember returns ErrDuplicate when the exercise already belongs to a circuit.
	AddMember(ctx context.Context, workoutID string, m domain.CircuitMembership) error
	ListMembers(ctx context.Context, circuitIDs []string) ([]domain.CircuitMembership, error)
	RemoveMembers(ctx context.Context, exerciseIDs []string) error
	RemoveCircuitMembers(ctx context.Context, circuitIDs []string) error
}

// ProfileRepository defines the interface for interacting with user data.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) (string, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Update(ctx context.Context, id string, patch domain.ProfilePatch) error
}

type PurchaseRepository interface {
	// Create returns ErrDuplicate when the user already bought the content.
	Create(ctx context.Context, purchase *domain.Purchase) (string, error)
	Exists(ctx context.Context, userID string, contentType domain.ContentType, contentID string) (bool, error)
	ListByUser(ctx context.Context, userID string, contentType domain.ContentType) ([]domain.Purchase, error)
}

type WorkoutLogRepository interface {
	Create(ctx context.Context, log *domain.WorkoutLog) (string, error)
	ListByUser(ctx context.Context, userID string) ([]domain.WorkoutLog, error)
}

// --- Clubs ---

type ClubRepository interface {
	// Create stores the club and its owner membership atomically.
	Create(ctx context.Context, club *domain.Club, owner domain.ClubMember) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Club, error)
	List(ctx context.Context) ([]domain.Club, error)
	ListByMember(ctx context.Context, userID string) ([]domain.Club, error)
	Update(ctx context.Context, id string, patch domain.ClubPatch) error
	Delete(ctx context.Context, id string) error

	AddMember(ctx context.Context, member domain.ClubMember) error
	GetMember(ctx context.Context, clubID, userID string) (*domain.ClubMember, error)
	ListMembers(ctx context.Context, clubID string) ([]domain.ClubMember, error)
	UpdateMemberRole(ctx context.Context, clubID, userID string, role domain.ClubRole) error
	UpdateMemberStatus(ctx context.Context, clubID, userID string, status domain.MemberStatus) error
	RemoveMember(ctx context.Context, clubID, userID string) error
}

type ClubEventRepository interface {
	Create(ctx context.Context, event *domain.ClubEvent) (string, error)
	GetByID(ctx context.Context, id string) (*domain.ClubEvent, error)
	// ListByClub returns events sorted by start time.
	ListByClub(ctx context.Context, clubID string) ([]domain.ClubEvent, error)
	Delete(ctx context.Context, id string) error
	UpsertParticipant(ctx context.Context, p domain.EventParticipant) error
	ListParticipants(ctx context.Context, eventID string) ([]domain.EventParticipant, error)
}

type ClubContentRepository interface {
	CreatePost(ctx context.Context, post *domain.ClubPost) (string, error)
	GetPost(ctx context.Context, id string) (*domain.ClubPost, error)
	ListPosts(ctx context.Context, clubID string) ([]domain.ClubPost, error)
	DeletePost(ctx context.Context, id string) error

	CreateMessage(ctx context.Context, msg *domain.ClubMessage) (string, error)
	GetMessage(ctx context.Context, id string) (*domain.ClubMessage, error)
	// ListMessages returns pinned messages first, then newest first.
	ListMessages(ctx context.Context, clubID string) ([]domain.ClubMessage, error)
	SetMessagePinned(ctx context.Context, id string, pinned bool) error
	DeleteMessage(ctx context.Context, id string) error
}

type ClubCommerceRepository interface {
	CreateProduct(ctx context.Context, product *domain.ClubProduct) (string, error)
	GetProduct(ctx context.Context, id string) (*domain.ClubProduct, error)
	ListProducts(ctx context.Context, clubID string) ([]domain.ClubProduct, error)
	// CreatePurchase returns ErrDuplicate when the user already bought the product.
	CreatePurchase(ctx context.Context, purchase *domain.ClubProductPurchase) (string, error)
	HasPurchased(ctx context.Context, productID, userID string) (bool, error)

	UpsertSubscription(ctx context.Context, sub *domain.ClubSubscription) (string, error)
	GetSubscription(ctx context.Context, clubID, userID string) (*domain.ClubSubscription, error)
	CancelSubscription(ctx context.Context, clubID, userID string) error
}

type ClubShareRepository interface {
	// Share returns ErrDuplicate when the content is already shared to the club.
	Share(ctx context.Context, share domain.ClubShare) error
	List(ctx context.Context, clubID string, contentType domain.ContentType) ([]domain.ClubShare, error)
	Unshare(ctx context.Context, clubID string, contentType domain.ContentType, contentID string) error
}

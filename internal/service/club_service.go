package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/notify"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

var (
	ErrClubNotFound         = errors.New("club not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrNotMember            = errors.New("not an active member of this club")
	ErrAlreadyMember        = errors.New("already a member of this club")
	ErrOwnerCannotLeave     = errors.New("the club owner cannot leave the club")
	ErrForbidden            = errors.New("your club role does not allow this")
	ErrAlreadyShared        = errors.New("content is already shared to this club")
	ErrShareNotFound        = errors.New("shared content not found")
)

// ClubRepos bundles the club backend.
type ClubRepos struct {
	Clubs    repository.ClubRepository
	Events   repository.ClubEventRepository
	Content  repository.ClubContentRepository
	Commerce repository.ClubCommerceRepository
	Shares   repository.ClubShareRepository
	Profiles repository.ProfileRepository
}

type ClubService interface {
	CreateClub(ctx context.Context, userID string, req domain.NewClub) (*domain.Club, error)
	GetClub(ctx context.Context, clubID string) (*domain.Club, error)
	ListClubs(ctx context.Context) ([]domain.Club, error)
	ListMyClubs(ctx context.Context, userID string) ([]domain.Club, error)
	UpdateClub(ctx context.Context, userID, clubID string, patch domain.ClubPatch) (*domain.Club, error)
	DeleteClub(ctx context.Context, userID, clubID string) error

	JoinClub(ctx context.Context, userID, clubID string) (*domain.ClubMember, error)
	LeaveClub(ctx context.Context, userID, clubID string) error
	ListMembers(ctx context.Context, clubID string) ([]domain.ClubMember, error)
	UpdateMemberRole(ctx context.Context, userID, clubID, memberID string, role domain.ClubRole) (*domain.ClubMember, error)
	ApproveMember(ctx context.Context, userID, clubID, memberID string) (*domain.ClubMember, error)

	CreateEvent(ctx context.Context, userID, clubID string, req domain.NewClubEvent) (*domain.ClubEvent, error)
	ListEvents(ctx context.Context, clubID string) ([]domain.ClubEvent, error)
	DeleteEvent(ctx context.Context, userID, eventID string) error
	RSVP(ctx context.Context, userID, eventID string, status domain.RSVPStatus) (*domain.EventParticipant, error)
	ListParticipants(ctx context.Context, eventID string) ([]domain.EventParticipant, error)

	CreatePost(ctx context.Context, userID, clubID, content, workoutID string) (*domain.ClubPost, error)
	ListPosts(ctx context.Context, clubID string) ([]domain.ClubPost, error)
	DeletePost(ctx context.Context, userID, postID string) error

	SendMessage(ctx context.Context, userID, clubID, content string) (*domain.ClubMessage, error)
	ListMessages(ctx context.Context, userID, clubID string) ([]domain.ClubMessage, error)
	DeleteMessage(ctx context.Context, userID, messageID string) error
	PinMessage(ctx context.Context, userID, messageID string, pinned bool) (*domain.ClubMessage, error)

	CreateProduct(ctx context.Context, userID, clubID string, req domain.NewClubProduct) (*domain.ClubProduct, error)
	ListProducts(ctx context.Context, clubID string) ([]domain.ClubProduct, error)
	PurchaseProduct(ctx context.Context, userID, productID string) (*domain.ClubProductPurchase, error)
	HasPurchasedProduct(ctx context.Context, userID, productID string) (bool, error)

	Subscribe(ctx context.Context, userID, clubID string) (*domain.ClubSubscription, error)
	CancelSubscription(ctx context.Context, userID, clubID string) error

	ShareWorkout(ctx context.Context, userID, clubID, workoutID string) (*domain.ClubShare, error)
	ShareProgram(ctx context.Context, userID, clubID, programID string) (*domain.ClubShare, error)
	ListShared(ctx context.Context, clubID string, contentType domain.ContentType) ([]domain.ClubShare, error)
	Unshare(ctx context.Context, userID, clubID string, contentType domain.ContentType, contentID string) error
}

type clubService struct {
	repos    ClubRepos
	content  *Content
	sender   notify.Sender
	validate *validator.Validate
	markdown goldmark.Markdown
}

// NewClubService needs content to check what a member may share.
func NewClubService(repos ClubRepos, content *Content, sender notify.Sender) ClubService {
	if sender == nil {
		sender = notify.LogSender{}
	}
	return &clubService{
		repos:    repos,
		content:  content,
		sender:   sender,
		validate: validator.New(),
		// raw HTML in posts is dropped since WithUnsafe is not set
		markdown: goldmark.New(goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps())),
	}
}

// --- clubs ---

func (s *clubService) CreateClub(ctx context.Context, userID string, req domain.NewClub) (*domain.Club, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	if req.MembershipType == "" {
		req.MembershipType = domain.MembershipFree
	}
	club := &domain.Club{
		Name:           req.Name,
		Description:    req.Description,
		ClubType:       req.ClubType,
		CreatorID:      userID,
		MembershipType: req.MembershipType,
		PremiumPrice:   req.PremiumPrice,
		BannerURL:      req.BannerURL,
	}
	owner := domain.ClubMember{UserID: userID, Role: domain.ClubRoleOwner, Status: domain.MemberActive}
	if _, err := s.repos.Clubs.Create(ctx, club, owner); err != nil {
		return nil, fmt.Errorf("create club: %w", err)
	}
	return club, nil
}

func (s *clubService) GetClub(ctx context.Context, clubID string) (*domain.Club, error) {
	club, err := s.repos.Clubs.GetByID(ctx, clubID)
	if err != nil {
		return nil, notFound(err, ErrClubNotFound, "get club")
	}
	return club, nil
}

func (s *clubService) ListClubs(ctx context.Context) ([]domain.Club, error) {
	clubs, err := s.repos.Clubs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}
	return clubs, nil
}

func (s *clubService) ListMyClubs(ctx context.Context, userID string) ([]domain.Club, error) {
	clubs, err := s.repos.Clubs.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list member clubs: %w", err)
	}
	return clubs, nil
}

func (s *clubService) UpdateClub(ctx context.Context, userID, clubID string, patch domain.ClubPatch) (*domain.Club, error) {
	if err := validateStruct(s.validate, patch); err != nil {
		return nil, err
	}
	if _, err := s.requireRole(ctx, clubID, userID, domain.ClubRole.IsAdmin); err != nil {
		return nil, err
	}
	if !patch.IsEmpty() {
		if err := s.repos.Clubs.Update(ctx, clubID, patch); err != nil {
			return nil, notFound(err, ErrClubNotFound, "update club")
		}
	}
	return s.GetClub(ctx, clubID)
}

func (s *clubService) DeleteClub(ctx context.Context, userID, clubID string) error {
	isOwner := func(r domain.ClubRole) bool { return r == domain.ClubRoleOwner }
	if _, err := s.requireRole(ctx, clubID, userID, isOwner); err != nil {
		return err
	}
	if err := s.repos.Clubs.Delete(ctx, clubID); err != nil {
		return notFound(err, ErrClubNotFound, "delete club")
	}
	return nil
}

// --- membership ---

func (s *clubService) JoinClub(ctx context.Context, userID, clubID string) (*domain.ClubMember, error) {
	club, err := s.GetClub(ctx, clubID)
	if err != nil {
		return nil, err
	}
	member := domain.ClubMember{
		ClubID: clubID,
		UserID: userID,
		Role:   domain.ClubRoleMember,
		Status: domain.MemberActive,
	}
	if club.MembershipType == domain.MembershipPremium {
		member.Status = domain.MemberPending
	}
	if err := s.repos.Clubs.AddMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyMember
		}
		return nil, notFound(err, ErrClubNotFound, "add member")
	}
	if member.Status == domain.MemberPending {
		s.notifyOwner(ctx, club, userID)
	}
	return s.repos.Clubs.GetMember(ctx, clubID, userID)
}

// notifyOwner emails the club owner about a pending premium member. A failed
// email does not undo the join.
func (s *clubService) notifyOwner(ctx context.Context, club *domain.Club, userID string) {
	owner, err := s.repos.Profiles.GetByID(ctx, club.CreatorID)
	if err != nil {
		log.Errorf("club %s: get owner profile: %s", club.ID, err)
		return
	}
	who := userID
	if p, err := s.repos.Profiles.GetByID(ctx, userID); err == nil && p.Name != "" {
		who = p.Name
	}
	msg := notify.Message{
		To:      []string{owner.Email},
		Subject: fmt.Sprintf("New membership request for %s", club.Name),
		HTML: fmt.Sprintf("<p><strong>%s</strong> asked to join <strong>%s</strong>. Approve them from the members page once their subscription is active.</p>",
			html.EscapeString(who), html.EscapeString(club.Name)),
	}
	if _, err := s.sender.Send(ctx, msg); err != nil {
		log.Errorf("club %s: notify owner: %s", club.ID, err)
	}
}

func (s *clubService) LeaveClub(ctx context.Context, userID, clubID string) error {
	member, err := s.member(ctx, clubID, userID)
	if err != nil {
		return err
	}
	if member.Role == domain.ClubRoleOwner {
		return ErrOwnerCannotLeave
	}
	if err := s.repos.Clubs.RemoveMember(ctx, clubID, userID); err != nil {
		return notFound(err, ErrNotMember, "remove member")
	}
	return nil
}

func (s *clubService) ListMembers(ctx context.Context, clubID string) ([]domain.ClubMember, error) {
	if _, err := s.GetClub(ctx, clubID); err != nil {
		return nil, err
	}
	members, err := s.repos.Clubs.ListMembers(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

func (s *clubService) UpdateMemberRole(ctx context.Context, userID, clubID, memberID string, role domain.ClubRole) (*domain.ClubMember, error) {
	if !role.Valid() {
		return nil, validationError("unknown role %q", role)
	}
	if role == domain.ClubRoleOwner {
		return nil, validationError("ownership cannot be granted")
	}
	actor, err := s.requireRole(ctx, clubID, userID, domain.ClubRole.IsAdmin)
	if err != nil {
		return nil, err
	}
	target, err := s.member(ctx, clubID, memberID)
	if err != nil {
		return nil, err
	}
	if target.Role == domain.ClubRoleOwner {
		return nil, ErrForbidden
	}
	// only the owner hands out or takes away admin
	if (role == domain.ClubRoleAdmin || target.Role == domain.ClubRoleAdmin) && actor.Role != domain.ClubRoleOwner {
		return nil, ErrForbidden
	}
	if err := s.repos.Clubs.UpdateMemberRole(ctx, clubID, memberID, role); err != nil {
		return nil, notFound(err, ErrNotMember, "update member role")
	}
	target.Role = role
	return target, nil
}

func (s *clubService) ApproveMember(ctx context.Context, userID, clubID, memberID string) (*domain.ClubMember, error) {
	if _, err := s.requireRole(ctx, clubID, userID, domain.ClubRole.CanModerate); err != nil {
		return nil, err
	}
	target, err := s.member(ctx, clubID, memberID)
	if err != nil {
		return nil, err
	}
	if target.Status != domain.MemberPending {
		return nil, validationError("member is not pending approval")
	}
	if err := s.repos.Clubs.UpdateMemberStatus(ctx, clubID, memberID, domain.MemberActive); err != nil {
		return nil, notFound(err, ErrNotMember, "approve member")
	}
	target.Status = domain.MemberActive
	return target, nil
}

// --- events ---

func (s *clubService) CreateEvent(ctx context.Context, userID, clubID string, req domain.NewClubEvent) (*domain.ClubEvent, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	if _, err := s.requireRole(ctx, clubID, userID, domain.ClubRole.CanModerate); err != nil {
		return nil, err
	}
	event := &domain.ClubEvent{
		ClubID:      clubID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		CreatedBy:   userID,
	}
	if _, err := s.repos.Events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *clubService) ListEvents(ctx context.Context, clubID string) ([]domain.ClubEvent, error) {
	if _, err := s.GetClub(ctx, clubID); err != nil {
		return nil, err
	}
	events, err := s.repos.Events.ListByClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *clubService) DeleteEvent(ctx context.Context, userID, eventID string) error {
	event, err := s.repos.Events.GetByID(ctx, eventID)
	if err != nil {
		return notFound(err, ErrEventNotFound, "get event")
	}
	if event.CreatedBy != userID {
		if _, err := s.requireRole(ctx, event.ClubID, userID, domain.ClubRole.IsAdmin); err != nil {
			return err
		}
	}
	if err := s.repos.Events.Delete(ctx, eventID); err != nil {
		return notFound(err, ErrEventNotFound, "delete event")
	}
	return nil
}

func (s *clubService) RSVP(ctx context.Context, userID, eventID string, status domain.RSVPStatus) (*domain.EventParticipant, error) {
	switch status {
	case domain.RSVPGoing, domain.RSVPMaybe, domain.RSVPNotGoing:
	default:
		return nil, validationError("unknown rsvp status %q", status)
	}
	event, err := s.repos.Events.GetByID(ctx, eventID)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound, "get event")
	}
	if _, err := s.activeMember(ctx, event.ClubID, userID); err != nil {
		return nil, err
	}
	p := domain.EventParticipant{EventID: eventID, UserID: userID, Status: status}
	if err := s.repos.Events.UpsertParticipant(ctx, p); err != nil {
		return nil, fmt.Errorf("rsvp: %w", err)
	}
	return &p, nil
}

func (s *clubService) ListParticipants(ctx context.Context, eventID string) ([]domain.EventParticipant, error) {
	if _, err := s.repos.Events.GetByID(ctx, eventID); err != nil {
		return nil, notFound(err, ErrEventNotFound, "get event")
	}
	participants, err := s.repos.Events.ListParticipants(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

// --- posts and messages ---

func (s *clubService) CreatePost(ctx context.Context, userID, clubID, content, workoutID string) (*domain.ClubPost, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validationError("post content is required")
	}
	if _, err := s.activeMember(ctx, clubID, userID); err != nil {
		return nil, err
	}
	rendered, err := s.render(content)
	if err != nil {
		return nil, err
	}
	post := &domain.ClubPost{
		ClubID:      clubID,
		UserID:      userID,
		Content:     content,
		ContentHTML: rendered,
		WorkoutID:   workoutID,
	}
	if _, err := s.repos.Content.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

func (s *clubService) render(md string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render post: %w", err)
	}
	return buf.String(), nil
}

func (s *clubService) ListPosts(ctx context.Context, clubID string) ([]domain.ClubPost, error) {
	if _, err := s.GetClub(ctx, clubID); err != nil {
		return nil, err
	}
	posts, err := s.repos.Content.ListPosts(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *clubService) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.repos.Content.GetPost(ctx, postID)
	if err != nil {
		return notFound(err, ErrPostNotFound, "get post")
	}
	if post.UserID != userID {
		if _, err := s.requireRole(ctx, post.ClubID, userID, domain.ClubRole.CanModerate); err != nil {
			return err
		}
	}
	if err := s.repos.Content.DeletePost(ctx, postID); err != nil {
		return notFound(err, ErrPostNotFound, "delete post")
	}
	return nil
}

func (s *clubService) SendMessage(ctx context.Context, userID, clubID, content string) (*domain.ClubMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validationError("message content is required")
	}
	if _, err := s.activeMember(ctx, clubID, userID); err != nil {
		return nil, err
	}
	msg := &domain.ClubMessage{ClubID: clubID, UserID: userID, Content: content}
	if _, err := s.repos.Content.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}

// ListMessages is limited to active members, the chat is not public.
func (s *clubService) ListMessages(ctx context.Context, userID, clubID string) ([]domain.ClubMessage, error) {
	if _, err := s.activeMember(ctx, clubID, userID); err != nil {
		return nil, err
	}
	messages, err := s.repos.Content.ListMessages(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

func (s *clubService) DeleteMessage(ctx context.Context, userID, messageID string) error {
	msg, err := s.repos.Content.GetMessage(ctx, messageID)
	if err != nil {
		return notFound(err, ErrMessageNotFound, "get message")
	}
	if msg.UserID != userID {
		if _, err := s.requireRole(ctx, msg.ClubID, userID, domain.ClubRole.CanModerate); err != nil {
			return err
		}
	}
	if err := s.repos.Content.DeleteMessage(ctx, messageID); err != nil {
		return notFound(err, ErrMessageNotFound, "delete message")
	}
	return nil
}

func (s *clubService) PinMessage(ctx context.Context, userID, messageID string, pinned bool) (*domain.ClubMessage, error) {
	msg, err := s.repos.Content.GetMessage(ctx, messageID)
	if err != nil {
		return nil, notFound(err, ErrMessageNotFound, "get message")
	}
	if _, err := s.requireRole(ctx, msg.ClubID, userID, domain.ClubRole.CanModerate); err != nil {
		return nil, err
	}
	if err := s.repos.Content.SetMessagePinned(ctx, messageID, pinned); err != nil {
		return nil, notFound(err, ErrMessageNotFound, "pin message")
	}
	msg.IsPinned = pinned
	return msg, nil
}

// --- products and subscriptions ---

func (s *clubService) CreateProduct(ctx context.Context, userID, clubID string, req domain.NewClubProduct) (*domain.ClubProduct, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	if _, err := s.requireRole(ctx, clubID, userID, domain.ClubRole.IsAdmin); err != nil {
		return nil, err
	}
	product := &domain.ClubProduct{
		ClubID:      clubID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		ProductType: req.ProductType,
	}
	if _, err := s.repos.Commerce.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (s *clubService) ListProducts(ctx context.Context, clubID string) ([]domain.ClubProduct, error) {
	if _, err := s.GetClub(ctx, clubID); err != nil {
		return nil, err
	}
	products, err := s.repos.Commerce.ListProducts(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// PurchaseProduct records the purchase. Payment happens elsewhere.
func (s *clubService) PurchaseProduct(ctx context.Context, userID, productID string) (*domain.ClubProductPurchase, error) {
	product, err := s.repos.Commerce.GetProduct(ctx, productID)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound, "get product")
	}
	purchase := &domain.ClubProductPurchase{ProductID: productID, UserID: userID, AmountPaid: product.Price}
	if _, err := s.repos.Commerce.CreatePurchase(ctx, purchase); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyPurchased
		}
		return nil, fmt.Errorf("create product purchase: %w", err)
	}
	return purchase, nil
}

func (s *clubService) HasPurchasedProduct(ctx context.Context, userID, productID string) (bool, error) {
	ok, err := s.repos.Commerce.HasPurchased(ctx, productID, userID)
	if err != nil {
		return false, fmt.Errorf("check product purchase: %w", err)
	}
	return ok, nil
}

// Subscribe starts a premium subscription and activates the membership.
func (s *clubService) Subscribe(ctx context.Context, userID, clubID string) (*domain.ClubSubscription, error) {
	club, err := s.GetClub(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if club.MembershipType != domain.MembershipPremium {
		return nil, validationError("club %s has free membership", clubID)
	}
	sub := &domain.ClubSubscription{ClubID: clubID, UserID: userID, Status: domain.SubscriptionActive}
	if _, err := s.repos.Commerce.UpsertSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("upsert subscription: %w", err)
	}

	member, err := s.repos.Clubs.GetMember(ctx, clubID, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		m := domain.ClubMember{ClubID: clubID, UserID: userID, Role: domain.ClubRoleMember, Status: domain.MemberActive}
		if err := s.repos.Clubs.AddMember(ctx, m); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("add member: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("get member: %w", err)
	case member.Status == domain.MemberPending:
		if err := s.repos.Clubs.UpdateMemberStatus(ctx, clubID, userID, domain.MemberActive); err != nil {
			return nil, fmt.Errorf("activate member: %w", err)
		}
	}
	return sub, nil
}

// CancelSubscription moves a regular member back to pending.
func (s *clubService) CancelSubscription(ctx context.Context, userID, clubID string) error {
	if err := s.repos.Commerce.CancelSubscription(ctx, clubID, userID); err != nil {
		return notFound(err, ErrSubscriptionNotFound, "cancel subscription")
	}
	member, err := s.repos.Clubs.GetMember(ctx, clubID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get member: %w", err)
	}
	if member.Role == domain.ClubRoleMember && member.Status == domain.MemberActive {
		if err := s.repos.Clubs.UpdateMemberStatus(ctx, clubID, userID, domain.MemberPending); err != nil {
			return fmt.Errorf("deactivate member: %w", err)
		}
	}
	return nil
}

// --- sharing ---

func (s *clubService) ShareWorkout(ctx context.Context, userID, clubID, workoutID string) (*domain.ClubShare, error) {
	w, err := s.content.repos.Workouts.GetByID(ctx, workoutID)
	if err != nil {
		return nil, notFound(err, ErrWorkoutNotFound, "get workout")
	}
	program, err := s.content.repos.Programs.GetByID(ctx, w.ProgramID)
	if err != nil {
		return nil, notFound(err, ErrWorkoutNotFound, "get program")
	}
	allowed := program.CreatorID == userID
	if !allowed {
		if allowed, err = s.purchased(ctx, userID, domain.ContentWorkout, workoutID); err != nil {
			return nil, err
		}
	}
	if !allowed {
		if allowed, err = s.purchased(ctx, userID, domain.ContentProgram, program.ID); err != nil {
			return nil, err
		}
	}
	if !allowed {
		return nil, ErrAccessDenied
	}
	return s.share(ctx, userID, clubID, domain.ContentWorkout, workoutID)
}

func (s *clubService) ShareProgram(ctx context.Context, userID, clubID, programID string) (*domain.ClubShare, error) {
	program, err := s.content.repos.Programs.GetByID(ctx, programID)
	if err != nil {
		return nil, notFound(err, ErrProgramNotFound, "get program")
	}
	allowed := program.CreatorID == userID
	if !allowed {
		if allowed, err = s.purchased(ctx, userID, domain.ContentProgram, programID); err != nil {
			return nil, err
		}
	}
	if !allowed {
		return nil, ErrAccessDenied
	}
	return s.share(ctx, userID, clubID, domain.ContentProgram, programID)
}

func (s *clubService) purchased(ctx context.Context, userID string, contentType domain.ContentType, id string) (bool, error) {
	ok, err := s.content.repos.Purchases.Exists(ctx, userID, contentType, id)
	if err != nil {
		return false, fmt.Errorf("check purchase: %w", err)
	}
	return ok, nil
}

func (s *clubService) share(ctx context.Context, userID, clubID string, contentType domain.ContentType, contentID string) (*domain.ClubShare, error) {
	if _, err := s.activeMember(ctx, clubID, userID); err != nil {
		return nil, err
	}
	share := domain.ClubShare{ClubID: clubID, ContentType: contentType, ContentID: contentID, SharedBy: userID}
	if err := s.repos.Shares.Share(ctx, share); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyShared
		}
		return nil, fmt.Errorf("share %s: %w", contentType, err)
	}
	return &share, nil
}

func (s *clubService) ListShared(ctx context.Context, clubID string, contentType domain.ContentType) ([]domain.ClubShare, error) {
	if _, err := s.GetClub(ctx, clubID); err != nil {
		return nil, err
	}
	shares, err := s.repos.Shares.List(ctx, clubID, contentType)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	return shares, nil
}

// Unshare is allowed for whoever shared the content and for moderators.
func (s *clubService) Unshare(ctx context.Context, userID, clubID string, contentType domain.ContentType, contentID string) error {
	shares, err := s.repos.Shares.List(ctx, clubID, contentType)
	if err != nil {
		return fmt.Errorf("list shares: %w", err)
	}
	var found *domain.ClubShare
	for i := range shares {
		if shares[i].ContentID == contentID {
			found = &shares[i]
			break
		}
	}
	if found == nil {
		return ErrShareNotFound
	}
	if found.SharedBy != userID {
		if _, err := s.requireRole(ctx, clubID, userID, domain.ClubRole.CanModerate); err != nil {
			return err
		}
	}
	if err := s.repos.Shares.Unshare(ctx, clubID, contentType, contentID); err != nil {
		return notFound(err, ErrShareNotFound, "unshare")
	}
	return nil
}

// --- role checks ---

func (s *clubService) member(ctx context.Context, clubID, userID string) (*domain.ClubMember, error) {
	m, err := s.repos.Clubs.GetMember(ctx, clubID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if _, cerr := s.GetClub(ctx, clubID); cerr != nil {
				return nil, cerr
			}
			return nil, ErrNotMember
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *clubService) activeMember(ctx context.Context, clubID, userID string) (*domain.ClubMember, error) {
	m, err := s.member(ctx, clubID, userID)
	if err != nil {
		return nil, err
	}
	if m.Status != domain.MemberActive {
		return nil, ErrNotMember
	}
	return m, nil
}

// requireRole returns ErrNotMember for outsiders and ErrForbidden for active
// members whose role fails allowed.
func (s *clubService) requireRole(ctx context.Context, clubID, userID string, allowed func(domain.ClubRole) bool) (*domain.ClubMember, error) {
	m, err := s.activeMember(ctx, clubID, userID)
	if err != nil {
		return nil, err
	}
	if !allowed(m.Role) {
		return nil, ErrForbidden
	}
	return m, nil
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

// ClubHandler serves clubs, memberships, events, posts, messages, products,
// subscriptions and shared content. Role checks live in the club service.
type ClubHandler struct {
	clubs service.ClubService
}

func NewClubHandler(clubs service.ClubService) *ClubHandler {
	return &ClubHandler{clubs: clubs}
}

type RoleRequest struct {
	Role domain.ClubRole `json:"role" binding:"required"`
}

type RSVPRequest struct {
	Status domain.RSVPStatus `json:"status" binding:"required,oneof=going maybe not_going"`
}

type PostRequest struct {
	Content   string `json:"content" binding:"required"`
	WorkoutID string `json:"workoutId"`
}

type MessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type PinRequest struct {
	Pinned bool `json:"pinned"`
}

type ShareRequest struct {
	ContentID string `json:"contentId" binding:"required"`
}

// --- clubs ---

// CreateClub godoc
// @Summary Create a club, the caller becomes its owner
// @Tags Clubs
// @Security BearerAuth
// @Param club body domain.NewClub true "Club"
// @Success 201 {object} domain.Club
// @Router /clubs [post]
func (h *ClubHandler) CreateClub(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req domain.NewClub
	if !bindJSON(c, &req) {
		return
	}
	club, err := h.clubs.CreateClub(c.Request.Context(), userID, req)
	if err != nil {
		handleError(c, err, "Failed to create club")
		return
	}
	respond(c, http.StatusCreated, club)
}

// ListClubs godoc
// @Summary List clubs
// @Tags Clubs
// @Security BearerAuth
// @Success 200 {array} domain.Club
// @Router /clubs [get]
func (h *ClubHandler) ListClubs(c *gin.Context) {
	clubs, err := h.clubs.ListClubs(c.Request.Context())
	if err != nil {
		handleError(c, err, "Failed to list clubs")
		return
	}
	respond(c, http.StatusOK, emptyIfNil(clubs))
}

// ListMyClubs godoc
// @Summary List the clubs the caller belongs to
// @Tags Clubs
// @Security BearerAuth
// @Success 200 {array} domain.Club
// @Router /clubs/mine [get]
func (h *ClubHandler) ListMyClubs(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	clubs, err := h.clubs.ListMyClubs(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err, "Failed to list clubs")
		return
	}
	respond(c, http.StatusOK, emptyIfNil(clubs))
}

// GetClub godoc
// @Summary Get a club
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Success 200 {object} domain.Club
// @Router /clubs/{clubId} [get]
func (h *ClubHandler) GetClub(c *gin.Context) {
	club, err := h.clubs.GetClub(c.Request.Context(), c.Param("clubId"))
	if err != nil {
		handleError(c, err, "Failed to load club")
		return
	}
	respond(c, http.StatusOK, club)
}

// UpdateClub godoc
// @Summary Patch a club (owner or admin)
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Param patch body domain.ClubPatch true "Fields to change"
// @Success 200 {object} domain.Club
// @Router /clubs/{clubId} [patch]
func (h *ClubHandler) UpdateClub(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var patch domain.ClubPatch
	if !bindJSON(c, &patch) {
		return
	}
	club, err := h.clubs.UpdateClub(c.Request.Context(), userID, c.Param("clubId"), patch)
	if err != nil {
		handleError(c, err, "Failed to update club")
		return
	}
	respond(c, http.StatusOK, club)
}

// DeleteClub godoc
// @Summary Delete a club (owner)
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Success 204
// @Router /clubs/{clubId} [delete]
func (h *ClubHandler) DeleteClub(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.clubs.DeleteClub(c.Request.Context(), userID, c.Param("clubId")); err != nil {
		handleError(c, err, "Failed to delete club")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- membership ---

// JoinClub godoc
// @Summary Join a club, premium clubs leave the member pending
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Success 201 {object} domain.ClubMember
// @Router /clubs/{clubId}/members [post]
func (h *ClubHandler) JoinClub(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	member, err := h.clubs.JoinClub(c.Request.Context(), userID, c.Param("clubId"))
	if err != nil {
		handleError(c, err, "Failed to join club")
		return
	}
	respond(c, http.StatusCreated, member)
}

// LeaveClub godoc
// @Summary Leave a club
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Success 204
// @Router /clubs/{clubId}/members/me [delete]
func (h *ClubHandler) LeaveClub(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.clubs.LeaveClub(c.Request.Context(), userID, c.Param("clubId")); err != nil {
		handleError(c, err, "Failed to leave club")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMembers godoc
// @Summary List club members
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Success 200 {array} domain.ClubMember
// @Router /clubs/{clubId}/members [get]
func (h *ClubHandler) ListMembers(c *gin.Context) {
	members, err := h.clubs.ListMembers(c.Request.Context(), c.Param("clubId"))
	if err != nil {
		handleError(c, err, "Failed to list members")
		return
	}
	respond(c, http.StatusOK, emptyIfNil(members))
}

// UpdateMemberRole godoc
// @Summary Change a member's role
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Param userId path string true "Member user ID"
// @Param role body RoleRequest true "Role"
// @Success 200 {object} domain.ClubMember
// @Router /clubs/{clubId}/members/{userId}/role [put]
func (h *ClubHandler) UpdateMemberRole(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req RoleRequest
	if !bindJSON(c, &req) {
		return
	}
	member, err := h.clubs.UpdateMemberRole(c.Request.Context(), userID, c.Param("clubId"), c.Param("userId"), req.Role)
	if err != nil {
		handleError(c, err, "Failed to update role")
		return
	}
	respond(c, http.StatusOK, member)
}

// ApproveMember godoc
// @Summary Approve a pending member
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Param userId path string true "Member user ID"
// @Success 200 {object} domain.ClubMember
// @Router /clubs/{clubId}/members/{userId}/approve [post]
func (h *ClubHandler) ApproveMember(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	member, err := h.clubs.ApproveMember(c.Request.Context(), userID, c.Param("clubId"), c.Param("userId"))
	if err != nil {
		handleError(c, err, "Failed to approve member")
		return
	}
	respond(c, http.StatusOK, member)
}

// --- events ---

// CreateEvent godoc
// @Summary Create a club event
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Param event body domain.NewClubEvent true "Event"
// @Success 201 {object} domain.ClubEvent
// @Router /clubs/{clubId}/events [post]
func (h *ClubHandler) CreateEvent(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req domain.NewClubEvent
	if !bindJSON(c, &req) {
		return
	}
	event, err := h.clubs.CreateEvent(c.Request.Context(), userID, c.Param("clubId"), req)
	if err != nil {
		handleError(c, err, "Failed to create event")
		return
	}
	respond(c, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List club events by start time
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Success 200 {array} domain.ClubEvent
// @Router /clubs/{clubId}/events [get]
func (h *ClubHandler) ListEvents(c *gin.Context) {
	events, err := h.clubs.ListEvents(c.Request.Context(), c.Param("clubId"))
	if err != nil {
		handleError(c, err, "Failed to list events")
		return
	}
	respond(c, http.StatusOK, emptyIfNil(events))
}

// DeleteEvent godoc
// @Summary Delete a club event
// @Tags Clubs
// @Security BearerAuth
// @Param eventId path string true "Event ID"
// @Success 204
// @Router /events/{eventId} [delete]
func (h *ClubHandler) DeleteEvent(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.clubs.DeleteEvent(c.Request.Context(), userID, c.Param("eventId")); err != nil {
		handleError(c, err, "Failed to delete event")
		return
	}
	c.Status(http.StatusNoContent)
}

// RSVP godoc
// @Summary Answer an event invitation
// @Tags Clubs
// @Security BearerAuth
// @Param eventId path string true "Event ID"
// @Param rsvp body RSVPRequest true "Answer"
// @Success 200 {object} domain.EventParticipant
// @Router /events/{eventId}/rsvp [put]
func (h *ClubHandler) RSVP(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req RSVPRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.clubs.RSVP(c.Request.Context(), userID, c.Param("eventId"), req.Status)
	if err != nil {
		handleError(c, err, "Failed to save RSVP")
		return
	}
	respond(c, http.StatusOK, p)
}

// ListParticipants godoc
// @Summary List event participants
// @Tags Clubs
// @Security BearerAuth
// @Param eventId path string true "Event ID"
// @Success 200 {array} domain.EventParticipant
// @Router /events/{eventId}/participants [get]
func (h *ClubHandler) ListParticipants(c *gin.Context) {
	participants, err := h.clubs.ListParticipants(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		handleError(c, err, "Failed to list participants")
		return
	}
	respond(c, http.StatusOK, emptyIfNil(participants))
}

// --- posts ---

// CreatePost godoc
// @Summary Post to a club, content is markdown
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Param post body PostRequest true "Post"
// @Success 201 {object} domain.ClubPost
// @Router /clubs/{clubId}/posts [post]
func (h *ClubHandler) CreatePost(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req PostRequest
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.clubs.CreatePost(c.Request.Context(), userID, c.Param("clubId"), req.Content, req.WorkoutID)
	if err != nil {
		handleError(c, err, "Failed to create post")
		return
	}
	respond(c, http.StatusCreated, post)
}

// ListPosts godoc
// @Summary List club posts
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Success 200 {array} domain.ClubPost
// @Router /clubs/{clubId}/posts [get]
func (h *ClubHandler) ListPosts(c *gin.Context) {
	posts, err := h.clubs.ListPosts(c.Request.Context(), c.Param("clubId"))
	if err != nil {
		handleError(c, err, "Failed to list posts")
		return
	}
	respond(c, http.StatusOK, emptyIfNil(posts))
}

// DeletePost godoc
// @Summary Delete a club post
// @Tags Clubs
// @Security BearerAuth
// @Param postId path string true "Post ID"
// @Success 204
// @Router /posts/{postId} [delete]
func (h *ClubHandler) DeletePost(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.clubs.DeletePost(c.Request.Context(), userID, c.Param("postId")); err != nil {
		handleError(c, err, "Failed to delete post")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- messages ---

// SendMessage godoc
// @Summary Send a club chat message
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Param message body MessageRequest true "Message"
// @Success 201 {object} domain.ClubMessage
// @Router /clubs/{clubId}/messages [post]
func (h *ClubHandler) SendMessage(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req MessageRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.clubs.SendMessage(c.Request.Context(), userID, c.Param("clubId"), req.Content)
	if err != nil {
		handleError(c, err, "Failed to send message")
		return
	}
	respond(c, http.StatusCreated, msg)
}

// ListMessages godoc
// @Summary List club messages, pinned first
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Success 200 {array} domain.ClubMessage
// @Router /clubs/{clubId}/messages [get]
func (h *ClubHandler) ListMessages(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	msgs, err := h.clubs.ListMessages(c.Request.Context(), userID, c.Param("clubId"))
	if err != nil {
		handleError(c, err, "Failed to list messages")
		return
	}
	respond(c, http.StatusOK, emptyIfNil(msgs))
}

// DeleteMessage godoc
// @Summary Delete a club message
// @Tags Clubs
// @Security BearerAuth
// @Param messageId path string true "Message ID"
// @Success 204
// @Router /messages/{messageId} [delete]
func (h *ClubHandler) DeleteMessage(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.clubs.DeleteMessage(c.Request.Context(), userID, c.Param("messageId")); err != nil {
		handleError(c, err, "Failed to delete message")
		return
	}
	c.Status(http.StatusNoContent)
}

// PinMessage godoc
// @Summary Pin or unpin a message (moderators)
// @Tags Clubs
// @Security BearerAuth
// @Param messageId path string true "Message ID"
// @Param pin body PinRequest true "Pinned"
// @Success 200 {object} domain.ClubMessage
// @Failure 403 {object} gin.H "Not a moderator"
// @Router /messages/{messageId}/pin [put]
func (h *ClubHandler) PinMessage(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req PinRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.clubs.PinMessage(c.Request.Context(), userID, c.Param("messageId"), req.Pinned)
	if err != nil {
		handleError(c, err, "Failed to pin message")
		return
	}
	respond(c, http.StatusOK, msg)
}

// --- products ---

// CreateProduct godoc
// @Summary Create a club product
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Param product body domain.NewClubProduct true "Product"
// @Success 201 {object} domain.ClubProduct
// @Router /clubs/{clubId}/products [post]
func (h *ClubHandler) CreateProduct(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req domain.NewClubProduct
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.clubs.CreateProduct(c.Request.Context(), userID, c.Param("clubId"), req)
	if err != nil {
		handleError(c, err, "Failed to create product")
		return
	}
	respond(c, http.StatusCreated, product)
}

// ListProducts godoc
// @Summary List club products
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Success 200 {array} domain.ClubProduct
// @Router /clubs/{clubId}/products [get]
func (h *ClubHandler) ListProducts(c *gin.Context) {
	products, err := h.clubs.ListProducts(c.Request.Context(), c.Param("clubId"))
	if err != nil {
		handleError(c, err, "Failed to list products")
		return
	}
	respond(c, http.StatusOK, emptyIfNil(products))
}

// PurchaseProduct godoc
// @Summary Record a product purchase
// @Tags Clubs
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Success 201 {object} domain.ClubProductPurchase
// @Router /products/{productId}/purchase [post]
func (h *ClubHandler) PurchaseProduct(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	purchase, err := h.clubs.PurchaseProduct(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		handleError(c, err, "Failed to record purchase")
		return
	}
	respond(c, http.StatusCreated, purchase)
}

// HasPurchasedProduct godoc
// @Summary Check whether the caller bought a product
// @Tags Clubs
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Success 200 {object} PurchasedResponse
// @Router /products/{productId}/purchase [get]
func (h *ClubHandler) HasPurchasedProduct(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	purchased, err := h.clubs.HasPurchasedProduct(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		handleError(c, err, "Failed to check purchase")
		return
	}
	respond(c, http.StatusOK, PurchasedResponse{Purchased: purchased})
}

// --- subscriptions ---

// Subscribe godoc
// @Summary Subscribe to a premium club
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Success 201 {object} domain.ClubSubscription
// @Router /clubs/{clubId}/subscription [post]
func (h *ClubHandler) Subscribe(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	sub, err := h.clubs.Subscribe(c.Request.Context(), userID, c.Param("clubId"))
	if err != nil {
		handleError(c, err, "Failed to subscribe")
		return
	}
	respond(c, http.StatusCreated, sub)
}

// CancelSubscription godoc
// @Summary Cancel a club subscription
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Success 204
// @Router /clubs/{clubId}/subscription [delete]
func (h *ClubHandler) CancelSubscription(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.clubs.CancelSubscription(c.Request.Context(), userID, c.Param("clubId")); err != nil {
		handleError(c, err, "Failed to cancel subscription")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- sharing ---

func contentTypeParam(c *gin.Context) (domain.ContentType, bool) {
	switch ct := domain.ContentType(c.Param("contentType")); ct {
	case domain.ContentWorkout, domain.ContentProgram:
		return ct, true
	}
	abortWithError(c, http.StatusBadRequest, "content type must be workout or program")
	return "", false
}

// Share godoc
// @Summary Share a workout or program with a club
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Param contentType path string true "workout or program"
// @Param share body ShareRequest true "Content"
// @Success 201 {object} domain.ClubShare
// @Failure 409 {object} gin.H "Already shared"
// @Router /clubs/{clubId}/shared/{contentType} [post]
func (h *ClubHandler) Share(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	contentType, ok := contentTypeParam(c)
	if !ok {
		return
	}
	var req ShareRequest
	if !bindJSON(c, &req) {
		return
	}
	var (
		share *domain.ClubShare
		err   error
	)
	if contentType == domain.ContentWorkout {
		share, err = h.clubs.ShareWorkout(c.Request.Context(), userID, c.Param("clubId"), req.ContentID)
	} else {
		share, err = h.clubs.ShareProgram(c.Request.Context(), userID, c.Param("clubId"), req.ContentID)
	}
	if err != nil {
		handleError(c, err, "Failed to share content")
		return
	}
	respond(c, http.StatusCreated, share)
}

// ListShared godoc
// @Summary List content shared with a club
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Param contentType path string true "workout or program"
// @Success 200 {array} domain.ClubShare
// @Router /clubs/{clubId}/shared/{contentType} [get]
func (h *ClubHandler) ListShared(c *gin.Context) {
	contentType, ok := contentTypeParam(c)
	if !ok {
		return
	}
	shares, err := h.clubs.ListShared(c.Request.Context(), c.Param("clubId"), contentType)
	if err != nil {
		handleError(c, err, "Failed to list shared content")
		return
	}
	respond(c, http.StatusOK, emptyIfNil(shares))
}

// Unshare godoc
// @Summary Stop sharing content with a club
// @Tags Clubs
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Param contentType path string true "workout or program"
// @Param contentId path string true "Content ID"
// @Success 204
// @Router /clubs/{clubId}/shared/{contentType}/{contentId} [delete]
func (h *ClubHandler) Unshare(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	contentType, ok := contentTypeParam(c)
	if !ok {
		return
	}
	if err := h.clubs.Unshare(c.Request.Context(), userID, c.Param("clubId"), contentType, c.Param("contentId")); err != nil {
		handleError(c, err, "Failed to unshare content")
		return
	}
	c.Status(http.StatusNoContent)
}

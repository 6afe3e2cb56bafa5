package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/notify"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

func newClubService(t *testing.T, e *testEnv, sender notify.Sender) service.ClubService {
	t.Helper()
	return service.NewClubService(service.ClubRepos{
		Clubs:    e.store.Clubs(),
		Events:   e.store.ClubEvents(),
		Content:  e.store.ClubContent(),
		Commerce: e.store.ClubCommerce(),
		Shares:   e.store.ClubShares(),
		Profiles: e.store.Profiles(),
	}, e.content, sender)
}

// clubWithMembers creates a free club owned by owner and joins the given users.
func clubWithMembers(t *testing.T, e *testEnv, clubs service.ClubService, members ...string) *domain.Club {
	t.Helper()
	club, err := clubs.CreateClub(e.ctx, owner, domain.NewClub{Name: "Early Lifters"})
	require.NoError(t, err)
	for _, m := range members {
		_, err := clubs.JoinClub(e.ctx, m, club.ID)
		require.NoError(t, err)
	}
	return club
}

func TestClub_CreateMakesOwner(t *testing.T) {
	e := newTestEnv(t)
	clubs := newClubService(t, e, nil)

	club, err := clubs.CreateClub(e.ctx, owner, domain.NewClub{Name: "Run Crew"})
	require.NoError(t, err)
	assert.Equal(t, domain.MembershipFree, club.MembershipType)

	members, err := clubs.ListMembers(e.ctx, club.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, domain.ClubRoleOwner, members[0].Role)
	assert.Equal(t, domain.MemberActive, members[0].Status)

	mine, err := clubs.ListMyClubs(e.ctx, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = clubs.CreateClub(e.ctx, owner, domain.NewClub{Name: "x"})
	assert.ErrorIs(t, err, service.ErrValidation)

	e.store.FailOn("clubs.create", errors.New("down"))
	_, err = clubs.CreateClub(e.ctx, owner, domain.NewClub{Name: "Never"})
	assert.Error(t, err)
}

func TestClub_MembershipRules(t *testing.T) {
	e := newTestEnv(t)
	clubs := newClubService(t, e, nil)
	club := clubWithMembers(t, e, clubs, "alice", "bob")

	_, err := clubs.JoinClub(e.ctx, "alice", club.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyMember)
	assert.ErrorIs(t, clubs.LeaveClub(e.ctx, owner, club.ID), service.ErrOwnerCannotLeave)

	// only the owner grants admin
	_, err = clubs.UpdateMemberRole(e.ctx, "alice", club.ID, "bob", domain.ClubRoleModerator)
	assert.ErrorIs(t, err, service.ErrForbidden)
	admin, err := clubs.UpdateMemberRole(e.ctx, owner, club.ID, "alice", domain.ClubRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.ClubRoleAdmin, admin.Role)
	_, err = clubs.UpdateMemberRole(e.ctx, "alice", club.ID, "bob", domain.ClubRoleAdmin)
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = clubs.UpdateMemberRole(e.ctx, "alice", club.ID, "bob", domain.ClubRoleModerator)
	assert.NoError(t, err)
	_, err = clubs.UpdateMemberRole(e.ctx, "alice", club.ID, owner, domain.ClubRoleMember)
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = clubs.UpdateMemberRole(e.ctx, owner, club.ID, "alice", domain.ClubRoleOwner)
	assert.ErrorIs(t, err, service.ErrValidation)

	require.NoError(t, clubs.LeaveClub(e.ctx, "bob", club.ID))
	assert.ErrorIs(t, clubs.LeaveClub(e.ctx, "bob", club.ID), service.ErrNotMember)

	_, err = clubs.UpdateClub(e.ctx, "alice", club.ID, domain.ClubPatch{Description: strPtr("6am sessions")})
	require.NoError(t, err)
	assert.ErrorIs(t, clubs.DeleteClub(e.ctx, "alice", club.ID), service.ErrForbidden)
	require.NoError(t, clubs.DeleteClub(e.ctx, owner, club.ID))
	_, err = clubs.GetClub(e.ctx, club.ID)
	assert.ErrorIs(t, err, service.ErrClubNotFound)
}

func TestClub_PremiumJoinNotifiesOwner(t *testing.T) {
	e := newTestEnv(t)
	ctrl := gomock.NewController(t)
	sender := NewMockSender(ctrl)
	clubs := newClubService(t, e, sender)

	creator := &domain.Profile{Name: "Coach", Email: "coach@example.com"}
	_, err := e.store.Profiles().Create(e.ctx, creator)
	require.NoError(t, err)
	joiner := &domain.Profile{Name: "Sam <b>", Email: "sam@example.com"}
	_, err = e.store.Profiles().Create(e.ctx, joiner)
	require.NoError(t, err)

	club, err := clubs.CreateClub(e.ctx, creator.ID, domain.NewClub{
		Name:           "Barbell Club",
		MembershipType: domain.MembershipPremium,
		PremiumPrice:   12,
	})
	require.NoError(t, err)

	sender.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg notify.Message) (notify.Result, error) {
			assert.Equal(t, []string{"coach@example.com"}, msg.To)
			assert.Contains(t, msg.Subject, "Barbell Club")
			assert.Contains(t, msg.HTML, "Sam &lt;b&gt;")
			return notify.Result{MessageID: "msg-1", SentAt: time.Now()}, nil
		})

	member, err := clubs.JoinClub(e.ctx, joiner.ID, club.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberPending, member.Status)

	// pending members cannot post
	_, err = clubs.SendMessage(e.ctx, joiner.ID, club.ID, "hi")
	assert.ErrorIs(t, err, service.ErrNotMember)

	sub, err := clubs.Subscribe(e.ctx, joiner.ID, club.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, sub.Status)
	_, err = clubs.SendMessage(e.ctx, joiner.ID, club.ID, "hi")
	require.NoError(t, err)

	require.NoError(t, clubs.CancelSubscription(e.ctx, joiner.ID, club.ID))
	assert.ErrorIs(t, clubs.CancelSubscription(e.ctx, joiner.ID, club.ID), service.ErrSubscriptionNotFound)
	_, err = clubs.SendMessage(e.ctx, joiner.ID, club.ID, "still here?")
	assert.ErrorIs(t, err, service.ErrNotMember)

	approved, err := clubs.ApproveMember(e.ctx, creator.ID, club.ID, joiner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberActive, approved.Status)
}

func TestClub_PremiumJoinSurvivesEmailFailure(t *testing.T) {
	e := newTestEnv(t)
	ctrl := gomock.NewController(t)
	sender := NewMockSender(ctrl)
	clubs := newClubService(t, e, sender)

	creator := &domain.Profile{Name: "Coach", Email: "coach@example.com"}
	_, err := e.store.Profiles().Create(e.ctx, creator)
	require.NoError(t, err)
	club, err := clubs.CreateClub(e.ctx, creator.ID, domain.NewClub{Name: "Premium", MembershipType: domain.MembershipPremium})
	require.NoError(t, err)

	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(notify.Result{}, errors.New("provider down"))
	member, err := clubs.JoinClub(e.ctx, "someone", club.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberPending, member.Status)
}

func TestClub_PinMessageNeedsModerator(t *testing.T) {
	e := newTestEnv(t)
	clubs := newClubService(t, e, nil)
	club := clubWithMembers(t, e, clubs, "member", "admin")
	_, err := clubs.UpdateMemberRole(e.ctx, owner, club.ID, "admin", domain.ClubRoleAdmin)
	require.NoError(t, err)

	first, err := clubs.SendMessage(e.ctx, "member", club.ID, "first")
	require.NoError(t, err)
	_, err = clubs.SendMessage(e.ctx, "member", club.ID, "second")
	require.NoError(t, err)

	_, err = clubs.PinMessage(e.ctx, "member", first.ID, true)
	assert.ErrorIs(t, err, service.ErrForbidden)
	messages, err := clubs.ListMessages(e.ctx, "member", club.ID)
	require.NoError(t, err)
	for _, m := range messages {
		assert.False(t, m.IsPinned)
	}

	pinned, err := clubs.PinMessage(e.ctx, "admin", first.ID, true)
	require.NoError(t, err)
	assert.True(t, pinned.IsPinned)
	messages, err = clubs.ListMessages(e.ctx, "member", club.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, first.ID, messages[0].ID)

	_, err = clubs.ListMessages(e.ctx, stranger, club.ID)
	assert.ErrorIs(t, err, service.ErrNotMember)
	require.NoError(t, clubs.DeleteMessage(e.ctx, "admin", first.ID))
}

func TestClub_ShareWorkoutOnce(t *testing.T) {
	e := newTestEnv(t)
	clubs := newClubService(t, e, nil)
	club := clubWithMembers(t, e, clubs, "buyer")
	w, _ := e.workoutWithExercises(t, "Snatch")

	share, err := clubs.ShareWorkout(e.ctx, owner, club.ID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContentWorkout, share.ContentType)
	_, err = clubs.ShareWorkout(e.ctx, owner, club.ID, w.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyShared)

	shared, err := clubs.ListShared(e.ctx, club.ID, domain.ContentWorkout)
	require.NoError(t, err)
	assert.Len(t, shared, 1)

	// members may share only what they own or bought
	_, err = clubs.ShareProgram(e.ctx, "buyer", club.ID, w.ProgramID)
	assert.ErrorIs(t, err, service.ErrAccessDenied)
	_, err = e.programs.UpdateProgramPrice(e.ctx, owner, w.ProgramID, 10, true)
	require.NoError(t, err)
	_, err = e.programs.PurchaseProgram(e.ctx, "buyer", w.ProgramID)
	require.NoError(t, err)
	_, err = clubs.ShareProgram(e.ctx, "buyer", club.ID, w.ProgramID)
	require.NoError(t, err)

	// outsiders cannot share even their own content
	_, err = clubs.ShareWorkout(e.ctx, "buyer", "other-club", w.ID)
	assert.ErrorIs(t, err, service.ErrClubNotFound)

	assert.ErrorIs(t, clubs.Unshare(e.ctx, "buyer", club.ID, domain.ContentWorkout, w.ID), service.ErrForbidden)
	require.NoError(t, clubs.Unshare(e.ctx, owner, club.ID, domain.ContentWorkout, w.ID))
	assert.ErrorIs(t, clubs.Unshare(e.ctx, owner, club.ID, domain.ContentWorkout, w.ID), service.ErrShareNotFound)
}

func TestClub_EventsPostsProducts(t *testing.T) {
	e := newTestEnv(t)
	clubs := newClubService(t, e, nil)
	club := clubWithMembers(t, e, clubs, "member")
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err := clubs.CreateEvent(e.ctx, "member", club.ID, domain.NewClubEvent{Name: "Meet", StartTime: start, EndTime: start.Add(time.Hour)})
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = clubs.CreateEvent(e.ctx, owner, club.ID, domain.NewClubEvent{Name: "Bad", StartTime: start, EndTime: start})
	assert.ErrorIs(t, err, service.ErrValidation)
	event, err := clubs.CreateEvent(e.ctx, owner, club.ID, domain.NewClubEvent{Name: "Meet", StartTime: start, EndTime: start.Add(time.Hour)})
	require.NoError(t, err)

	rsvp, err := clubs.RSVP(e.ctx, "member", event.ID, domain.RSVPGoing)
	require.NoError(t, err)
	assert.Equal(t, domain.RSVPGoing, rsvp.Status)
	_, err = clubs.RSVP(e.ctx, "member", event.ID, "later")
	assert.ErrorIs(t, err, service.ErrValidation)
	participants, err := clubs.ListParticipants(e.ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, participants, 1)
	assert.ErrorIs(t, clubs.DeleteEvent(e.ctx, "member", event.ID), service.ErrForbidden)
	require.NoError(t, clubs.DeleteEvent(e.ctx, owner, event.ID))

	post, err := clubs.CreatePost(e.ctx, "member", club.ID, "**PR day** <script>alert(1)</script>", "")
	require.NoError(t, err)
	assert.Contains(t, post.ContentHTML, "<strong>PR day</strong>")
	assert.NotContains(t, post.ContentHTML, "<script>")
	_, err = clubs.CreatePost(e.ctx, stranger, club.ID, "spam", "")
	assert.ErrorIs(t, err, service.ErrNotMember)
	require.NoError(t, clubs.DeletePost(e.ctx, owner, post.ID))

	_, err = clubs.CreateProduct(e.ctx, "member", club.ID, domain.NewClubProduct{Name: "Shirt", Price: 20})
	assert.ErrorIs(t, err, service.ErrForbidden)
	product, err := clubs.CreateProduct(e.ctx, owner, club.ID, domain.NewClubProduct{Name: "Shirt", Price: 20})
	require.NoError(t, err)
	bought, err := clubs.PurchaseProduct(e.ctx, "member", product.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, bought.AmountPaid)
	_, err = clubs.PurchaseProduct(e.ctx, "member", product.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyPurchased)
	ok, err := clubs.HasPurchasedProduct(e.ctx, "member", product.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = clubs.Subscribe(e.ctx, "member", club.ID)
	assert.ErrorIs(t, err, service.ErrValidation)
}

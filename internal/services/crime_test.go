package services

import (
	"context"
	"testing"
	"time"

	"github.com/nexcodes/softec-25-sub000/internal/apperr"
	"github.com/nexcodes/softec-25-sub000/internal/models"
	"github.com/nexcodes/softec-25-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func reportRequest() ReportCrimeRequest {
	return ReportCrimeRequest{
		Title:       "Phone snatched",
		Description: "Two men on a motorbike grabbed a phone",
		Location:    "Liberty Market",
		Latitude:    floatPtr(31.51),
		Longitude:   floatPtr(74.34),
		CrimeType:   models.CrimeRobbery,
		IncidentAt:  time.Now().Add(-2 * time.Hour),
	}
}

func TestReportCrime(t *testing.T) {
	f := newFixture(t)
	svc := NewCrimeService(f.crimes, f.users)
	ctx := context.Background()

	user := f.user(t, models.RoleUser)

	crime, err := svc.Report(ctx, user.ID, reportRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, crime.ID)
	assert.Equal(t, models.VerificationPending, crime.Verification)
	assert.True(t, crime.IsLive)
	require.NotNil(t, crime.UserID)
	assert.Equal(t, user.ID, *crime.UserID)
	assert.False(t, crime.ReportedAt.IsZero())

	stored, err := f.crimes.GetByID(ctx, crime.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsLive)
	assert.Equal(t, models.CrimeRobbery, stored.CrimeType)
}

func TestReportCrime_Anonymous(t *testing.T) {
	f := newFixture(t)
	svc := NewCrimeService(f.crimes, f.users)
	ctx := context.Background()

	crime, err := svc.Report(ctx, "", reportRequest())
	require.NoError(t, err)
	assert.Nil(t, crime.UserID)

	user := f.user(t, models.RoleUser)
	req := reportRequest()
	req.Anonymous = true
	crime, err = svc.Report(ctx, user.ID, req)
	require.NoError(t, err)
	assert.Nil(t, crime.UserID)
}

func TestReportCrime_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ReportCrimeRequest)
		field  string
	}{
		{"title missing", func(r *ReportCrimeRequest) { r.Title = "  " }, "title"},
		{"description missing", func(r *ReportCrimeRequest) { r.Description = "" }, "description"},
		{"location missing", func(r *ReportCrimeRequest) { r.Location = "" }, "location"},
		{"latitude out of range", func(r *ReportCrimeRequest) { r.Latitude = floatPtr(91) }, "latitude"},
		{"longitude out of range", func(r *ReportCrimeRequest) { r.Longitude = floatPtr(-181) }, "longitude"},
		{"crime type missing", func(r *ReportCrimeRequest) { r.CrimeType = "" }, "crime_type"},
		{"crime type unknown", func(r *ReportCrimeRequest) { r.CrimeType = "JAYWALKING" }, "crime_type"},
		{"incident missing", func(r *ReportCrimeRequest) { r.IncidentAt = time.Time{} }, "incident_at"},
		{"incident in future", func(r *ReportCrimeRequest) { r.IncidentAt = time.Now().Add(time.Hour) }, "incident_at"},
	}

	f := newFixture(t)
	svc := NewCrimeService(f.crimes, f.users)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := reportRequest()
			tt.mutate(&req)
			_, err := svc.Report(context.Background(), "", req)
			assertField(t, err, tt.field)
		})
	}
}

func TestGetCrime_Detail(t *testing.T) {
	f := newFixture(t)
	svc := NewCrimeService(f.crimes, f.users)
	votes := newVoteService(f)
	ctx := context.Background()

	owner := f.user(t, models.RoleUser)
	voter := f.user(t, models.RoleUser)
	crime := f.crime(t, owner, true)

	_, err := votes.CastVote(ctx, voter.ID, crime.ID, true)
	require.NoError(t, err)
	require.NoError(t, f.media.Create(ctx, &models.Media{CrimeID: crime.ID, URL: "https://cdn.example.com/a.jpg", Type: models.MediaImage}))

	detail, err := svc.Get(ctx, "", crime.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VoteStats{Total: 1, Upvotes: 1}, detail.VoteStats)
	assert.Len(t, detail.Media, 1)
	assert.Len(t, detail.Votes, 1)
	require.NotNil(t, detail.User)
	assert.Equal(t, owner.ID, detail.User.ID)

	_, err = svc.Get(ctx, "", uuid.NewString())
	assertKind(t, err, apperr.KindNotFound)
}

func TestGetCrime_HiddenVisibility(t *testing.T) {
	f := newFixture(t)
	svc := NewCrimeService(f.crimes, f.users)
	ctx := context.Background()

	owner := f.user(t, models.RoleUser)
	stranger := f.user(t, models.RoleUser)
	admin := f.user(t, models.RoleAdmin)
	hidden := f.crime(t, owner, false)

	_, err := svc.Get(ctx, "", hidden.ID)
	assertKind(t, err, apperr.KindNotFound)
	_, err = svc.Get(ctx, stranger.ID, hidden.ID)
	assertKind(t, err, apperr.KindNotFound)

	_, err = svc.Get(ctx, owner.ID, hidden.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, admin.ID, hidden.ID)
	assert.NoError(t, err)
}

func TestListCrimes(t *testing.T) {
	f := newFixture(t)
	svc := NewCrimeService(f.crimes, f.users)
	ctx := context.Background()

	admin := f.user(t, models.RoleAdmin)
	user := f.user(t, models.RoleUser)

	old := reportRequest()
	old.IncidentAt = time.Now().Add(-48 * time.Hour)
	old.Title = "Car broken into"
	old.CrimeType = models.CrimeBurglary
	_, err := svc.Report(ctx, user.ID, old)
	require.NoError(t, err)

	recent, err := svc.Report(ctx, user.ID, reportRequest())
	require.NoError(t, err)

	f.crime(t, user, false)

	crimes, total, err := svc.List(ctx, "", repository.CrimeFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, crimes, 2)
	assert.Equal(t, recent.ID, crimes[0].ID)

	_, total, err = svc.List(ctx, admin.ID, repository.CrimeFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	crimes, total, err = svc.List(ctx, user.ID, repository.CrimeFilter{Query: "BROKEN"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Car broken into", crimes[0].Title)

	_, total, err = svc.List(ctx, "", repository.CrimeFilter{CrimeType: models.CrimeRobbery})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	crimes, total, err = svc.List(ctx, "", repository.CrimeFilter{Page: repository.Page{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, crimes, 1)
	assert.Equal(t, "Car broken into", crimes[0].Title)

	_, _, err = svc.List(ctx, "", repository.CrimeFilter{CrimeType: "JAYWALKING"})
	assertField(t, err, "crime_type")
	_, _, err = svc.List(ctx, "", repository.CrimeFilter{Verification: "MAYBE"})
	assertField(t, err, "verification")
}

func TestUpdateCrime(t *testing.T) {
	f := newFixture(t)
	svc := NewCrimeService(f.crimes, f.users)
	ctx := context.Background()

	owner := f.user(t, models.RoleUser)
	other := f.user(t, models.RoleUser)
	crime := f.crime(t, owner, true)
	anonymous := f.crime(t, nil, true)

	updated, err := svc.Update(ctx, owner.ID, crime.ID, UpdateCrimeRequest{
		Title:     strPtr("Stolen red bicycle"),
		Latitude:  floatPtr(24.86),
		Longitude: floatPtr(67.01),
	})
	require.NoError(t, err)
	assert.Equal(t, "Stolen red bicycle", updated.Title)
	assert.Equal(t, crime.Description, updated.Description)
	require.NotNil(t, updated.Latitude)
	assert.InDelta(t, 24.86, *updated.Latitude, 1e-9)

	_, err = svc.Update(ctx, other.ID, crime.ID, UpdateCrimeRequest{Title: strPtr("mine now")})
	assertKind(t, err, apperr.KindForbidden)

	_, err = svc.Update(ctx, owner.ID, anonymous.ID, UpdateCrimeRequest{Title: strPtr("claim")})
	assertKind(t, err, apperr.KindForbidden)

	_, err = svc.Update(ctx, "", crime.ID, UpdateCrimeRequest{})
	assertKind(t, err, apperr.KindUnauthorized)

	_, err = svc.Update(ctx, owner.ID, crime.ID, UpdateCrimeRequest{Title: strPtr("  ")})
	assertField(t, err, "title")

	future := time.Now().Add(24 * time.Hour)
	_, err = svc.Update(ctx, owner.ID, crime.ID, UpdateCrimeRequest{IncidentAt: &future})
	assertField(t, err, "incident_at")
}

func TestModerateCrime(t *testing.T) {
	f := newFixture(t)
	svc := NewCrimeService(f.crimes, f.users)
	ctx := context.Background()

	admin := f.user(t, models.RoleAdmin)
	user := f.user(t, models.RoleUser)
	crime := f.crime(t, user, true)

	verified := models.VerificationVerified
	_, err := svc.Moderate(ctx, user.ID, crime.ID, ModerateCrimeRequest{Verification: &verified})
	assertKind(t, err, apperr.KindForbidden)

	moderated, err := svc.Moderate(ctx, admin.ID, crime.ID, ModerateCrimeRequest{Verification: &verified})
	require.NoError(t, err)
	assert.Equal(t, models.VerificationVerified, moderated.Verification)
	assert.True(t, moderated.IsLive)

	hide := false
	moderated, err = svc.Moderate(ctx, admin.ID, crime.ID, ModerateCrimeRequest{IsLive: &hide})
	require.NoError(t, err)
	assert.False(t, moderated.IsLive)
	assert.Equal(t, models.VerificationVerified, moderated.Verification)

	bogus := models.Verification("MAYBE")
	_, err = svc.Moderate(ctx, admin.ID, crime.ID, ModerateCrimeRequest{Verification: &bogus})
	assertField(t, err, "verification")

	_, err = svc.Moderate(ctx, admin.ID, crime.ID, ModerateCrimeRequest{})
	assertField(t, err, "verification")

	_, err = svc.Moderate(ctx, admin.ID, uuid.NewString(), ModerateCrimeRequest{IsLive: &hide})
	assertKind(t, err, apperr.KindNotFound)
}

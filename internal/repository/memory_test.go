package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadaqapass/sadaqa/internal/models"
)

func seedCampaign(t *testing.T, db *MemoryDB, goal string, status models.CampaignStatus) *models.Campaign {
	t.Helper()
	c := &models.Campaign{
		OwnerID:    1,
		FundID:     1,
		Title:      "Well",
		GoalAmount: decimal.RequireFromString(goal),
		Currency:   "RUB",
		Status:     status,
		EndDate:    time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, db.CreateCampaign(context.Background(), c))
	return c
}

func TestMemorySettleDonationCreditsCampaignOnce(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDB()
	campaign := seedCampaign(t, db, "1000", models.CampaignActive)

	donation := &models.Donation{
		UserID:     1,
		CampaignID: &campaign.ID,
		Amount:     decimal.NewFromInt(1000),
		Status:     models.DonationProcessing,
	}
	require.NoError(t, db.CreateDonation(ctx, donation))

	settle := models.DonationSettlement{DonationID: donation.ID, Status: models.DonationCompleted, At: time.Now()}
	first, err := db.SettleDonation(ctx, settle)
	require.NoError(t, err)
	assert.True(t, first.Applied)
	require.NotNil(t, first.Progress)
	assert.True(t, first.Progress.GoalReached)
	assert.Equal(t, models.CampaignCompleted, first.Progress.Campaign.Status)

	second, err := db.SettleDonation(ctx, settle)
	require.NoError(t, err)
	assert.False(t, second.Applied)
	assert.Nil(t, second.Progress)

	stored, err := db.GetCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.True(t, stored.CollectedAmount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, int64(1), stored.ParticipantsCount)
}

func TestMemoryTransitionCampaignGuards(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDB()
	campaign := seedCampaign(t, db, "10", models.CampaignPending)

	ok, err := db.TransitionCampaign(ctx, campaign.ID, []models.CampaignStatus{models.CampaignPending}, models.CampaignActive, models.CampaignChanges{})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.TransitionCampaign(ctx, campaign.ID, []models.CampaignStatus{models.CampaignPending}, models.CampaignRejected, models.CampaignChanges{})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = db.TransitionCampaign(ctx, 999, []models.CampaignStatus{models.CampaignPending}, models.CampaignActive, models.CampaignChanges{})
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestMemoryFindOrCreateUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDB()

	first, err := db.FindOrCreateUser(ctx, &models.User{TgID: 77, FirstName: "Amina"})
	require.NoError(t, err)
	second, err := db.FindOrCreateUser(ctx, &models.User{TgID: 77, FirstName: "Amina", Username: "amina"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "amina", second.Username)
	assert.Equal(t, "ru", second.Locale)
}

func TestMemoryListCampaignsCountryFallsBackToFund(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDB()
	require.NoError(t, db.CreateFund(ctx, &models.Fund{Name: "Ru fund", CountryCode: "RU", Verified: true}))

	kz := "KZ"
	inherits := seedCampaign(t, db, "10", models.CampaignActive)
	own := &models.Campaign{FundID: 1, GoalAmount: decimal.NewFromInt(10), Status: models.CampaignActive, CountryCode: &kz}
	require.NoError(t, db.CreateCampaign(ctx, own))

	ru := "RU"
	got, err := db.ListCampaigns(ctx, models.CampaignFilter{CountryCode: &ru})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inherits.ID, got[0].ID)

	got, err = db.ListCampaigns(ctx, models.CampaignFilter{CountryCode: &kz})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, own.ID, got[0].ID)
}

func TestMemoryListCampaignsSortKeys(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDB()
	base := time.Now().Add(-24 * time.Hour)

	seed := []struct {
		goal, collected string
		participants    int64
	}{
		{"0", "500", 1},  // no goal: progress counts as zero
		{"100", "50", 5}, // ties with the next one on participants
		{"100", "90", 5},
		{"1000", "0", 0},
	}
	ids := make([]int64, len(seed))
	for i, s := range seed {
		c := &models.Campaign{
			OwnerID:           1,
			FundID:            1,
			Title:             "Well",
			GoalAmount:        decimal.RequireFromString(s.goal),
			CollectedAmount:   decimal.RequireFromString(s.collected),
			ParticipantsCount: s.participants,
			Status:            models.CampaignActive,
			EndDate:           time.Now().Add(24 * time.Hour),
			CreatedAt:         base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, db.CreateCampaign(ctx, c))
		ids[i] = c.ID
	}
	nth := func(order ...int) []int64 {
		out := make([]int64, len(order))
		for i, n := range order {
			out[i] = ids[n-1]
		}
		return out
	}

	tests := []struct {
		sort models.CampaignSort
		want []int64
	}{
		{models.SortProgress, nth(3, 2, 4, 1)},
		{models.SortPopularity, nth(3, 2, 1, 4)},
		{models.SortNewest, nth(4, 3, 2, 1)},
		{models.SortOldest, nth(1, 2, 3, 4)},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			got, err := db.ListCampaigns(ctx, models.CampaignFilter{Sort: tt.sort})
			require.NoError(t, err)
			gotIDs := make([]int64, len(got))
			for i, c := range got {
				gotIDs[i] = c.ID
			}
			assert.Equal(t, tt.want, gotIDs)
		})
	}
}

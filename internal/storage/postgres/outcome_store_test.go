package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-metadata-backfill/internal/domain"
	"solana-metadata-backfill/internal/storage"
)

func TestOutcomeStore_InsertAndGetByRunID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOutcomeStore(pool)

	outcomes := []*domain.Outcome{
		{
			OutcomeID:       "out-1",
			RunID:           "run-1",
			Mint:            "2gJPv2yK4MWEaRDfxmFJo7sGBPQBgMrasMfvC8zVSrzr",
			MetadataAddress: "MetaAddr1",
			Status:          domain.OutcomeExists,
			RecordedAt:      1700000000000,
		},
		{
			OutcomeID:       "out-2",
			RunID:           "run-1",
			Mint:            "4zA73hGR393FKdPTHcwpTXQW1wYXy7qWrNW1w4SibQUg",
			MetadataAddress: "MetaAddr2",
			Status:          domain.OutcomeCreated,
			Signature:       ptr("sig-2"),
			PollAttempts:    2,
			RecordedAt:      1700000001000,
		},
		{
			OutcomeID:       "out-3",
			RunID:           "run-2",
			Mint:            "5TGsXTng16ic9mJrY6QA6t7uqf4X4iwkiHMUbcuJKWay",
			MetadataAddress: "MetaAddr3",
			Status:          domain.OutcomeFailed,
			Stage:           "simulate",
			Error:           ptr("simulation failed"),
			RecordedAt:      1700000002000,
		},
	}
	for _, o := range outcomes {
		require.NoError(t, store.Insert(ctx, o))
	}

	result, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, "out-1", result[0].OutcomeID)
	assert.Equal(t, domain.OutcomeExists, result[0].Status)
	assert.Nil(t, result[0].Signature)

	assert.Equal(t, "out-2", result[1].OutcomeID)
	assert.Equal(t, domain.OutcomeCreated, result[1].Status)
	require.NotNil(t, result[1].Signature)
	assert.Equal(t, "sig-2", *result[1].Signature)
	assert.Equal(t, 2, result[1].PollAttempts)
	assert.NotZero(t, result[1].CreatedAt)

	empty, err := store.GetByRunID(ctx, "run-unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOutcomeStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOutcomeStore(pool)

	o := &domain.Outcome{
		OutcomeID:       "dup",
		RunID:           "run-1",
		Mint:            "mintA",
		MetadataAddress: "MetaA",
		Status:          domain.OutcomeExists,
		RecordedAt:      1700000000000,
	}

	require.NoError(t, store.Insert(ctx, o))
	assert.ErrorIs(t, store.Insert(ctx, o), storage.ErrDuplicateKey)
}

func TestOutcomeStore_InsertInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOutcomeStore(pool)
	assert.ErrorIs(t, store.Insert(context.Background(), &domain.Outcome{RunID: "r"}), storage.ErrInvalidInput)
}

func TestOutcomeStore_GetLatestByMint(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOutcomeStore(pool)

	require.NoError(t, store.Insert(ctx, &domain.Outcome{
		OutcomeID: "a-1", RunID: "run-1", Mint: "mintA", MetadataAddress: "MetaA",
		Status: domain.OutcomeFailed, Stage: "confirm", Error: ptr("not confirmed"), RecordedAt: 1,
	}))
	require.NoError(t, store.Insert(ctx, &domain.Outcome{
		OutcomeID: "a-2", RunID: "run-2", Mint: "mintA", MetadataAddress: "MetaA",
		Status: domain.OutcomeCreated, Signature: ptr("sig"), RecordedAt: 2,
	}))

	latest, err := store.GetLatestByMint(ctx, "mintA")
	require.NoError(t, err)
	assert.Equal(t, "a-2", latest.OutcomeID)
	assert.Equal(t, domain.OutcomeCreated, latest.Status)

	_, err = store.GetLatestByMint(ctx, "mintZ")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

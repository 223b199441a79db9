package services

import (
	"context"
	"fmt"
	"testing"

	"clsh-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateInput() CreateClashInput {
	return CreateClashInput{
		Title: "Cats vs Dogs",
		Options: []OptionInput{
			{Text: "Cats"},
			{Text: "Dogs"},
		},
	}
}

func TestCreateClash(t *testing.T) {
	store := newFakeClashStore()
	svc := NewClashService(store, nil)

	input := validCreateInput()
	input.ExpiresInDays = 7
	clash, err := svc.Create(context.Background(), "owner-1", input)
	require.NoError(t, err)

	assert.Equal(t, "owner-1", clash.OwnerID)
	assert.Equal(t, models.StatusActive, clash.Status)
	assert.Len(t, clash.Slug, slugLength)
	assert.Equal(t, "option-1", clash.Options[0].ID)
	assert.Equal(t, "option-2", clash.Options[1].ID)
	require.NotNil(t, clash.ExpiresAt)
	assert.True(t, clash.ExpiresAt.After(clash.CreatedAt))
}

func TestCreateClashValidation(t *testing.T) {
	svc := NewClashService(newFakeClashStore(), nil)

	cases := []struct {
		name   string
		mutate func(*CreateClashInput)
	}{
		{"empty title", func(in *CreateClashInput) { in.Title = "  " }},
		{"one option", func(in *CreateClashInput) { in.Options = in.Options[:1] }},
		{"five options", func(in *CreateClashInput) {
			for i := 0; i < 3; i++ {
				in.Options = append(in.Options, OptionInput{Text: fmt.Sprintf("extra %d", i)})
			}
		}},
		{"blank option text", func(in *CreateClashInput) { in.Options[1].Text = " " }},
		{"cta without text", func(in *CreateClashInput) {
			in.ShowCTA = true
			in.CTAURL = "https://example.com"
		}},
		{"cta relative url", func(in *CreateClashInput) {
			in.ShowCTA = true
			in.CTAText = "Buy now"
			in.CTAURL = "/checkout"
		}},
		{"unknown status", func(in *CreateClashInput) { in.Status = "archived" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput()
			tc.mutate(&input)
			_, err := svc.Create(context.Background(), "owner-1", input)
			assert.True(t, IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestCreateClashRetriesSlugCollision(t *testing.T) {
	store := newFakeClashStore()
	store.failCreates = 2
	svc := NewClashService(store, nil)

	clash, err := svc.Create(context.Background(), "owner-1", validCreateInput())
	require.NoError(t, err)
	assert.NotEmpty(t, clash.Slug)
	assert.Equal(t, 3, store.createCalls)
}

func TestCreateClashGivesUpAfterMaxSlugAttempts(t *testing.T) {
	store := newFakeClashStore()
	store.failCreates = slugMaxAttempts
	svc := NewClashService(store, nil)

	_, err := svc.Create(context.Background(), "owner-1", validCreateInput())
	assert.Error(t, err)
}

func TestGetClashOwnershipIndistinguishable(t *testing.T) {
	clash := activeClash("clash-1", "owner-1", "slug-1", 2)
	svc := NewClashService(newFakeClashStore(clash), nil)

	_, foreignErr := svc.Get(context.Background(), "clash-1", "owner-2")
	_, missingErr := svc.Get(context.Background(), "does-not-exist", "owner-1")

	// Not-owned must read identically to absent
	assert.ErrorIs(t, foreignErr, ErrNotFound)
	assert.ErrorIs(t, missingErr, ErrNotFound)
}

func TestUpdateClash(t *testing.T) {
	clash := activeClash("clash-1", "owner-1", "slug-1", 2)
	svc := NewClashService(newFakeClashStore(clash), nil)

	updated, err := svc.Update(context.Background(), "clash-1", "owner-1", UpdateClashInput{
		Title:  "New title",
		Status: models.StatusPaused,
		Options: []OptionInput{
			{Text: "A"}, {Text: "B"}, {Text: "C"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, models.StatusPaused, updated.Status)
	assert.Len(t, updated.Options, 3)
	// Slug never changes on update
	assert.Equal(t, "slug-1", updated.Slug)
}

func TestDeleteClashScopedToOwner(t *testing.T) {
	clash := activeClash("clash-1", "owner-1", "slug-1", 2)
	store := newFakeClashStore(clash)
	svc := NewClashService(store, nil)

	assert.ErrorIs(t, svc.Delete(context.Background(), "clash-1", "owner-2"), ErrNotFound)
	require.NoError(t, svc.Delete(context.Background(), "clash-1", "owner-1"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "clash-1", "owner-1"), ErrNotFound)
}

func TestSetOptionImage(t *testing.T) {
	clash := activeClash("clash-1", "owner-1", "slug-1", 2)
	store := newFakeClashStore(clash)
	svc := NewClashService(store, nil)

	err := svc.SetOptionImage(context.Background(), "clash-1", "owner-1", "option-2", "https://img.example/2.jpg")
	require.NoError(t, err)

	stored, err := svc.Get(context.Background(), "clash-1", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/2.jpg", stored.Options[1].ImageURL)

	err = svc.SetOptionImage(context.Background(), "clash-1", "owner-1", "option-9", "https://img.example/9.jpg")
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestGenerateSlugAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		slug := generateSlug()
		assert.Len(t, slug, slugLength)
		for _, c := range slug {
			assert.Contains(t, slugChars, string(c))
		}
	}
}

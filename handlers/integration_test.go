// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/danielhkuo/partyplanner/models"
	"github.com/danielhkuo/partyplanner/testutil"
)

// TestFullPartyWorkflow walks one party from sign-ups to feedback:
// 1. Guests add items while the party is upcoming
// 2. The bring-list freezes at the start and photos open
// 3. Feedback opens three hours in
func TestFullPartyWorkflow(t *testing.T) {
	env := testutil.NewEnv(t, 30*time.Minute)
	items := NewItemHandler(env.Registry, env.Localizer)
	photos := NewPhotoHandler(env.Registry, env.Localizer)
	feedback := NewFeedbackHandler(env.Registry, env.Localizer)
	state := NewSessionHandler(env.Registry, env.Localizer, env.Clock)
	alice, bob := testutil.NewDevice(), testutil.NewDevice()

	getState := func(device map[string]string) models.StateResponse {
		w := env.Serve("GET /state", state.GetState, testutil.MakeRequest("GET", "/state", nil, device))
		var st models.StateResponse
		testutil.AssertJSON(t, w, &st)
		return st
	}

	// Step 1: sign-ups
	createItem(t, env, alice, models.CreateItemRequest{Name: "Alice", Item: "Lemonade", Category: "beverages"})
	createItem(t, env, bob, models.CreateItemRequest{Name: "Bob", Item: "Brownies", Category: "sweets"})

	w := env.Serve("GET /photos", photos.ListPhotos, testutil.MakeRequest("GET", "/photos", nil, alice))
	var photoList models.PhotosResponse
	testutil.AssertJSON(t, w, &photoList)
	if photoList.Open {
		t.Error("Photos should be closed before the party")
	}

	// Step 2: the party starts
	env.Clock.Advance(31 * time.Minute)
	if st := getState(alice); st.Phase != models.PhaseStarted {
		t.Fatalf("Expected started, got %s", st.Phase)
	}

	w = env.Serve("POST /items", items.CreateItem, testutil.MakeRequest("POST", "/items", models.CreateItemRequest{Name: "Alice", Item: "Ice"}, alice))
	testutil.AssertStatus(t, w, http.StatusConflict)

	w = env.Serve("GET /items", items.ListItems, testutil.MakeRequest("GET", "/items", nil, bob))
	var itemList models.ItemsResponse
	testutil.AssertJSON(t, w, &itemList)
	if len(itemList.Items) != 2 {
		t.Errorf("Frozen list should still show 2 items, got %d", len(itemList.Items))
	}

	w = env.Serve("POST /photos", photos.UploadPhotos, uploadRequest(t, "Bob", map[string][]byte{"toast.png": smallPNG(t)}, bob))
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = env.Serve("POST /feedback", feedback.CreateFeedback, testutil.MakeRequest("POST", "/feedback", models.CreateFeedbackRequest{Name: "Bob", Message: "Too early"}, bob))
	testutil.AssertStatus(t, w, http.StatusConflict)

	// Step 3: feedback opens
	env.Clock.Advance(3 * time.Hour)
	if st := getState(bob); st.Phase != models.PhaseFeedbackOpen {
		t.Fatalf("Expected feedback_open, got %s", st.Phase)
	}

	fb := createFeedback(t, env, bob, models.CreateFeedbackRequest{Name: "Bob", Message: "Lovely evening"})

	env.Serve("GET /feedback", feedback.ListFeedback, testutil.MakeRequest("GET", "/feedback", nil, alice))
	w = env.Serve("POST /feedback/{id}/reactions", feedback.React, testutil.MakeRequest("POST", "/feedback/"+fb.ID+"/reactions", models.ReactRequest{Emoji: "👍"}, alice))
	testutil.AssertStatus(t, w, http.StatusOK)

	// Earlier sections stay visible
	w = env.Serve("GET /photos", photos.ListPhotos, testutil.MakeRequest("GET", "/photos", nil, alice))
	testutil.AssertJSON(t, w, &photoList)
	if !photoList.Open || len(photoList.Photos) != 1 {
		t.Errorf("Expected one photo after feedback opens, got %+v", photoList)
	}
}

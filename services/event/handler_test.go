package event

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"community-recycle-tracker/pkg/auth"
	"community-recycle-tracker/services/testutil"
)

func TestJoinHandler(t *testing.T) {
	svc, _ := newTestService(t, "", nil)
	e := createEvent(t, svc, "Park", testNow, 100)

	engine, router := testutil.NewRouter(&auth.Session{Subject: "verified", Role: auth.RoleRecycler})
	NewHandler(svc).RegisterRoutes(router)

	w := testutil.Do(t, engine, http.MethodPost, "/events/"+e.ID+"/join", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var p Participation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Equal(t, StatusJoined, p.Status)

	w = testutil.Do(t, engine, http.MethodPost, "/events/"+e.ID+"/join", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "ALREADY_JOINED", testutil.ErrorReason(t, w))

	w = testutil.Do(t, engine, http.MethodGet, "/events/joined", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var joined []JoinedEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &joined))
	require.Len(t, joined, 1)
	require.Equal(t, e.ID, joined[0].ID)
	require.Equal(t, p.ID, joined[0].ParticipationID)
}

func TestJoinHandlerForbidsOtherRecycler(t *testing.T) {
	svc, _ := newTestService(t, "", nil)
	e := createEvent(t, svc, "Park", testNow, 100)

	engine, router := testutil.NewRouter(&auth.Session{Subject: "someone", Role: auth.RoleRecycler})
	NewHandler(svc).RegisterRoutes(router)

	w := testutil.Do(t, engine, http.MethodPost, "/events/"+e.ID+"/join?recyclerId=verified", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestNotVerifiedHandler(t *testing.T) {
	svc, _ := newTestService(t, "", nil)
	e := createEvent(t, svc, "Park", testNow, 100)

	engine, router := testutil.NewRouter(&auth.Session{Subject: "unverified", Role: auth.RoleRecycler})
	NewHandler(svc).RegisterRoutes(router)

	w := testutil.Do(t, engine, http.MethodPost, "/events/"+e.ID+"/join", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "NOT_VERIFIED", testutil.ErrorReason(t, w))
}

func TestCheckInAndHistoryHandler(t *testing.T) {
	svc, _ := newTestService(t, "", nil)
	e := createEvent(t, svc, "Park", testNow, 100)

	p, err := svc.Join(t.Context(), "verified", e.ID)
	require.NoError(t, err)

	engine, router := testutil.NewRouter(&auth.Session{Subject: "org-1", Role: auth.RoleOrganizer})
	NewHandler(svc).RegisterRoutes(router)

	w := testutil.Do(t, engine, http.MethodPost, "/events/"+e.ID+"/participants/verified/check-in", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.Do(t, engine, http.MethodPost, "/events/"+e.ID+"/participants/verified/check-in", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "INVALID_TRANSITION", testutil.ErrorReason(t, w))

	w = testutil.Do(t, engine, http.MethodGet, "/participations/"+p.ID+"/transitions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var history []ParticipationTransition
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history, 2)
	require.Equal(t, StatusAttended, history[1].ToStatus)
}

func TestCreateEventHandler(t *testing.T) {
	svc, _ := newTestService(t, "", nil)

	engine, router := testutil.NewRouter(&auth.Session{Subject: "org-1", Role: auth.RoleOrganizer})
	NewHandler(svc).RegisterRoutes(router)

	w := testutil.Do(t, engine, http.MethodPost, "/events", map[string]any{
		"address":        "Market Square",
		"startTime":      "2024-02-01T10:00:00Z",
		"weightCapacity": 250,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var e Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	require.Equal(t, "market-square-2024-02-01", e.Slug)

	w = testutil.Do(t, engine, http.MethodGet, "/events/"+e.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.Do(t, engine, http.MethodGet, "/events/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

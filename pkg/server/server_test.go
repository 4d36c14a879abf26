// Copyright (C) 2026 TinyFedi Project
//
// This file is part of fedcore.
//
// fedcore is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// fedcore is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with fedcore.  If not, see <https://www.gnu.org/licenses/>.

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tinyfedi/fedcore/pkg/activitypub"
	"github.com/tinyfedi/fedcore/pkg/config"
	"github.com/tinyfedi/fedcore/pkg/dispatch"
	"github.com/tinyfedi/fedcore/pkg/jsonx"
	"github.com/tinyfedi/fedcore/pkg/queue"
)

// stubVerifier accepts or rejects everything and records what it saw
type stubVerifier struct {
	ok      bool
	headers map[string]string
	body    []byte
}

func (v *stubVerifier) Verify(ctx context.Context, sig, method, path string, headers map[string]string, body []byte) bool {
	v.headers = headers
	v.body = body
	return v.ok
}

type testServer struct {
	echo     *echo.Echo
	store    *queue.FSStore
	verifier *stubVerifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Domain = "blog.example"
	cfg.Actor.Username = "alice"

	store, err := queue.NewFSStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	followers := dispatch.NewFollowerStore(store, cfg.ActorID()+"/followers", zap.NewNop())
	q := queue.New(store, zap.NewNop(), nil)
	v := &stubVerifier{ok: true}

	s := New(cfg, store, followers, q, v, "PUBLIC-KEY-PEM", zap.NewNop())
	e := echo.New()
	s.Register(e)

	return &testServer{echo: e, store: store, verifier: v}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	return rec
}

func signedInboxRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/activitypub/actor/inbox", strings.NewReader(body))
	req.Header.Set("Signature", `keyId="https://social.example/users/bob#main-key",signature="c2ln"`)
	req.Header.Set("Content-Type", activitypub.ContentTypeActivityJSON)
	return req
}

func TestWebFinger(t *testing.T) {
	// Test Case 1: known resource resolves, wrong/missing resource rejected

	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet,
		"/.well-known/webfinger?resource=acct:alice@blog.example", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var finger activitypub.WebFinger
	require.NoError(t, jsonx.Unmarshal(rec.Body.Bytes(), &finger))
	assert.Equal(t, "acct:alice@blog.example", finger.Subject)
	require.Len(t, finger.Links, 1)
	assert.Equal(t, "https://blog.example/activitypub/actor", finger.Links[0].Href)

	rec = ts.do(httptest.NewRequest(http.MethodGet,
		"/.well-known/webfinger?resource=acct:bob@blog.example", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/.well-known/webfinger", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActor_ContentNegotiation(t *testing.T) {
	// Test Case 2: ActivityPub accept headers are served, browsers get 406

	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/activitypub/actor", nil)
	req.Header.Set("Accept", activitypub.AcceptHeader)
	rec := ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "activity+json")

	var actor activitypub.Actor
	require.NoError(t, jsonx.Unmarshal(rec.Body.Bytes(), &actor))
	assert.Equal(t, "alice", actor.PreferredUsername)
	assert.Equal(t, "PUBLIC-KEY-PEM", actor.PublicKey.PublicKeyPem)
	assert.Equal(t, "https://blog.example/activitypub/actor#main-key", actor.PublicKey.ID)

	req = httptest.NewRequest(http.MethodGet, "/activitypub/actor", nil)
	req.Header.Set("Accept", "text/html")
	rec = ts.do(req)
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
}

func TestFollowers_AutoCreated(t *testing.T) {
	// Test Case 3: the first read serves an empty, persisted collection

	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/activitypub/actor/followers", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var followers activitypub.Followers
	require.NoError(t, jsonx.Unmarshal(rec.Body.Bytes(), &followers))
	assert.Equal(t, 0, followers.TotalItems)
	assert.Equal(t, "OrderedCollection", followers.Type)

	_, err := ts.store.Get(dispatch.FollowersBlob)
	assert.NoError(t, err)
}

func TestInbox_AcceptedAndQueued(t *testing.T) {
	// Test Case 4: a verified POST is persisted, enqueued, answered 202

	ts := newTestServer(t)

	rec := ts.do(signedInboxRequest(`{"type":"Follow","actor":"https://social.example/users/bob"}`))
	require.Equal(t, http.StatusAccepted, rec.Code)

	stored, err := ts.store.List(InboxNamespace)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, strings.HasPrefix(stored[0], "follow-"))

	queued, err := ts.store.List(queue.Namespace)
	require.NoError(t, err)
	assert.Equal(t, stored, queued)
}

func TestInbox_VerifierSeesHostAndBody(t *testing.T) {
	// Test Case 5: the middleware hands the verifier the host header and
	// the exact body bytes

	ts := newTestServer(t)
	body := `{"type":"Follow","actor":"https://social.example/users/bob"}`

	rec := ts.do(signedInboxRequest(body))
	require.Equal(t, http.StatusAccepted, rec.Code)

	assert.Equal(t, body, string(ts.verifier.body))
	assert.NotEmpty(t, ts.verifier.headers["host"])
}

func TestInbox_Unsigned(t *testing.T) {
	// Test Case 6: a request without a Signature header is 401

	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/activitypub/actor/inbox",
		strings.NewReader(`{"type":"Follow"}`))
	req.Header.Set("Content-Type", activitypub.ContentTypeActivityJSON)

	rec := ts.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInbox_FailedVerification(t *testing.T) {
	// Test Case 7: failed verification is 401 and nothing is stored

	ts := newTestServer(t)
	ts.verifier.ok = false

	rec := ts.do(signedInboxRequest(`{"type":"Follow","actor":"https://social.example/users/bob"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	stored, err := ts.store.List(InboxNamespace)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestInbox_WrongContentType(t *testing.T) {
	// Test Case 8: signed but non-ActivityPub content is 415

	ts := newTestServer(t)

	req := signedInboxRequest(`{"type":"Follow"}`)
	req.Header.Set("Content-Type", "application/json")

	rec := ts.do(req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestInbox_UntypedActivity(t *testing.T) {
	// Test Case 9: a verified body without a type is a 400

	ts := newTestServer(t)

	rec := ts.do(signedInboxRequest(`{"actor":"https://social.example/users/bob"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeStoredActivity(t *testing.T) {
	// Test Case 10: persisted activities and posts are served by id

	ts := newTestServer(t)
	require.NoError(t, ts.store.Put("activities/accept-1.json", []byte(`{"type":"Accept"}`)))
	require.NoError(t, ts.store.Put("posts/20250921-hello.json", []byte(`{"type":"Note"}`)))

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/activitypub/activities/accept-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"type":"Accept"}`, rec.Body.String())

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/activitypub/posts/20250921-hello", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/activitypub/activities/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOutbox(t *testing.T) {
	// Test Case 11: the outbox aggregates stored entries into a collection

	ts := newTestServer(t)
	require.NoError(t, ts.store.Put(OutboxNamespace+"/create-1.json",
		[]byte(`{"type":"Create","id":"https://blog.example/activitypub/activities/create-1"}`)))

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/activitypub/actor/outbox", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var outbox struct {
		Type       string           `json:"type"`
		TotalItems int              `json:"totalItems"`
		Items      []map[string]any `json:"orderedItems"`
	}
	require.NoError(t, jsonx.Unmarshal(rec.Body.Bytes(), &outbox))
	assert.Equal(t, "OrderedCollection", outbox.Type)
	assert.Equal(t, 1, outbox.TotalItems)
	require.Len(t, outbox.Items, 1)
	assert.Equal(t, "Create", outbox.Items[0]["type"])
}

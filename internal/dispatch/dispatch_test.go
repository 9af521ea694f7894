// internal/dispatch/dispatch_test.go
//
// Unit-tests for the client-side dispatcher.
//
// Context
// -------
// A live httptest server stands in for the enquiry API and counts every
// request it receives, so "no network call" is asserted directly.  The
// validator clock is pinned to 2026-10-17.

package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/krishnacabs/internal/form"
)

var pinned = WithValidator(&form.Validator{
	Profile: form.Strict,
	Now:     func() time.Time { return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC) },
})

func fillBooking(t *testing.T, f *Form) {
	t.Helper()
	for k, v := range map[string]string{
		"serviceType":    "airport",
		"vehicleType":    "sedan",
		"pickupLocation": "Bandra West",
		"dropLocation":   "Mumbai Airport T2",
		"date":           "2026-10-18",
		"time":           "05:45",
	} {
		require.NoError(t, f.Set(k, v))
	}
}

type apiStub struct {
	calls  atomic.Int32
	status int
	env    map[string]any
	hold   chan struct{} // when set, each request blocks until closed
	seen   chan struct{}
	body   map[string]string
	mu     sync.Mutex
}

func (s *apiStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.calls.Add(1)
	s.mu.Lock()
	_ = json.NewDecoder(r.Body).Decode(&s.body)
	s.mu.Unlock()
	if s.seen != nil {
		s.seen <- struct{}{}
	}
	if s.hold != nil {
		<-s.hold
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.status)
	_ = json.NewEncoder(w).Encode(s.env)
}

func newStub(t *testing.T, status int, env map[string]any) (*apiStub, HTTPStrategy) {
	t.Helper()
	stub := &apiStub{status: status, env: env}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	return stub, HTTPStrategy{BaseURL: srv.URL, Client: srv.Client()}
}

func TestSubmitDeliveredResetsValues(t *testing.T) {
	stub, s := newStub(t, http.StatusOK, map[string]any{"success": true, "message": "Thanks!"})
	f, err := NewForm("booking", s, pinned)
	require.NoError(t, err)
	fillBooking(t, f)

	res, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDelivered, res.Outcome)
	assert.Equal(t, "Thanks!", res.Message)
	assert.Empty(t, f.Values())
	assert.False(t, f.Submitting())
	assert.EqualValues(t, 1, stub.calls.Load())
	assert.Equal(t, "sedan", stub.body["vehicleType"])
}

func TestSubmitDeliveredWithoutMessageUsesFormSuccess(t *testing.T) {
	_, s := newStub(t, http.StatusOK, map[string]any{"success": true})
	f, err := NewForm("booking", s, pinned)
	require.NoError(t, err)
	fillBooking(t, f)

	res, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDelivered, res.Outcome)
	assert.Equal(t, f.Def().Messages.Success, res.Message)
	assert.NotEmpty(t, res.Message)
}

type silentDraft struct{}

func (silentDraft) Deliver(context.Context, *form.FormDef, map[string]string) (Delivery, error) {
	return Delivery{Success: true}, nil
}

func TestSubmitDraftedWithoutMessageUsesMailtoText(t *testing.T) {
	f, err := NewForm("booking", silentDraft{}, pinned)
	require.NoError(t, err)
	fillBooking(t, f)

	res, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDrafted, res.Outcome)
	assert.Equal(t, f.Def().Messages.Mailto, res.Message)

	def := *f.Def()
	def.Messages = form.FormMessages{}
	bare := NewFormFromDef(&def, silentDraft{}, pinned)
	fillBooking(t, bare)
	res, err = bare.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fallbackMailto, res.Message)
}

func TestSubmitBlockedMakesNoCall(t *testing.T) {
	stub, s := newStub(t, http.StatusOK, map[string]any{"success": true})
	f, err := NewForm("booking", s, pinned)
	require.NoError(t, err)
	fillBooking(t, f)
	require.NoError(t, f.Set("date", "2026-10-01"))

	res, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocked, res.Outcome)
	assert.Equal(t, map[string]string{"date": "Date cannot be in the past"}, res.Errors)
	assert.Equal(t, res.Errors, f.Errors())
	assert.EqualValues(t, 0, stub.calls.Load())

	require.NoError(t, f.Set("date", "2026-10-18"))
	assert.Empty(t, f.Errors(), "editing a field clears its error")
}

func TestSubmitServerErrorRetainsValues(t *testing.T) {
	_, s := newStub(t, http.StatusInternalServerError, map[string]any{"success": false, "message": "db down"})
	f, err := NewForm("booking", s, pinned)
	require.NoError(t, err)
	fillBooking(t, f)
	before := f.Values()

	res, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, "There was an error sending your booking request. Please try again.", res.Message)
	assert.ErrorIs(t, res.Err, ErrStatus)
	assert.Equal(t, before, f.Values())
	assert.False(t, f.Submitting())
}

func TestSubmitDeclinedUsesServerMessage(t *testing.T) {
	_, s := newStub(t, http.StatusOK, map[string]any{"success": false, "message": "Fully booked"})
	f, err := NewForm("booking", s, pinned)
	require.NoError(t, err)
	fillBooking(t, f)

	res, _ := f.Submit(context.Background())
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, "Fully booked", res.Message)
	assert.NotEmpty(t, f.Values())
}

func TestSubmitTransportErrorClearsFlag(t *testing.T) {
	f, err := NewForm("booking", HTTPStrategy{BaseURL: "http://127.0.0.1:1"}, pinned)
	require.NoError(t, err)
	fillBooking(t, f)

	res, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Error(t, res.Err)
	assert.False(t, f.Submitting())
}

func TestRapidSubmitsMakeOneCall(t *testing.T) {
	stub, s := newStub(t, http.StatusOK, map[string]any{"success": true, "message": "ok"})
	stub.hold = make(chan struct{})
	stub.seen = make(chan struct{}, 1)

	f, err := NewForm("booking", s, pinned)
	require.NoError(t, err)
	fillBooking(t, f)

	done := make(chan Result, 1)
	go func() {
		res, _ := f.Submit(context.Background())
		done <- res
	}()

	<-stub.seen // first submission is on the wire
	assert.True(t, f.Submitting())
	_, err = f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInFlight)

	close(stub.hold)
	res := <-done
	assert.Equal(t, OutcomeDelivered, res.Outcome)
	assert.EqualValues(t, 1, stub.calls.Load())
}

func TestSetUnknownField(t *testing.T) {
	f, err := NewForm("contact", HTTPStrategy{})
	require.NoError(t, err)
	assert.ErrorIs(t, f.Set("coupon", "FREE"), ErrUnknownField)

	_, err = NewForm("newsletter", HTTPStrategy{})
	assert.ErrorIs(t, err, form.ErrUnknownForm)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","timestamp":"2026-10-17T09:30:00.123Z"}`))
	}))
	defer srv.Close()

	h, err := HTTPStrategy{BaseURL: srv.URL + "/"}.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OK", h.Status)
	assert.Equal(t, 123*time.Millisecond, time.Duration(h.Timestamp.Nanosecond()))
}

/*──────────────────────────── mail link ────────────────────────────────────*/

func TestMailLinkDrafted(t *testing.T) {
	var uri string
	s := MailLinkStrategy{
		To: "support@krishnacabspvtltd.com",
		Opener: OpenerFunc(func(_ context.Context, u string) error {
			uri = u
			return nil
		}),
	}
	f, err := NewForm("booking", s, pinned)
	require.NoError(t, err)
	fillBooking(t, f)

	res, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDrafted, res.Outcome)
	assert.Contains(t, res.Message, "Please send the email")
	assert.Empty(t, f.Values())

	require.True(t, strings.HasPrefix(uri,
		"mailto:support@krishnacabspvtltd.com?subject=New%20Booking%20Request%20-%20airport&body="))
	assert.NotContains(t, uri, "+")

	body := uri[strings.Index(uri, "&body=")+len("&body="):]
	decoded, err := url.PathUnescape(body)
	require.NoError(t, err)
	assert.Contains(t, decoded, "Dear Krishna Cabs Support Team,")
	assert.Contains(t, decoded, "Pickup Location: Bandra West\n")
}

func TestBuildMailtoEncoding(t *testing.T) {
	got := BuildMailto("a@b.c", "Hi there", "x+y & z\n?")
	assert.Equal(t, "mailto:a@b.c?subject=Hi%20there&body=x%2By%20%26%20z%0A%3F", got)
}

func TestMailLinkNeedsOpener(t *testing.T) {
	f, err := NewForm("booking", MailLinkStrategy{To: "a@b.c"}, pinned)
	require.NoError(t, err)
	fillBooking(t, f)

	res, _ := f.Submit(context.Background())
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.NotEmpty(t, f.Values())
}

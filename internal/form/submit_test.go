// internal/form/submit_test.go
//
// Unit-tests for body decoding and HandleSubmit.

package form

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/krishnacabs/internal/message"
)

func TestDecodeBody(t *testing.T) {
	got, err := DecodeBody(strings.NewReader(`{"rating": 5, "name": "Asha", "x": null, "ok": true}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"rating": "5", "name": "Asha", "ok": "true"}, got)
}

func TestDecodeBodyRejectsMalformed(t *testing.T) {
	for _, body := range []string{
		``,
		`not json`,
		`[1, 2]`,
		`"hello"`,
		`{"name": {"first": "Asha"}}`,
		`{"tags": ["a"]}`,
		`{} {}`,
	} {
		_, err := DecodeBody(strings.NewReader(body))
		assert.ErrorIs(t, err, ErrMalformedBody, "body %q", body)
	}
}

type captureNotifier struct{ got []message.Enquiry }

func (c *captureNotifier) Notify(_ context.Context, e message.Enquiry) error {
	c.got = append(c.got, e)
	return nil
}

func contactJSON() string {
	return `{"firstName":"Asha","lastName":"Rao","email":"ASHA@example.com",
		"phone":"9876543210","serviceRequired":"local",
		"message":"Please call me about a day trip."}`
}

func TestHandleSubmitAccepted(t *testing.T) {
	n := &captureNotifier{}
	var states []string
	r := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(contactJSON()))

	clean, err := HandleSubmit("contact", r, SubmitOptions{
		Validator: strictValidator(),
		Notifier:  n,
		RequestID: "req-1",
		SupportTo: []string{"support@krishnacabspvtltd.com"},
		OnState:   func(s string, _ map[string]string) { states = append(states, s) },
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", clean["email"])
	assert.Equal(t, []string{StateValidated, StateProcessed}, states)

	require.Len(t, n.got, 1)
	assert.Equal(t, []string{"support@krishnacabspvtltd.com"}, n.got[0].To)
	assert.Equal(t, "New Contact Request - local", n.got[0].Subject)
	assert.Equal(t, "req-1", n.got[0].RequestID)
	assert.Equal(t, "asha@example.com", n.got[0].Submission.(ContactSubmission).Email)
}

func TestHandleSubmitValidationError(t *testing.T) {
	n := &captureNotifier{}
	var detail map[string]string
	r := httptest.NewRequest(http.MethodPost, "/api/booking", strings.NewReader(`{}`))

	_, err := HandleSubmit("booking", r, SubmitOptions{
		Validator: strictValidator(),
		Notifier:  n,
		OnState:   func(_ string, d map[string]string) { detail = d },
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Len(t, detail, 6)
	assert.Empty(t, n.got, "invalid submissions are never handed off")
}

func TestHandleSubmitBodyLimit(t *testing.T) {
	big := `{"message":"` + strings.Repeat("x", 4096) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(big))

	_, err := HandleSubmit("contact", r, SubmitOptions{Validator: strictValidator(), MaxBodyBytes: 1024})
	assert.ErrorIs(t, err, ErrMalformedBody)
}

func TestHandleSubmitUnknownForm(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/nope", strings.NewReader(`{}`))
	_, err := HandleSubmit("nope", r, SubmitOptions{})
	assert.ErrorIs(t, err, ErrUnknownForm)
}

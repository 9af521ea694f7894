// cmd/cabctl/commands_test.go
//
// Command tests: each runs the cobra tree against an httptest API stub and
// captures stdout.

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func feedbackArgs(server string) []string {
	return []string{
		"submit", "feedback", "--server", server,
		"--set", "name=Asha Rao",
		"--set", "email=asha@example.com",
		"--set", "rating=5",
		"--set", "feedback=Clean car and a punctual driver.",
	}
}

func TestSubmitHTTP(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/feedback", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "Thank you for your feedback!"})
	}))
	defer srv.Close()

	out, err := runCmd(t, feedbackArgs(srv.URL)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Thank you for your feedback!")
	assert.EqualValues(t, 1, calls.Load())
}

func TestSubmitBlockedPrintsFieldErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls.Add(1) }))
	defer srv.Close()

	args := append(feedbackArgs(srv.URL), "--set", "rating=9")
	out, err := runCmd(t, args...)
	require.ErrorIs(t, err, errBlocked)
	assert.Contains(t, out, "rating: Please select a rating between 1 and 5 stars")
	assert.EqualValues(t, 0, calls.Load())
}

func TestSubmitMailto(t *testing.T) {
	args := append(feedbackArgs("http://unused"), "--strategy", "mailto")
	out, err := runCmd(t, args...)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "mailto:support@krishnacabspvtltd.com?subject=New%20Customer%20Feedback%20-%205"))
	assert.Contains(t, lines[1], "email client")
}

func TestSubmitRejectsBadSet(t *testing.T) {
	_, err := runCmd(t, "submit", "contact", "--set", "firstName")
	assert.Error(t, err)

	_, err = runCmd(t, "submit", "contact", "--strategy", "pigeon")
	assert.Error(t, err)
}

func TestHealthCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","timestamp":"2026-10-17T09:30:00.123Z"}`))
	}))
	defer srv.Close()

	out, err := runCmd(t, "health", "--server", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "OK 2026-10-17T09:30:00.123Z\n", out)
}

func TestSchemaCommand(t *testing.T) {
	out, err := runCmd(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "booking\n")

	out, err = runCmd(t, "schema", "booking")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "booking"`)

	_, err = runCmd(t, "schema", "nope")
	assert.Error(t, err)
}

func TestMailtoRecipientFollowsSupportEnv(t *testing.T) {
	t.Setenv("CABS_SUPPORT__EMAIL", "desk@example.com")

	args := append(feedbackArgs("http://127.0.0.1:1"), "--strategy", "mailto")
	out, err := runCmd(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "mailto:desk@example.com?subject=")
}

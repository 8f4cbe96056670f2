package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-seesaw/diagnostics"
)

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestHealth(t *testing.T) {
	s := New(Opts{Describe: func() []diagnostics.Report {
		return []diagnostics.Report{diagnostics.NewReport("seesaw").With("state", "ready")}
	}})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Healthy    bool                 `json:"healthy"`
		Components []diagnostics.Report `json:"components"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Healthy)
	require.Len(t, body.Components, 1)
	assert.Equal(t, "ready", body.Components[0].Fields["state"])
}

func TestHealthFailedComponent(t *testing.T) {
	s := New(Opts{Describe: func() []diagnostics.Report {
		r := diagnostics.NewReport("neopixel")
		r.Failed = true
		return []diagnostics.Report{r}
	}})
	rec := httptest.NewRecorder()
	s.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestEventsBroadcast(t *testing.T) {
	s := New(Opts{})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	c := dial(t, srv, "/events")
	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	s.PublishButton("key1", true)
	s.PushDiag(diagnostics.FromError("SEESAW.FAILED", "session failed", errors.New("nack")))

	var e Event
	require.NoError(t, c.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, c.ReadJSON(&e))
	assert.Equal(t, "button", e.Kind)
	assert.Equal(t, "key1", e.Name)
	require.NotNil(t, e.State)
	assert.True(t, *e.State)

	require.NoError(t, c.ReadJSON(&e))
	assert.Equal(t, "diag", e.Kind)
	require.NotNil(t, e.Diagnostic)
	assert.Equal(t, "nack", e.Diagnostic.Detail)
}

func TestControl(t *testing.T) {
	var got []Command
	s := New(Opts{Control: func(c Command) error {
		if c.Pattern == "bogus" {
			return errors.New("unknown pattern")
		}
		got = append(got, c)
		return nil
	}})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	c := dial(t, srv, "/control")

	var r Reply
	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(`{"pattern":"rainbow","brightness":0.25}`)))
	require.NoError(t, c.ReadJSON(&r))
	assert.True(t, r.OK)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(`{"pattern":"bogus"}`)))
	require.NoError(t, c.ReadJSON(&r))
	assert.False(t, r.OK)
	assert.Equal(t, "unknown pattern", r.Error)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, c.ReadJSON(&r))
	assert.Equal(t, "malformed command", r.Error)

	require.Len(t, got, 1)
	assert.Equal(t, "rainbow", got[0].Pattern)
	require.NotNil(t, got[0].Brightness)
	assert.Equal(t, 0.25, *got[0].Brightness)
}

package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_Info(t *testing.T) {
	laPaz, err := time.LoadLocation("America/La_Paz")
	require.NoError(t, err)

	h := NewSystemHandler("Panificadora Nancy", "1.2.0", "production", laPaz)
	h.startTime = time.Date(2026, 1, 23, 10, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return time.Date(2026, 1, 23, 12, 30, 0, 0, time.UTC) }

	r := newTestEngine()
	r.GET("/system/info", h.Info)
	w := perform(r, http.MethodGet, "/system/info", "")

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "Panificadora Nancy", data["name"])
	assert.Equal(t, "production", data["environment"])
	assert.Equal(t, "2h30m0s", data["uptime"])
	assert.Equal(t, "America/La_Paz", data["timezone"])
	assert.Equal(t, "2026-01-23T08:30:00-04:00", data["server_time"])
	assert.NotEmpty(t, data["go_version"])
}

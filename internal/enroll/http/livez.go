package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/totpenroll/pkg/httpx"
	"github.com/aussiebroadwan/totpenroll/pkg/mfasdk"
)

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe returning status, uptime and version
//	@Description	This endpoint always returns 200 OK while the process is running
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	mfasdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := mfasdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		}
		httpx.WriteJSON(w, http.StatusOK, response)
	}
}

package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/totpenroll/internal/enroll/store"
	"github.com/aussiebroadwan/totpenroll/pkg/httpx"
	"github.com/aussiebroadwan/totpenroll/pkg/mfasdk"
	"github.com/aussiebroadwan/totpenroll/pkg/totpx"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe reporting 503 when the database is unreachable or the TOTP
//	@Description	primitive no longer reproduces the RFC 6238 reference codes
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	mfasdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	mfasdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &mfasdk.HealthChecks{
			Database: "ok",
			TOTP:     "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		// Check database connectivity
		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := totpx.SelfTest(); err != nil {
			checks.TOTP = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := mfasdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}

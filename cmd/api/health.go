package main

import (
	"context"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Env     string            `json:"env"`
	Version string            `json:"version"`
	Storage string            `json:"storage"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// healthCheckHandler godoc
//
//	@Summary		Health check
//	@Description	Reports the API version and the state of its dependencies. Responds 503 when one is down.
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:  "ok",
		Env:     app.config.env,
		Version: version,
		Storage: app.config.storage,
		Checks:  make(map[string]string, len(app.health)),
	}
	status := http.StatusOK
	for name, check := range app.health {
		if err := check(ctx); err != nil {
			app.logger.Warnw("health check failed", "dependency", name, "error", err.Error())
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	if err := app.jsonResponse(w, status, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

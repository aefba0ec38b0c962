package serverenroll

import (
	"encoding/json"
	"net/http"

	"log/slog"
)

func writeJSON(w http.ResponseWriter, logger *slog.Logger, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Could not marshal response", "err", err)
		http.Error(w, http.StatusText(500), 500)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

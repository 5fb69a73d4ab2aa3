package handlers

import (
	"log"
	"net/http"
)

// respondWithError writes userMsg as a plain-text body. The cause is logged
// under logMsg (or userMsg when logMsg is empty); a logMsg without a cause is
// logged on its own.
func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	switch {
	case err != nil:
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	case logMsg != "":
		log.Printf("%s (status %d)", logMsg, status)
	}

	w.Header().Set("Cache-Control", "no-store")
	http.Error(w, userMsg, status)
}

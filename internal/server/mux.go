package server

import "net/http"

// NewMux wires the render endpoints. archiveHandler may be nil.
func NewMux(od *OnDemand, archiveHandler *ArchiveHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/noise.png", withCORS(od.NoiseHandler()))
	mux.Handle("/thumb.png", withCORS(od.ThumbHandler()))
	mux.Handle("/status", od.StatusHandler())
	if archiveHandler != nil {
		mux.Handle("/archive/", withCORS(archiveHandler.Handler()))
	}
	return mux
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

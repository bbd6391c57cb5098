package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/urfave/negroni"
)

func (s *server) setupRoutes() {
	s.router.HandleFunc("/", s.handleRoot())
	s.router.HandleFunc("/api", s.handleAPI()).Methods("POST")
	s.router.Use(logMiddleware)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := negroni.NewResponseWriter(w)
		next.ServeHTTP(ww, r)
		log.Println(r.Method, r.RequestURI, r.Proto, "->", ww.Status(), http.StatusText(ww.Status()))
	})
}

func (*server) handleRoot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "Fake analytics API. POST /api?action=...")
	}
}

func (s *server) handleAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "could not read body", http.StatusBadRequest)
			return
		}

		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		action := r.URL.Query().Get("action")
		if action == "" {
			action, _ = payload["action"].(string)
		}

		switch action {
		case "multi":
			s.handleMulti(w, payload)
		case "getMessages":
			writeEnvelope(w, map[string]any{"success": true, "messages": s.messages})
		case "getMessage":
			s.handleGetMessage(w, payload)
		case "getAbTests", "getAbTest":
			writeEnvelope(w, map[string]any{"success": true, "abTests": []any{}})
		case "getVars":
			writeEnvelope(w, map[string]any{"success": true, "vars": map[string]any{"test_var": 1}})
		case "exportUser":
			writeEnvelope(w, map[string]any{
				"success":        true,
				"userAttributes": map[string]any{},
				"events":         map[string]any{},
			})
		case "getExportJobId":
			j := s.newExportJob()
			writeEnvelope(w, map[string]any{"success": true, "jobId": j.id})
		case "getExportResults":
			s.handleExportResults(w, payload)
		default:
			writeEnvelope(w, map[string]any{
				"success": false,
				"error":   map[string]any{"message": fmt.Sprintf("unknown action %q", action)},
			})
		}
	}
}

func (s *server) handleMulti(w http.ResponseWriter, payload map[string]any) {
	data, _ := payload["data"].([]any)
	results := make([]any, 0, len(data))
	for range data {
		results = append(results, map[string]any{"success": true})
	}
	writeResponse(w, results)
}

func (s *server) handleGetMessage(w http.ResponseWriter, payload map[string]any) {
	id, _ := payload["messageId"].(float64)
	for _, m := range s.messages {
		if m.ID == int64(id) {
			writeEnvelope(w, map[string]any{"success": true, "message": m})
			return
		}
	}
	writeEnvelope(w, map[string]any{
		"success": false,
		"error":   map[string]any{"message": fmt.Sprintf("Message %d not found", int64(id))},
	})
}

func (s *server) handleExportResults(w http.ResponseWriter, payload map[string]any) {
	id, _ := payload["jobId"].(string)
	j, ok := s.jobs[id]
	if !ok {
		writeEnvelope(w, map[string]any{
			"success": false,
			"error":   map[string]any{"message": fmt.Sprintf("Export job %s not found", id)},
		})
		return
	}

	result := map[string]any{"success": true, "state": j.state()}
	if j.state() == "FINISHED" {
		result["files"] = []string{fmt.Sprintf("https://storage.example.com/%s-output-0", j.id)}
		result["numberOfBytes"] = 36590
		result["numberOfSessions"] = 101
	}
	j.polls++
	writeEnvelope(w, result)
}

func writeEnvelope(w http.ResponseWriter, result map[string]any) {
	writeResponse(w, []any{result})
}

func writeResponse(w http.ResponseWriter, results []any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"response": results})
}

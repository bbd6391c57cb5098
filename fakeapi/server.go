package main

import (
	"fmt"

	"github.com/gorilla/mux"
)

// server is an in-memory stand-in for the remote analytics service, good
// enough to exercise the client end to end without credentials.
type server struct {
	router   *mux.Router
	messages []message
	jobs     map[string]*exportJob
	nextJob  int
}

func newServer() server {
	return server{
		router: mux.NewRouter(),
		jobs:   make(map[string]*exportJob),
	}
}

type message struct {
	ID          int64   `json:"id"`
	Created     float64 `json:"created"`
	Name        string  `json:"name"`
	Active      bool    `json:"active"`
	MessageType string  `json:"messageType"`
}

// exportJob fakes the async job lifecycle: each poll advances the state one
// step until FINISHED.
type exportJob struct {
	id    string
	polls int
}

func (j *exportJob) state() string {
	switch j.polls {
	case 0:
		return "PENDING"
	case 1:
		return "RUNNING"
	default:
		return "FINISHED"
	}
}

func (s *server) populateTestContent() {
	s.messages = []message{
		{
			ID:          5670583287676928,
			Created:     1440091595.799,
			Name:        "New Message",
			Active:      false,
			MessageType: "Push Notification",
		},
	}
}

func (s *server) newExportJob() *exportJob {
	s.nextJob++
	j := &exportJob{id: fmt.Sprintf("export_%d", s.nextJob)}
	s.jobs[j.id] = j
	return j
}

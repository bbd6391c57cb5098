package main

import (
	"flag"
	"log"
	"net/http"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	s := newServer()
	s.populateTestContent()
	s.setupRoutes()

	log.Println("fake analytics api listening at", *addr)
	log.Fatal(http.ListenAndServe(*addr, s.router))
}

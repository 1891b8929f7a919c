package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/burntcarrot/loomtext/session"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

func main() {
	host := flag.String("host", "", "Interface to bind (empty binds all interfaces)")
	port := flag.Int("port", 9000, "Server's listening port")
	sessionName := flag.String("session", "default", "Session name announced to connecting clients")
	password := flag.String("password", "", "Shared password; leave empty for an unprotected session")
	displayName := flag.String("name", "", "Contact name announced for the server's own site (0); leave empty for a headless server")
	buffer := flag.String("buffer", "scratch", "Name of the buffer shared at startup")
	majorMode := flag.String("major-mode", "text", "Major mode advertised for the startup buffer")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	hub := session.NewHub(session.ServerConfig{
		Port:        *port,
		SessionName: *sessionName,
		Password:    *password,
		DisplayName: *displayName,
	}, log)
	hub.ShareBuffer(*buffer, *majorMode)

	mux := http.NewServeMux()
	mux.Handle("/", hub)

	addr := fmt.Sprintf("%s:%d", *host, *port)
	color.Green("Starting session %q on %s\n", *sessionName, addr)
	if *password != "" {
		color.Yellow("Password protected.\n")
	}
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Fatal("server exiting")
		os.Exit(1)
	}
}

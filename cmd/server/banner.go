package main

import (
	"fmt"
	"net"

	"github.com/evyataryagoni/ipcheck/internal/logger"
)

// localIP returns the address of the interface used for outbound traffic,
// or "" if there is none. The UDP dial sends no packets.
func localIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return ""
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return ""
	}
	return addr.IP.String()
}

// endpoints lists the view URLs for a host
func endpoints(host string, port int) map[string]string {
	base := fmt.Sprintf("http://%s:%d", host, port)
	return map[string]string{
		"web_ui":  base,
		"api":     base + "/api",
		"plain":   base + "/plain",
		"health":  base + "/health",
		"metrics": base + "/metrics",
		"swagger": base + "/swagger/index.html",
	}
}

// logBanner logs where the server can be reached
func logBanner(log *logger.Logger, port int, lanIP string) {
	event := log.Info().Int("port", port)
	for name, url := range endpoints("localhost", port) {
		event = event.Str(name, url)
	}
	event.Msg("IP Check Server is running")

	if lanIP == "" {
		return
	}

	network := endpoints(lanIP, port)
	log.Info().
		Str("web_ui", network["web_ui"]).
		Str("api", network["api"]).
		Str("plain", network["plain"]).
		Msg("Reachable on the local network")
}

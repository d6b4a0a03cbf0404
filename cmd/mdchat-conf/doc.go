// Command mdchat-conf validates, formats, and inspects mdchat server
// configuration files.
//
// The server reads /etc/mdchat-server.conf once at startup and refuses to
// start on any parse or validation error; mdchat-conf runs the same pipeline
// ahead of time so a bad config is caught before a restart, not by one.
//
// Install:
//
//	go install github.com/mdchat/serverconf/cmd/mdchat-conf@latest
//
// Usage:
//
//	mdchat-conf validate --config /etc/mdchat-server.conf --format text
//	mdchat-conf query ip --config /etc/mdchat-server.conf 203.0.113.7
package main

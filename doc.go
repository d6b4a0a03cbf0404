/*
Package serverconf parses and validates the mdchat server configuration file
and builds the immutable moderation policy the server consults at runtime.

The configuration is a line-oriented directive language. Every non-empty,
non-comment line is one directive: a name of one or two space-separated words
followed by space-separated arguments. A '#' starts a comment to end of line
(escape a literal '#' inside an argument as '\#'). Tabs never separate fields.

	# /etc/mdchat-server.conf
	listen 0.0.0.0:4000
	listen [::]:4000

	ip ban 203.0.113.7
	ip ban-range 198.51.100.0 198.51.100.255
	ip allow 198.51.100.20

	nickname min-length 3
	nickname max-length 16
	nickname ban ^admin
	nickname allow root

	message max-length 1024
	message ban (?i)unwanted

Scalar directives (the min-length/max-length pairs) are last-wins; everything
else accumulates. An "allow" entry always beats "ban" and "ban-range".

Typical use:

	policy, err := serverconf.Load(serverconf.DefaultPath)
	if err != nil {
		// fatal: the server must not start on a broken config
	}
	for _, ap := range policy.ListenAddrs() { ... }
	if policy.IsIPBanned(remote) { ... }

Parse and Compile expose the two pipeline stages separately; Compile reports
every violation it finds, not just the first, so operators see the complete
picture in one run.

The mdchat-conf command wraps this package for operators:

	go install github.com/mdchat/serverconf/cmd/mdchat-conf@latest
*/
package serverconf

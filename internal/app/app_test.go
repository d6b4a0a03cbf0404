package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mdchat/serverconf"
)

// captureOutput runs fn while capturing stdout and stderr.
func captureOutput(t *testing.T, fn func()) (stdout, stderr string) {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	defer func() {
		os.Stdout = origOut
		os.Stderr = origErr
	}()

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}

	os.Stdout = wOut
	os.Stderr = wErr

	fn()

	wOut.Close()
	wErr.Close()

	outBuf := make([]byte, 64*1024)
	n, _ := rOut.Read(outBuf)
	stdout = string(outBuf[:n])

	errBuf := make([]byte, 64*1024)
	n, _ = rErr.Read(errBuf)
	stderr = string(errBuf[:n])
	return
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, "mdchat-server.conf")
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

const validConfig = `# mdchat server
listen 0.0.0.0:4000
listen [::1]:4000

ip ban 203.0.113.7
ip allow 192.168.1.5
ip ban-range 192.168.1.0 192.168.1.255

nickname ban ^guest[0-9]+$
nickname allow guest42
nickname max-length 12

message max-length 512
`

func TestValidateCmd_ValidJSON(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, validConfig)

	var code int
	stdout, stderr := captureOutput(t, func() {
		code = validateCmd([]string{"-config", cfgPath})
	})

	if code != 0 {
		t.Fatalf("expected exit 0, got %d; stderr: %s", code, stderr)
	}

	var res serverconf.ValidationResult
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatalf("stdout is not valid JSON: %s\nraw: %s", err, stdout)
	}
	if !res.OK {
		t.Fatalf("expected ok=true, got %+v", res)
	}
}

func TestValidateCmd_ValidText(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, validConfig)

	var code int
	stdout, _ := captureOutput(t, func() {
		code = validateCmd([]string{"-config", cfgPath, "-format", "text"})
	})

	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(stdout, "config ok") {
		t.Fatalf("expected 'config ok' in stdout, got: %s", stdout)
	}
}

func TestValidateCmd_ParseErrorJSON(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "bogus directive !!!\n")

	var code int
	_, stderr := captureOutput(t, func() {
		code = validateCmd([]string{"-config", cfgPath, "-format", "json"})
	})

	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}

	var res serverconf.ValidationResult
	if err := json.Unmarshal([]byte(stderr), &res); err != nil {
		t.Fatalf("stderr is not valid JSON: %s\nraw: %s", err, stderr)
	}
	if res.OK {
		t.Fatal("expected ok=false for parse error")
	}
	if len(res.Errors) == 0 || res.Errors[0].Kind != serverconf.KindUnknownDirective {
		t.Fatalf("expected unknown-directive error, got %+v", res.Errors)
	}
	if res.Errors[0].Line != 1 {
		t.Fatalf("expected line 1, got %+v", res.Errors[0])
	}
}

func TestValidateCmd_InvalidConfigText(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "# no directives yet\n")

	var code int
	_, stderr := captureOutput(t, func() {
		code = validateCmd([]string{"-config", cfgPath, "-format", "text"})
	})

	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr, "config invalid") || !strings.Contains(stderr, "no listen address configured") {
		t.Fatalf("expected validation failure in stderr, got: %s", stderr)
	}
}

func TestValidateCmd_MissingFileJSON(t *testing.T) {
	var code int
	_, stderr := captureOutput(t, func() {
		code = validateCmd([]string{"-config", "/nonexistent/path/mdchat-server.conf", "-format", "json"})
	})

	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}

	var res serverconf.ValidationResult
	if err := json.Unmarshal([]byte(stderr), &res); err != nil {
		t.Fatalf("stderr is not valid JSON: %s\nraw: %s", err, stderr)
	}
	if res.OK {
		t.Fatal("expected ok=false for missing file")
	}
	if len(res.Errors) == 0 || res.Errors[0].Kind != serverconf.KindIO {
		t.Fatalf("expected io error, got %+v", res.Errors)
	}
}

func TestValidateCmd_WarningsReported(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "listen 0.0.0.0:4000\nlisten 0.0.0.0:4000\n")

	var code int
	stdout, _ := captureOutput(t, func() {
		code = validateCmd([]string{"-config", cfgPath, "-format", "text"})
	})

	if code != 0 {
		t.Fatalf("expected exit 0 (warnings are not fatal), got %d", code)
	}
	if !strings.Contains(stdout, "warnings: 1") || !strings.Contains(stdout, "duplicate listen") {
		t.Fatalf("expected duplicate warning, got: %s", stdout)
	}
}

func TestValidateCmd_BadFormatFlag(t *testing.T) {
	var code int
	_, stderr := captureOutput(t, func() {
		code = validateCmd([]string{"-format", "yaml"})
	})

	if code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.Contains(stderr, "invalid -format") {
		t.Fatalf("expected format usage error, got: %s", stderr)
	}
}

func TestFmtCmd_CanonicalOutput(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "# header\nlisten   0.0.0.0:4000   # main\nnickname  max-length  012\n")

	var code int
	stdout, stderr := captureOutput(t, func() {
		code = fmtCmd([]string{"-config", cfgPath})
	})

	if code != 0 {
		t.Fatalf("expected exit 0, got %d; stderr: %s", code, stderr)
	}
	want := "# header\n\nlisten 0.0.0.0:4000\nnickname max-length 12\n"
	if stdout != want {
		t.Fatalf("fmt output:\n--- got ---\n%s--- want ---\n%s", stdout, want)
	}
}

func TestFmtCmd_ParseError(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "listen\t0.0.0.0:4000\n")

	var code int
	_, stderr := captureOutput(t, func() {
		code = fmtCmd([]string{"-config", cfgPath})
	})

	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr, "tab is not a separator") {
		t.Fatalf("expected tab diagnostic, got: %s", stderr)
	}
}

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDiffCmd_Identical(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.conf", "listen 0.0.0.0:4000\n")
	b := writeTempFile(t, dir, "b.conf", "listen   0.0.0.0:4000   # same thing\n")

	var code int
	stdout, stderr := captureOutput(t, func() {
		code = diffCmd([]string{a, b})
	})

	if code != 0 {
		t.Fatalf("expected exit 0 (identical), got %d; stderr: %s", code, stderr)
	}
	if strings.TrimSpace(stdout) != "" {
		t.Fatalf("expected empty stdout for identical configs, got: %s", stdout)
	}
}

func TestDiffCmd_Changed(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.conf", "listen 0.0.0.0:4000\n")
	b := writeTempFile(t, dir, "b.conf", "listen 0.0.0.0:4000\nmessage max-length 512\n")

	var code int
	stdout, stderr := captureOutput(t, func() {
		code = diffCmd([]string{a, b})
	})

	if code != 1 {
		t.Fatalf("expected exit 1 (changed), got %d; stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "---") || !strings.Contains(stdout, "+++") {
		t.Fatalf("expected unified diff header, got: %s", stdout)
	}
	if !strings.Contains(stdout, "+message max-length 512") {
		t.Fatalf("expected added directive in diff, got: %s", stdout)
	}
}

func TestDiffCmd_ParseError(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.conf", "not a directive\n")
	b := writeTempFile(t, dir, "b.conf", "listen 0.0.0.0:4000\n")

	var code int
	_, stderr := captureOutput(t, func() {
		code = diffCmd([]string{a, b})
	})

	if code != 2 {
		t.Fatalf("expected exit 2 (error), got %d", code)
	}
	if !strings.Contains(stderr, "parsing") {
		t.Fatalf("expected parse error in stderr, got: %s", stderr)
	}
}

func TestDiffCmd_WrongArgCount(t *testing.T) {
	var code int
	_, stderr := captureOutput(t, func() {
		code = diffCmd([]string{"only-one-arg"})
	})

	if code != 2 {
		t.Fatalf("expected exit 2 (usage error), got %d", code)
	}
	if !strings.Contains(stderr, "usage:") {
		t.Fatalf("expected usage message, got: %s", stderr)
	}
}

func TestQueryCmd_IP(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, validConfig)

	var code int
	stdout, _ := captureOutput(t, func() {
		code = queryCmd([]string{"ip", "-config", cfgPath, "203.0.113.7", "192.168.1.5"})
	})

	if code != 1 {
		t.Fatalf("expected exit 1 (one value banned), got %d", code)
	}
	if !strings.Contains(stdout, "203.0.113.7: banned") || !strings.Contains(stdout, "ip ban 203.0.113.7") {
		t.Fatalf("expected banned verdict with rule, got: %s", stdout)
	}
	if !strings.Contains(stdout, "192.168.1.5: ok") || !strings.Contains(stdout, "allow list") {
		t.Fatalf("expected ok verdict with allow reason, got: %s", stdout)
	}
}

func TestQueryCmd_AllOK(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, validConfig)

	var code int
	stdout, _ := captureOutput(t, func() {
		code = queryCmd([]string{"nickname", "-config", cfgPath, "guest42", "alice"})
	})

	if code != 0 {
		t.Fatalf("expected exit 0, got %d; stdout: %s", code, stdout)
	}
	if !strings.Contains(stdout, "guest42: ok") || !strings.Contains(stdout, "alice: ok") {
		t.Fatalf("expected ok verdicts, got: %s", stdout)
	}
}

func TestQueryCmd_NicknameRejected(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, validConfig)

	var code int
	stdout, _ := captureOutput(t, func() {
		code = queryCmd([]string{"nickname", "-config", cfgPath, "guest99"})
	})

	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stdout, "guest99: rejected") || !strings.Contains(stdout, "ban pattern") {
		t.Fatalf("expected rejected verdict with pattern reason, got: %s", stdout)
	}
}

func TestQueryCmd_MessageLength(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "listen 0.0.0.0:4000\nmessage max-length 5\n")

	var code int
	stdout, _ := captureOutput(t, func() {
		code = queryCmd([]string{"message", "-config", cfgPath, "toolong"})
	})

	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stdout, "toolong: rejected") || !strings.Contains(stdout, "exceeds max-length 5") {
		t.Fatalf("expected length reason, got: %s", stdout)
	}
}

func TestQueryCmd_BadInput(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, validConfig)

	var code int
	_, stderr := captureOutput(t, func() {
		code = queryCmd([]string{"ip", "-config", cfgPath, "not-an-ip"})
	})
	if code != 2 {
		t.Fatalf("expected exit 2 for a bad address, got %d", code)
	}
	if !strings.Contains(stderr, "not an IP address") {
		t.Fatalf("expected address error, got: %s", stderr)
	}

	_, stderr = captureOutput(t, func() {
		code = queryCmd([]string{"channel", "-config", cfgPath, "x"})
	})
	if code != 2 || !strings.Contains(stderr, "unknown query subcommand") {
		t.Fatalf("expected unknown subcommand error, got %d: %s", code, stderr)
	}

	_, stderr = captureOutput(t, func() {
		code = queryCmd([]string{"ip", "-config", cfgPath})
	})
	if code != 2 || !strings.Contains(stderr, "usage:") {
		t.Fatalf("expected usage error without values, got %d: %s", code, stderr)
	}
}

func TestQueryCmd_UnusableConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "# empty\n")

	var code int
	_, stderr := captureOutput(t, func() {
		code = queryCmd([]string{"ip", "-config", cfgPath, "1.2.3.4"})
	})

	if code != 1 {
		t.Fatalf("expected exit 1 for unusable config, got %d", code)
	}
	if !strings.Contains(stderr, "no listen address configured") {
		t.Fatalf("expected compile diagnostic, got: %s", stderr)
	}
}

func TestMain_Dispatch(t *testing.T) {
	var code int
	_, stderr := captureOutput(t, func() {
		code = Main([]string{"mdchat-conf", "frobnicate"})
	})
	if code != 2 {
		t.Fatalf("expected exit 2 for unknown command, got %d", code)
	}
	if !strings.Contains(stderr, "unknown command") {
		t.Fatalf("expected unknown command error, got: %s", stderr)
	}

	stdout, _ := captureOutput(t, func() {
		code = Main([]string{"mdchat-conf", "help"})
	})
	if code != 0 {
		t.Fatalf("expected exit 0 for help, got %d", code)
	}
	if !strings.Contains(stdout, "mdchat-conf validate") {
		t.Fatalf("expected usage text, got: %s", stdout)
	}
}

package lookups

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samvad-hq/webresolver-client/pkg/webresolver"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write lookups file: %v", err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writeFile(t, "lookups.yaml", `
lookups:
  - id: google-dns
    action: DNS
    query: google.com
  - id: scan-web
    action: portscan
    query: example.com
    port: 443
  - id: temp-mail
    action: isTempEmail
    query: someone@mailinator.com
    enabled: false
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.All()) != 3 {
		t.Fatalf("expected 3 lookups, got %d", len(reg.All()))
	}
	if len(reg.Enabled()) != 2 {
		t.Fatalf("expected 2 enabled lookups, got %d", len(reg.Enabled()))
	}

	l, ok := reg.ByID("temp-mail")
	if !ok {
		t.Fatalf("expected temp-mail lookup")
	}
	if l.Action != string(webresolver.ActionDisposableEmail) {
		t.Fatalf("expected alias normalized to code, got %q", l.Action)
	}

	scan, _ := reg.ByID("scan-web")
	req := scan.Request()
	if req.Action != webresolver.ActionPortscan || req.Port == nil || *req.Port != 443 {
		t.Fatalf("unexpected request %+v", req)
	}

	dns, _ := reg.ByID("google-dns")
	if dns.StoreKey() == scan.StoreKey() {
		t.Fatalf("expected distinct store keys")
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeFile(t, "lookups.json", `{"lookups":[{"id":"logger","action":"iplogger","query":"","logger":"grabify"}]}`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	l, ok := reg.ByID("logger")
	if !ok || l.Logger != "grabify" {
		t.Fatalf("unexpected lookup %+v", l)
	}
}

func TestLoadRegistryRejectsInvalidEntries(t *testing.T) {
	cases := map[string]string{
		"duplicate id": `
lookups:
  - {id: a, action: dns, query: a.com}
  - {id: a, action: dns, query: b.com}
`,
		"unknown action": `
lookups:
  - {id: a, action: teleport, query: a.com}
`,
		"port on non portscan": `
lookups:
  - {id: a, action: dns, query: a.com, port: 80}
`,
		"port out of range": `
lookups:
  - {id: a, action: portscan, query: a.com, port: 70000}
`,
		"missing id": `
lookups:
  - {action: dns, query: a.com}
`,
		"empty": `lookups: []`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadRegistry(writeFile(t, "lookups.yaml", content)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadRegistryKeepsBlankQueries(t *testing.T) {
	reg, err := NewRegistry([]Lookup{{ID: "blank", Action: "resolve", Query: "  "}})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	l, _ := reg.ByID("blank")
	if l.Query != "  " {
		t.Fatalf("expected query kept verbatim, got %q", l.Query)
	}
}

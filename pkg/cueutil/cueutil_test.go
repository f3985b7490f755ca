// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"path/filepath"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/regwalk/regwalk/internal/testutil"
)

func TestCompile(t *testing.T) {
	t.Parallel()

	ctx := cuecontext.New()
	v, err := Compile(ctx, []byte(`name: "demo", count: 2`))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	name, err := v.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		t.Fatalf("lookup name: %v", err)
	}
	if name != "demo" {
		t.Errorf("name = %q, want demo", name)
	}
}

func TestCompileSyntaxError(t *testing.T) {
	t.Parallel()

	ctx := cuecontext.New()
	_, err := Compile(ctx, []byte(`name: {{{`), WithFilename("bad.cue"))
	if err == nil {
		t.Fatal("Compile: want syntax error")
	}
	if !strings.Contains(err.Error(), "bad.cue") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestCompileFileSizeLimit(t *testing.T) {
	t.Parallel()

	ctx := cuecontext.New()
	_, err := Compile(ctx, []byte(`a: 1`), WithMaxFileSize(2))
	if err == nil {
		t.Fatal("Compile: want file size error")
	}
	if !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCompileFile(t *testing.T) {
	t.Parallel()

	root := testutil.WriteTree(t, map[string]string{
		"unit.cue": `exports: {"motd": "hi"}`,
	})
	ctx := cuecontext.New()
	v, err := CompileFile(ctx, filepath.Join(root, "unit.cue"))
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}
	if v.Err() != nil {
		t.Fatalf("value error: %v", v.Err())
	}

	if _, err := CompileFile(ctx, filepath.Join(root, "missing.cue")); err == nil {
		t.Error("CompileFile on missing file: want error")
	}
}

type sampleSchema struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

const sampleSchemaSrc = `#Sample: {
	name:  string
	count: int & >=0
}`

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	res, err := ParseAndDecode[sampleSchema](
		[]byte(sampleSchemaSrc),
		[]byte(`name: "demo", count: 3`),
		"#Sample",
	)
	if err != nil {
		t.Fatalf("ParseAndDecode: %v", err)
	}
	if res.Value.Name != "demo" || res.Value.Count != 3 {
		t.Errorf("decoded = %+v", res.Value)
	}
	if !res.Unified.Exists() {
		t.Error("unified value should be retained")
	}
}

func TestParseAndDecodeSchemaViolation(t *testing.T) {
	t.Parallel()

	_, err := ParseAndDecode[sampleSchema](
		[]byte(sampleSchemaSrc),
		[]byte(`name: "demo", count: -1`),
		"#Sample",
		WithFilename("input.cue"),
	)
	if err == nil {
		t.Fatal("ParseAndDecode: want constraint violation")
	}
	if !strings.Contains(err.Error(), "input.cue") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestParseAndDecodeNonConcrete(t *testing.T) {
	t.Parallel()

	data := []byte(`name: "demo", count: int`)
	if _, err := ParseAndDecode[sampleSchema]([]byte(sampleSchemaSrc), data, "#Sample"); err == nil {
		t.Error("concrete parse should reject the open field")
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"exports"}, "exports"},
		{[]string{"exports", "0", "value"}, "exports[0].value"},
		{[]string{"defaults", "2", "strategy"}, "defaults[2].strategy"},
		{[]string{"a", "b"}, "a.b"},
	}
	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize([]byte("ok"), 10, "f.cue"); err != nil {
		t.Errorf("within limit: %v", err)
	}
	if err := CheckFileSize([]byte("too large"), 3, "f.cue"); err == nil {
		t.Error("over limit: want error")
	}
}
